package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tank-arena/internal/api"
	"tank-arena/internal/config"
	"tank-arena/internal/lobby"
	"tank-arena/internal/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  TANK ARENA - COORDINATOR")
	log.Println("🎮 ================================")

	cfg := config.Load()

	// Single positional argument: the bind host.
	if len(os.Args) > 1 {
		cfg.Server.Host = os.Args[1]
	}

	dir := lobby.NewDirectory(cfg.Game.TickLengthMilliSeconds)
	reg := lobby.NewRegistry()
	sched := lobby.NewScheduler(dir, reg)
	dir.OnRunning = sched.Start

	if err := metrics.StartDebugServer(metrics.DebugConfig{
		Enabled:    cfg.Debug.Enabled,
		ListenAddr: cfg.Debug.ListenAddr,
	}); err != nil {
		log.Printf("⚠️ Debug server disabled: %v", err)
	}

	gameAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GamePort)
	controlAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.ControlPort)

	gameServer := api.NewGameServer(dir, reg, sched)
	go func() {
		log.Printf("🔌 Game transport on ws://%s/lobby/{id}", gameAddr)
		if err := http.ListenAndServe(gameAddr, gameServer.Router()); err != nil {
			log.Fatalf("Failed to start game transport: %v", err)
		}
	}()

	controlRouter := api.NewControlRouter(api.ControlRouterConfig{Dir: dir})
	go func() {
		log.Printf("🌐 Control plane on http://%s/lobbies", controlAddr)
		if err := http.ListenAndServe(controlAddr, controlRouter); err != nil {
			log.Fatalf("Failed to start control plane: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("✅ Server ready (tick length %d ms). Press Ctrl+C to stop.", cfg.Game.TickLengthMilliSeconds)
	<-quit

	log.Println("👋 Goodbye!")
}
