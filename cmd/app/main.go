package main

import (
	"flag"
	"log"
	"os"

	"github.com/anishesg/a-rusty-kalshi-bot/internal/di"
	"github.com/anishesg/a-rusty-kalshi-bot/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s engine=%s cache=%s sink_enabled=%v",
		cfg.Environment, cfg.Engine.WebSocketURL, cfg.Cache.Backend, cfg.Sink.Enabled)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
