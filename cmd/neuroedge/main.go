package main

import (
	"flag"
	"log"
	"os"

	"github.com/josephwere/NeuroEdge/internal/app"
	"github.com/josephwere/NeuroEdge/internal/config"
	"github.com/josephwere/NeuroEdge/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration yaml file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	appLogger := logger.NewConsoleLogger(logger.LevelFromEnv())

	application, err := app.NewApplication(cfg, appLogger)
	if err != nil {
		log.Fatalf("application initialization failed: %v", err)
	}

	if *configPath != "" {
		watcher, err := config.NewWatcher(*configPath, appLogger, application.ApplyConfig)
		if err != nil {
			appLogger.Warning("main", "config hot reload disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			go func() { _ = watcher.Watch(application.ShutdownContext()) }()
		}
	}

	// Blocks until the GUI session ends.
	if err := application.Run(); err != nil {
		log.Fatalf("application execution failed: %v", err)
	}

	log.Println("application terminated successfully")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return config.Load(path)
}
