package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hbomb79/Reel/internal"
	"github.com/hbomb79/Reel/pkg/logger"
)

var log = logger.Get("Bootstrap")

func main() {
	configPath := flag.String("config", "~/.config/reel/config.yaml", "path to the YAML configuration file")
	importDir := flag.String("import", "", "import the legacy JSON data files in this directory, then exit")
	flag.Parse()

	config, err := internal.LoadConfig(*configPath)
	if err != nil {
		fatal("Failed to load configuration: %v\n", err)
	}

	level, err := logger.ParseLevel(config.LogLevel)
	if err != nil {
		fatal("Invalid log level: %v\n", err)
	}
	logger.SetMinLoggingLevel(level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reel, err := internal.New(ctx, config)
	if err != nil {
		fatal("Failed to initialise Reel: %v\n", err)
	}

	if *importDir != "" {
		report, err := reel.Import(ctx, *importDir)
		if err != nil {
			fatal("Import failed: %v\n", err)
		}

		out, _ := json.MarshalIndent(report, "", "  ")
		log.Emit(logger.SUCCESS, "Import complete:\n%s\n", out)
		return
	}

	if err := reel.Run(ctx); err != nil {
		fatal("Reel stopped unexpectedly: %v\n", err)
	}

	log.Emit(logger.STOP, "Reel shut down\n")
}

func fatal(message string, args ...any) {
	log.Emit(logger.FATAL, message, args...)
	os.Exit(1)
}
