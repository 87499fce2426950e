package main

import (
	"os"

	"area-api/internal/config"
	"area-api/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.SetupWriter(os.Stderr)
	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
