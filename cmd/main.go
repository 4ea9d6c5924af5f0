package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/AtoyanMikhail/blogauth/internal/app"
	"github.com/AtoyanMikhail/blogauth/internal/config"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal(err.Error())
	}

	logger.Initialize(os.Stdout)
	l := logger.Global()
	l.SetLevel(logger.ParseLevel(cfg.Server.LogLevel))
	defer l.Sync()

	application, err := app.NewApp(cfg, l)
	if err != nil {
		l.Fatal("Failed to initialize application", logger.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		l.Fatal("Application stopped with error", logger.Error(err))
	}
}
