package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazadus/go-vibeplay/internal/config"
	"github.com/hazadus/go-vibeplay/internal/library"
)

const defaultConfigPath = "~/.vibeplay/config.yaml"

// Application хранит зависимости, общие для всех команд
type Application struct {
	Config  *config.Config
	Library *library.Library
}

func main() {
	cfg, err := config.LoadConfig(defaultConfigPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	lib := library.New(cfg.LibraryPath)
	if err := lib.Load(); err != nil {
		log.Fatalf("Ошибка загрузки библиотеки: %v", err)
	}

	app := &Application{
		Config:  cfg,
		Library: lib,
	}

	// Контекст, отменяемый по Ctrl+C и SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := app.createRootCommand(ctx)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
