package main

import (
	"delivery-marketplace/internal/config"
	"delivery-marketplace/internal/mockbackend"
	"delivery-marketplace/internal/repository"
	"delivery-marketplace/internal/server"
	"delivery-marketplace/utils"
	"fmt"
	"os"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	utils.SetLevel(cfg.LogLevel)

	repo := repository.NewMemoryRepo()
	if err := mockbackend.Seed(repo); err != nil {
		utils.Fatal("failed to seed mock backend", map[string]any{"error": err.Error()})
	}

	router := server.SetupRouter(mockbackend.NewBackend(repo))

	addr := fmt.Sprintf(":%d", cfg.Port)
	utils.Info("starting mock marketplace backend", map[string]any{"addr": addr, "base": "/api/"})
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}
