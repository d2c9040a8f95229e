package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/GGmuzem/stackcalc/internal/agent"
	"github.com/GGmuzem/stackcalc/internal/config"
)

func main() {
	log.Println("Запуск агента...")

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := agent.StartWorkers(ctx, cfg.ComputingPower, cfg.GRPCServer); err != nil {
		log.Fatalf("Ошибка запуска агента: %v", err)
	}
}
