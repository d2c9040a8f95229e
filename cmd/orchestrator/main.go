package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/GGmuzem/stackcalc/internal/config"
	"github.com/GGmuzem/stackcalc/internal/database"
	"github.com/GGmuzem/stackcalc/internal/orchestrator"
)

func main() {
	log.Println("Запуск оркестратора...")

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Ошибка инициализации базы данных: %v", err)
	}
	defer db.Close()

	server, err := orchestrator.NewServer(cfg, db)
	if err != nil {
		log.Fatalf("Ошибка создания оркестратора: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Printf("Оркестратор завершился с ошибкой: %v", err)
	}
}
