package main

import (
	"log"
	"net/http"
	"time"

	"github.com/GGmuzem/stackcalc/internal/config"
	"github.com/GGmuzem/stackcalc/internal/handlers"
	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	// Регистрируем обработчики
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/calculate", handlers.CalculateHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Сервис запущен на порту %s", cfg.HTTPPort)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
