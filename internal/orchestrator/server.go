package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/GGmuzem/stackcalc/internal/auth"
	"github.com/GGmuzem/stackcalc/internal/config"
	"github.com/GGmuzem/stackcalc/internal/database"
	"github.com/GGmuzem/stackcalc/pkg/calculator"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

const shutdownTimeout = 5 * time.Second

// Server оркестратор: HTTP API для пользователей и gRPC для агентов
type Server struct {
	cfg   *config.Config
	db    database.Database
	tasks *TaskManager

	httpServer *http.Server
	grpcServer *grpc.Server
}

// NewServer создает оркестратор и восстанавливает очередь из базы данных
func NewServer(cfg *config.Config, db database.Database) (*Server, error) {
	tasks := NewTaskManager(db, cfg.EvaluationTime)
	if _, err := tasks.Restore(); err != nil {
		return nil, err
	}

	api := NewAPI(db, tasks, auth.NewManager(cfg.JWTSecret, cfg.TokenTTL))

	grpcServer := grpc.NewServer()
	calculator.RegisterCalculatorServer(grpcServer, NewCalculatorServer(tasks))
	// Включаем рефлексию для отладки
	reflection.Register(grpcServer)

	return &Server{
		cfg:   cfg,
		db:    db,
		tasks: tasks,
		httpServer: &http.Server{
			Addr:              ":" + cfg.HTTPPort,
			Handler:           api.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		grpcServer: grpcServer,
	}, nil
}

// Tasks возвращает менеджер задач
func (s *Server) Tasks() *TaskManager {
	return s.tasks
}

// Handler возвращает HTTP обработчик API
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run запускает HTTP и gRPC серверы и блокируется до отмены ctx
// или ошибки одного из серверов
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", ":"+s.cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("не удалось открыть порт gRPC %s: %w", s.cfg.GRPCPort, err)
	}

	errCh := make(chan error, 2)

	go func() {
		log.Printf("gRPC сервер запущен на порту :%s", s.cfg.GRPCPort)
		if err := s.grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("ошибка gRPC сервера: %w", err)
		}
	}()

	go func() {
		log.Printf("HTTP сервер запущен на порту :%s", s.cfg.HTTPPort)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("ошибка HTTP сервера: %w", err)
		}
	}()

	ticker := time.NewTicker(s.requeueInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.shutdown()
		case err := <-errCh:
			s.shutdown()
			return err
		case <-ticker.C:
			if n := s.tasks.RequeueStale(s.cfg.TaskTimeout); n > 0 {
				ready, processing := s.tasks.Stats()
				log.Printf("Возвращено в очередь %d задач, в очереди: %d, в обработке: %d", n, ready, processing)
			}
		}
	}
}

func (s *Server) requeueInterval() time.Duration {
	interval := s.cfg.TaskTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

func (s *Server) shutdown() error {
	log.Println("Остановка оркестратора...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}

	if err != nil {
		return fmt.Errorf("ошибка при остановке HTTP сервера: %w", err)
	}
	log.Println("Оркестратор остановлен")
	return nil
}
