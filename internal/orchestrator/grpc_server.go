package orchestrator

import (
	"context"
	"errors"
	"log"

	"github.com/GGmuzem/stackcalc/internal/calculate"
	"github.com/GGmuzem/stackcalc/pkg/calculator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CalculatorServer реализация gRPC сервера оркестратора
type CalculatorServer struct {
	calculator.UnimplementedCalculatorServer
	tasks *TaskManager
}

// NewCalculatorServer создает новый gRPC сервер оркестратора
func NewCalculatorServer(tasks *TaskManager) *CalculatorServer {
	return &CalculatorServer{tasks: tasks}
}

// GetTask выдаёт агенту следующую задачу. Если задач нет, возвращается
// пустая задача с ID == 0.
func (s *CalculatorServer) GetTask(ctx context.Context, req *calculator.GetTaskRequest) (*calculator.Task, error) {
	task, ok := s.tasks.GetTask()
	if !ok {
		return &calculator.Task{}, nil
	}

	log.Printf("GetTask: агент %d получил задачу #%d (выражение %s)", req.AgentID, task.ID, task.ExpressionID)
	return calculator.ConvertTaskToGRPC(task), nil
}

// SubmitResult принимает результат вычисления от агента
func (s *CalculatorServer) SubmitResult(ctx context.Context, req *calculator.TaskResult) (*calculator.SubmitResultResponse, error) {
	err := s.tasks.AddResult(calculator.ConvertGRPCToTaskResult(req))
	if errors.Is(err, ErrTaskNotFound) {
		return nil, status.Errorf(codes.NotFound, "%v", err)
	}
	if err != nil {
		log.Printf("SubmitResult: %v", err)
		return nil, status.Errorf(codes.Internal, "%v", err)
	}

	return &calculator.SubmitResultResponse{Success: true, Message: "Результат принят"}, nil
}

// Evaluate вычисляет выражение синхронно
func (s *CalculatorServer) Evaluate(ctx context.Context, req *calculator.EvaluateRequest) (*calculator.EvaluateResponse, error) {
	result, err := calculate.Calculate(req.Expression)
	if err != nil {
		kind, ok := calculate.KindOf(err)
		if !ok {
			return nil, status.Errorf(codes.Internal, "%v", err)
		}
		return &calculator.EvaluateResponse{Error: err.Error(), Kind: kind.String()}, nil
	}
	return &calculator.EvaluateResponse{Result: result}, nil
}
