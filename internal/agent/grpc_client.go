package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/GGmuzem/stackcalc/pkg/calculator"
	"github.com/GGmuzem/stackcalc/pkg/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const callTimeout = 5 * time.Second

// GRPCClient клиент для gRPC взаимодействия с оркестратором
type GRPCClient struct {
	client  calculator.CalculatorClient
	agentID int32
}

// Dial открывает соединение с оркестратором без TLS
func Dial(serverAddr string) (*grpc.ClientConn, error) {
	conn, err := grpc.Dial(serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к оркестратору %s: %w", serverAddr, err)
	}
	return conn, nil
}

// NewGRPCClient создает клиента поверх соединения. Одно соединение может
// использоваться несколькими агентами.
func NewGRPCClient(conn grpc.ClientConnInterface, agentID int32) *GRPCClient {
	return &GRPCClient{
		client:  calculator.NewCalculatorClient(conn),
		agentID: agentID,
	}
}

// GetTask получает задачу от оркестратора
func (c *GRPCClient) GetTask(ctx context.Context) (models.Task, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := c.client.GetTask(ctx, &calculator.GetTaskRequest{AgentID: c.agentID})
	if err != nil {
		return models.Task{}, false, err
	}
	// Пустой ответ: задач нет
	if resp.ID == 0 {
		return models.Task{}, false, nil
	}
	return calculator.ConvertGRPCToTask(resp), true, nil
}

// SubmitResult отправляет результат задачи оркестратору
func (c *GRPCClient) SubmitResult(ctx context.Context, result models.TaskResult) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := c.client.SubmitResult(ctx, calculator.ConvertTaskResultToGRPC(result))
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("оркестратор отклонил результат: %s", resp.Message)
	}
	return nil
}

// Evaluate синхронно вычисляет выражение на стороне оркестратора
func (c *GRPCClient) Evaluate(ctx context.Context, expression string) (*calculator.EvaluateResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	return c.client.Evaluate(ctx, &calculator.EvaluateRequest{Expression: expression})
}
