package agent

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/GGmuzem/stackcalc/internal/calculate"
	"github.com/GGmuzem/stackcalc/pkg/models"
)

const (
	defaultPollInterval  = time.Second
	defaultRetryInterval = time.Second
	// Максимальное количество попыток отправки результата
	defaultMaxRetries = 5
)

// TaskClient источник задач и приёмник результатов
type TaskClient interface {
	// GetTask возвращает false, если готовых задач нет
	GetTask(ctx context.Context) (models.Task, bool, error)
	SubmitResult(ctx context.Context, result models.TaskResult) error
}

// Agent представляет агента, который выполняет задачи
type Agent struct {
	ID     int
	client TaskClient

	PollInterval  time.Duration
	RetryInterval time.Duration
	MaxRetries    int
}

// NewAgent создает нового агента
func NewAgent(id int, client TaskClient) *Agent {
	return &Agent{
		ID:            id,
		client:        client,
		PollInterval:  defaultPollInterval,
		RetryInterval: defaultRetryInterval,
		MaxRetries:    defaultMaxRetries,
	}
}

// Run запускает агента и выполняет задачи до отмены ctx
func (a *Agent) Run(ctx context.Context) {
	log.Printf("Агент #%d: запущен", a.ID)

	for {
		processed, err := a.ProcessTask(ctx)
		if ctx.Err() != nil {
			log.Printf("Агент #%d: получен сигнал остановки", a.ID)
			return
		}
		if err != nil {
			log.Printf("Агент #%d: %v. Повторная попытка через %v", a.ID, err, a.PollInterval)
		}
		if processed {
			continue
		}
		if !sleep(ctx, a.PollInterval) {
			log.Printf("Агент #%d: получен сигнал остановки", a.ID)
			return
		}
	}
}

// ProcessTask получает одну задачу, вычисляет её и отправляет результат.
// Возвращает false, если задачи не было.
func (a *Agent) ProcessTask(ctx context.Context) (bool, error) {
	task, ok, err := a.client.GetTask(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка при получении задачи: %w", err)
	}
	if !ok {
		return false, nil
	}

	log.Printf("Агент #%d: получена задача #%d (выражение %s): %s", a.ID, task.ID, task.ExpressionID, task.Expression)
	result := computeTask(task)

	// Имитируем длительное время вычисления, если указано
	if task.OperationTime > 0 {
		if !sleep(ctx, time.Duration(task.OperationTime)*time.Millisecond) {
			return true, ctx.Err()
		}
	}

	if err := a.submitWithRetry(ctx, result); err != nil {
		return true, err
	}
	return true, nil
}

// computeTask вычисляет выражение задачи
func computeTask(task models.Task) models.TaskResult {
	result := models.TaskResult{ID: task.ID, ExpressionID: task.ExpressionID}

	value, err := calculate.Evaluate(task.Expression)
	if err != nil {
		result.Error = err.Error()
		if kind, ok := calculate.KindOf(err); ok {
			result.ErrorKind = kind.String()
		}
		return result
	}

	// JSON не передаёт бесконечности и NaN
	if math.IsInf(value, 0) || math.IsNaN(value) {
		result.Error = "Result is not a finite number"
		result.ErrorKind = models.ErrorKindNonFinite
		return result
	}

	result.Result = value
	return result
}

// submitWithRetry отправляет результат, увеличивая интервал с каждой попыткой
func (a *Agent) submitWithRetry(ctx context.Context, result models.TaskResult) error {
	var err error
	for attempt := 0; attempt < a.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("Агент #%d: повторная попытка #%d отправки результата задачи #%d", a.ID, attempt, result.ID)
			if !sleep(ctx, a.RetryInterval*time.Duration(attempt)) {
				return ctx.Err()
			}
		}

		if err = a.client.SubmitResult(ctx, result); err == nil {
			log.Printf("Агент #%d: результат задачи #%d успешно отправлен", a.ID, result.ID)
			return nil
		}
		log.Printf("Агент #%d: ошибка отправки результата (попытка %d): %v", a.ID, attempt+1, err)
	}
	return fmt.Errorf("не удалось отправить результат задачи #%d после %d попыток: %w", result.ID, a.MaxRetries, err)
}

// sleep ждёт d или отмены ctx. Возвращает false, если ctx отменён.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
