package orchestrator

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GGmuzem/stackcalc/internal/database"
	"github.com/GGmuzem/stackcalc/pkg/models"
)

// ErrTaskNotFound возвращается при получении результата неизвестной задачи
var ErrTaskNotFound = errors.New("задача не найдена")

// TaskManager раздаёт выражения агентам и собирает результаты.
// Одна задача соответствует одному выражению целиком.
type TaskManager struct {
	db            database.Database
	operationTime time.Duration

	mu          sync.Mutex
	tasks       map[int]*models.Task // Активные задачи: ID -> Task
	readyTasks  []int                // Очередь готовых к выполнению задач
	processing  map[int]time.Time    // Задачи в обработке: ID -> время выдачи
	taskCounter int

	exprCounter int64
}

// NewTaskManager создает менеджер задач. operationTime передаётся агентам
// для имитации длительного вычисления.
func NewTaskManager(db database.Database, operationTime time.Duration) *TaskManager {
	return &TaskManager{
		db:            db,
		operationTime: operationTime,
		tasks:         make(map[int]*models.Task),
		processing:    make(map[int]time.Time),
	}
}

// GenerateExpressionID генерирует уникальный ID для выражения с использованием временной метки
func (tm *TaskManager) GenerateExpressionID() string {
	id := atomic.AddInt64(&tm.exprCounter, 1)
	timestamp := time.Now().UnixNano() / int64(time.Millisecond)
	return strconv.FormatInt(timestamp, 10) + "-" + strconv.FormatInt(id, 10)
}

// AddExpression сохраняет новое выражение и ставит его в очередь
func (tm *TaskManager) AddExpression(expr *models.Expression) error {
	expr.Status = models.StatusPending
	if err := tm.db.SaveExpression(expr); err != nil {
		return err
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	task := tm.enqueueLocked(expr)
	log.Printf("AddExpression: выражение %s поставлено в очередь как задача #%d, в очереди: %d",
		expr.ID, task.ID, len(tm.readyTasks))
	return nil
}

func (tm *TaskManager) enqueueLocked(expr *models.Expression) *models.Task {
	tm.taskCounter++
	task := &models.Task{
		ID:            tm.taskCounter,
		ExpressionID:  expr.ID,
		Expression:    expr.Expression,
		OperationTime: int(tm.operationTime / time.Millisecond),
	}
	tm.tasks[task.ID] = task
	tm.readyTasks = append(tm.readyTasks, task.ID)
	return task
}

// Restore возвращает в очередь выражения, не вычисленные до перезапуска
func (tm *TaskManager) Restore() (int, error) {
	pending, err := tm.db.PendingExpressions()
	if err != nil {
		return 0, fmt.Errorf("не удалось загрузить невычисленные выражения: %w", err)
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	for _, expr := range pending {
		tm.enqueueLocked(expr)
	}
	if len(pending) > 0 {
		log.Printf("Restore: восстановлено %d невычисленных выражений", len(pending))
	}
	return len(pending), nil
}

// GetTask возвращает задачу для выполнения агентом
func (tm *TaskManager) GetTask() (models.Task, bool) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for len(tm.readyTasks) > 0 {
		id := tm.readyTasks[0]
		tm.readyTasks = tm.readyTasks[1:]

		task, ok := tm.tasks[id]
		if !ok {
			// Результат пришёл раньше, чем задача была снова выдана
			continue
		}

		tm.processing[id] = time.Now()
		err := tm.db.UpdateExpressionResult(&models.Expression{ID: task.ExpressionID, Status: models.StatusProcessing})
		if err != nil {
			log.Printf("GetTask: не удалось обновить статус выражения %s: %v", task.ExpressionID, err)
		}
		return *task, true
	}
	return models.Task{}, false
}

// AddResult сохраняет результат выполнения задачи. Задача снимается только
// после успешной записи в БД, иначе агент сможет повторить отправку.
func (tm *TaskManager) AddResult(result models.TaskResult) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	task, ok := tm.tasks[result.ID]
	if !ok {
		return fmt.Errorf("задача #%d: %w", result.ID, ErrTaskNotFound)
	}

	expr := &models.Expression{ID: task.ExpressionID}
	switch {
	case result.Error != "":
		expr.Status = models.StatusError
		expr.Error = result.Error
		expr.ErrorKind = result.ErrorKind
	case math.IsInf(result.Result, 0) || math.IsNaN(result.Result):
		expr.Status = models.StatusError
		expr.Error = "Result is not a finite number"
		expr.ErrorKind = models.ErrorKindNonFinite
	default:
		expr.Status = models.StatusCompleted
		expr.Result = result.Result
	}

	if err := tm.db.UpdateExpressionResult(expr); err != nil {
		return fmt.Errorf("не удалось сохранить результат выражения %s: %w", expr.ID, err)
	}

	delete(tm.tasks, result.ID)
	delete(tm.processing, result.ID)
	log.Printf("AddResult: выражение %s завершено со статусом %s", expr.ID, expr.Status)
	return nil
}

// RequeueStale возвращает в очередь задачи, которые обрабатываются дольше timeout
func (tm *TaskManager) RequeueStale(timeout time.Duration) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	requeued := 0
	now := time.Now()
	for id, started := range tm.processing {
		if now.Sub(started) < timeout {
			continue
		}
		delete(tm.processing, id)
		tm.readyTasks = append(tm.readyTasks, id)
		requeued++
		log.Printf("RequeueStale: задача #%d не завершена за %v, возвращена в очередь", id, timeout)
	}
	return requeued
}

// Stats возвращает количество задач в очереди и в обработке
func (tm *TaskManager) Stats() (ready, processing int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.readyTasks), len(tm.processing)
}
