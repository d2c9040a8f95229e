package database

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GGmuzem/stackcalc/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

// MemoryDB реализация БД в памяти без использования SQLite
type MemoryDB struct {
	users       map[string]*models.User
	expressions map[string]*models.Expression
	exprSeq     map[string]int64 // Порядок вставки выражений
	mutex       sync.RWMutex
	userIDSeq   int
	nextSeq     int64
}

// NewMemoryDB создает новую in-memory БД
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		users:       make(map[string]*models.User),
		expressions: make(map[string]*models.Expression),
		exprSeq:     make(map[string]int64),
		userIDSeq:   1,
	}
}

// Close просто заглушка для совместимости
func (db *MemoryDB) Close() error {
	return nil
}

// MigrateDB для in-memory не требуется миграция
func (db *MemoryDB) MigrateDB() error {
	return nil
}

// UserExists проверяет существование пользователя с указанным логином
func (db *MemoryDB) UserExists(login string) (bool, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	_, exists := db.users[login]
	return exists, nil
}

// CreateUser создает нового пользователя
func (db *MemoryDB) CreateUser(user *models.User) (int, error) {
	// Хешируем пароль до захвата блокировки
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("ошибка при хэшировании пароля: %w", err)
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, exists := db.users[user.Login]; exists {
		return 0, ErrUserExists
	}

	userID := db.userIDSeq
	db.userIDSeq++

	db.users[user.Login] = &models.User{
		ID:       userID,
		Login:    user.Login,
		Password: string(hashedPassword),
	}
	return userID, nil
}

// GetUserByLogin возвращает пользователя по логину
func (db *MemoryDB) GetUserByLogin(login string) (*models.User, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	user, exists := db.users[login]
	if !exists {
		return nil, fmt.Errorf("пользователь с логином %s: %w", login, ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

// SaveExpression сохраняет выражение в БД
func (db *MemoryDB) SaveExpression(expr *models.Expression) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, exists := db.expressions[expr.ID]; exists {
		return fmt.Errorf("выражение с ID %s уже существует", expr.ID)
	}
	if expr.CreatedAt == 0 {
		expr.CreatedAt = time.Now().Unix()
	}

	// Храним копию, чтобы вызывающий код не мог изменить её в обход БД
	copied := *expr
	db.expressions[expr.ID] = &copied
	db.nextSeq++
	db.exprSeq[expr.ID] = db.nextSeq
	return nil
}

// UpdateExpressionResult обновляет статус, результат и ошибку выражения
func (db *MemoryDB) UpdateExpressionResult(expr *models.Expression) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	stored, exists := db.expressions[expr.ID]
	if !exists {
		return fmt.Errorf("выражение с ID %s: %w", expr.ID, ErrNotFound)
	}

	stored.Status = expr.Status
	stored.Result = expr.Result
	stored.Error = expr.Error
	stored.ErrorKind = expr.ErrorKind
	return nil
}

// GetExpression возвращает выражение по ID и user_id
func (db *MemoryDB) GetExpression(id string, userID int) (*models.Expression, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	expr, exists := db.expressions[id]
	if !exists || expr.UserID != userID {
		return nil, fmt.Errorf("выражение с ID %s: %w", id, ErrNotFound)
	}
	copied := *expr
	return &copied, nil
}

// GetExpressions возвращает все выражения пользователя, новые первыми
func (db *MemoryDB) GetExpressions(userID int) ([]*models.Expression, error) {
	expressions := db.filter(func(expr *models.Expression) bool {
		return expr.UserID == userID
	})
	db.sortBySeq(expressions, true)
	return expressions, nil
}

// PendingExpressions возвращает невычисленные выражения в порядке поступления
func (db *MemoryDB) PendingExpressions() ([]*models.Expression, error) {
	expressions := db.filter(func(expr *models.Expression) bool {
		return !expr.IsFinished()
	})
	db.sortBySeq(expressions, false)
	return expressions, nil
}

func (db *MemoryDB) filter(keep func(*models.Expression) bool) []*models.Expression {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	expressions := []*models.Expression{}
	for _, expr := range db.expressions {
		if keep(expr) {
			copied := *expr
			expressions = append(expressions, &copied)
		}
	}
	return expressions
}

// sortBySeq упорядочивает по времени создания, при равенстве по порядку вставки
func (db *MemoryDB) sortBySeq(expressions []*models.Expression, newestFirst bool) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	sort.Slice(expressions, func(i, j int) bool {
		a, b := expressions[i], expressions[j]
		if newestFirst {
			a, b = b, a
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return db.exprSeq[a.ID] < db.exprSeq[b.ID]
	})
}
