package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/GGmuzem/stackcalc/internal/config"
	"github.com/GGmuzem/stackcalc/pkg/models"
)

var (
	// ErrNotFound возвращается, если запись не найдена
	ErrNotFound = errors.New("запись не найдена")
	// ErrUserExists возвращается при попытке создать пользователя с занятым логином
	ErrUserExists = errors.New("пользователь с таким логином уже существует")
)

// Database описывает хранилище пользователей и выражений
type Database interface {
	MigrateDB() error
	Close() error

	UserExists(login string) (bool, error)
	CreateUser(user *models.User) (int, error)
	GetUserByLogin(login string) (*models.User, error)

	SaveExpression(expr *models.Expression) error
	UpdateExpressionResult(expr *models.Expression) error
	GetExpression(id string, userID int) (*models.Expression, error)
	GetExpressions(userID int) ([]*models.Expression, error)
	// PendingExpressions возвращает выражения, которые ещё не вычислены
	PendingExpressions() ([]*models.Expression, error)
}

var (
	_ Database = (*SQLiteDB)(nil)
	_ Database = (*MemoryDB)(nil)
)

// Open создает хранилище по конфигурации и выполняет миграции
func Open(cfg *config.Config) (Database, error) {
	if cfg.UseMemoryDB {
		log.Println("Используется хранилище в памяти")
		return NewMemoryDB(), nil
	}

	// Убедимся, что директория существует
	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию для базы данных: %w", err)
	}

	db, err := New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateDB(); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("База данных SQLite открыта: %s", cfg.DBPath)
	return db, nil
}
