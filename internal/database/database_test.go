package database

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/GGmuzem/stackcalc/internal/config"
	"github.com/GGmuzem/stackcalc/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func openTestDatabases(t *testing.T) map[string]Database {
	t.Helper()

	sqliteDB, err := Open(&config.Config{DBPath: filepath.Join(t.TempDir(), "data", "test.db")})
	require.NoError(t, err, "Не удалось создать базу данных")
	t.Cleanup(func() { sqliteDB.Close() })

	memoryDB, err := Open(&config.Config{UseMemoryDB: true})
	require.NoError(t, err)

	return map[string]Database{
		"sqlite": sqliteDB,
		"memory": memoryDB,
	}
}

func TestDatabaseOperations(t *testing.T) {
	for name, db := range openTestDatabases(t) {
		db := db
		t.Run(name, func(t *testing.T) {
			var userID int

			t.Run("CreateUser", func(t *testing.T) {
				id, err := db.CreateUser(&models.User{Login: "testuser", Password: "password123"})
				require.NoError(t, err, "Не удалось создать пользователя")
				assert.Greater(t, id, 0, "Некорректный ID пользователя")
				userID = id

				_, err = db.CreateUser(&models.User{Login: "testuser", Password: "other"})
				assert.ErrorIs(t, err, ErrUserExists)
			})

			t.Run("UserExists", func(t *testing.T) {
				exists, err := db.UserExists("testuser")
				require.NoError(t, err)
				assert.True(t, exists, "Пользователь должен существовать")

				exists, err = db.UserExists("nonexistentuser")
				require.NoError(t, err)
				assert.False(t, exists, "Пользователь не должен существовать")
			})

			t.Run("GetUserByLogin", func(t *testing.T) {
				user, err := db.GetUserByLogin("testuser")
				require.NoError(t, err)
				assert.Equal(t, "testuser", user.Login)
				assert.Equal(t, userID, user.ID)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")),
					"Пароль должен храниться в виде хеша")

				_, err = db.GetUserByLogin("nobody")
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("SaveAndGetExpression", func(t *testing.T) {
				expr := &models.Expression{
					ID:         "expr-1",
					Expression: "2+3*4",
					Status:     models.StatusPending,
					UserID:     userID,
				}
				require.NoError(t, db.SaveExpression(expr))

				stored, err := db.GetExpression("expr-1", userID)
				require.NoError(t, err)
				assert.Equal(t, "2+3*4", stored.Expression)
				assert.Equal(t, models.StatusPending, stored.Status)
				assert.NotZero(t, stored.CreatedAt)

				_, err = db.GetExpression("expr-1", userID+1)
				assert.ErrorIs(t, err, ErrNotFound, "Чужое выражение не должно быть доступно")
			})

			t.Run("UpdateExpressionResult", func(t *testing.T) {
				err := db.UpdateExpressionResult(&models.Expression{
					ID:     "expr-1",
					Status: models.StatusCompleted,
					Result: 14,
				})
				require.NoError(t, err)

				stored, err := db.GetExpression("expr-1", userID)
				require.NoError(t, err)
				assert.Equal(t, models.StatusCompleted, stored.Status)
				assert.Equal(t, 14.0, stored.Result)

				err = db.UpdateExpressionResult(&models.Expression{ID: "missing", Status: models.StatusError})
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("GetExpressions", func(t *testing.T) {
				require.NoError(t, db.SaveExpression(&models.Expression{
					ID:         "expr-2",
					Expression: "4/0",
					Status:     models.StatusPending,
					UserID:     userID,
				}))

				expressions, err := db.GetExpressions(userID)
				require.NoError(t, err)
				require.Len(t, expressions, 2)
				assert.Equal(t, "expr-2", expressions[0].ID)

				expressions, err = db.GetExpressions(userID + 1)
				require.NoError(t, err)
				assert.Empty(t, expressions)
			})

			t.Run("PendingExpressions", func(t *testing.T) {
				pending, err := db.PendingExpressions()
				require.NoError(t, err)
				require.Len(t, pending, 1)
				assert.Equal(t, "expr-2", pending[0].ID)

				require.NoError(t, db.UpdateExpressionResult(&models.Expression{
					ID:        "expr-2",
					Status:    models.StatusError,
					Error:     "Division by zero",
					ErrorKind: "division_by_zero",
				}))

				pending, err = db.PendingExpressions()
				require.NoError(t, err)
				assert.Empty(t, pending)

				stored, err := db.GetExpression("expr-2", userID)
				require.NoError(t, err)
				assert.Equal(t, "Division by zero", stored.Error)
				assert.Equal(t, "division_by_zero", stored.ErrorKind)
			})
		})
	}
}

func TestExpressionsOrderWithEqualCreatedAt(t *testing.T) {
	for name, db := range openTestDatabases(t) {
		db := db
		t.Run(name, func(t *testing.T) {
			// Идентификаторы, у которых строковый порядок расходится с порядком вставки
			ids := []string{"1700000000000-9", "1700000000000-10", "1700000000000-100"}
			for _, id := range ids {
				require.NoError(t, db.SaveExpression(&models.Expression{
					ID:         id,
					Expression: "1+1",
					Status:     models.StatusPending,
					UserID:     1,
					CreatedAt:  1700000000,
				}))
			}

			expressions, err := db.GetExpressions(1)
			require.NoError(t, err)
			require.Len(t, expressions, len(ids))
			for i, expr := range expressions {
				assert.Equal(t, ids[len(ids)-1-i], expr.ID, "Новые выражения должны идти первыми")
			}

			pending, err := db.PendingExpressions()
			require.NoError(t, err)
			require.Len(t, pending, len(ids))
			for i, expr := range pending {
				assert.Equal(t, ids[i], expr.ID, "Очередь восстанавливается в порядке поступления")
			}
		})
	}
}

func TestCreateUserConcurrentSameLogin(t *testing.T) {
	for name, db := range openTestDatabases(t) {
		db := db
		t.Run(name, func(t *testing.T) {
			const workers = 8
			var wg sync.WaitGroup
			errs := make([]error, workers)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = db.CreateUser(&models.User{Login: "racer", Password: fmt.Sprintf("pass-%d", i)})
				}(i)
			}
			wg.Wait()

			created := 0
			for _, err := range errs {
				if err == nil {
					created++
					continue
				}
				assert.ErrorIs(t, err, ErrUserExists)
			}
			assert.Equal(t, 1, created, "Логин должен быть зарегистрирован ровно один раз")
		})
	}
}
