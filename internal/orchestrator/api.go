package orchestrator

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/GGmuzem/stackcalc/internal/auth"
	"github.com/GGmuzem/stackcalc/internal/calculate"
	"github.com/GGmuzem/stackcalc/internal/database"
	"github.com/GGmuzem/stackcalc/internal/handlers"
	"github.com/GGmuzem/stackcalc/pkg/models"
	"github.com/gorilla/mux"
)

// API обработчики HTTP-запросов оркестратора
type API struct {
	db    database.Database
	tasks *TaskManager
	auth  *auth.Manager
}

// NewAPI создает обработчики поверх хранилища и менеджера задач
func NewAPI(db database.Database, tasks *TaskManager, authManager *auth.Manager) *API {
	return &API{db: db, tasks: tasks, auth: authManager}
}

// ExpressionsResponse ответ со списком выражений пользователя
type ExpressionsResponse struct {
	Expressions []*models.Expression `json:"expressions"`
}

// ExpressionResponse ответ с одним выражением
type ExpressionResponse struct {
	Expression *models.Expression `json:"expression"`
}

// CalculateResponse ответ на постановку выражения в очередь
type CalculateResponse struct {
	ID string `json:"id"`
}

// Router собирает маршруты HTTP API
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/register", a.RegisterHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/login", a.LoginHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/evaluate", handlers.CalculateHandler).Methods(http.MethodPost, http.MethodOptions)

	api.HandleFunc("/calculate", a.auth.Middleware(a.db, a.CalculateHandler)).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/expressions", a.auth.Middleware(a.db, a.ListExpressionsHandler)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/expressions/{id}", a.auth.Middleware(a.db, a.GetExpressionHandler)).Methods(http.MethodGet, http.MethodOptions)

	return r
}

// corsMiddleware добавляет CORS заголовки и отвечает на OPTIONS запросы
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CalculateHandler принимает выражение и ставит его в очередь на вычисление
func (a *API) CalculateHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Требуется авторизация")
		return
	}

	var req handlers.RequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}

	// Пустое выражение не ставим в очередь, остальные ошибки найдёт агент
	if len(calculate.Tokenize(req.Expression)) == 0 {
		handlers.WriteCalcError(w, calculate.MalformedExpressionError(0))
		return
	}

	expr := &models.Expression{
		ID:         a.tasks.GenerateExpressionID(),
		Expression: req.Expression,
		UserID:     user.ID,
		CreatedAt:  time.Now().Unix(),
	}
	if err := a.tasks.AddExpression(expr); err != nil {
		log.Printf("CalculateHandler: ошибка при сохранении выражения: %v", err)
		writeError(w, http.StatusInternalServerError, "Не удалось сохранить выражение")
		return
	}

	log.Printf("CalculateHandler: пользователь %s добавил выражение %s: %s", user.Login, expr.ID, expr.Expression)
	handlers.WriteJSON(w, http.StatusCreated, CalculateResponse{ID: expr.ID})
}

// ListExpressionsHandler возвращает все выражения текущего пользователя
func (a *API) ListExpressionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Требуется авторизация")
		return
	}

	expressions, err := a.db.GetExpressions(user.ID)
	if err != nil {
		log.Printf("ListExpressionsHandler: ошибка при получении выражений пользователя %d: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "Ошибка при получении истории выражений")
		return
	}
	if expressions == nil {
		expressions = []*models.Expression{}
	}

	handlers.WriteJSON(w, http.StatusOK, ExpressionsResponse{Expressions: expressions})
}

// GetExpressionHandler возвращает выражение по ID. Чужие выражения
// не отличаются от несуществующих.
func (a *API) GetExpressionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Требуется авторизация")
		return
	}

	id := mux.Vars(r)["id"]
	expr, err := a.db.GetExpression(id, user.ID)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Выражение не найдено")
		return
	}
	if err != nil {
		log.Printf("GetExpressionHandler: ошибка при получении выражения %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Ошибка сервера")
		return
	}

	handlers.WriteJSON(w, http.StatusOK, ExpressionResponse{Expression: expr})
}

func writeError(w http.ResponseWriter, status int, message string) {
	handlers.WriteJSON(w, status, map[string]string{"error": message})
}
