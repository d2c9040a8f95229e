package models

// Статусы выражения
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// ErrorKindNonFinite вид ошибки для результата, который не является конечным числом
const ErrorKindNonFinite = "non_finite_result"

// Expression выражение, отправленное пользователем на вычисление
type Expression struct {
	ID         string  `json:"id"`
	Expression string  `json:"expression"`
	Status     string  `json:"status"`
	Result     float64 `json:"result"`
	Error      string  `json:"error,omitempty"`
	ErrorKind  string  `json:"error_kind,omitempty"`
	UserID     int     `json:"user_id,omitempty"`
	CreatedAt  int64   `json:"created_at,omitempty"`
}

// IsFinished сообщает, что выражение вычислено или завершилось ошибкой
func (e *Expression) IsFinished() bool {
	return e.Status == StatusCompleted || e.Status == StatusError
}

// Task задача для агента: одно выражение целиком
type Task struct {
	ID            int    `json:"id"`
	ExpressionID  string `json:"expression_id"`
	Expression    string `json:"expression"`
	OperationTime int    `json:"operation_time"`
}

// TaskResult результат выполнения задачи агентом
type TaskResult struct {
	ID           int     `json:"id"`
	ExpressionID string  `json:"expression_id,omitempty"`
	Result       float64 `json:"result"`
	Error        string  `json:"error,omitempty"`
	ErrorKind    string  `json:"error_kind,omitempty"`
}

// User представляет пользователя системы
type User struct {
	ID       int    `json:"id"`
	Login    string `json:"login"`
	Password string `json:"-"` // Не сериализуем пароль в JSON
}

// LoginRequest используется для запроса на вход
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse ответ на успешный вход
type LoginResponse struct {
	Token string `json:"token"`
}

// RegisterRequest используется для регистрации
type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
