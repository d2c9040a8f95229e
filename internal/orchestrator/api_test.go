package orchestrator

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GGmuzem/stackcalc/internal/auth"
	"github.com/GGmuzem/stackcalc/internal/database"
	"github.com/GGmuzem/stackcalc/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	handler http.Handler
	tasks   *TaskManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := database.NewMemoryDB()
	tasks := NewTaskManager(db, 0)
	api := NewAPI(db, tasks, auth.NewManager("test-secret", time.Hour))
	return &testAPI{handler: api.Router(), tasks: tasks}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) login(t *testing.T, login, password string) string {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/api/v1/register", "", models.RegisterRequest{Login: login, Password: password})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = a.do(t, http.MethodPost, "/api/v1/login", "", models.LoginRequest{Login: login, Password: password})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterAndLogin(t *testing.T) {
	a := newTestAPI(t)
	a.login(t, "alice", "secret")

	t.Run("повторная регистрация", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/api/v1/register", "", models.RegisterRequest{Login: "alice", Password: "other"})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("пустые данные", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/api/v1/register", "", models.RegisterRequest{Login: "", Password: "x"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("неверный пароль", func(t *testing.T) {
		rr := a.do(t, http.MethodPost, "/api/v1/login", "", models.LoginRequest{Login: "alice", Password: "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("некорректный JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewBufferString("{"))
		rr := httptest.NewRecorder()
		a.handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCalculateRequiresAuth(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodPost, "/api/v1/calculate", "", map[string]string{"expression": "1+1"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = a.do(t, http.MethodPost, "/api/v1/calculate", "not-a-token", map[string]string{"expression": "1+1"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = a.do(t, http.MethodGet, "/api/v1/expressions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCalculateAndFetch(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, "bob", "pass")

	rr := a.do(t, http.MethodPost, "/api/v1/calculate", token, map[string]string{"expression": "2+2*2"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created CalculateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rr = a.do(t, http.MethodGet, "/api/v1/expressions/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var one ExpressionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &one))
	assert.Equal(t, models.StatusPending, one.Expression.Status)
	assert.Equal(t, "2+2*2", one.Expression.Expression)

	// Агент забирает задачу и возвращает результат
	task, ok := a.tasks.GetTask()
	require.True(t, ok)
	require.NoError(t, a.tasks.AddResult(models.TaskResult{ID: task.ID, Result: 6}))

	rr = a.do(t, http.MethodGet, "/api/v1/expressions/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &one))
	assert.Equal(t, models.StatusCompleted, one.Expression.Status)
	assert.Equal(t, 6.0, one.Expression.Result)

	rr = a.do(t, http.MethodGet, "/api/v1/expressions", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list ExpressionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Expressions, 1)
	assert.Equal(t, created.ID, list.Expressions[0].ID)
}

func TestZeroResultIsReported(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, "dave", "pass")

	rr := a.do(t, http.MethodPost, "/api/v1/calculate", token, map[string]string{"expression": "1-1"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created CalculateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	task, ok := a.tasks.GetTask()
	require.True(t, ok)
	require.NoError(t, a.tasks.AddResult(models.TaskResult{ID: task.ID, Result: 0}))

	rr = a.do(t, http.MethodGet, "/api/v1/expressions/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var raw struct {
		Expression map[string]json.RawMessage `json:"expression"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	assert.JSONEq(t, `"completed"`, string(raw.Expression["status"]))
	require.Contains(t, raw.Expression, "result", "Нулевой результат должен присутствовать в ответе")
	assert.JSONEq(t, `0`, string(raw.Expression["result"]))
}

func TestCalculateEmptyExpression(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, "carol", "pass")

	rr := a.do(t, http.MethodPost, "/api/v1/calculate", token, map[string]string{"expression": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	_, ok := a.tasks.GetTask()
	assert.False(t, ok, "Пустое выражение не должно попадать в очередь")
}

func TestExpressionsIsolatedByUser(t *testing.T) {
	a := newTestAPI(t)
	owner := a.login(t, "owner", "pass")
	other := a.login(t, "other", "pass")

	rr := a.do(t, http.MethodPost, "/api/v1/calculate", owner, map[string]string{"expression": "1"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created CalculateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = a.do(t, http.MethodGet, "/api/v1/expressions/"+created.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = a.do(t, http.MethodGet, "/api/v1/expressions", other, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"expressions": []}`, rr.Body.String())
}

func TestEvaluateIsPublic(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodPost, "/api/v1/evaluate", "", map[string]string{"expression": "(1+2)^2"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"result": "9"}`, rr.Body.String())

	rr = a.do(t, http.MethodPost, "/api/v1/evaluate", "", map[string]string{"expression": "0^-1"})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid_domain")
}

func TestCORSPreflight(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodOptions, "/api/v1/calculate", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
