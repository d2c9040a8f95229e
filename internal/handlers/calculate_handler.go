package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/GGmuzem/stackcalc/internal/calculate"
)

// RequestBody структура для входных данных
type RequestBody struct {
	Expression string `json:"expression"`
}

// Response ответ на запрос вычисления
type Response struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// CalculateHandler синхронно вычисляет выражение из POST-запроса
func CalculateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSON(w, http.StatusMethodNotAllowed, Response{Error: "Method not allowed"})
		return
	}

	var reqBody RequestBody
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		WriteJSON(w, http.StatusBadRequest, Response{Error: "Invalid JSON"})
		return
	}

	result, err := calculate.Calculate(reqBody.Expression)
	if err != nil {
		WriteCalcError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, Response{Result: result})
}

// WriteCalcError отвечает 422 для ошибок вычисления и 500 для остальных
func WriteCalcError(w http.ResponseWriter, err error) {
	kind, ok := calculate.KindOf(err)
	if !ok {
		WriteJSON(w, http.StatusInternalServerError, Response{Error: "Internal server error"})
		return
	}
	WriteJSON(w, http.StatusUnprocessableEntity, Response{Error: err.Error(), Kind: kind.String()})
}

// WriteJSON записывает JSON-ответ с заданным статусом
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
