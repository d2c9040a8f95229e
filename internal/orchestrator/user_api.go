package orchestrator

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/GGmuzem/stackcalc/internal/auth"
	"github.com/GGmuzem/stackcalc/internal/handlers"
	"github.com/GGmuzem/stackcalc/pkg/models"
)

// RegisterHandler обработчик регистрации пользователя
func (a *API) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}

	id, err := auth.RegisterUser(a.db, &req)
	switch {
	case errors.Is(err, auth.ErrEmptyCredentials):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, auth.ErrUserExists):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		log.Printf("RegisterHandler: ошибка при регистрации %s: %v", req.Login, err)
		writeError(w, http.StatusInternalServerError, "Ошибка при регистрации")
		return
	}

	log.Printf("RegisterHandler: зарегистрирован пользователь %s (ID: %d)", req.Login, id)
	handlers.WriteJSON(w, http.StatusOK, map[string]string{"message": "Пользователь успешно зарегистрирован"})
}

// LoginHandler обработчик входа пользователя
func (a *API) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}

	token, err := a.auth.LoginUser(a.db, &req)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		log.Printf("LoginHandler: ошибка при входе %s: %v", req.Login, err)
		writeError(w, http.StatusInternalServerError, "Ошибка при входе")
		return
	}

	handlers.WriteJSON(w, http.StatusOK, models.LoginResponse{Token: token})
}
