package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GGmuzem/stackcalc/internal/database"
	"github.com/GGmuzem/stackcalc/pkg/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("неверный логин или пароль")
	ErrInvalidToken       = errors.New("неверный или истекший токен")
	ErrUserExists         = errors.New("пользователь с таким логином уже существует")
	ErrEmptyCredentials   = errors.New("логин и пароль не могут быть пустыми")
)

// Claims структура для JWT-токена
type Claims struct {
	UserID int    `json:"user_id"`
	Login  string `json:"login"`
	jwt.RegisteredClaims
}

// Manager выпускает и проверяет токены
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager создает менеджер токенов с ключом подписи и временем жизни токена
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// GenerateToken создает JWT токен для пользователя
func (m *Manager) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Login:  user.Login,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.Itoa(user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка при подписи токена: %w", err)
	}
	return tokenString, nil
}

// ValidateToken проверяет и валидирует JWT токен
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// ExtractTokenFromRequest извлекает токен из заголовка Authorization
func ExtractTokenFromRequest(r *http.Request) string {
	bearerToken := r.Header.Get("Authorization")
	if len(bearerToken) > 7 && strings.ToUpper(bearerToken[0:7]) == "BEARER " {
		return bearerToken[7:]
	}
	return ""
}

// RegisterUser регистрирует нового пользователя
func RegisterUser(db database.Database, req *models.RegisterRequest) (int, error) {
	if req.Login == "" || req.Password == "" {
		return 0, ErrEmptyCredentials
	}

	id, err := db.CreateUser(&models.User{Login: req.Login, Password: req.Password})
	if errors.Is(err, database.ErrUserExists) {
		return 0, ErrUserExists
	}
	return id, err
}

// LoginUser аутентифицирует пользователя и возвращает JWT токен
func (m *Manager) LoginUser(db database.Database, req *models.LoginRequest) (string, error) {
	user, err := db.GetUserByLogin(req.Login)
	if err != nil {
		log.Printf("LoginUser: Пользователь %s не найден: %v", req.Login, err)
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Printf("LoginUser: Неверный пароль для пользователя %s", req.Login)
		return "", ErrInvalidCredentials
	}

	return m.GenerateToken(user)
}

// Middleware проверяет токен и кладёт пользователя в контекст запроса
func (m *Manager) Middleware(db database.Database, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := ExtractTokenFromRequest(r)
		if tokenString == "" {
			writeUnauthorized(w, "Требуется авторизация")
			return
		}

		claims, err := m.ValidateToken(tokenString)
		if err != nil {
			writeUnauthorized(w, "Неверный токен")
			return
		}

		// Пользователь мог быть удалён после выдачи токена
		user, err := db.GetUserByLogin(claims.Login)
		if err != nil || user.ID != claims.UserID {
			writeUnauthorized(w, "Пользователь не найден")
			return
		}

		next(w, r.WithContext(SetUserContext(r.Context(), user)))
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
