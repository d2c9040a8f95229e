package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Значения по умолчанию
const (
	defaultHTTPPort       = "8080"
	defaultGRPCPort       = "50052"
	defaultDBPath         = "./calculator.db"
	defaultJWTSecret      = "super_secret_key_change_in_production"
	defaultTokenTTL       = 60
	defaultComputingPower = 3
	defaultTaskTimeout    = 30
)

// Config настройки оркестратора и агента
type Config struct {
	HTTPPort   string
	GRPCPort   string
	GRPCServer string

	DBPath      string
	UseMemoryDB bool

	JWTSecret string
	TokenTTL  time.Duration

	ComputingPower int
	// EvaluationTime имитация длительного вычисления, передаётся агентам в задаче
	EvaluationTime time.Duration
	// TaskTimeout время, после которого зависшая задача возвращается в очередь
	TaskTimeout time.Duration
}

// Load читает .env (если он есть) и переменные окружения
func Load(envFiles ...string) *Config {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Не удалось прочитать .env: %v", err)
	}

	cfg := &Config{
		HTTPPort:       getEnvString("HTTP_PORT", defaultHTTPPort),
		GRPCPort:       getEnvString("GRPC_PORT", defaultGRPCPort),
		DBPath:         getEnvString("DB_PATH", defaultDBPath),
		UseMemoryDB:    getEnvBool("USE_MEMORY_DB", false),
		JWTSecret:      getEnvString("JWT_SECRET", defaultJWTSecret),
		TokenTTL:       time.Duration(getEnvInt("TOKEN_TTL_MINUTES", defaultTokenTTL)) * time.Minute,
		ComputingPower: getEnvInt("COMPUTING_POWER", defaultComputingPower),
		EvaluationTime: time.Duration(getEnvInt("TIME_EVALUATION_MS", 0)) * time.Millisecond,
		TaskTimeout:    time.Duration(getEnvInt("TASK_TIMEOUT_SEC", defaultTaskTimeout)) * time.Second,
	}

	cfg.GRPCServer = os.Getenv("GRPC_SERVER")
	if cfg.GRPCServer == "" {
		cfg.GRPCServer = "localhost:" + cfg.GRPCPort
	}

	if cfg.ComputingPower <= 0 {
		log.Printf("COMPUTING_POWER должно быть положительным, используем значение по умолчанию: %d", defaultComputingPower)
		cfg.ComputingPower = defaultComputingPower
	}
	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("JWT_SECRET не указан, используется ключ для разработки")
	}

	return cfg
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		log.Printf("%s=%q некорректно, используем значение по умолчанию: %d", key, raw, defaultVal)
		return defaultVal
	}
	return val
}

func getEnvBool(key string, defaultVal bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("%s=%q некорректно, используем значение по умолчанию: %v", key, raw, defaultVal)
		return defaultVal
	}
	return val
}
