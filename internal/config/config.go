package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config содержит настройки приложения
type Config struct {
	HTTPAddr           string        // Адрес HTTP сервера
	APIBaseURL         string        // Базовый URL REST API
	APITimeout         time.Duration // Таймаут одного запроса к API
	AggregationTimeout time.Duration // Общий таймаут расчета показателей
	Location           *time.Location
	ChartFallback      string // unavailable | synthetic
	JWTSecret          string // Секрет для проверки JWT
	LogLevel           logrus.Level
	Endpoints          Endpoints

	DBHost     string // Хост базы данных снимков (пусто - снимки отключены)
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	SnapshotSchedule string // cron-выражение для снимков дашборда
	SnapshotToken    string // Токен сервисного пользователя для фоновых запросов

	DigestRecipient string // Получатель ежедневной сводки
}

const (
	ChartFallbackUnavailable = "unavailable"
	ChartFallbackSynthetic   = "synthetic"
)

// Endpoints - пути коллекций REST API относительно базового URL
type Endpoints struct {
	Quotes   string `yaml:"quotes"`
	Invoices string `yaml:"invoices"`
	Projects string `yaml:"projects"`
	Clients  string `yaml:"clients"`
}

// DefaultEndpoints соответствуют маршрутам контроллеров бэкенда
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Quotes:   "/user/client/quotes",
		Invoices: "/user/client/project/quote/invoices",
		Projects: "/user/projects",
		Clients:  "/user/clients",
	}
}

// LoadConfig загружает конфигурацию из .env файла и переменных окружения
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Файл .env не найден")
	}

	location, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("неверный часовой пояс: %w", err)
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}

	fallback := getEnv("CHART_FALLBACK", ChartFallbackUnavailable)
	if fallback != ChartFallbackUnavailable && fallback != ChartFallbackSynthetic {
		return nil, fmt.Errorf("неизвестный режим CHART_FALLBACK: %q", fallback)
	}

	endpoints := DefaultEndpoints()
	if path := os.Getenv("ENDPOINTS_FILE"); path != "" {
		endpoints, err = LoadEndpoints(path)
		if err != nil {
			return nil, err
		}
	}

	config := &Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:8081/api"),
		APITimeout:         getDuration("API_TIMEOUT", 10*time.Second),
		AggregationTimeout: getDuration("AGGREGATION_TIMEOUT", 15*time.Second),
		Location:           location,
		ChartFallback:      fallback,
		JWTSecret:          getEnv("JWT_SECRET", "default-secret-key"),
		LogLevel:           level,
		Endpoints:          endpoints,
		DBHost:             os.Getenv("DB_HOST"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", "postgres"),
		DBName:             getEnv("DB_NAME", "dashboard"),
		SnapshotSchedule:   getEnv("SNAPSHOT_SCHEDULE", "0 */12 * * *"),
		SnapshotToken:      os.Getenv("SNAPSHOT_TOKEN"),
		DigestRecipient:    os.Getenv("DIGEST_RECIPIENT"),
	}

	return config, nil
}

// LoadEndpoints читает YAML-каталог путей API. Незаданные пути
// берутся из DefaultEndpoints.
func LoadEndpoints(path string) (Endpoints, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Endpoints{}, fmt.Errorf("не удалось прочитать каталог эндпоинтов: %w", err)
	}

	endpoints := DefaultEndpoints()
	if err := yaml.Unmarshal(raw, &endpoints); err != nil {
		return Endpoints{}, fmt.Errorf("ошибка разбора каталога эндпоинтов: %w", err)
	}
	defaults := DefaultEndpoints()
	if endpoints.Quotes == "" {
		endpoints.Quotes = defaults.Quotes
	}
	if endpoints.Invoices == "" {
		endpoints.Invoices = defaults.Invoices
	}
	if endpoints.Projects == "" {
		endpoints.Projects = defaults.Projects
	}
	if endpoints.Clients == "" {
		endpoints.Clients = defaults.Clients
	}
	return endpoints, nil
}

// SnapshotsEnabled сообщает, настроено ли хранилище снимков
func (c *Config) SnapshotsEnabled() bool {
	return c.DBHost != ""
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	// Допускаем значение в секундах
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	logrus.WithField("key", key).Warn("Неверная длительность, используется значение по умолчанию")
	return defaultValue
}
