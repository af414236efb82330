package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// AuthService проверяет JWT, выданные бэкендом. Ключ подписи общий
// с бэкендом, поэтому токен пользователя можно передавать дальше в API.
type AuthService struct {
	jwtSecret   string
	tokenExpiry time.Duration
	logger      *logrus.Logger
}

func NewAuthService(jwtSecret string, tokenExpiry time.Duration, logger *logrus.Logger) *AuthService {
	return &AuthService{
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
		logger:      logger,
	}
}

// GenerateJWTToken Генерация JWT токена для фоновых запросов сервиса
func (s *AuthService) GenerateJWTToken(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseToken Разбор и валидация JWT токена
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	s.logger.Debug("Попытка парсинга JWT токена")

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Проверка метода подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		s.logger.WithError(err).Warn("Невалидный JWT токен")
		return "", fmt.Errorf("невалидный токен: %w", err)
	}

	// Извлечение идентификатора пользователя
	subject := claims.Subject
	if subject == "" {
		s.logger.Error("Не удалось извлечь идентификатор пользователя из токена")
		return "", fmt.Errorf("некорректные claims токена")
	}

	s.logger.WithField("subject", subject).Debug("JWT токен успешно распознан")
	return subject, nil
}
