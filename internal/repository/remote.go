package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mudon/freelance-management-system-sub000/internal/metrics"
)

// maxResponseBytes - предел размера тела одного ответа API
const maxResponseBytes = 32 << 20

// ErrResponseTooLarge - тело ответа API превысило предел размера
var ErrResponseTooLarge = errors.New("ответ API слишком большой")

type tokenKey struct{}

// WithBearerToken сохраняет токен вызывающего пользователя в контексте.
// RemoteClient передает его в REST API в заголовке Authorization.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func bearerToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// RemoteError - ответ REST API с кодом, отличным от 2xx
type RemoteError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("API %s вернул статус %d", e.Endpoint, e.StatusCode)
}

// RemoteClient - клиент REST API только для чтения коллекций и счетчиков.
// Повторов и кеширования нет: ошибка запроса сразу возвращается вызывающему.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
	maxBody    int64
	logger     *logrus.Logger
}

// NewRemoteClient создаёт клиент для базового URL API
func NewRemoteClient(baseURL string, timeout time.Duration, logger *logrus.Logger) (*RemoteClient, error) {
	if baseURL == "" {
		return nil, errors.New("не задан базовый URL API")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("неверный базовый URL API: %w", err)
	}
	return &RemoteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBody: maxResponseBytes,
		logger:  logger,
	}, nil
}

// FetchCollection запрашивает список записей. Пустое тело или null
// означают пустой список; ответ вида {"content": [...]} тоже принимается.
func FetchCollection[T any](ctx context.Context, c *RemoteClient, endpoint string, params url.Values) ([]T, error) {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []T{}, nil
	}

	if body[0] == '{' {
		var page struct {
			Content []T `json:"content"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("ошибка разбора ответа %s: %w", endpoint, err)
		}
		if page.Content == nil {
			return []T{}, nil
		}
		return page.Content, nil
	}

	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа %s: %w", endpoint, err)
	}
	return items, nil
}

// FetchScalar запрашивает одиночное значение (счетчик или сумму)
func (c *RemoteClient) FetchScalar(ctx context.Context, endpoint string) (Scalar, error) {
	body, err := c.get(ctx, endpoint, nil)
	if err != nil {
		return Scalar{}, err
	}
	return ParseScalar(body), nil
}

func (c *RemoteClient) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования запроса %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if token := bearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	body, err := c.do(req, endpoint)
	metrics.ObserveUpstream(metricLabel(endpoint), err, time.Since(started))
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"error":    err.Error(),
		}).Warn("Запрос к API завершился ошибкой")
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"bytes":    len(body),
		"duration": time.Since(started).String(),
	}).Debug("Ответ API получен")
	return body, nil
}

func (c *RemoteClient) do(req *http.Request, endpoint string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка при выполнении запроса %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении ответа %s: %w", endpoint, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%s: %w", endpoint, ErrResponseTooLarge)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), 256),
		}
	}
	return body, nil
}

// Scalar - число из ответа API. Бэкенд отдает суммы строкой,
// а счетчики числом.
type Scalar struct {
	value decimal.Decimal
}

// ParseScalar разбирает JSON-число, JSON-строку или голый текст.
// Нечисловое или пустое значение считается нулем.
func ParseScalar(body []byte) Scalar {
	value, _ := parseDecimal(body)
	return Scalar{value: value}
}

func parseDecimal(data []byte) (decimal.Decimal, bool) {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return decimal.Zero, false
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return decimal.Zero, false
		}
		raw = strings.TrimSpace(s)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

func (s Scalar) Decimal() decimal.Decimal { return s.value }

func (s Scalar) Int() int64 { return s.value.IntPart() }

// metricLabel заменяет идентификаторы в пути, чтобы метки метрик
// не зависели от конкретных клиентов
func metricLabel(endpoint string) string {
	path := endpoint
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		if _, err := uuid.Parse(segment); err == nil {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
