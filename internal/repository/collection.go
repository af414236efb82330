package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// collection - общие операции над одной коллекцией API
type collection struct {
	remote   *RemoteClient
	endpoint string
	location *time.Location
	logger   *logrus.Logger
}

func newCollection(remote *RemoteClient, endpoint string, location *time.Location, logger *logrus.Logger) collection {
	if location == nil {
		location = time.UTC
	}
	return collection{remote: remote, endpoint: endpoint, location: location, logger: logger}
}

func (c collection) path(parts ...string) string {
	p := c.endpoint
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// Count возвращает общее количество записей
func (c collection) Count(ctx context.Context) (int64, error) {
	value, err := c.remote.FetchScalar(ctx, c.path("count"))
	if err != nil {
		return 0, fmt.Errorf("не удалось получить количество %s: %w", c.endpoint, err)
	}
	return value.Int(), nil
}

// CountByStatus возвращает количество записей с указанным статусом
func (c collection) CountByStatus(ctx context.Context, status string) (int64, error) {
	value, err := c.remote.FetchScalar(ctx, c.path("count", "status", status))
	if err != nil {
		return 0, fmt.Errorf("не удалось получить количество %s со статусом %s: %w", c.endpoint, status, err)
	}
	return value.Int(), nil
}

func (c collection) amount(ctx context.Context, name string) (decimal.Decimal, error) {
	value, err := c.remote.FetchScalar(ctx, c.path(name))
	if err != nil {
		return decimal.Zero, fmt.Errorf("не удалось получить %s%s: %w", c.endpoint, "/"+name, err)
	}
	return value.Decimal(), nil
}

func (c collection) byClientPath(clientID uuid.UUID) string {
	return c.path("client", clientID.String())
}

func limitParams(limit int) url.Values {
	return url.Values{"limit": []string{strconv.Itoa(limit)}}
}
