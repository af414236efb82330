package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mudon/freelance-management-system-sub000/internal/model"
)

type quoteDTO struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"clientId"`
	Status      string     `json:"status"`
	TotalAmount flexNumber `json:"totalAmount"`
	CreatedAt   flexTime   `json:"createdAt"`
}

func (d quoteDTO) toModel(loc *time.Location) model.Quote {
	return model.Quote{
		ID:          parseID(d.ID),
		ClientID:    parseID(d.ClientID),
		Status:      model.QuoteStatus(normalizeStatus(d.Status)),
		TotalAmount: d.TotalAmount.orZero(),
		CreatedAt:   d.CreatedAt.in(loc),
	}
}

type QuoteRepository struct {
	collection
}

func NewQuoteRepository(remote *RemoteClient, endpoint string, location *time.Location, logger *logrus.Logger) *QuoteRepository {
	return &QuoteRepository{collection: newCollection(remote, endpoint, location, logger)}
}

// GetAll возвращает все коммерческие предложения пользователя
func (r *QuoteRepository) GetAll(ctx context.Context) ([]model.Quote, error) {
	return r.fetch(ctx, r.endpoint)
}

// GetByClient возвращает предложения одного клиента
func (r *QuoteRepository) GetByClient(ctx context.Context, clientID uuid.UUID) ([]model.Quote, error) {
	return r.fetch(ctx, r.byClientPath(clientID))
}

// AcceptedTotal возвращает сумму принятых предложений
func (r *QuoteRepository) AcceptedTotal(ctx context.Context) (decimal.Decimal, error) {
	return r.amount(ctx, "accepted-total")
}

func (r *QuoteRepository) fetch(ctx context.Context, endpoint string) ([]model.Quote, error) {
	items, err := FetchCollection[quoteDTO](ctx, r.remote, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить коммерческие предложения: %w", err)
	}
	quotes := make([]model.Quote, 0, len(items))
	for _, item := range items {
		quotes = append(quotes, item.toModel(r.location))
	}
	return quotes, nil
}
