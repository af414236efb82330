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

type invoiceDTO struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"clientId"`
	Status      string     `json:"status"`
	TotalAmount flexNumber `json:"totalAmount"`
	AmountPaid  flexNumber `json:"amountPaid"`
	BalanceDue  flexNumber `json:"balanceDue"`
	DueDate     flexTime   `json:"dueDate"`
	CreatedAt   flexTime   `json:"createdAt"`
}

func (d invoiceDTO) toModel(loc *time.Location) model.Invoice {
	return model.Invoice{
		ID:          parseID(d.ID),
		ClientID:    parseID(d.ClientID),
		Status:      model.InvoiceStatus(normalizeStatus(d.Status)),
		TotalAmount: d.TotalAmount.orZero(),
		AmountPaid:  d.AmountPaid.orZero(),
		BalanceDue:  d.BalanceDue.orZero(),
		DueDate:     d.DueDate.in(loc),
		CreatedAt:   d.CreatedAt.in(loc),
	}
}

type InvoiceRepository struct {
	collection
}

func NewInvoiceRepository(remote *RemoteClient, endpoint string, location *time.Location, logger *logrus.Logger) *InvoiceRepository {
	return &InvoiceRepository{collection: newCollection(remote, endpoint, location, logger)}
}

func (r *InvoiceRepository) GetAll(ctx context.Context) ([]model.Invoice, error) {
	return r.fetch(ctx, r.endpoint)
}

func (r *InvoiceRepository) GetByClient(ctx context.Context, clientID uuid.UUID) ([]model.Invoice, error) {
	return r.fetch(ctx, r.byClientPath(clientID))
}

// GetOverdue возвращает просроченные счета
func (r *InvoiceRepository) GetOverdue(ctx context.Context) ([]model.Invoice, error) {
	return r.fetch(ctx, r.path("overdue"))
}

func (r *InvoiceRepository) TotalInvoiced(ctx context.Context) (decimal.Decimal, error) {
	return r.amount(ctx, "total-invoiced")
}

func (r *InvoiceRepository) TotalPaid(ctx context.Context) (decimal.Decimal, error) {
	return r.amount(ctx, "total-paid")
}

func (r *InvoiceRepository) TotalBalanceDue(ctx context.Context) (decimal.Decimal, error) {
	return r.amount(ctx, "total-balance-due")
}

func (r *InvoiceRepository) fetch(ctx context.Context, endpoint string) ([]model.Invoice, error) {
	items, err := FetchCollection[invoiceDTO](ctx, r.remote, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить счета: %w", err)
	}
	invoices := make([]model.Invoice, 0, len(items))
	for _, item := range items {
		invoices = append(invoices, item.toModel(r.location))
	}
	return invoices, nil
}
