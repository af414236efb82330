package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"    // черновик
	QuoteStatusSent     QuoteStatus = "sent"     // отправлено клиенту
	QuoteStatusPending  QuoteStatus = "pending"  // ожидает ответа
	QuoteStatusAccepted QuoteStatus = "accepted" // принято
	QuoteStatusRejected QuoteStatus = "rejected" // отклонено
	QuoteStatusExpired  QuoteStatus = "expired"  // истек срок
)

// QuoteStatuses - статусы, по которым считается статистика коммерческих предложений
var QuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusSent,
	QuoteStatusAccepted,
	QuoteStatusRejected,
	QuoteStatusExpired,
}

// Quote - коммерческое предложение, полученное из API
type Quote struct {
	ID          uuid.UUID       `json:"id"`
	ClientID    uuid.UUID       `json:"client_id"`
	Status      QuoteStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
}
