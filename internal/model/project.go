package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCancelled ProjectStatus = "cancelled"
	ProjectStatusDraft     ProjectStatus = "draft"
)

// ProjectStatuses - статусы проектов со счетчиками на стороне API
var ProjectStatuses = []ProjectStatus{
	ProjectStatusActive,
	ProjectStatusCompleted,
	ProjectStatusOnHold,
}

// Project - проект. FixedPrice и HourlyRate необязательны: проект
// тарифицируется либо фиксированной ценой, либо почасово.
type Project struct {
	ID         uuid.UUID        `json:"id"`
	ClientID   uuid.UUID        `json:"client_id"`
	Status     ProjectStatus    `json:"status"`
	FixedPrice *decimal.Decimal `json:"fixed_price,omitempty"`
	HourlyRate *decimal.Decimal `json:"hourly_rate,omitempty"`
	TotalHours decimal.Decimal  `json:"total_hours"`
	StartDate  *time.Time       `json:"start_date,omitempty"`
	EndDate    *time.Time       `json:"end_date,omitempty"`
	CreatedAt  *time.Time       `json:"created_at,omitempty"`
}
