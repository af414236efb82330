package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardStats - сводные показатели дашборда
type DashboardStats struct {
	TotalQuotes         int64           `json:"total_quotes"`
	TotalInvoices       int64           `json:"total_invoices"`
	TotalProjects       int64           `json:"total_projects"`
	TotalClients        int64           `json:"total_clients"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	ConversionRate      int             `json:"conversion_rate"` // сумма принятых предложений к их количеству, %
	PendingQuotes       int64           `json:"pending_quotes"`
	OverdueInvoices     int64           `json:"overdue_invoices"`
	ActiveProjects      int64           `json:"active_projects"`
	TotalPaidAmount     decimal.Decimal `json:"total_paid_amount"`
	TotalBalanceDue     decimal.Decimal `json:"total_balance_due"`
	AcceptedQuotesTotal decimal.Decimal `json:"accepted_quotes_total"`
}

// QuoteOverview - разбивка коммерческих предложений по статусам
type QuoteOverview struct {
	Total         int             `json:"total"`
	Accepted      int             `json:"accepted"`
	Pending       int             `json:"pending"`
	Rejected      int             `json:"rejected"`
	Expired       int             `json:"expired"`
	Draft         int             `json:"draft"`
	TotalValue    decimal.Decimal `json:"total_value"`
	AcceptedValue decimal.Decimal `json:"accepted_value"`
	PendingValue  decimal.Decimal `json:"pending_value"`
}

// InvoiceOverview - разбивка счетов по статусам
type InvoiceOverview struct {
	Total         int             `json:"total"`
	Paid          int             `json:"paid"`
	Pending       int             `json:"pending"`
	Overdue       int             `json:"overdue"`
	Draft         int             `json:"draft"`
	Cancelled     int             `json:"cancelled"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalDue      decimal.Decimal `json:"total_due"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
}

// ProjectOverview - разбивка проектов по статусам
type ProjectOverview struct {
	Total          int             `json:"total"`
	Active         int             `json:"active"`
	Completed      int             `json:"completed"`
	OnHold         int             `json:"on_hold"`
	Cancelled      int             `json:"cancelled"`
	Draft          int             `json:"draft"`
	TotalHours     decimal.Decimal `json:"total_hours"`
	TotalValue     decimal.Decimal `json:"total_value"`
	ActiveValue    decimal.Decimal `json:"active_value"`
	CompletedValue decimal.Decimal `json:"completed_value"`
}

type QuoteStats struct {
	TotalQuotes         int64           `json:"total_quotes"`
	DraftQuotes         int64           `json:"draft_quotes"`
	SentQuotes          int64           `json:"sent_quotes"`
	AcceptedQuotes      int64           `json:"accepted_quotes"`
	RejectedQuotes      int64           `json:"rejected_quotes"`
	ExpiredQuotes       int64           `json:"expired_quotes"`
	AcceptedTotalAmount decimal.Decimal `json:"accepted_total_amount"`
	AverageQuoteValue   decimal.Decimal `json:"average_quote_value"`
	AcceptanceRate      int             `json:"acceptance_rate"`
}

type InvoiceStats struct {
	TotalInvoices       int64           `json:"total_invoices"`
	DraftInvoices       int64           `json:"draft_invoices"`
	SentInvoices        int64           `json:"sent_invoices"`
	PartialInvoices     int64           `json:"partial_invoices"`
	PaidInvoices        int64           `json:"paid_invoices"`
	OverdueInvoices     int64           `json:"overdue_invoices"`
	TotalInvoicedAmount decimal.Decimal `json:"total_invoiced_amount"`
	TotalAmountPaid     decimal.Decimal `json:"total_amount_paid"`
	TotalBalanceDue     decimal.Decimal `json:"total_balance_due"`
	AverageInvoiceValue decimal.Decimal `json:"average_invoice_value"`
	OnTimePaymentRate   int             `json:"on_time_payment_rate"`
	OverdueAmount       decimal.Decimal `json:"overdue_amount"`
}

type ProjectStats struct {
	TotalProjects      int64           `json:"total_projects"`
	ActiveProjects     int64           `json:"active_projects"`
	CompletedProjects  int64           `json:"completed_projects"`
	OnHoldProjects     int64           `json:"on_hold_projects"`
	OverdueProjects    int64           `json:"overdue_projects"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalHours         decimal.Decimal `json:"total_hours"`
	AvgProjectDuration int             `json:"avg_project_duration"` // в днях
}

// RecentClient - недавний клиент со статистикой по его документам
type RecentClient struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Company       string          `json:"company"`
	Phone         string          `json:"phone,omitempty"`
	TotalProjects int             `json:"total_projects"`
	TotalInvoices int             `json:"total_invoices"`
	TotalQuotes   int             `json:"total_quotes"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LastActivity  time.Time       `json:"last_activity"`
	Status        string          `json:"status"`
}

// DashboardData - все данные дашборда одним ответом
type DashboardData struct {
	Stats    *DashboardStats  `json:"stats"`
	Chart    *ChartData       `json:"chart"`
	Clients  []RecentClient   `json:"clients"`
	Quotes   *QuoteOverview   `json:"quotes"`
	Invoices *InvoiceOverview `json:"invoices"`
	Projects *ProjectOverview `json:"projects"`
}

// DashboardSnapshot - сохраненный срез показателей дашборда
type DashboardSnapshot struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	Stats     DashboardStats `json:"stats" db:"stats"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
