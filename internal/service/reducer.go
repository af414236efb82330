package service

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/mudon/freelance-management-system-sub000/internal/model"
)

var hundred = decimal.NewFromInt(100)

// CountByStatus считает записи по точному совпадению статуса
func CountByStatus[T any, S ~string](items []T, statusOf func(T) S) map[S]int {
	counts := make(map[S]int)
	for _, item := range items {
		counts[statusOf(item)]++
	}
	return counts
}

// SumAmounts суммирует денежное поле по всем записям
func SumAmounts[T any](items []T, amountOf func(T) decimal.Decimal) decimal.Decimal {
	return SumAmountsWhere(items, amountOf, func(T) bool { return true })
}

// SumAmountsWhere суммирует денежное поле по записям, прошедшим фильтр
func SumAmountsWhere[T any](items []T, amountOf func(T) decimal.Decimal, keep func(T) bool) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		if keep(item) {
			sum = sum.Add(amountOf(item))
		}
	}
	return sum
}

// Percent возвращает round(num / den * 100) в пределах [0, 100].
// При нулевом знаменателе результат 0.
func Percent(num, den decimal.Decimal) int {
	if !den.IsPositive() || num.IsNegative() {
		return 0
	}
	value := num.Div(den).Mul(hundred).Round(0).IntPart()
	if value > 100 {
		return 100
	}
	return int(value)
}

// PercentOf - Percent для счетчиков
func PercentOf(num, den int64) int {
	return Percent(decimal.NewFromInt(num), decimal.NewFromInt(den))
}

// Average делит сумму на количество с округлением до копеек
func Average(sum decimal.Decimal, count int64) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(count)).Round(2)
}

// ProjectValue - стоимость проекта: фиксированная цена, а если ее нет,
// ставка, умноженная на отработанные часы
func ProjectValue(p model.Project) decimal.Decimal {
	if p.FixedPrice != nil && !p.FixedPrice.IsZero() {
		return *p.FixedPrice
	}
	if p.HourlyRate != nil {
		return p.HourlyRate.Mul(p.TotalHours)
	}
	return decimal.Zero
}

// AverageDurationDays - средняя длительность проектов с обеими датами, в днях
func AverageDurationDays(projects []model.Project) int {
	var (
		total float64
		count int
	)
	for _, p := range projects {
		if p.StartDate == nil || p.EndDate == nil {
			continue
		}
		days := p.EndDate.Sub(*p.StartDate).Hours() / 24
		if days > 0 {
			total += days
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(total / float64(count)))
}

func quoteStatus(q model.Quote) model.QuoteStatus       { return q.Status }
func quoteAmount(q model.Quote) decimal.Decimal         { return q.TotalAmount }
func invoiceStatus(i model.Invoice) model.InvoiceStatus { return i.Status }
func invoiceAmount(i model.Invoice) decimal.Decimal     { return i.TotalAmount }
func invoiceBalance(i model.Invoice) decimal.Decimal    { return i.BalanceDue }
func projectStatus(p model.Project) model.ProjectStatus { return p.Status }
func projectHours(p model.Project) decimal.Decimal      { return p.TotalHours }

// BuildQuoteOverview считает разбивку предложений по статусам
func BuildQuoteOverview(quotes []model.Quote) *model.QuoteOverview {
	counts := CountByStatus(quotes, quoteStatus)
	withStatus := func(status model.QuoteStatus) func(model.Quote) bool {
		return func(q model.Quote) bool { return q.Status == status }
	}

	return &model.QuoteOverview{
		Total:         len(quotes),
		Accepted:      counts[model.QuoteStatusAccepted],
		Pending:       counts[model.QuoteStatusPending],
		Rejected:      counts[model.QuoteStatusRejected],
		Expired:       counts[model.QuoteStatusExpired],
		Draft:         counts[model.QuoteStatusDraft],
		TotalValue:    SumAmounts(quotes, quoteAmount),
		AcceptedValue: SumAmountsWhere(quotes, quoteAmount, withStatus(model.QuoteStatusAccepted)),
		PendingValue:  SumAmountsWhere(quotes, quoteAmount, withStatus(model.QuoteStatusPending)),
	}
}

// BuildInvoiceOverview считает разбивку счетов по статусам.
// К оплате относятся счета в статусах pending и overdue.
func BuildInvoiceOverview(invoices []model.Invoice) *model.InvoiceOverview {
	counts := CountByStatus(invoices, invoiceStatus)
	withStatus := func(statuses ...model.InvoiceStatus) func(model.Invoice) bool {
		return func(i model.Invoice) bool {
			for _, status := range statuses {
				if i.Status == status {
					return true
				}
			}
			return false
		}
	}

	return &model.InvoiceOverview{
		Total:         len(invoices),
		Paid:          counts[model.InvoiceStatusPaid],
		Pending:       counts[model.InvoiceStatusPending],
		Overdue:       counts[model.InvoiceStatusOverdue],
		Draft:         counts[model.InvoiceStatusDraft],
		Cancelled:     counts[model.InvoiceStatusCancelled],
		TotalAmount:   SumAmounts(invoices, invoiceAmount),
		TotalPaid:     SumAmountsWhere(invoices, invoiceAmount, withStatus(model.InvoiceStatusPaid)),
		TotalDue:      SumAmountsWhere(invoices, invoiceAmount, withStatus(model.InvoiceStatusPending, model.InvoiceStatusOverdue)),
		OverdueAmount: SumAmountsWhere(invoices, invoiceAmount, withStatus(model.InvoiceStatusOverdue)),
	}
}

// BuildProjectOverview считает разбивку проектов по статусам
func BuildProjectOverview(projects []model.Project) *model.ProjectOverview {
	counts := CountByStatus(projects, projectStatus)
	withStatus := func(status model.ProjectStatus) func(model.Project) bool {
		return func(p model.Project) bool { return p.Status == status }
	}

	return &model.ProjectOverview{
		Total:          len(projects),
		Active:         counts[model.ProjectStatusActive],
		Completed:      counts[model.ProjectStatusCompleted],
		OnHold:         counts[model.ProjectStatusOnHold],
		Cancelled:      counts[model.ProjectStatusCancelled],
		Draft:          counts[model.ProjectStatusDraft],
		TotalHours:     SumAmounts(projects, projectHours),
		TotalValue:     SumAmounts(projects, ProjectValue),
		ActiveValue:    SumAmountsWhere(projects, ProjectValue, withStatus(model.ProjectStatusActive)),
		CompletedValue: SumAmountsWhere(projects, ProjectValue, withStatus(model.ProjectStatusCompleted)),
	}
}
