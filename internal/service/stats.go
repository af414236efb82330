package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mudon/freelance-management-system-sub000/internal/model"
)

// GetQuoteStats возвращает статистику коммерческих предложений
func (s *DashboardService) GetQuoteStats(ctx context.Context) (stats *model.QuoteStats, err error) {
	started := time.Now()
	defer func() { s.observe("quote_stats", started, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := &model.QuoteStats{}
	var quotes []model.Quote

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.TotalQuotes, err = s.quoteRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.AcceptedTotalAmount, err = s.quoteRepo.AcceptedTotal(gctx)
		return err
	})
	g.Go(func() (err error) {
		quotes, err = s.quoteRepo.GetAll(gctx)
		return err
	})
	counts := countByStatuses(gctx, g, s.quoteRepo.CountByStatus, model.QuoteStatuses)

	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Error("Ошибка получения статистики предложений")
		return nil, fmt.Errorf("не удалось получить статистику предложений: %w", err)
	}

	result.DraftQuotes = counts.get(model.QuoteStatusDraft)
	result.SentQuotes = counts.get(model.QuoteStatusSent)
	result.AcceptedQuotes = counts.get(model.QuoteStatusAccepted)
	result.RejectedQuotes = counts.get(model.QuoteStatusRejected)
	result.ExpiredQuotes = counts.get(model.QuoteStatusExpired)
	result.AverageQuoteValue = Average(SumAmounts(quotes, quoteAmount), result.TotalQuotes)
	result.AcceptanceRate = PercentOf(result.AcceptedQuotes, result.SentQuotes)

	return result, nil
}

// GetInvoiceStats возвращает статистику счетов
func (s *DashboardService) GetInvoiceStats(ctx context.Context) (stats *model.InvoiceStats, err error) {
	started := time.Now()
	defer func() { s.observe("invoice_stats", started, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := &model.InvoiceStats{}
	var overdue []model.Invoice

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.TotalInvoices, err = s.invoiceRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.TotalInvoicedAmount, err = s.invoiceRepo.TotalInvoiced(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.TotalAmountPaid, err = s.invoiceRepo.TotalPaid(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.TotalBalanceDue, err = s.invoiceRepo.TotalBalanceDue(gctx)
		return err
	})
	g.Go(func() (err error) {
		overdue, err = s.invoiceRepo.GetOverdue(gctx)
		return err
	})
	counts := countByStatuses(gctx, g, s.invoiceRepo.CountByStatus, model.InvoiceStatuses)

	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Error("Ошибка получения статистики счетов")
		return nil, fmt.Errorf("не удалось получить статистику счетов: %w", err)
	}

	result.DraftInvoices = counts.get(model.InvoiceStatusDraft)
	result.SentInvoices = counts.get(model.InvoiceStatusSent)
	result.PartialInvoices = counts.get(model.InvoiceStatusPartial)
	result.PaidInvoices = counts.get(model.InvoiceStatusPaid)
	result.OverdueInvoices = int64(len(overdue))
	result.OverdueAmount = SumAmounts(overdue, invoiceBalance)
	result.AverageInvoiceValue = Average(result.TotalInvoicedAmount, result.TotalInvoices)
	result.OnTimePaymentRate = Percent(result.TotalAmountPaid, result.TotalInvoicedAmount)

	return result, nil
}

// GetProjectStats возвращает статистику проектов
func (s *DashboardService) GetProjectStats(ctx context.Context) (stats *model.ProjectStats, err error) {
	started := time.Now()
	defer func() { s.observe("project_stats", started, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := &model.ProjectStats{}
	var projects, overdue []model.Project

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.TotalProjects, err = s.projectRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.projectRepo.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		overdue, err = s.projectRepo.GetOverdue(gctx)
		return err
	})
	counts := countByStatuses(gctx, g, s.projectRepo.CountByStatus, model.ProjectStatuses)

	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Error("Ошибка получения статистики проектов")
		return nil, fmt.Errorf("не удалось получить статистику проектов: %w", err)
	}

	result.ActiveProjects = counts.get(model.ProjectStatusActive)
	result.CompletedProjects = counts.get(model.ProjectStatusCompleted)
	result.OnHoldProjects = counts.get(model.ProjectStatusOnHold)
	result.OverdueProjects = int64(len(overdue))
	result.TotalRevenue = SumAmounts(projects, ProjectValue)
	result.TotalHours = SumAmounts(projects, projectHours)
	result.AvgProjectDuration = AverageDurationDays(projects)

	return result, nil
}
