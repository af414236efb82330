package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mudon/freelance-management-system-sub000/internal/config"
	"github.com/mudon/freelance-management-system-sub000/internal/metrics"
	"github.com/mudon/freelance-management-system-sub000/internal/model"
	"github.com/mudon/freelance-management-system-sub000/internal/repository"
)

const (
	defaultRecentClients = 5
	maxRecentClients     = 50
	recentClientWorkers  = 4
)

// ErrInvalidLimit - недопустимое количество записей в запросе
var ErrInvalidLimit = errors.New("недопустимый лимит")

// DashboardOptions - параметры расчета показателей дашборда
type DashboardOptions struct {
	Location *time.Location // часовой пояс разбивки по дням
	Timeout  time.Duration  // общий бюджет времени на один расчет
	Fallback string         // поведение графика при недоступности API
}

// DashboardService собирает показатели дашборда из коллекций REST API.
// Состояние между вызовами не хранится: каждый вызов заново
// запрашивает данные и считает показатели.
type DashboardService struct {
	quoteRepo   *repository.QuoteRepository
	invoiceRepo *repository.InvoiceRepository
	projectRepo *repository.ProjectRepository
	clientRepo  *repository.ClientRepository
	options     DashboardOptions
	now         func() time.Time
	logger      *logrus.Logger
}

func NewDashboardService(
	quoteRepo *repository.QuoteRepository,
	invoiceRepo *repository.InvoiceRepository,
	projectRepo *repository.ProjectRepository,
	clientRepo *repository.ClientRepository,
	options DashboardOptions,
	logger *logrus.Logger,
) *DashboardService {
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.Fallback == "" {
		options.Fallback = config.ChartFallbackUnavailable
	}
	return &DashboardService{
		quoteRepo:   quoteRepo,
		invoiceRepo: invoiceRepo,
		projectRepo: projectRepo,
		clientRepo:  clientRepo,
		options:     options,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *DashboardService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.options.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.options.Timeout)
}

func (s *DashboardService) observe(operation string, started time.Time, err error) {
	metrics.ObserveAggregation(operation, err, time.Since(started))
}

// GetDashboardStats возвращает сводные показатели дашборда.
// Все запросы выполняются параллельно; ошибка любого из них
// отменяет остальные и возвращается целиком.
func (s *DashboardService) GetDashboardStats(ctx context.Context) (stats *model.DashboardStats, err error) {
	started := time.Now()
	defer func() { s.observe("stats", started, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := &model.DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		result.TotalClients, err = s.clientRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.TotalProjects, err = s.projectRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.TotalInvoices, err = s.invoiceRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.TotalQuotes, err = s.quoteRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.TotalPaidAmount, err = s.invoiceRepo.TotalPaid(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.TotalBalanceDue, err = s.invoiceRepo.TotalBalanceDue(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.AcceptedQuotesTotal, err = s.quoteRepo.AcceptedTotal(gctx)
		return err
	})

	quoteCounts := countByStatuses(gctx, g, s.quoteRepo.CountByStatus,
		[]model.QuoteStatus{model.QuoteStatusPending})
	invoiceCounts := countByStatuses(gctx, g, s.invoiceRepo.CountByStatus,
		[]model.InvoiceStatus{model.InvoiceStatusOverdue})
	projectCounts := countByStatuses(gctx, g, s.projectRepo.CountByStatus,
		[]model.ProjectStatus{model.ProjectStatusActive})

	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Error("Ошибка получения показателей дашборда")
		return nil, fmt.Errorf("не удалось получить показатели дашборда: %w", err)
	}

	result.PendingQuotes = quoteCounts.get(model.QuoteStatusPending)
	result.OverdueInvoices = invoiceCounts.get(model.InvoiceStatusOverdue)
	result.ActiveProjects = projectCounts.get(model.ProjectStatusActive)
	result.TotalRevenue = result.TotalPaidAmount
	result.ConversionRate = Percent(result.AcceptedQuotesTotal, decimal.NewFromInt(result.TotalQuotes))

	s.logger.WithFields(logrus.Fields{
		"quotes":          result.TotalQuotes,
		"invoices":        result.TotalInvoices,
		"projects":        result.TotalProjects,
		"clients":         result.TotalClients,
		"conversion_rate": result.ConversionRate,
		"duration":        time.Since(started).String(),
	}).Info("Показатели дашборда рассчитаны")

	return result, nil
}

// GetChartData строит временной ряд за период, заканчивающийся сегодня
func (s *DashboardService) GetChartData(ctx context.Context, period model.Period) (*model.ChartData, error) {
	return s.GetChartDataAt(ctx, period, s.now())
}

// GetChartDataAt строит временной ряд относительно момента ref.
// Если данные API получить не удалось, возвращается график-заглушка
// (без данных или со случайными значениями, в зависимости от настройки).
func (s *DashboardService) GetChartDataAt(ctx context.Context, period model.Period, ref time.Time) (chart *model.ChartData, err error) {
	if DaysFor(period) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	started := time.Now()
	defer func() { s.observe("chart", started, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		quotes   []model.Quote
		invoices []model.Invoice
		projects []model.Project
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		quotes, err = s.quoteRepo.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		invoices, err = s.invoiceRepo.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.projectRepo.GetAll(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.WithError(err).WithField("period", period).Error("Ошибка получения данных для графика")
		metrics.IncChartFallback(s.options.Fallback)
		if s.options.Fallback == config.ChartFallbackSynthetic {
			return SyntheticChart(period, ref, s.options.Location), nil
		}
		return UnavailableChart(period, ref, s.options.Location), nil
	}

	chart = BuildChart(period, ref, s.options.Location, quotes, invoices, projects)

	s.logger.WithFields(logrus.Fields{
		"period":   period,
		"points":   len(chart.Datasets),
		"quotes":   len(quotes),
		"invoices": len(invoices),
		"projects": len(projects),
	}).Debug("График дашборда построен")

	return chart, nil
}

// GetRecentClients возвращает недавних клиентов со статистикой.
// Ошибка загрузки документов одного клиента не прерывает расчет:
// такой клиент возвращается с нулевыми показателями.
func (s *DashboardService) GetRecentClients(ctx context.Context, limit int) (result []model.RecentClient, err error) {
	if limit == 0 {
		limit = defaultRecentClients
	}
	if limit < 0 || limit > maxRecentClients {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	started := time.Now()
	defer func() { s.observe("recent_clients", started, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	clients, err := s.clientRepo.GetRecent(ctx, limit)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения недавних клиентов")
		return nil, err
	}

	now := s.now()
	result = make([]model.RecentClient, len(clients))
	var g errgroup.Group
	g.SetLimit(recentClientWorkers)
	for i, client := range clients {
		g.Go(func() error {
			result[i] = s.recentClient(ctx, client, now)
			return nil
		})
	}
	_ = g.Wait()

	return result, nil
}

func (s *DashboardService) recentClient(ctx context.Context, client model.Client, now time.Time) model.RecentClient {
	recent := model.RecentClient{
		ID:           client.ID,
		Name:         client.DisplayName(),
		Email:        client.Email,
		Company:      client.CompanyName,
		Phone:        client.Phone,
		Status:       client.Status,
		LastActivity: now,
	}
	if recent.Email == "" {
		recent.Email = "No email"
	}
	if recent.Company == "" {
		recent.Company = "Individual"
	}
	if recent.Status == "" {
		recent.Status = "active"
	}
	switch {
	case client.UpdatedAt != nil:
		recent.LastActivity = *client.UpdatedAt
	case client.CreatedAt != nil:
		recent.LastActivity = *client.CreatedAt
	}

	var (
		projects []model.Project
		invoices []model.Invoice
		quotes   []model.Quote
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		projects, err = s.projectRepo.GetByClient(gctx, client.ID)
		return err
	})
	g.Go(func() (err error) {
		invoices, err = s.invoiceRepo.GetByClient(gctx, client.ID)
		return err
	})
	g.Go(func() (err error) {
		quotes, err = s.quoteRepo.GetByClient(gctx, client.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).WithField("client_id", client.ID).Warn("Не удалось получить статистику клиента")
		return recent
	}

	recent.TotalProjects = len(projects)
	recent.TotalInvoices = len(invoices)
	recent.TotalQuotes = len(quotes)
	recent.TotalValue = SumAmounts(invoices, invoiceAmount)
	return recent
}

// GetQuotesOverview считает разбивку всех предложений по статусам
func (s *DashboardService) GetQuotesOverview(ctx context.Context) (*model.QuoteOverview, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	quotes, err := s.quoteRepo.GetAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения обзора предложений")
		return nil, err
	}
	return BuildQuoteOverview(quotes), nil
}

// GetInvoicesOverview считает разбивку всех счетов по статусам
func (s *DashboardService) GetInvoicesOverview(ctx context.Context) (*model.InvoiceOverview, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	invoices, err := s.invoiceRepo.GetAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения обзора счетов")
		return nil, err
	}
	return BuildInvoiceOverview(invoices), nil
}

// GetProjectsOverview считает разбивку всех проектов по статусам
func (s *DashboardService) GetProjectsOverview(ctx context.Context) (*model.ProjectOverview, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	projects, err := s.projectRepo.GetAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения обзора проектов")
		return nil, err
	}
	return BuildProjectOverview(projects), nil
}

// GetDashboardData собирает все данные дашборда одним вызовом
func (s *DashboardService) GetDashboardData(ctx context.Context, period model.Period) (data *model.DashboardData, err error) {
	if DaysFor(period) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	started := time.Now()
	defer func() { s.observe("dashboard", started, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data = &model.DashboardData{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Stats, err = s.GetDashboardStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		data.Chart, err = s.GetChartData(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		data.Clients, err = s.GetRecentClients(gctx, defaultRecentClients)
		return err
	})
	g.Go(func() (err error) {
		data.Quotes, err = s.GetQuotesOverview(gctx)
		return err
	})
	g.Go(func() (err error) {
		data.Invoices, err = s.GetInvoicesOverview(gctx)
		return err
	})
	g.Go(func() (err error) {
		data.Projects, err = s.GetProjectsOverview(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Error("Ошибка получения данных дашборда")
		return nil, fmt.Errorf("не удалось получить данные дашборда: %w", err)
	}
	return data, nil
}

// statusCounts - результаты запросов "количество по статусу",
// по одному запросу на каждый статус
type statusCounts[S ~string] struct {
	statuses []S
	values   []int64
}

// countByStatuses ставит в группу по одному запросу на каждый статус.
// Значения можно читать только после g.Wait().
func countByStatuses[S ~string](
	ctx context.Context,
	g *errgroup.Group,
	count func(context.Context, string) (int64, error),
	statuses []S,
) *statusCounts[S] {
	c := &statusCounts[S]{statuses: statuses, values: make([]int64, len(statuses))}
	for i, status := range statuses {
		g.Go(func() error {
			value, err := count(ctx, string(status))
			if err != nil {
				return err
			}
			c.values[i] = value
			return nil
		})
	}
	return c
}

func (c *statusCounts[S]) get(status S) int64 {
	for i, s := range c.statuses {
		if s == status {
			return c.values[i]
		}
	}
	return 0
}
