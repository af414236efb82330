package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/mudon/freelance-management-system-sub000/internal/repository"
	"github.com/mudon/freelance-management-system-sub000/internal/service"
)

// DashboardHandler обрабатывает запросы дашборда
type DashboardHandler struct {
	dashboardService *service.DashboardService
	snapshotService  *service.SnapshotService
	logger           *logrus.Logger
}

// NewDashboardHandler создает новый DashboardHandler
func NewDashboardHandler(
	dashboardService *service.DashboardService,
	snapshotService *service.SnapshotService,
	logger *logrus.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		snapshotService:  snapshotService,
		logger:           logger,
	}
}

// RegisterRoutes регистрирует маршруты дашборда
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.GetDashboard).Methods("GET")
	router.HandleFunc("/stats", h.GetStats).Methods("GET")
	router.HandleFunc("/chart", h.GetChart).Methods("GET")
	router.HandleFunc("/clients/recent", h.GetRecentClients).Methods("GET")
	router.HandleFunc("/overview/quotes", h.GetQuotesOverview).Methods("GET")
	router.HandleFunc("/overview/invoices", h.GetInvoicesOverview).Methods("GET")
	router.HandleFunc("/overview/projects", h.GetProjectsOverview).Methods("GET")
	router.HandleFunc("/stats/quotes", h.GetQuoteStats).Methods("GET")
	router.HandleFunc("/stats/invoices", h.GetInvoiceStats).Methods("GET")
	router.HandleFunc("/stats/projects", h.GetProjectStats).Methods("GET")
	router.HandleFunc("/snapshots", h.ListSnapshots).Methods("GET")
}

// GetDashboard возвращает все данные дашборда
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	period, err := service.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		h.writeError(w, err, "Неизвестный период")
		return
	}

	data, err := h.dashboardService.GetDashboardData(r.Context(), period)
	if err != nil {
		h.writeError(w, err, "Ошибка получения данных дашборда")
		return
	}
	h.writeJSON(w, data)
}

// GetStats возвращает сводные показатели
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.GetDashboardStats(r.Context())
	if err != nil {
		h.writeError(w, err, "Ошибка получения показателей")
		return
	}
	h.writeJSON(w, stats)
}

// GetChart возвращает временной ряд за период
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	period, err := service.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		h.writeError(w, err, "Неизвестный период")
		return
	}

	chart, err := h.dashboardService.GetChartData(r.Context(), period)
	if err != nil {
		h.writeError(w, err, "Ошибка построения графика")
		return
	}
	h.writeJSON(w, chart)
}

// GetRecentClients возвращает недавних клиентов
func (h *DashboardHandler) GetRecentClients(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.writeError(w, err, "Неверный параметр limit")
		return
	}

	clients, err := h.dashboardService.GetRecentClients(r.Context(), limit)
	if err != nil {
		h.writeError(w, err, "Ошибка получения клиентов")
		return
	}
	h.writeJSON(w, clients)
}

func (h *DashboardHandler) GetQuotesOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dashboardService.GetQuotesOverview(r.Context())
	if err != nil {
		h.writeError(w, err, "Ошибка получения обзора предложений")
		return
	}
	h.writeJSON(w, overview)
}

func (h *DashboardHandler) GetInvoicesOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dashboardService.GetInvoicesOverview(r.Context())
	if err != nil {
		h.writeError(w, err, "Ошибка получения обзора счетов")
		return
	}
	h.writeJSON(w, overview)
}

func (h *DashboardHandler) GetProjectsOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dashboardService.GetProjectsOverview(r.Context())
	if err != nil {
		h.writeError(w, err, "Ошибка получения обзора проектов")
		return
	}
	h.writeJSON(w, overview)
}

func (h *DashboardHandler) GetQuoteStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.GetQuoteStats(r.Context())
	if err != nil {
		h.writeError(w, err, "Ошибка получения статистики предложений")
		return
	}
	h.writeJSON(w, stats)
}

func (h *DashboardHandler) GetInvoiceStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.GetInvoiceStats(r.Context())
	if err != nil {
		h.writeError(w, err, "Ошибка получения статистики счетов")
		return
	}
	h.writeJSON(w, stats)
}

func (h *DashboardHandler) GetProjectStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.GetProjectStats(r.Context())
	if err != nil {
		h.writeError(w, err, "Ошибка получения статистики проектов")
		return
	}
	h.writeJSON(w, stats)
}

// ListSnapshots возвращает историю снимков дашборда
func (h *DashboardHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.snapshotService == nil {
		h.writeError(w, service.ErrSnapshotsDisabled, "Снимки дашборда не настроены")
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		h.writeError(w, err, "Неверный параметр limit")
		return
	}

	snapshots, err := h.snapshotService.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, err, "Ошибка получения снимков")
		return
	}
	h.writeJSON(w, snapshots)
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, service.ErrInvalidLimit
	}
	return limit, nil
}

func (h *DashboardHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Error("Ошибка кодирования ответа")
	}
}

// writeError переводит ошибку сервиса в HTTP статус
func (h *DashboardHandler) writeError(w http.ResponseWriter, err error, message string) {
	status := statusFor(err)
	entry := h.logger.WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}
	http.Error(w, message, status)
}

func statusFor(err error) int {
	var remoteErr *repository.RemoteError
	switch {
	case errors.Is(err, service.ErrInvalidPeriod), errors.Is(err, service.ErrInvalidLimit):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSnapshotsDisabled), errors.Is(err, repository.ErrSnapshotTableMissing):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &remoteErr):
		if remoteErr.StatusCode == http.StatusUnauthorized || remoteErr.StatusCode == http.StatusForbidden {
			return remoteErr.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}
