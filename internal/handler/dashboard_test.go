package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/mudon/freelance-management-system-sub000/internal/config"
	"github.com/mudon/freelance-management-system-sub000/internal/model"
	"github.com/mudon/freelance-management-system-sub000/internal/repository"
	"github.com/mudon/freelance-management-system-sub000/internal/service"
)

const testSecret = "handler-secret"

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// backend отвечает единицей на счетчики и суммы и пустым списком на коллекции.
// status != 0 заменяет все ответы ошибкой с этим кодом.
type backend struct {
	mu       sync.Mutex
	status   int
	lastAuth string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.lastAuth = r.Header.Get("Authorization")
	status := b.status
	b.mu.Unlock()

	if status != 0 {
		http.Error(w, "upstream error", status)
		return
	}
	if strings.Contains(r.URL.Path, "/count") || strings.Contains(r.URL.Path, "total") {
		_, _ = io.WriteString(w, `1`)
		return
	}
	_, _ = io.WriteString(w, `[]`)
}

func (b *backend) auth() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth
}

func newTestRouter(t *testing.T, upstream *backend) (*mux.Router, *service.AuthService) {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	logger := testLogger()
	remote, err := repository.NewRemoteClient(server.URL+"/api", time.Second, logger)
	if err != nil {
		t.Fatalf("new remote client: %v", err)
	}
	endpoints := config.DefaultEndpoints()
	dashboard := service.NewDashboardService(
		repository.NewQuoteRepository(remote, endpoints.Quotes, time.UTC, logger),
		repository.NewInvoiceRepository(remote, endpoints.Invoices, time.UTC, logger),
		repository.NewProjectRepository(remote, endpoints.Projects, time.UTC, logger),
		repository.NewClientRepository(remote, endpoints.Clients, time.UTC, logger),
		service.DashboardOptions{Location: time.UTC, Timeout: 5 * time.Second},
		logger,
	)
	authService := service.NewAuthService(testSecret, time.Hour, logger)

	router := mux.NewRouter()
	router.Use(LoggingMiddleware(logger))
	api := router.PathPrefix("/api").Subrouter()
	api.Use(AuthMiddleware(authService, logger))
	NewDashboardHandler(dashboard, nil, logger).RegisterRoutes(api.PathPrefix("/dashboard").Subrouter())
	return router, authService
}

func doRequest(t *testing.T, router http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func userToken(t *testing.T, auth *service.AuthService) string {
	t.Helper()
	token, err := auth.GenerateJWTToken("user-1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func TestDashboardRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t, &backend{})

	rec := doRequest(t, router, "/api/dashboard/stats", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	rec = doRequest(t, router, "/api/dashboard/stats", "garbage")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", rec.Code)
	}
}

func TestGetStatsForwardsToken(t *testing.T) {
	upstream := &backend{}
	router, auth := newTestRouter(t, upstream)
	token := userToken(t, auth)

	rec := doRequest(t, router, "/api/dashboard/stats", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	var stats model.DashboardStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalQuotes != 1 || stats.ConversionRate != 100 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if upstream.auth() != "Bearer "+token {
		t.Fatalf("expected caller token forwarded, got %q", upstream.auth())
	}
}

func TestDashboardRoutesRespond(t *testing.T) {
	router, auth := newTestRouter(t, &backend{})
	token := userToken(t, auth)

	paths := []string{
		"/api/dashboard",
		"/api/dashboard?period=1y",
		"/api/dashboard/chart?period=7d",
		"/api/dashboard/clients/recent?limit=3",
		"/api/dashboard/overview/quotes",
		"/api/dashboard/overview/invoices",
		"/api/dashboard/overview/projects",
		"/api/dashboard/stats/quotes",
		"/api/dashboard/stats/invoices",
		"/api/dashboard/stats/projects",
	}
	for _, path := range paths {
		rec := doRequest(t, router, path, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("%s: unexpected content type %q", path, ct)
		}
	}
}

func TestBadRequestParameters(t *testing.T) {
	router, auth := newTestRouter(t, &backend{})
	token := userToken(t, auth)

	for _, path := range []string{
		"/api/dashboard/chart?period=2w",
		"/api/dashboard?period=forever",
		"/api/dashboard/clients/recent?limit=abc",
		"/api/dashboard/clients/recent?limit=500",
	} {
		if rec := doRequest(t, router, path, token); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestUpstreamErrorsAreMapped(t *testing.T) {
	cases := []struct {
		upstream int
		want     int
	}{
		{upstream: http.StatusInternalServerError, want: http.StatusBadGateway},
		{upstream: http.StatusNotFound, want: http.StatusBadGateway},
		{upstream: http.StatusUnauthorized, want: http.StatusUnauthorized},
		{upstream: http.StatusForbidden, want: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.upstream), func(t *testing.T) {
			router, auth := newTestRouter(t, &backend{status: tc.upstream})
			rec := doRequest(t, router, "/api/dashboard/stats", userToken(t, auth))
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestChartFallsBackWhenUpstreamFails(t *testing.T) {
	router, auth := newTestRouter(t, &backend{status: http.StatusInternalServerError})

	rec := doRequest(t, router, "/api/dashboard/chart?period=7d", userToken(t, auth))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var chart model.ChartData
	if err := json.NewDecoder(rec.Body).Decode(&chart); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if chart.Available || len(chart.Labels) != 7 {
		t.Fatalf("expected unavailable 7-day chart, got %+v", chart)
	}
}

func TestSnapshotsUnavailableWithoutStore(t *testing.T) {
	router, auth := newTestRouter(t, &backend{})

	rec := doRequest(t, router, "/api/dashboard/snapshots", userToken(t, auth))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("wrap: %w", service.ErrInvalidPeriod), want: http.StatusBadRequest},
		{err: service.ErrInvalidLimit, want: http.StatusBadRequest},
		{err: service.ErrSnapshotsDisabled, want: http.StatusServiceUnavailable},
		{err: fmt.Errorf("wrap: %w", repository.ErrSnapshotTableMissing), want: http.StatusServiceUnavailable},
		{err: fmt.Errorf("wrap: %w", context.DeadlineExceeded), want: http.StatusGatewayTimeout},
		{err: &repository.RemoteError{StatusCode: http.StatusBadRequest}, want: http.StatusBadGateway},
		{err: &repository.RemoteError{StatusCode: http.StatusUnauthorized}, want: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}
