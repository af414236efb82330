package service

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mudon/freelance-management-system-sub000/internal/config"
	"github.com/mudon/freelance-management-system-sub000/internal/repository"
)

const (
	clientOneID = "0d4f3c1e-57a4-4bb2-8bd5-0f5c2f1f0a11"
	clientTwoID = "7b1e2a44-3c5d-4e6f-9a0b-1c2d3e4f5a6b"

	quotesAPI   = "/user/client/quotes"
	invoicesAPI = "/user/client/project/quote/invoices"
	projectsAPI = "/user/projects"
	clientsAPI  = "/user/clients"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeBackend отвечает фиксированными телами по пути запроса.
// Неизвестный путь дает 404.
type fakeBackend struct {
	mu     sync.Mutex
	routes map[string]string
	auth   []string
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.auth = append(b.auth, r.Header.Get("Authorization"))
	body, ok := b.routes[strings.TrimPrefix(r.URL.Path, "/api")]
	b.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if body == "!500" {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func (b *fakeBackend) authHeaders() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.auth...)
}

func statsRoutes() map[string]string {
	return map[string]string{
		clientsAPI + "/count":                   `4`,
		projectsAPI + "/count":                  `6`,
		projectsAPI + "/count/status/active":    `3`,
		projectsAPI + "/count/status/completed": `2`,
		projectsAPI + "/count/status/on_hold":   `1`,
		invoicesAPI + "/count":                  `10`,
		invoicesAPI + "/count/status/overdue":   `2`,
		invoicesAPI + "/count/status/draft":     `1`,
		invoicesAPI + "/count/status/sent":      `3`,
		invoicesAPI + "/count/status/partial":   `1`,
		invoicesAPI + "/count/status/paid":      `3`,
		invoicesAPI + "/total-paid":             `"2500.00"`,
		invoicesAPI + "/total-balance-due":      `"750.50"`,
		invoicesAPI + "/total-invoiced":         `"5000"`,
		quotesAPI + "/count":                    `8`,
		quotesAPI + "/count/status/pending":     `2`,
		quotesAPI + "/count/status/accepted":    `3`,
		quotesAPI + "/count/status/draft":       `1`,
		quotesAPI + "/count/status/sent":        `4`,
		quotesAPI + "/count/status/rejected":    `1`,
		quotesAPI + "/count/status/expired":     `0`,
		quotesAPI + "/accepted-total":           `"4200.00"`,
	}
}

func listRoutes() map[string]string {
	return map[string]string{
		quotesAPI: `[
			{"id":"a1","status":"accepted","totalAmount":"1000","createdAt":"2026-10-19T09:00:00"},
			{"id":"a2","status":"pending","totalAmount":"500","createdAt":"2026-10-18T09:00:00"},
			{"id":"a3","status":"draft","totalAmount":"300","createdAt":"2026-09-01T09:00:00"}
		]`,

		invoicesAPI: `[
			{"id":"b1","status":"paid","totalAmount":"500","createdAt":"2026-10-19T10:00:00"},
			{"id":"b2","status":"pending","totalAmount":"300","createdAt":"2026-10-19T11:00:00"}
		]`,

		invoicesAPI + "/overdue": `[
			{"id":"b3","status":"overdue","totalAmount":"400","balanceDue":"250"},
			{"id":"b4","status":"overdue","totalAmount":"100","balanceDue":"100"}
		]`,

		projectsAPI: `[
			{"id":"c1","status":"active","fixedPrice":1000,"totalHours":5,"startDate":"2026-01-01","endDate":"2026-01-11","createdAt":"2026-10-17T08:00:00"},
			{"id":"c2","status":"completed","hourlyRate":"50","totalHours":"10","startDate":"2026-02-01","endDate":"2026-02-21"}
		]`,

		clientsAPI + "/recent": `[
			{"id":"` + clientOneID + `","contactName":"Jane Roe","companyName":"Acme","email":"jane@acme.test","status":"ACTIVE","updatedAt":"2026-10-10T12:00:00"},
			{"id":"` + clientTwoID + `","companyName":"Solo LLC"}
		]`,

		projectsAPI + "/overdue":               `[{"id":"c3","status":"active"}]`,
		projectsAPI + "/client/" + clientOneID: `[{"id":"p1","status":"active"}]`,
		invoicesAPI + "/client/" + clientOneID: `[{"id":"i1","status":"paid","totalAmount":"700"},{"id":"i2","status":"sent","totalAmount":"300"}]`,
		quotesAPI + "/client/" + clientOneID:   `[]`,
	}
}

func mergeRoutes(sets ...map[string]string) map[string]string {
	routes := make(map[string]string)
	for _, set := range sets {
		for k, v := range set {
			routes[k] = v
		}
	}
	return routes
}

func newTestDashboard(t *testing.T, routes map[string]string, fallback string) (*DashboardService, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{routes: routes}
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	logger := testLogger()
	remote, err := repository.NewRemoteClient(server.URL+"/api", time.Second, logger)
	if err != nil {
		t.Fatalf("new remote client: %v", err)
	}
	endpoints := config.DefaultEndpoints()
	svc := NewDashboardService(
		repository.NewQuoteRepository(remote, endpoints.Quotes, time.UTC, logger),
		repository.NewInvoiceRepository(remote, endpoints.Invoices, time.UTC, logger),
		repository.NewProjectRepository(remote, endpoints.Projects, time.UTC, logger),
		repository.NewClientRepository(remote, endpoints.Clients, time.UTC, logger),
		DashboardOptions{Location: time.UTC, Timeout: 5 * time.Second, Fallback: fallback},
		logger,
	)
	svc.now = func() time.Time { return refInstant }
	return svc, backend
}
