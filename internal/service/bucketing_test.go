package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mudon/freelance-management-system-sub000/internal/model"
)

var refInstant = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func at(days int, hour int) *time.Time {
	t := time.Date(2026, time.October, 19, hour, 0, 0, 0, time.UTC).AddDate(0, 0, -days)
	return &t
}

func TestParsePeriod(t *testing.T) {
	got, err := ParsePeriod("")
	if err != nil || got != model.Period30Days {
		t.Fatalf("expected default period, got %q, %v", got, err)
	}
	for _, p := range model.Periods {
		if got, err := ParsePeriod(string(p)); err != nil || got != p {
			t.Fatalf("period %q: got %q, %v", p, got, err)
		}
	}
	if _, err := ParsePeriod("2w"); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestBuildChartDailyLength(t *testing.T) {
	cases := map[model.Period]int{
		model.Period7Days:   7,
		model.Period30Days:  30,
		model.Period3Months: 90,
		model.Period6Months: 180,
	}
	for period, want := range cases {
		chart := BuildChart(period, refInstant, time.UTC, nil, nil, nil)
		if len(chart.Labels) != want || len(chart.Datasets) != want {
			t.Fatalf("%s: expected %d points, got %d labels / %d datasets", period, want, len(chart.Labels), len(chart.Datasets))
		}
		if !chart.Available || chart.Synthetic {
			t.Fatalf("%s: expected real chart, got %+v", period, chart)
		}
		last := chart.Datasets[len(chart.Datasets)-1]
		if last.Key != "2026-10-19" || last.Label != "Oct 19" {
			t.Fatalf("%s: expected today last, got %+v", period, last)
		}
	}
}

func TestBuildChartSevenDayLabels(t *testing.T) {
	chart := BuildChart(model.Period7Days, refInstant, time.UTC, nil, nil, nil)
	want := []string{"Oct 13", "Oct 14", "Oct 15", "Oct 16", "Oct 17", "Oct 18", "Oct 19"}
	for i, label := range want {
		if chart.Labels[i] != label {
			t.Fatalf("label %d: expected %q, got %q", i, label, chart.Labels[i])
		}
	}
}

func TestBuildChartYearlyBuckets(t *testing.T) {
	chart := BuildChart(model.Period1Year, refInstant, time.UTC, nil, nil, nil)
	if len(chart.Datasets) != 13 {
		t.Fatalf("expected 13 monthly points for a mid-month reference, got %d", len(chart.Datasets))
	}
	if chart.Datasets[0].Key != "2025-10" || chart.Datasets[12].Key != "2026-10" {
		t.Fatalf("unexpected month range %s..%s", chart.Datasets[0].Key, chart.Datasets[12].Key)
	}
	if chart.Datasets[0].Label != "Oct 25" || chart.Datasets[12].Label != "Oct 26" {
		t.Fatalf("expected year on repeated edge month, got %q and %q", chart.Datasets[0].Label, chart.Datasets[12].Label)
	}
	if chart.Datasets[1].Label != "Nov" || chart.Datasets[11].Label != "Sep" {
		t.Fatalf("expected plain month labels inside the window, got %q and %q", chart.Datasets[1].Label, chart.Datasets[11].Label)
	}

	endOfYear := time.Date(2026, time.December, 31, 8, 0, 0, 0, time.UTC)
	chart = BuildChart(model.Period1Year, endOfYear, time.UTC, nil, nil, nil)
	if len(chart.Datasets) != 12 {
		t.Fatalf("expected 12 monthly points on Dec 31, got %d", len(chart.Datasets))
	}
	if chart.Datasets[0].Label != "Jan" || chart.Datasets[11].Label != "Dec" {
		t.Fatalf("expected plain labels without a repeated month, got %q and %q", chart.Datasets[0].Label, chart.Datasets[11].Label)
	}
}

func TestBuildChartYearlyWindowStartsAtReferenceTime(t *testing.T) {
	// ровно 365 дней назад: до времени ref запись вне окна, после него в окне
	beforeStart := time.Date(2025, time.October, 19, 10, 0, 0, 0, time.UTC)
	afterStart := time.Date(2025, time.October, 19, 18, 0, 0, 0, time.UTC)
	quotes := []model.Quote{
		{Status: model.QuoteStatusSent, CreatedAt: &beforeStart},
		{Status: model.QuoteStatusSent, CreatedAt: &afterStart},
	}
	chart := BuildChart(model.Period1Year, refInstant, time.UTC, quotes, nil, nil)

	if chart.Datasets[0].Key != "2025-10" || chart.Datasets[0].Quotes != 1 {
		t.Fatalf("expected one quote in the first month, got %+v", chart.Datasets[0])
	}
}

func TestBuildChartDailyWindowDropsDayBeforeFirstAnchor(t *testing.T) {
	// внутри нижней границы по времени, но вне опорных дней
	created := time.Date(2026, time.October, 12, 14, 0, 0, 0, time.UTC)
	quotes := []model.Quote{{Status: model.QuoteStatusSent, CreatedAt: &created}}
	chart := BuildChart(model.Period7Days, refInstant, time.UTC, quotes, nil, nil)

	for _, point := range chart.Datasets {
		if point.Quotes != 0 {
			t.Fatalf("expected no bucket for a day outside the axis, got %+v", point)
		}
	}
}

func TestBuildChartCountsQuotesByDay(t *testing.T) {
	quotes := []model.Quote{
		{Status: model.QuoteStatusSent, CreatedAt: at(0, 9)},
		{Status: model.QuoteStatusDraft, CreatedAt: at(1, 9)},
		{Status: model.QuoteStatusAccepted, CreatedAt: at(10, 9)},
	}
	chart := BuildChart(model.Period7Days, refInstant, time.UTC, quotes, nil, nil)

	total := 0
	for _, point := range chart.Datasets {
		total += point.Quotes
	}
	if total != 2 {
		t.Fatalf("expected 2 in-window quotes, got %d", total)
	}
	if chart.Datasets[6].Quotes != 1 || chart.Datasets[5].Quotes != 1 {
		t.Fatalf("expected one quote today and yesterday, got %+v", chart.Datasets)
	}
}

func TestBuildChartRevenueOnlyFromPaidInvoices(t *testing.T) {
	invoices := []model.Invoice{
		{Status: model.InvoiceStatusPaid, TotalAmount: decimal.NewFromInt(500), CreatedAt: at(0, 10)},
		{Status: model.InvoiceStatusPending, TotalAmount: decimal.NewFromInt(300), CreatedAt: at(0, 11)},
		{Status: model.InvoiceStatusPaid, TotalAmount: decimal.NewFromInt(-50), CreatedAt: at(0, 11)},
	}
	chart := BuildChart(model.Period7Days, refInstant, time.UTC, nil, invoices, nil)

	today := chart.Datasets[6]
	if today.Invoices != 3 {
		t.Fatalf("expected 3 invoices today, got %d", today.Invoices)
	}
	if !today.Revenue.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected revenue 500, got %s", today.Revenue)
	}
	for _, point := range chart.Datasets {
		if point.Revenue.IsNegative() {
			t.Fatalf("negative revenue in %+v", point)
		}
	}
}

func TestBuildChartYearlySameMonthShareBucket(t *testing.T) {
	early := time.Date(2026, time.October, 3, 10, 0, 0, 0, time.UTC)
	late := time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)
	projects := []model.Project{
		{Status: model.ProjectStatusActive, CreatedAt: &early},
		{Status: model.ProjectStatusActive, CreatedAt: &late},
	}
	chart := BuildChart(model.Period1Year, refInstant, time.UTC, nil, nil, projects)

	last := chart.Datasets[len(chart.Datasets)-1]
	if last.Projects != 2 {
		t.Fatalf("expected both projects in October bucket, got %d", last.Projects)
	}
}

func TestBuildChartDropsUndatedAndFutureRecords(t *testing.T) {
	tomorrow := refInstant.AddDate(0, 0, 1)
	quotes := []model.Quote{
		{Status: model.QuoteStatusSent},
		{Status: model.QuoteStatusSent, CreatedAt: &tomorrow},
		{Status: model.QuoteStatusSent, CreatedAt: at(0, 23)},
	}
	chart := BuildChart(model.Period7Days, refInstant, time.UTC, quotes, nil, nil)

	total := 0
	for _, point := range chart.Datasets {
		total += point.Quotes
	}
	if total != 1 {
		t.Fatalf("expected only the dated in-window quote, got %d", total)
	}
}

func TestBuildChartUsesConfiguredTimezone(t *testing.T) {
	// 22:30 UTC on Oct 18 is already Oct 19 in UTC+3
	created := time.Date(2026, time.October, 18, 22, 30, 0, 0, time.UTC)
	quotes := []model.Quote{{Status: model.QuoteStatusSent, CreatedAt: &created}}

	moscow := time.FixedZone("UTC+3", 3*60*60)
	chart := BuildChart(model.Period7Days, refInstant, moscow, quotes, nil, nil)
	if chart.Datasets[6].Quotes != 1 {
		t.Fatalf("expected quote in today's bucket for UTC+3, got %+v", chart.Datasets[6])
	}

	chart = BuildChart(model.Period7Days, refInstant, time.UTC, quotes, nil, nil)
	if chart.Datasets[5].Quotes != 1 {
		t.Fatalf("expected quote in yesterday's bucket for UTC, got %+v", chart.Datasets[5])
	}
}

func TestBuildChartIsDeterministic(t *testing.T) {
	quotes := []model.Quote{{Status: model.QuoteStatusSent, CreatedAt: at(2, 9)}}
	invoices := []model.Invoice{{Status: model.InvoiceStatusPaid, TotalAmount: decimal.NewFromInt(120), CreatedAt: at(3, 9)}}

	first, err := json.Marshal(BuildChart(model.Period30Days, refInstant, time.UTC, quotes, invoices, nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(BuildChart(model.Period30Days, refInstant, time.UTC, quotes, invoices, nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical charts:\n%s\n%s", first, second)
	}
}

func TestFallbackCharts(t *testing.T) {
	unavailable := UnavailableChart(model.Period7Days, refInstant, time.UTC)
	if unavailable.Available || unavailable.Synthetic || len(unavailable.Datasets) != 7 {
		t.Fatalf("unexpected unavailable chart %+v", unavailable)
	}
	for _, point := range unavailable.Datasets {
		if point.Quotes != 0 || point.Invoices != 0 || point.Projects != 0 || !point.Revenue.IsZero() {
			t.Fatalf("expected zero point, got %+v", point)
		}
	}

	synthetic := SyntheticChart(model.Period30Days, refInstant, time.UTC)
	if synthetic.Available || !synthetic.Synthetic || len(synthetic.Datasets) != 30 {
		t.Fatalf("unexpected synthetic chart %+v", synthetic)
	}
	for _, point := range synthetic.Datasets {
		if point.Quotes < 1 || point.Quotes > 3 || point.Invoices < 1 || point.Invoices > 2 || point.Projects != 1 {
			t.Fatalf("synthetic counts out of range: %+v", point)
		}
		if point.Revenue.LessThan(decimal.NewFromInt(500)) || point.Revenue.GreaterThan(decimal.NewFromInt(1499)) {
			t.Fatalf("synthetic revenue out of range: %s", point.Revenue)
		}
	}
}
