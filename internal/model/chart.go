package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period - окно выборки для графика дашборда
type Period string

const (
	Period7Days   Period = "7d"
	Period30Days  Period = "30d"
	Period3Months Period = "3m"
	Period6Months Period = "6m"
	Period1Year   Period = "1y"
)

// DefaultPeriod используется, если период не указан
const DefaultPeriod = Period30Days

// Periods - все поддерживаемые периоды
var Periods = []Period{Period7Days, Period30Days, Period3Months, Period6Months, Period1Year}

// ChartPoint - значения одного интервала (дня или месяца) графика
type ChartPoint struct {
	Label    string          `json:"date"`
	Key      string          `json:"key"`
	Quotes   int             `json:"quotes"`
	Invoices int             `json:"invoices"`
	Projects int             `json:"projects"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// ChartData - временной ряд для графика дашборда.
// Available=false означает, что данные API получить не удалось.
type ChartData struct {
	Period      Period       `json:"period"`
	Labels      []string     `json:"labels"`
	Datasets    []ChartPoint `json:"datasets"`
	Available   bool         `json:"available"`
	Synthetic   bool         `json:"synthetic"`
	GeneratedAt time.Time    `json:"generated_at"`
}
