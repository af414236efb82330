package service

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mudon/freelance-management-system-sub000/internal/model"
)

// ErrInvalidPeriod - неизвестный период графика
var ErrInvalidPeriod = errors.New("неизвестный период")

var periodDays = map[model.Period]int{
	model.Period7Days:   7,
	model.Period30Days:  30,
	model.Period3Months: 90,
	model.Period6Months: 180,
	model.Period1Year:   365,
}

// ParsePeriod проверяет значение периода; пустая строка означает период по умолчанию
func ParsePeriod(raw string) (model.Period, error) {
	if raw == "" {
		return model.DefaultPeriod, nil
	}
	period := model.Period(raw)
	if _, ok := periodDays[period]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, raw)
	}
	return period, nil
}

// DaysFor возвращает длину окна периода в днях
func DaysFor(period model.Period) int {
	return periodDays[period]
}

func monthly(period model.Period) bool {
	return period == model.Period1Year
}

// BucketKey идентифицирует интервал графика: день или месяц (Day == 0).
// Ключ не зависит от локали, поэтому ключи оси и ключи записей совпадают.
type BucketKey struct {
	Year  int
	Month time.Month
	Day   int
}

func (k BucketKey) String() string {
	if k.Day == 0 {
		return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
	}
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, int(k.Month), k.Day)
}

// bucketKeyFor - единственное правило вычисления ключа, общее для оси и записей.
// t должно быть уже приведено к часовому поясу оси.
func bucketKeyFor(period model.Period, t time.Time) BucketKey {
	if monthly(period) {
		return BucketKey{Year: t.Year(), Month: t.Month()}
	}
	return BucketKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func bucketLabel(period model.Period, t time.Time) string {
	if monthly(period) {
		return t.Format("Jan")
	}
	return t.Format("Jan 2")
}

// axis - опорные дни окна, от самого старого к сегодняшнему
type axis struct {
	period   model.Period
	location *time.Location
	anchors  []time.Time
	start    time.Time // момент ref ровно days дней назад
	end      time.Time // начало следующего за сегодняшним дня
}

func newAxis(period model.Period, ref time.Time, location *time.Location) axis {
	if location == nil {
		location = time.UTC
	}
	days := DaysFor(period)
	local := ref.In(location)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, location)

	anchors := make([]time.Time, days)
	for i := range anchors {
		anchors[i] = today.AddDate(0, 0, -(days - 1 - i))
	}

	return axis{
		period:   period,
		location: location,
		anchors:  anchors,
		start:    local.AddDate(0, 0, -days),
		end:      today.AddDate(0, 0, 1),
	}
}

// each обходит интервалы оси по порядку. Для месячной разбивки
// соседние дни одного месяца схлопываются в один интервал.
// Если окно начинается и заканчивается одним и тем же месяцем
// разных лет, крайние подписи получают год.
func (a axis) each(fn func(key BucketKey, label string)) {
	oldest := bucketKeyFor(a.period, a.anchors[0])
	newest := bucketKeyFor(a.period, a.anchors[len(a.anchors)-1])
	edgeRepeats := monthly(a.period) && oldest.Month == newest.Month && oldest.Year != newest.Year

	var (
		prev  BucketKey
		first = true
	)
	for _, anchor := range a.anchors {
		key := bucketKeyFor(a.period, anchor)
		if !first && key == prev {
			continue
		}
		label := bucketLabel(a.period, anchor)
		if edgeRepeats && (key == oldest || key == newest) {
			label = anchor.Format("Jan 06")
		}
		fn(key, label)
		prev, first = key, false
	}
}

type bucketCounters struct {
	quotes   int
	invoices int
	projects int
	revenue  decimal.Decimal
}

// accumulator хранит счетчики по ключам интервалов одного прохода агрегации
type accumulator struct {
	axis    axis
	buckets map[BucketKey]*bucketCounters
}

func newAccumulator(a axis) *accumulator {
	buckets := make(map[BucketKey]*bucketCounters, len(a.anchors))
	a.each(func(key BucketKey, _ string) {
		buckets[key] = &bucketCounters{revenue: decimal.Zero}
	})
	return &accumulator{axis: a, buckets: buckets}
}

// bucketFor возвращает интервал записи или nil, если у записи нет даты
// создания или она вне окна
func (acc *accumulator) bucketFor(createdAt *time.Time) *bucketCounters {
	if createdAt == nil {
		return nil
	}
	ts := createdAt.In(acc.axis.location)
	if ts.Before(acc.axis.start) || !ts.Before(acc.axis.end) {
		return nil
	}
	return acc.buckets[bucketKeyFor(acc.axis.period, ts)]
}

func (acc *accumulator) addQuotes(quotes []model.Quote) {
	for _, quote := range quotes {
		if bucket := acc.bucketFor(quote.CreatedAt); bucket != nil {
			bucket.quotes++
		}
	}
}

func (acc *accumulator) addInvoices(invoices []model.Invoice) {
	for _, invoice := range invoices {
		bucket := acc.bucketFor(invoice.CreatedAt)
		if bucket == nil {
			continue
		}
		bucket.invoices++
		if invoice.Status == model.InvoiceStatusPaid && invoice.TotalAmount.IsPositive() {
			bucket.revenue = bucket.revenue.Add(invoice.TotalAmount)
		}
	}
}

func (acc *accumulator) addProjects(projects []model.Project) {
	for _, project := range projects {
		if bucket := acc.bucketFor(project.CreatedAt); bucket != nil {
			bucket.projects++
		}
	}
}

func (acc *accumulator) chart(ref time.Time) *model.ChartData {
	data := newChartData(acc.axis, ref)
	acc.axis.each(func(key BucketKey, label string) {
		bucket := acc.buckets[key]
		data.Labels = append(data.Labels, label)
		data.Datasets = append(data.Datasets, model.ChartPoint{
			Label:    label,
			Key:      key.String(),
			Quotes:   bucket.quotes,
			Invoices: bucket.invoices,
			Projects: bucket.projects,
			Revenue:  bucket.revenue,
		})
	})
	data.Available = true
	return data
}

func newChartData(a axis, ref time.Time) *model.ChartData {
	return &model.ChartData{
		Period:      a.period,
		Labels:      make([]string, 0, len(a.anchors)),
		Datasets:    make([]model.ChartPoint, 0, len(a.anchors)),
		GeneratedAt: ref,
	}
}

// BuildChart раскладывает записи по интервалам окна, которое заканчивается
// календарным днем ref в часовом поясе location
func BuildChart(
	period model.Period,
	ref time.Time,
	location *time.Location,
	quotes []model.Quote,
	invoices []model.Invoice,
	projects []model.Project,
) *model.ChartData {
	acc := newAccumulator(newAxis(period, ref, location))
	acc.addQuotes(quotes)
	acc.addInvoices(invoices)
	acc.addProjects(projects)
	return acc.chart(ref)
}

// UnavailableChart возвращает ось периода без данных
func UnavailableChart(period model.Period, ref time.Time, location *time.Location) *model.ChartData {
	a := newAxis(period, ref, location)
	data := newChartData(a, ref)
	a.each(func(key BucketKey, label string) {
		data.Labels = append(data.Labels, label)
		data.Datasets = append(data.Datasets, model.ChartPoint{
			Label:   label,
			Key:     key.String(),
			Revenue: decimal.Zero,
		})
	})
	return data
}

// SyntheticChart заполняет ось случайными значениями-заглушками
func SyntheticChart(period model.Period, ref time.Time, location *time.Location) *model.ChartData {
	data := UnavailableChart(period, ref, location)
	for i := range data.Datasets {
		point := &data.Datasets[i]
		point.Quotes = rand.IntN(3) + 1
		point.Invoices = rand.IntN(2) + 1
		point.Projects = 1
		point.Revenue = decimal.NewFromInt(int64(rand.IntN(1000) + 500))
	}
	data.Synthetic = true
	return data
}
