package repository

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Здесь находится граница валидации: записи API приводятся к моделям,
// отсутствующие и некорректные поля заменяются значениями по умолчанию.

// flexNumber принимает число, строку с числом или null
type flexNumber struct {
	value decimal.Decimal
	valid bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	n.value, n.valid = parseDecimal(data)
	return nil
}

func (n flexNumber) orZero() decimal.Decimal {
	if !n.valid {
		return decimal.Zero
	}
	return n.value
}

func (n flexNumber) optional() *decimal.Decimal {
	if !n.valid {
		return nil
	}
	v := n.value
	return &v
}

// flexTime хранит сырое значение даты; разбор откладывается до
// приведения к модели, потому что нужен часовой пояс.
type flexTime struct {
	raw   string
	parts []int
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	*t = flexTime{}
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			t.raw = strings.TrimSpace(s)
		}
	case data[0] == '[':
		// Jackson без JavaTimeModule сериализует LocalDateTime массивом
		var parts []int
		if err := json.Unmarshal(data, &parts); err == nil {
			t.parts = parts
		}
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// in возвращает время в указанном часовом поясе или nil.
// Значения без зоны (LocalDateTime) считаются заданными в loc.
func (t flexTime) in(loc *time.Location) *time.Time {
	if len(t.parts) >= 3 {
		p := make([]int, 7)
		copy(p, t.parts)
		ts := time.Date(p[0], time.Month(p[1]), p[2], p[3], p[4], p[5], p[6], loc)
		return &ts
	}
	if t.raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		ts, err := time.ParseInLocation(layout, t.raw, loc)
		if err == nil {
			ts = ts.In(loc)
			return &ts
		}
	}
	return nil
}

func parseID(raw string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func normalizeStatus(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
