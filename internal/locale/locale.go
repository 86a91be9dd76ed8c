// Package locale parses the Brazilian formats found in the operational
// spreadsheets: dd/mm/yyyy dates, "R$ 1.234,56" amounts and HH:MM clocks.
package locale

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Werneck0live/personal-controller/internal/models"
)

var (
	dateRe  = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)
	clockRe = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// ParseDate extracts the first dd/mm/yyyy in text. Impossible calendar
// dates (31/04, 29/02 outside leap years) are rejected.
func ParseDate(text string) (time.Time, bool) {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normaliza 31/04 para 01/05
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}

// FormatDate is the inverse of ParseDate.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// ParseCurrencyStrict parses "R$ 1.234,56" style amounts.
func ParseCurrencyStrict(text string) (float64, bool) {
	s := strings.ReplaceAll(text, "R$", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseCurrency returns 0 when the amount cannot be read.
func ParseCurrency(text string) float64 {
	f, _ := ParseCurrencyStrict(text)
	return f
}

func ParseIntegerStrict(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseInteger returns 0 when text is not an integer.
func ParseInteger(text string) int {
	n, _ := ParseIntegerStrict(text)
	return n
}

// SplitMultiValue splits "NF1, NF2;NF3" into trimmed non-empty parts.
func SplitMultiValue(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseClock reads the first H:MM or HH:MM in text.
func ParseClock(text string) (models.ClockTime, bool) {
	m := clockRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return models.NewClockTime(h, min)
}
