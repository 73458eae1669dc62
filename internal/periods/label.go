// Package periods groups monthly claims rows into calendar or binder periods
// and collapses each contiguous run into a summary row.
package periods

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/CalibrantLtd/Slido/internal/claims"
)

// InvalidDate labels rows whose month cell cannot be parsed.
const InvalidDate = "Invalid date"

// ErrBinderLength is returned when a binder label list does not cover every row.
var ErrBinderLength = errors.New("periods: binder labels must match row count")

// Granularity selects the period a row is grouped into.
type Granularity string

const (
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
	// Binder groups rows by externally supplied labels, falling back to
	// years when none are given.
	Binder Granularity = "binder"
)

// ParseGranularity resolves a granularity name (case-insensitive).
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Month, Quarter, Year, Binder:
		return g, nil
	}
	return "", fmt.Errorf("%w: period %q", claims.ErrInvalidParameter, s)
}

const monthSeparators = " -/.,"

// ParseMonth reads a "MMM-YYYY" month label. Month names are matched
// case-insensitively and may be any prefix of at least three letters of the
// full name ("Sep", "Sept", "September"). Spaces, slashes, dots and commas
// are accepted in place of the hyphen; the year must have four digits.
func ParseMonth(month string) (time.Time, bool) {
	s := strings.TrimSpace(month)
	i := strings.IndexAny(s, monthSeparators)
	if i < 3 {
		return time.Time{}, false
	}
	year := strings.TrimLeft(s[i:], monthSeparators)
	if len(year) != 4 || year[0] < '0' || year[0] > '9' {
		return time.Time{}, false
	}
	y, err := strconv.Atoi(year)
	if err != nil || y < 1 {
		return time.Time{}, false
	}
	// cases.Caser keeps state and is not safe for concurrent use.
	name := cases.Title(language.English).String(s[:i])
	for m := time.January; m <= time.December; m++ {
		if strings.HasPrefix(m.String(), name) {
			return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Label formats a month cell for the granularity: "Jan-2024", "Q1-2024" or
// "2024". Binder granularity formats as a year.
func Label(month claims.Cell, g Granularity) string {
	s, ok := month.(string)
	if !ok {
		return InvalidDate
	}
	t, ok := ParseMonth(s)
	if !ok {
		return InvalidDate
	}
	switch g {
	case Month:
		return t.Format("Jan-2006")
	case Quarter:
		return fmt.Sprintf("Q%d-%d", (int(t.Month())-1)/3+1, t.Year())
	default:
		return t.Format("2006")
	}
}

// Labels computes the period label of every row. Binder labels, when given,
// are used as-is and must have one entry per row.
func Labels(rows claims.Rows, columns claims.Columns, g Granularity, binders []string) ([]string, error) {
	if g == Binder && len(binders) > 0 {
		if len(binders) != len(rows) {
			return nil, fmt.Errorf("%w: got %d labels for %d rows", ErrBinderLength, len(binders), len(rows))
		}
		return append([]string(nil), binders...), nil
	}
	col := columns.Index(claims.ColumnMonth)
	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = Label(cellAt(row, col), g)
	}
	return labels, nil
}

func cellAt(row claims.Row, col int) claims.Cell {
	if col < 0 || col >= len(row) {
		return nil
	}
	return row[col]
}
