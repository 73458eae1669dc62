// Package dataset loads claims datasets and portfolio parameters from the
// formats the analytics backend and analysts exchange: JSON payloads, CSV
// and Excel exports, and YAML parameter files.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/CalibrantLtd/Slido/internal/claims"
	"github.com/CalibrantLtd/Slido/internal/dashboard"
)

// ErrMalformed is returned for input that cannot be turned into a dataset.
var ErrMalformed = errors.New("dataset: malformed input")

type payload struct {
	Data   claims.Rows    `json:"data"`
	Column claims.Columns `json:"column"`
}

// DecodeJSON reads a backend payload of the form {"data": [[...]], "column": {...}}.
// Numbers are kept as json.Number.
func DecodeJSON(r io.Reader) (dashboard.Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var p payload
	if err := dec.Decode(&p); err != nil {
		return dashboard.Dataset{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(p.Column) == 0 {
		return dashboard.Dataset{}, fmt.Errorf("%w: column map is empty", ErrMalformed)
	}
	return dashboard.Dataset{Rows: p.Data, Columns: p.Column}, nil
}

// fromRecords turns a header row plus data records into a dataset. Blank
// header cells are skipped; duplicate names keep their first position.
func fromRecords(records [][]string) (dashboard.Dataset, error) {
	if len(records) == 0 {
		return dashboard.Dataset{}, fmt.Errorf("%w: missing header row", ErrMalformed)
	}
	columns := make(claims.Columns, len(records[0]))
	for i, name := range records[0] {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := columns[name]; dup {
			continue
		}
		columns[name] = i
	}
	if len(columns) == 0 {
		return dashboard.Dataset{}, fmt.Errorf("%w: header row has no names", ErrMalformed)
	}
	width := len(records[0])
	rows := make(claims.Rows, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make(claims.Row, width)
		for i := 0; i < width && i < len(rec); i++ {
			row[i] = parseCell(rec[i])
		}
		rows = append(rows, row)
	}
	return dashboard.Dataset{Rows: rows, Columns: columns}, nil
}

// parseCell reads numeric text as float64; empty text becomes nil and
// anything else stays a label.
func parseCell(s string) claims.Cell {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
		return v
	}
	return s
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
