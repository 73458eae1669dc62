package claims

import (
	"encoding/json"
	"math"
	"testing"
)

func TestToFloat(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{name: "nil", in: nil, want: 0},
		{name: "float", in: 12.5, want: 12.5},
		{name: "int", in: 7, want: 7},
		{name: "int64", in: int64(-3), want: -3},
		{name: "int8", in: int8(5), want: 5},
		{name: "int16", in: int16(-5), want: -5},
		{name: "uint8", in: uint8(5), want: 5},
		{name: "uint16", in: uint16(5), want: 5},
		{name: "uintptr", in: uintptr(5), want: 5},
		{name: "json number", in: json.Number("1e3"), want: 1000},
		{name: "numeric string", in: "42.25", want: 42.25},
		{name: "leading spaces", in: "  8", want: 8},
		{name: "trailing text", in: "12.5%", want: 12.5},
		{name: "dangling exponent", in: "3e", want: 3},
		{name: "leading dot", in: ".5", want: 0.5},
		{name: "label", in: "Jan-2024", want: 0},
		{name: "empty", in: "", want: 0},
		{name: "nan string", in: "NaN", want: 0},
		{name: "bool", in: true, want: 0},
		{name: "slice", in: []int{1}, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToFloat(tc.in); got != tc.want {
				t.Fatalf("ToFloat(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSmallIntegerCellsReachTheEngine(t *testing.T) {
	columns := Columns{ColumnGEP: 0, "claims_data.X_inc": 1}
	e := NewEngine(Rows{{int16(400), uint8(100)}}, columns, []string{"X"})
	if got := e.GEPAmount(0); got != 400 {
		t.Fatalf("expected GEP 400, got %v", got)
	}
	if got := e.IncurredTotal(0, NormaliseSet{}); got != 100 {
		t.Fatalf("expected incurred 100, got %v", got)
	}
}

func TestToFloatInfinity(t *testing.T) {
	if got := ToFloat("-Infinity"); !math.IsInf(got, -1) {
		t.Fatalf("expected -Inf, got %v", got)
	}
	if got := ToFloat("1e400"); !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf on overflow, got %v", got)
	}
}

func TestSafeDivide(t *testing.T) {
	if got := SafeDivide(10, 4); got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}
	if got := SafeDivide(10, 0); got != 0 {
		t.Fatalf("expected 0 on zero denominator, got %v", got)
	}
	if got := SafeDivide(math.NaN(), 2); got != 0 {
		t.Fatalf("expected 0 on NaN numerator, got %v", got)
	}
	if got := SafeDivide(1, math.NaN()); got != 0 {
		t.Fatalf("expected 0 on NaN denominator, got %v", got)
	}
}
