package influx

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/influxdata/influxdb1-client/models"
)

func TestClassifyQueryErr(t *testing.T) {
	cases := []struct {
		msg  string
		want error
	}{
		{"authorization failed", ErrUnauthorized},
		{"unable to parse authentication credentials", ErrUnauthorized},
		{"dial tcp 127.0.0.1:8086: connect: connection refused", ErrUnreachable},
		{"lookup influx.internal: no such host", ErrUnreachable},
	}
	for _, tc := range cases {
		got := classifyQueryErr(errors.New(tc.msg))
		if !errors.Is(got, tc.want) {
			t.Fatalf("%q: got %v, want %v", tc.msg, got, tc.want)
		}
	}

	plain := errors.New("measurement not found")
	if got := classifyQueryErr(plain); got != plain {
		t.Fatalf("unexpected rewrap of plain error: %v", got)
	}
}

func TestQuoteIdent(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"cpu", `"cpu"`},
		{"cpu load", `"cpu load"`},
		{`say "hi"`, `"say \"hi\""`},
		{`back\slash`, `"back\\slash"`},
	}
	for _, tc := range cases {
		if got := quoteIdent(tc.in); got != tc.want {
			t.Fatalf("%q: got %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestFirstCount(t *testing.T) {
	rows := []models.Row{{
		Name:    "cpu",
		Columns: []string{"time", "count_usage", "count_idle"},
		Values:  [][]interface{}{{json.Number("0"), json.Number("1234"), json.Number("999")}},
	}}
	if n := firstCount(rows); n != 1234 {
		t.Fatalf("got %d, want 1234", n)
	}
	if n := firstCount(nil); n != 0 {
		t.Fatalf("got %d for empty result, want 0", n)
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int64
		ok   bool
	}{
		{json.Number("42"), 42, true},
		{json.Number("42.9"), 42, true},
		{float64(7), 7, true},
		{int64(7), 7, true},
		{"19", 19, true},
		{"nineteen", 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := toInt64(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%v: got (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
