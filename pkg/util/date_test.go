package util

import (
	"testing"
	"time"
)

func TestParseDateRFC3339(t *testing.T) {
	s := "2020-01-01T00:00:00Z"
	got, ok := ParseDate(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDatePlain(t *testing.T) {
	got, ok := ParseDate("2020-02-01")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParseDateMonth(t *testing.T) {
	got, ok := ParseDate("2021-07")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Year() != 2021 || got.Month() != time.July {
		t.Fatalf("unexpected %v", got)
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, ok := ParseDate("not-a-date"); ok {
		t.Fatalf("expected parse failure")
	}
	if _, ok := ParseDate(""); ok {
		t.Fatalf("expected parse failure for empty")
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	got := ParseDateDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestFormatMonth(t *testing.T) {
	got := FormatMonth(time.Date(2020, 3, 15, 12, 0, 0, 0, time.UTC))
	if got != "2020-03" {
		t.Fatalf("got %q", got)
	}
}
