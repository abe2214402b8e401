package services

import (
	"errors"
	"testing"
	"time"
)

func TestParseTempoTotal(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"01:00:00", 3600, false},
		{"00:55:10", 3310, false},
		{"0:05:30", 330, false},
		{"3600", 3600, false},
		{"0", 0, false},
		{" 01:02:03 ", 3723, false},
		{"", 0, true},
		{"01:00", 0, true},
		{"01:60:00", 0, true},
		{"01:00:75", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTempoTotal(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidTimeFormat) {
				t.Errorf("ParseTempoTotal(%q) err = %v, want ErrInvalidTimeFormat", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTempoTotal(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTempoTotal(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseTempoFim(t *testing.T) {
	reference := time.Date(2025, 10, 18, 8, 0, 0, 0, time.UTC)

	got, err := ParseTempoFim("09:15:30", reference)
	if err != nil {
		t.Fatalf("ParseTempoFim: %v", err)
	}
	want := time.Date(2025, 10, 18, 9, 15, 30, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseTempoFim = %v, want %v", got, want)
	}

	// A clock reading behind the reference rolls over to the next day.
	nightly := time.Date(2025, 10, 18, 23, 30, 0, 0, time.UTC)
	got, err = ParseTempoFim("00:15:00", nightly)
	if err != nil {
		t.Fatalf("ParseTempoFim: %v", err)
	}
	want = time.Date(2025, 10, 19, 0, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseTempoFim across midnight = %v, want %v", got, want)
	}

	if _, err := ParseTempoFim("25:00:00", reference); !errors.Is(err, ErrInvalidTimeFormat) {
		t.Errorf("err = %v, want ErrInvalidTimeFormat", err)
	}
	if _, err := ParseTempoFim("meio-dia", reference); !errors.Is(err, ErrInvalidTimeFormat) {
		t.Errorf("err = %v, want ErrInvalidTimeFormat", err)
	}
}

func TestFormatTempo(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{3150, "52:30"},
		{3600, "60:00"},
		{3725, "62:05"},
		{-10, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatTempo(tt.seconds); got != tt.want {
			t.Errorf("FormatTempo(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
