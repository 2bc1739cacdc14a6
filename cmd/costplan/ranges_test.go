package main

import (
	"testing"

	"github.com/pario-ai/costplan/pkg/models"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want models.Range
	}{
		{"500:2000:500", models.Range{Start: 500, Stop: 2000, Step: 500}},
		{" 100 : 500 : 100 ", models.Range{Start: 100, Stop: 500, Step: 100}},
		{"0.5:1.5:0.25", models.Range{Start: 0.5, Stop: 1.5, Step: 0.25}},
		{"300", models.Range{Start: 300, Stop: 300, Step: 1}},
	}
	for _, tt := range tests {
		got, err := parseRange(tt.in)
		if err != nil {
			t.Fatalf("parseRange(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("parseRange(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseRangeInvalid(t *testing.T) {
	for _, in := range []string{"", "1:2", "a:b:c", "1:2:3:4"} {
		if _, err := parseRange(in); err == nil {
			t.Errorf("parseRange(%q): expected error", in)
		}
	}
}

func TestFormatRangeRoundTrip(t *testing.T) {
	r := models.Range{Start: 200, Stop: 800, Step: 100}
	if got := formatRange(r); got != "200:800:100" {
		t.Fatalf("expected 200:800:100, got %s", got)
	}
	back, err := parseRange(formatRange(r))
	if err != nil {
		t.Fatal(err)
	}
	if back != r {
		t.Errorf("expected %+v, got %+v", r, back)
	}
}
