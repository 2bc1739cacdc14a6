package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pario-ai/costplan/pkg/models"
)

// parseRange parses "start:stop:step" or a single value. A single value is a
// one-element range.
func parseRange(s string) (models.Range, error) {
	parts := strings.Split(s, ":")
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return models.Range{}, fmt.Errorf("invalid range %q: %w", s, err)
		}
		vals[i] = v
	}

	switch len(vals) {
	case 1:
		return models.Range{Start: vals[0], Stop: vals[0], Step: 1}, nil
	case 3:
		return models.Range{Start: vals[0], Stop: vals[1], Step: vals[2]}, nil
	default:
		return models.Range{}, fmt.Errorf("invalid range %q: want start:stop:step", s)
	}
}

func formatRange(r models.Range) string {
	return fmt.Sprintf("%s:%s:%s",
		strconv.FormatFloat(r.Start, 'f', -1, 64),
		strconv.FormatFloat(r.Stop, 'f', -1, 64),
		strconv.FormatFloat(r.Step, 'f', -1, 64))
}

// rangeFlags override the configured sweep ranges.
type rangeFlags struct {
	requests   string
	prompt     string
	completion string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.requests, "requests-range", "", "daily requests as start:stop:step (default from config)")
	cmd.Flags().StringVar(&f.prompt, "prompt-range", "", "prompt tokens as start:stop:step (default from config)")
	cmd.Flags().StringVar(&f.completion, "completion-range", "", "completion tokens as start:stop:step (default from config)")
}

func (f *rangeFlags) apply(cmd *cobra.Command, sweep *models.Range, prompt *models.Range, completion *models.Range) error {
	for _, o := range []struct {
		flag string
		val  string
		dst  *models.Range
	}{
		{"requests-range", f.requests, sweep},
		{"prompt-range", f.prompt, prompt},
		{"completion-range", f.completion, completion},
	} {
		if !cmd.Flags().Changed(o.flag) {
			continue
		}
		r, err := parseRange(o.val)
		if err != nil {
			return fmt.Errorf("--%s: %w", o.flag, err)
		}
		*o.dst = r
	}
	return nil
}
