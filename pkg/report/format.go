// Package report renders projections, sweeps and heatmaps for people and
// for other programs.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/pario-ai/costplan/pkg/models"
)

// Format is an output format for command results.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or csv)", s)
	}
}

// Currency formats v as dollars with two decimals and thousands separators,
// e.g. $1,170.00.
func Currency(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// Tokens formats a token total as a whole number with separators.
func Tokens(v float64) string {
	return humanize.FormatFloat("#,###.", v)
}

// Quantity formats a per-request count, keeping up to two decimals.
func Quantity(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSweepCSV writes sweep rows with a header line.
func WriteSweepCSV(w io.Writer, rows []models.SweepRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"daily_requests", "prompt_tokens", "completion_tokens", "total_cost"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			formatRaw(r.DailyRequests),
			formatRaw(r.PromptTokens),
			formatRaw(r.CompletionTokens),
			formatRaw(r.TotalCost),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
