package format

import (
	"fmt"
	"strings"

	"planilhas/types"
)

// Fallback phrases for fields the service left empty.
const (
	fallbackColumns     = "the requested columns"
	fallbackSource      = "the source spreadsheet"
	fallbackDestination = "the destination spreadsheet"
	fallbackSortTarget  = "the spreadsheet"
	fallbackKey         = "the detected key"
	fallbackSortKey     = "the default column"
)

// IsSort reports whether the summary describes a sort run.
func IsSort(s types.RunSummary) bool {
	return strings.EqualFold(strings.TrimSpace(s.DetectedAction), types.ActionSort)
}

// Summarize renders a run summary as one human-readable sentence. Every
// optional field has a fallback phrase.
func Summarize(s types.RunSummary) string {
	if IsSort(s) {
		return fmt.Sprintf("%s sorted by %s in %s order, total rows %d.",
			quoteOr(s.Destination, fallbackSortTarget),
			quoteOr(s.Key, fallbackSortKey),
			sortDirection(s.SortOrder),
			s.RowsTotal)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Added %s from %s to %s matched on %s, total rows %d, rows without a match %d.",
		columnsPhrase(s.AddedColumns),
		quoteOr(s.Source, fallbackSource),
		quoteOr(s.Destination, fallbackDestination),
		quoteOr(s.Key, fallbackKey),
		s.RowsTotal,
		s.RowsUnmatched)
	if s.FillMissing != nil && strings.TrimSpace(*s.FillMissing) != "" {
		fmt.Fprintf(&b, " Unmatched cells were filled with %q.", *s.FillMissing)
	}
	return b.String()
}

func sortDirection(order *string) string {
	if order != nil && strings.HasPrefix(strings.ToLower(strings.TrimSpace(*order)), "desc") {
		return "descending"
	}
	return "ascending"
}

func columnsPhrase(cols []string) string {
	quoted := make([]string, 0, len(cols))
	for _, c := range cols {
		if c = strings.TrimSpace(c); c != "" {
			quoted = append(quoted, fmt.Sprintf("%q", c))
		}
	}
	switch len(quoted) {
	case 0:
		return fallbackColumns
	case 1:
		return "column " + quoted[0]
	default:
		return "columns " + strings.Join(quoted, ", ")
	}
}

func quoteOr(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return fmt.Sprintf("%q", v)
}
