package ingest

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/caselens/case-engine/internal/storage"
)

// CleanString trims a raw cell and collapses internal runs of
// whitespace to single spaces. Empty and null-ish cells come back as "".
func CleanString(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	switch strings.ToLower(s) {
	case "nan", "none", "null", "n/a", "na":
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

// ExtractAmount parses a monetary cell into a float. Currency symbols,
// thousands separators, and surrounding text are stripped; only digits,
// the decimal point, and a sign survive. Returns nil when nothing
// parseable remains. Negative amounts are preserved as-is.
func ExtractAmount(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return nil
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// dateLayouts lists the formats seen across forum exports, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01-02-2006",
	"01/02/06",
	"January 2, 2006",
	"Jan 2, 2006",
	"2-Jan-2006",
	time.RFC3339,
}

// ParseDate parses a date cell against the known export formats.
// Returns nil for empty or unparseable values.
func ParseDate(raw string) *time.Time {
	s := CleanString(raw)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// StandardizeDisposition folds raw disposition text onto the shared
// vocabulary. Match order matters: "Dismissed on the Merits" must win
// over plain "Dismissed", and settlement is checked first because some
// exports phrase it as "Settled Prior to Award". Unrecognized values
// keep their text with the first letter capitalized.
func StandardizeDisposition(raw string) string {
	s := CleanString(raw)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)

	switch {
	case strings.Contains(lower, "settle"):
		return storage.DispositionSettled
	case strings.Contains(lower, "dismiss") && strings.Contains(lower, "merit"):
		return storage.DispositionDismissedOnMerits
	case strings.Contains(lower, "dismiss"):
		return storage.DispositionDismissed
	case strings.Contains(lower, "withdraw"):
		return storage.DispositionWithdrawn
	case strings.Contains(lower, "award"):
		return storage.DispositionAwarded
	case strings.Contains(lower, "admin"):
		return storage.DispositionAdministrative
	}
	return capitalizeFirst(s)
}

func capitalizeFirst(s string) string {
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
