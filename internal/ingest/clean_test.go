package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "John Smith", "John Smith"},
		{"surrounding whitespace", "  John Smith  ", "John Smith"},
		{"internal runs", "John   L.\tSmith", "John L. Smith"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"null-ish n/a", "N/A", ""},
		{"null-ish nan", "NaN", ""},
		{"null-ish none", "none", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CleanString(tc.input))
		})
	}
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *float64
	}{
		{"currency with separators", "$12,345.67", f(12345.67)},
		{"plain number", "1234.5", f(1234.5)},
		{"integer", "500", f(500)},
		{"negative preserved", "-5", f(-5)},
		{"embedded text", "USD 1,000 awarded", f(1000)},
		{"empty", "", nil},
		{"no digits", "N/A", nil},
		{"only symbols", "$,", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractAmount(tc.input)
			if tc.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.expected, *got, 1e-9)
		})
	}
}

func f(v float64) *float64 { return &v }

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		year  int
		month int
		day   int
	}{
		{"iso", "2020-01-15", 2020, 1, 15},
		{"us slashes", "01/15/2020", 2020, 1, 15},
		{"short us slashes", "1/5/2020", 2020, 1, 5},
		{"iso with time", "2020-01-15 10:30:00", 2020, 1, 15},
		{"long form", "January 15, 2020", 2020, 1, 15},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseDate(tc.input)
			require.NotNil(t, got)
			assert.Equal(t, tc.year, got.Year())
			assert.Equal(t, tc.month, int(got.Month()))
			assert.Equal(t, tc.day, got.Day())
		})
	}

	t.Run("unparseable", func(t *testing.T) {
		assert.Nil(t, ParseDate("not a date"))
	})
	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, ParseDate(""))
	})
}

func TestStandardizeDisposition(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"settled", "settled", "Settled"},
		{"settled phrasing", "Settled Prior to Award", "Settled"},
		{"dismissed", "Case Dismissed", "Dismissed"},
		{"dismissed on merits", "Case Dismissed on the Merits", "Dismissed on the Merits"},
		{"dismissal", "Dismissal without hearing", "Dismissed"},
		{"withdrawn", "Claim Withdrawn", "Withdrawn"},
		{"awarded", "AWARD ISSUED", "Awarded"},
		{"administrative", "Administrative Closure", "Administrative"},
		{"unknown kept capitalized", "pending review", "Pending review"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StandardizeDisposition(tc.input))
		})
	}
}
