package ingest

import (
	"strings"

	"github.com/caselens/case-engine/internal/observability"
	"github.com/caselens/case-engine/internal/storage"
)

// EnrichStats summarizes derived-field computation across a dataset.
type EnrichStats struct {
	ConsumerWins      int
	BusinessWins      int
	Settlements       int
	DurationsComputed int
	NegativeDurations int
}

// Enrich derives the outcome flags and case duration for every record
// in place.
//
// Outcome rules, applied in order:
//   - an award with a positive amount is a consumer win
//   - a dismissal, a withdrawal, or an award of zero is a business win
//   - a settlement overrides both: settled cases count for neither side
//
// Duration is the whole-day span between filing and closing and is
// computed only when both dates are present. Negative spans (closed
// before filed, a known data-entry defect in the exports) are kept
// verbatim and counted so callers can surface them.
func Enrich(records []storage.CaseRecord, logger *observability.Logger) EnrichStats {
	var stats EnrichStats

	for i := range records {
		rec := &records[i]
		disp := strings.ToLower(rec.DispositionType)
		awarded := strings.Contains(disp, "award")

		rec.ConsumerPrevailed = awarded && rec.AwardAmount != nil && *rec.AwardAmount > 0
		rec.BusinessPrevailed = strings.Contains(disp, "dismiss") ||
			strings.Contains(disp, "withdrawn") ||
			(awarded && rec.AwardAmount != nil && *rec.AwardAmount == 0)

		if strings.Contains(disp, "settle") {
			rec.ConsumerPrevailed = false
			rec.BusinessPrevailed = false
			stats.Settlements++
		}

		if rec.ConsumerPrevailed {
			stats.ConsumerWins++
		}
		if rec.BusinessPrevailed {
			stats.BusinessWins++
		}

		if rec.DateFiled != nil && rec.DateClosed != nil {
			days := int(rec.DateClosed.Sub(*rec.DateFiled).Hours() / 24)
			rec.CaseDurationDays = &days
			stats.DurationsComputed++
			if days < 0 {
				stats.NegativeDurations++
			}
		}
	}

	if stats.NegativeDurations > 0 {
		logger.Warn().
			Int("count", stats.NegativeDurations).
			Msg("cases closed before their filing date")
	}

	return stats
}
