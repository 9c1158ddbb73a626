package ingest

import (
	"fmt"
	"strings"

	"github.com/caselens/case-engine/internal/storage"
)

// DedupeStats reports how many records each pass removed.
type DedupeStats struct {
	Input           int
	AfterCaseID     int
	AfterAttributes int
}

// Deduplicate removes duplicate cases in two passes while preserving
// input order. Pass one groups by case ID, the authoritative key. Pass
// two catches cross-forum duplicates that were assigned different IDs
// by grouping on arbitrator, respondent, and filing date. Within a
// group the most complete record survives; ties go to the earliest
// occurrence.
func Deduplicate(records []storage.CaseRecord) ([]storage.CaseRecord, DedupeStats) {
	stats := DedupeStats{Input: len(records)}

	byID := dedupeBy(records, func(r *storage.CaseRecord) (string, bool) {
		if !r.HasCaseID() {
			return "", false
		}
		return r.CaseID, true
	})
	stats.AfterCaseID = len(byID)

	byAttrs := dedupeBy(byID, func(r *storage.CaseRecord) (string, bool) {
		filed := ""
		if r.DateFiled != nil {
			filed = r.DateFiled.Format("2006-01-02")
		}
		key := fmt.Sprintf("%s|%s|%s",
			strings.ToLower(r.ArbitratorName),
			strings.ToLower(r.RespondentName),
			filed,
		)
		return key, true
	})
	stats.AfterAttributes = len(byAttrs)

	return byAttrs, stats
}

// dedupeBy keeps, for every key, the record with the highest
// completeness score. Records whose key function declines are kept
// unconditionally. Output preserves the input order of survivors.
func dedupeBy(records []storage.CaseRecord, keyFn func(*storage.CaseRecord) (string, bool)) []storage.CaseRecord {
	type slot struct {
		index int // position in out
		score int
	}
	best := make(map[string]slot)
	out := make([]storage.CaseRecord, 0, len(records))

	for i := range records {
		key, ok := keyFn(&records[i])
		if !ok {
			out = append(out, records[i])
			continue
		}

		score := records[i].Completeness()
		if prev, seen := best[key]; seen {
			if score > prev.score {
				out[prev.index] = records[i]
				best[key] = slot{index: prev.index, score: score}
			}
			continue
		}

		best[key] = slot{index: len(out), score: score}
		out = append(out, records[i])
	}
	return out
}
