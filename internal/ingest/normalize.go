package ingest

import (
	"github.com/caselens/case-engine/internal/observability"
	"github.com/caselens/case-engine/internal/storage"
)

// NormalizeStats reports how many rows survived each required-field
// filter, so a collapse to zero can be traced to the filter that
// caused it.
type NormalizeStats struct {
	InputRows             int
	AfterCaseIDFilter     int
	AfterArbitratorFilter int
	Mapping               map[Field]string
	UnmappedFields        []Field
}

// Normalizer converts raw tables into canonical case records.
type Normalizer struct {
	resolver *Resolver
	logger   *observability.Logger
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(resolver *Resolver, logger *observability.Logger) *Normalizer {
	return &Normalizer{resolver: resolver, logger: logger.WithComponent("normalizer")}
}

// Normalize maps a raw table onto the canonical schema, cleans every
// field, and applies the required-field filters one at a time: rows
// without a case ID go first, then rows without an arbitrator. The
// arbitrator filter rarely fires because missing names are backfilled
// with the Unknown sentinel before it runs, but it stays as a guard
// against whitespace-only cells.
func (n *Normalizer) Normalize(table *Table, forum storage.Forum) ([]storage.CaseRecord, NormalizeStats) {
	mapping := n.resolver.Resolve(table.Columns, forum)

	stats := NormalizeStats{
		InputRows: len(table.Rows),
		Mapping:   mapping,
	}
	for _, f := range Fields {
		if _, ok := mapping[f]; !ok {
			stats.UnmappedFields = append(stats.UnmappedFields, f)
		}
	}

	idx := make(map[Field]int, len(mapping))
	for field, col := range mapping {
		idx[field] = table.ColumnIndex(col)
	}
	cell := func(row int, field Field) string {
		i, ok := idx[field]
		if !ok {
			return ""
		}
		return table.Cell(row, i)
	}

	records := make([]storage.CaseRecord, 0, len(table.Rows))
	for i := range table.Rows {
		rec := storage.CaseRecord{
			CaseID:             CleanString(cell(i, FieldCaseID)),
			ArbitratorName:     CleanString(cell(i, FieldArbitratorName)),
			RespondentName:     CleanString(cell(i, FieldRespondentName)),
			ConsumerAttorney:   CleanString(cell(i, FieldConsumerAttorney)),
			RespondentAttorney: CleanString(cell(i, FieldRespondentAttorney)),
			DispositionType:    StandardizeDisposition(cell(i, FieldDispositionType)),
			DateFiled:          ParseDate(cell(i, FieldDateFiled)),
			DateClosed:         ParseDate(cell(i, FieldDateClosed)),
			ClaimAmount:        ExtractAmount(cell(i, FieldClaimAmount)),
			AwardAmount:        ExtractAmount(cell(i, FieldAwardAmount)),
			Forum:              forum,
		}
		if rec.ArbitratorName == "" {
			rec.ArbitratorName = storage.UnknownValue
		}
		records = append(records, rec)
	}

	// Filter 1: a record without a case ID cannot be keyed or deduplicated.
	kept := records[:0]
	for i := range records {
		if records[i].CaseID != "" {
			kept = append(kept, records[i])
		}
	}
	stats.AfterCaseIDFilter = len(kept)

	// Filter 2: arbitrator name, the pivot of every query.
	kept2 := kept[:0]
	for i := range kept {
		if kept[i].ArbitratorName != "" {
			kept2 = append(kept2, kept[i])
		}
	}
	stats.AfterArbitratorFilter = len(kept2)

	n.logger.Debug().
		Str("forum", string(forum)).
		Int("input_rows", stats.InputRows).
		Int("after_case_id", stats.AfterCaseIDFilter).
		Int("after_arbitrator", stats.AfterArbitratorFilter).
		Int("unmapped_fields", len(stats.UnmappedFields)).
		Msg("normalized table")

	return kept2, stats
}
