package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/caselens/case-engine/internal/config"
	"github.com/caselens/case-engine/internal/dataset"
	"github.com/caselens/case-engine/internal/observability"
	"github.com/caselens/case-engine/internal/storage"
)

// Store is the persistence boundary the pipeline writes through.
type Store interface {
	Save(ctx context.Context, records []storage.CaseRecord) *storage.SaveResult
}

// ProgressFunc receives pipeline progress as a fraction in [0, 1] and a
// human-readable stage message. Called from the pipeline goroutine.
type ProgressFunc func(fraction float64, message string)

// ProcessOptions control a single pipeline run.
type ProcessOptions struct {
	// SaveToStore persists the final dataset when a store is configured.
	SaveToStore bool
	// Progress, if set, receives stage updates.
	Progress ProgressFunc
}

// FileReport describes what happened to one input file.
type FileReport struct {
	Path      string
	Forum     storage.Forum
	Rows      int
	Kept      int
	Chunked   bool
	BadChunks int
	Err       error

	records []storage.CaseRecord
}

// Result is the outcome of a pipeline run.
type Result struct {
	RunID   string
	Dataset *dataset.Dataset
	Files   []FileReport
	Dedupe  DedupeStats
	Enrich  EnrichStats
	Persist *storage.SaveResult
	Elapsed time.Duration
}

// Pipeline drives the full intake path over a set of export files.
// Files are independent: one failing file is reported and skipped, and
// the run fails only when every file fails.
type Pipeline struct {
	cfg        config.IngestionConfig
	normalizer *Normalizer
	store      Store
	logger     *observability.Logger
}

// NewPipeline creates a Pipeline. store may be nil for in-memory runs.
func NewPipeline(cfg config.IngestionConfig, store Store, logger *observability.Logger) *Pipeline {
	log := logger.WithComponent("pipeline")
	return &Pipeline{
		cfg:        cfg,
		normalizer: NewNormalizer(NewResolver(), log),
		store:      store,
		logger:     log,
	}
}

// Process ingests the given export files into one combined dataset:
// per-file read and normalize, then cross-file deduplication, final
// cleaning, enrichment, and optional persistence.
func (p *Pipeline) Process(ctx context.Context, paths []string, opts ProcessOptions) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString()}
	progress := opts.Progress
	if progress == nil {
		progress = func(float64, string) {}
	}

	p.logger.Info().
		Str("run_id", result.RunID).
		Int("files", len(paths)).
		Msg("starting ingestion run")

	var combined []storage.CaseRecord
	failed := 0

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		base := 0.8 * float64(i) / float64(len(paths))
		span := 0.8 / float64(len(paths))
		progress(base, fmt.Sprintf("Reading %s", path))

		report := p.processFile(ctx, path, func(frac float64, message string) {
			progress(base+span*frac, message)
		})
		result.Files = append(result.Files, report)

		if report.Err != nil {
			failed++
			p.logger.Error().
				Str("run_id", result.RunID).
				Str("path", path).
				Err(report.Err).
				Msg("file failed, continuing with remaining files")
			continue
		}
		combined = append(combined, report.records...)
	}

	if failed == len(paths) {
		return nil, fmt.Errorf("all %d input files failed", len(paths))
	}

	progress(0.85, "Combining sources")

	progress(0.88, "Removing duplicate cases")
	deduped, dedupeStats := Deduplicate(combined)
	result.Dedupe = dedupeStats

	progress(0.90, "Final cleaning")
	cleaned := finalClean(deduped)

	progress(0.92, "Deriving case outcomes")
	result.Enrich = Enrich(cleaned, p.logger)

	result.Dataset = dataset.New(cleaned)

	if opts.SaveToStore && p.store != nil {
		progress(0.95, "Saving to case store")
		result.Persist = p.persist(ctx, cleaned, progress)
	} else {
		result.Persist = &storage.SaveResult{Status: "not_saved", Total: len(cleaned)}
	}

	result.Elapsed = time.Since(start)
	progress(1.0, "Done")

	p.logger.Info().
		Str("run_id", result.RunID).
		Int("records", result.Dataset.Len()).
		Str("persist_status", result.Persist.Status).
		Dur("elapsed", result.Elapsed).
		Msg("ingestion run complete")

	return result, nil
}

// processFile reads one export. progress receives fractions scoped to
// this file, in [0, 1].
func (p *Pipeline) processFile(ctx context.Context, path string, progress ProgressFunc) FileReport {
	report := FileReport{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		report.Err = fmt.Errorf("stat export: %w", err)
		return report
	}

	preview, err := ReadPreview(path, 50)
	if err != nil {
		report.Err = err
		return report
	}
	report.Forum = DetectForum(path, preview)

	if info.Size() > p.cfg.LargeFileBytes {
		report.Chunked = true
		p.readChunked(ctx, path, preview, &report, progress)
	} else {
		table, err := ReadTable(path)
		if err != nil {
			report.Err = err
			return report
		}
		report.Rows = len(table.Rows)
		records, _ := p.normalizer.Normalize(table, report.Forum)
		report.records = records
	}

	report.Kept = len(report.records)
	return report
}

// chunkSource yields row chunks until io.EOF. *ChunkReader is the file
// implementation.
type chunkSource interface {
	Next() (*Table, error)
}

func (p *Pipeline) readChunked(ctx context.Context, path string, preview *Table, report *FileReport, progress ProgressFunc) {
	reader, err := NewChunkReader(path, p.cfg.ChunkRows)
	if err != nil {
		report.Err = err
		return
	}
	defer reader.Close()

	p.consumeChunks(ctx, reader, EstimateRows(path, preview), report, progress)
}

// consumeChunks drains a chunk source, reporting fractional progress
// per chunk against the estimated row count. A bad chunk is dropped and
// counted; the file is abandoned once failed chunks cover more than the
// configured fraction of its estimated rows.
func (p *Pipeline) consumeChunks(ctx context.Context, source chunkSource, expected int64, report *FileReport, progress ProgressFunc) {
	var failedRows int64

	for {
		if err := ctx.Err(); err != nil {
			report.Err = err
			return
		}

		chunk, err := source.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			report.BadChunks++
			failedRows += int64(p.cfg.ChunkRows)
			p.logger.Warn().
				Str("path", report.Path).
				Int("bad_chunks", report.BadChunks).
				Err(err).
				Msg("dropped unreadable chunk")

			if expected > 0 && float64(failedRows) > p.cfg.ChunkAbortFraction*float64(expected) {
				report.Err = fmt.Errorf("aborting %s: %d unreadable chunks cover most of the file", report.Path, report.BadChunks)
				return
			}
			continue
		}

		offset := report.Rows
		report.Rows += len(chunk.Rows)
		if expected > 0 {
			frac := float64(report.Rows) / float64(expected)
			if frac > 1 {
				frac = 1
			}
			progress(frac, fmt.Sprintf("Reading chunk at row %d", offset))
		}

		records, _ := p.normalizer.Normalize(chunk, report.Forum)
		report.records = append(report.records, records...)
	}
}

// persist writes records through the store, batching large datasets so
// a failure partway through loses at most one batch.
func (p *Pipeline) persist(ctx context.Context, records []storage.CaseRecord, progress ProgressFunc) *storage.SaveResult {
	if len(records) <= p.cfg.PersistBatchThreshold {
		return p.store.Save(ctx, records)
	}

	total := &storage.SaveResult{Status: "success", Total: len(records)}
	for start := 0; start < len(records); start += p.cfg.PersistBatchRows {
		end := start + p.cfg.PersistBatchRows
		if end > len(records) {
			end = len(records)
		}

		frac := 0.95 + 0.04*float64(end)/float64(len(records))
		progress(frac, fmt.Sprintf("Saving records %d-%d", start+1, end))

		res := p.store.Save(ctx, records[start:end])
		if res.Status != "success" {
			res.Inserted += total.Inserted
			res.Updated += total.Updated
			res.Total = len(records)
			return res
		}
		total.Inserted += res.Inserted
		total.Updated += res.Updated
	}
	return total
}

// finalClean backfills the Unknown sentinel into empty string fields
// and drops records left with neither a case ID nor an arbitrator,
// since nothing can ever address them.
func finalClean(records []storage.CaseRecord) []storage.CaseRecord {
	out := records[:0]
	for i := range records {
		rec := records[i]
		fillUnknown(&rec.CaseID)
		fillUnknown(&rec.ArbitratorName)
		fillUnknown(&rec.RespondentName)
		fillUnknown(&rec.ConsumerAttorney)
		fillUnknown(&rec.RespondentAttorney)
		fillUnknown(&rec.DispositionType)
		if rec.ArbitratorName == storage.UnknownValue && rec.CaseID == storage.UnknownValue {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func fillUnknown(s *string) {
	if *s == "" {
		*s = storage.UnknownValue
	}
}
