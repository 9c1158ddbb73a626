package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselens/case-engine/internal/config"
	"github.com/caselens/case-engine/internal/observability"
	"github.com/caselens/case-engine/internal/storage"
)

type fakeStore struct {
	calls   [][]storage.CaseRecord
	failAll bool
}

func (s *fakeStore) Save(ctx context.Context, records []storage.CaseRecord) *storage.SaveResult {
	if s.failAll {
		return &storage.SaveResult{Status: "error", Message: "store unavailable"}
	}
	s.calls = append(s.calls, append([]storage.CaseRecord(nil), records...))
	return &storage.SaveResult{Status: "success", Inserted: len(records), Total: len(records)}
}

func writeExport(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testIngestionConfig() config.IngestionConfig {
	return config.DefaultConfig().Ingestion
}

func TestPipeline_Process(t *testing.T) {
	dir := t.TempDir()
	aaa := writeExport(t, dir, "aaa_cases.csv",
		"Case ID,Arbitrator Name,Respondent,Disposition,Date Filed,Date Closed,Award Amount\n"+
			"AAA-1001,John Smith,Acme Corp,Awarded,2020-01-01,2020-03-01,\"$5,000\"\n"+
			"AAA-1002,Jane Doe,Beta LLC,Settled,2020-02-01,2020-04-01,\n")
	jams := writeExport(t, dir, "jams_cases.csv",
		"Reference No.,Neutral,Respondent,Result\n"+
			"JAMS-2001,Maria Gonzalez,Gamma Inc,Dismissed\n")

	store := &fakeStore{}
	p := NewPipeline(testIngestionConfig(), store, observability.Nop())

	result, err := p.Process(context.Background(), []string{aaa, jams}, ProcessOptions{SaveToStore: true})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Dataset.Len())
	assert.Equal(t, "success", result.Persist.Status)
	require.Len(t, store.calls, 1)
	assert.Len(t, store.calls[0], 3)

	require.Len(t, result.Files, 2)
	assert.Equal(t, storage.ForumAAA, result.Files[0].Forum)
	assert.Equal(t, storage.ForumJAMS, result.Files[1].Forum)

	// Outcomes are derived before persistence.
	byID := make(map[string]storage.CaseRecord)
	for _, rec := range result.Dataset.Records {
		byID[rec.CaseID] = rec
	}
	assert.True(t, byID["AAA-1001"].ConsumerPrevailed)
	require.NotNil(t, byID["AAA-1001"].CaseDurationDays)
	assert.Equal(t, 60, *byID["AAA-1001"].CaseDurationDays)
	assert.True(t, byID["JAMS-2001"].BusinessPrevailed)
	assert.NotEmpty(t, result.RunID)
}

func TestPipeline_CrossFileDedupe(t *testing.T) {
	dir := t.TempDir()
	a := writeExport(t, dir, "aaa_one.csv",
		"Case ID,Arbitrator Name,Respondent,Date Filed\n"+
			"AAA-1001,John Smith,Acme Corp,2020-01-15\n")
	b := writeExport(t, dir, "aaa_two.csv",
		"Case ID,Arbitrator Name,Respondent,Date Filed\n"+
			"AAA-1001,John Smith,Acme Corp,2020-01-15\n")

	p := NewPipeline(testIngestionConfig(), nil, observability.Nop())

	result, err := p.Process(context.Background(), []string{a, b}, ProcessOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Dataset.Len())
	assert.Equal(t, 2, result.Dedupe.Input)
}

func TestPipeline_BadFileSkipped(t *testing.T) {
	dir := t.TempDir()
	good := writeExport(t, dir, "aaa_cases.csv",
		"Case ID,Arbitrator Name\nAAA-1001,John Smith\n")
	missing := filepath.Join(dir, "does_not_exist.csv")

	p := NewPipeline(testIngestionConfig(), nil, observability.Nop())

	result, err := p.Process(context.Background(), []string{good, missing}, ProcessOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Dataset.Len())
	require.Len(t, result.Files, 2)
	assert.NoError(t, result.Files[0].Err)
	assert.Error(t, result.Files[1].Err)
}

func TestPipeline_AllFilesFailed(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "does_not_exist.csv")

	p := NewPipeline(testIngestionConfig(), nil, observability.Nop())

	_, err := p.Process(context.Background(), []string{missing}, ProcessOptions{})
	assert.Error(t, err)
}

func TestPipeline_ProgressMonotonic(t *testing.T) {
	dir := t.TempDir()
	path := writeExport(t, dir, "aaa_cases.csv",
		"Case ID,Arbitrator Name\nAAA-1001,John Smith\n")

	p := NewPipeline(testIngestionConfig(), nil, observability.Nop())

	var fractions []float64
	_, err := p.Process(context.Background(), []string{path}, ProcessOptions{
		Progress: func(fraction float64, message string) {
			fractions = append(fractions, fraction)
			assert.NotEmpty(t, message)
		},
	})
	require.NoError(t, err)

	require.NotEmpty(t, fractions)
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
}

type chunkResult struct {
	table *Table
	err   error
}

type fakeChunkSource struct {
	results []chunkResult
}

func (s *fakeChunkSource) Next() (*Table, error) {
	if len(s.results) == 0 {
		return nil, io.EOF
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r.table, r.err
}

func TestPipeline_ChunkedLargeFile(t *testing.T) {
	dir := t.TempDir()
	content := "Case ID,Arbitrator Name\n"
	for i := 0; i < 20; i++ {
		content += fmt.Sprintf("AAA-%04d,John Smith\n", i)
	}
	path := writeExport(t, dir, "aaa_cases.csv", content)

	cfg := testIngestionConfig()
	cfg.LargeFileBytes = 64
	cfg.ChunkRows = 5

	p := NewPipeline(cfg, nil, observability.Nop())

	var fractions []float64
	var chunkMessages []string
	result, err := p.Process(context.Background(), []string{path}, ProcessOptions{
		Progress: func(fraction float64, message string) {
			fractions = append(fractions, fraction)
			if strings.HasPrefix(message, "Reading chunk at row") {
				chunkMessages = append(chunkMessages, message)
			}
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].Chunked)
	assert.Equal(t, 20, result.Files[0].Rows)
	assert.Zero(t, result.Files[0].BadChunks)
	assert.Equal(t, 20, result.Dataset.Len())

	// 20 rows in chunks of 5: each chunk reports its offset.
	require.Len(t, chunkMessages, 4)
	assert.Equal(t, "Reading chunk at row 0", chunkMessages[0])
	assert.Equal(t, "Reading chunk at row 15", chunkMessages[3])

	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}
}

func TestPipeline_BadChunkSkippedAndCounted(t *testing.T) {
	cfg := testIngestionConfig()
	cfg.ChunkRows = 5

	p := NewPipeline(cfg, nil, observability.Nop())

	source := &fakeChunkSource{results: []chunkResult{
		{err: errors.New("torn row")},
		{table: &Table{
			Columns: []string{"Case ID", "Arbitrator Name"},
			Rows:    [][]string{{"AAA-1001", "John Smith"}},
		}},
	}}

	report := FileReport{Path: "big.csv", Forum: storage.ForumAAA}
	p.consumeChunks(context.Background(), source, 100, &report, func(float64, string) {})

	assert.NoError(t, report.Err)
	assert.Equal(t, 1, report.BadChunks)
	assert.Equal(t, 1, report.Rows)
	assert.Len(t, report.records, 1)
}

func TestPipeline_ChunkFailuresAbortFile(t *testing.T) {
	cfg := testIngestionConfig()
	cfg.ChunkRows = 5
	cfg.ChunkAbortFraction = 0.8

	p := NewPipeline(cfg, nil, observability.Nop())

	source := &fakeChunkSource{results: []chunkResult{
		{err: errors.New("torn row")},
		{err: errors.New("torn row")},
	}}

	// Two failed 5-row chunks against an estimate of 10 rows crosses
	// the 0.8 abort fraction.
	report := FileReport{Path: "big.csv", Forum: storage.ForumAAA}
	p.consumeChunks(context.Background(), source, 10, &report, func(float64, string) {})

	require.Error(t, report.Err)
	assert.Contains(t, report.Err.Error(), "aborting")
	assert.Equal(t, 2, report.BadChunks)
}

func TestFinalClean(t *testing.T) {
	cleaned := finalClean([]storage.CaseRecord{
		{CaseID: "AAA-1001", ArbitratorName: "John Smith"},
		{CaseID: "AAA-1002", ArbitratorName: "Jane Doe", RespondentName: ""},
		{CaseID: storage.UnknownValue, ArbitratorName: storage.UnknownValue},
	})

	require.Len(t, cleaned, 2)
	assert.Equal(t, "AAA-1002", cleaned[1].CaseID)
	assert.Equal(t, storage.UnknownValue, cleaned[1].RespondentName)
}

func TestPipeline_BatchedPersistence(t *testing.T) {
	dir := t.TempDir()

	content := "Case ID,Arbitrator Name\n"
	for i := 0; i < 10; i++ {
		content += "AAA-" + string(rune('A'+i)) + ",John Smith\n"
	}
	path := writeExport(t, dir, "aaa_cases.csv", content)

	cfg := testIngestionConfig()
	cfg.PersistBatchThreshold = 4
	cfg.PersistBatchRows = 3

	store := &fakeStore{}
	p := NewPipeline(cfg, store, observability.Nop())

	result, err := p.Process(context.Background(), []string{path}, ProcessOptions{SaveToStore: true})
	require.NoError(t, err)

	assert.Equal(t, "success", result.Persist.Status)
	assert.Equal(t, 10, result.Persist.Inserted)
	// 10 records in batches of 3: 3+3+3+1.
	assert.Len(t, store.calls, 4)
}

func TestPipeline_PersistFailureReportedNotRaised(t *testing.T) {
	dir := t.TempDir()
	path := writeExport(t, dir, "aaa_cases.csv",
		"Case ID,Arbitrator Name\nAAA-1001,John Smith\n")

	store := &fakeStore{failAll: true}
	p := NewPipeline(testIngestionConfig(), store, observability.Nop())

	result, err := p.Process(context.Background(), []string{path}, ProcessOptions{SaveToStore: true})
	require.NoError(t, err)

	assert.Equal(t, "error", result.Persist.Status)
	assert.Equal(t, 1, result.Dataset.Len())
}

func TestPipeline_NoStoreMarksNotSaved(t *testing.T) {
	dir := t.TempDir()
	path := writeExport(t, dir, "aaa_cases.csv",
		"Case ID,Arbitrator Name\nAAA-1001,John Smith\n")

	p := NewPipeline(testIngestionConfig(), nil, observability.Nop())

	result, err := p.Process(context.Background(), []string{path}, ProcessOptions{SaveToStore: true})
	require.NoError(t, err)

	assert.Equal(t, "not_saved", result.Persist.Status)
}
