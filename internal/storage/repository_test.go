package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *CaseRepository {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return NewCaseRepository(db, "sqlite")
}

func testRecord(id string) CaseRecord {
	filed := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)
	closed := time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)
	award := 5000.0
	duration := 152

	return CaseRecord{
		CaseID:            id,
		ArbitratorName:    "John Smith",
		RespondentName:    "Acme Corp",
		DispositionType:   DispositionAwarded,
		DateFiled:         &filed,
		DateClosed:        &closed,
		AwardAmount:       &award,
		Forum:             ForumAAA,
		ConsumerPrevailed: true,
		CaseDurationDays:  &duration,
	}
}

func TestRepository_ExistsBeforeAndAfterSchema(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	ok, err := repo.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.EnsureSchema(ctx))

	ok, err = repo.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepository_SaveInsertsAndUpdates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	result := repo.Save(ctx, []CaseRecord{testRecord("AAA-1001"), testRecord("AAA-1002")})
	require.Equal(t, "success", result.Status, result.Message)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 0, result.Updated)

	changed := testRecord("AAA-1001")
	changed.RespondentName = "Beta LLC"

	result = repo.Save(ctx, []CaseRecord{changed, testRecord("AAA-1003")})
	require.Equal(t, "success", result.Status, result.Message)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Updated)

	rec, err := repo.GetByCaseID(ctx, "AAA-1001")
	require.NoError(t, err)
	assert.Equal(t, "Beta LLC", rec.RespondentName)
}

func TestRepository_LoadRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	result := repo.Save(ctx, []CaseRecord{testRecord("AAA-1001")})
	require.Equal(t, "success", result.Status, result.Message)

	records, err := repo.Load(ctx, LoadFilters{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "John Smith", rec.ArbitratorName)
	assert.Equal(t, ForumAAA, rec.Forum)
	assert.True(t, rec.ConsumerPrevailed)
	require.NotNil(t, rec.AwardAmount)
	assert.InDelta(t, 5000, *rec.AwardAmount, 1e-9)
	require.NotNil(t, rec.DateFiled)
	assert.Equal(t, 2020, rec.DateFiled.Year())
	require.NotNil(t, rec.CaseDurationDays)
	assert.Equal(t, 152, *rec.CaseDurationDays)
}

func TestRepository_LoadNilOptionalFields(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	sparse := CaseRecord{CaseID: "AAA-2001", ArbitratorName: "Jane Doe", Forum: ForumJAMS}
	result := repo.Save(ctx, []CaseRecord{sparse})
	require.Equal(t, "success", result.Status, result.Message)

	records, err := repo.Load(ctx, LoadFilters{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Nil(t, records[0].DateFiled)
	assert.Nil(t, records[0].AwardAmount)
	assert.Nil(t, records[0].CaseDurationDays)
}

func TestRepository_LoadFilters(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := testRecord("AAA-1001")
	b := testRecord("JAMS-2001")
	b.ArbitratorName = "Maria Gonzalez"
	b.Forum = ForumJAMS
	b.DispositionType = DispositionSettled

	result := repo.Save(ctx, []CaseRecord{a, b})
	require.Equal(t, "success", result.Status, result.Message)

	records, err := repo.Load(ctx, LoadFilters{Arbitrator: "John Smith"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "AAA-1001", records[0].CaseID)

	records, err = repo.Load(ctx, LoadFilters{Forum: ForumJAMS})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "JAMS-2001", records[0].CaseID)

	records, err = repo.Load(ctx, LoadFilters{Disposition: DispositionSettled})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRepository_GetByCaseIDNotFound(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))

	_, err := repo.GetByCaseID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Stats(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := testRecord("AAA-1001")
	b := testRecord("AAA-1002")
	b.ArbitratorName = "Maria Gonzalez"

	result := repo.Save(ctx, []CaseRecord{a, b})
	require.Equal(t, "success", result.Status, result.Message)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCases)
	assert.Equal(t, 2, stats.UniqueArbitrators)
	assert.Equal(t, 1, stats.UniqueRespondents)
}

func TestRepository_Clear(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	result := repo.Save(ctx, []CaseRecord{testRecord("AAA-1001"), testRecord("AAA-1002")})
	require.Equal(t, "success", result.Status, result.Message)

	n, err := repo.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalCases)
}

// noRowsDriver executes every statement with driver.ResultNoRows, whose
// RowsAffected always errors.
type noRowsDriver struct{}

func (noRowsDriver) Open(string) (driver.Conn, error) { return noRowsConn{}, nil }

type noRowsConn struct{}

func (noRowsConn) Prepare(string) (driver.Stmt, error) { return noRowsStmt{}, nil }
func (noRowsConn) Close() error                        { return nil }
func (noRowsConn) Begin() (driver.Tx, error)           { return nil, driver.ErrSkip }

type noRowsStmt struct{}

func (noRowsStmt) Close() error  { return nil }
func (noRowsStmt) NumInput() int { return 0 }
func (noRowsStmt) Exec([]driver.Value) (driver.Result, error) {
	return driver.ResultNoRows, nil
}
func (noRowsStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, driver.ErrSkip
}

func TestRepository_ClearRowsAffectedError(t *testing.T) {
	sql.Register("norows", noRowsDriver{})
	db, err := sql.Open("norows", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewCaseRepository(db, "sqlite")

	_, err = repo.Clear(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count cleared rows")
}
