package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SaveResult is the structured outcome of a Save call. Status is "success" or
// "error"; persistence failures are reported here, not raised, so ingestion can
// succeed independently of storage.
type SaveResult struct {
	Status   string `json:"status"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Total    int    `json:"total"`
	Message  string `json:"message,omitempty"`
}

// StoreStats summarizes the persisted dataset.
type StoreStats struct {
	TotalCases        int `json:"total_cases"`
	UniqueArbitrators int `json:"unique_arbitrators"`
	UniqueRespondents int `json:"unique_respondents"`
}

// LoadFilters restricts Load to matching records. Zero values mean no filter.
type LoadFilters struct {
	CaseID      string
	Arbitrator  string
	Respondent  string
	Forum       Forum
	Disposition string
	FiledFrom   *time.Time
	FiledTo     *time.Time
}

// CaseRepository persists canonical case records keyed by case_id.
type CaseRepository struct {
	db     DB
	driver string // sqlite or postgres, for the existence probe
}

// NewCaseRepository creates a new case repository.
func NewCaseRepository(db DB, driver string) *CaseRepository {
	return &CaseRepository{db: db, driver: driver}
}

// EnsureSchema creates the arbitration_cases table if it does not exist.
// The DDL sticks to types both SQLite and Postgres accept.
func (r *CaseRepository) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS arbitration_cases (
			case_id             TEXT PRIMARY KEY,
			arbitrator_name     TEXT NOT NULL,
			respondent_name     TEXT,
			consumer_attorney   TEXT,
			respondent_attorney TEXT,
			disposition_type    TEXT,
			date_filed          TIMESTAMP,
			date_closed         TIMESTAMP,
			claim_amount        DOUBLE PRECISION,
			award_amount        DOUBLE PRECISION,
			forum               TEXT,
			consumer_prevailed  BOOLEAN NOT NULL DEFAULT FALSE,
			business_prevailed  BOOLEAN NOT NULL DEFAULT FALSE,
			case_duration_days  INTEGER,
			updated_at          TIMESTAMP NOT NULL
		)
	`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create arbitration_cases table: %w", err)
	}
	return nil
}

// Exists reports whether the arbitration_cases table is present.
func (r *CaseRepository) Exists(ctx context.Context) (bool, error) {
	var probe string
	if r.driver == "postgres" {
		probe = `SELECT table_name FROM information_schema.tables WHERE table_name = 'arbitration_cases'`
	} else {
		probe = `SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'arbitration_cases'`
	}

	var name string
	err := r.db.QueryRowContext(ctx, probe).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("probe arbitration_cases table: %w", err)
	}
	return true, nil
}

// Save upserts records keyed by case_id and reports inserted/updated counts.
// Failures are reported in the result status, never returned as an error.
func (r *CaseRepository) Save(ctx context.Context, records []CaseRecord) *SaveResult {
	result := &SaveResult{Status: "success", Total: len(records)}

	if err := r.EnsureSchema(ctx); err != nil {
		return &SaveResult{Status: "error", Message: err.Error()}
	}

	for i := range records {
		rec := &records[i]

		var exists int
		err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM arbitration_cases WHERE case_id = $1`, rec.CaseID,
		).Scan(&exists)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			if err := r.insert(ctx, rec); err != nil {
				return &SaveResult{Status: "error", Message: fmt.Sprintf("insert case %s: %v", rec.CaseID, err)}
			}
			result.Inserted++
		case err != nil:
			return &SaveResult{Status: "error", Message: fmt.Sprintf("lookup case %s: %v", rec.CaseID, err)}
		default:
			if err := r.update(ctx, rec); err != nil {
				return &SaveResult{Status: "error", Message: fmt.Sprintf("update case %s: %v", rec.CaseID, err)}
			}
			result.Updated++
		}
	}

	return result
}

func (r *CaseRepository) insert(ctx context.Context, rec *CaseRecord) error {
	query := `
		INSERT INTO arbitration_cases (case_id, arbitrator_name, respondent_name,
			consumer_attorney, respondent_attorney, disposition_type,
			date_filed, date_closed, claim_amount, award_amount, forum,
			consumer_prevailed, business_prevailed, case_duration_days, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.CaseID, rec.ArbitratorName, rec.RespondentName,
		rec.ConsumerAttorney, rec.RespondentAttorney, rec.DispositionType,
		nullTime(rec.DateFiled), nullTime(rec.DateClosed),
		nullFloat(rec.ClaimAmount), nullFloat(rec.AwardAmount), string(rec.Forum),
		rec.ConsumerPrevailed, rec.BusinessPrevailed, nullInt(rec.CaseDurationDays),
		time.Now().UTC(),
	)
	return err
}

func (r *CaseRepository) update(ctx context.Context, rec *CaseRecord) error {
	query := `
		UPDATE arbitration_cases SET
			arbitrator_name = $1, respondent_name = $2,
			consumer_attorney = $3, respondent_attorney = $4, disposition_type = $5,
			date_filed = $6, date_closed = $7, claim_amount = $8, award_amount = $9,
			forum = $10, consumer_prevailed = $11, business_prevailed = $12,
			case_duration_days = $13, updated_at = $14
		WHERE case_id = $15
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ArbitratorName, rec.RespondentName,
		rec.ConsumerAttorney, rec.RespondentAttorney, rec.DispositionType,
		nullTime(rec.DateFiled), nullTime(rec.DateClosed),
		nullFloat(rec.ClaimAmount), nullFloat(rec.AwardAmount), string(rec.Forum),
		rec.ConsumerPrevailed, rec.BusinessPrevailed, nullInt(rec.CaseDurationDays),
		time.Now().UTC(), rec.CaseID,
	)
	return err
}

// Load retrieves records matching the given filters.
func (r *CaseRepository) Load(ctx context.Context, filters LoadFilters) ([]CaseRecord, error) {
	query := `
		SELECT case_id, arbitrator_name, respondent_name,
			consumer_attorney, respondent_attorney, disposition_type,
			date_filed, date_closed, claim_amount, award_amount, forum,
			consumer_prevailed, business_prevailed, case_duration_days
		FROM arbitration_cases
	`

	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filters.CaseID != "" {
		add("case_id = $%d", filters.CaseID)
	}
	if filters.Arbitrator != "" {
		add("arbitrator_name = $%d", filters.Arbitrator)
	}
	if filters.Respondent != "" {
		add("respondent_name = $%d", filters.Respondent)
	}
	if filters.Forum != "" {
		add("forum = $%d", string(filters.Forum))
	}
	if filters.Disposition != "" {
		add("disposition_type = $%d", filters.Disposition)
	}
	if filters.FiledFrom != nil {
		add("date_filed >= $%d", *filters.FiledFrom)
	}
	if filters.FiledTo != nil {
		add("date_filed <= $%d", *filters.FiledTo)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY case_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load cases: %w", err)
	}
	defer rows.Close()

	var records []CaseRecord
	for rows.Next() {
		var rec CaseRecord
		var dateFiled, dateClosed sql.NullTime
		var claim, award sql.NullFloat64
		var duration sql.NullInt64
		var forum string

		if err := rows.Scan(
			&rec.CaseID, &rec.ArbitratorName, &rec.RespondentName,
			&rec.ConsumerAttorney, &rec.RespondentAttorney, &rec.DispositionType,
			&dateFiled, &dateClosed, &claim, &award, &forum,
			&rec.ConsumerPrevailed, &rec.BusinessPrevailed, &duration,
		); err != nil {
			return nil, fmt.Errorf("scan case row: %w", err)
		}

		rec.Forum = Forum(forum)
		if dateFiled.Valid {
			t := dateFiled.Time
			rec.DateFiled = &t
		}
		if dateClosed.Valid {
			t := dateClosed.Time
			rec.DateClosed = &t
		}
		if claim.Valid {
			v := claim.Float64
			rec.ClaimAmount = &v
		}
		if award.Valid {
			v := award.Float64
			rec.AwardAmount = &v
		}
		if duration.Valid {
			d := int(duration.Int64)
			rec.CaseDurationDays = &d
		}

		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetByCaseID retrieves a single record.
func (r *CaseRepository) GetByCaseID(ctx context.Context, caseID string) (*CaseRecord, error) {
	records, err := r.Load(ctx, LoadFilters{CaseID: caseID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return &records[0], nil
}

// Stats returns aggregate counts over the persisted dataset.
func (r *CaseRepository) Stats(ctx context.Context) (*StoreStats, error) {
	stats := &StoreStats{}
	query := `
		SELECT COUNT(*),
			COUNT(DISTINCT arbitrator_name),
			COUNT(DISTINCT respondent_name)
		FROM arbitration_cases
	`
	if err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalCases, &stats.UniqueArbitrators, &stats.UniqueRespondents,
	); err != nil {
		return nil, fmt.Errorf("query store stats: %w", err)
	}
	return stats, nil
}

// Clear deletes all persisted cases and returns the number removed.
func (r *CaseRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM arbitration_cases`)
	if err != nil {
		return 0, fmt.Errorf("clear arbitration_cases: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count cleared rows: %w", err)
	}
	return n, nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func nullInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}
