// Package storage provides database models and the case repository.
package storage

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")
)

// Forum identifies the arbitration administering body a record came from.
type Forum string

const (
	ForumAAA  Forum = "AAA"
	ForumJAMS Forum = "JAMS"
)

// Standardized disposition vocabulary. Unrecognized dispositions keep the
// original text with only the first character capitalized.
const (
	DispositionSettled           = "Settled"
	DispositionDismissed         = "Dismissed"
	DispositionDismissedOnMerits = "Dismissed on the Merits"
	DispositionWithdrawn         = "Withdrawn"
	DispositionAwarded           = "Awarded"
	DispositionAdministrative    = "Administrative"
)

// UnknownValue is the sentinel for required string fields with no source data.
const UnknownValue = "Unknown"

// CaseRecord is one arbitration case after normalization into the canonical
// schema. String fields fall back to "Unknown"; optional typed fields are nil
// when the source value was absent or unparseable.
type CaseRecord struct {
	CaseID             string     `json:"case_id"`
	ArbitratorName     string     `json:"arbitrator_name"`
	RespondentName     string     `json:"respondent_name"`
	ConsumerAttorney   string     `json:"consumer_attorney"`
	RespondentAttorney string     `json:"respondent_attorney"`
	DispositionType    string     `json:"disposition_type"`
	DateFiled          *time.Time `json:"date_filed,omitempty"`
	DateClosed         *time.Time `json:"date_closed,omitempty"`
	ClaimAmount        *float64   `json:"claim_amount,omitempty"`
	AwardAmount        *float64   `json:"award_amount,omitempty"`
	Forum              Forum      `json:"forum"`

	// Derived by the enricher. ConsumerPrevailed and BusinessPrevailed are
	// mutually exclusive by construction; both false for settlements.
	ConsumerPrevailed bool `json:"consumer_prevailed"`
	BusinessPrevailed bool `json:"business_prevailed"`
	CaseDurationDays  *int `json:"case_duration_days,omitempty"`
}

// Completeness counts the populated fields of a record. "Unknown" sentinels
// count as populated: they carry through from a source that had the column.
// Used by the deduplicator to pick a survivor within a duplicate group.
func (r *CaseRecord) Completeness() int {
	n := 0
	for _, s := range []string{
		r.CaseID, r.ArbitratorName, r.RespondentName,
		r.ConsumerAttorney, r.RespondentAttorney, r.DispositionType,
	} {
		if s != "" {
			n++
		}
	}
	if r.DateFiled != nil {
		n++
	}
	if r.DateClosed != nil {
		n++
	}
	if r.ClaimAmount != nil {
		n++
	}
	if r.AwardAmount != nil {
		n++
	}
	if r.Forum != "" {
		n++
	}
	return n
}

// HasCaseID reports whether the record carries a usable dedup key.
func (r *CaseRecord) HasCaseID() bool {
	return r.CaseID != "" && r.CaseID != UnknownValue
}
