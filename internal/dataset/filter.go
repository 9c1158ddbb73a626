package dataset

import (
	"strings"
	"time"

	"github.com/caselens/case-engine/internal/storage"
)

// FilterOptions selects a subset of a dataset. String fields match
// case-insensitively as substrings; zero values mean no constraint.
type FilterOptions struct {
	Arbitrator  string
	Respondent  string
	Attorney    string // matches either side's counsel
	Forum       storage.Forum
	Disposition string
	FiledFrom   *time.Time
	FiledTo     *time.Time
}

// Filter returns a new dataset containing the records that satisfy
// every set constraint.
func (d *Dataset) Filter(opts FilterOptions) *Dataset {
	out := &Dataset{}
	for i := range d.Records {
		if matches(&d.Records[i], opts) {
			out.Records = append(out.Records, d.Records[i])
		}
	}
	return out
}

func matches(r *storage.CaseRecord, opts FilterOptions) bool {
	if opts.Arbitrator != "" && !containsFold(r.ArbitratorName, opts.Arbitrator) {
		return false
	}
	if opts.Respondent != "" && !containsFold(r.RespondentName, opts.Respondent) {
		return false
	}
	if opts.Attorney != "" &&
		!containsFold(r.ConsumerAttorney, opts.Attorney) &&
		!containsFold(r.RespondentAttorney, opts.Attorney) {
		return false
	}
	if opts.Forum != "" && r.Forum != opts.Forum {
		return false
	}
	if opts.Disposition != "" && !strings.EqualFold(r.DispositionType, opts.Disposition) {
		return false
	}
	if opts.FiledFrom != nil && (r.DateFiled == nil || r.DateFiled.Before(*opts.FiledFrom)) {
		return false
	}
	if opts.FiledTo != nil && (r.DateFiled == nil || r.DateFiled.After(*opts.FiledTo)) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
