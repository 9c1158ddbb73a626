// Package dataset holds an in-memory collection of case records and
// the analysis operations that run over it: filtering, metrics, and
// export.
package dataset

import (
	"sort"
	"strings"

	"github.com/caselens/case-engine/internal/storage"
)

// Dataset is an ordered, in-memory collection of case records.
type Dataset struct {
	Records []storage.CaseRecord
}

// New wraps records in a Dataset.
func New(records []storage.CaseRecord) *Dataset {
	return &Dataset{Records: records}
}

// Len returns the record count.
func (d *Dataset) Len() int { return len(d.Records) }

// ArbitratorNames returns the distinct arbitrator names, sorted.
func (d *Dataset) ArbitratorNames() []string {
	return d.distinct(func(r *storage.CaseRecord) string { return r.ArbitratorName })
}

// RespondentNames returns the distinct respondent names, sorted.
func (d *Dataset) RespondentNames() []string {
	return d.distinct(func(r *storage.CaseRecord) string { return r.RespondentName })
}

func (d *Dataset) distinct(get func(*storage.CaseRecord) string) []string {
	seen := make(map[string]struct{})
	var names []string
	for i := range d.Records {
		name := get(&d.Records[i])
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}
