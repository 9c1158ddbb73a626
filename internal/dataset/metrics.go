package dataset

import (
	"sort"
	"strings"

	"github.com/caselens/case-engine/internal/storage"
)

// Metrics are the headline aggregates for a dataset.
type Metrics struct {
	TotalCases        int                `json:"total_cases"`
	UniqueArbitrators int                `json:"unique_arbitrators"`
	UniqueRespondents int                `json:"unique_respondents"`
	AverageClaim      *float64           `json:"average_claim,omitempty"`
	AverageAward      *float64           `json:"average_award,omitempty"`
	SettlementRate    float64            `json:"settlement_rate"`
	ConsumerWinRate   float64            `json:"consumer_win_rate"`
	Dispositions      map[string]int     `json:"dispositions"`
	CasesByForum      map[string]int     `json:"cases_by_forum"`
}

// NameCount pairs an entity name with how many cases it appears in.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ComputeMetrics aggregates the whole dataset. Averages are computed
// over records that carry the amount; nil when no record does.
func (d *Dataset) ComputeMetrics() *Metrics {
	m := &Metrics{
		TotalCases:        d.Len(),
		UniqueArbitrators: len(d.ArbitratorNames()),
		UniqueRespondents: len(d.RespondentNames()),
		Dispositions:      make(map[string]int),
		CasesByForum:      make(map[string]int),
	}

	var claimSum, awardSum float64
	var claimN, awardN, settled, consumerWins int

	for i := range d.Records {
		r := &d.Records[i]
		if r.ClaimAmount != nil {
			claimSum += *r.ClaimAmount
			claimN++
		}
		if r.AwardAmount != nil {
			awardSum += *r.AwardAmount
			awardN++
		}
		if r.DispositionType == storage.DispositionSettled {
			settled++
		}
		if r.ConsumerPrevailed {
			consumerWins++
		}
		if r.DispositionType != "" {
			m.Dispositions[r.DispositionType]++
		}
		if r.Forum != "" {
			m.CasesByForum[string(r.Forum)]++
		}
	}

	if claimN > 0 {
		avg := claimSum / float64(claimN)
		m.AverageClaim = &avg
	}
	if awardN > 0 {
		avg := awardSum / float64(awardN)
		m.AverageAward = &avg
	}
	if m.TotalCases > 0 {
		m.SettlementRate = float64(settled) / float64(m.TotalCases)
		m.ConsumerWinRate = float64(consumerWins) / float64(m.TotalCases)
	}

	return m
}

// TopArbitrators returns the n arbitrators with the most cases.
func (d *Dataset) TopArbitrators(n int) []NameCount {
	return d.topBy(n, func(r *storage.CaseRecord) string { return r.ArbitratorName })
}

// TopRespondents returns the n respondents with the most cases.
func (d *Dataset) TopRespondents(n int) []NameCount {
	return d.topBy(n, func(r *storage.CaseRecord) string { return r.RespondentName })
}

func (d *Dataset) topBy(n int, get func(*storage.CaseRecord) string) []NameCount {
	counts := make(map[string]int)
	for i := range d.Records {
		if name := get(&d.Records[i]); name != "" && name != storage.UnknownValue {
			counts[name]++
		}
	}

	out := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ArbitratorStats are per-arbitrator aggregates used by the query engine.
type ArbitratorStats struct {
	Name            string   `json:"name"`
	TotalCases      int      `json:"total_cases"`
	ConsumerWins    int      `json:"consumer_wins"`
	BusinessWins    int      `json:"business_wins"`
	Settlements     int      `json:"settlements"`
	AverageAward    *float64 `json:"average_award,omitempty"`
	AverageDuration *float64 `json:"average_duration_days,omitempty"`
}

// StatsForArbitrator aggregates the cases handled by one arbitrator,
// matched by exact name.
func (d *Dataset) StatsForArbitrator(name string) *ArbitratorStats {
	stats := &ArbitratorStats{Name: name}
	var awardSum float64
	var awardN int
	var durSum float64
	var durN int

	for i := range d.Records {
		r := &d.Records[i]
		if r.ArbitratorName != name {
			continue
		}
		stats.TotalCases++
		if r.ConsumerPrevailed {
			stats.ConsumerWins++
		}
		if r.BusinessPrevailed {
			stats.BusinessWins++
		}
		if r.DispositionType == storage.DispositionSettled {
			stats.Settlements++
		}
		if r.AwardAmount != nil {
			awardSum += *r.AwardAmount
			awardN++
		}
		if r.CaseDurationDays != nil {
			durSum += float64(*r.CaseDurationDays)
			durN++
		}
	}

	if awardN > 0 {
		avg := awardSum / float64(awardN)
		stats.AverageAward = &avg
	}
	if durN > 0 {
		avg := durSum / float64(durN)
		stats.AverageDuration = &avg
	}
	return stats
}
