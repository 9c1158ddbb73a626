// Package ingest turns raw forum exports into canonical case records.
// It covers the whole intake path: schema resolution, field cleaning,
// normalization, deduplication, enrichment, and the pipeline driver.
package ingest

import (
	"strings"

	"github.com/caselens/case-engine/internal/storage"
)

// Field identifies a canonical column of the case schema.
type Field string

const (
	FieldCaseID             Field = "case_id"
	FieldArbitratorName     Field = "arbitrator_name"
	FieldRespondentName     Field = "respondent_name"
	FieldConsumerAttorney   Field = "consumer_attorney"
	FieldRespondentAttorney Field = "respondent_attorney"
	FieldDispositionType    Field = "disposition_type"
	FieldDateFiled          Field = "date_filed"
	FieldDateClosed         Field = "date_closed"
	FieldClaimAmount        Field = "claim_amount"
	FieldAwardAmount        Field = "award_amount"
)

// Fields lists the canonical fields in schema order.
var Fields = []Field{
	FieldCaseID, FieldArbitratorName, FieldRespondentName,
	FieldConsumerAttorney, FieldRespondentAttorney, FieldDispositionType,
	FieldDateFiled, FieldDateClosed, FieldClaimAmount, FieldAwardAmount,
}

// canonicalHeader is the display form of each field, used by the last
// resolution tier when an export already carries canonical headers.
var canonicalHeader = map[Field]string{
	FieldCaseID:             "Case_ID",
	FieldArbitratorName:     "Arbitrator_Name",
	FieldRespondentName:     "Respondent_Name",
	FieldConsumerAttorney:   "Consumer_Attorney",
	FieldRespondentAttorney: "Respondent_Attorney",
	FieldDispositionType:    "Disposition_Type",
	FieldDateFiled:          "Date_Filed",
	FieldDateClosed:         "Date_Closed",
	FieldClaimAmount:        "Claim_Amount",
	FieldAwardAmount:        "Award_Amount",
}

// aaaAliases maps canonical fields to the header variants AAA exports use.
var aaaAliases = map[Field][]string{
	FieldCaseID:             {"Case ID", "Case Number", "Case No.", "Case_ID", "CASE_ID"},
	FieldArbitratorName:     {"Arbitrator Name", "Arbitrator", "Neutral Name", "ARBITRATOR_NAME"},
	FieldRespondentName:     {"Respondent Name", "Respondent", "Company", "Business Name", "NONCONSUMER", "RESPONDENT_NAME"},
	FieldConsumerAttorney:   {"Consumer Attorney", "Claimant Attorney", "Consumer Attorney Firm", "NAME_CONSUMER_ATTORNEY"},
	FieldRespondentAttorney: {"Respondent Attorney", "Company Attorney", "Business Attorney"},
	FieldDispositionType:    {"Disposition", "Disposition Type", "Case Disposition", "Outcome", "TYPE_DISP"},
	FieldDateFiled:          {"Date Filed", "Filing Date", "Filed Date", "FILING_DATE"},
	FieldDateClosed:         {"Date Closed", "Closing Date", "Closed Date", "CLOSEDATE"},
	FieldClaimAmount:        {"Claim Amount", "Amount of Claim", "Claim", "CLAIM_AMT_CONSUMER"},
	FieldAwardAmount:        {"Award Amount", "Amount of Award", "Award", "AWARD_AMT_CONSUMER"},
}

// jamsAliases maps canonical fields to the header variants JAMS exports use.
var jamsAliases = map[Field][]string{
	FieldCaseID:             {"Case ID", "Reference No.", "Case Reference", "JAMS Case No."},
	FieldArbitratorName:     {"Arbitrator Name", "Arbitrator", "Neutral"},
	FieldRespondentName:     {"Respondent Name", "Respondent", "Company"},
	FieldConsumerAttorney:   {"Consumer Attorney", "Claimant Counsel"},
	FieldRespondentAttorney: {"Respondent Attorney", "Respondent Counsel"},
	FieldDispositionType:    {"Disposition", "Result", "Case Result"},
	FieldDateFiled:          {"Date Filed", "Commencement Date"},
	FieldDateClosed:         {"Date Closed", "Conclusion Date"},
	FieldClaimAmount:        {"Claim Amount", "Demand Amount"},
	FieldAwardAmount:        {"Award Amount", "Award"},
}

// matcher tries to bind one canonical field to one of the raw columns.
// Matchers run in order; the first hit wins and later tiers never see
// the field again.
type matcher func(columns []string, aliases []string, field Field) (string, bool)

// Resolver maps raw export headers onto the canonical schema using a
// fixed ladder of matching strategies, strictest first.
type Resolver struct {
	tiers []matcher
}

// NewResolver builds the standard four-tier resolver: exact alias,
// case-insensitive alias, substring overlap, then canonical header.
func NewResolver() *Resolver {
	return &Resolver{tiers: []matcher{
		matchExact,
		matchFold,
		matchSubstring,
		matchCanonical,
	}}
}

// aliasesFor returns the alias table for a forum.
func aliasesFor(forum storage.Forum) map[Field][]string {
	if forum == storage.ForumJAMS {
		return jamsAliases
	}
	return aaaAliases
}

// Resolve maps each canonical field to a raw column name. Fields with
// no matching column are absent from the result.
func (r *Resolver) Resolve(columns []string, forum storage.Forum) map[Field]string {
	aliases := aliasesFor(forum)
	mapping := make(map[Field]string, len(Fields))

	for _, field := range Fields {
		for _, tier := range r.tiers {
			if col, ok := tier(columns, aliases[field], field); ok {
				mapping[field] = col
				break
			}
		}
	}
	return mapping
}

func matchExact(columns []string, aliases []string, _ Field) (string, bool) {
	for _, alias := range aliases {
		for _, col := range columns {
			if col == alias {
				return col, true
			}
		}
	}
	return "", false
}

func matchFold(columns []string, aliases []string, _ Field) (string, bool) {
	for _, alias := range aliases {
		for _, col := range columns {
			if strings.EqualFold(strings.TrimSpace(col), strings.TrimSpace(alias)) {
				return col, true
			}
		}
	}
	return "", false
}

// matchSubstring accepts a column when it contains an alias (or the
// alias contains the column) case-insensitively. The shorter of the two
// strings must be at least four characters so that stubby headers do
// not latch onto everything.
func matchSubstring(columns []string, aliases []string, _ Field) (string, bool) {
	for _, alias := range aliases {
		a := strings.ToLower(strings.TrimSpace(alias))
		for _, col := range columns {
			c := strings.ToLower(strings.TrimSpace(col))
			shorter := len(c)
			if len(a) < shorter {
				shorter = len(a)
			}
			if shorter < 4 {
				continue
			}
			if strings.Contains(c, a) || strings.Contains(a, c) {
				return col, true
			}
		}
	}
	return "", false
}

func matchCanonical(columns []string, _ []string, field Field) (string, bool) {
	want := canonicalHeader[field]
	for _, col := range columns {
		if strings.EqualFold(strings.TrimSpace(col), want) {
			return col, true
		}
	}
	return "", false
}
