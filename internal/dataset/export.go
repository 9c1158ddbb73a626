package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/caselens/case-engine/internal/storage"
)

var exportHeader = []string{
	"Case_ID", "Arbitrator_Name", "Respondent_Name",
	"Consumer_Attorney", "Respondent_Attorney", "Disposition_Type",
	"Date_Filed", "Date_Closed", "Claim_Amount", "Award_Amount",
	"Forum", "Consumer_Prevailed", "Business_Prevailed", "Case_Duration_Days",
}

// WriteCSV writes the dataset as a delimited export with canonical
// headers. Absent optional fields render as empty cells.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for i := range d.Records {
		if err := cw.Write(exportRow(&d.Records[i])); err != nil {
			return fmt.Errorf("write export row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func exportRow(r *storage.CaseRecord) []string {
	return []string{
		r.CaseID, r.ArbitratorName, r.RespondentName,
		r.ConsumerAttorney, r.RespondentAttorney, r.DispositionType,
		fmtDate(r.DateFiled), fmtDate(r.DateClosed),
		fmtFloat(r.ClaimAmount), fmtFloat(r.AwardAmount),
		string(r.Forum),
		strconv.FormatBool(r.ConsumerPrevailed),
		strconv.FormatBool(r.BusinessPrevailed),
		fmtInt(r.CaseDurationDays),
	}
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func fmtFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}

func fmtInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
