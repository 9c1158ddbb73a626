package dataset

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/caselens/case-engine/internal/storage"
)

var (
	sampleArbitrators = []string{
		"John L. Smith Esq.", "Maria Gonzalez", "David K. Chen",
		"Patricia O'Brien", "Robert Williams Jr.", "Angela Thompson",
		"Michael Harris", "Susan Lee",
	}
	sampleRespondents = []string{
		"Citibank, N.A.", "AT&T Mobility LLC", "Wells Fargo Bank",
		"Comcast Cable Communications", "Uber Technologies Inc.",
		"American Express Company", "Verizon Wireless", "Tesla Inc.",
	}
	sampleAttorneys = []string{
		"Sarah Mitchell", "James Park", "Linda Rodriguez",
		"Kevin O'Malley", "Rachel Green",
	}
	sampleDispositions = []string{
		storage.DispositionAwarded, storage.DispositionSettled,
		storage.DispositionDismissed, storage.DispositionWithdrawn,
		storage.DispositionDismissedOnMerits, storage.DispositionAdministrative,
	}
)

// Sample builds a deterministic demonstration dataset of n cases. The
// same n always yields the same records, so demos and tests are
// reproducible. Records come back already enriched.
func Sample(n int) *Dataset {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)

	records := make([]storage.CaseRecord, 0, n)
	for i := 0; i < n; i++ {
		forum := storage.ForumAAA
		prefix := "AAA"
		if rng.Intn(3) == 0 {
			forum = storage.ForumJAMS
			prefix = "JAMS"
		}

		filed := base.AddDate(0, 0, rng.Intn(365*4))
		closed := filed.AddDate(0, 0, 30+rng.Intn(365))
		claim := float64(1000+rng.Intn(200000)) + rng.Float64()
		disposition := sampleDispositions[rng.Intn(len(sampleDispositions))]

		var award float64
		if disposition == storage.DispositionAwarded && rng.Intn(4) > 0 {
			award = claim * (0.1 + 0.8*rng.Float64())
		}

		rec := storage.CaseRecord{
			CaseID:             fmt.Sprintf("%s-%02d-%04d", prefix, 19+i%4, 1000+i),
			ArbitratorName:     sampleArbitrators[rng.Intn(len(sampleArbitrators))],
			RespondentName:     sampleRespondents[rng.Intn(len(sampleRespondents))],
			ConsumerAttorney:   sampleAttorneys[rng.Intn(len(sampleAttorneys))],
			RespondentAttorney: sampleAttorneys[rng.Intn(len(sampleAttorneys))],
			DispositionType:    disposition,
			DateFiled:          &filed,
			DateClosed:         &closed,
			ClaimAmount:        &claim,
			AwardAmount:        &award,
			Forum:              forum,
		}

		rec.ConsumerPrevailed = disposition == storage.DispositionAwarded && award > 0
		rec.BusinessPrevailed = disposition == storage.DispositionDismissed ||
			disposition == storage.DispositionDismissedOnMerits ||
			disposition == storage.DispositionWithdrawn ||
			(disposition == storage.DispositionAwarded && award == 0)

		days := int(closed.Sub(filed).Hours() / 24)
		rec.CaseDurationDays = &days

		records = append(records, rec)
	}
	return New(records)
}
