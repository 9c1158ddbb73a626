package query

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/caselens/case-engine/internal/cache"
	"github.com/caselens/case-engine/internal/dataset"
	"github.com/caselens/case-engine/internal/observability"
	"github.com/caselens/case-engine/internal/storage"
)

// handler renders the answer for one matched intent. groups holds the
// submatches of the intent's pattern against the lowercased question.
type handler func(e *Engine, groups []string, ds *dataset.Dataset) string

type intentPattern struct {
	name   string
	re     *regexp.Regexp
	handle handler
}

// Engine matches questions against an ordered table of intent patterns
// and answers them from a dataset. The first matching pattern wins, so
// more specific phrasings sit above the general ones they extend.
type Engine struct {
	resolver *NameResolver
	cache    cache.Client
	cacheTTL time.Duration
	logger   *observability.Logger
	patterns []intentPattern
}

// Options configure an Engine.
type Options struct {
	// Cache, if set, stores rendered answers keyed by question.
	Cache    cache.Client
	CacheTTL time.Duration
}

// NewEngine creates a query engine.
func NewEngine(logger *observability.Logger, opts Options) *Engine {
	e := &Engine{
		resolver: NewNameResolver(),
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   logger.WithComponent("query"),
	}
	if e.cacheTTL == 0 {
		e.cacheTTL = 5 * time.Minute
	}

	// The two-party ruling pattern must precede the general ruling
	// pattern: the general one also matches its phrasing and would
	// swallow the respondent.
	e.patterns = []intentPattern{
		{
			name:   "rulings_against_respondent",
			re:     regexp.MustCompile(`how many times has ([^?]+?) ruled for the consumer against ([^?]+)`),
			handle: (*Engine).answerSpecificRulings,
		},
		{
			name:   "rulings_for_party",
			re:     regexp.MustCompile(`how many times has ([^?]+) ruled for the (complainant|consumer)`),
			handle: (*Engine).answerRulings,
		},
		{
			name:   "case_count",
			re:     regexp.MustCompile(`how many arbitrations? has ([^?]+)`),
			handle: (*Engine).answerCaseCount,
		},
		{
			name:   "average_award",
			re:     regexp.MustCompile(`what was the average award given by ([^?]+)`),
			handle: (*Engine).answerAvgAward,
		},
		{
			name:   "list_cases",
			re:     regexp.MustCompile(`list the names of all the arbitrations? handled by ([^?]+)`),
			handle: (*Engine).answerListCases,
		},
	}
	return e
}

const fallbackAnswer = "I'm sorry, I couldn't understand your query. Please try rephrasing it."

// Answer processes a natural-language question against the dataset.
// Unrecognized questions get the fixed fallback answer, never an error.
func (e *Engine) Answer(ctx context.Context, question string, ds *dataset.Dataset) string {
	key := answerKey(question)
	if e.cache != nil {
		if cached, err := e.cache.Get(ctx, key); err == nil {
			e.logger.Debug().Str("question", question).Msg("answer served from cache")
			return string(cached)
		}
	}

	lower := strings.ToLower(question)
	answer := fallbackAnswer

	for _, p := range e.patterns {
		if groups := p.re.FindStringSubmatch(lower); groups != nil {
			e.logger.Debug().
				Str("intent", p.name).
				Str("question", question).
				Msg("matched query intent")
			answer = p.handle(e, groups, ds)
			break
		}
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, []byte(answer), e.cacheTTL); err != nil {
			e.logger.Warn().Err(err).Msg("failed to cache answer")
		}
	}
	return answer
}

func answerKey(question string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(question))))
	return cache.Key("answer", hex.EncodeToString(sum[:8]))
}

func (e *Engine) answerCaseCount(groups []string, ds *dataset.Dataset) string {
	name, ok := e.resolver.Resolve(groups[1], ds.ArbitratorNames())
	if !ok {
		return notFoundArbitrator(groups[1])
	}

	n := 0
	for i := range ds.Records {
		if ds.Records[i].ArbitratorName == name {
			n++
		}
	}
	return fmt.Sprintf("Arbitrator %s has handled %d arbitration cases in the dataset.", name, n)
}

func (e *Engine) answerRulings(groups []string, ds *dataset.Dataset) string {
	name, ok := e.resolver.Resolve(groups[1], ds.ArbitratorNames())
	if !ok {
		return notFoundArbitrator(groups[1])
	}
	party := groups[2]

	total, awarded := 0, 0
	for i := range ds.Records {
		if ds.Records[i].ArbitratorName != name {
			continue
		}
		total++
		if ds.Records[i].DispositionType == storage.DispositionAwarded {
			awarded++
		}
	}
	return fmt.Sprintf("Arbitrator %s has ruled for the %s in %d cases out of %d total cases.",
		name, party, awarded, total)
}

func (e *Engine) answerSpecificRulings(groups []string, ds *dataset.Dataset) string {
	arbitrator, ok := e.resolver.Resolve(groups[1], ds.ArbitratorNames())
	if !ok {
		return notFoundArbitrator(groups[1])
	}
	respondent, ok := e.resolver.Resolve(groups[2], ds.RespondentNames())
	if !ok {
		return fmt.Sprintf("I couldn't find any cases for a respondent matching '%s' in the dataset.",
			strings.TrimSpace(groups[2]))
	}

	total, awarded := 0, 0
	for i := range ds.Records {
		r := &ds.Records[i]
		if r.ArbitratorName != arbitrator || r.RespondentName != respondent {
			continue
		}
		total++
		if r.DispositionType == storage.DispositionAwarded {
			awarded++
		}
	}
	return fmt.Sprintf("Arbitrator %s has ruled for the consumer against %s in %d cases out of %d total cases involving both parties.",
		arbitrator, respondent, awarded, total)
}

func (e *Engine) answerAvgAward(groups []string, ds *dataset.Dataset) string {
	name, ok := e.resolver.Resolve(groups[1], ds.ArbitratorNames())
	if !ok {
		return notFoundArbitrator(groups[1])
	}

	var sum float64
	var n int
	for i := range ds.Records {
		r := &ds.Records[i]
		if r.ArbitratorName == name && r.AwardAmount != nil {
			sum += *r.AwardAmount
			n++
		}
	}
	if n == 0 {
		return fmt.Sprintf("Award amount data is not available for Arbitrator %s.", name)
	}
	return fmt.Sprintf("The average award given by Arbitrator %s is $%s.", name, formatAmount(sum/float64(n)))
}

func (e *Engine) answerListCases(groups []string, ds *dataset.Dataset) string {
	name, ok := e.resolver.Resolve(groups[1], ds.ArbitratorNames())
	if !ok {
		return notFoundArbitrator(groups[1])
	}

	var lines []string
	for i := range ds.Records {
		r := &ds.Records[i]
		if r.ArbitratorName != name {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s (v. %s)", r.CaseID, r.RespondentName))
	}
	if len(lines) == 0 {
		return fmt.Sprintf("No cases are available for Arbitrator %s.", name)
	}
	return fmt.Sprintf("Arbitrator %s has handled the following %d cases:\n\n%s",
		name, len(lines), strings.Join(lines, "\n"))
}

func notFoundArbitrator(raw string) string {
	return fmt.Sprintf("I couldn't find any cases for an arbitrator matching '%s' in the dataset.",
		strings.TrimSpace(raw))
}

// formatAmount renders a dollar amount with thousands separators and
// two decimal places.
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
