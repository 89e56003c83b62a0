// Package ranker turns a raw result pool into a confidence-ranked list.
// Ranking is deterministic for identical inputs and never fails: empty
// queries, unparseable dates and empty pools all degrade to neutral
// scores or empty output.
package ranker

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mstrand/wavesearch/internal/search"
	"github.com/mstrand/wavesearch/pkg/stringsutil"
	"github.com/mstrand/wavesearch/pkg/utils"
)

// Weights combines the four component scores into the final confidence.
// They must sum to 1.0; New auto-normalizes and warns if they do not.
type Weights struct {
	Tier      float64
	Consensus float64
	Relevance float64
	Freshness float64
}

func DefaultWeights() Weights {
	return Weights{Tier: 0.40, Consensus: 0.30, Relevance: 0.20, Freshness: 0.10}
}

// tierDefaults is the fallback tier score when no per-engine override applies.
var tierDefaults = map[search.Tier]float64{
	search.TierLightning: 95,
	search.TierFast:      85,
	search.TierStandard:  75,
	search.TierSlow:      65,
	search.TierVerySlow:  55,
}

// DefaultEngineOverrides scores flagship engines above their tier default.
func DefaultEngineOverrides() map[string]float64 {
	return map[string]float64{
		"GO": 98,
		"BI": 92,
		"DD": 90,
		"YA": 88,
	}
}

type Ranker struct {
	weights   Weights
	overrides map[string]float64

	// now is swappable so freshness bucketing is testable.
	now func() time.Time
}

type Option func(*Ranker)

// WithEngineOverrides replaces the per-engine tier score table.
func WithEngineOverrides(overrides map[string]float64) Option {
	return func(r *Ranker) {
		r.overrides = overrides
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Ranker) {
		r.now = now
	}
}

func New(weights Weights, opts ...Option) *Ranker {
	r := &Ranker{
		weights:   normalizeWeights(weights),
		overrides: DefaultEngineOverrides(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func normalizeWeights(w Weights) Weights {
	sum := w.Tier + w.Consensus + w.Relevance + w.Freshness
	if sum <= 0 {
		return DefaultWeights()
	}
	if math.Abs(sum-1.0) > 1e-9 {
		slog.Warn("ranking weights do not sum to 1.0, normalizing", "sum", sum)
		w.Tier /= sum
		w.Consensus /= sum
		w.Relevance /= sum
		w.Freshness /= sum
	}
	return w
}

// Rank groups results by exact URL, scores each distinct URL once and
// returns them sorted by descending confidence with dense 1..N ranks.
// Ties keep first-seen input order (stable sort). Inputs are not mutated.
func (r *Ranker) Rank(results []search.Result, query string, tiers map[string]search.Tier) []search.RankedResult {
	if len(results) == 0 {
		return nil
	}

	type group struct {
		first   search.Result
		engines []string
		seen    map[string]bool
	}

	groups := make(map[string]*group)
	var order []string
	for _, res := range results {
		g, ok := groups[res.URL]
		if !ok {
			g = &group{first: res, seen: make(map[string]bool)}
			groups[res.URL] = g
			order = append(order, res.URL)
		}
		if !g.seen[res.EngineCode] {
			g.seen[res.EngineCode] = true
			g.engines = append(g.engines, res.EngineCode)
		}
	}

	now := r.now()
	ranked := make([]search.RankedResult, 0, len(order))
	for _, url := range order {
		g := groups[url]

		tierScore := r.tierScore(g.first, tiers)
		consensus := consensusScore(len(g.engines))
		relevance := relevanceScore(query, g.first)
		freshness := freshnessScore(g.first, now)

		confidence := utils.RoundDecimal(
			r.weights.Tier*tierScore+
				r.weights.Consensus*consensus+
				r.weights.Relevance*relevance+
				r.weights.Freshness*freshness,
			1,
		)

		ranked = append(ranked, search.RankedResult{
			Result:     g.first,
			Confidence: confidence,
			TierScore:  tierScore,
			Consensus:  consensus,
			Relevance:  relevance,
			Freshness:  freshness,
			FoundIn:    g.engines,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func (r *Ranker) tierScore(res search.Result, tiers map[string]search.Tier) float64 {
	if score, ok := r.overrides[res.EngineCode]; ok {
		return score
	}
	tier := res.Tier
	if t, ok := tiers[res.EngineCode]; ok {
		tier = t
	}
	if score, ok := tierDefaults[tier]; ok {
		return score
	}
	return tierDefaults[search.TierStandard]
}

// consensusScore rewards agreement between independent engines.
func consensusScore(engineCount int) float64 {
	switch {
	case engineCount >= 4:
		return 95
	case engineCount == 3:
		return 85
	case engineCount == 2:
		return 70
	default:
		return 50
	}
}

// relevanceScore measures query term coverage over title+snippet:
// up to 60 points for term fraction, +20 for a verbatim phrase match,
// +5 per term appearing in the title capped at 20, clamped to [0,100].
func relevanceScore(query string, res search.Result) float64 {
	terms := stringsutil.Tokenize(query)
	if len(terms) == 0 {
		return 0
	}

	title := strings.ToLower(res.Title)
	combined := title + " " + strings.ToLower(res.Snippet)

	var matched, inTitle int
	for _, term := range terms {
		if strings.Contains(combined, term) {
			matched++
		}
		if strings.Contains(title, term) {
			inTitle++
		}
	}

	score := 60 * float64(matched) / float64(len(terms))

	phrase := strings.ToLower(strings.TrimSpace(query))
	if phrase != "" && strings.Contains(combined, phrase) {
		score += 20
	}

	titleBonus := 5 * float64(inTitle)
	if titleBonus > 20 {
		titleBonus = 20
	}
	score += titleBonus

	return utils.Clamp(score, 0, 100)
}
