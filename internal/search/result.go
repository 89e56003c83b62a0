package search

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Result is a single raw hit as returned by an engine adapter.
// The URL is the deduplication key across engines and waves; it is
// compared by exact string match, no normalization (two spellings of
// the same page are treated as distinct on purpose).
type Result struct {
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	Snippet    string     `json:"snippet"`
	EngineCode string     `json:"engine"`
	Tier       Tier       `json:"tier,omitempty"`
	Published  *time.Time `json:"published,omitempty"`
}

// RankedResult is a Result with confidence scoring attached.
// Component scores are each on a 0-100 scale; Confidence is their
// weighted combination rounded to one decimal place.
type RankedResult struct {
	Result

	Confidence float64 `json:"confidence"`
	TierScore  float64 `json:"tier_score"`
	Consensus  float64 `json:"consensus_score"`
	Relevance  float64 `json:"relevance_score"`
	Freshness  float64 `json:"freshness_score"`

	// Rank is a dense 1..N position consistent with descending Confidence.
	Rank int `json:"rank"`

	// FoundIn lists every distinct engine that returned this URL.
	FoundIn []string `json:"found_in"`
}

// WaveResult records one settled wave. Created once per wave by the
// executor and never mutated afterwards.
type WaveResult struct {
	Phase      WavePhase     `json:"phase"`
	EnginesRun []string      `json:"engines_run"`
	Results    []Result      `json:"results"`
	Elapsed    time.Duration `json:"elapsed_ms"`
}

// MarshalJSON emits Elapsed in milliseconds, matching the _ms field name.
func (w WaveResult) MarshalJSON() ([]byte, error) {
	type alias WaveResult
	return json.Marshal(struct {
		alias
		Elapsed int64 `json:"elapsed_ms"`
	}{alias(w), w.Elapsed.Milliseconds()})
}

// ExecutionResult is the accumulated outcome of a cascade run.
type ExecutionResult struct {
	AllResults       []Result     `json:"all_results"`
	UniqueURLs       int          `json:"unique_urls"`
	EnginesSucceeded []string     `json:"engines_succeeded"`
	EnginesFailed    []string     `json:"engines_failed"`
	Waves            []WaveResult `json:"waves"`
}

// ProgressEvent is pushed to an optional caller-supplied sink as
// individual engines settle. Purely observational, never persisted.
type ProgressEvent struct {
	SearchID         uuid.UUID     `json:"search_id"`
	Phase            WavePhase     `json:"phase"`
	EnginesCompleted int           `json:"engines_completed"`
	EnginesTotal     int           `json:"engines_total"`
	ResultsSoFar     int           `json:"results_so_far"`
	Elapsed          time.Duration `json:"elapsed_ms"`
	Message          string        `json:"message"`
}

// MarshalJSON emits Elapsed in milliseconds, matching the _ms field name.
func (p ProgressEvent) MarshalJSON() ([]byte, error) {
	type alias ProgressEvent
	return json.Marshal(struct {
		alias
		Elapsed int64 `json:"elapsed_ms"`
	}{alias(p), p.Elapsed.Milliseconds()})
}

// Recommendation is the router's verdict for one query: which engines
// to run, grouped by tier for wave assignment, with a static time
// estimate and a human-readable explanation. Immutable once produced.
type Recommendation struct {
	Engines       []string          `json:"engines"`
	TierBreakdown map[Tier][]string `json:"tier_breakdown"`
	Intent        string            `json:"intent"`
	Complexity    float64           `json:"complexity"`
	EstimatedTime time.Duration     `json:"estimated_time_ms"`
	Explanation   string            `json:"explanation"`
}

// MarshalJSON emits EstimatedTime in milliseconds, matching the _ms
// field name.
func (r Recommendation) MarshalJSON() ([]byte, error) {
	type alias Recommendation
	return json.Marshal(struct {
		alias
		EstimatedTime int64 `json:"estimated_time_ms"`
	}{alias(r), r.EstimatedTime.Milliseconds()})
}
