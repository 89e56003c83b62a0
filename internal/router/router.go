// Package router picks which engines should serve a query. Routing is a
// pure function of the query text, the registry's tier metadata and the
// configured performance mode; it has no side effects and never errors
// per query.
package router

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mstrand/wavesearch/internal/registry"
	"github.com/mstrand/wavesearch/internal/search"
)

// PerformanceMode biases engine selection between latency and recall.
type PerformanceMode string

const (
	ModeSpeed         PerformanceMode = "speed"
	ModeBalanced      PerformanceMode = "balanced"
	ModeComprehensive PerformanceMode = "comprehensive"
)

const DefaultMaxEngines = 12

// slow tiers join a balanced run only for sufficiently complex queries.
const balancedSlowThreshold = 0.6

type Config struct {
	MaxEngines int
	Mode       PerformanceMode
}

type Router struct {
	reg *registry.Registry
	cfg Config
}

// New builds a router over a non-empty registry. An empty registry is a
// startup misconfiguration and fails here, never per query.
func New(reg *registry.Registry, cfg Config) (*Router, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, fmt.Errorf("router: registry is empty")
	}
	if cfg.MaxEngines <= 0 {
		cfg.MaxEngines = DefaultMaxEngines
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeBalanced
	}
	return &Router{reg: reg, cfg: cfg}, nil
}

// tierOrder lists tiers fastest first; selection fills from the front so
// truncation at MaxEngines drops the slowest engines.
var tierOrder = []search.Tier{
	search.TierLightning,
	search.TierFast,
	search.TierStandard,
	search.TierSlow,
	search.TierVerySlow,
}

// Route analyzes the query and selects a capped, tier-ordered engine set.
// It always returns a usable recommendation: a query matching no pattern
// still selects engines from the allowed tiers.
func (r *Router) Route(query string) *search.Recommendation {
	a := Analyze(query)
	allowed := r.allowedTiers(a.Complexity)

	byTier := make(map[search.Tier][]string)
	for _, code := range r.reg.Codes() {
		byTier[r.reg.Tier(code)] = append(byTier[r.reg.Tier(code)], code)
	}

	var selected []string
	for _, tier := range tierOrder {
		if !allowed[tier] {
			continue
		}
		selected = append(selected, byTier[tier]...)
	}

	// A registry made entirely of excluded tiers would otherwise yield
	// nothing; fall back to every engine rather than return an empty set.
	if len(selected) == 0 {
		for _, tier := range tierOrder {
			selected = append(selected, byTier[tier]...)
		}
	}

	if len(selected) > r.cfg.MaxEngines {
		selected = selected[:r.cfg.MaxEngines]
	}

	breakdown := make(map[search.Tier][]string)
	for _, code := range selected {
		tier := r.reg.Tier(code)
		breakdown[tier] = append(breakdown[tier], code)
	}

	return &search.Recommendation{
		Engines:       selected,
		TierBreakdown: breakdown,
		Intent:        a.Intent,
		Complexity:    a.Complexity,
		EstimatedTime: estimateTime(breakdown),
		Explanation:   explain(a, r.cfg.Mode, selected, breakdown),
	}
}

func (r *Router) allowedTiers(complexity float64) map[search.Tier]bool {
	switch r.cfg.Mode {
	case ModeSpeed:
		return map[search.Tier]bool{
			search.TierLightning: true,
			search.TierFast:      true,
		}
	case ModeComprehensive:
		return map[search.Tier]bool{
			search.TierLightning: true,
			search.TierFast:      true,
			search.TierStandard:  true,
			search.TierSlow:      true,
			search.TierVerySlow:  true,
		}
	default:
		allowed := map[search.Tier]bool{
			search.TierLightning: true,
			search.TierFast:      true,
			search.TierStandard:  true,
		}
		if complexity >= balancedSlowThreshold {
			allowed[search.TierSlow] = true
		}
		return allowed
	}
}

// estimateTime models the cascade: waves run sequentially, engines inside
// a wave concurrently, so each wave costs its slowest tier.
func estimateTime(breakdown map[search.Tier][]string) time.Duration {
	waveWorst := make(map[search.WavePhase]int64)
	for tier, codes := range breakdown {
		if len(codes) == 0 {
			continue
		}
		phase := search.PhaseForTier(tier)
		if lat := tier.EstimatedLatency(); lat > waveWorst[phase] {
			waveWorst[phase] = lat
		}
	}
	var total int64
	for _, ms := range waveWorst {
		total += ms
	}
	return time.Duration(total) * time.Millisecond
}

func explain(a Analysis, mode PerformanceMode, selected []string, breakdown map[search.Tier][]string) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("intent=%s complexity=%.2f mode=%s", a.Intent, a.Complexity, mode))
	if len(a.Subjects) > 0 {
		parts = append(parts, "subjects: "+strings.Join(a.Subjects, ", "))
	}
	if len(a.Operators) > 0 {
		parts = append(parts, "operators: "+strings.Join(a.Operators, ", "))
	}

	var tiers []string
	for tier, codes := range breakdown {
		tiers = append(tiers, fmt.Sprintf("%s=%d", tier, len(codes)))
	}
	sort.Strings(tiers)
	parts = append(parts, fmt.Sprintf("selected %d engines (%s)", len(selected), strings.Join(tiers, " ")))

	return strings.Join(parts, "; ")
}
