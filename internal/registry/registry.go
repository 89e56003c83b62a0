// Package registry holds the static mapping from engine codes to search
// adapters. It is built explicitly at startup and read-only afterwards,
// so concurrent readers need no locking.
package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/mstrand/wavesearch/internal/search"
)

// Engine is the contract an adapter must satisfy to participate in the
// cascade. The pipeline treats implementations as opaque and wraps every
// call with its own timeout regardless of the adapter's internal behavior.
type Engine interface {
	Search(ctx context.Context, query string, maxResults int) ([]search.Result, error)
}

// Descriptor is the static metadata registered alongside an engine.
type Descriptor struct {
	Code string
	Name string
	Tier search.Tier
}

type entry struct {
	desc   Descriptor
	engine Engine
}

// Registry maps engine codes to adapters plus their descriptors.
type Registry struct {
	entries map[string]entry
}

func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds an engine under its descriptor's code. Duplicate codes
// and invalid tiers are configuration mistakes and fail immediately.
func (r *Registry) Register(desc Descriptor, eng Engine) error {
	if desc.Code == "" {
		return fmt.Errorf("engine descriptor has no code")
	}
	if eng == nil {
		return fmt.Errorf("engine %q is nil", desc.Code)
	}
	if !desc.Tier.Valid() {
		return fmt.Errorf("engine %q: unknown tier %q", desc.Code, desc.Tier)
	}
	if _, ok := r.entries[desc.Code]; ok {
		return fmt.Errorf("engine %q registered twice", desc.Code)
	}
	r.entries[desc.Code] = entry{desc: desc, engine: eng}
	return nil
}

// Engine returns the adapter for a code, or false if unknown.
func (r *Registry) Engine(code string) (Engine, bool) {
	e, ok := r.entries[code]
	if !ok {
		return nil, false
	}
	return e.engine, true
}

// Descriptor returns the static metadata for a code.
func (r *Registry) Descriptor(code string) (Descriptor, bool) {
	e, ok := r.entries[code]
	return e.desc, ok
}

// Tier returns the tier for a code, defaulting to standard for codes
// the registry does not know.
func (r *Registry) Tier(code string) search.Tier {
	if e, ok := r.entries[code]; ok {
		return e.desc.Tier
	}
	return search.TierStandard
}

// Codes lists all registered engine codes in stable sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.entries))
	for code := range r.entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Tiers returns the full code -> tier mapping, used by the ranker for
// tier scoring.
func (r *Registry) Tiers() map[string]search.Tier {
	tiers := make(map[string]search.Tier, len(r.entries))
	for code, e := range r.entries {
		tiers[code] = e.desc.Tier
	}
	return tiers
}

func (r *Registry) Len() int {
	return len(r.entries)
}
