package search

import "fmt"

// Tier is a static speed/reliability classification of an engine.
// It drives wave grouping and the default tier score during ranking.
type Tier string

const (
	TierLightning Tier = "lightning"
	TierFast      Tier = "fast"
	TierStandard  Tier = "standard"
	TierSlow      Tier = "slow"
	TierVerySlow  Tier = "very_slow"
)

// ParseTier validates a tier name coming from config or adapter metadata.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierLightning, TierFast, TierStandard, TierSlow, TierVerySlow:
		return Tier(s), nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

func (t Tier) Valid() bool {
	_, err := ParseTier(string(t))
	return err == nil
}

// EstimatedLatency is the static per-tier time estimate used by the router
// when computing EstimatedTime for a recommendation. These are planning
// constants, not measurements.
func (t Tier) EstimatedLatency() int64 {
	switch t {
	case TierLightning:
		return 2_000
	case TierFast:
		return 5_000
	case TierStandard:
		return 10_000
	case TierSlow:
		return 20_000
	case TierVerySlow:
		return 40_000
	default:
		return 10_000
	}
}
