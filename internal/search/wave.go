package search

// WavePhase identifies one sequential execution phase of the cascade.
// Phases run strictly in order; Complete is a terminal sentinel emitted
// by the streaming path after the last wave settles.
type WavePhase int

const (
	Wave1 WavePhase = iota + 1
	Wave2
	Wave3
	WaveComplete
)

var wavePhaseNames = map[WavePhase]string{
	Wave1:        "wave_1",
	Wave2:        "wave_2",
	Wave3:        "wave_3",
	WaveComplete: "complete",
}

func (p WavePhase) String() string {
	if name, ok := wavePhaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON encodes the phase by name so API payloads stay readable.
func (p WavePhase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// Phases lists the executable waves in order, excluding the Complete sentinel.
func Phases() []WavePhase {
	return []WavePhase{Wave1, Wave2, Wave3}
}

// PhaseForTier maps an engine tier to the wave it executes in:
// lightning and fast engines run first, standard second, slow and
// very_slow last.
func PhaseForTier(t Tier) WavePhase {
	switch t {
	case TierLightning, TierFast:
		return Wave1
	case TierStandard:
		return Wave2
	default:
		return Wave3
	}
}
