package creature

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Tuning collects every empirically chosen constant of the assembly
// pipeline. None of these are load-bearing for correctness; they shape how
// tightly parts cluster and how the silhouette reads. Values ship with the
// defaults below and can be overridden from a TOML file.
type Tuning struct {
	// CollisionVolumeScale shrinks a fragment's bounding volume before it
	// is used as a snap target, so parts may visually touch without being
	// treated as colliding.
	CollisionVolumeScale float32 `toml:"collision_volume_scale"`
	// PlacementTolerance is the half-extent scale applied during the
	// placement loop's overlap tests.
	PlacementTolerance float32 `toml:"placement_tolerance"`
	// ContactTolerance is the (looser) scale used when checking that two
	// placed parts count as touching.
	ContactTolerance float32 `toml:"contact_tolerance"`

	// PlacementRounds bounds the collision-resolution loop per part.
	PlacementRounds int `toml:"placement_rounds"`
	// ContactRounds bounds the per-part contact-enforcement loop.
	ContactRounds int `toml:"contact_rounds"`

	// PlacementNudge is the step taken along the preferred direction when
	// no snap candidate can be computed.
	PlacementNudge float32 `toml:"placement_nudge"`
	// ContactNudge scales the growing step toward the nearest part during
	// contact enforcement.
	ContactNudge float32 `toml:"contact_nudge"`

	// SnapOverlapBias multiplies the penetration term of SnapPosition.
	SnapOverlapBias float32 `toml:"snap_overlap_bias"`

	// Per-role penetration factors; more negative sinks a part deeper
	// into its anchor.
	HeadPenetration    float32 `toml:"head_penetration"`
	BellyPenetration   float32 `toml:"belly_penetration"`
	WingPenetration    float32 `toml:"wing_penetration"`
	TailPenetration    float32 `toml:"tail_penetration"`
	FootPenetration    float32 `toml:"foot_penetration"`
	ContactPenetration float32 `toml:"contact_penetration"`

	// Fixed part tilt angles, in degrees.
	WingSpreadDeg float32 `toml:"wing_spread_deg"`
	WingLiftDeg   float32 `toml:"wing_lift_deg"`
	TailTiltDeg   float32 `toml:"tail_tilt_deg"`
	FootTiltDeg   float32 `toml:"foot_tilt_deg"`

	// Thresholds for the side-aware reinforcement pass's part
	// classification, in world units around the torso anchor.
	WingCenterMinX float32 `toml:"wing_center_min_x"`
	WingCenterMaxY float32 `toml:"wing_center_max_y"`
	FootCenterMinY float32 `toml:"foot_center_min_y"`

	// Pacing delay bounds for the asynchronous entry point, milliseconds.
	DelayMinMS int `toml:"delay_min_ms"`
	DelayMaxMS int `toml:"delay_max_ms"`
}

func DefaultTuning() *Tuning {
	return &Tuning{
		CollisionVolumeScale: 0.85,
		PlacementTolerance:   0.80,
		ContactTolerance:     0.90,

		PlacementRounds: 8,
		ContactRounds:   15,

		PlacementNudge: 0.03,
		ContactNudge:   0.03,

		SnapOverlapBias: 1.5,

		HeadPenetration:    -0.3,
		BellyPenetration:   -0.3,
		WingPenetration:    -0.25,
		TailPenetration:    -0.25,
		FootPenetration:    -0.25,
		ContactPenetration: -0.2,

		WingSpreadDeg: 35,
		WingLiftDeg:   18,
		TailTiltDeg:   -24,
		FootTiltDeg:   10,

		WingCenterMinX: 0.2,
		WingCenterMaxY: 0.5,
		FootCenterMinY: 0.3,

		DelayMinMS: 500,
		DelayMaxMS: 1500,
	}
}

// LoadTuning reads a TOML file over the defaults, so a file only needs to
// name the values it changes.
func LoadTuning(path string) (*Tuning, error) {
	t := DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tuning: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("tuning: parse %s: %w", path, err)
	}
	return t, nil
}
