package creature

import (
	"github.com/plumage3d/plumage/engine/math"
)

// Placer computes positions for new fragments relative to fragments
// already placed, using tolerant bounding-volume overlap tests and
// directional snap projection. It is a bounded best-effort local search:
// it may stop with residual overlap or residual separation once the round
// budget runs out, and that outcome is accepted rather than reported.
type Placer struct {
	tuning *Tuning
}

func NewPlacer(tuning *Tuning) *Placer {
	if tuning == nil {
		tuning = DefaultTuning()
	}
	return &Placer{tuning: tuning}
}

// Overlaps scales both boxes' half extents by toleranceScale about their
// own centers, then runs an axis-aligned intersection test. A scale below
// 1 deliberately shrinks the collision volumes so parts that merely touch
// or slightly overlap on screen are not flagged as colliding.
func (p *Placer) Overlaps(a, b math.Box3, toleranceScale float32) bool {
	return a.Scaled(toleranceScale).Intersects(b.Scaled(toleranceScale))
}

// SnapPosition returns the center for newBox placed against anchorBox
// along direction. Both boxes' half extents are projected onto the
// normalized direction; their sum is the just-touching separation, and
// the penetration term shifts it from there. A negative penetrationFactor
// shortens the separation, sinking the new box into the anchor.
func (p *Placer) SnapPosition(newBox, anchorBox math.Box3, direction math.Vec3, penetrationFactor float32) math.Vec3 {
	dir := direction.Normalized()

	projNew := newBox.ProjectedRadius(dir)
	projAnchor := anchorBox.ProjectedRadius(dir)

	separation := projNew + projAnchor
	avg := (projNew + projAnchor) * 0.5
	separation += penetrationFactor * avg * p.tuning.SnapOverlapBias

	return anchorBox.Center.Add(dir.MulScalar(separation))
}

// ResolvePlacement sets the fragment to initialPosition and then runs up
// to PlacementRounds rounds of collision resolution against the placed
// fragments. Each round that still collides computes a snap candidate
// against every colliding fragment and keeps the one landing closest to
// initialPosition; when no candidate is computable the fragment is nudged
// along the preferred direction instead. The first collision-free round
// accepts the current position and exits early. With nothing placed yet
// the initial position is accepted unchanged.
func (p *Placer) ResolvePlacement(f *PlacedFragment, placed []*PlacedFragment, initialPosition, preferredDirection math.Vec3, penetrationFactor float32) math.Vec3 {
	f.SetPosition(initialPosition)
	if len(placed) == 0 {
		return initialPosition
	}

	dir := preferredDirection.Normalized()

	for round := 0; round < p.tuning.PlacementRounds; round++ {
		box, ok := f.Bounds(1.0)
		if !ok {
			break
		}

		var colliding []math.Box3
		for _, other := range placed {
			otherBox, otherOK := other.Bounds(1.0)
			if !otherOK {
				continue
			}
			if p.Overlaps(box, otherBox, p.tuning.PlacementTolerance) {
				colliding = append(colliding, otherBox)
			}
		}
		if len(colliding) == 0 {
			return f.Position()
		}

		// The node position can sit off the box center, so snap targets
		// are applied as center deltas.
		centerToNode := f.Position().Sub(box.Center)

		bestDist := math.K_INFINITY
		var best math.Vec3
		found := false
		if dir.Length() > math.K_FLOAT_EPSILON {
			for _, otherBox := range colliding {
				candCenter := p.SnapPosition(box, otherBox, dir, penetrationFactor)
				cand := candCenter.Add(centerToNode)
				if d := cand.Distance(initialPosition); d < bestDist {
					bestDist = d
					best = cand
					found = true
				}
			}
		}

		if found {
			f.SetPosition(best)
		} else {
			f.SetPosition(f.Position().Add(dir.MulScalar(p.tuning.PlacementNudge)))
		}
	}
	return f.Position()
}
