package creature

import (
	"github.com/plumage3d/plumage/engine/math"
)

// ContactPass post-processes an assembled fragment set so every fragment
// touches at least one sibling. It is best effort: the iteration bound
// means some configurations stay disconnected, which is accepted as a
// weaker visual-cohesion outcome rather than surfaced as an error.
type ContactPass struct {
	tuning *Tuning
	placer *Placer
}

func NewContactPass(tuning *Tuning) *ContactPass {
	if tuning == nil {
		tuning = DefaultTuning()
	}
	return &ContactPass{
		tuning: tuning,
		placer: NewPlacer(tuning),
	}
}

// EnsureConnectivity walks every placed fragment that has no tolerant
// contact with a sibling and pulls it toward its nearest neighbour, then
// runs a side-aware reinforcement pass over wing-like and foot-like
// fragments so mirrored limbs cohere within their own side.
func (cp *ContactPass) EnsureConnectivity(placed []*PlacedFragment) {
	if len(placed) < 2 {
		return
	}

	for _, f := range placed {
		others := othersOf(placed, f)
		cp.forceContact(f, others)
	}

	cp.reinforceSides(placed)
}

// forceContact drags f toward its nearest candidate until they register
// tolerant contact or the attempt budget runs out.
func (cp *ContactPass) forceContact(f *PlacedFragment, candidates []*PlacedFragment) {
	if len(candidates) == 0 {
		return
	}
	if cp.hasContact(f, candidates) {
		return
	}

	for attempt := 1; attempt <= cp.tuning.ContactRounds; attempt++ {
		box, ok := f.Bounds(1.0)
		if !ok {
			return
		}

		nearestBox, ok := cp.nearestTo(box.Center, candidates)
		if !ok {
			return
		}

		toward := nearestBox.Center.Sub(box.Center)
		if toward.Length() < math.K_FLOAT_EPSILON {
			return
		}
		// Snap direction runs from the anchor out to f.
		outward := toward.MulScalar(-1).Normalized()

		targetCenter := cp.placer.SnapPosition(box, nearestBox, outward, cp.tuning.ContactPenetration)
		f.SetPosition(targetCenter.Add(f.Position().Sub(box.Center)))

		if cp.hasContact(f, candidates) {
			return
		}

		// Still loose; bite further toward the neighbour each attempt.
		step := toward.Normalized().MulScalar(cp.tuning.ContactNudge * float32(attempt))
		f.SetPosition(f.Position().Add(step))

		if cp.hasContact(f, candidates) {
			return
		}
	}
}

func (cp *ContactPass) hasContact(f *PlacedFragment, others []*PlacedFragment) bool {
	box, ok := f.Bounds(1.0)
	if !ok {
		return true // nothing to connect
	}
	for _, other := range others {
		otherBox, otherOK := other.Bounds(1.0)
		if !otherOK {
			continue
		}
		if cp.placer.Overlaps(box, otherBox, cp.tuning.ContactTolerance) {
			return true
		}
	}
	return false
}

func (cp *ContactPass) nearestTo(center math.Vec3, candidates []*PlacedFragment) (math.Box3, bool) {
	bestDist := math.K_INFINITY
	var bestBox math.Box3
	found := false
	for _, cand := range candidates {
		candBox, ok := cand.Bounds(1.0)
		if !ok {
			continue
		}
		if d := candBox.Center.Distance(center); d < bestDist {
			bestDist = d
			bestBox = candBox
			found = true
		}
	}
	return bestBox, found
}

// reinforceSides groups fragments that read as wings or feet by which
// side of the body their bounding-box center sits on, then forces every
// group member beyond the first into contact with the earlier members of
// the same group.
func (cp *ContactPass) reinforceSides(placed []*PlacedFragment) {
	groups := map[string][]*PlacedFragment{}

	for _, f := range placed {
		box, ok := f.Bounds(1.0)
		if !ok {
			continue
		}
		c := box.Center

		kind := ""
		switch {
		case absf(c.X) > cp.tuning.WingCenterMinX && absf(c.Y) < cp.tuning.WingCenterMaxY:
			kind = "wing"
		case c.Y < 0 && absf(c.Y) > cp.tuning.FootCenterMinY:
			kind = "foot"
		default:
			continue
		}

		side := "l"
		if c.X >= 0 {
			side = "r"
		}
		key := kind + side
		groups[key] = append(groups[key], f)
	}

	for _, group := range groups {
		for i := 1; i < len(group); i++ {
			cp.forceContact(group[i], group[:i])
		}
	}
}

func othersOf(placed []*PlacedFragment, f *PlacedFragment) []*PlacedFragment {
	out := make([]*PlacedFragment, 0, len(placed)-1)
	for _, other := range placed {
		if other != f {
			out = append(out, other)
		}
	}
	return out
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
