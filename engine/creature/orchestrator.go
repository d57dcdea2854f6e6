package creature

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"github.com/plumage3d/plumage/engine/math"
	"github.com/plumage3d/plumage/engine/scene"
)

// Assembler assigns anatomical roles to an unordered set of fragments and
// drives the placer to build one creature. Fragment source categories are
// deliberately ignored beyond selection order; letting a "head" fragment
// end up as a wing is what produces the recombination variety.
type Assembler struct {
	tuning *Tuning
	placer *Placer
	rng    *rand.Rand
}

func NewAssembler(tuning *Tuning, rng *rand.Rand) *Assembler {
	if tuning == nil {
		tuning = DefaultTuning()
	}
	return &Assembler{
		tuning: tuning,
		placer: NewPlacer(tuning),
		rng:    rng,
	}
}

// Assemble builds one creature from the supplied fragments. The fragment
// at index 0 always becomes the torso, placed unscaled at the origin; the
// rest are shuffled and dealt out as head, belly, wings, tail and foot
// depending on how many there are. An empty input yields an empty
// creature, not an error.
func (a *Assembler) Assemble(fragments []Fragment) *Creature {
	c := &Creature{Root: scene.NewNode("creature")}
	if len(fragments) == 0 {
		return c
	}

	torso := a.adopt(c, fragments[0], RoleTorso, SideNone)
	torso.Node.Transform.SetPosition(math.NewVec3Zero())
	torso.Node.Transform.SetScale(math.NewVec3One())

	rest := make([]Fragment, len(fragments)-1)
	copy(rest, fragments[1:])
	a.rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})

	idx := 0
	take := func() (Fragment, bool) {
		if idx >= len(rest) {
			return Fragment{}, false
		}
		f := rest[idx]
		idx++
		return f, true
	}

	var head, belly *PlacedFragment
	if f, ok := take(); ok {
		head = a.adopt(c, f, RoleHead, SideNone)
	}
	if f, ok := take(); ok {
		belly = a.adopt(c, f, RoleBelly, SideNone)
	}

	remaining := len(rest) - idx
	reserve := 0
	switch {
	case remaining > 2:
		reserve = 2
	case remaining > 0:
		reserve = 1
	}
	wingCount := remaining - reserve

	var wings []*PlacedFragment
	for i := 0; i < wingCount; i++ {
		f, _ := take()
		side := SideLeft
		if i%2 == 1 {
			side = SideRight
		}
		wings = append(wings, a.adopt(c, f, RoleWing, side))
	}

	var tail *PlacedFragment
	var feet []*PlacedFragment
	if reserve == 2 {
		if f, ok := take(); ok {
			tail = a.adopt(c, f, RoleTail, SideNone)
		}
	}
	if reserve >= 1 {
		if f, ok := take(); ok {
			feet = append(feet, a.adopt(c, f, RoleFoot, SideLeft))
		}
	}

	// Placement order: down the body, torso anchored first.
	placed := []*PlacedFragment{torso}

	if head != nil {
		a.placeAgainst(head, torso, placed, math.NewVec3Up(), a.tuning.HeadPenetration)
		placed = append(placed, head)
	}
	if belly != nil {
		a.placeAgainst(belly, torso, placed, math.NewVec3Down(), a.tuning.BellyPenetration)
		placed = append(placed, belly)
	}

	lastWing := map[Side]*PlacedFragment{}
	for _, wing := range wings {
		anchor := lastWing[wing.Side]
		if anchor == nil {
			anchor = torso
		}
		dir := math.NewVec3Left()
		spread := a.tuning.WingSpreadDeg
		if wing.Side == SideRight {
			dir = math.NewVec3Right()
			spread = -spread
		}
		a.placeAgainst(wing, anchor, placed, dir, a.tuning.WingPenetration)
		a.tilt(wing, math.NewVec3Back(), spread)
		a.tilt(wing, dir, -a.tuning.WingLiftDeg)
		placed = append(placed, wing)
		lastWing[wing.Side] = wing
	}

	if tail != nil {
		anchor := belly
		if anchor == nil {
			anchor = torso
		}
		a.placeAgainst(tail, anchor, placed, math.NewVec3Back(), a.tuning.TailPenetration)
		a.tilt(tail, math.NewVec3Right(), a.tuning.TailTiltDeg)
		placed = append(placed, tail)
	}

	lastFoot := map[Side]*PlacedFragment{}
	for _, foot := range feet {
		anchor := lastFoot[foot.Side]
		if anchor == nil {
			if belly != nil {
				anchor = belly
			} else {
				anchor = torso
			}
		}
		sideSign := float32(-1)
		if foot.Side == SideRight {
			sideSign = 1
		}
		dir := math.NewVec3(sideSign*0.3, -1, 0).Normalized()
		a.placeAgainst(foot, anchor, placed, dir, a.tuning.FootPenetration)
		a.tilt(foot, math.NewVec3Right(), a.tuning.FootTiltDeg)
		placed = append(placed, foot)
		lastFoot[foot.Side] = foot
	}

	a.mirrorLoneSides(c, wings)
	a.mirrorLoneSides(c, feet)

	return c
}

// adopt wraps a fragment in a placed instance and hangs its node off the
// creature root.
func (a *Assembler) adopt(c *Creature, f Fragment, role Role, side Side) *PlacedFragment {
	node := f.Mesh
	node.Name = fmt.Sprintf("%s_%d", role.String(), len(c.Fragments))
	c.Root.AddChild(node)

	pf := &PlacedFragment{
		Node:     node,
		Role:     role,
		Side:     side,
		Category: f.Category,
		ID:       uuid.New(),
	}
	c.Fragments = append(c.Fragments, pf)
	return pf
}

// placeAgainst snaps f against its anchor along dir and then lets the
// placer resolve collisions against everything already placed.
func (a *Assembler) placeAgainst(f *PlacedFragment, anchor *PlacedFragment, placed []*PlacedFragment, dir math.Vec3, penetration float32) {
	fBox, fOK := f.Bounds(a.tuning.CollisionVolumeScale)
	anchorBox, anchorOK := anchor.Bounds(a.tuning.CollisionVolumeScale)
	if !fOK || !anchorOK {
		// A geometry-less part can only ride along at its anchor's position.
		f.SetPosition(anchor.Position())
		return
	}

	initialCenter := a.placer.SnapPosition(fBox, anchorBox, dir, penetration)
	initial := initialCenter.Add(f.Position().Sub(fBox.Center))
	a.placer.ResolvePlacement(f, placed, initial, dir, penetration)
}

// tilt applies a fixed rotation about the given axis, in degrees.
func (a *Assembler) tilt(f *PlacedFragment, axis math.Vec3, degrees float32) {
	if degrees == 0 {
		return
	}
	q := math.NewQuatFromAxisAngle(axis, math.DegToRad(degrees), true)
	f.Node.Transform.Rotate(q)
}

// mirrorLoneSides restores left/right parity for a mirrored role: when
// only one side ended up populated, the first fragment of the populated
// side is cloned onto the empty one.
func (a *Assembler) mirrorLoneSides(c *Creature, group []*PlacedFragment) {
	if len(group) == 0 {
		return
	}
	var left, right []*PlacedFragment
	for _, f := range group {
		if f.Side == SideLeft {
			left = append(left, f)
		} else if f.Side == SideRight {
			right = append(right, f)
		}
	}

	var src *PlacedFragment
	var emptySide Side
	switch {
	case len(left) > 0 && len(right) == 0:
		src = left[0]
		emptySide = SideRight
	case len(right) > 0 && len(left) == 0:
		src = right[0]
		emptySide = SideLeft
	default:
		return
	}

	node := src.Node.Clone()
	node.Name = src.Node.Name + "_mirror"
	c.Root.AddChild(node)

	pos := src.Position()
	pos.X = -pos.X
	node.Transform.SetPosition(pos)

	// Reflect the rotation across the YZ plane.
	q := src.Node.Transform.Rotation
	node.Transform.SetRotation(math.Quaternion{X: q.X, Y: -q.Y, Z: -q.Z, W: q.W})

	c.Fragments = append(c.Fragments, &PlacedFragment{
		Node:     node,
		Role:     src.Role,
		Side:     emptySide,
		Category: src.Category,
		ID:       uuid.New(),
	})
}
