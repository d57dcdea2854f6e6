package creature

import (
	"github.com/google/uuid"

	"github.com/plumage3d/plumage/engine/math"
	"github.com/plumage3d/plumage/engine/scene"
)

// Role is the anatomical slot a fragment was assigned during assembly.
type Role int

const (
	RoleTorso Role = iota
	RoleHead
	RoleBelly
	RoleWing
	RoleTail
	RoleFoot
)

func (r Role) String() string {
	switch r {
	case RoleTorso:
		return "torso"
	case RoleHead:
		return "head"
	case RoleBelly:
		return "belly"
	case RoleWing:
		return "wing"
	case RoleTail:
		return "tail"
	case RoleFoot:
		return "foot"
	}
	return "unknown"
}

// Side marks which half of the body a mirrored role occupies.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

// Fragment is one catalog pick handed to the orchestrator: a cloned mesh
// subtree plus the category it was drawn from. The category is kept for
// provenance only; role assignment deliberately ignores it.
type Fragment struct {
	Category string
	Mesh     *scene.Node
}

// PlacedFragment is a fragment after assembly gave it a role and a
// resolved position. The same instance is mutated in place by the
// placement engine and the contact pass; it is never re-created.
type PlacedFragment struct {
	Node     *scene.Node
	Role     Role
	Side     Side
	Category string
	ID       uuid.UUID
}

// Bounds derives the fragment's world-space bounding volume at the given
// uniform scale. The second return is false for fragments with no
// geometry.
func (f *PlacedFragment) Bounds(scale float32) (math.Box3, bool) {
	return f.Node.Bounds(scale)
}

// Position returns the fragment node's local position.
func (f *PlacedFragment) Position() math.Vec3 {
	return f.Node.Transform.Position
}

// SetPosition moves the fragment node.
func (f *PlacedFragment) SetPosition(p math.Vec3) {
	f.Node.Transform.SetPosition(p)
}

// Creature is one assembled specimen: an ordered set of placed fragments
// under a single root group node, torso first.
type Creature struct {
	Root      *scene.Node
	Fragments []*PlacedFragment

	// Skin is the point-cloud node once SampleSkin ran, nil before.
	Skin *scene.Node
}

// Torso returns the anchor fragment, or nil for an empty creature.
func (c *Creature) Torso() *PlacedFragment {
	if len(c.Fragments) == 0 {
		return nil
	}
	return c.Fragments[0]
}

// RoleCount tallies how many placed fragments carry the given role.
func (c *Creature) RoleCount(role Role) int {
	n := 0
	for _, f := range c.Fragments {
		if f.Role == role {
			n++
		}
	}
	return n
}
