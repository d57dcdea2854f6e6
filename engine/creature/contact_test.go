package creature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumage3d/plumage/engine/math"
	"github.com/plumage3d/plumage/engine/scene"
)

func allTouchSomething(cp *ContactPass, placed []*PlacedFragment) bool {
	for _, f := range placed {
		if !cp.hasContact(f, othersOf(placed, f)) {
			return false
		}
	}
	return true
}

func TestEnsureConnectivityPullsStrayIn(t *testing.T) {
	cp := NewContactPass(nil)

	torso := placedBox(t, "torso", 2, 2, 2)
	head := placedBox(t, "head", 1, 1, 1)
	head.SetPosition(math.NewVec3(0, 8, 0))

	placed := []*PlacedFragment{torso, head}
	require.False(t, allTouchSomething(cp, placed))

	cp.EnsureConnectivity(placed)

	assert.True(t, allTouchSomething(cp, placed))
	gap := torso.Position().Distance(head.Position())
	assert.Less(t, gap, float32(8))
}

func TestEnsureConnectivityLeavesTouchingPairAlone(t *testing.T) {
	cp := NewContactPass(nil)

	torso := placedBox(t, "torso", 2, 2, 2)
	head := placedBox(t, "head", 1, 1, 1)
	head.SetPosition(math.NewVec3(0, 1.2, 0))

	placed := []*PlacedFragment{torso, head}
	require.True(t, allTouchSomething(cp, placed))

	cp.EnsureConnectivity(placed)

	assert.Equal(t, math.NewVec3Zero(), torso.Position())
	assert.Equal(t, math.NewVec3(0, 1.2, 0), head.Position())
}

func TestEnsureConnectivitySingleFragmentNoop(t *testing.T) {
	cp := NewContactPass(nil)
	torso := placedBox(t, "torso", 2, 2, 2)

	cp.EnsureConnectivity([]*PlacedFragment{torso})
	assert.Equal(t, math.NewVec3Zero(), torso.Position())
}

func TestEnsureConnectivitySkipsGeometrylessFragments(t *testing.T) {
	cp := NewContactPass(nil)
	torso := placedBox(t, "torso", 2, 2, 2)
	ghost := &PlacedFragment{Node: scene.NewNode("ghost"), Role: RoleHead}
	ghost.SetPosition(math.NewVec3(0, 9, 0))

	cp.EnsureConnectivity([]*PlacedFragment{torso, ghost})
	assert.Equal(t, math.NewVec3(0, 9, 0), ghost.Position())
	assert.Equal(t, math.NewVec3Zero(), torso.Position())
}

// Two wing-like fragments on the same side can both touch the torso yet
// not each other; the side reinforcement pass closes that gap.
func TestReinforceSidesConnectsSameSideWings(t *testing.T) {
	cp := NewContactPass(nil)

	torso := placedBox(t, "torso", 2, 2, 2)
	wingA := placedBox(t, "wing_a", 1, 0.4, 1)
	wingB := placedBox(t, "wing_b", 1, 0.4, 1)
	wingA.Side = SideLeft
	wingB.Side = SideLeft
	wingA.SetPosition(math.NewVec3(-1.3, 0, 0))
	wingB.SetPosition(math.NewVec3(-0.3, 0, -1.3))

	placed := []*PlacedFragment{torso, wingA, wingB}
	// Every fragment already touches the torso, but the wings miss each
	// other.
	require.True(t, allTouchSomething(cp, placed))
	require.False(t, cp.hasContact(wingB, []*PlacedFragment{wingA}))

	cp.EnsureConnectivity(placed)

	assert.True(t, cp.hasContact(wingB, []*PlacedFragment{wingA}))
	assert.Less(t, wingB.Position().X, float32(0), "the wing stays on its own side")
}
