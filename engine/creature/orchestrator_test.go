package creature

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/plumage3d/plumage/engine/math"
	"github.com/plumage3d/plumage/engine/scene"
)

// catalogFragment mimics a catalog pick: a group node wrapping one mesh
// child, the shape the fragment decoder emits.
func catalogFragment(category string, w, h, d float32) Fragment {
	root := scene.NewNode("fragment")
	root.AddChild(scene.NewMeshNode(category, scene.NewBoxGeometry(category, w, h, d), scene.DefaultMaterial()))
	return Fragment{Category: category, Mesh: root}
}

func fragmentSet(n int) []Fragment {
	out := make([]Fragment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, catalogFragment(fmt.Sprintf("part%d", i), 1, 1, 1))
	}
	return out
}

func TestAssembleEmptyInput(t *testing.T) {
	a := NewAssembler(nil, rand.New(rand.NewSource(1)))
	c := a.Assemble(nil)

	require.NotNil(t, c)
	assert.Empty(t, c.Fragments)
	assert.Nil(t, c.Torso())
	assert.Empty(t, c.Root.Children)
}

func TestAssembleSingleFragment(t *testing.T) {
	a := NewAssembler(nil, rand.New(rand.NewSource(1)))
	c := a.Assemble(fragmentSet(1))

	require.Len(t, c.Fragments, 1)
	torso := c.Torso()
	require.NotNil(t, torso)
	assert.Equal(t, RoleTorso, torso.Role)
	assert.Equal(t, "torso_0", torso.Node.Name)
	assert.Equal(t, math.NewVec3Zero(), torso.Position())
	assert.Equal(t, math.NewVec3One(), torso.Node.Transform.Scale)
	assert.Len(t, c.Root.Children, 1)
}

func TestAssembleRoleDistribution(t *testing.T) {
	cases := []struct {
		fragments          int
		torso, head, belly int
		wings, tails, feet int
		total              int
	}{
		// Two parts: the second becomes the head, nothing to mirror.
		{fragments: 2, torso: 1, head: 1, total: 2},
		// Three parts: head and belly only.
		{fragments: 3, torso: 1, head: 1, belly: 1, total: 3},
		// Four parts: one remaining, reserved for a foot; the lone foot is
		// mirrored to keep left/right parity.
		{fragments: 4, torso: 1, head: 1, belly: 1, feet: 2, total: 5},
		// Five parts: two remaining, one wing plus a foot, both mirrored.
		{fragments: 5, torso: 1, head: 1, belly: 1, wings: 2, feet: 2, total: 7},
		// Seven parts: two wings dealt to opposite sides, a tail and a
		// mirrored foot.
		{fragments: 7, torso: 1, head: 1, belly: 1, wings: 2, tails: 1, feet: 2, total: 8},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d_fragments", tc.fragments), func(t *testing.T) {
			a := NewAssembler(nil, rand.New(rand.NewSource(7)))
			c := a.Assemble(fragmentSet(tc.fragments))

			assert.Equal(t, tc.torso, c.RoleCount(RoleTorso))
			assert.Equal(t, tc.head, c.RoleCount(RoleHead))
			assert.Equal(t, tc.belly, c.RoleCount(RoleBelly))
			assert.Equal(t, tc.wings, c.RoleCount(RoleWing))
			assert.Equal(t, tc.tails, c.RoleCount(RoleTail))
			assert.Equal(t, tc.feet, c.RoleCount(RoleFoot))
			assert.Len(t, c.Fragments, tc.total)
			assert.Len(t, c.Root.Children, tc.total)
		})
	}
}

func TestAssembleAnatomicalLayout(t *testing.T) {
	a := NewAssembler(nil, rand.New(rand.NewSource(3)))
	c := a.Assemble(fragmentSet(7))

	byRole := map[Role][]*PlacedFragment{}
	for _, f := range c.Fragments {
		byRole[f.Role] = append(byRole[f.Role], f)
	}

	require.Len(t, byRole[RoleHead], 1)
	assert.Greater(t, byRole[RoleHead][0].Position().Y, float32(0), "head sits above the torso")

	require.Len(t, byRole[RoleBelly], 1)
	assert.Less(t, byRole[RoleBelly][0].Position().Y, float32(0), "belly hangs below the torso")

	require.Len(t, byRole[RoleTail], 1)
	assert.Greater(t, byRole[RoleTail][0].Position().Z, float32(0), "tail trails behind")

	for _, f := range byRole[RoleFoot] {
		assert.Less(t, f.Position().Y, float32(0), "feet point down")
	}

	// Both wings exist and occupy opposite sides of the body.
	wings := byRole[RoleWing]
	require.Len(t, wings, 2)
	assert.Less(t, wings[0].Position().X*wings[1].Position().X, float32(0))
}

func TestAssembleMirrorsLoneFoot(t *testing.T) {
	a := NewAssembler(nil, rand.New(rand.NewSource(5)))
	c := a.Assemble(fragmentSet(4))

	var feet []*PlacedFragment
	for _, f := range c.Fragments {
		if f.Role == RoleFoot {
			feet = append(feet, f)
		}
	}
	require.Len(t, feet, 2)
	assert.NotEqual(t, feet[0].Side, feet[1].Side)
	assert.InDelta(t, float64(-feet[0].Position().X), float64(feet[1].Position().X), 1e-5)
	assert.InDelta(t, float64(feet[0].Position().Y), float64(feet[1].Position().Y), 1e-5)
	assert.Contains(t, feet[1].Node.Name, "_mirror")
	assert.NotSame(t, feet[0].Node, feet[1].Node)
}

func TestAssembleDeterministicPerSeed(t *testing.T) {
	build := func(seed uint64) []string {
		a := NewAssembler(nil, rand.New(rand.NewSource(seed)))
		c := a.Assemble(fragmentSet(7))
		out := make([]string, 0, len(c.Fragments))
		for _, f := range c.Fragments {
			out = append(out, fmt.Sprintf("%s:%s", f.Role.String(), f.Category))
		}
		return out
	}

	assert.Equal(t, build(11), build(11))
}
