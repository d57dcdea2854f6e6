package creature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumage3d/plumage/engine/math"
	"github.com/plumage3d/plumage/engine/scene"
)

// placedBox builds a placed fragment backed by a box mesh of the given full
// extents, positioned at the origin.
func placedBox(t *testing.T, name string, w, h, d float32) *PlacedFragment {
	t.Helper()
	node := scene.NewMeshNode(name, scene.NewBoxGeometry(name, w, h, d), scene.DefaultMaterial())
	return &PlacedFragment{Node: node, Role: RoleTorso, Side: SideNone}
}

func TestOverlaps(t *testing.T) {
	p := NewPlacer(nil)

	a := math.Box3{Center: math.NewVec3Zero(), HalfExtent: math.NewVec3One()}
	b := math.Box3{Center: math.NewVec3(1.5, 0, 0), HalfExtent: math.NewVec3One()}
	far := math.Box3{Center: math.NewVec3(10, 0, 0), HalfExtent: math.NewVec3One()}

	assert.True(t, p.Overlaps(a, b, 1.0))
	assert.False(t, p.Overlaps(a, far, 1.0))

	// At 0.7 tolerance the shrunken volumes (half extent 0.7 each) no
	// longer span the 1.5 gap, so the slight overlap is accepted.
	assert.False(t, p.Overlaps(a, b, 0.7))
}

func TestSnapPositionJustTouching(t *testing.T) {
	p := NewPlacer(nil)

	anchor := math.Box3{Center: math.NewVec3Zero(), HalfExtent: math.NewVec3One()}
	box := math.Box3{Center: math.NewVec3(5, 5, 5), HalfExtent: math.NewVec3One()}

	// Zero penetration puts the surfaces exactly in contact.
	center := p.SnapPosition(box, anchor, math.NewVec3Right(), 0)
	assert.True(t, center.Compare(math.NewVec3(2, 0, 0), 1e-5))

	// Direction need not be normalized on entry.
	scaled := p.SnapPosition(box, anchor, math.NewVec3(10, 0, 0), 0)
	assert.True(t, scaled.Compare(center, 1e-5))
}

func TestSnapPositionPenetrationMonotonic(t *testing.T) {
	p := NewPlacer(nil)

	anchor := math.Box3{Center: math.NewVec3Zero(), HalfExtent: math.NewVec3(1, 2, 1)}
	box := math.Box3{Center: math.NewVec3Zero(), HalfExtent: math.NewVec3(0.5, 0.5, 0.5)}
	dir := math.NewVec3Up()

	prev := math.K_INFINITY
	for _, penetration := range []float32{0, -0.1, -0.2, -0.3, -0.4} {
		center := p.SnapPosition(box, anchor, dir, penetration)
		sep := center.Distance(anchor.Center)
		assert.Less(t, sep, prev, "penetration %f must pull the box closer", penetration)
		prev = sep
	}
}

func TestResolvePlacementNothingPlaced(t *testing.T) {
	p := NewPlacer(nil)
	f := placedBox(t, "head", 1, 1, 1)

	initial := math.NewVec3(0, 3, 0)
	got := p.ResolvePlacement(f, nil, initial, math.NewVec3Up(), -0.3)

	assert.Equal(t, initial, got)
	assert.Equal(t, initial, f.Position())
}

func TestResolvePlacementAcceptsCollisionFreeInitial(t *testing.T) {
	p := NewPlacer(nil)
	torso := placedBox(t, "torso", 2, 2, 2)
	head := placedBox(t, "head", 1, 1, 1)

	initial := math.NewVec3(0, 10, 0)
	got := p.ResolvePlacement(head, []*PlacedFragment{torso}, initial, math.NewVec3Up(), -0.3)
	assert.Equal(t, initial, got)
}

func TestResolvePlacementSeparatesCollision(t *testing.T) {
	tuning := DefaultTuning()
	p := NewPlacer(tuning)
	torso := placedBox(t, "torso", 2, 2, 2)
	head := placedBox(t, "head", 1, 1, 1)

	// Start fully buried in the torso.
	got := p.ResolvePlacement(head, []*PlacedFragment{torso}, math.NewVec3Zero(), math.NewVec3Up(), 0)

	assert.Greater(t, got.Y, float32(0))

	headBox, ok := head.Bounds(1.0)
	require.True(t, ok)
	torsoBox, ok := torso.Bounds(1.0)
	require.True(t, ok)
	assert.False(t, p.Overlaps(headBox, torsoBox, tuning.PlacementTolerance))
}

func TestResolvePlacementDegenerateDirection(t *testing.T) {
	p := NewPlacer(nil)
	torso := placedBox(t, "torso", 2, 2, 2)
	head := placedBox(t, "head", 1, 1, 1)

	// With no usable direction the search has no candidates and no nudge;
	// the round budget runs out and the initial position stands.
	initial := math.NewVec3Zero()
	got := p.ResolvePlacement(head, []*PlacedFragment{torso}, initial, math.NewVec3Zero(), 0)
	assert.Equal(t, initial, got)
}

func TestResolvePlacementGeometrylessFragment(t *testing.T) {
	p := NewPlacer(nil)
	torso := placedBox(t, "torso", 2, 2, 2)
	ghost := &PlacedFragment{Node: scene.NewNode("ghost"), Role: RoleHead}

	initial := math.NewVec3(0, 1, 0)
	got := p.ResolvePlacement(ghost, []*PlacedFragment{torso}, initial, math.NewVec3Up(), 0)
	assert.Equal(t, initial, got)
}
