package creature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/plumage3d/plumage/engine/math"
	"github.com/plumage3d/plumage/engine/scene"
)

func skinnable() *scene.Node {
	root := scene.NewNode("creature")
	root.AddChild(scene.NewMeshNode("torso", scene.NewBoxGeometry("torso", 2, 2, 2), &scene.Material{
		Name:          "torso",
		DiffuseColour: math.NewVec4(0.5, 0.5, 0.5, 1),
	}))
	head := scene.NewMeshNode("head", scene.NewBoxGeometry("head", 1, 1, 1), scene.DefaultMaterial())
	head.Transform.SetPosition(math.NewVec3(0, 1.5, 0))
	root.AddChild(head)
	return root
}

func defaultSkinOptions() SkinOptions {
	return SkinOptions{
		PointCount:    400,
		PointSize:     0.05,
		SkinThickness: 0.08,
		Opacity:       1,
	}
}

func TestSampleSkinProducesRequestedCount(t *testing.T) {
	object := skinnable()
	skin := SampleSkin(object, defaultSkinOptions(), rand.New(rand.NewSource(1)))

	require.NotNil(t, skin)
	require.NotNil(t, skin.Points)
	assert.GreaterOrEqual(t, len(skin.Points.Samples), 400)
	assert.Equal(t, float32(1), skin.Points.Opacity)
	assert.Equal(t, "creature_skin", skin.Name)
}

func TestSampleSkinHidesSourceMeshes(t *testing.T) {
	object := skinnable()
	skin := SampleSkin(object, defaultSkinOptions(), rand.New(rand.NewSource(1)))
	require.NotNil(t, skin)

	for _, mn := range object.MeshNodes() {
		assert.False(t, mn.Visible, "%s should be hidden behind the skin", mn.Name)
	}
}

func TestSampleSkinInheritsObjectTransform(t *testing.T) {
	object := skinnable()
	object.Transform.SetPosition(math.NewVec3(3, 0, -1))
	object.Transform.SetScale(math.NewVec3(2, 2, 2))

	skin := SampleSkin(object, defaultSkinOptions(), rand.New(rand.NewSource(1)))
	require.NotNil(t, skin)

	assert.Equal(t, object.Transform.Position, skin.Transform.Position)
	assert.Equal(t, object.Transform.Scale, skin.Transform.Scale)
	assert.Equal(t, object.Transform.Parent, skin.Transform.Parent)
}

func TestSampleSkinSampleRanges(t *testing.T) {
	opts := defaultSkinOptions()
	skin := SampleSkin(skinnable(), opts, rand.New(rand.NewSource(2)))
	require.NotNil(t, skin)

	for _, s := range skin.Points.Samples {
		assert.GreaterOrEqual(t, s.Size, opts.PointSize*0.7)
		assert.LessOrEqual(t, s.Size, opts.PointSize*1.3)
		for _, ch := range []float32{s.Colour.X, s.Colour.Y, s.Colour.Z} {
			assert.GreaterOrEqual(t, ch, float32(0))
			assert.LessOrEqual(t, ch, float32(1))
		}
		assert.Equal(t, float32(1), s.Colour.W)
	}
}

func TestSampleSkinColourJitterStaysNearBase(t *testing.T) {
	opts := defaultSkinOptions()
	// All sub-meshes share a mid-grey base so every channel must land in
	// the jitter band around 0.5.
	base := math.NewVec4(0.5, 0.5, 0.5, 1)
	opts.Colour = &base

	skin := SampleSkin(skinnable(), opts, rand.New(rand.NewSource(3)))
	require.NotNil(t, skin)

	for _, s := range skin.Points.Samples {
		for _, ch := range []float32{s.Colour.X, s.Colour.Y, s.Colour.Z} {
			assert.GreaterOrEqual(t, ch, float32(0.4)-1e-4)
			assert.Less(t, ch, float32(0.6)+1e-4)
		}
	}
}

func TestSampleSkinStaysNearSurfaces(t *testing.T) {
	opts := defaultSkinOptions()
	skin := SampleSkin(skinnable(), opts, rand.New(rand.NewSource(4)))
	require.NotNil(t, skin)

	// Samples live on or fuzzed around the part boxes: torso spans ±1,
	// the head reaches y 2, the growth and fuzz add slack.
	bound := float32(1.0)*surfaceBoxGrow + opts.SkinThickness + 1e-3
	for _, s := range skin.Points.Samples {
		assert.LessOrEqual(t, absf(s.Position.X), bound)
		assert.LessOrEqual(t, absf(s.Position.Z), bound)
		assert.GreaterOrEqual(t, s.Position.Y, -bound)
		assert.LessOrEqual(t, s.Position.Y, float32(2.0)*surfaceBoxGrow+opts.SkinThickness+1e-3)
	}
}

func TestSampleSkinMeshlessObject(t *testing.T) {
	object := scene.NewNode("empty")
	assert.Nil(t, SampleSkin(object, defaultSkinOptions(), rand.New(rand.NewSource(1))))
}

func TestSampleSkinSkipsVertexlessSubMesh(t *testing.T) {
	object := scene.NewNode("creature")
	object.AddChild(scene.NewMeshNode("torso", scene.NewBoxGeometry("torso", 2, 2, 2), scene.DefaultMaterial()))
	broken := scene.NewMeshNode("broken", &scene.Geometry{Name: "broken"}, scene.DefaultMaterial())
	object.AddChild(broken)

	skin := SampleSkin(object, defaultSkinOptions(), rand.New(rand.NewSource(1)))
	require.NotNil(t, skin)
	assert.GreaterOrEqual(t, len(skin.Points.Samples), 400)
}

func TestSampleSkinDegenerateExtents(t *testing.T) {
	// All vertices collapse to one point, so every area proxy is zero; the
	// skin still forms, carried entirely by the padding pass.
	g := &scene.Geometry{Name: "speck"}
	for i := 0; i < 3; i++ {
		g.Vertices = append(g.Vertices, math.Vertex3D{
			Position: math.NewVec3(1, 2, 3),
			Normal:   math.NewVec3Up(),
			Colour:   math.NewVec4One(),
		})
	}
	g.Indices = []uint32{0, 1, 2}

	object := scene.NewNode("creature")
	object.AddChild(scene.NewMeshNode("speck", g, scene.DefaultMaterial()))

	opts := defaultSkinOptions()
	skin := SampleSkin(object, opts, rand.New(rand.NewSource(6)))

	require.NotNil(t, skin)
	require.NotNil(t, skin.Points)
	assert.GreaterOrEqual(t, len(skin.Points.Samples), opts.PointCount)
	for _, s := range skin.Points.Samples {
		assert.True(t, s.Position.Compare(math.NewVec3(1, 2, 3), opts.SkinThickness+1e-4))
	}
}

func TestSampleSkinDeterministicPerSeed(t *testing.T) {
	a := SampleSkin(skinnable(), defaultSkinOptions(), rand.New(rand.NewSource(42)))
	b := SampleSkin(skinnable(), defaultSkinOptions(), rand.New(rand.NewSource(42)))
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.Equal(t, len(a.Points.Samples), len(b.Points.Samples))
	assert.Equal(t, a.Points.Samples[0], b.Points.Samples[0])
	last := len(a.Points.Samples) - 1
	assert.Equal(t, a.Points.Samples[last], b.Points.Samples[last])
}
