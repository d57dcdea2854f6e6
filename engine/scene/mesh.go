package scene

import (
	m "math"

	"github.com/plumage3d/plumage/engine/math"
)

func cos64(x float32) float64 { return m.Cos(float64(x)) }
func sin64(x float32) float64 { return m.Sin(float64(x)) }

// Geometry holds one sub-mesh worth of vertex and index data in local space.
type Geometry struct {
	Name     string
	Vertices []math.Vertex3D
	Indices  []uint32
}

// Material carries the little shading state the generator cares about.
type Material struct {
	Name          string
	DiffuseColour math.Vec4
}

// Mesh pairs geometry with its material.
type Mesh struct {
	Geometry *Geometry
	Material *Material
}

func (g *Geometry) Clone() *Geometry {
	out := &Geometry{
		Name:     g.Name,
		Vertices: make([]math.Vertex3D, len(g.Vertices)),
		Indices:  make([]uint32, len(g.Indices)),
	}
	copy(out.Vertices, g.Vertices)
	copy(out.Indices, g.Indices)
	return out
}

func (m *Mesh) Clone() *Mesh {
	out := &Mesh{}
	if m.Geometry != nil {
		out.Geometry = m.Geometry.Clone()
	}
	if m.Material != nil {
		mat := *m.Material
		out.Material = &mat
	}
	return out
}

// DefaultMaterial is the neutral grey used when a fragment file carries no
// material chunk.
func DefaultMaterial() *Material {
	return &Material{
		Name:          "default",
		DiffuseColour: math.NewVec4(0.66, 0.66, 0.66, 1.0),
	}
}

/**
 * @brief Generates an axis-aligned cuboid with the given full dimensions,
 * centered at the local origin, with per-face normals.
 */
func NewBoxGeometry(name string, width, height, depth float32) *Geometry {
	hw := width * 0.5
	hh := height * 0.5
	hd := depth * 0.5

	corners := [8]math.Vec3{
		{X: -hw, Y: -hh, Z: -hd},
		{X: hw, Y: -hh, Z: -hd},
		{X: hw, Y: hh, Z: -hd},
		{X: -hw, Y: hh, Z: -hd},
		{X: -hw, Y: -hh, Z: hd},
		{X: hw, Y: -hh, Z: hd},
		{X: hw, Y: hh, Z: hd},
		{X: -hw, Y: hh, Z: hd},
	}

	// Four corners per face, counter-clockwise seen from outside.
	faces := [6][4]int{
		{4, 5, 6, 7}, // +z
		{1, 0, 3, 2}, // -z
		{5, 1, 2, 6}, // +x
		{0, 4, 7, 3}, // -x
		{7, 6, 2, 3}, // +y
		{0, 1, 5, 4}, // -y
	}

	g := &Geometry{Name: name}
	for _, f := range faces {
		base := uint32(len(g.Vertices))
		for _, ci := range f {
			g.Vertices = append(g.Vertices, math.Vertex3D{
				Position: corners[ci],
				Colour:   math.NewVec4One(),
			})
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	math.GeometryGenerateNormals(g.Vertices, g.Indices)
	return g
}

/**
 * @brief Generates a UV-sphere stretched to the given per-axis radii,
 * centered at the local origin. Normals point radially outward.
 */
func NewEllipsoidGeometry(name string, rx, ry, rz float32, segments, rings int) *Geometry {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	g := &Geometry{Name: name}
	for ring := 0; ring <= rings; ring++ {
		phi := math.K_PI * float32(ring) / float32(rings)
		y := float32(cos64(phi))
		r := float32(sin64(phi))
		for seg := 0; seg <= segments; seg++ {
			theta := math.K_PI_2 * float32(seg) / float32(segments)
			x := r * float32(cos64(theta))
			z := r * float32(sin64(theta))

			// The unit-sphere position doubles as the outward normal
			// before the per-axis stretch.
			g.Vertices = append(g.Vertices, math.Vertex3D{
				Position: math.NewVec3(x*rx, y*ry, z*rz),
				Normal:   math.NewVec3(x, y, z).Normalized(),
				Texcoord: math.Vec2{
					X: float32(seg) / float32(segments),
					Y: float32(ring) / float32(rings),
				},
				Colour: math.NewVec4One(),
			})
		}
	}

	stride := uint32(segments + 1)
	for ring := uint32(0); ring < uint32(rings); ring++ {
		for seg := uint32(0); seg < uint32(segments); seg++ {
			a := ring*stride + seg
			b := a + stride
			g.Indices = append(g.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return g
}
