package scene

import (
	"github.com/plumage3d/plumage/engine/math"
)

// Ray is an origin plus a normalized direction in world space.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// RayHit describes the nearest surface intersection found by a cast.
type RayHit struct {
	Point    math.Vec3
	Normal   math.Vec3
	Distance float32
}

// intersectTriangle runs the Möller–Trumbore test against a single
// triangle. Returns the ray parameter t and whether the ray hits in front
// of its origin.
func intersectTriangle(r Ray, v0, v1, v2 math.Vec3) (float32, bool) {
	const epsilon = 1e-7

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	h := r.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, false // parallel to the triangle plane
	}

	f := 1.0 / a
	s := r.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * r.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	if t <= epsilon {
		return 0, false
	}
	return t, true
}

// RaycastMesh casts the ray against every triangle of the node's mesh in
// world space and returns the nearest hit together with the face normal at
// the hit, or nil when nothing is struck.
func RaycastMesh(node *Node, r Ray) *RayHit {
	if node.Mesh == nil || node.Mesh.Geometry == nil {
		return nil
	}
	return RaycastGeometry(node.Mesh.Geometry, node.WorldMatrix(), r)
}

// RaycastGeometry casts the ray against the geometry's triangles under an
// explicit transformation, for callers working in a frame other than the
// node's own world space.
func RaycastGeometry(g *Geometry, world math.Mat4, r Ray) *RayHit {
	var best *RayHit
	for i := 0; i+2 < len(g.Indices); i += 3 {
		v0 := g.Vertices[g.Indices[i+0]].Position.Transform(world)
		v1 := g.Vertices[g.Indices[i+1]].Position.Transform(world)
		v2 := g.Vertices[g.Indices[i+2]].Position.Transform(world)

		t, ok := intersectTriangle(r, v0, v1, v2)
		if !ok {
			continue
		}
		if best == nil || t < best.Distance {
			normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalized()
			best = &RayHit{
				Point:    r.Origin.Add(r.Direction.MulScalar(t)),
				Normal:   normal,
				Distance: t,
			}
		}
	}
	return best
}
