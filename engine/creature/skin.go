package creature

import (
	"golang.org/x/exp/rand"

	"github.com/plumage3d/plumage/engine/core"
	"github.com/plumage3d/plumage/engine/math"
	"github.com/plumage3d/plumage/engine/scene"
)

// SkinOptions control the point-cloud re-skin of an assembled creature.
type SkinOptions struct {
	// PointCount is the number of samples to aim for; padding guarantees
	// at least this many in the output.
	PointCount int
	// PointSize is the base splat size, jittered per sample.
	PointSize float32
	// SkinThickness is the depth of the fuzz shell around the surface.
	SkinThickness float32
	// Colour overrides each sub-mesh's own base colour when non-nil.
	Colour *math.Vec4
	// Opacity carried through to the output cloud.
	Opacity float32
}

// Fractions of each sub-mesh budget spent on vertex sub-sampling versus
// ray-projection surface sampling.
const (
	vertexSampleShare = 0.30
	surfaceBoxGrow    = 1.10
	fallbackVertexCap = 100
)

// sampledMesh is one renderable sub-mesh with its transform taken
// relative to the object being skinned, so the output cloud can inherit
// the object's own transform without double-applying it.
type sampledMesh struct {
	node   *scene.Node
	matrix math.Mat4
	box    math.Box3
	proxy  float32
}

// SampleSkin converts the object's mesh hierarchy into a sparse colored
// point-based skin and hides the source meshes so only the skin renders.
// Returns nil when the object holds no renderable sub-mesh; sub-meshes
// with no position data are skipped with a warning. The returned node
// inherits the object's position, rotation and scale.
func SampleSkin(object *scene.Node, opts SkinOptions, rng *rand.Rand) *scene.Node {
	meshes := collectMeshes(object)
	if len(meshes) == 0 {
		return nil
	}

	totalProxy := float32(0)
	for _, sm := range meshes {
		totalProxy += sm.proxy
	}

	pc := &scene.PointCloud{Opacity: opts.Opacity}

	// Fully degenerate extents leave no area to weight the budgets by;
	// the padding pass alone then supplies the requested count.
	if totalProxy > 0 {
		for _, sm := range meshes {
			budget := int(float32(opts.PointCount) * sm.proxy / totalProxy)
			if budget <= 0 {
				continue
			}
			vertexBudget := int(float32(budget) * vertexSampleShare)
			surfaceBudget := budget - vertexBudget

			sampleVertices(pc, sm, vertexBudget, opts, rng)
			sampleSurface(pc, sm, surfaceBudget, opts, rng)
		}
	}

	padSamples(pc, meshes, opts, rng)

	for _, sm := range meshes {
		sm.node.Visible = false
	}

	return scene.NewPointCloudNode(object.Name+"_skin", pc, object.Transform)
}

// collectMeshes gathers renderable sub-meshes with matrices relative to
// the object root, dropping malformed geometry.
func collectMeshes(object *scene.Node) []sampledMesh {
	var out []sampledMesh

	var walk func(n *scene.Node, parent math.Mat4)
	walk = func(n *scene.Node, parent math.Mat4) {
		// The object's own transform is inherited by the output node
		// rather than baked into the samples.
		acc := math.NewMat4Identity()
		if n != object {
			acc = n.Transform.GetLocal().Mul(parent)
		}

		if n.Mesh != nil && n.Mesh.Geometry != nil {
			if len(n.Mesh.Geometry.Vertices) == 0 {
				core.LogWarn("skin: sub-mesh %q has no position data, skipping", n.Name)
			} else {
				var points []math.Vec3
				for _, v := range n.Mesh.Geometry.Vertices {
					points = append(points, v.Position.Transform(acc))
				}
				box := math.NewBox3FromPoints(points)
				out = append(out, sampledMesh{
					node:   n,
					matrix: acc,
					box:    box,
					proxy:  box.AreaProxy(),
				})
			}
		}
		for _, c := range n.Children {
			walk(c, acc)
		}
	}
	walk(object, math.NewMat4Identity())
	return out
}

// sampleVertices strides through the vertex buffer and lifts each sampled
// point off the surface along its normal.
func sampleVertices(pc *scene.PointCloud, sm sampledMesh, budget int, opts SkinOptions, rng *rand.Rand) {
	if budget <= 0 {
		return
	}
	verts := sm.node.Mesh.Geometry.Vertices
	stride := len(verts) / budget
	if stride < 1 {
		stride = 1
	}

	taken := 0
	for i := 0; i < len(verts) && taken < budget; i += stride {
		v := verts[i]
		pos := v.Position.Transform(sm.matrix)
		normal := v.Normal.TransformDirection(sm.matrix).Normalized()
		pos = pos.Add(normal.MulScalar(rng.Float32() * opts.SkinThickness))
		pc.Samples = append(pc.Samples, finishSample(pos, normal, sm, opts, rng))
		taken++
	}
	// Sparse buffers can stride past the budget; the padding pass makes
	// up the difference.
}

// sampleSurface throws random probe points inside the enlarged bounding
// box and projects them onto the surface with axis-aligned rays.
func sampleSurface(pc *scene.PointCloud, sm sampledMesh, budget int, opts SkinOptions, rng *rand.Rand) {
	g := sm.node.Mesh.Geometry
	maxExtent := sm.box.MaxExtent() * 2.0
	grown := sm.box.Scaled(surfaceBoxGrow)

	axes := []math.Vec3{
		math.NewVec3Right(), math.NewVec3Left(),
		math.NewVec3Up(), math.NewVec3Down(),
		math.NewVec3Back(), math.NewVec3Forward(),
	}

	for n := 0; n < budget; n++ {
		probe := randomPointInBox(grown, rng)

		var best *scene.RayHit
		for _, axis := range axes {
			hit := scene.RaycastGeometry(g, sm.matrix, scene.Ray{Origin: probe, Direction: axis})
			if hit == nil || hit.Distance > maxExtent {
				continue
			}
			if best == nil || hit.Distance < best.Distance {
				best = hit
			}
		}

		var pos, normal math.Vec3
		if best != nil {
			pos = best.Point
			normal = best.Normal
		} else {
			// No ray connected; fall back to the nearest of the first
			// vertices as a cheap stand-in for nearest-vertex search.
			pos, normal = nearestLeadingVertex(g, sm.matrix, probe)
		}
		pc.Samples = append(pc.Samples, finishSample(pos, normal, sm, opts, rng))
	}
}

// finishSample applies the shared fuzz: two-sided normal offset, colour
// jitter per channel in [0.8, 1.2) clamped to range, and size jitter in
// [0.7, 1.3).
func finishSample(pos, normal math.Vec3, sm sampledMesh, opts SkinOptions, rng *rand.Rand) scene.PointSample {
	pos = pos.Add(normal.MulScalar((rng.Float32() - 0.5) * opts.SkinThickness))

	base := baseColour(sm.node, opts)
	colour := math.NewVec4(
		math.Clamp(base.X*jitter(rng, 0.8, 1.2), 0, 1),
		math.Clamp(base.Y*jitter(rng, 0.8, 1.2), 0, 1),
		math.Clamp(base.Z*jitter(rng, 0.8, 1.2), 0, 1),
		base.W,
	)

	return scene.PointSample{
		Position: pos,
		Normal:   normal,
		Colour:   colour,
		Size:     opts.PointSize * jitter(rng, 0.7, 1.3),
	}
}

// padSamples fills any shortfall against the requested count with loose
// points inside a random sub-mesh's box, biased to face upward.
func padSamples(pc *scene.PointCloud, meshes []sampledMesh, opts SkinOptions, rng *rand.Rand) {
	for len(pc.Samples) < opts.PointCount {
		sm := meshes[rng.Intn(len(meshes))]
		pos := randomPointInBox(sm.box, rng)
		normal := math.NewVec3(
			rng.Float32()*2-1,
			rng.Float32(), // vertical component forced non-negative
			rng.Float32()*2-1,
		).Normalized()
		pc.Samples = append(pc.Samples, finishSample(pos, normal, sm, opts, rng))
	}
}

func baseColour(node *scene.Node, opts SkinOptions) math.Vec4 {
	if opts.Colour != nil {
		return *opts.Colour
	}
	if node.Mesh.Material != nil {
		return node.Mesh.Material.DiffuseColour
	}
	return scene.DefaultMaterial().DiffuseColour
}

func nearestLeadingVertex(g *scene.Geometry, matrix math.Mat4, probe math.Vec3) (math.Vec3, math.Vec3) {
	limit := len(g.Vertices)
	if limit > fallbackVertexCap {
		limit = fallbackVertexCap
	}
	bestDist := math.K_INFINITY
	var pos, normal math.Vec3
	for i := 0; i < limit; i++ {
		p := g.Vertices[i].Position.Transform(matrix)
		if d := p.Distance(probe); d < bestDist {
			bestDist = d
			pos = p
			normal = g.Vertices[i].Normal.TransformDirection(matrix).Normalized()
		}
	}
	return pos, normal
}

func randomPointInBox(box math.Box3, rng *rand.Rand) math.Vec3 {
	return math.NewVec3(
		box.Center.X+(rng.Float32()*2-1)*box.HalfExtent.X,
		box.Center.Y+(rng.Float32()*2-1)*box.HalfExtent.Y,
		box.Center.Z+(rng.Float32()*2-1)*box.HalfExtent.Z,
	)
}

func jitter(rng *rand.Rand, lo, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}
