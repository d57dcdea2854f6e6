package scene

import (
	"github.com/plumage3d/plumage/engine/math"
)

// Node is one element of the scene graph the generator emits. A node can
// carry a mesh, a point cloud, both, or neither (a pure grouping node).
// The caller owns returned nodes and inserts them into its own scene.
type Node struct {
	Name      string
	Transform *math.Transform
	Visible   bool

	Mesh   *Mesh
	Points *PointCloud

	Children []*Node
}

func NewNode(name string) *Node {
	return &Node{
		Name:      name,
		Transform: math.TransformCreate(),
		Visible:   true,
	}
}

func NewMeshNode(name string, geometry *Geometry, material *Material) *Node {
	n := NewNode(name)
	n.Mesh = &Mesh{
		Geometry: geometry,
		Material: material,
	}
	return n
}

// AddChild attaches child to n and parents its transform so world
// matrices compose through the hierarchy.
func (n *Node) AddChild(child *Node) {
	child.Transform.Parent = n.Transform
	n.Children = append(n.Children, child)
}

// Traverse visits n and every descendant in depth-first order.
func (n *Node) Traverse(visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		c.Traverse(visit)
	}
}

// MeshNodes collects every descendant (including n itself) that carries
// renderable mesh geometry.
func (n *Node) MeshNodes() []*Node {
	var out []*Node
	n.Traverse(func(node *Node) {
		if node.Mesh != nil && node.Mesh.Geometry != nil {
			out = append(out, node)
		}
	})
	return out
}

// WorldMatrix returns the node's full world transformation.
func (n *Node) WorldMatrix() math.Mat4 {
	return n.Transform.GetWorld()
}

// Clone produces a deep, aliasing-free copy of the node subtree. Geometry
// and material data are structurally copied so mutating a clone never
// touches the source; the clone's transform is detached from any parent.
func (n *Node) Clone() *Node {
	out := &Node{
		Name:    n.Name,
		Visible: n.Visible,
	}
	out.Transform = math.TransformCreate()
	out.Transform.SetPositionRotationScale(n.Transform.Position, n.Transform.Rotation, n.Transform.Scale)

	if n.Mesh != nil {
		out.Mesh = n.Mesh.Clone()
	}
	if n.Points != nil {
		out.Points = n.Points.Clone()
	}
	for _, c := range n.Children {
		out.AddChild(c.Clone())
	}
	return out
}

// WorldExtents computes the min/max extents of every mesh vertex in the
// subtree, transformed to world space. The second return is false when the
// subtree contains no geometry.
func (n *Node) WorldExtents() (math.Extents3D, bool) {
	e := math.Extents3D{
		Min: math.NewVec3(math.K_INFINITY, math.K_INFINITY, math.K_INFINITY),
		Max: math.NewVec3(-math.K_INFINITY, -math.K_INFINITY, -math.K_INFINITY),
	}
	found := false
	for _, mn := range n.MeshNodes() {
		world := mn.WorldMatrix()
		for _, v := range mn.Mesh.Geometry.Vertices {
			p := v.Position.Transform(world)
			e.Min.X = math.Min(e.Min.X, p.X)
			e.Min.Y = math.Min(e.Min.Y, p.Y)
			e.Min.Z = math.Min(e.Min.Z, p.Z)
			e.Max.X = math.Max(e.Max.X, p.X)
			e.Max.Y = math.Max(e.Max.Y, p.Y)
			e.Max.Z = math.Max(e.Max.Z, p.Z)
			found = true
		}
	}
	return e, found
}

// Bounds derives an axis-aligned bounding box for the subtree at the given
// uniform scale factor. A factor below 1 yields the tolerant collision
// volume used during placement rather than the true extents.
func (n *Node) Bounds(scale float32) (math.Box3, bool) {
	e, ok := n.WorldExtents()
	if !ok {
		return math.Box3{}, false
	}
	return math.NewBox3FromExtents(e).Scaled(scale), true
}
