package scene

import (
	"github.com/plumage3d/plumage/engine/math"
)

// PointSample is one vertex of a point-cloud skin.
type PointSample struct {
	Position math.Vec3
	Normal   math.Vec3
	Colour   math.Vec4
	Size     float32
}

// PointCloud is the aggregated point-based geometry a sampled skin
// produces. It renders in place of the solid meshes it was sampled from.
type PointCloud struct {
	Samples []PointSample
	Opacity float32
}

func (pc *PointCloud) Clone() *PointCloud {
	out := &PointCloud{
		Samples: make([]PointSample, len(pc.Samples)),
		Opacity: pc.Opacity,
	}
	copy(out.Samples, pc.Samples)
	return out
}

// NewPointCloudNode wraps a point cloud in a node carrying the given
// transform state, so the skin inherits its source object's placement.
func NewPointCloudNode(name string, pc *PointCloud, like *math.Transform) *Node {
	n := NewNode(name)
	n.Points = pc
	if like != nil {
		n.Transform.SetPositionRotationScale(like.Position, like.Rotation, like.Scale)
		n.Transform.Parent = like.Parent
	}
	return n
}
