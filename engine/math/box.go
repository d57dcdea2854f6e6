package math

/**
 * @brief An axis-aligned box described by its center point and half extents.
 * Used as the bounding volume for collision-tolerant placement tests.
 */
type Box3 struct {
	/** @brief The center point of the box. */
	Center Vec3
	/** @brief Half the size of the box along each axis. */
	HalfExtent Vec3
}

/**
 * @brief Creates a box from min/max extents.
 */
func NewBox3FromExtents(e Extents3D) Box3 {
	return Box3{
		Center:     e.Min.Add(e.Max).MulScalar(0.5),
		HalfExtent: e.Max.Sub(e.Min).MulScalar(0.5),
	}
}

/**
 * @brief Creates a box enclosing the given points. Returns a zero box
 * for an empty point set.
 */
func NewBox3FromPoints(points []Vec3) Box3 {
	if len(points) == 0 {
		return Box3{}
	}
	e := Extents3D{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		e.Min.X = Min(e.Min.X, p.X)
		e.Min.Y = Min(e.Min.Y, p.Y)
		e.Min.Z = Min(e.Min.Z, p.Z)
		e.Max.X = Max(e.Max.X, p.X)
		e.Max.Y = Max(e.Max.Y, p.Y)
		e.Max.Z = Max(e.Max.Z, p.Z)
	}
	return NewBox3FromExtents(e)
}

func (b Box3) Extents() Extents3D {
	return Extents3D{
		Min: b.Center.Sub(b.HalfExtent),
		Max: b.Center.Add(b.HalfExtent),
	}
}

/**
 * @brief Returns a copy of the box with the half extents uniformly scaled
 * about the box's own center. A factor below 1 shrinks the box, which makes
 * intersection tests tolerant of slight visual overlap.
 */
func (b Box3) Scaled(factor float32) Box3 {
	return Box3{
		Center:     b.Center,
		HalfExtent: b.HalfExtent.MulScalar(factor),
	}
}

/**
 * @brief Axis-aligned intersection test between the two boxes.
 */
func (b Box3) Intersects(other Box3) bool {
	if kabs(b.Center.X-other.Center.X) > b.HalfExtent.X+other.HalfExtent.X {
		return false
	}
	if kabs(b.Center.Y-other.Center.Y) > b.HalfExtent.Y+other.HalfExtent.Y {
		return false
	}
	if kabs(b.Center.Z-other.Center.Z) > b.HalfExtent.Z+other.HalfExtent.Z {
		return false
	}
	return true
}

/**
 * @brief Projects the half extents onto the given axis and returns the
 * resulting radius. The axis is expected to be normalized. This is the
 * support distance of the box surface from its center along the axis.
 */
func (b Box3) ProjectedRadius(axis Vec3) float32 {
	return kabs(b.HalfExtent.X*axis.X) +
		kabs(b.HalfExtent.Y*axis.Y) +
		kabs(b.HalfExtent.Z*axis.Z)
}

/**
 * @brief Returns the sum of the three pairwise extent products
 * (x*y + y*z + x*z). A cheap stand-in for surface area when only relative
 * weights between boxes matter.
 */
func (b Box3) AreaProxy() float32 {
	sx := b.HalfExtent.X * 2.0
	sy := b.HalfExtent.Y * 2.0
	sz := b.HalfExtent.Z * 2.0
	return sx*sy + sy*sz + sx*sz
}

/**
 * @brief Returns the length of the box diagonal from center to corner; the
 * largest distance any contained point can be from the center.
 */
func (b Box3) MaxExtent() float32 {
	return b.HalfExtent.Length()
}
