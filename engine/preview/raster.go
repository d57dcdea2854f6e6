package preview

import (
	"image"
	m "math"
	"sort"

	"github.com/plumage3d/plumage/engine/math"
	"github.com/plumage3d/plumage/engine/scene"
)

// RenderOptions shape one orthographic snapshot of a point cloud.
type RenderOptions struct {
	// Size is the edge of the square output image in pixels.
	Size int
	// Supersample renders at Size×factor internally and filters down,
	// which keeps small splats from shimmering. 1 disables it.
	Supersample int
	// YawDeg spins the subject about the vertical axis before projection.
	YawDeg float32
	// Margin is the fraction of the frame left empty around the subject.
	Margin float32
}

func defaultOptions(opts RenderOptions) RenderOptions {
	if opts.Size <= 0 {
		opts.Size = 512
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 2
	}
	if opts.Margin <= 0 {
		opts.Margin = 0.08
	}
	return opts
}

// RenderPointCloud draws the node's point cloud as depth-sorted circular
// splats under an orthographic camera looking down -z. Returns nil when
// the node carries no samples.
func RenderPointCloud(node *scene.Node, opts RenderOptions) *image.NRGBA {
	opts = defaultOptions(opts)

	samples := gatherWorldSamples(node, opts.YawDeg)
	if len(samples) == 0 {
		return nil
	}

	renderSize := opts.Size * opts.Supersample
	img := image.NewNRGBA(image.Rect(0, 0, renderSize, renderSize))

	// Fit the cloud into the frame.
	var points []math.Vec3
	for _, s := range samples {
		points = append(points, s.Position)
	}
	box := math.NewBox3FromPoints(points)
	spread := math.Max(box.HalfExtent.X, box.HalfExtent.Y)
	if spread < math.K_FLOAT_EPSILON {
		spread = 1
	}
	usable := float32(renderSize) * (1 - 2*opts.Margin)
	pxPerUnit := usable / (spread * 2)

	// Far splats first so near ones paint over them.
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Position.Z < samples[j].Position.Z
	})

	half := float32(renderSize) * 0.5
	opacity := float32(1)
	if node.Points.Opacity > 0 {
		opacity = node.Points.Opacity
	}
	for _, s := range samples {
		cx := half + (s.Position.X-box.Center.X)*pxPerUnit
		cy := half - (s.Position.Y-box.Center.Y)*pxPerUnit
		radius := s.Size * pxPerUnit * 0.5
		if radius < 1 {
			radius = 1
		}
		splat(img, cx, cy, radius, s.Colour, opacity)
	}

	return Downsample(img, opts.Size)
}

// gatherWorldSamples applies the node's transform plus the preview yaw to
// every sample position.
func gatherWorldSamples(node *scene.Node, yawDeg float32) []scene.PointSample {
	if node == nil || node.Points == nil {
		return nil
	}
	world := node.WorldMatrix()
	yaw := float64(yawDeg) * m.Pi / 180
	sinY := float32(m.Sin(yaw))
	cosY := float32(m.Cos(yaw))

	out := make([]scene.PointSample, 0, len(node.Points.Samples))
	for _, s := range node.Points.Samples {
		p := s.Position.Transform(world)
		rotated := math.NewVec3(
			p.X*cosY+p.Z*sinY,
			p.Y,
			-p.X*sinY+p.Z*cosY,
		)
		s.Position = rotated
		out = append(out, s)
	}
	return out
}

// splat paints one soft-edged disc with source-over blending.
func splat(img *image.NRGBA, cx, cy, radius float32, colour math.Vec4, opacity float32) {
	minX := int(cx - radius - 1)
	maxX := int(cx + radius + 1)
	minY := int(cy - radius - 1)
	maxY := int(cy + radius + 1)
	b := img.Bounds()

	r2 := radius * radius
	for y := minY; y <= maxY; y++ {
		if y < b.Min.Y || y >= b.Max.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < b.Min.X || x >= b.Max.X {
				continue
			}
			dx := float32(x) + 0.5 - cx
			dy := float32(y) + 0.5 - cy
			d2 := dx*dx + dy*dy
			if d2 > r2 {
				continue
			}
			// Fade toward the rim.
			fade := 1 - d2/r2
			alpha := math.Clamp(colour.W*opacity*(0.4+0.6*fade), 0, 1)
			blend(img, x, y, colour, alpha)
		}
	}
}

func blend(img *image.NRGBA, x, y int, colour math.Vec4, alpha float32) {
	i := img.PixOffset(x, y)
	sr := colour.X * 255
	sg := colour.Y * 255
	sb := colour.Z * 255

	da := float32(img.Pix[i+3]) / 255
	outA := alpha + da*(1-alpha)
	if outA <= 0 {
		return
	}
	blendCh := func(dst uint8, src float32) uint8 {
		v := (src*alpha + float32(dst)*da*(1-alpha)) / outA
		return uint8(math.Clamp(v, 0, 255) + 0.5)
	}
	img.Pix[i+0] = blendCh(img.Pix[i+0], sr)
	img.Pix[i+1] = blendCh(img.Pix[i+1], sg)
	img.Pix[i+2] = blendCh(img.Pix[i+2], sb)
	img.Pix[i+3] = uint8(math.Clamp(outA*255, 0, 255) + 0.5)
}
