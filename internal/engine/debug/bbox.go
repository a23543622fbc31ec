package debug

import (
	"github.com/Faultbox/posegraph/pkg/math"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// DefaultBBoxPadding is the default padding around skeleton bounds.
const DefaultBBoxPadding = 0.05

// Bounds returns the axis-aligned box enclosing points. ok is false when
// points is empty.
func Bounds(points []math.Vec3) (lo, hi math.Vec3, ok bool) {
	if len(points) == 0 {
		return math.Vec3{}, math.Vec3{}, false
	}
	lo, hi = points[0], points[0]
	for _, p := range points[1:] {
		lo = math.Vec3{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = math.Vec3{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return lo, hi, true
}

// BBoxWireframe creates the 12 edges of the box [lo-padding, hi+padding]
// as line vertex pairs.
func BBoxWireframe(lo, hi math.Vec3, padding float32, color Color) []Vertex {
	minX, minY, minZ := lo.X-padding, lo.Y-padding, lo.Z-padding
	maxX, maxY, maxZ := hi.X+padding, hi.Y+padding, hi.Z+padding

	corners := [][3]float32{
		// Bottom face (4 edges)
		{minX, minY, minZ}, {maxX, minY, minZ},
		{maxX, minY, minZ}, {maxX, minY, maxZ},
		{maxX, minY, maxZ}, {minX, minY, maxZ},
		{minX, minY, maxZ}, {minX, minY, minZ},
		// Top face (4 edges)
		{minX, maxY, minZ}, {maxX, maxY, minZ},
		{maxX, maxY, minZ}, {maxX, maxY, maxZ},
		{maxX, maxY, maxZ}, {minX, maxY, maxZ},
		{minX, maxY, maxZ}, {minX, maxY, minZ},
		// Vertical edges (4 edges)
		{minX, minY, minZ}, {minX, maxY, minZ},
		{maxX, minY, minZ}, {maxX, maxY, minZ},
		{maxX, minY, maxZ}, {maxX, maxY, maxZ},
		{minX, minY, maxZ}, {minX, maxY, maxZ},
	}

	vertices := make([]Vertex, len(corners))
	for i, c := range corners {
		vertices[i] = color.at(math.Vec3FromArray(c))
	}
	return vertices
}
