// Package debug generates world-space line and point geometry for
// visualizing skeletons.
package debug

import (
	"github.com/Faultbox/posegraph/internal/engine/scene"
	"github.com/Faultbox/posegraph/pkg/math"
)

// Color is an RGB color.
type Color [3]float32

// Colors used for each element kind.
var (
	ColorBone      = Color{0, 0.5, 0.5}
	ColorExtension = Color{0.5, 0.75, 0.5}
	ColorJoint     = Color{1, 0, 0}
	ColorAnchor    = Color{1, 1, 0}
	ColorBounds    = Color{0.5, 0.5, 0.5}
	ColorAxisX     = Color{1, 0, 0}
	ColorAxisY     = Color{0, 1, 0}
	ColorAxisZ     = Color{0, 0, 1}
)

// Vertex is a colored world-space position.
type Vertex struct {
	X, Y, Z float32 // Position
	R, G, B float32 // Color
}

func (c Color) at(p math.Vec3) Vertex {
	return Vertex{p.X, p.Y, p.Z, c[0], c[1], c[2]}
}

// DrawConfig selects which skeleton elements are generated.
type DrawConfig struct {
	JointPoints        bool
	BoneSegments       bool
	ChildlessExtension bool
	BoneAxes           bool
	MeshAnchors        bool
	Bounds             bool
	// ExtensionLength is the length along local +Y of the segment drawn
	// for bones without children.
	ExtensionLength float32
	// AxisLength is the length of each local axis segment.
	AxisLength float32
}

// DefaultDrawConfig returns the default debug drawing options.
func DefaultDrawConfig() DrawConfig {
	return DrawConfig{
		JointPoints:        true,
		BoneSegments:       true,
		ChildlessExtension: true,
		ExtensionLength:    0.25,
		AxisLength:         0.125,
	}
}

// Geometry holds line vertex pairs and points.
type Geometry struct {
	Lines  []Vertex
	Points []Vertex
}

// LineCount returns the number of line segments.
func (g Geometry) LineCount() int {
	return len(g.Lines) / 2
}

// SkeletonLines builds debug geometry from the world transforms of g.
// Call it after propagation.
func SkeletonLines(g *scene.Graph, cfg DrawConfig) Geometry {
	var geo Geometry
	var joints []math.Vec3

	g.Walk(g.Root(), func(id scene.NodeID, n *scene.Node) bool {
		if id == g.Root() {
			return true
		}
		origin := n.World.Translation()

		if cfg.BoneAxes {
			geo.addAxes(n.World, origin, cfg.AxisLength)
		}

		switch n.Type {
		case scene.NodeBone:
			joints = append(joints, origin)
			if cfg.BoneSegments {
				for _, c := range n.Children {
					child := g.Node(c)
					if child.Type != scene.NodeBone {
						continue
					}
					end := n.World.TransformPoint(child.Local.Translation())
					geo.Lines = append(geo.Lines, ColorBone.at(origin), ColorBone.at(end))
				}
				if cfg.ChildlessExtension && len(n.Children) == 0 {
					end := n.World.TransformPoint(math.Vec3{Y: cfg.ExtensionLength})
					geo.Lines = append(geo.Lines, ColorExtension.at(origin), ColorExtension.at(end))
				}
			}
			if cfg.JointPoints {
				geo.Points = append(geo.Points, ColorJoint.at(origin))
			}
		case scene.NodeMesh:
			if cfg.MeshAnchors {
				geo.Points = append(geo.Points, ColorAnchor.at(origin))
			}
		}
		return true
	})

	if cfg.Bounds {
		if lo, hi, ok := Bounds(joints); ok {
			geo.Lines = append(geo.Lines, BBoxWireframe(lo, hi, DefaultBBoxPadding, ColorBounds)...)
		}
	}
	return geo
}

func (geo *Geometry) addAxes(world math.Mat4, origin math.Vec3, length float32) {
	axes := []struct {
		dir   math.Vec3
		color Color
	}{
		{math.Vec3{X: length}, ColorAxisX},
		{math.Vec3{Y: length}, ColorAxisY},
		{math.Vec3{Z: length}, ColorAxisZ},
	}
	for _, a := range axes {
		geo.Lines = append(geo.Lines, a.color.at(origin), a.color.at(world.TransformPoint(a.dir)))
	}
}
