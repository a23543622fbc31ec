package asset

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/Faultbox/posegraph/internal/engine/scene"
	"github.com/Faultbox/posegraph/pkg/math"
)

// BuildGraph creates a scene graph holding every node reachable from the
// roots of the default scene. Documents without scenes use every node that
// is nobody's child as a root.
func BuildGraph(doc *gltf.Document) (*scene.Graph, error) {
	g := scene.NewGraph()
	visiting := make([]bool, len(doc.Nodes))
	for _, root := range rootNodes(doc) {
		if err := populate(doc, g, g.Root(), root, visiting); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		sceneIdx := 0
		if i, ok := index(doc.Scene); ok && i < len(doc.Scenes) {
			sceneIdx = i
		}
		roots := make([]int, 0, len(doc.Scenes[sceneIdx].Nodes))
		for _, n := range doc.Scenes[sceneIdx].Nodes {
			roots = append(roots, int(n))
		}
		return roots
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

func populate(doc *gltf.Document, g *scene.Graph, parent scene.NodeID, idx int, visiting []bool) error {
	if idx < 0 || idx >= len(doc.Nodes) {
		return errors.Wrapf(ErrNodeIndex, "node %d", idx)
	}
	if visiting[idx] {
		return errors.Wrapf(ErrNodeCycle, "node %d", idx)
	}
	visiting[idx] = true
	defer func() { visiting[idx] = false }()

	src := doc.Nodes[idx]
	id := g.AddChild(parent)
	n := g.Node(id)
	n.Name = src.Name
	n.SourceIndex = idx
	n.Local = LocalMatrix(src)
	if mesh, ok := index(src.Mesh); ok {
		n.Type = scene.NodeMesh
		n.MeshIndex = mesh
	}

	for _, child := range src.Children {
		if err := populate(doc, g, id, int(child), visiting); err != nil {
			return errors.Wrapf(err, "child of node %d", idx)
		}
	}
	return nil
}

// LocalMatrix combines the node's matrix with its TRS properties. glTF allows
// only one form per node; absent forms default to identity.
func LocalMatrix(n *gltf.Node) math.Mat4 {
	var m math.Mat4
	for i, v := range n.MatrixOrDefault() {
		m[i] = float32(v)
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	trs := math.FromTRS(
		math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
	)
	return m.Mul(trs)
}

// InitialWeights fills the blend weights of every mesh node from the node's
// own weights, or its mesh's default weights when the node has none.
func InitialWeights(doc *gltf.Document, g *scene.Graph) {
	g.Walk(g.Root(), func(_ scene.NodeID, n *scene.Node) bool {
		if n.Type != scene.NodeMesh || n.SourceIndex < 0 || n.SourceIndex >= len(doc.Nodes) {
			return true
		}
		src := doc.Nodes[n.SourceIndex]
		switch {
		case len(src.Weights) > 0:
			n.Pose.BlendWeights = make([]float32, len(src.Weights))
			for i, w := range src.Weights {
				n.Pose.BlendWeights[i] = float32(w)
			}
		case n.MeshIndex >= 0 && n.MeshIndex < len(doc.Meshes):
			mesh := doc.Meshes[n.MeshIndex]
			n.Pose.BlendWeights = make([]float32, morphCount(mesh))
			for i, w := range mesh.Weights {
				if i < len(n.Pose.BlendWeights) {
					n.Pose.BlendWeights[i] = float32(w)
				}
			}
		}
		return true
	})
}

// morphCount is the number of morph targets of the mesh: the longest
// primitive target list, or the default weight count if larger.
func morphCount(m *gltf.Mesh) int {
	count := len(m.Weights)
	for _, p := range m.Primitives {
		count = max(count, len(p.Targets))
	}
	return count
}
