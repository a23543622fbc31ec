// Package scene holds the node hierarchy of a loaded asset: bind transforms,
// animated pose deltas, and the world transforms computed from them.
package scene

import (
	"github.com/Faultbox/posegraph/pkg/math"
)

// NodeID addresses a node inside a Graph. IDs are stable for the life of the graph.
type NodeID int

// NoNode is the sentinel for "no node" (the root's parent, a failed lookup, an unresolved target).
const NoNode NodeID = -1

// NodeType tags what a node represents.
type NodeType int

const (
	NodeEmpty NodeType = iota // transform-only node
	NodeMesh                  // node carrying a mesh
	NodeBone                  // skeleton joint
)

func (t NodeType) String() string {
	switch t {
	case NodeEmpty:
		return "empty"
	case NodeMesh:
		return "mesh"
	case NodeBone:
		return "bone"
	default:
		return "unknown"
	}
}

// Pose is the animated delta applied on top of a node's bind transform.
// It is the only node state that animation and external commands may mutate.
type Pose struct {
	Translation  math.Vec3
	Rotation     math.Quat
	Scale        math.Vec3
	BlendWeights []float32
}

// IdentityPose returns the neutral pose: no translation, no rotation, unit scale.
func IdentityPose() Pose {
	return Pose{
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3One(),
	}
}

// Matrix composes translate * rotate * scale.
func (p Pose) Matrix() math.Mat4 {
	return math.FromTRS(p.Translation, p.Rotation, p.Scale)
}

// Node is one element of the hierarchy.
type Node struct {
	Type NodeType
	Name string

	// Local is the bind transform relative to the parent.
	Local math.Mat4
	// World is written by Propagate only.
	World math.Mat4
	Pose  Pose

	// SourceIndex is the asset node index, -1 for synthesized nodes.
	SourceIndex int
	// MeshIndex is the asset mesh index, -1 when the node has no mesh.
	MeshIndex int

	Parent   NodeID
	Children []NodeID
}

// Graph is an arena of nodes. Node 0 is the root.
type Graph struct {
	nodes []Node
}

// NewGraph creates a graph holding a single empty root node.
func NewGraph() *Graph {
	g := &Graph{}
	g.nodes = append(g.nodes, newNode(NoNode))
	return g
}

func newNode(parent NodeID) Node {
	return Node{
		Type:        NodeEmpty,
		Local:       math.Identity(),
		World:       math.Identity(),
		Pose:        IdentityPose(),
		SourceIndex: -1,
		MeshIndex:   -1,
		Parent:      parent,
	}
}

// Root returns the root node id.
func (g *Graph) Root() NodeID {
	return 0
}

// Len returns the number of nodes, root included.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Valid reports whether id addresses a node of this graph.
func (g *Graph) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Node returns the node for id, or nil when id is not valid.
// The pointer is invalidated by the next AddChild.
func (g *Graph) Node(id NodeID) *Node {
	if !g.Valid(id) {
		return nil
	}
	return &g.nodes[id]
}

// AddChild allocates a new empty node, appends it to parent's children and returns its id.
// Nodes are never reparented after construction.
func (g *Graph) AddChild(parent NodeID) NodeID {
	if !g.Valid(parent) {
		return NoNode
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, newNode(parent))
	g.nodes[parent].Children = append(g.nodes[parent].Children, id)
	return id
}

// Walk visits from and its descendants depth-first, parents before children.
// Returning false from fn prunes the subtree below that node.
func (g *Graph) Walk(from NodeID, fn func(id NodeID, n *Node) bool) {
	if !g.Valid(from) {
		return
	}
	if !fn(from, &g.nodes[from]) {
		return
	}
	for _, child := range g.nodes[from].Children {
		g.Walk(child, fn)
	}
}

// FindBySourceIndex searches depth-first from `from` for the first node whose SourceIndex is idx.
func (g *Graph) FindBySourceIndex(from NodeID, idx int) (NodeID, bool) {
	if !g.Valid(from) {
		return NoNode, false
	}
	if g.nodes[from].SourceIndex == idx {
		return from, true
	}
	for _, child := range g.nodes[from].Children {
		if found, ok := g.FindBySourceIndex(child, idx); ok {
			return found, true
		}
	}
	return NoNode, false
}

// MeshInstance pairs an asset mesh with the asset node that places it.
type MeshInstance struct {
	Mesh int
	Node int
}

// MeshInstances lists mesh nodes below from in traversal order.
func (g *Graph) MeshInstances(from NodeID) []MeshInstance {
	var out []MeshInstance
	g.Walk(from, func(_ NodeID, n *Node) bool {
		if n.Type == NodeMesh {
			out = append(out, MeshInstance{Mesh: n.MeshIndex, Node: n.SourceIndex})
		}
		return true
	})
	return out
}

// CountMeshes returns the number of mesh nodes below from.
func (g *Graph) CountMeshes(from NodeID) int {
	return len(g.MeshInstances(from))
}
