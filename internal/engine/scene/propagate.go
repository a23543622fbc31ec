package scene

import "github.com/Faultbox/posegraph/pkg/math"

// Propagate recomputes World for id and its whole subtree.
//
// The pose is a delta from the bind pose: for non-mesh nodes
// World = parentWorld * Local * inverse(Local) * T*R*S(pose).
// A pose matrix equal to identity means nothing animated the node, and
// the node sits at its bind pose (World = parentWorld * Local).
// Mesh nodes are placed by the hierarchy only; their own pose never moves them.
func (g *Graph) Propagate(id NodeID, parentWorld math.Mat4) {
	n := g.Node(id)
	if n == nil {
		return
	}

	pose := n.Pose.Matrix()
	if n.Type == NodeMesh || pose.IsIdentity() {
		n.World = parentWorld.Mul(n.Local)
	} else {
		n.World = parentWorld.Mul(n.Local).Mul(n.Local.Inverse()).Mul(pose)
	}

	for _, child := range n.Children {
		g.Propagate(child, n.World)
	}
}

// PropagateAll runs Propagate from the root with an identity parent.
func (g *Graph) PropagateAll() {
	g.Propagate(g.Root(), math.Identity())
}
