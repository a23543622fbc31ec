package command

import (
	"go.uber.org/zap"

	"github.com/Faultbox/posegraph/internal/engine/scene"
	"github.com/Faultbox/posegraph/internal/logger"
)

// Applier writes commands into graph pose fields. It must only be used from
// the goroutine that owns the graph.
type Applier struct {
	Graph *scene.Graph
	// Bones maps joint indices to nodes for JointTransform.
	Bones scene.Skeleton
	// MorphTarget is the node whose BlendWeights MorphWeight edits.
	MorphTarget scene.NodeID
}

// Apply applies cmd and reports whether it targeted a valid node.
// Invalid targets are logged and dropped.
func (a *Applier) Apply(cmd Command) bool {
	switch c := cmd.(type) {
	case MorphWeight:
		return a.applyMorphWeight(c)
	case JointTransform:
		return a.applyJointTransform(c)
	default:
		logger.Warn("unknown pose command", zap.Any("command", cmd))
		return false
	}
}

// ApplyAll applies cmds in order and returns how many were applied.
func (a *Applier) ApplyAll(cmds []Command) int {
	applied := 0
	for _, cmd := range cmds {
		if a.Apply(cmd) {
			applied++
		}
	}
	return applied
}

func (a *Applier) applyMorphWeight(c MorphWeight) bool {
	n := a.Graph.Node(a.MorphTarget)
	if n == nil {
		logger.Warn("morph weight without morph target node", zap.Int("target", c.Target))
		return false
	}
	if c.Target < 0 || c.Target >= len(n.Pose.BlendWeights) {
		logger.Warn("invalid morph target",
			zap.Int("target", c.Target),
			zap.Int("morph_count", len(n.Pose.BlendWeights)))
		return false
	}
	n.Pose.BlendWeights[c.Target] = min(max(c.Weight, 0), 1)
	return true
}

func (a *Applier) applyJointTransform(c JointTransform) bool {
	if c.Joint < 0 || c.Joint >= len(a.Bones) {
		logger.Warn("invalid joint",
			zap.Int("joint", c.Joint),
			zap.Int("joint_count", len(a.Bones)))
		return false
	}
	n := a.Graph.Node(a.Bones[c.Joint])
	if n == nil {
		logger.Warn("joint references missing node", zap.Int("joint", c.Joint))
		return false
	}
	n.Pose.Translation = c.Translation
	n.Pose.Rotation = c.Rotation
	n.Pose.Scale = c.Scale
	return true
}

// MorphTargetNode returns the first mesh node below root that has blend
// weights, or scene.NoNode.
func MorphTargetNode(g *scene.Graph, root scene.NodeID) scene.NodeID {
	found := scene.NoNode
	g.Walk(root, func(id scene.NodeID, n *scene.Node) bool {
		if found != scene.NoNode {
			return false
		}
		if n.Type == scene.NodeMesh && len(n.Pose.BlendWeights) > 0 {
			found = id
			return false
		}
		return true
	})
	return found
}
