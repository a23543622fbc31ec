package asset

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/posegraph/internal/engine/scene"
	"github.com/Faultbox/posegraph/internal/logger"
)

// Skin is a skeleton resolved against a scene graph.
type Skin struct {
	Name string
	// Joints are the asset node indices in skinning order.
	Joints []int
	// Root is the graph node the bone search started from.
	Root scene.NodeID
	// Bones maps joint position to graph node.
	Bones scene.Skeleton
}

// Skins resolves every skin of the document in g and builds its flat bone
// list. The declared skeleton node is only a hint: when it is not itself a
// joint, the search continues below it for the node whose child is the
// topmost joint.
func Skins(doc *gltf.Document, g *scene.Graph) ([]Skin, error) {
	out := make([]Skin, 0, len(doc.Skins))
	for i, src := range doc.Skins {
		joints := make([]int, len(src.Joints))
		for j, joint := range src.Joints {
			if int(joint) >= len(doc.Nodes) {
				return nil, errors.Wrapf(ErrNodeIndex, "skin %d: joint %d", i, joint)
			}
			joints[j] = int(joint)
		}

		root := skeletonRoot(g, src, joints)
		bones := scene.BuildFlatBoneList(g, root, joints)
		if len(bones) != len(joints) {
			logger.Warn("skin joint count mismatch",
				zap.Int("skin", i),
				zap.Int("joints", len(joints)),
				zap.Int("bones", len(bones)))
		}
		out = append(out, Skin{Name: src.Name, Joints: joints, Root: root, Bones: bones})
	}
	return out, nil
}

func skeletonRoot(g *scene.Graph, src *gltf.Skin, joints []int) scene.NodeID {
	start := g.Root()
	if declared, ok := index(src.Skeleton); ok {
		if id, found := g.FindBySourceIndex(g.Root(), declared); found {
			for _, j := range joints {
				if j == declared {
					return id
				}
			}
			start = id
		}
	}
	if root := g.FindSkeletonRoot(start, joints); root != scene.NoNode {
		return root
	}
	return start
}
