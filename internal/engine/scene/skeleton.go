package scene

// Skeleton is a flat list of bone nodes ordered by the skin's joint indices.
// Position i is the node driven by joint i in skinning math.
type Skeleton []NodeID

// BuildFlatBoneList tags every node below root whose SourceIndex is one of
// joints as a bone, collects them in traversal order, then reorders the list
// to follow joints. The result may be shorter or longer than joints.
func BuildFlatBoneList(g *Graph, root NodeID, joints []int) Skeleton {
	bones := CollectBones(g, root, joints)
	SortBones(g, bones, joints)
	return bones
}

// CollectBones tags and returns, in depth-first order, the nodes below root
// whose SourceIndex appears in jointSet.
func CollectBones(g *Graph, root NodeID, jointSet []int) Skeleton {
	set := indexSet(jointSet)
	var bones Skeleton
	g.Walk(root, func(id NodeID, n *Node) bool {
		if _, ok := set[n.SourceIndex]; ok {
			n.Type = NodeBone
			bones = append(bones, id)
		}
		return true
	})
	return bones
}

// SortBones reorders bones in place so that bones[i] has SourceIndex order[i].
// Joints with no matching bone leave their slot untouched; entries past
// len(order) keep their traversal order.
func SortBones(g *Graph, bones Skeleton, order []int) {
	limit := min(len(bones), len(order))
	for i := 0; i < limit; i++ {
		for j := i; j < len(bones); j++ {
			if g.nodes[bones[j]].SourceIndex == order[i] {
				bones[i], bones[j] = bones[j], bones[i]
				break
			}
		}
	}
}

// TagBones marks every node below root listed in joints as a bone without
// building a skinning list. Returns the number of nodes tagged.
func TagBones(g *Graph, root NodeID, joints []int) int {
	return len(CollectBones(g, root, joints))
}

// FindSkeletonRoot searches start and its descendants depth-first for the
// first node that has a listed joint as a direct child. It is used when the
// skeleton root declared by an asset is not the topmost joint. Returns NoNode
// when no joint is reachable from start.
func (g *Graph) FindSkeletonRoot(start NodeID, joints []int) NodeID {
	if !g.Valid(start) {
		return NoNode
	}
	set := indexSet(joints)
	return g.findSkeletonRoot(start, set)
}

func (g *Graph) findSkeletonRoot(id NodeID, set map[int]struct{}) NodeID {
	for _, child := range g.nodes[id].Children {
		if _, ok := set[g.nodes[child].SourceIndex]; ok {
			return id
		}
		if found := g.findSkeletonRoot(child, set); found != NoNode {
			return found
		}
	}
	return NoNode
}

func indexSet(indices []int) map[int]struct{} {
	set := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		set[idx] = struct{}{}
	}
	return set
}
