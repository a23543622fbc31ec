package scene

import "testing"

// addSource appends a child with the given source index.
func addSource(g *Graph, parent NodeID, src int) NodeID {
	id := g.AddChild(parent)
	g.Node(id).SourceIndex = src
	return id
}

func sourceIndices(g *Graph, bones Skeleton) []int {
	out := make([]int, len(bones))
	for i, id := range bones {
		out[i] = g.Node(id).SourceIndex
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortBonesExtraTrailing(t *testing.T) {
	g := NewGraph()
	hips := addSource(g, g.Root(), 2)
	spine := addSource(g, hips, 5)
	addSource(g, spine, 9)
	addSource(g, hips, 8)

	bones := CollectBones(g, g.Root(), []int{2, 5, 8, 9})
	if got := sourceIndices(g, bones); !equalInts(got, []int{2, 5, 9, 8}) {
		t.Fatalf("traversal order = %v, want [2 5 9 8]", got)
	}

	SortBones(g, bones, []int{5, 2, 8})
	if got := sourceIndices(g, bones); !equalInts(got, []int{5, 2, 8, 9}) {
		t.Errorf("sorted = %v, want [5 2 8 9]", got)
	}
}

func TestBuildFlatBoneListTagsBones(t *testing.T) {
	g := NewGraph()
	mesh := addSource(g, g.Root(), 0)
	g.Node(mesh).Type = NodeMesh
	a := addSource(g, g.Root(), 1)
	b := addSource(g, a, 2)

	bones := BuildFlatBoneList(g, g.Root(), []int{2, 1})
	if got := sourceIndices(g, bones); !equalInts(got, []int{2, 1}) {
		t.Errorf("flat list = %v, want [2 1]", got)
	}
	if g.Node(a).Type != NodeBone || g.Node(b).Type != NodeBone {
		t.Error("joint nodes should be tagged as bones")
	}
	if g.Node(mesh).Type != NodeMesh {
		t.Error("non-joint node type should be untouched")
	}
}

func TestBuildFlatBoneListMissingJoint(t *testing.T) {
	g := NewGraph()
	a := addSource(g, g.Root(), 1)
	addSource(g, a, 2)

	// Joint 7 is absent from the graph; the list is shorter than the joint array.
	bones := BuildFlatBoneList(g, g.Root(), []int{2, 7, 1})
	if len(bones) != 2 {
		t.Fatalf("flat list length = %d, want 2", len(bones))
	}
	if g.Node(bones[0]).SourceIndex != 2 {
		t.Errorf("first bone = %d, want 2", g.Node(bones[0]).SourceIndex)
	}
}

func TestTagBones(t *testing.T) {
	g := NewGraph()
	a := addSource(g, g.Root(), 1)
	addSource(g, a, 2)
	if n := TagBones(g, g.Root(), []int{2}); n != 1 {
		t.Errorf("TagBones = %d, want 1", n)
	}
}

func TestFindSkeletonRoot(t *testing.T) {
	g := NewGraph()
	armature := addSource(g, g.Root(), 0)
	offset := addSource(g, armature, 1)
	hips := addSource(g, offset, 2)
	addSource(g, hips, 3)

	tests := []struct {
		name   string
		start  NodeID
		joints []int
		want   NodeID
	}{
		{"joint below intermediate", g.Root(), []int{2, 3}, offset},
		{"direct child joint", armature, []int{1}, armature},
		{"no joint reachable", hips, []int{1, 2}, NoNode},
		{"invalid start", NodeID(100), []int{2}, NoNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.FindSkeletonRoot(tt.start, tt.joints); got != tt.want {
				t.Errorf("FindSkeletonRoot = %d, want %d", got, tt.want)
			}
		})
	}
}
