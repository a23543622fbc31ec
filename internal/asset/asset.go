// Package asset converts glTF documents into scene graphs, skeletons and
// animations.
package asset

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/posegraph/internal/engine/animation"
	"github.com/Faultbox/posegraph/internal/engine/scene"
	"github.com/Faultbox/posegraph/internal/logger"
)

// Import errors.
var (
	ErrNodeIndex     = errors.New("node index out of range")
	ErrNodeCycle     = errors.New("node hierarchy contains a cycle")
	ErrAccessorIndex = errors.New("accessor index out of range")
	ErrAccessorType  = errors.New("unsupported accessor type")
	ErrTruncatedData = errors.New("accessor data out of buffer bounds")
	ErrSamplerIndex  = errors.New("animation sampler index out of range")
	ErrSamplerTimes  = errors.New("sampler input times empty or not increasing")
	ErrKeyframeCount = errors.New("channel output count does not match sampler input")
)

// Asset is everything the player needs from one glTF file.
type Asset struct {
	Graph      *scene.Graph
	Skins      []Skin
	Animations []*animation.Animation
}

// Open reads a .gltf or .glb file from disk and imports it.
func Open(path string) (*Asset, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	a, err := Load(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "importing %s", path)
	}
	return a, nil
}

// Load imports an already decoded document: the node graph with initial
// morph weights, every skin and every animation with targets resolved.
func Load(doc *gltf.Document) (*Asset, error) {
	g, err := BuildGraph(doc)
	if err != nil {
		return nil, err
	}
	InitialWeights(doc, g)

	skins, err := Skins(doc, g)
	if err != nil {
		return nil, err
	}

	anims, err := Animations(doc)
	if err != nil {
		return nil, err
	}
	for _, a := range anims {
		a.ResolveTargets(g)
	}

	logger.Info("asset loaded",
		zap.Int("nodes", g.Len()),
		zap.Int("meshes", g.CountMeshes(g.Root())),
		zap.Int("skins", len(skins)),
		zap.Int("animations", len(anims)))

	return &Asset{Graph: g, Skins: skins, Animations: anims}, nil
}

// index converts a glTF index field, required (uint32) or optional
// (*uint32), to an int. ok is false for an absent optional index.
func index(v any) (i int, ok bool) {
	switch x := v.(type) {
	case uint32:
		return int(x), true
	case *uint32:
		if x == nil {
			return 0, false
		}
		return int(*x), true
	case int:
		return x, true
	}
	return 0, false
}
