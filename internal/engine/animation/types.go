// Package animation samples keyframe tracks and writes the resulting pose
// deltas into scene graph nodes.
package animation

import (
	"fmt"

	"github.com/Faultbox/posegraph/internal/engine/scene"
	"github.com/Faultbox/posegraph/pkg/math"
)

// FPS is the rate used to turn keyframe times into frame indices.
const FPS = 60.0

// Path is the node property a channel drives.
type Path int

const (
	PathTranslation Path = iota
	PathScale
	PathRotation
	PathWeight
)

func (p Path) String() string {
	switch p {
	case PathTranslation:
		return "translation"
	case PathScale:
		return "scale"
	case PathRotation:
		return "rotation"
	case PathWeight:
		return "weights"
	default:
		return "unknown"
	}
}

// Interpolation is how a sampler blends between two keyframes.
type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	InterpolationCubicSpline
)

func (m Interpolation) String() string {
	switch m {
	case InterpolationLinear:
		return "LINEAR"
	case InterpolationStep:
		return "STEP"
	case InterpolationCubicSpline:
		return "CUBICSPLINE"
	default:
		return "unknown"
	}
}

// Value is a keyframe payload: Vec3Value, QuatValue or FloatValue.
type Value interface {
	fits(p Path) bool
}

// Vec3Value is a translation or scale keyframe.
type Vec3Value math.Vec3

// QuatValue is a rotation keyframe.
type QuatValue math.Quat

// FloatValue is a morph weight keyframe.
type FloatValue float32

func (Vec3Value) fits(p Path) bool  { return p == PathTranslation || p == PathScale }
func (QuatValue) fits(p Path) bool  { return p == PathRotation }
func (FloatValue) fits(p Path) bool { return p == PathWeight }

// Keyframe is one sample point of a channel.
type Keyframe struct {
	Frame int
	Value Value
}

// Channel drives one path of one node through one sampler.
// For cubic-spline samplers it holds three keyframes per sampler key:
// in-tangent, value, out-tangent.
type Channel struct {
	// TargetNode is the asset node index.
	TargetNode int
	// Target is TargetNode resolved in a graph, scene.NoNode until resolved.
	Target scene.NodeID
	Path   Path
	// WeightIndex is the morph target written by a PathWeight channel.
	WeightIndex int
	Sampler     int
	Keyframes   []Keyframe
}

// NewChannel builds a channel and checks that every keyframe matches path.
func NewChannel(targetNode int, path Path, sampler int, keyframes []Keyframe) (Channel, error) {
	for i, kf := range keyframes {
		if kf.Value == nil || !kf.Value.fits(path) {
			return Channel{}, fmt.Errorf("keyframe %d: %T does not fit path %s", i, kf.Value, path)
		}
	}
	return Channel{
		TargetNode: targetNode,
		Target:     scene.NoNode,
		Path:       path,
		Sampler:    sampler,
		Keyframes:  keyframes,
	}, nil
}

// SamplerKey maps a frame index to its time in seconds.
type SamplerKey struct {
	Frame int
	Time  float32
}

// Sampler holds keyframe timing shared by one or more channels.
// Keyframes are strictly increasing in time.
type Sampler struct {
	Keyframes []SamplerKey
	Mode      Interpolation
	Min, Max  float32
}

// ComputeBounds caches the first and last keyframe times.
func (s *Sampler) ComputeBounds() {
	if len(s.Keyframes) == 0 {
		s.Min, s.Max = 0, 0
		return
	}
	s.Min, s.Max = s.Keyframes[0].Time, s.Keyframes[0].Time
	for _, k := range s.Keyframes[1:] {
		s.Min = min(s.Min, k.Time)
		s.Max = max(s.Max, k.Time)
	}
}
