package animation

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/posegraph/internal/engine/scene"
	"github.com/Faultbox/posegraph/internal/logger"
	"github.com/Faultbox/posegraph/pkg/math"
)

// ApplyPose writes the pose at the current time into the graph.
func (a *Animation) ApplyPose(g *scene.Graph) {
	a.ApplyPoseAt(g, a.Time())
}

// ApplyPoseAt writes the pose at time t into the graph without wrapping t.
// Each channel mutates one pose field of its target node. Channels with an
// unresolved target are skipped silently; channels referencing a missing
// sampler or holding too few keyframes are skipped with a warning.
func (a *Animation) ApplyPoseAt(g *scene.Graph, t float32) {
	for i := range a.Channels {
		ch := &a.Channels[i]
		n := g.Node(ch.Target)
		if n == nil {
			continue
		}
		if ch.Sampler < 0 || ch.Sampler >= len(a.Samplers) {
			logger.Warn("channel references missing sampler",
				zap.String("animation", a.Name),
				zap.Int("channel", i),
				zap.Int("sampler", ch.Sampler))
			continue
		}
		v, ok := ch.Sample(&a.Samplers[ch.Sampler], t)
		if !ok {
			logger.Warn("channel keyframes do not match sampler",
				zap.String("animation", a.Name),
				zap.Int("channel", i),
				zap.Int("keyframes", len(ch.Keyframes)),
				zap.Int("sampler_keys", len(a.Samplers[ch.Sampler].Keyframes)))
			continue
		}
		ch.write(n, v)
	}
}

// Sample evaluates the channel at time t through sampler s. Times before the
// first or after the last key clamp to that key. ok is false when the channel
// does not hold the keyframes the sampler's mode requires.
func (ch *Channel) Sample(s *Sampler, t float32) (v Value, ok bool) {
	keys := s.Keyframes
	if len(keys) == 0 {
		return nil, false
	}
	perKey := 1
	if s.Mode == InterpolationCubicSpline {
		perKey = 3
	}
	if len(ch.Keyframes) < perKey*len(keys) {
		return nil, false
	}

	lower, upper := bracket(keys, t)
	lowerTime, upperTime := keys[lower].Time, keys[upper].Time

	var u float32
	if upperTime > lowerTime {
		u = (t - lowerTime) / (upperTime - lowerTime)
		u = min(max(u, 0), 1)
	}

	switch s.Mode {
	case InterpolationStep:
		return ch.Keyframes[lower].Value, true
	case InterpolationCubicSpline:
		return ch.cubicSpline(lower, upper, u, upperTime-lowerTime)
	default:
		return ch.linear(lower, upper, u)
	}
}

// bracket returns the indices of the keys surrounding t, clamped to the first
// and last key when t falls outside.
func bracket(keys []SamplerKey, t float32) (lower, upper int) {
	next := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	switch next {
	case 0:
		return 0, 0
	case len(keys):
		return len(keys) - 1, len(keys) - 1
	default:
		return next - 1, next
	}
}

func (ch *Channel) linear(lower, upper int, u float32) (Value, bool) {
	from, to := ch.Keyframes[lower].Value, ch.Keyframes[upper].Value
	if lower == upper || u == 0 {
		return from, true
	}
	switch a := from.(type) {
	case Vec3Value:
		b, ok := to.(Vec3Value)
		if !ok {
			return nil, false
		}
		return Vec3Value(math.Vec3(a).Lerp(math.Vec3(b), u)), true
	case QuatValue:
		b, ok := to.(QuatValue)
		if !ok {
			return nil, false
		}
		return QuatValue(math.Quat(a).Slerp(math.Quat(b), u)), true
	case FloatValue:
		b, ok := to.(FloatValue)
		if !ok {
			return nil, false
		}
		return FloatValue(float32(a) + u*(float32(b)-float32(a))), true
	}
	return nil, false
}

// cubicSpline evaluates the Hermite curve between two keys. Tangents are
// stored per unit time and scaled by the key interval.
func (ch *Channel) cubicSpline(lower, upper int, u, dt float32) (Value, bool) {
	p0 := ch.Keyframes[3*lower+1].Value
	if lower == upper {
		return p0, true
	}
	m0 := ch.Keyframes[3*lower+2].Value
	p1 := ch.Keyframes[3*upper+1].Value
	m1 := ch.Keyframes[3*upper].Value

	switch a := p0.(type) {
	case Vec3Value:
		out, ok1 := m0.(Vec3Value)
		b, ok2 := p1.(Vec3Value)
		in, ok3 := m1.(Vec3Value)
		if !ok1 || !ok2 || !ok3 {
			return nil, false
		}
		return Vec3Value(math.HermiteVec3(u,
			math.Vec3(a), math.Vec3(out).Scale(dt),
			math.Vec3(b), math.Vec3(in).Scale(dt))), true
	case QuatValue:
		out, ok1 := m0.(QuatValue)
		b, ok2 := p1.(QuatValue)
		in, ok3 := m1.(QuatValue)
		if !ok1 || !ok2 || !ok3 {
			return nil, false
		}
		return QuatValue(math.HermiteQuat(u,
			math.Quat(a), scaleQuat(math.Quat(out), dt),
			math.Quat(b), scaleQuat(math.Quat(in), dt))), true
	case FloatValue:
		out, ok1 := m0.(FloatValue)
		b, ok2 := p1.(FloatValue)
		in, ok3 := m1.(FloatValue)
		if !ok1 || !ok2 || !ok3 {
			return nil, false
		}
		return FloatValue(math.HermiteFloat(u,
			float32(a), float32(out)*dt,
			float32(b), float32(in)*dt)), true
	}
	return nil, false
}

func scaleQuat(q math.Quat, s float32) math.Quat {
	return math.Quat{X: q.X * s, Y: q.Y * s, Z: q.Z * s, W: q.W * s}
}

// write stores v in the pose field matching the channel path.
func (ch *Channel) write(n *scene.Node, v Value) {
	switch ch.Path {
	case PathTranslation:
		if vec, ok := v.(Vec3Value); ok {
			n.Pose.Translation = math.Vec3(vec)
		}
	case PathScale:
		if vec, ok := v.(Vec3Value); ok {
			n.Pose.Scale = math.Vec3(vec)
		}
	case PathRotation:
		if q, ok := v.(QuatValue); ok {
			n.Pose.Rotation = math.Quat(q)
		}
	case PathWeight:
		w, ok := v.(FloatValue)
		if !ok || ch.WeightIndex < 0 {
			return
		}
		for len(n.Pose.BlendWeights) <= ch.WeightIndex {
			n.Pose.BlendWeights = append(n.Pose.BlendWeights, 0)
		}
		n.Pose.BlendWeights[ch.WeightIndex] = float32(w)
	}
}
