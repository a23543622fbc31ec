package asset

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/posegraph/internal/engine/animation"
	"github.com/Faultbox/posegraph/internal/logger"
	"github.com/Faultbox/posegraph/pkg/math"
)

// Animations imports every animation of the document. Channels without a
// target node are skipped. Morph weight channels are split into one channel
// per morph target.
func Animations(doc *gltf.Document) ([]*animation.Animation, error) {
	out := make([]*animation.Animation, 0, len(doc.Animations))
	for i, src := range doc.Animations {
		name := src.Name
		if name == "" {
			name = fmt.Sprintf("animation_%d", i)
		}
		a, err := importAnimation(doc, src, name)
		if err != nil {
			return nil, errors.Wrapf(err, "animation %d (%s)", i, name)
		}
		out = append(out, a)
	}
	return out, nil
}

func importAnimation(doc *gltf.Document, src *gltf.Animation, name string) (*animation.Animation, error) {
	a := animation.New(name)

	skipped := make([]bool, len(src.Samplers))
	for i, s := range src.Samplers {
		sampler, err := importSampler(doc, s)
		if errors.Is(err, ErrSamplerTimes) {
			logger.Warn("skipping animation sampler",
				zap.String("animation", name), zap.Int("sampler", i), zap.Error(err))
			skipped[i] = true
			sampler = animation.Sampler{Mode: interpolation(s.Interpolation)}
		} else if err != nil {
			return nil, errors.Wrapf(err, "sampler %d", i)
		}
		a.Samplers = append(a.Samplers, sampler)
	}

	for i, c := range src.Channels {
		node, ok := index(c.Target.Node)
		if !ok {
			logger.Debug("skipping channel without target node",
				zap.String("animation", name), zap.Int("channel", i))
			continue
		}
		samplerIdx, _ := index(c.Sampler)
		if samplerIdx < 0 || samplerIdx >= len(src.Samplers) {
			return nil, errors.Wrapf(ErrSamplerIndex, "channel %d: sampler %d", i, samplerIdx)
		}
		if skipped[samplerIdx] {
			logger.Debug("skipping channel of skipped sampler",
				zap.String("animation", name), zap.Int("channel", i), zap.Int("sampler", samplerIdx))
			continue
		}
		outIdx, _ := index(src.Samplers[samplerIdx].Output)
		values, comps, err := readFloats(doc, outIdx)
		if err != nil {
			return nil, errors.Wrapf(err, "channel %d output", i)
		}

		channels, err := buildChannels(node, c.Target.Path, samplerIdx, &a.Samplers[samplerIdx], values, comps)
		if errors.Is(err, ErrKeyframeCount) {
			logger.Warn("skipping animation channel",
				zap.String("animation", name), zap.Int("channel", i), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "channel %d", i)
		}
		a.Channels = append(a.Channels, channels...)
	}

	a.ComputeTimeBounds()
	return a, nil
}

func importSampler(doc *gltf.Document, s *gltf.AnimationSampler) (animation.Sampler, error) {
	inIdx, _ := index(s.Input)
	times, comps, err := readFloats(doc, inIdx)
	if err != nil {
		return animation.Sampler{}, errors.Wrap(err, "input")
	}
	if comps != 1 {
		return animation.Sampler{}, errors.Wrapf(ErrAccessorType, "input has %d components", comps)
	}
	if len(times) == 0 {
		return animation.Sampler{}, errors.Wrap(ErrSamplerTimes, "no keyframes")
	}

	sampler := animation.Sampler{Mode: interpolation(s.Interpolation)}
	sampler.Keyframes = make([]animation.SamplerKey, len(times))
	for i, t := range times {
		if i > 0 && t <= times[i-1] {
			return animation.Sampler{}, errors.Wrapf(ErrSamplerTimes, "key %d at %v after %v", i, t, times[i-1])
		}
		sampler.Keyframes[i] = animation.SamplerKey{
			Frame: int(math32.Round(t * animation.FPS)),
			Time:  t,
		}
	}
	sampler.ComputeBounds()
	return sampler, nil
}

func interpolation(i gltf.Interpolation) animation.Interpolation {
	switch i {
	case gltf.InterpolationStep:
		return animation.InterpolationStep
	case gltf.InterpolationCubicSpline:
		return animation.InterpolationCubicSpline
	default:
		return animation.InterpolationLinear
	}
}

// buildChannels turns one glTF channel's output values into keyframes.
// Cubic-spline samplers produce three keyframes per sampler key.
func buildChannels(node int, path gltf.TRSProperty, samplerIdx int, s *animation.Sampler, values []float32, comps int) ([]animation.Channel, error) {
	perKey := 1
	if s.Mode == animation.InterpolationCubicSpline {
		perKey = 3
	}
	slots := len(s.Keyframes) * perKey
	frameOf := func(e int) int { return s.Keyframes[e/perKey].Frame }
	count := func() error {
		if elems := len(values) / comps; elems != slots {
			return errors.Wrapf(ErrKeyframeCount, "%d outputs for %d keyframes", elems, slots)
		}
		return nil
	}

	switch path {
	case gltf.TRSTranslation, gltf.TRSScale:
		if comps != 3 {
			return nil, errors.Wrapf(ErrAccessorType, "%v output has %d components", path, comps)
		}
		if err := count(); err != nil {
			return nil, err
		}
		p := animation.PathTranslation
		if path == gltf.TRSScale {
			p = animation.PathScale
		}
		keys := make([]animation.Keyframe, slots)
		for e := range keys {
			v := values[e*3 : e*3+3]
			keys[e] = animation.Keyframe{Frame: frameOf(e), Value: animation.Vec3Value(math.Vec3{X: v[0], Y: v[1], Z: v[2]})}
		}
		ch, err := animation.NewChannel(node, p, samplerIdx, keys)
		return []animation.Channel{ch}, err

	case gltf.TRSRotation:
		if comps != 4 {
			return nil, errors.Wrapf(ErrAccessorType, "rotation output has %d components", comps)
		}
		if err := count(); err != nil {
			return nil, err
		}
		keys := make([]animation.Keyframe, slots)
		for e := range keys {
			v := values[e*4 : e*4+4]
			keys[e] = animation.Keyframe{Frame: frameOf(e), Value: animation.QuatValue(math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]})}
		}
		ch, err := animation.NewChannel(node, animation.PathRotation, samplerIdx, keys)
		return []animation.Channel{ch}, err

	case gltf.TRSWeights:
		if comps != 1 {
			return nil, errors.Wrapf(ErrAccessorType, "weights output has %d components", comps)
		}
		if slots == 0 || len(values) == 0 || len(values)%slots != 0 {
			return nil, errors.Wrapf(ErrKeyframeCount, "%d weight values for %d keyframes", len(values), slots)
		}
		morphs := len(values) / slots
		channels := make([]animation.Channel, 0, morphs)
		for m := 0; m < morphs; m++ {
			keys := make([]animation.Keyframe, slots)
			for e := range keys {
				keys[e] = animation.Keyframe{Frame: frameOf(e), Value: animation.FloatValue(values[e*morphs+m])}
			}
			ch, err := animation.NewChannel(node, animation.PathWeight, samplerIdx, keys)
			if err != nil {
				return nil, err
			}
			ch.WeightIndex = m
			channels = append(channels, ch)
		}
		return channels, nil
	}
	return nil, errors.Errorf("unsupported channel path %v", path)
}
