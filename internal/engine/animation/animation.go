package animation

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/posegraph/internal/engine/scene"
	"github.com/Faultbox/posegraph/internal/logger"
)

// Animation is a set of channels and samplers played on a shared clock.
type Animation struct {
	Name     string
	Channels []Channel
	Samplers []Sampler

	Playing bool
	// MinTime and MaxTime bound the clock; see ComputeTimeBounds.
	MinTime, MaxTime float32

	currentTime float32
}

// New creates an empty, stopped animation.
func New(name string) *Animation {
	return &Animation{Name: name}
}

// SetPlaying starts or stops the clock.
func (a *Animation) SetPlaying(playing bool) {
	a.Playing = playing
}

// Advance moves the clock by delta seconds while playing, wrapping around
// [MinTime, MaxTime]. Negative deltas wrap backward.
func (a *Animation) Advance(delta float32) {
	if !a.Playing {
		return
	}
	a.currentTime = a.wrap(a.currentTime + delta)
}

// SetTime sets the clock. The value is stored as given; Time wraps it.
func (a *Animation) SetTime(t float32) {
	a.currentTime = t
}

// Time returns the clock wrapped into [MinTime, MaxTime].
func (a *Animation) Time() float32 {
	return a.wrap(a.currentTime)
}

// Reset moves the clock back to MinTime.
func (a *Animation) Reset() {
	a.currentTime = a.MinTime
}

// Duration returns MaxTime - MinTime.
func (a *Animation) Duration() float32 {
	return a.MaxTime - a.MinTime
}

func (a *Animation) wrap(t float32) float32 {
	length := a.MaxTime - a.MinTime
	if length <= 0 {
		return a.MinTime
	}
	if t >= a.MinTime && t <= a.MaxTime {
		return t
	}
	r := math32.Mod(t-a.MinTime, length)
	if r < 0 {
		r += length
	}
	return a.MinTime + r
}

// ComputeTimeBounds refreshes every sampler's bounds and sets MinTime/MaxTime
// to the global range. Both are 0 when there are no keyed samplers.
func (a *Animation) ComputeTimeBounds() {
	first := true
	a.MinTime, a.MaxTime = 0, 0
	for i := range a.Samplers {
		s := &a.Samplers[i]
		s.ComputeBounds()
		if len(s.Keyframes) == 0 {
			continue
		}
		if first {
			a.MinTime, a.MaxTime = s.Min, s.Max
			first = false
			continue
		}
		a.MinTime = min(a.MinTime, s.Min)
		a.MaxTime = max(a.MaxTime, s.Max)
	}
}

// ResolveTargets looks up each channel's TargetNode in g. Channels whose node
// is not in the graph keep scene.NoNode and are ignored by ApplyPose.
func (a *Animation) ResolveTargets(g *scene.Graph) {
	unresolved := 0
	for i := range a.Channels {
		ch := &a.Channels[i]
		id, ok := g.FindBySourceIndex(g.Root(), ch.TargetNode)
		if !ok {
			unresolved++
		}
		ch.Target = id
	}
	if unresolved > 0 {
		logger.Debug("animation channels without graph target",
			zap.String("animation", a.Name),
			zap.Int("unresolved", unresolved),
			zap.Int("channels", len(a.Channels)))
	}
}
