// Package player implements the simulation loop: it owns the scene graph,
// applies queued pose commands, plays the active animation and propagates
// world transforms once per tick.
package player

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/posegraph/internal/asset"
	"github.com/Faultbox/posegraph/internal/command"
	"github.com/Faultbox/posegraph/internal/engine/animation"
	"github.com/Faultbox/posegraph/internal/engine/debug"
	"github.com/Faultbox/posegraph/internal/engine/scene"
	"github.com/Faultbox/posegraph/internal/logger"
)

// ErrNoAnimation is returned when selecting an animation that does not exist.
var ErrNoAnimation = errors.New("no such animation")

// Config holds player configuration.
type Config struct {
	FPS            int
	Autoplay       bool
	StartAnimation string
	// DebugDraw enables skeleton geometry generation after each tick.
	DebugDraw bool
	Draw      debug.DrawConfig
}

// Player drives one loaded asset. All methods must be called from the
// goroutine running the simulation; only Queue is safe for other goroutines.
type Player struct {
	config     Config
	Graph      *scene.Graph
	Animations []*animation.Animation
	// Active is the index of the playing animation, -1 for none.
	Active  int
	Queue   *command.Queue
	Applier *command.Applier

	geometry debug.Geometry
}

// New creates a player for a, reading commands from q. The first skin's bone
// list receives joint commands.
func New(cfg Config, a *asset.Asset, q *command.Queue) *Player {
	if cfg.FPS <= 0 {
		cfg.FPS = int(animation.FPS)
	}
	p := &Player{
		config:     cfg,
		Graph:      a.Graph,
		Animations: a.Animations,
		Active:     -1,
		Queue:      q,
		Applier: &command.Applier{
			Graph:       a.Graph,
			MorphTarget: command.MorphTargetNode(a.Graph, a.Graph.Root()),
		},
	}
	if len(a.Skins) > 0 {
		p.Applier.Bones = a.Skins[0].Bones
	}

	if len(p.Animations) > 0 {
		if err := p.SelectByName(cfg.StartAnimation); err != nil {
			if cfg.StartAnimation != "" {
				logger.Warn("start animation not found, playing first", zap.Error(err))
			}
			if err := p.Select(0); err != nil {
				logger.Error("selecting first animation", zap.Error(err))
			}
		}
		if cfg.Autoplay {
			p.Play()
		}
	}
	p.Graph.PropagateAll()

	logger.Info("player initialized",
		zap.Int("fps", cfg.FPS),
		zap.Int("animations", len(p.Animations)),
		zap.Int("joints", len(p.Applier.Bones)),
		zap.Bool("autoplay", cfg.Autoplay))
	return p
}

// Select makes animation i the active one, rewound and paused.
func (p *Player) Select(i int) error {
	if i < 0 || i >= len(p.Animations) {
		return errors.Wrapf(ErrNoAnimation, "index %d", i)
	}
	if cur := p.ActiveAnimation(); cur != nil {
		cur.SetPlaying(false)
	}
	p.Active = i
	p.Animations[i].Reset()
	logger.Debug("animation selected", zap.Int("index", i), zap.String("name", p.Animations[i].Name))
	return nil
}

// SelectByName selects the first animation called name.
func (p *Player) SelectByName(name string) error {
	for i, a := range p.Animations {
		if a.Name == name {
			return p.Select(i)
		}
	}
	return errors.Wrapf(ErrNoAnimation, "name %q", name)
}

// ActiveAnimation returns the selected animation or nil.
func (p *Player) ActiveAnimation() *animation.Animation {
	if p.Active < 0 || p.Active >= len(p.Animations) {
		return nil
	}
	return p.Animations[p.Active]
}

// Play resumes the active animation.
func (p *Player) Play() {
	if a := p.ActiveAnimation(); a != nil {
		a.SetPlaying(true)
	}
}

// Pause stops the active animation clock. Its pose stays applied.
func (p *Player) Pause() {
	if a := p.ActiveAnimation(); a != nil {
		a.SetPlaying(false)
	}
}

// Tick advances the simulation by dt seconds: pending commands are applied,
// the active animation is advanced and sampled, then world transforms are
// recomputed for the whole graph.
func (p *Player) Tick(dt float32) {
	if cmds := p.Queue.Drain(); len(cmds) > 0 {
		applied := p.Applier.ApplyAll(cmds)
		logger.Debug("commands applied", zap.Int("received", len(cmds)), zap.Int("applied", applied))
	}

	if a := p.ActiveAnimation(); a != nil {
		a.Advance(dt)
		if a.Playing {
			a.ApplyPose(p.Graph)
		}
	}

	p.Graph.PropagateAll()

	if p.config.DebugDraw {
		p.geometry = debug.SkeletonLines(p.Graph, p.config.Draw)
	}
}

// Geometry returns the skeleton debug geometry of the last tick.
func (p *Player) Geometry() debug.Geometry {
	return p.geometry
}

// Run ticks at the configured rate until ctx is done.
func (p *Player) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(p.config.FPS))
	defer ticker.Stop()

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting simulation loop")

	for {
		select {
		case <-ctx.Done():
			logger.Info("simulation loop stopped")
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now

			p.Tick(float32(dt))

			// FPS counter
			frameCount++
			if time.Since(fpsTimer) >= time.Second {
				logger.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
				frameCount = 0
				fpsTimer = time.Now()
			}
		}
	}
}
