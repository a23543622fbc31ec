package player

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/posegraph/internal/asset"
	"github.com/Faultbox/posegraph/internal/command"
	"github.com/Faultbox/posegraph/internal/engine/animation"
	"github.com/Faultbox/posegraph/internal/engine/debug"
	"github.com/Faultbox/posegraph/internal/engine/scene"
	"github.com/Faultbox/posegraph/internal/logger"
	"github.com/Faultbox/posegraph/pkg/math"
)

const eps = 1e-4

// newTestAsset builds root -> hip(bone, source 0) -> mesh(source 1, 2 morphs)
// and one "slide" animation moving hip from x=0 to x=10 over one second.
func newTestAsset(t *testing.T) *asset.Asset {
	t.Helper()
	g := scene.NewGraph()
	hip := g.AddChild(g.Root())
	mesh := g.AddChild(hip)
	g.Node(hip).Type = scene.NodeBone
	g.Node(hip).SourceIndex = 0
	g.Node(mesh).Type = scene.NodeMesh
	g.Node(mesh).SourceIndex = 1
	g.Node(mesh).Pose.BlendWeights = make([]float32, 2)

	a := animation.New("slide")
	a.Samplers = []animation.Sampler{{
		Mode: animation.InterpolationLinear,
		Keyframes: []animation.SamplerKey{
			{Frame: 0, Time: 0},
			{Frame: 60, Time: 1},
		},
	}}
	ch, err := animation.NewChannel(0, animation.PathTranslation, 0, []animation.Keyframe{
		{Frame: 0, Value: animation.Vec3Value(math.Vec3{})},
		{Frame: 60, Value: animation.Vec3Value(math.Vec3{X: 10})},
	})
	if err != nil {
		t.Fatalf("NewChannel: %v", err)
	}
	a.Channels = []animation.Channel{ch}
	a.Samplers[0].ComputeBounds()
	a.ComputeTimeBounds()
	a.ResolveTargets(g)

	return &asset.Asset{
		Graph:      g,
		Skins:      []asset.Skin{{Joints: []int{0}, Root: g.Root(), Bones: scene.Skeleton{hip}}},
		Animations: []*animation.Animation{a, animation.New("idle")},
	}
}

func TestNewSelectsStartAnimation(t *testing.T) {
	p := New(Config{StartAnimation: "idle"}, newTestAsset(t), command.NewQueue(4))
	if p.Active != 1 {
		t.Errorf("Active = %d, want 1", p.Active)
	}
	if p.ActiveAnimation().Playing {
		t.Error("animation playing without autoplay")
	}

	p = New(Config{StartAnimation: "missing", Autoplay: true}, newTestAsset(t), command.NewQueue(4))
	if p.Active != 0 || !p.ActiveAnimation().Playing {
		t.Errorf("fallback selection: Active=%d playing=%v", p.Active, p.ActiveAnimation().Playing)
	}
}

func TestNewWarnsOnMissingStartAnimation(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger.SetLogger(zap.New(core))
	defer logger.SetLogger(nil)

	New(Config{}, newTestAsset(t), command.NewQueue(4))
	if n := logs.Len(); n != 0 {
		t.Errorf("got %d warnings without a start animation, want 0", n)
	}

	p := New(Config{StartAnimation: "missing"}, newTestAsset(t), command.NewQueue(4))
	if p.Active != 0 {
		t.Errorf("Active = %d, want 0", p.Active)
	}
	if n := logs.FilterMessage("start animation not found, playing first").Len(); n != 1 {
		t.Errorf("got %d fallback warnings, want 1", n)
	}
}

func TestTickAnimates(t *testing.T) {
	a := newTestAsset(t)
	p := New(Config{Autoplay: true}, a, command.NewQueue(4))

	p.Tick(0.25)

	hip := p.Applier.Bones[0]
	if got := p.Graph.Node(hip).World.Translation(); !got.ApproxEqual(math.Vec3{X: 2.5}, eps) {
		t.Errorf("hip world = %v, want (2.5,0,0)", got)
	}
	mesh := p.Graph.Node(hip).Children[0]
	if got := p.Graph.Node(mesh).World.Translation(); !got.ApproxEqual(math.Vec3{X: 2.5}, eps) {
		t.Errorf("mesh world = %v, want to follow hip", got)
	}
}

func TestTickPausedKeepsPose(t *testing.T) {
	p := New(Config{Autoplay: true}, newTestAsset(t), command.NewQueue(4))
	p.Tick(0.5)
	p.Pause()
	p.Tick(0.25)

	if got := p.ActiveAnimation().Time(); got != 0.5 {
		t.Errorf("time = %v after pause, want 0.5", got)
	}
	hip := p.Applier.Bones[0]
	if got := p.Graph.Node(hip).World.Translation(); !got.ApproxEqual(math.Vec3{X: 5}, eps) {
		t.Errorf("hip world = %v, want (5,0,0)", got)
	}
}

func TestTickAppliesCommands(t *testing.T) {
	q := command.NewQueue(4)
	p := New(Config{DebugDraw: true, Draw: debug.DefaultDrawConfig()}, newTestAsset(t), q)

	q.TryPush(command.MorphWeight{Target: 1, Weight: 2})
	jt := command.NewJointTransform(0)
	jt.Translation = math.Vec3{Y: 3}
	q.TryPush(jt)
	q.TryPush(command.MorphWeight{Target: 5, Weight: 1})

	p.Tick(0)

	if q.Len() != 0 {
		t.Errorf("queue not drained: %d left", q.Len())
	}
	mesh := p.Applier.MorphTarget
	if w := p.Graph.Node(mesh).Pose.BlendWeights; w[1] != 1 {
		t.Errorf("weight = %v, want clamped 1", w[1])
	}
	hip := p.Applier.Bones[0]
	if got := p.Graph.Node(hip).World.Translation(); !got.ApproxEqual(math.Vec3{Y: 3}, eps) {
		t.Errorf("hip world = %v, want (0,3,0)", got)
	}
	if len(p.Geometry().Points) != 1 {
		t.Errorf("debug geometry has %d joint points, want 1", len(p.Geometry().Points))
	}
}

func TestSelectInvalid(t *testing.T) {
	p := New(Config{}, newTestAsset(t), command.NewQueue(1))
	if err := p.Select(7); !errors.Is(err, ErrNoAnimation) {
		t.Errorf("Select(7) = %v, want ErrNoAnimation", err)
	}
	if err := p.SelectByName("jump"); !errors.Is(err, ErrNoAnimation) {
		t.Errorf("SelectByName = %v, want ErrNoAnimation", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	q := command.NewQueue(4)
	p := New(Config{FPS: 200}, newTestAsset(t), q)
	q.TryPush(command.MorphWeight{Target: 0, Weight: 0.5})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}

	if w := p.Graph.Node(p.Applier.MorphTarget).Pose.BlendWeights[0]; w != 0.5 {
		t.Errorf("weight = %v, want 0.5 applied by the loop", w)
	}
}
