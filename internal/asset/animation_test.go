package asset

import (
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/posegraph/internal/engine/animation"
	"github.com/Faultbox/posegraph/internal/logger"
	"github.com/Faultbox/posegraph/pkg/math"
)

func animatedDoc(t *testing.T, mode string) *docBuilder {
	t.Helper()
	b := skinnedDoc(newDocBuilder())
	times := b.floats("SCALAR", 0, 0.5, 1)

	var translations, weights int
	if mode == "CUBICSPLINE" {
		translations = b.floats("VEC3",
			0, 0, 0, 0, 0, 0, 1, 1, 1,
			0, 0, 0, 5, 0, 0, 0, 0, 0,
			1, 1, 1, 10, 0, 0, 0, 0, 0,
		)
		weights = b.floats("SCALAR",
			0, 0, 0, 0, 0, 0,
			0, 0, 0.5, 1, 0, 0,
			0, 0, 1, 0, 0, 0,
		)
	} else {
		translations = b.floats("VEC3", 0, 0, 0, 5, 0, 0, 10, 0, 0)
		weights = b.floats("SCALAR", 0, 0, 0.5, 1, 1, 0)
	}

	b.set("animations", []obj{{
		"name": "walk",
		"samplers": []obj{
			{"input": times, "output": translations, "interpolation": mode},
			{"input": times, "output": weights, "interpolation": mode},
		},
		"channels": []obj{
			{"sampler": 0, "target": obj{"node": 1, "path": "translation"}},
			{"sampler": 1, "target": obj{"node": 5, "path": "weights"}},
			{"sampler": 0, "target": obj{"path": "translation"}},
		},
	}})
	return b
}

func TestAnimationsLinear(t *testing.T) {
	doc := animatedDoc(t, "LINEAR").decode(t)

	anims, err := Animations(doc)
	if err != nil {
		t.Fatalf("Animations: %v", err)
	}
	if len(anims) != 1 {
		t.Fatalf("got %d animations, want 1", len(anims))
	}
	a := anims[0]
	if a.Name != "walk" {
		t.Errorf("Name = %q, want walk", a.Name)
	}
	if a.MinTime != 0 || a.MaxTime != 1 {
		t.Errorf("bounds = [%v, %v], want [0, 1]", a.MinTime, a.MaxTime)
	}

	// translation + two weight channels; the targetless channel is dropped
	if len(a.Channels) != 3 {
		t.Fatalf("got %d channels, want 3", len(a.Channels))
	}

	s := a.Samplers[0]
	if s.Mode != animation.InterpolationLinear {
		t.Errorf("mode = %v, want LINEAR", s.Mode)
	}
	wantFrames := []int{0, 30, 60}
	for i, k := range s.Keyframes {
		if k.Frame != wantFrames[i] {
			t.Errorf("key %d frame = %d, want %d", i, k.Frame, wantFrames[i])
		}
	}

	tr := a.Channels[0]
	if tr.TargetNode != 1 || tr.Path != animation.PathTranslation || len(tr.Keyframes) != 3 {
		t.Fatalf("translation channel = %+v", tr)
	}
	if v := tr.Keyframes[1].Value.(animation.Vec3Value); math.Vec3(v) != (math.Vec3{X: 5}) {
		t.Errorf("keyframe 1 = %v, want (5,0,0)", v)
	}

	for m, want := range [][]float32{{0, 0.5, 1}, {0, 1, 0}} {
		ch := a.Channels[1+m]
		if ch.Path != animation.PathWeight || ch.WeightIndex != m || ch.TargetNode != 5 {
			t.Errorf("weight channel %d = %+v", m, ch)
			continue
		}
		for k, kf := range ch.Keyframes {
			if got := float32(kf.Value.(animation.FloatValue)); got != want[k] {
				t.Errorf("morph %d key %d = %v, want %v", m, k, got, want[k])
			}
		}
	}
}

func TestAnimationsCubicSplineTriples(t *testing.T) {
	doc := animatedDoc(t, "CUBICSPLINE").decode(t)

	anims, err := Animations(doc)
	if err != nil {
		t.Fatalf("Animations: %v", err)
	}
	a := anims[0]
	if a.Samplers[0].Mode != animation.InterpolationCubicSpline {
		t.Fatalf("mode = %v, want CUBICSPLINE", a.Samplers[0].Mode)
	}

	tr := a.Channels[0]
	if len(tr.Keyframes) != 9 {
		t.Fatalf("got %d keyframes, want 9", len(tr.Keyframes))
	}
	if v := math.Vec3(tr.Keyframes[4].Value.(animation.Vec3Value)); v != (math.Vec3{X: 5}) {
		t.Errorf("value of key 1 = %v, want (5,0,0)", v)
	}
	if tr.Keyframes[3].Frame != 30 || tr.Keyframes[5].Frame != 30 {
		t.Error("tangents do not share their key's frame")
	}

	if ch := a.Channels[2]; len(ch.Keyframes) != 9 || float32(ch.Keyframes[4].Value.(animation.FloatValue)) != 1 {
		t.Errorf("morph 1 channel = %+v", ch)
	}
}

func TestLoadResolvesAndSamples(t *testing.T) {
	doc := animatedDoc(t, "LINEAR").decode(t)

	a, err := Load(doc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	walk := a.Animations[0]
	walk.ApplyPoseAt(a.Graph, 0.25)
	a.Graph.PropagateAll()

	hip, _ := a.Graph.FindBySourceIndex(a.Graph.Root(), 1)
	if got := a.Graph.Node(hip).Pose.Translation; !got.ApproxEqual(math.Vec3{X: 2.5}, eps) {
		t.Errorf("hip pose translation = %v, want (2.5,0,0)", got)
	}

	body, _ := a.Graph.FindBySourceIndex(a.Graph.Root(), 5)
	w := a.Graph.Node(body).Pose.BlendWeights
	if len(w) != 2 || w[0] != 0.25 || w[1] != 0.5 {
		t.Errorf("BlendWeights = %v, want [0.25 0.5]", w)
	}
	if len(a.Skins) != 1 || len(a.Skins[0].Bones) != 4 {
		t.Errorf("skins = %+v", a.Skins)
	}
}

func TestAnimationsBadSampler(t *testing.T) {
	b := animatedDoc(t, "LINEAR")
	anim := b.root["animations"].([]obj)[0]
	anim["channels"] = []obj{{"sampler": 7, "target": obj{"node": 1, "path": "translation"}}}
	doc := b.decode(t)

	if _, err := Animations(doc); !errors.Is(err, ErrSamplerIndex) {
		t.Errorf("error = %v, want %v", err, ErrSamplerIndex)
	}
}

func observeWarnings(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(nil) })
	return logs
}

func TestLoadSkipsOutputCountMismatch(t *testing.T) {
	logs := observeWarnings(t)
	b := skinnedDoc(newDocBuilder())
	times := b.floats("SCALAR", 0, 0.5, 1)
	short := b.floats("VEC3", 0, 0, 0, 5, 0, 0)
	good := b.floats("VEC3", 1, 1, 1, 2, 2, 2, 3, 3, 3)
	b.set("animations", []obj{{
		"samplers": []obj{
			{"input": times, "output": short},
			{"input": times, "output": good},
		},
		"channels": []obj{
			{"sampler": 0, "target": obj{"node": 1, "path": "translation"}},
			{"sampler": 1, "target": obj{"node": 2, "path": "scale"}},
		},
	}})
	doc := b.decode(t)

	a, err := Load(doc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	anim := a.Animations[0]
	if len(anim.Channels) != 1 || anim.Channels[0].Path != animation.PathScale {
		t.Fatalf("channels = %+v, want the scale channel only", anim.Channels)
	}
	if n := logs.FilterMessage("skipping animation channel").Len(); n != 1 {
		t.Errorf("got %d import warnings, want 1", n)
	}

	before := logs.Len()
	anim.SetPlaying(true)
	for i := 0; i < 60; i++ {
		anim.Advance(1.0 / 60)
		anim.ApplyPose(a.Graph)
	}
	if n := logs.Len() - before; n != 0 {
		t.Errorf("got %d warnings while playing, want 0", n)
	}
}

func TestLoadSkipsNonIncreasingSampler(t *testing.T) {
	logs := observeWarnings(t)
	b := skinnedDoc(newDocBuilder())
	repeated := b.floats("SCALAR", 0, 0.5, 0.5, 4)
	times := b.floats("SCALAR", 0, 2)
	out4 := b.floats("VEC3", 0, 0, 0, 1, 0, 0, 2, 0, 0, 3, 0, 0)
	out2 := b.floats("VEC3", 0, 0, 0, 1, 0, 0)
	b.set("animations", []obj{{
		"samplers": []obj{
			{"input": repeated, "output": out4},
			{"input": times, "output": out2},
		},
		"channels": []obj{
			{"sampler": 0, "target": obj{"node": 1, "path": "translation"}},
			{"sampler": 1, "target": obj{"node": 2, "path": "translation"}},
		},
	}})
	doc := b.decode(t)

	a, err := Load(doc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	anim := a.Animations[0]
	if len(anim.Samplers) != 2 || len(anim.Samplers[0].Keyframes) != 0 {
		t.Errorf("samplers = %+v, want the first one emptied", anim.Samplers)
	}
	if len(anim.Channels) != 1 || anim.Channels[0].Sampler != 1 {
		t.Errorf("channels = %+v, want only the sampler 1 channel", anim.Channels)
	}
	if anim.MinTime != 0 || anim.MaxTime != 2 {
		t.Errorf("bounds = [%v, %v], want [0, 2]", anim.MinTime, anim.MaxTime)
	}
	if n := logs.FilterMessage("skipping animation sampler").Len(); n != 1 {
		t.Errorf("got %d sampler warnings, want 1", n)
	}
}

func TestReadFloatsErrors(t *testing.T) {
	b := newDocBuilder()
	idx := b.floats("VEC3", 1, 2, 3)
	doc := b.decode(t)

	if _, _, err := readFloats(doc, 9); !errors.Is(err, ErrAccessorIndex) {
		t.Errorf("missing accessor error = %v", err)
	}

	doc.Accessors[idx].Count = 2
	if _, _, err := readFloats(doc, idx); !errors.Is(err, ErrTruncatedData) {
		t.Errorf("truncated error = %v", err)
	}

	doc.Accessors[idx].Count = 1
	got, comps, err := readFloats(doc, idx)
	if err != nil || comps != 3 || len(got) != 3 || got[2] != 3 {
		t.Errorf("readFloats = %v, %d, %v", got, comps, err)
	}
}
