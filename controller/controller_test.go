package controller

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/band"
	"github.com/milk9111/slingshot/common"
	"github.com/milk9111/slingshot/events"
	"github.com/milk9111/slingshot/launch"
	"github.com/milk9111/slingshot/physics"
	"github.com/milk9111/slingshot/scene"
)

// topDown maps screen (x, y) straight onto world (x, z).
type topDown struct{}

func (topDown) ScreenRay(s mgl64.Vec2) (mgl64.Vec3, mgl64.Vec3, bool) {
	return mgl64.Vec3{s[0], 10, s[1]}, mgl64.Vec3{0, -1, 0}, true
}

type frame struct {
	pressed, released, overUI bool
	pos                       mgl64.Vec2
}

func (f frame) JustPressed() bool    { return f.pressed }
func (f frame) JustReleased() bool   { return f.released }
func (f frame) Position() mgl64.Vec2 { return f.pos }
func (f frame) OverBlockingUI() bool { return f.overUI }

type harness struct {
	world  *physics.World
	ctrl   *Controller
	simple *launch.SimpleBody
	view   *band.View
	events []events.Event
	start  common.Pose
}

func newRig() launch.Rig {
	parent := scene.NewNode("actor", common.NewPose(mgl64.Vec3{0, 1, 0}))
	left := scene.NewNode("anchor_l", common.NewPose(mgl64.Vec3{-0.3, 0, 0}))
	right := scene.NewNode("anchor_r", common.NewPose(mgl64.Vec3{0.3, 0, 0}))
	parent.AddChild(left)
	parent.AddChild(right)
	return launch.Rig{Parent: parent, LeftAnchor: left, RightAnchor: right}
}

func newView(t *testing.T) *band.View {
	t.Helper()
	v, err := band.NewView(
		scene.NewNode("pole_l", common.NewPose(mgl64.Vec3{-1, 1, 0})),
		scene.NewNode("pole_r", common.NewPose(mgl64.Vec3{1, 1, 0})),
		band.DefaultConfig(),
	)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	return v
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{world: physics.NewWorld(mgl64.Vec3{0, -9.81, 0})}
	r := newRig()
	b := physics.NewBody("ball", r.Parent, 1, physics.NewSphere(0.2, mgl64.Vec3{}))
	h.world.AddBody(b)
	s, err := launch.NewSimpleBody(r, b)
	if err != nil {
		t.Fatalf("NewSimpleBody: %v", err)
	}
	h.simple = s
	h.start = r.Parent.World()

	probe := physics.NewProbe()
	probe.AddBox("wall", mgl64.Vec3{-5, 0, 10}, mgl64.Vec3{5, 20, 11})

	bus := events.NewBus()
	bus.SubscribeAll(func(e events.Event) { h.events = append(h.events, e) })

	h.view = newView(t)
	h.ctrl = New(cfg, s, h.view, topDown{}, probe, bus)
	return h
}

// drag presses at the band center, moves to (x, z) and optionally releases.
func (h *harness) drag(x, z float64, release bool) {
	h.ctrl.Update(frame{pressed: true, pos: mgl64.Vec2{0, 0}})
	h.ctrl.Update(frame{pos: mgl64.Vec2{x, z}})
	if release {
		h.ctrl.Update(frame{released: true, pos: mgl64.Vec2{x, z}})
	}
}

func (h *harness) kinds() []events.Kind {
	out := make([]events.Kind, 0, len(h.events))
	for _, e := range h.events {
		out = append(out, e.Kind)
	}
	return out
}

func (h *harness) count(k events.Kind) int {
	n := 0
	for _, e := range h.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

func TestShortPullCancels(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.drag(0, -0.1, true)

	if h.ctrl.State() != StateIdle {
		t.Fatalf("state = %s", h.ctrl.State())
	}
	if h.simple.IsLaunching() {
		t.Fatalf("launch happened on a short pull")
	}
	if !h.simple.Parent().World().ApproxEqual(h.start, 1e-12) {
		t.Fatalf("pose %+v, want %+v", h.simple.Parent().World(), h.start)
	}
	if !h.simple.Kinematic() {
		t.Fatalf("kinematic state not restored")
	}
	kinds := h.kinds()
	if kinds[0] != events.EnterAiming || kinds[len(kinds)-1] != events.Cancelled {
		t.Fatalf("events = %v", kinds)
	}
	if h.count(events.LaunchStarted) != 0 || h.count(events.ReleaseStarted) != 0 {
		t.Fatalf("launch notifications on cancel: %v", kinds)
	}
	if !h.ctrl.InputEnabled() {
		t.Fatalf("cancel must keep input enabled")
	}
}

func TestHalfPullLaunches(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.drag(0, -2.5, false)

	if h.ctrl.State() != StateDragging {
		t.Fatalf("state = %s", h.ctrl.State())
	}
	if pos := h.simple.Parent().Position(); !pos.ApproxEqualThreshold(mgl64.Vec3{0, 1, -2.5}, 1e-9) {
		t.Fatalf("actor at %v while pulling", pos)
	}
	if len(h.view.Band()) != 4 {
		t.Fatalf("band not drawn through the anchors")
	}
	if hit, ok := h.ctrl.PreviewHit(); !ok || hit.Name != "wall" {
		t.Fatalf("preview = %+v, %t", hit, ok)
	}

	if !h.ctrl.Release() {
		t.Fatalf("release did not launch")
	}
	p := h.ctrl.Params()
	if math.Abs(p.AngleDeg-35) > 1e-9 {
		t.Fatalf("angle = %v", p.AngleDeg)
	}
	rad := common.Deg2Rad(35)
	wantVel := mgl64.Vec3{0, math.Sin(rad), math.Cos(rad)}.Mul(5)
	if v := h.simple.Body().Velocity(); !v.ApproxEqualThreshold(wantVel, 1e-9) {
		t.Fatalf("velocity = %v, want %v", v, wantVel)
	}
	if h.ctrl.State() != StateLaunched || h.ctrl.InputEnabled() {
		t.Fatalf("input should be disabled after launch")
	}
	if h.view.Mode() != band.ModeSnapping {
		t.Fatalf("band not snapping back")
	}

	kinds := h.kinds()
	n := len(kinds)
	if kinds[0] != events.EnterAiming {
		t.Fatalf("first event %s", kinds[0])
	}
	if kinds[n-2] != events.ReleaseStarted || kinds[n-1] != events.LaunchStarted {
		t.Fatalf("events = %v", kinds)
	}
	if h.count(events.PreviewUpdated) < 1 {
		t.Fatalf("no preview updates")
	}

	// input stays off until reset
	before := len(h.events)
	h.ctrl.Update(frame{pressed: true})
	if h.ctrl.State() != StateLaunched || len(h.events) != before {
		t.Fatalf("press accepted after launch")
	}
}

func TestPreviewOnlyFiresOnChange(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.drag(0, -2.5, false)
	n := h.count(events.PreviewUpdated)
	h.ctrl.Update(frame{pos: mgl64.Vec2{0, -2.5}})
	h.ctrl.Update(frame{pos: mgl64.Vec2{0, -2.5}})
	if got := h.count(events.PreviewUpdated); got != n {
		t.Fatalf("preview fired %d more times without change", got-n)
	}
	h.ctrl.Update(frame{pos: mgl64.Vec2{0, -4}})
	if got := h.count(events.PreviewUpdated); got != n+1 {
		t.Fatalf("preview did not fire after moving, count %d", got)
	}
}

func TestPullConstraints(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		x, z   float64
		want   mgl64.Vec3
	}{
		{"forward_removed", func(*Config) {}, 2, 2, mgl64.Vec3{2, 1, 0}},
		{"clamped_to_max", func(*Config) {}, 0, -9, mgl64.Vec3{0, 1, -5}},
		{"between_poles", func(c *Config) { c.ClampBetweenPoles = true; c.PoleInset = 0.1 }, 2, -1, mgl64.Vec3{0.9, 1, -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			h := newHarness(t, cfg)
			h.drag(tc.x, tc.z, false)
			if got := h.ctrl.Pull().PullPoint; !got.ApproxEqualThreshold(tc.want, 1e-9) {
				t.Fatalf("pull point = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPullAheadOfBandCancels(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.drag(0, 3, true)
	if h.simple.IsLaunching() || h.count(events.Cancelled) != 1 {
		t.Fatalf("forward pull should cancel, events %v", h.kinds())
	}
}

func TestCancelZone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CancelZone = CancelZone{Center: mgl64.Vec3{0, 1, -3}, Radius: 1}
	h := newHarness(t, cfg)
	h.drag(0, -3, true)
	if h.simple.IsLaunching() || h.count(events.Cancelled) != 1 {
		t.Fatalf("release in cancel zone should cancel")
	}
}

func TestMovementLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MovementStartLimit = scene.NewNode("limit_start", common.NewPose(mgl64.Vec3{0, 0.5, -1}))
	cfg.MovementEndYLimit = scene.NewNode("limit_end", common.NewPose(mgl64.Vec3{0, 0.8, 0}))
	h := newHarness(t, cfg)
	h.drag(0, -0.5, false)
	if pos := h.simple.Parent().Position(); !pos.ApproxEqualThreshold(mgl64.Vec3{0, 0.8, -1}, 1e-9) {
		t.Fatalf("actor at %v", pos)
	}
}

func TestBlockingUIAndMisconfiguration(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.ctrl.Update(frame{pressed: true, overUI: true})
	if h.ctrl.State() != StateIdle || len(h.events) != 0 {
		t.Fatalf("press over UI started a drag")
	}

	noCap := New(DefaultConfig(), nil, newView(t), topDown{}, nil, nil)
	if noCap.BeginDrag(false) {
		t.Fatalf("drag started without a capability")
	}

	bad := DefaultConfig()
	bad.MaxPullDistance = 0
	h.ctrl.SetConfig(bad)
	if h.ctrl.BeginDrag(false) {
		t.Fatalf("drag started with a broken config")
	}
}

type failingCapability struct {
	launch.Capability
	calls int
}

func (f *failingCapability) Launch(mgl64.Vec3, float64) error {
	f.calls++
	return launch.ErrNoBody
}

func TestLaunchErrorCancels(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	fc := &failingCapability{Capability: h.simple}
	h.ctrl = New(DefaultConfig(), fc, h.view, topDown{}, nil, nil)

	h.drag(0, -2.5, true)
	if fc.calls != 1 {
		t.Fatalf("launch calls = %d", fc.calls)
	}
	if h.ctrl.State() != StateIdle || !h.ctrl.InputEnabled() {
		t.Fatalf("failed launch should return to idle")
	}
	if !h.simple.Parent().World().ApproxEqual(h.start, 1e-12) {
		t.Fatalf("pose not restored after failed launch")
	}
}

func TestResetAfterLaunch(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.drag(0, -2.5, true)
	for i := 0; i < 30; i++ {
		h.world.Step(physics.DefaultFixedDelta)
	}

	h.ctrl.Reset()
	if h.ctrl.State() != StateIdle || !h.ctrl.InputEnabled() {
		t.Fatalf("reset did not re-enable input")
	}
	if h.simple.IsLaunching() || !h.simple.Kinematic() {
		t.Fatalf("capability not reset")
	}
	if v := h.simple.Body().Velocity(); v != (mgl64.Vec3{}) {
		t.Fatalf("velocity = %v", v)
	}
	if !h.simple.Parent().World().ApproxEqual(h.start, 1e-12) {
		t.Fatalf("pose not restored")
	}
	if h.kinds()[len(h.events)-1] != events.Reset {
		t.Fatalf("no reset notification")
	}

	h.drag(0, -2.5, true)
	if !h.simple.IsLaunching() {
		t.Fatalf("second launch after reset failed")
	}
}

func TestSetConfigDuringDragIsDeferred(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.drag(0, -2.5, false)

	next := DefaultConfig()
	next.MaxLaunchAngleDeg = 80
	h.ctrl.SetConfig(next)
	if h.ctrl.Config().MaxLaunchAngleDeg != 60 {
		t.Fatalf("config swapped mid-drag")
	}
	h.ctrl.Release()
	if h.ctrl.Config().MaxLaunchAngleDeg != 80 {
		t.Fatalf("pending config not applied")
	}
}

func TestReleaseWithoutDrag(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	if h.ctrl.Release() {
		t.Fatalf("release from idle launched")
	}
	if !errors.Is(New(DefaultConfig(), nil, nil, nil, nil, nil).validate(), ErrMisconfigured) {
		t.Fatalf("expected ErrMisconfigured")
	}
}
