package launch

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/common"
	"github.com/milk9111/slingshot/physics"
	"github.com/milk9111/slingshot/ragdoll"
	"github.com/milk9111/slingshot/scene"
)

const tol = 1e-9

func newWorld() *physics.World {
	return physics.NewWorld(mgl64.Vec3{0, -9.81, 0})
}

func newRigNodes() Rig {
	parent := scene.NewNode("actor", common.NewPose(mgl64.Vec3{0, 1, 0}))
	left := scene.NewNode("anchor_l", common.NewPose(mgl64.Vec3{-0.5, 0, 0}))
	right := scene.NewNode("anchor_r", common.NewPose(mgl64.Vec3{0.5, 0, 0}))
	parent.AddChild(left)
	parent.AddChild(right)
	return Rig{Parent: parent, LeftAnchor: left, RightAnchor: right}
}

func step(w *physics.World, n int) {
	for i := 0; i < n; i++ {
		w.Step(physics.DefaultFixedDelta)
	}
}

func newSimple(t *testing.T) (*physics.World, *SimpleBody) {
	t.Helper()
	w := newWorld()
	r := newRigNodes()
	b := physics.NewBody("ball", r.Parent, 1, physics.NewSphere(0.25, mgl64.Vec3{}))
	w.AddBody(b)
	s, err := NewSimpleBody(r, b)
	if err != nil {
		t.Fatalf("NewSimpleBody: %v", err)
	}
	return w, s
}

type delayedRig struct {
	world    *physics.World
	d        *DelayedRagdoll
	bodies   []*physics.Body
	launcher *physics.Body
	rest     []common.Pose
}

func newDelayed(t *testing.T, cfg DelayedConfig) *delayedRig {
	t.Helper()
	w := newWorld()
	r := newRigNodes()
	root := scene.NewNode("ragdoll", common.NewPose(mgl64.Vec3{}))
	r.Parent.AddChild(root)

	parts := []struct {
		name string
		pos  mgl64.Vec3
		mass float64
	}{
		{"head", mgl64.Vec3{0, 0.8, 0}, 1},
		{"torso", mgl64.Vec3{0, 0.3, 0}, 3},
		{"legs", mgl64.Vec3{0, -0.3, 0}, 2},
	}
	out := &delayedRig{world: w}
	for _, p := range parts {
		n := scene.NewNode(p.name, common.NewPose(p.pos))
		root.AddChild(n)
		b := physics.NewBody(p.name, n, p.mass, physics.NewSphere(0.2, mgl64.Vec3{}))
		w.AddBody(b)
		out.bodies = append(out.bodies, b)
		out.rest = append(out.rest, n.World())
	}

	ln := scene.NewNode("launcher", common.NewPose(mgl64.Vec3{0, 1.5, 0}))
	out.launcher = physics.NewBody("launcher", ln, 1, physics.NewSphere(0.3, mgl64.Vec3{}))
	w.AddBody(out.launcher)

	a, err := ragdoll.Collect(root, w, nil)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	d, err := NewDelayedRagdoll(w, r, a, out.launcher, cfg)
	if err != nil {
		t.Fatalf("NewDelayedRagdoll: %v", err)
	}
	out.d = d
	return out
}

func (dr *delayedRig) assertFrozen(t *testing.T) {
	t.Helper()
	for _, b := range dr.bodies {
		if !b.Kinematic() {
			t.Fatalf("%s left kinematic state", b.Name)
		}
		if b.Velocity() != (mgl64.Vec3{}) || b.AngularVelocity() != (mgl64.Vec3{}) {
			t.Fatalf("%s has velocity %v / %v", b.Name, b.Velocity(), b.AngularVelocity())
		}
	}
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		err  bool
	}{
		{"simple_body", KindSimpleBody, false},
		{"Ramp", KindRampGuided, false},
		{" delayed_ragdoll ", KindDelayedRagdoll, false},
		{"", KindSimpleBody, false},
		{"catapult", KindSimpleBody, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseKind(tc.in)
			if (err != nil) != tc.err {
				t.Fatalf("err = %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestRigValidation(t *testing.T) {
	w := newWorld()
	r := newRigNodes()
	b := physics.NewBody("ball", r.Parent, 1)

	if _, err := NewSimpleBody(Rig{LeftAnchor: r.LeftAnchor, RightAnchor: r.RightAnchor}, b); !errors.Is(err, ErrNoParent) {
		t.Fatalf("expected ErrNoParent, got %v", err)
	}
	if _, err := NewSimpleBody(Rig{Parent: r.Parent}, b); !errors.Is(err, ErrNoAnchors) {
		t.Fatalf("expected ErrNoAnchors, got %v", err)
	}
	if _, err := NewSimpleBody(r, nil); !errors.Is(err, ErrNoBody) {
		t.Fatalf("expected ErrNoBody, got %v", err)
	}
	if _, err := NewRampGuided(w, r, b, RampConfig{}); !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath, got %v", err)
	}
	if _, err := NewDelayedRagdoll(w, r, nil, b, DelayedConfig{}); !errors.Is(err, ErrNoAssembly) {
		t.Fatalf("expected ErrNoAssembly, got %v", err)
	}
}

func TestSimpleBodyLaunch(t *testing.T) {
	w, s := newSimple(t)
	if !s.Kinematic() || s.IsLaunching() {
		t.Fatalf("simple body should start frozen and idle")
	}
	if s.Follow() != s.Parent() {
		t.Fatalf("follow should default to the parent")
	}

	// drift the visual pose while aiming; launch must pick it up
	s.Parent().SetPosition(mgl64.Vec3{0, 1, -1})
	if err := s.Launch(mgl64.Vec3{0, 0, 3}, 2); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	b := s.Body()
	if b.Kinematic() || !b.UseGravity() || b.Mode != physics.CollisionContinuous {
		t.Fatalf("body not released to physics")
	}
	if !b.Pose().Position.ApproxEqualThreshold(mgl64.Vec3{0, 1, -1}, tol) {
		t.Fatalf("physics pose not synced: %v", b.Pose().Position)
	}
	if v := b.Velocity(); !v.ApproxEqualThreshold(mgl64.Vec3{0, 0, 2}, tol) {
		t.Fatalf("velocity = %v", v)
	}
	if err := s.Launch(mgl64.Vec3{0, 0, 1}, 2); !errors.Is(err, ErrAlreadyLaunching) {
		t.Fatalf("expected ErrAlreadyLaunching, got %v", err)
	}

	step(w, 10)
	if s.Parent().Position()[2] <= -1 {
		t.Fatalf("parent did not follow the body: %v", s.Parent().Position())
	}
}

func TestSimpleBodyRejectsDegenerateLaunch(t *testing.T) {
	_, s := newSimple(t)
	if err := s.Launch(mgl64.Vec3{0.001, 0, 0}, 2); !errors.Is(err, ErrNoDirection) {
		t.Fatalf("expected ErrNoDirection, got %v", err)
	}
	if err := s.Launch(mgl64.Vec3{0, 0, 1}, 0); !errors.Is(err, ErrNoImpulse) {
		t.Fatalf("expected ErrNoImpulse, got %v", err)
	}
	if s.IsLaunching() || !s.Kinematic() {
		t.Fatalf("rejected launch changed state")
	}
}

func TestRampGuidedFollowsPathThenReleases(t *testing.T) {
	w := newWorld()
	r := newRigNodes()
	b := physics.NewBody("sled", r.Parent, 1, physics.NewSphere(0.25, mgl64.Vec3{}))
	w.AddBody(b)
	start := scene.NewNode("ramp_start", common.NewPose(mgl64.Vec3{0, 1, 0}))
	end := scene.NewNode("ramp_end", common.NewPose(mgl64.Vec3{0, 1, 4}))

	rg, err := NewRampGuided(w, r, b, RampConfig{Start: start, End: end, Overrun: 0.1})
	if err != nil {
		t.Fatalf("NewRampGuided: %v", err)
	}
	defer rg.Close()

	if err := rg.Launch(mgl64.Vec3{0, 0, 1}, 10); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if rg.Phase() != RampOnPath {
		t.Fatalf("phase = %s", rg.Phase())
	}

	// 10 ticks at 10 m/s with a 0.02s step
	step(w, 10)
	if z := b.Pose().Position[2]; z < 1.99 || z > 2.01 {
		t.Fatalf("halfway position z = %v, want 2", z)
	}
	if !b.Kinematic() {
		t.Fatalf("body should stay kinematic on the path")
	}
	rg.SetKinematic(false)
	if !b.Kinematic() {
		t.Fatalf("SetKinematic must not interrupt the path")
	}

	step(w, 15)
	if rg.Phase() != RampFree {
		t.Fatalf("phase = %s after passing the end", rg.Phase())
	}
	if b.Kinematic() || !b.UseGravity() {
		t.Fatalf("body not released")
	}
	if v := b.Velocity(); v[2] < 9.999 || v[2] > 10.001 {
		t.Fatalf("release velocity = %v", v)
	}
}

func TestRampGuidedEasesFromPulledPose(t *testing.T) {
	w := newWorld()
	r := newRigNodes()
	b := physics.NewBody("sled", r.Parent, 1, physics.NewSphere(0.25, mgl64.Vec3{}))
	w.AddBody(b)
	start := scene.NewNode("ramp_start", common.NewPose(mgl64.Vec3{0, 1, 0}))
	end := scene.NewNode("ramp_end", common.NewPose(mgl64.Vec3{0, 1, 4}))

	rg, err := NewRampGuided(w, r, b, RampConfig{Start: start, End: end, Overrun: 0.1})
	if err != nil {
		t.Fatalf("NewRampGuided: %v", err)
	}
	defer rg.Close()

	pulled := mgl64.Vec3{0, 1, -1}
	r.Parent.SetPosition(pulled)
	if err := rg.Launch(mgl64.Vec3{0, 0, 1}, 10); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if got := r.Parent.Position(); !got.ApproxEqualThreshold(pulled, tol) {
		t.Fatalf("launch moved the actor to %v", got)
	}
	if rg.LeadLength() != 1 || rg.PathLength() != 5 {
		t.Fatalf("lead = %v, path = %v", rg.LeadLength(), rg.PathLength())
	}

	step(w, 1)
	if z := b.Pose().Position[2]; math.Abs(z+0.8) > 1e-6 {
		t.Fatalf("first tick z = %v, want -0.8", z)
	}
	step(w, 4)
	if got := b.Pose().Position; !got.ApproxEqualThreshold(start.Position(), 1e-6) {
		t.Fatalf("lead-in ends at %v, want ramp start", got)
	}
	step(w, 10)
	if z := b.Pose().Position[2]; math.Abs(z-2) > 1e-6 {
		t.Fatalf("ramp halfway z = %v, want 2", z)
	}
	step(w, 12)
	if rg.Phase() != RampFree {
		t.Fatalf("phase = %s after passing the end", rg.Phase())
	}

	rg.ResetToInitial()
	if rg.LeadLength() != 0 || rg.PathLength() != 4 {
		t.Fatalf("after reset lead = %v, path = %v", rg.LeadLength(), rg.PathLength())
	}
}

func TestDelayedRagdollResetFromHandoffCallback(t *testing.T) {
	dr := newDelayed(t, DelayedConfig{Delay: 0.04, InheritLauncherVelocity: true})
	d := dr.d
	defer d.Close()

	d.OnHandoff = func(common.Pose) {
		if d.Phase() != PhaseRagdoll || d.Kinematic() || dr.launcher.Enabled() {
			t.Fatalf("handoff incomplete when the callback ran")
		}
		d.ResetToInitial()
	}
	if err := d.Launch(mgl64.Vec3{0, 1, 1}, 5); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	step(dr.world, 2)

	if d.Phase() != PhaseAiming || !d.Kinematic() {
		t.Fatalf("phase = %s kinematic = %v after reset", d.Phase(), d.Kinematic())
	}
	for i := 0; i < 10; i++ {
		dr.world.Step(physics.DefaultFixedDelta)
		dr.assertFrozen(t)
	}
	for i, b := range dr.bodies {
		if !b.Node.World().ApproxEqual(dr.rest[i], tol) {
			t.Fatalf("%s at %+v, want %+v", b.Name, b.Node.World(), dr.rest[i])
		}
	}
}

func TestDelayedRagdollHandoffInheritsLauncherVelocity(t *testing.T) {
	dr := newDelayed(t, DelayedConfig{Delay: 0.1, InheritLauncherVelocity: true})
	d := dr.d
	defer d.Close()

	if dr.launcher.Enabled() {
		t.Fatalf("launcher should be disabled while aiming")
	}
	if d.Follow() != d.Parent() {
		t.Fatalf("follow should be the parent while aiming")
	}

	handoffs := 0
	d.OnHandoff = func(common.Pose) {
		handoffs++
		lin, ang := d.HandoffVelocity()
		if lin.Len() < 1 {
			t.Fatalf("launcher barely moved: %v", lin)
		}
		for _, b := range dr.bodies {
			if !b.Velocity().ApproxEqualThreshold(lin, tol) {
				t.Fatalf("%s linear = %v, want %v", b.Name, b.Velocity(), lin)
			}
			if !b.AngularVelocity().ApproxEqualThreshold(ang, tol) {
				t.Fatalf("%s angular = %v, want %v", b.Name, b.AngularVelocity(), ang)
			}
		}
	}

	if err := d.Launch(mgl64.Vec3{0, 1, 1}, 5); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if d.Phase() != PhaseFlying || !dr.launcher.Enabled() || dr.launcher.Kinematic() {
		t.Fatalf("launcher not flying")
	}
	if !dr.launcher.Pose().Position.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, tol) {
		t.Fatalf("launcher should start at the root pose, got %v", dr.launcher.Pose().Position)
	}
	dr.launcher.SetAngularVelocity(mgl64.Vec3{0, 2, 0})
	if d.Follow() != dr.launcher.Node {
		t.Fatalf("follow should track the launcher while flying")
	}

	step(dr.world, 4)
	dr.assertFrozen(t)
	if handoffs != 0 {
		t.Fatalf("handoff before the delay")
	}

	step(dr.world, 1)
	if handoffs != 1 {
		t.Fatalf("handoffs = %d after the delay", handoffs)
	}
	if d.Phase() != PhaseRagdoll {
		t.Fatalf("phase = %s", d.Phase())
	}
	if dr.launcher.Enabled() || !dr.launcher.Kinematic() || dr.launcher.Velocity() != (mgl64.Vec3{}) {
		t.Fatalf("launcher not retired after handoff")
	}
	if d.Kinematic() {
		t.Fatalf("assembly still kinematic")
	}
	if d.Follow() != d.Assembly().Main().Node {
		t.Fatalf("follow should move to the main body")
	}

	step(dr.world, 10)
	if handoffs != 1 {
		t.Fatalf("handoff fired again")
	}
}

func TestDelayedRagdollHandoffWithoutInheritance(t *testing.T) {
	dr := newDelayed(t, DelayedConfig{Delay: 0.04})
	d := dr.d
	defer d.Close()

	if err := d.Launch(mgl64.Vec3{0, 0, 1}, 6); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	fired := false
	d.OnHandoff = func(common.Pose) {
		fired = true
		main := d.Assembly().Main()
		// 6 units of impulse on the 3kg torso
		if v := main.Velocity(); v[2] < 1.999 || v[2] > 2.001 {
			t.Fatalf("main velocity = %v", v)
		}
	}
	step(dr.world, 2)
	if !fired {
		t.Fatalf("no handoff")
	}
}

func TestDelayedRagdollResetDuringFlight(t *testing.T) {
	dr := newDelayed(t, DelayedConfig{Delay: 0.5, InheritLauncherVelocity: true})
	d := dr.d
	defer d.Close()

	handoffs := 0
	d.OnHandoff = func(common.Pose) { handoffs++ }

	if err := d.Launch(mgl64.Vec3{0, 1, 1}, 8); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	// 0.3s of physics time
	for i := 0; i < 15; i++ {
		dr.world.Step(physics.DefaultFixedDelta)
		dr.assertFrozen(t)
	}
	if d.Phase() != PhaseFlying {
		t.Fatalf("phase = %s", d.Phase())
	}

	d.ResetToInitial()
	if !d.Timer().Cancelled() {
		t.Fatalf("timer not cancelled")
	}
	for i := 0; i < 40; i++ {
		dr.world.Step(physics.DefaultFixedDelta)
		dr.assertFrozen(t)
	}

	if handoffs != 0 {
		t.Fatalf("cancelled handoff still fired")
	}
	if d.Phase() != PhaseAiming {
		t.Fatalf("phase = %s", d.Phase())
	}
	if dr.launcher.Enabled() || !dr.launcher.Kinematic() {
		t.Fatalf("launcher still live")
	}
	if !dr.launcher.Pose().Position.ApproxEqualThreshold(mgl64.Vec3{0, 1.5, 0}, tol) {
		t.Fatalf("launcher at %v, want its start offset", dr.launcher.Pose().Position)
	}
	for i, b := range dr.bodies {
		if !b.Node.World().ApproxEqual(dr.rest[i], tol) {
			t.Fatalf("%s at %+v, want %+v", b.Name, b.Node.World(), dr.rest[i])
		}
	}
}

func TestDelayedRagdollDisableCancels(t *testing.T) {
	dr := newDelayed(t, DelayedConfig{Delay: 0.1, InheritLauncherVelocity: true})
	d := dr.d
	defer d.Close()

	if err := d.Launch(mgl64.Vec3{0, 0, 1}, 4); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	step(dr.world, 2)
	d.SetEnabled(false)
	step(dr.world, 20)
	dr.assertFrozen(t)
	if d.Phase() != PhaseAiming {
		t.Fatalf("phase = %s", d.Phase())
	}
	if err := d.Launch(mgl64.Vec3{0, 0, 1}, 4); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
	d.SetEnabled(true)
	if err := d.Launch(mgl64.Vec3{0, 0, 1}, 4); err != nil {
		t.Fatalf("Launch after re-enable: %v", err)
	}
}

func TestResetToInitialFromEveryState(t *testing.T) {
	type subject struct {
		capability Capability
		world      *physics.World
		bodies     []*physics.Body
	}
	builders := map[string]func(t *testing.T) subject{
		"simple_body": func(t *testing.T) subject {
			w, s := newSimple(t)
			return subject{s, w, []*physics.Body{s.Body()}}
		},
		"ramp_guided": func(t *testing.T) subject {
			w := newWorld()
			r := newRigNodes()
			b := physics.NewBody("sled", r.Parent, 1, physics.NewSphere(0.25, mgl64.Vec3{}))
			w.AddBody(b)
			rg, err := NewRampGuided(w, r, b, RampConfig{
				Start: scene.NewNode("s", common.NewPose(mgl64.Vec3{0, 1, 0})),
				End:   scene.NewNode("e", common.NewPose(mgl64.Vec3{0, 1, 1})),
			})
			if err != nil {
				t.Fatalf("NewRampGuided: %v", err)
			}
			return subject{rg, w, []*physics.Body{b}}
		},
		"delayed_ragdoll": func(t *testing.T) subject {
			dr := newDelayed(t, DelayedConfig{Delay: 0.1, InheritLauncherVelocity: true})
			return subject{dr.d, dr.world, dr.bodies}
		},
	}
	// how many physics steps to run after launching
	states := map[string]int{"aiming": -1, "just_launched": 0, "mid_flight": 3, "settled": 60}

	for name, build := range builders {
		for state, steps := range states {
			t.Run(name+"/"+state, func(t *testing.T) {
				s := build(t)
				c := s.capability
				start := c.Parent().World()
				if steps >= 0 {
					if err := c.Launch(mgl64.Vec3{0, 1, 1}, 5); err != nil {
						t.Fatalf("Launch: %v", err)
					}
					step(s.world, steps)
				}

				c.ResetToInitial()
				c.ResetToInitial()

				if c.IsLaunching() {
					t.Fatalf("still launching")
				}
				if !c.Kinematic() {
					t.Fatalf("not kinematic after reset")
				}
				if !c.Parent().World().ApproxEqual(start, tol) {
					t.Fatalf("parent at %+v, want %+v", c.Parent().World(), start)
				}
				for _, b := range s.bodies {
					if b.Velocity() != (mgl64.Vec3{}) || b.AngularVelocity() != (mgl64.Vec3{}) {
						t.Fatalf("%s velocity not cleared", b.Name)
					}
				}
				step(s.world, 5)
				if !c.Parent().World().ApproxEqual(start, tol) {
					t.Fatalf("parent moved after reset")
				}
				if err := c.Launch(mgl64.Vec3{0, 0, 1}, 1); err != nil {
					t.Fatalf("relaunch after reset: %v", err)
				}
			})
		}
	}
}

func TestHandoffTimer(t *testing.T) {
	var tm HandoffTimer
	if tm.Advance(1) {
		t.Fatalf("idle timer fired")
	}
	tm.Start(0.1)
	fired := 0
	for i := 0; i < 10; i++ {
		if tm.Advance(0.02) {
			fired++
			if i != 4 {
				t.Fatalf("fired on tick %d", i)
			}
		}
	}
	if fired != 1 {
		t.Fatalf("fired %d times", fired)
	}

	tm.Start(0.1)
	tm.Advance(0.02)
	tm.Cancel()
	if !tm.Cancelled() || tm.Running() {
		t.Fatalf("cancel state wrong")
	}
	for i := 0; i < 10; i++ {
		if tm.Advance(0.02) {
			t.Fatalf("cancelled timer fired")
		}
	}

	tm.Start(0)
	if !tm.Advance(0) {
		t.Fatalf("zero delay should fire on the first tick")
	}
}
