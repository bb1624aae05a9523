package launch

import (
	"errors"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/common"
	"github.com/milk9111/slingshot/physics"
	"github.com/milk9111/slingshot/ragdoll"
	"github.com/milk9111/slingshot/scene"
)

var ErrLauncherAttached = errors.New("launch: launcher body must not move with the parent node")

type Phase int

const (
	PhaseAiming Phase = iota
	PhaseFlying
	PhaseRagdoll
)

func (p Phase) String() string {
	switch p {
	case PhaseAiming:
		return "aiming"
	case PhaseFlying:
		return "flying"
	case PhaseRagdoll:
		return "ragdoll"
	}
	return "unknown"
}

type DelayedConfig struct {
	// Delay is how long the launcher flies alone, in seconds of physics time.
	Delay float64
	// InheritLauncherVelocity copies the launcher's velocity into every body at
	// handoff. When false the stored launch impulse is applied to the assembly
	// instead.
	InheritLauncherVelocity bool
}

// DelayedRagdoll flies a single launcher body for a fixed delay and then hands
// its motion over to a ragdoll assembly.
type DelayedRagdoll struct {
	rig
	world    *physics.World
	assembly *ragdoll.Assembly
	launcher *physics.Body
	offset   common.Pose
	cfg      DelayedConfig
	hook     int

	timer   HandoffTimer
	phase   Phase
	enabled bool

	launchDir     mgl64.Vec3
	launchImpulse float64
	handoffLin    mgl64.Vec3
	handoffAng    mgl64.Vec3

	// OnHandoff runs after the assembly has taken over, with the root pose.
	OnHandoff func(common.Pose)
}

func NewDelayedRagdoll(world *physics.World, r Rig, assembly *ragdoll.Assembly, launcher *physics.Body, cfg DelayedConfig) (*DelayedRagdoll, error) {
	base, err := newRig(r)
	if err != nil {
		return nil, err
	}
	if assembly == nil {
		return nil, ErrNoAssembly
	}
	if launcher == nil || launcher.Node == nil {
		return nil, ErrNoBody
	}
	if launcher.Node.IsUnder(r.Parent) {
		return nil, ErrLauncherAttached
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}

	d := &DelayedRagdoll{
		rig:      base,
		world:    world,
		assembly: assembly,
		launcher: launcher,
		offset:   base.start.Inverse().Mul(launcher.Node.World()),
		cfg:      cfg,
		enabled:  true,
	}
	assembly.BakePoseSnapshot()
	d.hook = world.AddTickHook(d.fixedTick)
	d.ResetToInitial()
	return d, nil
}

func (d *DelayedRagdoll) Kind() Kind                  { return KindDelayedRagdoll }
func (d *DelayedRagdoll) Phase() Phase                { return d.phase }
func (d *DelayedRagdoll) IsLaunching() bool           { return d.phase != PhaseAiming }
func (d *DelayedRagdoll) Assembly() *ragdoll.Assembly { return d.assembly }
func (d *DelayedRagdoll) Launcher() *physics.Body     { return d.launcher }
func (d *DelayedRagdoll) Timer() *HandoffTimer        { return &d.timer }
func (d *DelayedRagdoll) Enabled() bool               { return d.enabled }
func (d *DelayedRagdoll) Config() DelayedConfig       { return d.cfg }

// SetConfig takes effect on the next launch.
func (d *DelayedRagdoll) SetConfig(cfg DelayedConfig) {
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	d.cfg = cfg
}

// HandoffVelocity is the launcher velocity copied at the last handoff.
func (d *DelayedRagdoll) HandoffVelocity() (linear, angular mgl64.Vec3) {
	return d.handoffLin, d.handoffAng
}

func (d *DelayedRagdoll) Follow() *scene.Node {
	switch d.phase {
	case PhaseFlying:
		return d.launcher.Node
	case PhaseRagdoll:
		if m := d.assembly.Main(); m != nil && m.Node != nil {
			return m.Node
		}
	}
	return d.follow
}

func (d *DelayedRagdoll) Kinematic() bool {
	return d.assembly.IsKinematic()
}

// SetKinematic only lets go of the assembly once the ragdoll owns it; while
// aiming or flying it stays frozen.
func (d *DelayedRagdoll) SetKinematic(k bool) {
	switch d.phase {
	case PhaseAiming:
		if k {
			d.assembly.SetKinematic(true)
		}
	case PhaseRagdoll:
		d.assembly.SetKinematic(k)
	}
}

// SetEnabled(false) cancels any pending handoff and returns to aiming.
func (d *DelayedRagdoll) SetEnabled(e bool) {
	if d.enabled == e {
		return
	}
	d.enabled = e
	if !e {
		d.ResetToInitial()
	}
}

func (d *DelayedRagdoll) Launch(direction mgl64.Vec3, impulse float64) error {
	if !d.enabled {
		return ErrDisabled
	}
	if d.phase != PhaseAiming {
		return ErrAlreadyLaunching
	}
	if err := checkLaunch(direction, impulse); err != nil {
		return err
	}

	d.launchDir = direction.Normalize()
	d.launchImpulse = impulse
	d.assembly.SetKinematic(true)

	l := d.launcher
	l.SetPose(d.parent.World())
	l.SetEnabled(true)
	l.SetKinematic(false)
	l.SetUseGravity(true)
	l.Mode = physics.CollisionContinuous
	l.SetVelocity(mgl64.Vec3{})
	l.SetAngularVelocity(mgl64.Vec3{})
	l.AddVelocityChange(d.launchDir.Mul(impulse))

	d.phase = PhaseFlying
	d.timer.Start(d.cfg.Delay)
	return nil
}

func (d *DelayedRagdoll) pending() bool {
	return d.enabled && d.phase == PhaseFlying && !d.timer.Cancelled()
}

// fixedTick runs before each physics step, so the handoff always lands between
// two integration steps.
func (d *DelayedRagdoll) fixedTick(dt float64) {
	if !d.pending() {
		return
	}
	// the frozen ragdoll rides along with the launcher
	d.parent.SetWorld(d.launcher.Pose())
	d.assembly.SyncBodiesFromNodes()

	if !d.timer.Advance(dt) {
		return
	}
	d.handoff()
}

// handoff only runs from fixedTick, after the pending check.
func (d *DelayedRagdoll) handoff() {
	l := d.launcher
	d.handoffLin = l.Velocity()
	d.handoffAng = l.AngularVelocity()
	d.parent.SetWorld(l.Pose())
	d.assembly.SyncBodiesFromNodes()

	d.assembly.SetKinematic(false)
	if d.cfg.InheritLauncherVelocity {
		d.assembly.SetVelocities(d.handoffLin, d.handoffAng)
	} else {
		d.assembly.ZeroVelocities()
		d.assembly.ApplyImpulse(d.launchDir, d.launchImpulse)
	}
	d.assembly.ResetMassProps()

	l.SetVelocity(mgl64.Vec3{})
	l.SetAngularVelocity(mgl64.Vec3{})
	l.SetKinematic(true)
	l.SetUseGravity(false)
	l.SetEnabled(false)

	d.phase = PhaseRagdoll
	log.Printf("DelayedRagdoll: handoff after %.2fs, velocity %v", d.timer.Elapsed(), d.handoffLin)
	if d.OnHandoff != nil {
		d.OnHandoff(d.parent.World())
	}
}

// ResetToInitial cancels a pending handoff before touching anything else.
func (d *DelayedRagdoll) ResetToInitial() {
	d.timer.Cancel()
	d.phase = PhaseAiming
	d.launchDir = mgl64.Vec3{}
	d.launchImpulse = 0

	a := d.assembly
	a.SetKinematic(true)
	a.ZeroVelocities()
	d.restoreStart()
	a.RestorePoseSnapshot()
	a.ResetMassProps()

	l := d.launcher
	l.SetKinematic(false)
	l.SetVelocity(mgl64.Vec3{})
	l.SetAngularVelocity(mgl64.Vec3{})
	l.SetKinematic(true)
	l.SetUseGravity(false)
	l.SetPose(d.start.Mul(d.offset))
	l.SetEnabled(false)
}

func (d *DelayedRagdoll) Close() {
	d.world.RemoveTickHook(d.hook)
}
