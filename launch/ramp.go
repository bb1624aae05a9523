package launch

import (
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/common"
	"github.com/milk9111/slingshot/physics"
	"github.com/milk9111/slingshot/scene"
)

type RampPhase int

const (
	RampAiming RampPhase = iota
	RampOnPath
	RampFree
)

func (p RampPhase) String() string {
	switch p {
	case RampAiming:
		return "aiming"
	case RampOnPath:
		return "on_path"
	case RampFree:
		return "free"
	}
	return "unknown"
}

// RampConfig describes the scripted path. Speed is the travel speed along the
// path; zero means "use the launch speed". Overrun is how far past the end the
// actor travels before physics takes over.
type RampConfig struct {
	Start   *scene.Node
	End     *scene.Node
	Speed   float64
	Overrun float64
}

// RampGuided moves the actor kinematically from Start to End at constant speed
// on the fixed timeline, then releases it as a free body moving along its own
// forward axis at the launch speed. The pose the actor is released from is
// eased onto Start first, at the same speed.
type RampGuided struct {
	rig
	world *physics.World
	body  *physics.Body
	cfg   RampConfig
	hook  int

	phase       RampPhase
	traveled    float64
	launchSpeed float64
	from        common.Pose
}

func NewRampGuided(world *physics.World, r Rig, body *physics.Body, cfg RampConfig) (*RampGuided, error) {
	base, err := newRig(r)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, ErrNoBody
	}
	if cfg.Start == nil || cfg.End == nil {
		return nil, ErrNoPath
	}
	if cfg.Overrun < 0 {
		cfg.Overrun = 0
	}
	rg := &RampGuided{rig: base, world: world, body: body, cfg: cfg}
	rg.hook = world.AddTickHook(rg.fixedTick)
	rg.ResetToInitial()
	return rg, nil
}

func (rg *RampGuided) Kind() Kind          { return KindRampGuided }
func (rg *RampGuided) IsLaunching() bool   { return rg.phase != RampAiming }
func (rg *RampGuided) Phase() RampPhase    { return rg.phase }
func (rg *RampGuided) Traveled() float64   { return rg.traveled }
func (rg *RampGuided) Body() *physics.Body { return rg.body }
func (rg *RampGuided) Kinematic() bool     { return rg.body.Kinematic() }

func (rg *RampGuided) SetKinematic(k bool) {
	if rg.phase == RampOnPath {
		// the path owns the body until release
		return
	}
	rg.body.SetKinematic(k)
	rg.body.SetUseGravity(!k)
}

// RampLength is the straight-line distance between the path poses.
func (rg *RampGuided) RampLength() float64 {
	return rg.cfg.End.Position().Sub(rg.cfg.Start.Position()).Len()
}

// LeadLength is the distance from the release pose to Start. It is zero until
// a launch.
func (rg *RampGuided) LeadLength() float64 {
	if rg.phase == RampAiming {
		return 0
	}
	return rg.cfg.Start.Position().Sub(rg.from.Position).Len()
}

// PathLength is the whole distance travelled on the path for this launch.
func (rg *RampGuided) PathLength() float64 {
	return rg.LeadLength() + rg.RampLength()
}

// Launch stores the speed and starts the scripted path. The direction only has
// to be valid; the path decides where the actor goes.
func (rg *RampGuided) Launch(direction mgl64.Vec3, speed float64) error {
	if rg.phase != RampAiming {
		return ErrAlreadyLaunching
	}
	if err := checkLaunch(direction, speed); err != nil {
		return err
	}
	rg.launchSpeed = speed
	rg.traveled = 0
	rg.from = rg.parent.World()
	rg.body.SetKinematic(true)
	rg.body.SetUseGravity(false)
	rg.body.SyncFromNode()
	rg.phase = RampOnPath
	return nil
}

func lerpPose(from, to common.Pose, frac float64) common.Pose {
	return common.Pose{
		Position: from.Position.Add(to.Position.Sub(from.Position).Mul(frac)),
		Rotation: mgl64.QuatSlerp(from.Rotation, to.Rotation, frac).Normalize(),
	}
}

func (rg *RampGuided) fixedTick(dt float64) {
	if rg.phase != RampOnPath {
		return
	}
	speed := rg.cfg.Speed
	if speed <= 0 {
		speed = rg.launchSpeed
	}
	rg.traveled += speed * dt

	start, end := rg.cfg.Start.World(), rg.cfg.End.World()
	lead, length := rg.LeadLength(), rg.RampLength()
	if rg.traveled < lead {
		rg.parent.SetWorld(lerpPose(rg.from, start, rg.traveled/lead))
		return
	}
	frac := 1.0
	if length > 1e-9 {
		frac = common.Clamp01((rg.traveled - lead) / length)
	}
	rg.parent.SetWorld(lerpPose(start, end, frac))

	if rg.traveled > lead+length+rg.cfg.Overrun {
		rg.release()
	}
}

func (rg *RampGuided) release() {
	b := rg.body
	b.SyncFromNode()
	b.SetKinematic(false)
	b.SetEnabled(true)
	b.SetUseGravity(true)
	b.Mode = physics.CollisionContinuous
	b.ResetMassProperties()
	b.SetAngularVelocity(mgl64.Vec3{})
	b.SetVelocity(b.Pose().Forward().Mul(rg.launchSpeed))
	rg.phase = RampFree
	log.Printf("RampGuided: released after %.2fm at speed %.2f", rg.traveled, rg.launchSpeed)
}

func (rg *RampGuided) ResetToInitial() {
	rg.phase = RampAiming
	rg.traveled = 0
	rg.launchSpeed = 0
	b := rg.body
	b.SetKinematic(false)
	b.SetVelocity(mgl64.Vec3{})
	b.SetAngularVelocity(mgl64.Vec3{})
	b.SetKinematic(true)
	b.SetUseGravity(false)
	rg.restoreStart()
	b.SyncFromNode()
	b.ResetMassProperties()
}

// Close detaches the path follower from the physics world.
func (rg *RampGuided) Close() {
	rg.world.RemoveTickHook(rg.hook)
}
