package launch

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/physics"
)

// SimpleBody launches a single rigid body with one impulse. The body should be
// driven by the parent node.
type SimpleBody struct {
	rig
	body      *physics.Body
	launching bool
}

func NewSimpleBody(r Rig, body *physics.Body) (*SimpleBody, error) {
	base, err := newRig(r)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, ErrNoBody
	}
	s := &SimpleBody{rig: base, body: body}
	s.ResetToInitial()
	return s, nil
}

func (s *SimpleBody) Kind() Kind          { return KindSimpleBody }
func (s *SimpleBody) IsLaunching() bool   { return s.launching }
func (s *SimpleBody) Body() *physics.Body { return s.body }
func (s *SimpleBody) Kinematic() bool     { return s.body.Kinematic() }

func (s *SimpleBody) SetKinematic(k bool) {
	s.body.SetKinematic(k)
	s.body.SetUseGravity(!k)
}

func (s *SimpleBody) Launch(direction mgl64.Vec3, impulse float64) error {
	if s.launching {
		return ErrAlreadyLaunching
	}
	if err := checkLaunch(direction, impulse); err != nil {
		return err
	}

	b := s.body
	b.SetKinematic(false)
	b.SetEnabled(true)
	b.SetUseGravity(true)
	b.Mode = physics.CollisionContinuous
	b.SetVelocity(mgl64.Vec3{})
	b.SetAngularVelocity(mgl64.Vec3{})
	// the visual pose may have moved while aiming; drop any drift
	b.SyncFromNode()
	b.ResetMassProperties()
	b.AddImpulse(direction.Normalize().Mul(impulse))
	s.launching = true
	return nil
}

// ResetToInitial freezes the body at the recorded start pose.
func (s *SimpleBody) ResetToInitial() {
	b := s.body
	b.SetKinematic(false)
	b.SetVelocity(mgl64.Vec3{})
	b.SetAngularVelocity(mgl64.Vec3{})
	b.SetKinematic(true)
	b.SetUseGravity(false)
	s.restoreStart()
	b.SyncFromNode()
	b.ResetMassProperties()
	s.launching = false
}
