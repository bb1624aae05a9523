package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/common"
	"github.com/milk9111/slingshot/scene"
)

type CollisionMode int

const (
	// CollisionDiscrete only resolves penetration at the end of a step.
	CollisionDiscrete CollisionMode = iota
	// CollisionContinuous sweeps the motion of each step against static geometry.
	CollisionContinuous
)

// Body is a rigid body. A kinematic body ignores forces and follows its node;
// a dynamic body is integrated by the World and drives its node.
type Body struct {
	Name string
	Node *scene.Node

	pose   common.Pose
	linVel mgl64.Vec3
	angVel mgl64.Vec3

	mass         float64
	centerOfMass mgl64.Vec3
	inertia      mgl64.Vec3

	colliders  []*Collider
	kinematic  bool
	useGravity bool
	enabled    bool

	Mode           CollisionMode
	Restitution    float64
	Friction       float64
	LinearDamping  float64
	AngularDamping float64
}

// NewBody creates an enabled kinematic body with gravity off. Its pose is read
// from node when one is given.
func NewBody(name string, node *scene.Node, mass float64, colliders ...*Collider) *Body {
	if mass <= 0 {
		mass = 1
	}
	b := &Body{
		Name:        name,
		Node:        node,
		pose:        node.World(),
		mass:        mass,
		colliders:   colliders,
		kinematic:   true,
		enabled:     true,
		Restitution: 0.2,
		Friction:    0.4,
	}
	b.ResetMassProperties()
	return b
}

func (b *Body) Pose() common.Pose {
	if b == nil {
		return common.NewPose(mgl64.Vec3{})
	}
	return b.pose
}

// SetPose teleports the body and its node.
func (b *Body) SetPose(p common.Pose) {
	if b == nil {
		return
	}
	b.pose = p
	if b.Node != nil {
		b.Node.SetWorld(p)
	}
}

// SyncFromNode copies the node's world pose into the physics pose.
func (b *Body) SyncFromNode() {
	if b == nil || b.Node == nil {
		return
	}
	b.pose = b.Node.World()
}

func (b *Body) syncToNode() {
	if b.Node != nil {
		b.Node.SetWorld(b.pose)
	}
}

func (b *Body) Kinematic() bool  { return b != nil && b.kinematic }
func (b *Body) UseGravity() bool { return b != nil && b.useGravity }
func (b *Body) Enabled() bool    { return b != nil && b.enabled }

func (b *Body) SetKinematic(k bool) {
	if b == nil {
		return
	}
	if k && !b.kinematic {
		b.SyncFromNode()
	}
	b.kinematic = k
}

func (b *Body) SetUseGravity(g bool) {
	if b == nil {
		return
	}
	b.useGravity = g
}

// SetEnabled toggles simulation and every collider together.
func (b *Body) SetEnabled(e bool) {
	if b == nil {
		return
	}
	b.enabled = e
	for _, c := range b.colliders {
		if c != nil {
			c.Enabled = e
		}
	}
}

func (b *Body) Velocity() mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return b.linVel
}

func (b *Body) AngularVelocity() mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return b.angVel
}

// SetVelocity writes the linear velocity. Kinematic bodies reject the write.
func (b *Body) SetVelocity(v mgl64.Vec3) bool {
	if b == nil || b.kinematic {
		return false
	}
	b.linVel = v
	return true
}

// SetAngularVelocity writes the angular velocity. Kinematic bodies reject the write.
func (b *Body) SetAngularVelocity(w mgl64.Vec3) bool {
	if b == nil || b.kinematic {
		return false
	}
	b.angVel = w
	return true
}

// AddImpulse applies an impulse at the center of mass.
func (b *Body) AddImpulse(j mgl64.Vec3) bool {
	if b == nil || b.kinematic {
		return false
	}
	b.linVel = b.linVel.Add(j.Mul(1 / b.mass))
	return true
}

// AddVelocityChange changes velocity directly, ignoring mass.
func (b *Body) AddVelocityChange(dv mgl64.Vec3) bool {
	if b == nil || b.kinematic {
		return false
	}
	b.linVel = b.linVel.Add(dv)
	return true
}

// AddImpulseAtPosition applies j at a world point, producing spin when the
// point is off the center of mass.
func (b *Body) AddImpulseAtPosition(j, point mgl64.Vec3) bool {
	if !b.AddImpulse(j) {
		return false
	}
	r := point.Sub(b.WorldCenterOfMass())
	torque := r.Cross(j)
	inv := b.pose.Rotation.Inverse()
	local := inv.Rotate(torque)
	var dw mgl64.Vec3
	for i := 0; i < 3; i++ {
		if b.inertia[i] > 0 {
			dw[i] = local[i] / b.inertia[i]
		}
	}
	b.angVel = b.angVel.Add(b.pose.Rotation.Rotate(dw))
	return true
}

func (b *Body) Mass() float64 {
	if b == nil {
		return 0
	}
	return b.mass
}

func (b *Body) SetMass(m float64) {
	if b == nil || m <= 0 {
		return
	}
	b.mass = m
	b.ResetMassProperties()
}

func (b *Body) Colliders() []*Collider {
	if b == nil {
		return nil
	}
	return b.colliders
}

func (b *Body) CenterOfMass() mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return b.centerOfMass
}

func (b *Body) InertiaTensor() mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return b.inertia
}

func (b *Body) WorldCenterOfMass() mgl64.Vec3 {
	return b.pose.Position.Add(b.pose.Rotation.Rotate(b.centerOfMass))
}

// ResetMassProperties recomputes center of mass and the diagonal inertia from
// the enabled colliders, splitting the mass by volume.
func (b *Body) ResetMassProperties() {
	if b == nil {
		return
	}
	total := 0.0
	var com mgl64.Vec3
	for _, c := range b.colliders {
		if c == nil || !c.Enabled {
			continue
		}
		v := c.Volume()
		total += v
		com = com.Add(c.Offset.Mul(v))
	}
	if total <= 0 {
		b.centerOfMass = mgl64.Vec3{}
		i := b.mass / 6
		b.inertia = mgl64.Vec3{i, i, i}
		return
	}
	com = com.Mul(1 / total)

	var inertia mgl64.Vec3
	for _, c := range b.colliders {
		if c == nil || !c.Enabled {
			continue
		}
		m := b.mass * c.Volume() / total
		own := c.inertia(m)
		d := c.Offset.Sub(com)
		inertia = inertia.Add(own).Add(mgl64.Vec3{
			m * (d[1]*d[1] + d[2]*d[2]),
			m * (d[0]*d[0] + d[2]*d[2]),
			m * (d[0]*d[0] + d[1]*d[1]),
		})
	}
	b.centerOfMass = com
	b.inertia = inertia
}

// Extent bounds every collider with a sphere around the body origin.
func (b *Body) Extent() float64 {
	if b == nil {
		return 0
	}
	out := 0.0
	for _, c := range b.colliders {
		if c == nil {
			continue
		}
		if e := c.Extent(); e > out {
			out = e
		}
	}
	return out
}

func (b *Body) zeroVelocity() {
	b.linVel = mgl64.Vec3{}
	b.angVel = mgl64.Vec3{}
}
