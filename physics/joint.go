package physics

import "github.com/go-gl/mathgl/mgl64"

// JointIterations is how many times the world relaxes its joints each step.
const JointIterations = 8

// Joint pins the centers of two bodies at a fixed distance. It only acts while
// both bodies are enabled and at least one of them is dynamic.
type Joint struct {
	Name string
	A, B *Body
	Rest float64
}

// NewPinJoint links a and b at their current distance.
func NewPinJoint(name string, a, b *Body) *Joint {
	j := &Joint{Name: name, A: a, B: b}
	if a != nil && b != nil {
		j.Rest = b.pose.Position.Sub(a.pose.Position).Len()
	}
	return j
}

// Distance is the current distance between the two body centers.
func (j *Joint) Distance() float64 {
	if j == nil || j.A == nil || j.B == nil {
		return 0
	}
	return j.B.pose.Position.Sub(j.A.pose.Position).Len()
}

func (j *Joint) solve() {
	a, b := j.A, j.B
	if a == nil || b == nil {
		return
	}
	wa, wb := a.invMass(), b.invMass()
	sum := wa + wb
	if sum == 0 {
		return
	}
	delta := b.pose.Position.Sub(a.pose.Position)
	dist := delta.Len()
	if dist < 1e-9 {
		return
	}
	n := delta.Mul(1 / dist)

	c := dist - j.Rest
	a.pose.Position = a.pose.Position.Add(n.Mul(c * wa / sum))
	b.pose.Position = b.pose.Position.Sub(n.Mul(c * wb / sum))

	// the link is rigid: no relative speed along it
	rel := b.linVel.Sub(a.linVel).Dot(n)
	a.linVel = a.linVel.Add(n.Mul(rel * wa / sum))
	b.linVel = b.linVel.Sub(n.Mul(rel * wb / sum))
}

func (b *Body) invMass() float64 {
	if !b.enabled || b.kinematic || b.mass <= 0 {
		return 0
	}
	return 1 / b.mass
}

// clampAbove keeps a dynamic body on or above the ground without bouncing it.
func (w *World) clampAbove(b *Body) {
	groundY, ok := w.static.Ground()
	if !ok {
		return
	}
	floor := groundY + b.Extent()
	if b.pose.Position[1] < floor {
		b.pose.Position = mgl64.Vec3{b.pose.Position[0], floor, b.pose.Position[2]}
	}
}
