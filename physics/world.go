package physics

import (
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/scene"
)

// DefaultFixedDelta is the physics step length in seconds.
const DefaultFixedDelta = 1.0 / 50.0

// TickHook runs at the start of every fixed step, before integration, so
// anything it changes lands between two integration steps.
type TickHook func(dt float64)

// World integrates dynamic bodies on a fixed timeline.
type World struct {
	Gravity    mgl64.Vec3
	FixedDelta float64

	bodies []*Body
	byNode map[*scene.Node]*Body
	joints []*Joint
	static *Probe

	hooks    map[int]TickHook
	hookIDs  []int
	nextHook int
	ticks    int
}

func NewWorld(gravity mgl64.Vec3) *World {
	return &World{
		Gravity:    gravity,
		FixedDelta: DefaultFixedDelta,
		byNode:     make(map[*scene.Node]*Body),
		hooks:      make(map[int]TickHook),
	}
}

// SetStatic attaches static geometry used for ground contact and sweeps.
func (w *World) SetStatic(p *Probe) {
	if w == nil {
		return
	}
	w.static = p
}

func (w *World) Static() *Probe {
	if w == nil {
		return nil
	}
	return w.static
}

func (w *World) AddBody(b *Body) {
	if w == nil || b == nil {
		return
	}
	for _, existing := range w.bodies {
		if existing == b {
			return
		}
	}
	w.bodies = append(w.bodies, b)
	if b.Node != nil {
		w.byNode[b.Node] = b
	}
}

func (w *World) RemoveBody(b *Body) {
	if w == nil || b == nil {
		return
	}
	for i, existing := range w.bodies {
		if existing == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	if b.Node != nil && w.byNode[b.Node] == b {
		delete(w.byNode, b.Node)
	}
}

func (w *World) Bodies() []*Body {
	if w == nil {
		return nil
	}
	return w.bodies
}

func (w *World) AddJoint(j *Joint) {
	if w == nil || j == nil {
		return
	}
	w.joints = append(w.joints, j)
}

func (w *World) RemoveJoint(j *Joint) {
	if w == nil {
		return
	}
	for i, existing := range w.joints {
		if existing == j {
			w.joints = append(w.joints[:i], w.joints[i+1:]...)
			return
		}
	}
}

func (w *World) Joints() []*Joint {
	if w == nil {
		return nil
	}
	return w.joints
}

// BodyFor returns the body driven by node, if any.
func (w *World) BodyFor(n *scene.Node) (*Body, bool) {
	if w == nil || n == nil {
		return nil, false
	}
	b, ok := w.byNode[n]
	return b, ok
}

// AddTickHook registers fn and returns an id for RemoveTickHook.
func (w *World) AddTickHook(fn TickHook) int {
	if w == nil || fn == nil {
		return 0
	}
	w.nextHook++
	w.hooks[w.nextHook] = fn
	w.hookIDs = append(w.hookIDs, w.nextHook)
	return w.nextHook
}

func (w *World) RemoveTickHook(id int) {
	if w == nil {
		return
	}
	if _, ok := w.hooks[id]; !ok {
		return
	}
	delete(w.hooks, id)
	for i, h := range w.hookIDs {
		if h == id {
			w.hookIDs = append(w.hookIDs[:i], w.hookIDs[i+1:]...)
			break
		}
	}
}

// Ticks returns how many fixed steps have run.
func (w *World) Ticks() int {
	if w == nil {
		return 0
	}
	return w.ticks
}

// FixedUpdate steps the world once with the fixed delta.
func (w *World) FixedUpdate(dt float64) {
	w.Step(dt)
}

// Step runs tick hooks, integrates every enabled dynamic body, then relaxes
// the joints before writing poses back to the nodes.
func (w *World) Step(dt float64) {
	if w == nil {
		return
	}
	if dt <= 0 {
		dt = w.FixedDelta
	}
	w.ticks++

	// hooks may remove themselves; iterate over a copy
	ids := append([]int(nil), w.hookIDs...)
	for _, id := range ids {
		if fn, ok := w.hooks[id]; ok {
			fn(dt)
		}
	}

	for _, b := range w.bodies {
		if b == nil || !b.enabled {
			continue
		}
		if b.kinematic {
			b.SyncFromNode()
			continue
		}
		w.integrate(b, dt)
	}

	if len(w.joints) > 0 {
		w.solveJoints()
	}

	for _, b := range w.bodies {
		if b == nil || !b.enabled || b.kinematic {
			continue
		}
		b.syncToNode()
	}
}

func (w *World) solveJoints() {
	for i := 0; i < JointIterations; i++ {
		for _, j := range w.joints {
			j.solve()
		}
		for _, b := range w.bodies {
			if b != nil && b.invMass() > 0 {
				w.clampAbove(b)
			}
		}
	}
}

func (w *World) integrate(b *Body, dt float64) {
	if b.useGravity {
		b.linVel = b.linVel.Add(w.Gravity.Mul(dt))
	}
	if b.LinearDamping > 0 {
		b.linVel = b.linVel.Mul(1 / (1 + dt*b.LinearDamping))
	}
	if b.AngularDamping > 0 {
		b.angVel = b.angVel.Mul(1 / (1 + dt*b.AngularDamping))
	}

	from := b.pose.Position
	to := from.Add(b.linVel.Mul(dt))
	radius := b.Extent()

	if b.Mode == CollisionContinuous && w.static != nil {
		to = w.sweep(b, from, to, radius)
	}
	to = w.resolveGround(b, to, radius)
	b.pose.Position = to

	if b.angVel.LenSqr() > 0 {
		spin := mgl64.Quat{W: 0, V: b.angVel}
		dq := spin.Mul(b.pose.Rotation).Scale(0.5 * dt)
		b.pose.Rotation = b.pose.Rotation.Add(dq).Normalize()
	}
}

// sweep stops the body at the first static surface along its motion and
// bounces it off.
func (w *World) sweep(b *Body, from, to mgl64.Vec3, radius float64) mgl64.Vec3 {
	delta := to.Sub(from)
	dist := delta.Len()
	if dist <= 1e-9 {
		return to
	}
	dir := delta.Mul(1 / dist)
	hit, ok := w.static.Raycast(from, dir, dist+radius)
	if !ok {
		return to
	}
	travel := hit.Distance - radius
	if travel < 0 {
		travel = 0
	}
	if travel > dist {
		return to
	}
	w.bounce(b, hit.Normal, hit.Point)
	return from.Add(dir.Mul(travel))
}

func (w *World) resolveGround(b *Body, pos mgl64.Vec3, radius float64) mgl64.Vec3 {
	groundY, ok := w.static.Ground()
	if !ok {
		return pos
	}
	floor := groundY + radius
	if pos[1] >= floor {
		return pos
	}
	pos[1] = floor
	contact := mgl64.Vec3{pos[0], groundY, pos[2]}
	w.bounce(b, mgl64.Vec3{0, 1, 0}, contact)
	return pos
}

// bounce removes the approaching normal velocity with restitution and damps the
// tangential part by friction.
func (w *World) bounce(b *Body, normal, contact mgl64.Vec3) {
	vn := b.linVel.Dot(normal)
	if vn >= 0 {
		return
	}
	j := normal.Mul(-(1 + b.Restitution) * vn * b.mass)
	b.AddImpulseAtPosition(j, contact)

	tangent := b.linVel.Sub(normal.Mul(b.linVel.Dot(normal)))
	if b.Friction > 0 {
		b.linVel = b.linVel.Sub(tangent.Mul(b.Friction))
	}
	if b.linVel.LenSqr() < 1e-8 {
		b.zeroVelocity()
	}
}

// LogBodies dumps body state; used by the demo's debug mode.
func (w *World) LogBodies() {
	if w == nil {
		return
	}
	for _, b := range w.bodies {
		log.Printf("PhysicsWorld: body=%s kinematic=%t enabled=%t pos=%v vel=%v", b.Name, b.kinematic, b.enabled, b.pose.Position, b.linVel)
	}
}
