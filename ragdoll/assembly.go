package ragdoll

import (
	"errors"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/common"
	"github.com/milk9111/slingshot/physics"
	"github.com/milk9111/slingshot/scene"
)

var (
	ErrNoRoot   = errors.New("ragdoll: no root node")
	ErrNoBodies = errors.New("ragdoll: no bodies under root")
)

type nodePose struct {
	node  *scene.Node
	local common.Pose
}

// Assembly is the set of bodies and collision volumes forming one articulated
// object. Bodies are kept in hierarchy order.
type Assembly struct {
	root      *scene.Node
	bodies    []*physics.Body
	colliders []*physics.Collider
	main      *physics.Body
	snapshot  []nodePose
}

// Collect gathers every body driven by a node under root. When main is nil (or
// not part of the assembly) the heaviest body becomes the main body.
func Collect(root *scene.Node, world *physics.World, main *physics.Body) (*Assembly, error) {
	if root == nil {
		return nil, ErrNoRoot
	}
	a := &Assembly{root: root}
	root.Walk(func(n *scene.Node) {
		b, ok := world.BodyFor(n)
		if !ok {
			return
		}
		a.bodies = append(a.bodies, b)
		a.colliders = append(a.colliders, b.Colliders()...)
	})
	if len(a.bodies) == 0 {
		return nil, ErrNoBodies
	}

	if main != nil && !a.contains(main) {
		log.Printf("Ragdoll: main body %q is not under %q, picking heaviest", main.Name, root.Name)
		main = nil
	}
	if main == nil {
		for _, b := range a.bodies {
			if main == nil || b.Mass() > main.Mass() {
				main = b
			}
		}
	}
	a.main = main
	return a, nil
}

func (a *Assembly) contains(b *physics.Body) bool {
	for _, existing := range a.bodies {
		if existing == b {
			return true
		}
	}
	return false
}

func (a *Assembly) Root() *scene.Node {
	if a == nil {
		return nil
	}
	return a.root
}

func (a *Assembly) Bodies() []*physics.Body {
	if a == nil {
		return nil
	}
	return a.bodies
}

func (a *Assembly) Colliders() []*physics.Collider {
	if a == nil {
		return nil
	}
	return a.colliders
}

func (a *Assembly) Main() *physics.Body {
	if a == nil {
		return nil
	}
	return a.main
}

// ClearMain makes ApplyImpulse spread impulses by mass.
func (a *Assembly) ClearMain() {
	if a == nil {
		return
	}
	a.main = nil
}

// BakePoseSnapshot records the local pose of the root and every node below
// it. The root is stored relative to its own parent.
func (a *Assembly) BakePoseSnapshot() {
	if a == nil || a.root == nil {
		return
	}
	a.snapshot = a.snapshot[:0]
	a.root.Walk(func(n *scene.Node) {
		a.snapshot = append(a.snapshot, nodePose{node: n, local: n.Local()})
	})
}

// RestorePoseSnapshot writes the baked local poses back and moves the bodies
// with them.
func (a *Assembly) RestorePoseSnapshot() {
	if a == nil {
		return
	}
	for _, np := range a.snapshot {
		np.node.SetLocal(np.local)
	}
	a.SyncBodiesFromNodes()
}

func (a *Assembly) SnapshotLen() int {
	if a == nil {
		return 0
	}
	return len(a.snapshot)
}

// SyncBodiesFromNodes moves every body to its node's current world pose.
func (a *Assembly) SyncBodiesFromNodes() {
	if a == nil {
		return
	}
	for _, b := range a.bodies {
		b.SyncFromNode()
	}
}

// SetKinematic switches every body in lockstep. Dynamic bodies get gravity and
// continuous collision.
func (a *Assembly) SetKinematic(k bool) {
	if a == nil {
		return
	}
	for _, b := range a.bodies {
		b.SetKinematic(k)
		if !k {
			b.SetUseGravity(true)
			b.Mode = physics.CollisionContinuous
		}
	}
}

// IsKinematic reports whether every body is kinematic.
func (a *Assembly) IsKinematic() bool {
	if a == nil || len(a.bodies) == 0 {
		return false
	}
	for _, b := range a.bodies {
		if !b.Kinematic() {
			return false
		}
	}
	return true
}

// ZeroVelocities clears linear and angular velocity on every body, lifting the
// kinematic flag around the write when needed.
func (a *Assembly) ZeroVelocities() {
	if a == nil {
		return
	}
	for _, b := range a.bodies {
		wasKinematic := b.Kinematic()
		if wasKinematic {
			b.SetKinematic(false)
		}
		b.SetVelocity(mgl64.Vec3{})
		b.SetAngularVelocity(mgl64.Vec3{})
		if wasKinematic {
			b.SetKinematic(true)
		}
	}
}

// SetVelocities writes the same linear and angular velocity to every body and
// returns how many accepted the write.
func (a *Assembly) SetVelocities(linear, angular mgl64.Vec3) int {
	if a == nil {
		return 0
	}
	n := 0
	for _, b := range a.bodies {
		okLin := b.SetVelocity(linear)
		okAng := b.SetAngularVelocity(angular)
		if okLin && okAng {
			n++
		}
	}
	return n
}

func (a *Assembly) ResetMassProps() {
	if a == nil {
		return
	}
	for _, b := range a.bodies {
		b.ResetMassProperties()
	}
}

// ApplyImpulse pushes the main body, or splits the impulse by mass so every
// body gains the same velocity.
func (a *Assembly) ApplyImpulse(direction mgl64.Vec3, magnitude float64) {
	if a == nil || magnitude <= 0 || !common.HasDirection(direction) {
		return
	}
	j := direction.Normalize().Mul(magnitude)
	if a.main != nil {
		a.main.AddImpulse(j)
		return
	}
	total := 0.0
	for _, b := range a.bodies {
		total += b.Mass()
	}
	if total <= 0 {
		return
	}
	for _, b := range a.bodies {
		b.AddImpulse(j.Mul(b.Mass() / total))
	}
}
