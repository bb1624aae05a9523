package actor

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/common"
	"github.com/milk9111/slingshot/launch"
	"github.com/milk9111/slingshot/physics"
	"github.com/milk9111/slingshot/prefabs"
	"github.com/milk9111/slingshot/ragdoll"
	"github.com/milk9111/slingshot/scene"
)

const defaultRadius = 0.25

func buildCollider(spec prefabs.BodySpec) (*physics.Collider, error) {
	offset := spec.Offset.Vec()
	switch strings.ToLower(spec.Shape) {
	case "", "sphere":
		r := spec.Radius
		if r <= 0 {
			r = defaultRadius
		}
		return physics.NewSphere(r, offset), nil
	case "capsule":
		r := spec.Radius
		if r <= 0 {
			r = defaultRadius
		}
		return physics.NewCapsule(r, max(spec.Height, 0), offset), nil
	case "box":
		he := spec.HalfExtents.Vec()
		if he[0] <= 0 || he[1] <= 0 || he[2] <= 0 {
			return nil, fmt.Errorf("body %q: box needs positive half_extents", spec.Name)
		}
		return physics.NewBox(he, offset), nil
	}
	return nil, fmt.Errorf("body %q: unknown shape %q", spec.Name, spec.Shape)
}

// buildBody creates a body driven by node and registers it with world.
func buildBody(world *physics.World, spec prefabs.BodySpec, node *scene.Node) (*physics.Body, error) {
	col, err := buildCollider(spec)
	if err != nil {
		return nil, err
	}
	name := spec.Name
	if name == "" {
		name = node.Name
	}
	b := physics.NewBody(name, node, spec.Mass, col)
	world.AddBody(b)
	return b, nil
}

func buildProbe(spec *prefabs.ActorSpec) *physics.Probe {
	p := physics.NewProbe()
	if spec.GroundY != nil {
		p.SetGround(*spec.GroundY)
	}
	for _, o := range spec.Obstacles {
		switch o.Kind {
		case "box":
			p.AddBox(o.Name, o.Min.Vec(), o.Max.Vec())
		case "cylinder":
			p.AddCylinder(o.Name, o.Base.Vec(), o.Radius, o.Height)
		}
	}
	return p
}

func pointNode(name string, pos mgl64.Vec3) *scene.Node {
	return scene.NewNode(name, common.NewPose(pos))
}

// buildSimple puts the body on the parent itself; the body spec's position is
// unused and its offset moves the collider.
func (a *Actor) buildSimple(r launch.Rig) (launch.Capability, error) {
	body, err := buildBody(a.World, a.Spec.Simple.Body, r.Parent)
	if err != nil {
		return nil, err
	}
	return launch.NewSimpleBody(r, body)
}

func (a *Actor) buildRamp(r launch.Rig) (launch.Capability, error) {
	rs := a.Spec.Ramp
	body, err := buildBody(a.World, rs.Body, r.Parent)
	if err != nil {
		return nil, err
	}
	start := scene.NewNode("ramp_start", rs.Start.Pose())
	end := scene.NewNode("ramp_end", rs.End.Pose())
	a.Scene.AddChild(start)
	a.Scene.AddChild(end)
	return launch.NewRampGuided(a.World, r, body, launch.RampConfig{
		Start:   start,
		End:     end,
		Speed:   rs.Speed,
		Overrun: rs.Overrun,
	})
}

// buildDelayed builds the ragdoll under the parent and the launcher beside
// it. Parts may only name a parent declared before them, and each part is
// pinned to its parent part at their spec distance.
func (a *Actor) buildDelayed(r launch.Rig) (launch.Capability, error) {
	ds := a.Spec.Delayed
	root := scene.NewNode("ragdoll", common.Pose{})
	r.Parent.AddChild(root)

	nodes := make(map[string]*scene.Node, len(ds.Parts))
	bodies := make(map[string]*physics.Body, len(ds.Parts))
	var main *physics.Body
	for i, part := range ds.Parts {
		if part.Name == "" {
			return nil, fmt.Errorf("part %d has no name", i)
		}
		if _, dup := nodes[part.Name]; dup {
			return nil, fmt.Errorf("part %q declared twice", part.Name)
		}
		holder := root
		if part.Parent != "" {
			p, ok := nodes[part.Parent]
			if !ok {
				return nil, fmt.Errorf("part %q: unknown parent %q", part.Name, part.Parent)
			}
			holder = p
		}
		n := pointNode(part.Name, part.Position.Vec())
		holder.AddChild(n)
		nodes[part.Name] = n

		b, err := buildBody(a.World, part, n)
		if err != nil {
			return nil, err
		}
		bodies[part.Name] = b
		if part.Parent != "" {
			a.World.AddJoint(physics.NewPinJoint(part.Parent+"-"+part.Name, bodies[part.Parent], b))
		}
		if part.Name == ds.Main {
			main = b
		}
	}

	assembly, err := ragdoll.Collect(root, a.World, main)
	if err != nil {
		return nil, err
	}

	ls := ds.Launcher
	if ls.Name == "" {
		ls.Name = "launcher"
	}
	local := common.NewPose(ls.Position.Vec())
	launcherNode := scene.NewNode(ls.Name, r.Parent.World().Mul(local))
	a.Scene.AddChild(launcherNode)
	launcher, err := buildBody(a.World, ls, launcherNode)
	if err != nil {
		return nil, err
	}

	d, err := launch.NewDelayedRagdoll(a.World, r, assembly, launcher, DelayedConfig(ds))
	if err != nil {
		return nil, err
	}
	d.OnHandoff = a.publishHandoff
	return d, nil
}
