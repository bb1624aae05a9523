package actor

import (
	"errors"
	"fmt"
	"log"
	"reflect"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/band"
	"github.com/milk9111/slingshot/common"
	"github.com/milk9111/slingshot/controller"
	"github.com/milk9111/slingshot/events"
	"github.com/milk9111/slingshot/launch"
	"github.com/milk9111/slingshot/physics"
	"github.com/milk9111/slingshot/prefabs"
	"github.com/milk9111/slingshot/scene"
	"github.com/milk9111/slingshot/sim"
)

var (
	ErrNoSpec = errors.New("actor: no spec")
	// ErrRebuild means a reloaded spec changed more than tuning.
	ErrRebuild = errors.New("actor: spec changed structurally, rebuild needed")
)

const defaultFovDeg = 55

var defaultGravity = mgl64.Vec3{0, -9.81, 0}

// Actor is one launchable object with everything it needs to run: scene,
// physics, band, camera, controller and the fixed-step loop.
type Actor struct {
	Spec       *prefabs.ActorSpec
	Kind       launch.Kind
	Scene      *scene.Node
	World      *physics.World
	Probe      *physics.Probe
	Bus        *events.Bus
	Camera     *band.PerspectiveCamera
	View       *band.View
	Capability launch.Capability
	Controller *controller.Controller
	Loop       *sim.Loop
	Resets     sim.ResetGroup

	parent     *scene.Node
	startLimit *scene.Node
	endLimit   *scene.Node
	pointer    controller.Pointer
}

// Build assembles an actor from spec for a viewport of width x height.
func Build(spec *prefabs.ActorSpec, width, height int) (*Actor, error) {
	if spec == nil {
		return nil, ErrNoSpec
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("actor: %w", err)
	}
	kind, err := launch.ParseKind(spec.Variant)
	if err != nil {
		return nil, fmt.Errorf("actor: %w", err)
	}

	gravity := defaultGravity
	if spec.Gravity != nil {
		gravity = spec.Gravity.Vec()
	}
	a := &Actor{
		Spec:  spec,
		Kind:  kind,
		Scene: scene.NewNode("scene", common.Pose{}),
		World: physics.NewWorld(gravity),
		Probe: buildProbe(spec),
		Bus:   events.NewBus(),
	}
	a.World.SetStatic(a.Probe)

	name := spec.Name
	if name == "" {
		name = "actor"
	}
	a.parent = scene.NewNode(name, spec.Start.Pose())
	a.Scene.AddChild(a.parent)
	left := pointNode("anchor_left", spec.Anchors.Left.Vec())
	right := pointNode("anchor_right", spec.Anchors.Right.Vec())
	a.parent.AddChild(left)
	a.parent.AddChild(right)
	rig := launch.Rig{Parent: a.parent, LeftAnchor: left, RightAnchor: right}

	switch kind {
	case launch.KindSimpleBody:
		a.Capability, err = a.buildSimple(rig)
	case launch.KindRampGuided:
		a.Capability, err = a.buildRamp(rig)
	case launch.KindDelayedRagdoll:
		a.Capability, err = a.buildDelayed(rig)
	}
	if err != nil {
		return nil, fmt.Errorf("actor: build %s: %w", kind, err)
	}

	leftPole := pointNode("pole_left", spec.Poles.Left.Vec())
	rightPole := pointNode("pole_right", spec.Poles.Right.Vec())
	a.Scene.AddChild(leftPole)
	a.Scene.AddChild(rightPole)
	if a.View, err = band.NewView(leftPole, rightPole, BandConfig(spec.Band)); err != nil {
		a.Close()
		return nil, fmt.Errorf("actor: %w", err)
	}

	eye, target, fov := cameraVectors(spec.Camera, spec.Start.Position.Vec())
	a.Camera = band.NewPerspectiveCamera(eye, target, fov, width, height)

	a.startLimit = pointNode("movement_start_limit", mgl64.Vec3{})
	a.endLimit = pointNode("movement_end_y_limit", mgl64.Vec3{})
	a.Scene.AddChild(a.startLimit)
	a.Scene.AddChild(a.endLimit)
	cfg, err := ControllerConfig(spec.Launch, a.startLimit, a.endLimit)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("actor: launch config: %w", err)
	}
	a.Controller = controller.New(cfg, a.Capability, a.View, a.Camera, a.Probe, a.Bus)

	a.Loop = sim.NewLoop(a.World.FixedDelta)
	a.Loop.Fixed.Add(sim.SystemFunc(a.World.FixedUpdate))
	a.Loop.Frame.Add(sim.SystemFunc(a.updateInput))
	a.Loop.Frame.Add(a.View)

	a.Resets.Add(a.Controller)
	a.Resets.Add(sim.ResetFunc(a.Loop.Reset))

	log.Printf("Actor: built %s (%s) with %d bodies", name, kind, len(a.World.Bodies()))
	return a, nil
}

// Frame feeds one frame of pointer input and advances the simulation. It
// returns the number of fixed steps run.
func (a *Actor) Frame(p controller.Pointer, dt float64) int {
	a.pointer = p
	n := a.Loop.Advance(dt)
	a.pointer = nil
	return n
}

func (a *Actor) updateInput(float64) {
	if a.pointer != nil {
		a.Controller.Update(a.pointer)
	}
}

// Parent is the node the controller moves while aiming.
func (a *Actor) Parent() *scene.Node { return a.parent }

// Follow is what the camera should track.
func (a *Actor) Follow() *scene.Node {
	if a.Capability == nil {
		return a.parent
	}
	return a.Capability.Follow()
}

// Reset puts everything back to the aiming baseline.
func (a *Actor) Reset() {
	a.Resets.ResetToInitial()
}

// ApplyTuning swaps in tuning from a reloaded spec. It returns ErrRebuild
// when anything but tuning changed; the actor is left untouched then.
func (a *Actor) ApplyTuning(spec *prefabs.ActorSpec) error {
	if spec == nil {
		return ErrNoSpec
	}
	if !reflect.DeepEqual(structure(a.Spec), structure(spec)) {
		return ErrRebuild
	}
	cfg, err := ControllerConfig(spec.Launch, a.startLimit, a.endLimit)
	if err != nil {
		return fmt.Errorf("actor: launch config: %w", err)
	}
	a.Controller.SetConfig(cfg)
	a.View.SetConfig(BandConfig(spec.Band))
	if d, ok := a.Capability.(*launch.DelayedRagdoll); ok {
		d.SetConfig(DelayedConfig(spec.Delayed))
	}
	a.Spec = spec
	log.Printf("Actor: applied tuning for %s", spec.Name)
	return nil
}

// structure is spec with the hot-reloadable tuning cleared.
func structure(s *prefabs.ActorSpec) prefabs.ActorSpec {
	if s == nil {
		return prefabs.ActorSpec{}
	}
	c := *s
	if kind, err := launch.ParseKind(c.Variant); err == nil {
		c.Variant = kind.String()
	}
	c.Launch = prefabs.LaunchSpec{}
	c.Band = prefabs.BandSpec{}
	if c.Delayed != nil {
		d := *c.Delayed
		d.RagdollEnableDelay = 0
		d.InheritLauncherVelocity = nil
		c.Delayed = &d
	}
	return c
}

// Close unregisters the capability's physics hooks.
func (a *Actor) Close() {
	if c, ok := a.Capability.(interface{ Close() }); ok {
		c.Close()
	}
}

func (a *Actor) publishHandoff(p common.Pose) {
	a.Bus.Publish(events.Event{Kind: events.Handoff, Pose: p})
}
