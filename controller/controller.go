package controller

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/band"
	"github.com/milk9111/slingshot/common"
	"github.com/milk9111/slingshot/events"
	"github.com/milk9111/slingshot/launch"
	"github.com/milk9111/slingshot/physics"
)

var ErrMisconfigured = errors.New("controller: misconfigured")

type State int

const (
	StateIdle State = iota
	StateDragging
	StateLaunched
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateLaunched:
		return "launched"
	}
	return "unknown"
}

// Pointer is one frame of pointer input.
type Pointer interface {
	JustPressed() bool
	JustReleased() bool
	Position() mgl64.Vec2
	// OverBlockingUI reports whether the pointer is over UI that eats presses.
	OverBlockingUI() bool
}

// PullState lives from drag begin to release or cancel.
type PullState struct {
	Dragging        bool
	Center          mgl64.Vec3
	PullPoint       mgl64.Vec3
	BaselineForward mgl64.Vec3
	StartPose       common.Pose
	StartKinematic  bool
}

type preview struct {
	valid  bool
	hasHit bool
	hit    physics.Hit
}

// Controller turns pointer drags into launches of one capability.
type Controller struct {
	cfg        Config
	pending    *Config
	capability launch.Capability
	view       *band.View
	camera     band.Camera
	probe      *physics.Probe
	bus        *events.Bus

	state        State
	inputEnabled bool
	pull         PullState
	params       Params
	preview      preview
}

// New wires a controller. probe and bus may be nil; everything else is
// checked when a drag starts.
func New(cfg Config, capability launch.Capability, view *band.View, camera band.Camera, probe *physics.Probe, bus *events.Bus) *Controller {
	return &Controller{
		cfg:          cfg,
		capability:   capability,
		view:         view,
		camera:       camera,
		probe:        probe,
		bus:          bus,
		inputEnabled: true,
	}
}

func (c *Controller) State() State                  { return c.state }
func (c *Controller) InputEnabled() bool            { return c.inputEnabled }
func (c *Controller) Pull() PullState               { return c.pull }
func (c *Controller) Params() Params                { return c.params }
func (c *Controller) Config() Config                { return c.cfg }
func (c *Controller) Capability() launch.Capability { return c.capability }
func (c *Controller) View() *band.View              { return c.view }

// SetConfig applies tuning now, or at the end of the current drag.
func (c *Controller) SetConfig(cfg Config) {
	if c.state == StateDragging {
		c.pending = &cfg
		return
	}
	c.cfg = cfg
	c.pending = nil
}

// PreviewHit returns the last preview result.
func (c *Controller) PreviewHit() (physics.Hit, bool) {
	return c.preview.hit, c.preview.valid && c.preview.hasHit
}

func (c *Controller) validate() error {
	if c.capability == nil {
		return fmt.Errorf("%w: no capability", ErrMisconfigured)
	}
	if c.capability.Parent() == nil || c.capability.LeftAnchor() == nil || c.capability.RightAnchor() == nil {
		return fmt.Errorf("%w: capability is missing its nodes", ErrMisconfigured)
	}
	if c.view == nil {
		return fmt.Errorf("%w: no band view", ErrMisconfigured)
	}
	return c.cfg.Validate()
}

// Update runs one frame of input handling.
func (c *Controller) Update(p Pointer) {
	if p == nil {
		return
	}
	switch c.state {
	case StateIdle:
		if !p.JustPressed() || !c.BeginDrag(p.OverBlockingUI()) {
			return
		}
		c.Drag(p.Position())
		if p.JustReleased() {
			c.Release()
		}
	case StateDragging:
		c.Drag(p.Position())
		if p.JustReleased() {
			c.Release()
		}
	}
}

// BeginDrag enters aiming mode. It refuses while input is disabled, over
// blocking UI, or when the controller cannot work.
func (c *Controller) BeginDrag(overUI bool) bool {
	if c.state != StateIdle || !c.inputEnabled || overUI {
		return false
	}
	if err := c.validate(); err != nil {
		log.Printf("Controller: not starting drag: %v", err)
		return false
	}
	if c.capability.IsLaunching() {
		return false
	}

	parent := c.capability.Parent()
	c.pull = PullState{
		Dragging:        true,
		Center:          c.view.BandCenter(),
		BaselineForward: c.view.PreferredForward(),
		StartPose:       parent.World(),
		StartKinematic:  c.capability.Kinematic(),
	}
	c.pull.PullPoint = c.pull.Center
	c.capability.SetKinematic(true)
	c.params = Params{}
	c.preview = preview{}
	c.state = StateDragging
	c.publish(events.Event{Kind: events.EnterAiming, Pose: c.pull.StartPose})
	return true
}

// Drag projects a screen position onto the aiming plane and updates the pull.
func (c *Controller) Drag(screen mgl64.Vec2) {
	if c.state != StateDragging {
		return
	}
	c.DragTo(c.view.ProjectPointerToPlane(screen, c.camera))
}

// DragTo updates the pull from a point already on the aiming plane.
func (c *Controller) DragTo(projected mgl64.Vec3) {
	if c.state != StateDragging {
		return
	}
	point := c.constrain(projected)
	c.pull.PullPoint = point
	c.params = ComputeParameters(c.cfg, c.pull.Center, point, c.pull.BaselineForward)

	c.placeActor(point)
	c.view.RenderPull(c.capability.LeftAnchor().Position(), c.capability.RightAnchor().Position())
	c.updatePreview()
}

// constrain keeps the pull behind the band, within reach and between the
// poles.
func (c *Controller) constrain(projected mgl64.Vec3) mgl64.Vec3 {
	center := c.pull.Center
	fromCenter := common.Flatten(projected.Sub(center))

	fwd := c.pull.BaselineForward
	if ahead := fromCenter.Dot(fwd); ahead > 0 {
		fromCenter = fromCenter.Sub(fwd.Mul(ahead))
	}
	if l := fromCenter.Len(); l > c.cfg.MaxPullDistance && l > 0 {
		fromCenter = fromCenter.Mul(c.cfg.MaxPullDistance / l)
	}

	point := center.Add(fromCenter)
	if c.cfg.ClampBetweenPoles {
		point = c.view.ClampBetweenPoles(point, c.cfg.PoleInset)
	}
	return point
}

// placeActor turns the parent toward the launch and moves it so the anchor
// midpoint sits on the pull point.
func (c *Controller) placeActor(point mgl64.Vec3) {
	parent := c.capability.Parent()
	rot := c.pull.StartPose.Rotation
	if common.HasDirection(c.params.FlatDirection) {
		rot = common.YawRotation(c.params.FlatDirection)
	}
	parent.SetWorld(common.Pose{Position: parent.Position(), Rotation: rot})

	mid := c.capability.LeftAnchor().Position().Add(c.capability.RightAnchor().Position()).Mul(0.5)
	pos := point.Sub(mid.Sub(parent.Position()))
	pos = c.applyMovementLimits(pos)
	parent.SetWorld(common.Pose{Position: pos, Rotation: rot})
}

func (c *Controller) applyMovementLimits(pos mgl64.Vec3) mgl64.Vec3 {
	start, end := c.cfg.MovementStartLimit, c.cfg.MovementEndYLimit
	if start == nil {
		return pos
	}
	s := start.Position()
	if pos[2] > s[2] {
		pos[2] = s[2]
	}
	if end != nil {
		e := end.Position()
		lo, hi := min(s[1], e[1]), max(s[1], e[1])
		pos[1] = common.Clamp(pos[1], lo, hi)
	}
	return pos
}

func (c *Controller) updatePreview() {
	var (
		hit    physics.Hit
		hasHit bool
	)
	if c.probe != nil && c.params.HasDirection() {
		origin := c.capability.Parent().Position()
		hit, hasHit = c.probe.Raycast(origin, c.params.Direction, c.cfg.PreviewMaxDistance)
	}

	changed := !c.preview.valid || hasHit != c.preview.hasHit
	if !changed && hasHit {
		changed = hit.Point.Sub(c.preview.hit.Point).LenSqr() > common.DirectionEpsilon
	}
	if !changed {
		return
	}
	c.preview = preview{valid: true, hasHit: hasHit, hit: hit}
	c.publish(events.Event{Kind: events.PreviewUpdated, HasHit: hasHit, Hit: hit})
}

func (c *Controller) clearPreview() {
	if c.preview.valid && c.preview.hasHit {
		c.publish(events.Event{Kind: events.PreviewUpdated})
	}
	c.preview = preview{}
}

// ShouldCancel reports whether releasing now would cancel.
func (c *Controller) ShouldCancel() bool {
	if c.state != StateDragging {
		return true
	}
	return c.cfg.CancelZone.Contains(c.pull.PullPoint) ||
		c.params.RawDistance < c.cfg.MinPullDistance ||
		!c.params.HasDirection()
}

// Release ends the drag, launching or cancelling. It reports whether a launch
// happened.
func (c *Controller) Release() bool {
	if c.state != StateDragging {
		return false
	}
	if c.ShouldCancel() {
		c.cancel()
		return false
	}

	if err := c.capability.Launch(c.params.Direction, c.params.Impulse); err != nil {
		log.Printf("Controller: launch skipped: %v", err)
		c.cancel()
		return false
	}

	c.view.PlaySnapFrom(c.pull.PullPoint)
	c.clearPreview()
	pose := c.capability.Parent().World()
	c.publish(events.Event{Kind: events.ReleaseStarted, Pose: pose})
	c.publish(events.Event{Kind: events.LaunchStarted, Pose: pose})
	c.inputEnabled = false
	c.endDrag(StateLaunched)
	return true
}

func (c *Controller) cancel() {
	start := c.pull.StartPose
	c.capability.Parent().SetWorld(start)
	c.capability.SetKinematic(c.pull.StartKinematic)
	c.view.Idle()
	c.clearPreview()
	c.publish(events.Event{Kind: events.Cancelled, Pose: start})
	c.endDrag(StateIdle)
}

func (c *Controller) endDrag(next State) {
	c.pull = PullState{}
	c.state = next
	if c.pending != nil {
		c.cfg = *c.pending
		c.pending = nil
	}
}

// Reset returns everything to the aiming baseline and re-enables input.
func (c *Controller) Reset() {
	if c.capability != nil {
		c.capability.ResetToInitial()
	}
	if c.view != nil {
		c.view.ResetToInitial()
	}
	c.preview = preview{}
	c.params = Params{}
	c.inputEnabled = true
	c.endDrag(StateIdle)
	c.publish(events.Event{Kind: events.Reset})
}

func (c *Controller) ResetToInitial() { c.Reset() }

func (c *Controller) publish(evt events.Event) {
	if c.bus != nil {
		c.bus.Publish(evt)
	}
}
