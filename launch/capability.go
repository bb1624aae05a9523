package launch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/common"
	"github.com/milk9111/slingshot/scene"
)

var (
	ErrNoParent         = errors.New("launch: missing parent node")
	ErrNoAnchors        = errors.New("launch: missing anchor nodes")
	ErrNoBody           = errors.New("launch: missing physics body")
	ErrNoAssembly       = errors.New("launch: missing ragdoll assembly")
	ErrNoPath           = errors.New("launch: missing ramp path")
	ErrNoDirection      = errors.New("launch: no launch direction")
	ErrNoImpulse        = errors.New("launch: impulse must be positive")
	ErrAlreadyLaunching = errors.New("launch: already launching")
	ErrDisabled         = errors.New("launch: capability disabled")
)

// Kind tags the capability variant.
type Kind int

const (
	KindSimpleBody Kind = iota
	KindRampGuided
	KindDelayedRagdoll
)

func (k Kind) String() string {
	switch k {
	case KindSimpleBody:
		return "simple_body"
	case KindRampGuided:
		return "ramp_guided"
	case KindDelayedRagdoll:
		return "delayed_ragdoll"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple_body", "simple", "":
		return KindSimpleBody, nil
	case "ramp_guided", "ramp":
		return KindRampGuided, nil
	case "delayed_ragdoll", "ragdoll":
		return KindDelayedRagdoll, nil
	}
	return KindSimpleBody, fmt.Errorf("launch: unknown variant %q", s)
}

// Capability is what the launch controller drives. Implementations are
// SimpleBody, RampGuided and DelayedRagdoll.
type Capability interface {
	Kind() Kind
	// Parent is the node the controller moves while aiming.
	Parent() *scene.Node
	LeftAnchor() *scene.Node
	RightAnchor() *scene.Node
	// Follow is what cameras and trackers should watch.
	Follow() *scene.Node
	IsLaunching() bool
	Kinematic() bool
	SetKinematic(bool)
	Launch(direction mgl64.Vec3, impulse float64) error
	ResetToInitial()
}

// Rig names the nodes shared by every variant. Follow defaults to Parent.
type Rig struct {
	Parent      *scene.Node
	LeftAnchor  *scene.Node
	RightAnchor *scene.Node
	Follow      *scene.Node
}

func (r Rig) validate() error {
	if r.Parent == nil {
		return ErrNoParent
	}
	if r.LeftAnchor == nil || r.RightAnchor == nil {
		return ErrNoAnchors
	}
	return nil
}

// rig holds the node references and the parent's start pose.
type rig struct {
	parent *scene.Node
	left   *scene.Node
	right  *scene.Node
	follow *scene.Node
	start  common.Pose
}

func newRig(r Rig) (rig, error) {
	if err := r.validate(); err != nil {
		return rig{}, err
	}
	follow := r.Follow
	if follow == nil {
		follow = r.Parent
	}
	return rig{
		parent: r.Parent,
		left:   r.LeftAnchor,
		right:  r.RightAnchor,
		follow: follow,
		start:  r.Parent.World(),
	}, nil
}

func (r *rig) Parent() *scene.Node      { return r.parent }
func (r *rig) LeftAnchor() *scene.Node  { return r.left }
func (r *rig) RightAnchor() *scene.Node { return r.right }
func (r *rig) Follow() *scene.Node      { return r.follow }

// StartPose is the parent pose recorded at construction.
func (r *rig) StartPose() common.Pose { return r.start }

func (r *rig) restoreStart() {
	r.parent.SetWorld(r.start)
}

func checkLaunch(direction mgl64.Vec3, impulse float64) error {
	if !common.HasDirection(direction) {
		return ErrNoDirection
	}
	if impulse <= 0 {
		return ErrNoImpulse
	}
	return nil
}
