package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/common"
	"gopkg.in/yaml.v3"
)

// LauncherFile is the default actor spec.
const LauncherFile = "launcher.yaml"

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadActorSpec reads and validates an actor spec.
func LoadActorSpec(filename string) (*ActorSpec, error) {
	spec, err := LoadSpec[ActorSpec](filename)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return &spec, nil
}

// Vec3Spec is written as a flow sequence: [x, y, z].
type Vec3Spec [3]float64

func (v Vec3Spec) Vec() mgl64.Vec3 { return mgl64.Vec3(v) }

type PoseSpec struct {
	Position Vec3Spec `yaml:"position"`
	YawDeg   float64  `yaml:"yaw_deg"`
}

func (p PoseSpec) Pose() common.Pose {
	return common.Pose{
		Position: p.Position.Vec(),
		Rotation: mgl64.QuatRotate(common.Deg2Rad(p.YawDeg), common.Up),
	}
}

type ActorSpec struct {
	Name    string     `yaml:"name"`
	Variant string     `yaml:"variant"`
	Start   PoseSpec   `yaml:"start"`
	Poles   PairSpec   `yaml:"poles"`
	Anchors PairSpec   `yaml:"anchors"`
	Launch  LaunchSpec `yaml:"launch"`
	Band    BandSpec   `yaml:"band"`

	Simple  *SimpleSpec  `yaml:"simple"`
	Ramp    *RampSpec    `yaml:"ramp"`
	Delayed *DelayedSpec `yaml:"delayed"`

	Gravity   *Vec3Spec      `yaml:"gravity"`
	GroundY   *float64       `yaml:"ground_y"`
	Obstacles []ObstacleSpec `yaml:"obstacles"`
	Camera    CameraSpec     `yaml:"camera"`
}

// PairSpec positions a left/right pair. Poles are in world space, anchors
// relative to the actor.
type PairSpec struct {
	Left  Vec3Spec `yaml:"left"`
	Right Vec3Spec `yaml:"right"`
}

// CurveSpec is one of: Script (a file under scripts/), Source (inline tengo)
// or Keys ([time, value] pairs).
type CurveSpec struct {
	Script  string       `yaml:"script"`
	Source  string       `yaml:"source"`
	Keys    [][2]float64 `yaml:"keys"`
	Smooth  bool         `yaml:"smooth"`
	Samples int          `yaml:"samples"`
}

type CancelZoneSpec struct {
	Center Vec3Spec `yaml:"center"`
	Radius float64  `yaml:"radius"`
}

type LaunchSpec struct {
	MaxPullDistance           float64         `yaml:"max_pull_distance"`
	MinPullDistance           float64         `yaml:"min_pull_distance"`
	DistanceMode              string          `yaml:"distance_mode"`
	DistanceAxis              *Vec3Spec       `yaml:"distance_axis"`
	TensionCurve              *CurveSpec      `yaml:"tension_curve"`
	MaxYawAtFullPull          float64         `yaml:"max_yaw_at_full_pull"`
	MinLaunchAngleDeg         float64         `yaml:"min_launch_angle_deg"`
	MaxLaunchAngleDeg         float64         `yaml:"max_launch_angle_deg"`
	ForceMultiplierAtMinAngle *float64        `yaml:"force_multiplier_at_min_angle"`
	ForceMultiplierAtMaxAngle *float64        `yaml:"force_multiplier_at_max_angle"`
	AngleForceCurve           *CurveSpec      `yaml:"angle_force_curve"`
	ImpulsePerMeter           float64         `yaml:"impulse_per_meter"`
	MinImpulse                float64         `yaml:"min_impulse"`
	MaxImpulse                float64         `yaml:"max_impulse"`
	ClampBetweenPoles         bool            `yaml:"clamp_between_poles"`
	PoleInset                 float64         `yaml:"pole_inset"`
	MovementStartLimit        *Vec3Spec       `yaml:"movement_start_limit"`
	MovementEndYLimit         *Vec3Spec       `yaml:"movement_end_y_limit"`
	CancelZone                *CancelZoneSpec `yaml:"cancel_zone"`
	PreviewMaxDistance        float64         `yaml:"preview_max_distance"`
}

type BandSpec struct {
	FlipForward   bool     `yaml:"flip_forward"`
	SnapDuration  *float64 `yaml:"snap_duration"`
	SnapOvershoot *float64 `yaml:"snap_overshoot"`
	SnapEasing    string   `yaml:"snap_easing"`
}

// BodySpec is one rigid body with a single collider.
type BodySpec struct {
	Name        string   `yaml:"name"`
	Parent      string   `yaml:"parent"`
	Position    Vec3Spec `yaml:"position"`
	Shape       string   `yaml:"shape"`
	Radius      float64  `yaml:"radius"`
	Height      float64  `yaml:"height"`
	HalfExtents Vec3Spec `yaml:"half_extents"`
	Offset      Vec3Spec `yaml:"offset"`
	Mass        float64  `yaml:"mass"`
}

type SimpleSpec struct {
	Body BodySpec `yaml:"body"`
}

type RampSpec struct {
	Body    BodySpec `yaml:"body"`
	Start   PoseSpec `yaml:"start"`
	End     PoseSpec `yaml:"end"`
	Speed   float64  `yaml:"speed"`
	Overrun float64  `yaml:"overrun"`
}

type DelayedSpec struct {
	RagdollEnableDelay      float64 `yaml:"ragdoll_enable_delay"`
	InheritLauncherVelocity *bool   `yaml:"inherit_launcher_velocity"`

	// Launcher.Position is relative to the actor's start pose.
	Launcher BodySpec   `yaml:"launcher"`
	Main     string     `yaml:"main"`
	Parts    []BodySpec `yaml:"parts"`
}

func (d *DelayedSpec) Inherit() bool {
	return d == nil || d.InheritLauncherVelocity == nil || *d.InheritLauncherVelocity
}

type ObstacleSpec struct {
	Name   string     `yaml:"name"`
	Kind   string     `yaml:"kind"`
	Min    Vec3Spec   `yaml:"min"`
	Max    Vec3Spec   `yaml:"max"`
	Base   Vec3Spec   `yaml:"base"`
	Radius float64    `yaml:"radius"`
	Height float64    `yaml:"height"`
	Color  *YAMLColor `yaml:"color"`
}

type CameraSpec struct {
	Eye     Vec3Spec `yaml:"eye"`
	Target  Vec3Spec `yaml:"target"`
	FovYDeg float64  `yaml:"fov_deg"`
}

// Validate checks what the builders cannot default.
func (s *ActorSpec) Validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Variant)) {
	case "", "simple", "simple_body":
		if s.Simple == nil {
			return fmt.Errorf("variant %q needs a simple block", s.Variant)
		}
	case "ramp", "ramp_guided":
		if s.Ramp == nil {
			return fmt.Errorf("variant %q needs a ramp block", s.Variant)
		}
	case "ragdoll", "delayed_ragdoll":
		if s.Delayed == nil || len(s.Delayed.Parts) == 0 {
			return fmt.Errorf("variant %q needs delayed.parts", s.Variant)
		}
	default:
		return fmt.Errorf("unknown variant %q", s.Variant)
	}
	if s.Poles.Left == s.Poles.Right {
		return fmt.Errorf("poles overlap at %v", s.Poles.Left)
	}
	for i, o := range s.Obstacles {
		switch o.Kind {
		case "box", "cylinder":
		default:
			return fmt.Errorf("obstacle %d (%s): unknown kind %q", i, o.Name, o.Kind)
		}
	}
	return nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
