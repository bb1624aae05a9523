package controller

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/curve"
	"github.com/milk9111/slingshot/scene"
)

// DistanceMode selects how the raw pull distance is measured.
type DistanceMode int

const (
	// DistancePlanar is the distance from the band center in the aiming plane.
	DistancePlanar DistanceMode = iota
	// DistanceAxis is the signed distance along Config.DistanceAxis.
	DistanceAxis
)

func (m DistanceMode) String() string {
	if m == DistanceAxis {
		return "axis"
	}
	return "planar"
}

func ParseDistanceMode(s string) (DistanceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "planar":
		return DistancePlanar, nil
	case "axis", "axis_projected":
		return DistanceAxis, nil
	}
	return DistancePlanar, fmt.Errorf("controller: unknown distance mode %q", s)
}

// CancelZone cancels a release whose pull point lies within Radius of Center.
// A zero radius disables it.
type CancelZone struct {
	Center mgl64.Vec3
	Radius float64
}

func (z CancelZone) Contains(p mgl64.Vec3) bool {
	if z.Radius <= 0 {
		return false
	}
	return p.Sub(z.Center).LenSqr() < z.Radius*z.Radius
}

type Config struct {
	MaxPullDistance float64
	MinPullDistance float64
	DistanceMode    DistanceMode
	DistanceAxis    mgl64.Vec3
	TensionCurve    curve.Curve

	// MaxYawAtFullPull is in degrees.
	MaxYawAtFullPull  float64
	MinLaunchAngleDeg float64
	MaxLaunchAngleDeg float64

	ForceMultiplierAtMinAngle float64
	ForceMultiplierAtMaxAngle float64
	AngleForceCurve           curve.Curve

	ImpulsePerMeter float64
	MinImpulse      float64
	// MaxImpulse of zero means uncapped.
	MaxImpulse float64

	ClampBetweenPoles bool
	PoleInset         float64

	// MovementStartLimit caps the parent's Z. Together with MovementEndYLimit
	// it also bounds the parent's Y.
	MovementStartLimit *scene.Node
	MovementEndYLimit  *scene.Node

	CancelZone         CancelZone
	PreviewMaxDistance float64
}

func DefaultConfig() Config {
	return Config{
		MaxPullDistance:           5,
		MinPullDistance:           0.25,
		DistanceMode:              DistancePlanar,
		DistanceAxis:              mgl64.Vec3{0, 0, -1},
		MaxYawAtFullPull:          30,
		MinLaunchAngleDeg:         10,
		MaxLaunchAngleDeg:         60,
		ForceMultiplierAtMinAngle: 1,
		ForceMultiplierAtMaxAngle: 1,
		ImpulsePerMeter:           2,
		MinImpulse:                1,
		PoleInset:                 0.1,
		PreviewMaxDistance:        30,
	}
}

func (c Config) Validate() error {
	if c.MaxPullDistance <= 0 {
		return fmt.Errorf("%w: max pull distance must be positive", ErrMisconfigured)
	}
	if c.MinPullDistance < 0 || c.MinPullDistance > c.MaxPullDistance {
		return fmt.Errorf("%w: min pull distance %.2f outside [0, %.2f]", ErrMisconfigured, c.MinPullDistance, c.MaxPullDistance)
	}
	if c.MaxImpulse > 0 && c.MinImpulse > c.MaxImpulse {
		return fmt.Errorf("%w: min impulse above max impulse", ErrMisconfigured)
	}
	if c.DistanceMode == DistanceAxis && c.DistanceAxis.LenSqr() == 0 {
		return fmt.Errorf("%w: axis distance mode without an axis", ErrMisconfigured)
	}
	return nil
}
