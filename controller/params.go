package controller

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/common"
	"github.com/milk9111/slingshot/curve"
)

// Params is everything derived from one pull point.
type Params struct {
	// Direction is unit length, or zero when there is nothing to launch along.
	Direction mgl64.Vec3
	Impulse   float64
	AngleDeg  float64

	FlatDirection   mgl64.Vec3
	RawDistance     float64
	Pull01          float64
	YawDeg          float64
	AllowedYawDeg   float64
	ForceMultiplier float64
}

// HasDirection reports whether the params describe a launch at all.
func (p Params) HasDirection() bool {
	return common.HasDirection(p.Direction)
}

// RawDistance measures the pull from center to point in the configured mode.
func RawDistance(cfg Config, center, point mgl64.Vec3) float64 {
	offset := point.Sub(center)
	if cfg.DistanceMode == DistanceAxis {
		axis := cfg.DistanceAxis
		if axis.LenSqr() == 0 {
			return 0
		}
		return offset.Dot(axis.Normalize())
	}
	return common.Flatten(offset).Len()
}

// Pull01 is the tension-shaped pull fraction for a raw distance.
func Pull01(cfg Config, raw float64) float64 {
	if cfg.MaxPullDistance <= 0 {
		return 0
	}
	d := common.Clamp(raw, cfg.MinPullDistance, cfg.MaxPullDistance)
	return curve.Eval(cfg.TensionCurve, d/cfg.MaxPullDistance)
}

// ComputeParameters derives direction, angle and impulse from a constrained
// pull point. baseline is the band's forward.
func ComputeParameters(cfg Config, center, point, baseline mgl64.Vec3) Params {
	var p Params
	p.RawDistance = RawDistance(cfg, center, point)
	p.Pull01 = Pull01(cfg, p.RawDistance)

	base := common.SafeNormalize(common.Flatten(baseline))
	toCenter := common.Flatten(center.Sub(point))
	if !common.HasDirection(base) || !common.HasDirection(toCenter) {
		return p
	}

	// yaw freedom grows with the pull
	p.AllowedYawDeg = math.Abs(cfg.MaxYawAtFullPull) * p.Pull01
	desired := common.SignedAngleDeg(base, toCenter, common.Up)
	p.YawDeg = common.Clamp(desired, -p.AllowedYawDeg, p.AllowedYawDeg)
	flat := common.Flatten(common.RotateAround(base, common.Up, p.YawDeg))
	if !common.HasDirection(flat) {
		return p
	}
	p.FlatDirection = flat.Normalize()

	p.AngleDeg = common.Lerp(cfg.MinLaunchAngleDeg, cfg.MaxLaunchAngleDeg, p.Pull01)
	angle01 := common.InverseLerp(cfg.MinLaunchAngleDeg, cfg.MaxLaunchAngleDeg, p.AngleDeg)
	p.ForceMultiplier = common.Lerp(cfg.ForceMultiplierAtMinAngle, cfg.ForceMultiplierAtMaxAngle, angle01)
	if cfg.AngleForceCurve != nil {
		p.ForceMultiplier *= cfg.AngleForceCurve.Evaluate(angle01)
	}

	rad := common.Deg2Rad(p.AngleDeg)
	dir := p.FlatDirection.Mul(math.Cos(rad)).Add(common.Up.Mul(math.Sin(rad)))
	p.Direction = common.SafeNormalize(dir)
	if !p.HasDirection() {
		return p
	}

	impulse := p.Pull01 * cfg.MaxPullDistance * cfg.ImpulsePerMeter * p.ForceMultiplier
	if cfg.MaxImpulse > 0 {
		impulse = math.Min(impulse, cfg.MaxImpulse)
	}
	p.Impulse = math.Max(cfg.MinImpulse, impulse)
	return p
}
