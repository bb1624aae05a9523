package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	Up          = mgl64.Vec3{0, 1, 0}
	WorldFwd    = mgl64.Vec3{0, 0, 1}
	WorldRight  = mgl64.Vec3{1, 0, 0}
	ZeroVec3    = mgl64.Vec3{}
	IdentityRot = mgl64.QuatIdent()
)

// Pose is a position plus orientation, in whatever space the owner uses.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

func NewPose(pos mgl64.Vec3) Pose {
	return Pose{Position: pos, Rotation: mgl64.QuatIdent()}
}

// Mul composes parent * child: child expressed in parent space becomes world.
func (p Pose) Mul(child Pose) Pose {
	return Pose{
		Position: p.Position.Add(p.Rotation.Rotate(child.Position)),
		Rotation: p.Rotation.Mul(child.Rotation).Normalize(),
	}
}

func (p Pose) Inverse() Pose {
	inv := p.Rotation.Inverse()
	return Pose{
		Position: inv.Rotate(p.Position.Mul(-1)),
		Rotation: inv,
	}
}

// Forward is the pose's local +Z in world space.
func (p Pose) Forward() mgl64.Vec3 {
	return p.Rotation.Rotate(WorldFwd)
}

func (p Pose) ApproxEqual(o Pose, tol float64) bool {
	if !p.Position.ApproxEqualThreshold(o.Position, tol) {
		return false
	}
	// q and -q are the same rotation
	d := math.Abs(p.Rotation.Dot(o.Rotation))
	return d >= 1-tol
}

// Flatten drops the vertical component.
func Flatten(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], 0, v[2]}
}

// HasDirection reports whether v is long enough to normalize safely.
func HasDirection(v mgl64.Vec3) bool {
	return v.LenSqr() >= DirectionEpsilon
}

// SafeNormalize returns the unit vector or zero for degenerate input.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	if !HasDirection(v) {
		return mgl64.Vec3{}
	}
	return v.Normalize()
}

// SignedAngleDeg is the angle from a to b around axis, in degrees.
func SignedAngleDeg(from, to, axis mgl64.Vec3) float64 {
	if !HasDirection(from) || !HasDirection(to) {
		return 0
	}
	a := from.Normalize()
	b := to.Normalize()
	angle := math.Atan2(a.Cross(b).Dot(axis), a.Dot(b))
	return Rad2Deg(angle)
}

// RotateAround rotates v by deg degrees around axis.
func RotateAround(v, axis mgl64.Vec3, deg float64) mgl64.Vec3 {
	return mgl64.QuatRotate(Deg2Rad(deg), axis.Normalize()).Rotate(v)
}

// YawRotation faces +Z along the flattened dir. Zero dir yields identity.
func YawRotation(dir mgl64.Vec3) mgl64.Quat {
	flat := Flatten(dir)
	if !HasDirection(flat) {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(math.Atan2(flat[0], flat[2]), Up)
}
