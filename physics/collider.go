package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type ShapeKind int

const (
	ShapeSphere ShapeKind = iota
	ShapeCapsule
	ShapeBox
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeCapsule:
		return "capsule"
	case ShapeBox:
		return "box"
	}
	return "unknown"
}

// Collider is a collision volume attached to a body, offset in body space.
// Capsules are aligned with the body's local Y axis; Height is the length of
// the cylindrical section.
type Collider struct {
	Kind        ShapeKind
	Radius      float64
	Height      float64
	HalfExtents mgl64.Vec3
	Offset      mgl64.Vec3
	Enabled     bool
}

func NewSphere(radius float64, offset mgl64.Vec3) *Collider {
	return &Collider{Kind: ShapeSphere, Radius: radius, Offset: offset, Enabled: true}
}

func NewCapsule(radius, height float64, offset mgl64.Vec3) *Collider {
	return &Collider{Kind: ShapeCapsule, Radius: radius, Height: height, Offset: offset, Enabled: true}
}

func NewBox(halfExtents, offset mgl64.Vec3) *Collider {
	return &Collider{Kind: ShapeBox, HalfExtents: halfExtents, Offset: offset, Enabled: true}
}

func (c *Collider) Volume() float64 {
	if c == nil {
		return 0
	}
	switch c.Kind {
	case ShapeSphere:
		return 4.0 / 3.0 * math.Pi * c.Radius * c.Radius * c.Radius
	case ShapeCapsule:
		return math.Pi*c.Radius*c.Radius*c.Height + 4.0/3.0*math.Pi*c.Radius*c.Radius*c.Radius
	case ShapeBox:
		return 8 * c.HalfExtents[0] * c.HalfExtents[1] * c.HalfExtents[2]
	}
	return 0
}

// Extent is the radius of a sphere around the body origin enclosing the collider.
func (c *Collider) Extent() float64 {
	if c == nil {
		return 0
	}
	switch c.Kind {
	case ShapeSphere:
		return c.Offset.Len() + c.Radius
	case ShapeCapsule:
		return c.Offset.Len() + c.Radius + c.Height/2
	case ShapeBox:
		return c.Offset.Len() + c.HalfExtents.Len()
	}
	return c.Offset.Len()
}

// inertia returns the principal moments of a solid shape of mass m about its
// own center, in body axes.
func (c *Collider) inertia(m float64) mgl64.Vec3 {
	switch c.Kind {
	case ShapeSphere:
		i := 0.4 * m * c.Radius * c.Radius
		return mgl64.Vec3{i, i, i}
	case ShapeCapsule:
		// solid cylinder spanning the full capsule length
		h := c.Height + 2*c.Radius
		side := m * (3*c.Radius*c.Radius + h*h) / 12
		return mgl64.Vec3{side, 0.5 * m * c.Radius * c.Radius, side}
	case ShapeBox:
		x, y, z := 2*c.HalfExtents[0], 2*c.HalfExtents[1], 2*c.HalfExtents[2]
		return mgl64.Vec3{m * (y*y + z*z) / 12, m * (x*x + z*z) / 12, m * (x*x + y*y) / 12}
	}
	return mgl64.Vec3{}
}
