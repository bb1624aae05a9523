package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/slingshot/common"
)

// Hit describes the first surface a ray touched.
type Hit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
	Name     string
}

type obstacle struct {
	name string
	minY float64
	maxY float64
}

// Probe holds static geometry as vertical prisms: each obstacle's footprint on
// the ground plane (X/Z) lives in a Chipmunk space and carries a height range.
// Queries never mutate the space.
type Probe struct {
	space     *cp.Space
	groundY   float64
	hasGround bool
	count     int
}

func NewProbe() *Probe {
	return &Probe{space: cp.NewSpace()}
}

// SetGround adds an infinite horizontal plane at height y.
func (p *Probe) SetGround(y float64) {
	if p == nil {
		return
	}
	p.groundY = y
	p.hasGround = true
}

func (p *Probe) Ground() (float64, bool) {
	if p == nil {
		return 0, false
	}
	return p.groundY, p.hasGround
}

func (p *Probe) Len() int {
	if p == nil {
		return 0
	}
	return p.count
}

// AddBox adds an axis-aligned box spanning min..max.
func (p *Probe) AddBox(name string, min, max mgl64.Vec3) {
	if p == nil || p.space == nil {
		return
	}
	bb := cp.BB{
		L: math.Min(min[0], max[0]),
		B: math.Min(min[2], max[2]),
		R: math.Max(min[0], max[0]),
		T: math.Max(min[2], max[2]),
	}
	shape := cp.NewBox2(p.space.StaticBody, bb, 0)
	p.addShape(shape, name, min[1], max[1])
}

// AddCylinder adds an upright cylinder whose base center is at base.
func (p *Probe) AddCylinder(name string, base mgl64.Vec3, radius, height float64) {
	if p == nil || p.space == nil || radius <= 0 {
		return
	}
	shape := cp.NewCircle(p.space.StaticBody, radius, cp.Vector{X: base[0], Y: base[2]})
	p.addShape(shape, name, base[1], base[1]+height)
}

func (p *Probe) addShape(shape *cp.Shape, name string, y0, y1 float64) {
	shape.UserData = &obstacle{name: name, minY: math.Min(y0, y1), maxY: math.Max(y0, y1)}
	p.space.AddShape(shape)
	p.count++
}

// Raycast returns the nearest hit along dir within maxDist.
func (p *Probe) Raycast(origin, dir mgl64.Vec3, maxDist float64) (Hit, bool) {
	if p == nil || p.space == nil || maxDist <= 0 || !common.HasDirection(dir) {
		return Hit{}, false
	}
	d := dir.Normalize().Mul(maxDist)

	bestT := math.Inf(1)
	var best Hit
	consider := func(t float64, normal mgl64.Vec3, name string) {
		if t < 0 || t > 1 || t >= bestT {
			return
		}
		bestT = t
		best = Hit{Point: origin.Add(d.Mul(t)), Normal: normal, Name: name}
	}

	// side walls: the footprint hit in X/Z is valid if the ray's height at that
	// parameter lies inside the prism
	start := cp.Vector{X: origin[0], Y: origin[2]}
	end := cp.Vector{X: origin[0] + d[0], Y: origin[2] + d[2]}
	if d[0]*d[0]+d[2]*d[2] > 1e-12 {
		p.space.SegmentQuery(start, end, 0, cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, point, normal cp.Vector, alpha float64, data interface{}) {
			ob, ok := shape.UserData.(*obstacle)
			if !ok {
				return
			}
			y := origin[1] + d[1]*alpha
			if y < ob.minY || y > ob.maxY {
				return
			}
			consider(alpha, mgl64.Vec3{normal.X, 0, normal.Y}, ob.name)
		}, nil)
	}

	// caps: crossing a prism's top (falling) or bottom (rising) inside its footprint
	if math.Abs(d[1]) > 1e-12 {
		p.space.EachShape(func(shape *cp.Shape) {
			ob, ok := shape.UserData.(*obstacle)
			if !ok {
				return
			}
			capY, normal := ob.maxY, common.Up
			if d[1] > 0 {
				capY, normal = ob.minY, common.Up.Mul(-1)
			}
			t := (capY - origin[1]) / d[1]
			if t < 0 || t > 1 {
				return
			}
			at := origin.Add(d.Mul(t))
			if shape.PointQuery(cp.Vector{X: at[0], Y: at[2]}).Distance > 0 {
				return
			}
			consider(t, normal, ob.name)
		})
	}

	if p.hasGround && d[1] < 0 {
		consider((p.groundY-origin[1])/d[1], common.Up, "ground")
	}

	if math.IsInf(bestT, 1) {
		return Hit{}, false
	}
	best.Distance = bestT * maxDist
	return best, true
}
