package main

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/slingshot/actor"
	"github.com/milk9111/slingshot/band"
	"github.com/milk9111/slingshot/common"
	"github.com/milk9111/slingshot/physics"
	"golang.org/x/image/colornames"
)

const circleSegments = 20

type renderer struct {
	cam *band.PerspectiveCamera
	dst *ebiten.Image
}

func (r renderer) line(a, b mgl64.Vec3, width float32, clr color.Color) {
	sa, okA := r.cam.WorldToScreen(a)
	sb, okB := r.cam.WorldToScreen(b)
	if !okA || !okB {
		return
	}
	vector.StrokeLine(r.dst, float32(sa[0]), float32(sa[1]), float32(sb[0]), float32(sb[1]), width, clr, true)
}

func (r renderer) polyline(pts []mgl64.Vec3, width float32, clr color.Color) {
	for i := 1; i < len(pts); i++ {
		r.line(pts[i-1], pts[i], width, clr)
	}
}

// ring draws a horizontal circle.
func (r renderer) ring(center mgl64.Vec3, radius float64, clr color.Color) {
	prev := center.Add(mgl64.Vec3{radius, 0, 0})
	for i := 1; i <= circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		next := center.Add(mgl64.Vec3{radius * math.Cos(a), 0, radius * math.Sin(a)})
		r.line(prev, next, 1, clr)
		prev = next
	}
}

// ball draws a sphere as a screen-space disc of its projected radius.
func (r renderer) ball(center mgl64.Vec3, radius float64, clr color.Color) {
	sc, ok := r.cam.WorldToScreen(center)
	if !ok {
		return
	}
	edge, ok := r.cam.WorldToScreen(center.Add(mgl64.Vec3{radius, 0, 0}))
	if !ok {
		return
	}
	rad := float32(edge.Sub(sc).Len())
	vector.DrawFilledCircle(r.dst, float32(sc[0]), float32(sc[1]), rad, clr, true)
	vector.StrokeCircle(r.dst, float32(sc[0]), float32(sc[1]), rad, 1, colornames.Black, true)
}

func (r renderer) box(pose common.Pose, half mgl64.Vec3, clr color.Color) {
	var corners [8]mgl64.Vec3
	for i := range corners {
		local := mgl64.Vec3{half[0], half[1], half[2]}
		if i&1 != 0 {
			local[0] = -local[0]
		}
		if i&2 != 0 {
			local[1] = -local[1]
		}
		if i&4 != 0 {
			local[2] = -local[2]
		}
		corners[i] = pose.Position.Add(pose.Rotation.Rotate(local))
	}
	for i := range corners {
		for _, bit := range []int{1, 2, 4} {
			if j := i | bit; j != i {
				r.line(corners[i], corners[j], 1.5, clr)
			}
		}
	}
}

func (r renderer) ground(y float64) {
	for x := -12.0; x <= 12; x += 2 {
		r.line(mgl64.Vec3{x, y, -12}, mgl64.Vec3{x, y, 48}, 1, colornames.Darkslategray)
	}
	for z := -12.0; z <= 48; z += 2 {
		r.line(mgl64.Vec3{-12, y, z}, mgl64.Vec3{12, y, z}, 1, colornames.Darkslategray)
	}
}

func (r renderer) obstacles(a *actor.Actor) {
	for _, o := range a.Spec.Obstacles {
		var clr color.Color = colornames.Slategray
		if o.Color != nil {
			clr = o.Color.Color
		}
		switch o.Kind {
		case "box":
			lo, hi := o.Min.Vec(), o.Max.Vec()
			center := lo.Add(hi).Mul(0.5)
			r.box(common.NewPose(center), hi.Sub(lo).Mul(0.5), clr)
		case "cylinder":
			base := o.Base.Vec()
			top := base.Add(mgl64.Vec3{0, o.Height, 0})
			r.ring(base, o.Radius, clr)
			r.ring(top, o.Radius, clr)
			for _, d := range []mgl64.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1}} {
				off := d.Mul(o.Radius)
				r.line(base.Add(off), top.Add(off), 1, clr)
			}
		}
	}
}

func (r renderer) body(b *physics.Body) {
	if !b.Enabled() {
		return
	}
	clr := color.Color(colornames.Orange)
	if b.Kinematic() {
		clr = colornames.Lightskyblue
	}
	pose := b.Pose()
	for _, c := range b.Colliders() {
		center := pose.Position.Add(pose.Rotation.Rotate(c.Offset))
		switch c.Kind {
		case physics.ShapeSphere:
			r.ball(center, c.Radius, clr)
		case physics.ShapeCapsule:
			axis := pose.Rotation.Rotate(common.Up).Mul(c.Height / 2)
			r.line(center.Sub(axis), center.Add(axis), 2, clr)
			r.ball(center.Sub(axis), c.Radius, clr)
			r.ball(center.Add(axis), c.Radius, clr)
		case physics.ShapeBox:
			r.box(common.Pose{Position: center, Rotation: pose.Rotation}, c.HalfExtents, clr)
		}
	}
}

// drawActor draws the scene, the band and the aim preview.
func drawActor(dst *ebiten.Image, a *actor.Actor) {
	r := renderer{cam: a.Camera, dst: dst}

	groundY := 0.0
	if g, ok := a.Probe.Ground(); ok {
		groundY = g
	}
	r.ground(groundY)
	r.obstacles(a)

	left, right := a.View.LeftPole(), a.View.RightPole()
	r.line(mgl64.Vec3{left[0], groundY, left[2]}, left, 3, colornames.Saddlebrown)
	r.line(mgl64.Vec3{right[0], groundY, right[2]}, right, 3, colornames.Saddlebrown)
	r.polyline(a.View.Band(), 2, colornames.Gold)

	for _, b := range a.World.Bodies() {
		r.body(b)
	}

	params := a.Controller.Params()
	if !params.HasDirection() {
		return
	}
	origin := a.Parent().Position()
	if hit, ok := a.Controller.PreviewHit(); ok {
		r.line(origin, hit.Point, 1, colornames.Lightgrey)
		r.ball(hit.Point, 0.15, colornames.Red)
		return
	}
	r.line(origin, origin.Add(params.Direction.Mul(a.Controller.Config().PreviewMaxDistance)), 1, colornames.Lightgrey)
}
