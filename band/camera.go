package band

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/common"
)

// Camera turns a screen position into a world-space ray.
type Camera interface {
	ScreenRay(screen mgl64.Vec2) (origin, dir mgl64.Vec3, ok bool)
}

// PerspectiveCamera is a look-at camera with a symmetric frustum. Screen
// coordinates have their origin at the top left, y growing downward.
type PerspectiveCamera struct {
	Eye     mgl64.Vec3
	Target  mgl64.Vec3
	FovYDeg float64
	Near    float64
	Far     float64
	Width   int
	Height  int
}

func NewPerspectiveCamera(eye, target mgl64.Vec3, fovYDeg float64, width, height int) *PerspectiveCamera {
	return &PerspectiveCamera{
		Eye:     eye,
		Target:  target,
		FovYDeg: fovYDeg,
		Near:    0.1,
		Far:     500,
		Width:   width,
		Height:  height,
	}
}

func (c *PerspectiveCamera) view() mgl64.Mat4 {
	up := common.Up
	fwd := c.Target.Sub(c.Eye)
	if common.HasDirection(fwd) && math.Abs(fwd.Normalize().Dot(up)) > 0.999 {
		// looking straight down; any horizontal up works
		up = common.WorldFwd
	}
	return mgl64.LookAtV(c.Eye, c.Target, up)
}

func (c *PerspectiveCamera) projection() mgl64.Mat4 {
	aspect := 1.0
	if c.Height > 0 {
		aspect = float64(c.Width) / float64(c.Height)
	}
	return mgl64.Perspective(mgl64.DegToRad(c.FovYDeg), aspect, c.Near, c.Far)
}

// ScreenRay unprojects the screen point onto the near and far planes.
func (c *PerspectiveCamera) ScreenRay(screen mgl64.Vec2) (mgl64.Vec3, mgl64.Vec3, bool) {
	if c == nil || c.Width <= 0 || c.Height <= 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	view, proj := c.view(), c.projection()
	winY := float64(c.Height) - screen[1]
	near, err := mgl64.UnProject(mgl64.Vec3{screen[0], winY, 0}, view, proj, 0, 0, c.Width, c.Height)
	if err != nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	far, err := mgl64.UnProject(mgl64.Vec3{screen[0], winY, 1}, view, proj, 0, 0, c.Width, c.Height)
	if err != nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	dir := far.Sub(near)
	if !common.HasDirection(dir) {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	return near, dir.Normalize(), true
}

// WorldToScreen projects a world point. ok is false behind the camera.
func (c *PerspectiveCamera) WorldToScreen(p mgl64.Vec3) (mgl64.Vec2, bool) {
	if c == nil || c.Width <= 0 || c.Height <= 0 {
		return mgl64.Vec2{}, false
	}
	view := c.view()
	if view.Mul4x1(p.Vec4(1))[2] > -c.Near {
		return mgl64.Vec2{}, false
	}
	win := mgl64.Project(p, view, c.projection(), 0, 0, c.Width, c.Height)
	return mgl64.Vec2{win[0], float64(c.Height) - win[1]}, true
}
