package band

import (
	"errors"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/common"
	"github.com/milk9111/slingshot/scene"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

var ErrMissingPoles = errors.New("band: missing pole nodes")

// minPoleSeparation below this the poles are treated as one point.
const minPoleSeparation = 1e-4

type Config struct {
	FlipForward   bool
	SnapDuration  float64
	SnapOvershoot float64
	SnapEasing    string
}

func DefaultConfig() Config {
	return Config{
		SnapDuration:  0.18,
		SnapOvershoot: DefaultOvershoot,
		SnapEasing:    "out_back",
	}
}

type Mode int

const (
	ModeIdle Mode = iota
	ModePulled
	ModeSnapping
)

// View owns the band geometry between the two poles and its cosmetic
// snap-back.
type View struct {
	left   *scene.Node
	right  *scene.Node
	cfg    Config
	easing ease.TweenFunc

	mode      Mode
	pullL     mgl64.Vec3
	pullR     mgl64.Vec3
	snapFrom  mgl64.Vec3
	snapPoint mgl64.Vec3
	tween     *gween.Tween
}

func NewView(left, right *scene.Node, cfg Config) (*View, error) {
	if left == nil || right == nil {
		return nil, ErrMissingPoles
	}
	v := &View{left: left, right: right}
	v.SetConfig(cfg)
	return v, nil
}

// SetConfig applies new tuning. An unknown easing falls back to out_back.
func (v *View) SetConfig(cfg Config) {
	if cfg.SnapDuration < 0 {
		cfg.SnapDuration = 0
	}
	fn, err := Easing(cfg.SnapEasing, cfg.SnapOvershoot)
	if err != nil {
		log.Printf("Band: %v, using out_back", err)
		fn = outBack(float32(cfg.SnapOvershoot))
	}
	v.cfg = cfg
	v.easing = fn
}

func (v *View) Config() Config { return v.cfg }
func (v *View) Mode() Mode     { return v.mode }

func (v *View) LeftPole() mgl64.Vec3  { return v.left.Position() }
func (v *View) RightPole() mgl64.Vec3 { return v.right.Position() }

// BandCenter is the midpoint of the poles.
func (v *View) BandCenter() mgl64.Vec3 {
	return v.LeftPole().Add(v.RightPole()).Mul(0.5)
}

// PlaneHeight is the height of the aiming plane.
func (v *View) PlaneHeight() float64 {
	return (v.LeftPole()[1] + v.RightPole()[1]) / 2
}

// PreferredForward is perpendicular to the pole axis and up. It falls back to
// world forward when the poles overlap in the plane.
func (v *View) PreferredForward() mgl64.Vec3 {
	axis := common.Flatten(v.RightPole().Sub(v.LeftPole()))
	fwd := common.WorldFwd
	if axis.LenSqr() > minPoleSeparation*minPoleSeparation {
		if f := axis.Cross(common.Up); common.HasDirection(f) {
			fwd = f.Normalize()
		}
	}
	if v.cfg.FlipForward {
		fwd = fwd.Mul(-1)
	}
	return fwd
}

// ProjectPointerToPlane intersects the pointer ray with the aiming plane. A
// ray that is parallel, points away or cannot be built yields the band
// center.
func (v *View) ProjectPointerToPlane(pointer mgl64.Vec2, cam Camera) mgl64.Vec3 {
	center := v.BandCenter()
	if cam == nil {
		return center
	}
	origin, dir, ok := cam.ScreenRay(pointer)
	if !ok {
		return center
	}
	if math.Abs(dir[1]) < 1e-6 {
		return center
	}
	t := (v.PlaneHeight() - origin[1]) / dir[1]
	if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return center
	}
	return origin.Add(dir.Mul(t))
}

// ClampBetweenPoles keeps the along-band position of point within
// [inset, length-inset] and leaves its perpendicular offset alone.
func (v *View) ClampBetweenPoles(point mgl64.Vec3, inset float64) mgl64.Vec3 {
	a := v.LeftPole()
	axis := common.Flatten(v.RightPole().Sub(a))
	length := axis.Len()
	if length < minPoleSeparation {
		return point
	}
	u := axis.Mul(1 / length)
	s := common.Flatten(point.Sub(a)).Dot(u)

	lo, hi := inset, length-inset
	if lo > hi {
		lo, hi = length/2, length/2
	}
	return point.Add(u.Mul(common.Clamp(s, lo, hi) - s))
}

// RenderPull draws the band through the actor's two anchors.
func (v *View) RenderPull(leftAnchor, rightAnchor mgl64.Vec3) {
	v.mode = ModePulled
	v.tween = nil
	v.pullL = leftAnchor
	v.pullR = rightAnchor
}

// PlaySnapFrom starts the snap-back from point. It ends on its own after the
// configured duration.
func (v *View) PlaySnapFrom(point mgl64.Vec3) {
	if v.cfg.SnapDuration <= 0 {
		v.mode = ModeIdle
		v.tween = nil
		return
	}
	v.mode = ModeSnapping
	v.snapFrom = point
	v.snapPoint = point
	v.tween = gween.New(0, 1, float32(v.cfg.SnapDuration), v.easing)
}

// Update advances the snap tween.
func (v *View) Update(dt float64) {
	if v.mode != ModeSnapping || v.tween == nil {
		return
	}
	progress, done := v.tween.Update(float32(dt))
	center := v.BandCenter()
	v.snapPoint = v.snapFrom.Add(center.Sub(v.snapFrom).Mul(float64(progress)))
	if done {
		v.mode = ModeIdle
		v.tween = nil
	}
}

// SnapPoint is the animated band endpoint while snapping.
func (v *View) SnapPoint() mgl64.Vec3 { return v.snapPoint }

// Band returns the polyline to draw for the current mode.
func (v *View) Band() []mgl64.Vec3 {
	l, r := v.LeftPole(), v.RightPole()
	switch v.mode {
	case ModePulled:
		return []mgl64.Vec3{l, v.pullL, v.pullR, r}
	case ModeSnapping:
		return []mgl64.Vec3{l, v.snapPoint, r}
	}
	return []mgl64.Vec3{l, r}
}

// Idle drops a pull without animating.
func (v *View) Idle() {
	v.mode = ModeIdle
	v.tween = nil
}

func (v *View) ResetToInitial() {
	v.Idle()
	v.snapPoint = mgl64.Vec3{}
}
