package main

import (
	"os"

	ebuiinput "github.com/ebitenui/ebitenui/input"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Input samples the mouse, or the first touch, once per frame.
type Input struct {
	pressed  bool
	released bool
	pos      mgl64.Vec2

	touch   ebiten.TouchID
	touched bool

	// ResetPressed is true on the frame R was pressed.
	ResetPressed bool
	// DebugPressed toggles the debug overlay.
	DebugPressed bool
}

func NewInput() *Input {
	return &Input{}
}

func (i *Input) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		os.Exit(0)
	}
	i.ResetPressed = inpututil.IsKeyJustPressed(ebiten.KeyR)
	i.DebugPressed = inpututil.IsKeyJustPressed(ebiten.KeyF3)

	if i.touched {
		i.pressed = false
		if inpututil.IsTouchJustReleased(i.touch) {
			i.released = true
			i.touched = false
			return
		}
		x, y := ebiten.TouchPosition(i.touch)
		i.pos = mgl64.Vec2{float64(x), float64(y)}
		i.released = false
		return
	}
	if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
		i.touch = ids[0]
		i.touched = true
		x, y := ebiten.TouchPosition(i.touch)
		i.pos = mgl64.Vec2{float64(x), float64(y)}
		i.pressed = true
		i.released = false
		return
	}

	mx, my := ebiten.CursorPosition()
	i.pos = mgl64.Vec2{float64(mx), float64(my)}
	i.pressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	i.released = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
}

func (i *Input) JustPressed() bool    { return i.pressed }
func (i *Input) JustReleased() bool   { return i.released }
func (i *Input) Position() mgl64.Vec2 { return i.pos }

// OverBlockingUI is true while the cursor is over a HUD widget.
func (i *Input) OverBlockingUI() bool { return ebuiinput.UIHovered }
