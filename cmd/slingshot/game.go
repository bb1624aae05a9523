package main

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/slingshot/actor"
	"github.com/milk9111/slingshot/events"
	"github.com/milk9111/slingshot/launch"
	"github.com/milk9111/slingshot/prefabs"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	// followLerp is the share of the gap the camera closes each frame.
	followLerp = 0.12
)

type Game struct {
	specFile string
	debug    bool
	frames   int

	input   *Input
	hud     *HUD
	actor   *actor.Actor
	watcher *prefabs.Watcher

	baseEye    mgl64.Vec3
	baseTarget mgl64.Vec3
}

func NewGame(specFile string, watch, debug bool) (*Game, error) {
	spec, err := prefabs.LoadActorSpec(specFile)
	if err != nil {
		return nil, err
	}
	a, err := actor.Build(spec, baseWidth, baseHeight)
	if err != nil {
		return nil, err
	}

	g := &Game{
		specFile: specFile,
		debug:    debug,
		input:    NewInput(),
	}
	g.hud = NewHUD(g.reset)
	g.setActor(a)

	if watch {
		w, err := prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
		if err != nil {
			log.Printf("Game: not watching %s: %v", prefabs.Dir, err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *Game) setActor(a *actor.Actor) {
	if g.actor != nil {
		g.actor.Close()
	}
	g.actor = a
	g.baseEye, g.baseTarget = a.Camera.Eye, a.Camera.Target
	g.hud.SetStatus(fmt.Sprintf("%s: drag back from the band", a.Spec.Name))
}

func (g *Game) reset() {
	g.actor.Reset()
}

func (g *Game) Update() error {
	g.frames++

	g.input.Update()
	g.hud.UI.Update()
	if g.input.DebugPressed {
		g.debug = !g.debug
	}
	if g.input.ResetPressed {
		g.reset()
	}
	g.reload()

	g.actor.Frame(g.input, 1.0/float64(ebiten.TPS()))
	g.handleEvents()
	g.updateCamera()

	p := g.actor.Controller.Params()
	g.hud.SetParams(fmt.Sprintf("pull %.2f  angle %.1f  yaw %.1f  impulse %.2f", p.Pull01, p.AngleDeg, p.YawDeg, p.Impulse))
	return nil
}

// reload applies changed spec files. Tuning is applied in place; anything
// else rebuilds the actor.
func (g *Game) reload() {
	if g.watcher == nil {
		return
	}
	select {
	case err := <-g.watcher.Errors:
		log.Printf("Game: watcher: %v", err)
	default:
	}
	changed := g.watcher.Drain()
	if len(changed) == 0 {
		return
	}
	log.Printf("Game: reloading %s after changes to %v", g.specFile, changed)

	spec, err := prefabs.LoadActorSpec(g.specFile)
	if err != nil {
		log.Printf("Game: reload: %v", err)
		return
	}
	err = g.actor.ApplyTuning(spec)
	if err == nil {
		return
	}
	if !errors.Is(err, actor.ErrRebuild) {
		log.Printf("Game: reload: %v", err)
		return
	}
	a, err := actor.Build(spec, baseWidth, baseHeight)
	if err != nil {
		log.Printf("Game: rebuild: %v", err)
		return
	}
	g.setActor(a)
}

func (g *Game) handleEvents() {
	for _, e := range g.actor.Bus.Drain() {
		if g.debug {
			log.Printf("Game: event %s at %v", e.Kind, e.Pose.Position)
		}
		switch e.Kind {
		case events.EnterAiming:
			g.hud.SetStatus("aiming")
		case events.Cancelled:
			g.hud.SetStatus("cancelled")
		case events.LaunchStarted:
			g.hud.SetStatus("launched")
		case events.Handoff:
			g.hud.SetStatus("ragdoll")
		case events.Reset:
			g.hud.SetStatus(fmt.Sprintf("%s: drag back from the band", g.actor.Spec.Name))
		case events.PreviewUpdated:
			if e.HasHit && g.debug {
				log.Printf("Game: preview hits %s at %.1fm", e.Hit.Name, e.Hit.Distance)
			}
		}
	}
}

// updateCamera trails whatever the actor follows once it is launched and
// snaps back to the aiming view otherwise.
func (g *Game) updateCamera() {
	cam := g.actor.Camera
	if !g.actor.Capability.IsLaunching() {
		cam.Eye, cam.Target = g.baseEye, g.baseTarget
		return
	}
	n := g.actor.Follow()
	if n == nil {
		return
	}
	offset := g.baseEye.Sub(g.baseTarget)
	cam.Target = cam.Target.Add(n.Position().Sub(cam.Target).Mul(followLerp))
	cam.Eye = cam.Target.Add(offset)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)
	drawActor(screen, g.actor)
	g.hud.UI.Draw(screen)

	if !g.debug {
		return
	}
	phase := ""
	switch c := g.actor.Capability.(type) {
	case *launch.DelayedRagdoll:
		phase = fmt.Sprintf("  phase: %s  handoff in %.2fs", c.Phase(), c.Timer().Remaining())
	case *launch.RampGuided:
		phase = fmt.Sprintf("  phase: %s  %.2f/%.2fm", c.Phase(), c.Traveled(), c.PathLength())
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f    Steps: %d\nstate: %s%s",
		g.frames, ebiten.ActualFPS(), g.actor.Loop.Steps(), g.actor.Controller.State(), phase))
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
