package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/slingshot/prefabs"
)

func main() {
	specFile := flag.String("spec", prefabs.LauncherFile, "actor spec in prefabs/ (launcher.yaml, ramp.yaml, simple.yaml)")
	dir := flag.String("prefabs", prefabs.Dir, "directory whose files override the embedded specs")
	watch := flag.Bool("watch", true, "reload tuning when spec or script files change")
	debug := flag.Bool("debug", false, "enable debug mode")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	prefabs.Dir = *dir

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("slingshot")
	ebiten.SetTPS(50)

	game, err := NewGame(*specFile, *watch, *debug)
	if err != nil {
		log.Fatal(err)
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
