package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"text/tabwriter"

	"github.com/milk9111/slingshot/actor"
	"github.com/milk9111/slingshot/controller"
	"github.com/milk9111/slingshot/launch"
	"github.com/milk9111/slingshot/prefabs"
)

// Prints the launch parameters a spec produces for straight-back pulls from
// the minimum to the maximum pull distance.
func main() {
	specFile := flag.String("spec", prefabs.LauncherFile, "actor spec in prefabs/")
	dir := flag.String("prefabs", prefabs.Dir, "directory whose files override the embedded specs")
	steps := flag.Int("steps", 10, "rows between min and max pull distance")
	flag.Parse()

	prefabs.Dir = *dir
	if *steps < 1 {
		*steps = 1
	}

	spec, err := prefabs.LoadActorSpec(*specFile)
	if err != nil {
		log.Fatal(err)
	}
	a, err := actor.Build(spec, 1280, 720)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	cfg := a.Controller.Config()
	center := a.View.BandCenter()
	fwd := a.View.PreferredForward()
	g := a.World.Gravity.Len()

	fmt.Printf("%s (%s), pull %.2f..%.2fm, %s distance\n\n",
		spec.Name, a.Kind, cfg.MinPullDistance, cfg.MaxPullDistance, cfg.DistanceMode)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "pull m\tpull01\tangle°\tyaw ±°\tforce x\timpulse\tspeed m/s\tflat range m\t")
	for i := 0; i <= *steps; i++ {
		d := cfg.MinPullDistance + (cfg.MaxPullDistance-cfg.MinPullDistance)*float64(i)/float64(*steps)
		p := controller.ComputeParameters(cfg, center, center.Sub(fwd.Mul(d)), fwd)
		speed := launchSpeed(a.Capability, p.Impulse)
		fmt.Fprintf(w, "%.2f\t%.3f\t%.1f\t%.1f\t%.3f\t%.2f\t%.2f\t%.1f\t\n",
			d, p.Pull01, p.AngleDeg, p.AllowedYawDeg, p.ForceMultiplier, p.Impulse, speed, flatRange(speed, p.AngleDeg, g))
	}
	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}
}

// launchSpeed is the speed a capability leaves with for a given impulse.
func launchSpeed(c launch.Capability, impulse float64) float64 {
	if s, ok := c.(*launch.SimpleBody); ok {
		return impulse / s.Body().Mass()
	}
	// ramp speed and launcher velocity change are both the impulse itself
	return impulse
}

// flatRange is the drag-free distance to landing at launch height.
func flatRange(speed, angleDeg, g float64) float64 {
	if g <= 0 {
		return math.Inf(1)
	}
	return speed * speed * math.Sin(2*angleDeg*math.Pi/180) / g
}
