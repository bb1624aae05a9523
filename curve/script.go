package curve

import (
	"fmt"
	"math"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// DefaultSamples is how many points a scripted curve is baked into.
const DefaultSamples = 65

// scriptCurveFooter reads the script's `curve` function, when defined, so a
// script may either assign y directly or provide curve(x).
const scriptCurveFooter = `
if is_callable(curve) {
	y = curve(x)
}
`

// FromScript runs a tengo script once per sample and bakes the results into a
// linear keyframe curve over [0, 1]. `x` and `y` are predeclared: the script
// either assigns `y = ...` or `curve = func(x) {...}`. The math module is
// importable.
func FromScript(src string, samples int) (*Keyframes, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("curve: empty script")
	}
	if samples < 2 {
		samples = DefaultSamples
	}

	full := "y := x\ncurve := undefined\n" + src + "\n" + scriptCurveFooter
	script := tengo.NewScript([]byte(full))
	script.SetImports(stdlib.GetModuleMap("math"))
	if err := script.Add("x", 0.0); err != nil {
		return nil, fmt.Errorf("curve: bind x: %w", err)
	}
	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("curve: compile: %w", err)
	}

	keys := make([]Key, samples)
	for i := 0; i < samples; i++ {
		x := float64(i) / float64(samples-1)
		if err := compiled.Set("x", x); err != nil {
			return nil, fmt.Errorf("curve: set x: %w", err)
		}
		if err := compiled.Run(); err != nil {
			return nil, fmt.Errorf("curve: run at x=%.3f: %w", x, err)
		}
		y := compiled.Get("y").Float()
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, fmt.Errorf("curve: non-finite value at x=%.3f", x)
		}
		keys[i] = Key{Time: x, Value: y}
	}
	return NewKeyframes(InterpLinear, keys...)
}
