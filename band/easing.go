package band

import (
	"fmt"
	"strings"

	"github.com/tanema/gween/ease"
)

// DefaultOvershoot matches the classic back-out easing constant.
const DefaultOvershoot = 1.70158

// outBack is ease.OutBack with a configurable overshoot.
func outBack(overshoot float32) ease.TweenFunc {
	return func(t, b, c, d float32) float32 {
		t = t/d - 1
		return c*(t*t*((overshoot+1)*t+overshoot)+1) + b
	}
}

// Easing resolves an easing name. "out_back" (and the empty name) use the
// given overshoot; the others ignore it.
func Easing(name string, overshoot float64) (ease.TweenFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "out_back":
		return outBack(float32(overshoot)), nil
	case "linear":
		return ease.Linear, nil
	case "out_quad":
		return ease.OutQuad, nil
	case "out_cubic":
		return ease.OutCubic, nil
	case "out_sine":
		return ease.OutSine, nil
	case "out_elastic":
		return ease.OutElastic, nil
	case "out_bounce":
		return ease.OutBounce, nil
	}
	return nil, fmt.Errorf("band: unknown easing %q", name)
}
