package prefabs

import (
	"fmt"

	"github.com/milk9111/slingshot/curve"
)

// BuildCurve turns a curve spec into a curve. A nil spec yields a nil curve,
// which evaluates as identity.
func BuildCurve(spec *CurveSpec) (curve.Curve, error) {
	if spec == nil {
		return nil, nil
	}
	switch {
	case spec.Script != "":
		src, err := LoadScript(spec.Script)
		if err != nil {
			return nil, fmt.Errorf("prefabs: load script %s: %w", spec.Script, err)
		}
		k, err := curve.FromScript(string(src), spec.Samples)
		if err != nil {
			return nil, fmt.Errorf("prefabs: script %s: %w", spec.Script, err)
		}
		return k, nil
	case spec.Source != "":
		k, err := curve.FromScript(spec.Source, spec.Samples)
		if err != nil {
			return nil, fmt.Errorf("prefabs: inline curve: %w", err)
		}
		return k, nil
	case len(spec.Keys) > 0:
		keys := make([]curve.Key, 0, len(spec.Keys))
		for _, k := range spec.Keys {
			keys = append(keys, curve.Key{Time: k[0], Value: k[1]})
		}
		interp := curve.InterpLinear
		if spec.Smooth {
			interp = curve.InterpSmooth
		}
		k, err := curve.NewKeyframes(interp, keys...)
		if err != nil {
			return nil, fmt.Errorf("prefabs: curve keys: %w", err)
		}
		return k, nil
	}
	return nil, nil
}
