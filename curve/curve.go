package curve

import (
	"errors"
	"math"
	"sort"

	"github.com/milk9111/slingshot/common"
)

var (
	ErrNoKeys       = errors.New("curve: no keys")
	ErrUnsortedKeys = errors.New("curve: key times must be strictly increasing")
)

// Curve maps a normalized input to a shaping value.
type Curve interface {
	Evaluate(t float64) float64
}

// Eval evaluates c, falling back to identity when no curve is configured.
func Eval(c Curve, t float64) float64 {
	if c == nil {
		return t
	}
	return c.Evaluate(t)
}

// Identity is the linear 0→1 curve.
type Identity struct{}

func (Identity) Evaluate(t float64) float64 { return t }

type Interpolation int

const (
	InterpLinear Interpolation = iota
	// InterpSmooth is a monotone cubic (Fritsch–Carlson): smooth between keys
	// without overshooting, so monotone keys stay monotone.
	InterpSmooth
)

type Key struct {
	Time  float64
	Value float64
}

// Keyframes is a piecewise curve through sorted keys; inputs outside the key
// range clamp to the end values.
type Keyframes struct {
	keys     []Key
	tangents []float64
	interp   Interpolation
}

func NewKeyframes(interp Interpolation, keys ...Key) (*Keyframes, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	sorted := append([]Key(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Time <= sorted[i-1].Time {
			return nil, ErrUnsortedKeys
		}
	}
	k := &Keyframes{keys: sorted, interp: interp}
	if interp == InterpSmooth {
		k.tangents = monotoneTangents(sorted)
	}
	return k, nil
}

// Linear is the curve through (0, from) and (1, to).
func Linear(from, to float64) *Keyframes {
	k, _ := NewKeyframes(InterpLinear, Key{0, from}, Key{1, to})
	return k
}

func (k *Keyframes) Keys() []Key {
	if k == nil {
		return nil
	}
	return k.keys
}

func (k *Keyframes) Evaluate(t float64) float64 {
	if k == nil || len(k.keys) == 0 {
		return t
	}
	first, last := k.keys[0], k.keys[len(k.keys)-1]
	if t <= first.Time {
		return first.Value
	}
	if t >= last.Time {
		return last.Value
	}
	i := sort.Search(len(k.keys), func(i int) bool { return k.keys[i].Time > t }) - 1
	a, b := k.keys[i], k.keys[i+1]
	h := b.Time - a.Time
	s := (t - a.Time) / h
	if k.interp != InterpSmooth {
		return common.Lerp(a.Value, b.Value, s)
	}
	s2 := s * s
	s3 := s2 * s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2
	return h00*a.Value + h10*h*k.tangents[i] + h01*b.Value + h11*h*k.tangents[i+1]
}

func monotoneTangents(keys []Key) []float64 {
	n := len(keys)
	m := make([]float64, n)
	if n < 2 {
		return m
	}
	delta := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		delta[i] = (keys[i+1].Value - keys[i].Value) / (keys[i+1].Time - keys[i].Time)
	}
	m[0] = delta[0]
	m[n-1] = delta[n-2]
	for i := 1; i < n-1; i++ {
		if delta[i-1]*delta[i] <= 0 {
			m[i] = 0
			continue
		}
		m[i] = (delta[i-1] + delta[i]) / 2
	}
	for i := 0; i < n-1; i++ {
		if delta[i] == 0 {
			m[i] = 0
			m[i+1] = 0
			continue
		}
		a := m[i] / delta[i]
		b := m[i+1] / delta[i]
		if s := a*a + b*b; s > 9 {
			tau := 3 / math.Sqrt(s)
			m[i] = tau * a * delta[i]
			m[i+1] = tau * b * delta[i]
		}
	}
	return m
}
