package sim

import "log"

// DefaultMaxSteps bounds the fixed steps run for one frame.
const DefaultMaxSteps = 8

// Loop runs fixed-rate systems from an accumulator and frame systems once per
// frame. Fixed systems always run first so frame code sees the latest physics
// state.
type Loop struct {
	Fixed      *Scheduler
	Frame      *Scheduler
	FixedDelta float64
	MaxSteps   int

	accumulator float64
	steps       int
	frames      int
}

func NewLoop(fixedDelta float64) *Loop {
	if fixedDelta <= 0 {
		fixedDelta = 1.0 / 50.0
	}
	return &Loop{
		Fixed:      NewScheduler(),
		Frame:      NewScheduler(),
		FixedDelta: fixedDelta,
		MaxSteps:   DefaultMaxSteps,
	}
}

// Advance consumes frameDt and returns how many fixed steps ran.
func (l *Loop) Advance(frameDt float64) int {
	if frameDt < 0 {
		frameDt = 0
	}
	l.frames++
	l.accumulator += frameDt

	n := 0
	for l.accumulator+1e-9 >= l.FixedDelta {
		if l.MaxSteps > 0 && n >= l.MaxSteps {
			log.Printf("Loop: dropping %.3fs of simulation time", l.accumulator)
			l.accumulator = 0
			break
		}
		l.Fixed.Update(l.FixedDelta)
		l.accumulator -= l.FixedDelta
		n++
	}
	if l.accumulator < 0 {
		l.accumulator = 0
	}
	l.steps += n

	l.Frame.Update(frameDt)
	return n
}

// Alpha is how far the accumulator sits into the next fixed step.
func (l *Loop) Alpha() float64 {
	return l.accumulator / l.FixedDelta
}

func (l *Loop) Steps() int  { return l.steps }
func (l *Loop) Frames() int { return l.frames }

// Reset drops accumulated time without touching the systems.
func (l *Loop) Reset() {
	l.accumulator = 0
}
