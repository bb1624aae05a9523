package launch

// HandoffTimer counts fixed-step time toward a delay. Cancel wins over
// elapsing: a cancelled timer never reports completion.
type HandoffTimer struct {
	delay     float64
	elapsed   float64
	running   bool
	cancelled bool
}

func (t *HandoffTimer) Start(delay float64) {
	if delay < 0 {
		delay = 0
	}
	t.delay = delay
	t.elapsed = 0
	t.running = true
	t.cancelled = false
}

// Advance adds dt and reports true exactly once, on the tick the delay is
// reached.
func (t *HandoffTimer) Advance(dt float64) bool {
	if !t.running || t.cancelled {
		return false
	}
	t.elapsed += dt
	if t.elapsed+1e-9 < t.delay {
		return false
	}
	t.running = false
	return true
}

func (t *HandoffTimer) Cancel() {
	if t.running {
		t.cancelled = true
	}
	t.running = false
}

// Stop ends the timer without marking it cancelled.
func (t *HandoffTimer) Stop() {
	t.running = false
}

func (t *HandoffTimer) Running() bool      { return t.running }
func (t *HandoffTimer) Cancelled() bool    { return t.cancelled }
func (t *HandoffTimer) Elapsed() float64   { return t.elapsed }
func (t *HandoffTimer) Remaining() float64 { return max(0, t.delay-t.elapsed) }
