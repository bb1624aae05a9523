package sim

// Resetter is anything that takes part in a run and can return to its
// starting state. ResetToInitial must be idempotent.
type Resetter interface {
	ResetToInitial()
}

// ResetGroup resets its members in registration order.
type ResetGroup struct {
	members []Resetter
}

func (g *ResetGroup) Add(r Resetter) {
	if r == nil {
		return
	}
	g.members = append(g.members, r)
}

func (g *ResetGroup) Len() int { return len(g.members) }

func (g *ResetGroup) ResetToInitial() {
	for _, r := range g.members {
		r.ResetToInitial()
	}
}

// ResetFunc adapts a plain function to Resetter.
type ResetFunc func()

func (f ResetFunc) ResetToInitial() { f() }
