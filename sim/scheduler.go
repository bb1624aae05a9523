package sim

// System is updated once per pass with the pass's time step in seconds.
type System interface {
	Update(dt float64)
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(dt float64)

func (f SystemFunc) Update(dt float64) { f(dt) }

type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	copied := append([]System(nil), systems...)
	return &Scheduler{systems: copied}
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

func (s *Scheduler) Update(dt float64) {
	for _, system := range s.systems {
		system.Update(dt)
	}
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
