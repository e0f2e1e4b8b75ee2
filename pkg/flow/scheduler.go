package flow

// ManualScheduler holds at most one pending frame callback until
// [ManualScheduler.Fire] runs it. Hosts with their own tick source drive the
// animator by calling Fire once per tick.
type ManualScheduler struct {
	pending func()
	gen     uint64
}

// RequestFrame replaces any pending callback with fn.
func (s *ManualScheduler) RequestFrame(fn func()) func() {
	s.gen++
	gen := s.gen
	s.pending = fn
	return func() {
		if s.gen == gen {
			s.pending = nil
		}
	}
}

// Fire runs the pending callback, if any, and reports whether one ran.
func (s *ManualScheduler) Fire() bool {
	fn := s.pending
	s.pending = nil
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending reports whether a callback is waiting.
func (s *ManualScheduler) Pending() bool { return s.pending != nil }
