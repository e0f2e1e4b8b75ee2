// Package flow animates particles travelling along the edges of a rendered
// cost graph.
//
// The animator owns no drawing surface. A [Host] resolves edge endpoints to
// screen coordinates, redraws on request and runs post-draw callbacks, and a
// [Scheduler] delivers frame callbacks. Both are driven from the host's single
// draw loop, so the animator needs no locking.
//
// Each edge carries a fixed number of particles. Every frame a particle
// advances by its speed and wraps back to the start once its progress reaches
// 1. During the post-draw callback each particle is painted as a filled
// circle interpolated between the current endpoints of its edge, so particles
// follow nodes that move.
//
//	a := flow.Attach(host, sched, g)
//	defer a.Detach()
package flow

import (
	"math/rand/v2"

	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/observability"
)

// Painter draws onto the host's surface during a post-draw callback.
type Painter interface {
	FillCircle(center graph.Point, radius float64)
}

// Host is a rendered graph view.
type Host interface {
	// EdgeEndpoints returns the current screen positions of an edge's
	// endpoints. ok is false when the edge or either endpoint is not shown.
	EdgeEndpoints(edgeID string) (from, to graph.Point, ok bool)

	// Redraw requests a repaint. Post-draw callbacks run as part of it.
	Redraw()

	// OnAfterDraw registers fn to run after each draw and returns a function
	// that unregisters it.
	OnAfterDraw(fn func(Painter)) (remove func())
}

// Scheduler delivers a callback before the next frame.
type Scheduler interface {
	// RequestFrame schedules fn once and returns a function that cancels it.
	RequestFrame(fn func()) (cancel func())
}

// State is the lifecycle state of an [Animator].
type State uint8

const (
	Detached State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "detached"
}

// Particle is a point moving along one edge. Progress is in [0, 1).
type Particle struct {
	EdgeID   string
	Progress float64
	Speed    float64
}

// Animator runs particles over a host. Create one with [Attach].
type Animator struct {
	host  Host
	sched Scheduler
	cfg   config

	particles []Particle
	state     State
	frames    uint64

	cancelFrame func()
	removeHook  func()
}

// Attach seeds particles for every edge of g, registers a post-draw callback
// on host and starts the frame loop. A nil or edgeless graph attaches with no
// particles.
func Attach(host Host, sched Scheduler, g *graph.Graph, opts ...Option) *Animator {
	a := &Animator{host: host, sched: sched, cfg: defaultConfig()}
	for _, opt := range opts {
		opt(&a.cfg)
	}
	a.attach(g)
	return a
}

func (a *Animator) attach(g *graph.Graph) {
	a.seed(g)
	a.frames = 0
	a.removeHook = a.host.OnAfterDraw(a.paint)
	a.state = Running
	a.cancelFrame = a.sched.RequestFrame(a.frame)
	observability.Flow().OnAttach(edgeCount(g), len(a.particles))
}

func (a *Animator) seed(g *graph.Graph) {
	a.particles = nil
	if g == nil {
		return
	}
	a.particles = make([]Particle, 0, len(g.Edges)*a.cfg.perEdge)
	for _, e := range g.Edges {
		for range a.cfg.perEdge {
			a.particles = append(a.particles, Particle{
				EdgeID:   e.ID,
				Progress: a.cfg.random(),
				Speed:    a.cfg.minSpeed + a.cfg.random()*(a.cfg.maxSpeed-a.cfg.minSpeed),
			})
		}
	}
}

func (a *Animator) frame() {
	if a.state != Running {
		return
	}
	a.frames++
	a.Step()
	a.host.Redraw()
	if a.state == Running {
		a.cancelFrame = a.sched.RequestFrame(a.frame)
	}
}

// Step advances every particle by its speed, wrapping to 0 at 1.
func (a *Animator) Step() {
	for i := range a.particles {
		p := &a.particles[i]
		p.Progress += p.Speed
		if p.Progress >= 1 {
			p.Progress = 0
		}
	}
}

func (a *Animator) paint(p Painter) {
	if a.state != Running {
		return
	}
	for _, pt := range a.particles {
		from, to, ok := a.host.EdgeEndpoints(pt.EdgeID)
		if !ok {
			continue
		}
		p.FillCircle(from.Lerp(to, pt.Progress), a.cfg.radius)
	}
}

// Detach stops the frame loop, removes the post-draw callback and drops all
// particles. It is safe to call more than once.
func (a *Animator) Detach() {
	if a.state == Detached {
		return
	}
	a.state = Detached
	if a.cancelFrame != nil {
		a.cancelFrame()
		a.cancelFrame = nil
	}
	if a.removeHook != nil {
		a.removeHook()
		a.removeHook = nil
	}
	n := len(a.particles)
	a.particles = nil
	observability.Flow().OnDetach(n, a.frames)
}

// Reattach replaces the animated graph: it detaches and attaches again with
// fresh particles for g.
func (a *Animator) Reattach(g *graph.Graph) {
	a.Detach()
	a.attach(g)
}

// State reports whether the animator is running.
func (a *Animator) State() State { return a.state }

// Frames returns the number of frames run since the last attach.
func (a *Animator) Frames() uint64 { return a.frames }

// Particles returns a copy of the current particles.
func (a *Animator) Particles() []Particle {
	return append([]Particle(nil), a.particles...)
}

func edgeCount(g *graph.Graph) int {
	if g == nil {
		return 0
	}
	return len(g.Edges)
}

// =============================================================================
// Options
// =============================================================================

// Defaults for particle seeding and drawing.
const (
	DefaultParticlesPerEdge = 3
	DefaultMinSpeed         = 0.002
	DefaultMaxSpeed         = 0.004
	DefaultRadius           = 5
)

type config struct {
	perEdge  int
	minSpeed float64
	maxSpeed float64
	radius   float64
	random   func() float64
}

func defaultConfig() config {
	return config{
		perEdge:  DefaultParticlesPerEdge,
		minSpeed: DefaultMinSpeed,
		maxSpeed: DefaultMaxSpeed,
		radius:   DefaultRadius,
		random:   rand.Float64,
	}
}

// Option configures an [Animator].
type Option func(*config)

// WithParticlesPerEdge sets how many particles each edge carries. Values
// below 1 are ignored.
func WithParticlesPerEdge(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.perEdge = n
		}
	}
}

// WithSpeed sets the range particle speeds are drawn from, in progress per
// frame. Invalid ranges are ignored.
func WithSpeed(lo, hi float64) Option {
	return func(c *config) {
		if lo > 0 && hi >= lo {
			c.minSpeed, c.maxSpeed = lo, hi
		}
	}
}

// WithRadius sets the painted circle radius.
func WithRadius(r float64) Option {
	return func(c *config) {
		if r > 0 {
			c.radius = r
		}
	}
}

// WithRand seeds particles from r instead of the global source.
func WithRand(r *rand.Rand) Option {
	return func(c *config) {
		if r != nil {
			c.random = r.Float64
		}
	}
}
