package field

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

// State is the lifecycle state of a Session.
type State int

const (
	// Inactive: no nodes allocated, no frame scheduled.
	Inactive State = iota
	// Running: nodes allocated, frame loop scheduled.
	Running
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

type options struct {
	clock    Clock
	fps      int
	viewport *Viewport
	rng      *rand.Rand
	style    Style
	log      *zap.SugaredLogger
	hook     func(tick uint64)
}

// Option customizes Start.
type Option func(*options)

// WithClock replaces the default ticker clock.
func WithClock(c Clock) Option { return func(o *options) { o.clock = c } }

// WithFPS sets the rate of the default ticker clock.
func WithFPS(fps int) Option { return func(o *options) { o.fps = fps } }

// WithViewport makes the session follow the viewport's size.
func WithViewport(v *Viewport) Option { return func(o *options) { o.viewport = v } }

// WithRand seeds node placement.
func WithRand(rng *rand.Rand) Option { return func(o *options) { o.rng = rng } }

func WithStyle(st Style) Option { return func(o *options) { o.style = st } }

func WithLogger(l *zap.SugaredLogger) Option { return func(o *options) { o.log = l } }

// WithFrameHook registers fn to run on the session goroutine after every
// tick. fn must not call Stop.
func WithFrameHook(fn func(tick uint64)) Option { return func(o *options) { o.hook = fn } }

// Session is one mounted backdrop: a field, the surface it draws on and the
// loop that ticks it.
type Session struct {
	id      string
	log     *zap.SugaredLogger
	surface Surface
	style   Style
	clock   Clock
	hook    func(tick uint64)

	unsubscribe func()
	cancel      context.CancelFunc
	done        chan struct{}
	stopOnce    sync.Once
	ticks       atomic.Uint64

	mu      sync.Mutex
	field   *Field
	state   State
	pending *[2]int
}

// Start mounts a field on surface and begins ticking it. If the surface is
// missing or has no area the returned session is Inactive and does nothing;
// that is not an error. Only an invalid cfg is reported.
func Start(surface Surface, cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{style: DefaultStyle(), log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		id:      uuid.NewString(),
		surface: surface,
		style:   o.style,
		hook:    o.hook,
		done:    make(chan struct{}),
		state:   Inactive,
	}
	s.log = o.log.With("session_id", s.id)

	if surface == nil {
		s.log.Debugw("no surface, backdrop not started")
		close(s.done)
		return s, nil
	}
	if o.viewport != nil {
		if vw, vh := o.viewport.Size(); vw > 0 && vh > 0 {
			surface.Resize(vw, vh)
		}
	}
	w, h := surface.Size()
	if w <= 0 || h <= 0 {
		s.log.Debugw("surface has no area, backdrop not started", "width", w, "height", h)
		close(s.done)
		return s, nil
	}

	f, err := New(float64(w), float64(h), cfg, o.rng)
	if err != nil {
		return nil, err
	}
	s.field = f

	s.clock = o.clock
	if s.clock == nil {
		s.clock = NewTickerClock(o.fps)
	}
	if o.viewport != nil {
		s.unsubscribe = o.viewport.Subscribe(s.queueResize)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state = Running
	go s.loop(ctx)

	s.log.Debugw("backdrop started", "width", w, "height", h, "count", cfg.NodeCount)
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ticks returns the number of completed frames.
func (s *Session) Ticks() uint64 { return s.ticks.Load() }

// Done is closed once the frame loop has exited, or immediately for a
// session that never started.
func (s *Session) Done() <-chan struct{} { return s.done }

// Snapshot copies the current node positions. It returns nil once the
// session is inactive.
func (s *Session) Snapshot() []r2.Vec {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.field == nil {
		return nil
	}
	out := make([]r2.Vec, len(s.field.nodes))
	for i, n := range s.field.nodes {
		out[i] = n.Pos
	}
	return out
}

// Inspect runs fn with the field while no tick can run. fn must not keep
// the pointer. It is a no-op on an inactive session.
func (s *Session) Inspect(fn func(f *Field)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.field != nil {
		fn(s.field)
	}
}

// Stop cancels the next frame, waits for the loop to exit, detaches from the
// viewport and releases the nodes. It is safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		<-s.done
		s.clock.Stop()
		if s.unsubscribe != nil {
			s.unsubscribe()
		}

		s.mu.Lock()
		s.field = nil
		s.pending = nil
		s.state = Inactive
		s.mu.Unlock()

		s.log.Debugw("backdrop stopped", "ticks", s.ticks.Load())
	})
}

func (s *Session) queueResize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	s.mu.Lock()
	s.pending = &[2]int{w, h}
	s.mu.Unlock()
}

func (s *Session) loop(ctx context.Context) {
	defer close(s.done)

	s.tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.C():
			if ctx.Err() != nil {
				return
			}
			s.tick()
		}
	}
}

func (s *Session) tick() {
	s.mu.Lock()
	if s.pending != nil {
		s.surface.Resize(s.pending[0], s.pending[1])
		s.pending = nil
	}
	w, h := s.surface.Size()
	s.field.Step(float64(w), float64(h))
	s.field.Draw(s.surface, s.style)
	s.mu.Unlock()

	if p, ok := s.surface.(Presenter); ok {
		p.Present()
	}
	n := s.ticks.Add(1)
	if s.hook != nil {
		s.hook(n)
	}
}
