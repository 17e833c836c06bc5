// Package sequencer runs the photobooth countdown: one shot per delay
// interval until the layout's frame count is reached.
//
// The machine moves Idle → Counting → Done. A single ticker goroutine drives
// Counting; its context is the stop token, checked on every tick and
// cancelled by Close and Reset, which also wait for the goroutine to exit.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nvlled/photocage/lib/camera"
	"github.com/nvlled/photocage/lib/delay"
	"github.com/nvlled/photocage/lib/filter"
	"github.com/nvlled/photocage/lib/logger"
	"github.com/nvlled/photocage/lib/photo"
	"github.com/sirupsen/logrus"
)

var (
	ErrLocked        = errors.New("settings are locked while capturing or once a frame exists")
	ErrInvalidLayout = errors.New("invalid layout")
)

type State int32

const (
	Idle State = iota
	Counting
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Counting:
		return "counting"
	case Done:
		return "done"
	}
	return "invalid-state"
}

// ApplyFunc bakes a filter expression into a raw frame.
type ApplyFunc func(raw photo.Frame, expr string) (photo.Frame, error)

type Status struct {
	Session    string
	State      State
	Countdown  int
	Captured   int
	FrameCount int
	Layout     Layout
	Filter     filter.Option
	Delay      delay.T
	Err        error
}

func (st Status) Capturing() bool { return st.State == Counting }

// Locked reports whether layout, filter and delay may no longer change.
func (st Status) Locked() bool { return st.State == Counting || st.Captured > 0 }

type Sequencer struct {
	source    camera.Source
	apply     ApplyFunc
	interval  time.Duration
	observers []func(Event)
	log       *logrus.Entry

	tickMu sync.Mutex

	mu        sync.Mutex
	session   string
	layout    Layout
	filter    filter.Option
	delay     delay.T
	state     State
	countdown int
	frames    []photo.Frame
	err       error
	cancel    context.CancelFunc
	done      chan struct{}
}

type Option func(*Sequencer)

// WithInterval changes the tick length, one second by default.
func WithInterval(d time.Duration) Option {
	return func(s *Sequencer) { s.interval = d }
}

func WithApply(fn ApplyFunc) Option {
	return func(s *Sequencer) { s.apply = fn }
}

// WithObserver registers a callback. Callbacks run on the ticker goroutine
// and must not call Close or Reset.
func WithObserver(fn func(Event)) Option {
	return func(s *Sequencer) { s.observers = append(s.observers, fn) }
}

func WithLayout(l Layout) Option {
	return func(s *Sequencer) { s.layout = l }
}

func WithFilter(opt filter.Option) Option {
	return func(s *Sequencer) { s.filter = opt }
}

func WithDelay(d delay.T) Option {
	return func(s *Sequencer) { s.delay = d }
}

func New(source camera.Source, opts ...Option) *Sequencer {
	s := &Sequencer{
		source:   source,
		apply:    filter.ApplyEncoded,
		interval: time.Second,
		layout:   DefaultLayout,
		filter:   filter.Normal,
		delay:    delay.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.session = newSessionID()
	s.countdown = s.delay.Seconds()
	s.log = logger.Scope("sequencer").WithField("session", s.session)
	return s
}

func newSessionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func (s *Sequencer) locked() bool {
	return s.state == Counting || len(s.frames) > 0
}

func (s *Sequencer) SetLayout(l Layout) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %v frames", ErrInvalidLayout, l.FrameCount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked() {
		return ErrLocked
	}
	s.layout = l
	return nil
}

func (s *Sequencer) SetFilter(opt filter.Option) error {
	if _, err := filter.Parse(opt.Expression); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked() {
		return ErrLocked
	}
	s.filter = opt
	return nil
}

// SetDelay also resets the displayed countdown to the new value.
func (s *Sequencer) SetDelay(d delay.T) error {
	if !d.Valid() {
		_, err := delay.Parse(int(d))
		return err
	}
	s.mu.Lock()
	if s.locked() {
		s.mu.Unlock()
		return ErrLocked
	}
	s.delay = d
	s.countdown = d.Seconds()
	s.mu.Unlock()

	s.emit(Event{Kind: EventCountdown, Countdown: d.Seconds()})
	return nil
}

// Start begins a capture run. It fails with ErrLocked while counting or once
// a frame exists.
func (s *Sequencer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.locked() {
		s.mu.Unlock()
		return ErrLocked
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.state = Counting
	s.countdown = s.delay.Seconds()
	s.err = nil
	s.cancel = cancel
	s.done = done
	countdown := s.countdown
	fields := logrus.Fields{
		"layout": s.layout.Name,
		"filter": s.filter.Name,
		"delay":  s.delay.Seconds(),
	}
	log := s.log
	s.mu.Unlock()

	log.WithFields(fields).Info("capture started")
	s.emit(Event{Kind: EventCountdown, Countdown: countdown})

	go s.run(runCtx, cancel, done)
	return nil
}

func (s *Sequencer) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer close(done)
	defer cancel()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.stopped()
			return
		case <-ticker.C:
			if s.Tick(ctx) != Counting {
				return
			}
		}
	}
}

// stopped ends a run whose context was cancelled. Frames taken so far are
// kept, as with Close.
func (s *Sequencer) stopped() {
	s.mu.Lock()
	if s.state != Counting {
		s.mu.Unlock()
		return
	}
	s.state = Idle
	s.mu.Unlock()
	s.logEntry().Info("capture stopped")
}

// Tick advances the machine by one interval and returns the resulting state.
// Ticks after ctx is cancelled are ignored.
func (s *Sequencer) Tick(ctx context.Context) State {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	if ctx.Err() != nil || s.state != Counting {
		state := s.state
		s.mu.Unlock()
		return state
	}
	if s.countdown > 0 {
		s.countdown--
		countdown := s.countdown
		s.mu.Unlock()
		s.emit(Event{Kind: EventCountdown, Countdown: countdown})
		return Counting
	}
	expr := s.filter.Expression
	s.mu.Unlock()

	raw, ok := s.source.Snapshot()
	if !ok || raw.IsEmpty() {
		s.logEntry().Debug("camera not ready, retrying next tick")
		return Counting
	}
	shot, err := s.apply(raw, expr)
	return s.commit(ctx, shot, err)
}

func (s *Sequencer) commit(ctx context.Context, shot photo.Frame, err error) State {
	s.mu.Lock()
	if ctx.Err() != nil || s.state != Counting {
		state := s.state
		s.mu.Unlock()
		return state
	}

	if err != nil {
		s.err = err
		s.countdown = s.delay.Seconds()
		countdown := s.countdown
		s.mu.Unlock()

		s.logEntry().WithError(err).Warn("shot discarded, retaking")
		s.emit(Event{Kind: EventFailed, Err: err})
		s.emit(Event{Kind: EventCountdown, Countdown: countdown})
		return Counting
	}

	s.err = nil
	s.frames = append(s.frames, shot)
	index := len(s.frames) - 1
	if len(s.frames) >= s.layout.FrameCount {
		s.state = Done
		s.mu.Unlock()

		s.logEntry().WithField("frames", index+1).Info("capture done")
		s.emit(Event{Kind: EventCaptured, Index: index, Frame: shot})
		s.emit(Event{Kind: EventDone})
		return Done
	}
	s.countdown = s.delay.Seconds()
	countdown := s.countdown
	s.mu.Unlock()

	s.logEntry().WithField("index", index).Debug("frame captured")
	s.emit(Event{Kind: EventCaptured, Index: index, Frame: shot})
	s.emit(Event{Kind: EventCountdown, Countdown: countdown})
	return Counting
}

// Wait blocks until the current run ends or ctx is done.
func (s *Sequencer) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the ticker and waits for it to exit. An interrupted run
// returns to Idle; frames captured so far are kept.
func (s *Sequencer) Close() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	if s.state == Counting {
		s.state = Idle
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Reset discards the session and starts a new one with the same settings.
func (s *Sequencer) Reset() {
	s.Close()

	s.mu.Lock()
	s.frames = nil
	s.state = Idle
	s.err = nil
	s.countdown = s.delay.Seconds()
	s.session = newSessionID()
	s.log = logger.Scope("sequencer").WithField("session", s.session)
	countdown := s.countdown
	s.mu.Unlock()

	s.emit(Event{Kind: EventReset, Countdown: countdown})
}

func (s *Sequencer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Session:    s.session,
		State:      s.state,
		Countdown:  s.countdown,
		Captured:   len(s.frames),
		FrameCount: s.layout.FrameCount,
		Layout:     s.layout,
		Filter:     s.filter,
		Delay:      s.delay,
		Err:        s.err,
	}
}

// Frames returns the captured frames in capture order.
func (s *Sequencer) Frames() []photo.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	frames := make([]photo.Frame, len(s.frames))
	copy(frames, s.frames)
	return frames
}

func (s *Sequencer) emit(ev Event) {
	s.mu.Lock()
	ev.Session = s.session
	s.mu.Unlock()
	for _, fn := range s.observers {
		fn(ev)
	}
}

func (s *Sequencer) logEntry() *logrus.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log
}
