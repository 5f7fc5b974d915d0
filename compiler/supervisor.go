package compiler

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/sdfplay"
	"github.com/google/uuid"
)

// DefaultInterval is how long the supervisor idles between checks of an
// unchanged source.
const DefaultInterval = 5 * time.Millisecond

// ErrAlreadyStarted is returned by Start on a running supervisor.
var ErrAlreadyStarted = errors.New("compiler: supervisor already started")

// StatFunc returns the modification time of a file.
type StatFunc func(path string) (time.Time, error)

// statModTime is the default StatFunc.
func statModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithTarget sets the build target. The default is DefaultTarget.
func WithTarget(t Target) Option {
	return func(s *Supervisor) { s.target = t }
}

// WithInterval sets the idle interval between checks. Non-positive values
// are ignored.
func WithInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithStat replaces the modification-time lookup.
func WithStat(fn StatFunc) Option {
	return func(s *Supervisor) {
		if fn != nil {
			s.stat = fn
		}
	}
}

// Stats is a snapshot of supervisor counters.
type Stats struct {
	Attempted uint64 // builds started
	Succeeded uint64 // artifacts published
	Failed    uint64 // builds that returned an error
	Dropped   uint64 // published artifacts replaced before Poll took them
	LastError string
}

// Supervisor watches one scene source and publishes the newest successful
// build. All fields after the configuration block are owned by the
// background goroutine, except the mailbox and the counters.
type Supervisor struct {
	src      string
	builder  Builder
	target   Target
	interval time.Duration
	stat     StatFunc

	box     *mailbox
	started atomic.Bool
	done    chan struct{}

	attempted atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	errMu     sync.Mutex
	lastErr   string

	// loop-private build state
	lastMod     time.Time
	observed    bool
	lastStatErr string
}

// New returns a supervisor for src. It does nothing until Start.
func New(src string, b Builder, opts ...Option) *Supervisor {
	s := &Supervisor{
		src:      src,
		builder:  b,
		target:   DefaultTarget,
		interval: DefaultInterval,
		stat:     statModTime,
		box:      newMailbox(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the background loop and returns immediately. The loop
// runs until ctx is cancelled; pass a process-lifetime context to keep it
// running for as long as the viewer does.
func (s *Supervisor) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go s.run(ctx)
	return nil
}

// Poll returns the newest artifact published since the previous call, or
// false when there is none. It never blocks.
func (s *Supervisor) Poll() (*Artifact, bool) {
	return s.box.poll()
}

// Done is closed when the background loop has exited.
func (s *Supervisor) Done() <-chan struct{} { return s.done }

// Source returns the watched path.
func (s *Supervisor) Source() string { return s.src }

// Stats returns a snapshot of the build counters.
func (s *Supervisor) Stats() Stats {
	s.errMu.Lock()
	lastErr := s.lastErr
	s.errMu.Unlock()
	return Stats{
		Attempted: s.attempted.Load(),
		Succeeded: s.succeeded.Load(),
		Failed:    s.failed.Load(),
		Dropped:   s.box.drops.Load(),
		LastError: lastErr,
	}
}

func (s *Supervisor) run(ctx context.Context) {
	defer close(s.done)

	log := sdfplay.Logger()
	log.Info("compiler: watching scene", "source", s.src, "target", s.target, "interval", s.interval)

	idle := time.NewTicker(s.interval)
	defer idle.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		if s.check(ctx) {
			continue
		}
		select {
		case <-ctx.Done():
			log.Debug("compiler: supervisor stopped", "source", s.src)
			return
		case <-idle.C:
		}
	}
}

// check builds the source if its modification time changed and reports
// whether a build was attempted.
func (s *Supervisor) check(ctx context.Context) bool {
	mod, err := s.stat(s.src)
	if err != nil {
		if msg := err.Error(); msg != s.lastStatErr {
			sdfplay.Logger().Warn("compiler: cannot stat scene", "source", s.src, "err", err)
			s.lastStatErr = msg
		}
		return false
	}
	s.lastStatErr = ""

	if s.observed && mod.Equal(s.lastMod) {
		return false
	}

	s.build(ctx, mod)

	// Recorded even on failure: a broken edit is not retried until the
	// source changes again.
	s.lastMod = mod
	s.observed = true
	return true
}

func (s *Supervisor) build(ctx context.Context, mod time.Time) {
	log := sdfplay.Logger().With("source", s.src)
	s.attempted.Add(1)
	start := time.Now()

	log.Debug("compiler: building scene", "mod_time", mod, "target", s.target)
	art, err := s.buildArtifact(ctx, mod, start)
	if err != nil {
		s.errMu.Lock()
		s.lastErr = err.Error()
		s.errMu.Unlock()
		s.failed.Add(1)
		log.Error("compiler: compilation failed", "err", err)
		return
	}

	if err := art.WriteManifest(); err != nil {
		log.Warn("compiler: manifest not written", "path", art.Path, "err", err)
	}

	// Publish before counting so a caller that sees the counter can Poll.
	if s.box.publish(art) {
		log.Debug("compiler: replaced unconsumed artifact")
	}
	s.succeeded.Add(1)
	log.Info("compiler: artifact published",
		"id", art.ID, "path", art.Path, "bytes", art.Size(), "elapsed", art.Duration)
}

func (s *Supervisor) buildArtifact(ctx context.Context, mod, start time.Time) (*Artifact, error) {
	path, err := s.builder.Build(ctx, s.src, s.target)
	if err != nil {
		return nil, err
	}
	words, err := ReadSPIRV(path)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Artifact{
		ID:       uuid.NewString(),
		Source:   s.src,
		Path:     path,
		Target:   s.target,
		ModTime:  mod,
		BuiltAt:  now,
		Duration: now.Sub(start),
		SPIRV:    words,
	}, nil
}
