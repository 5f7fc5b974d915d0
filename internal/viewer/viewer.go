// Package viewer is the host loop: it polls the compiler supervisor,
// rebuilds the renderer when a new artifact arrives or the viewport
// changes, and writes per-frame parameters before each draw.
package viewer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sdfplay"
	"github.com/gogpu/sdfplay/compiler"
	"github.com/gogpu/sdfplay/internal/gpu"
	"github.com/gogpu/wgpu/hal"
)

// DefaultFPS is the tick rate used by Run when none is given.
const DefaultFPS = 60

// Poller yields newly built artifacts without blocking.
// *compiler.Supervisor implements it.
type Poller interface {
	Poll() (*compiler.Artifact, bool)
}

// Frame is a renderer bound to one artifact. *gpu.Renderer implements it.
type Frame interface {
	Resize(width, height uint32) error
	Update(p sdfplay.Params) error
	Draw(target hal.TextureView) error
	Readback() (*image.RGBA, error)
	Destroy()
}

// Factory builds a Frame for an artifact at a size.
type Factory interface {
	NewFrame(art *compiler.Artifact, width, height uint32) (Frame, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(art *compiler.Artifact, width, height uint32) (Frame, error)

// NewFrame calls f(art, width, height).
func (f FactoryFunc) NewFrame(art *compiler.Artifact, width, height uint32) (Frame, error) {
	return f(art, width, height)
}

// GPUFactory builds gpu.Renderers on one device.
type GPUFactory struct {
	Device hal.Device
	Queue  hal.Queue
	Format gputypes.TextureFormat
}

// NewFrame implements Factory.
func (f GPUFactory) NewFrame(art *compiler.Artifact, width, height uint32) (Frame, error) {
	r, err := gpu.NewRenderer(f.Device, f.Queue, f.Format, width, height, art)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// SnapshotFunc receives a read-back frame. frame counts drawn frames
// starting at 1.
type SnapshotFunc func(frame uint64, img *image.RGBA) error

// Option configures a Viewer.
type Option func(*Viewer)

// WithSize sets the initial viewport. The default is 700x700.
func WithSize(width, height uint32) Option {
	return func(v *Viewer) { v.width, v.height = width, height }
}

// WithClock replaces time.Now for the scene time.
func WithClock(now func() time.Time) Option {
	return func(v *Viewer) {
		if now != nil {
			v.now = now
		}
	}
}

// WithTarget draws into view instead of the renderer's own texture, e.g. a
// window surface view supplied by the host.
func WithTarget(view hal.TextureView) Option {
	return func(v *Viewer) { v.target = view }
}

// WithSnapshots calls fn with a read-back image every n frames.
func WithSnapshots(n uint64, fn SnapshotFunc) Option {
	return func(v *Viewer) {
		if n > 0 && fn != nil {
			v.snapEvery, v.snap = n, fn
		}
	}
}

// Viewer drives one scene. It is not safe for concurrent use except for
// SetSize, which may be called from a resize callback.
type Viewer struct {
	poller  Poller
	factory Factory
	now     func() time.Time
	start   time.Time
	target  hal.TextureView

	snapEvery uint64
	snap      SnapshotFunc

	resize chan [2]uint32

	width, height uint32
	frame         Frame
	builtW        uint32
	builtH        uint32
	frames        uint64
	reloads       uint64
}

// New returns a viewer that takes artifacts from p and renderers from f.
func New(p Poller, f Factory, opts ...Option) *Viewer {
	v := &Viewer{
		poller:  p,
		factory: f,
		now:     time.Now,
		width:   700,
		height:  700,
		resize:  make(chan [2]uint32, 1),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.start = v.now()
	return v
}

// SetSize records a viewport change; the next Tick applies it. Zero
// dimensions (a minimized window) are ignored.
func (v *Viewer) SetSize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	for {
		select {
		case v.resize <- [2]uint32{width, height}:
			return
		default:
		}
		// Latest size wins.
		select {
		case <-v.resize:
		default:
		}
	}
}

// Tick runs one host iteration: take a new artifact if one is ready,
// apply a pending resize, then Update and Draw. Before the first artifact
// arrives nothing is drawn. Renderer construction errors are returned and
// are fatal to the caller.
func (v *Viewer) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := sdfplay.Logger()

	select {
	case sz := <-v.resize:
		v.width, v.height = sz[0], sz[1]
	default:
	}

	if art, ok := v.poller.Poll(); ok {
		next, err := v.factory.NewFrame(art, v.width, v.height)
		if err != nil {
			return fmt.Errorf("build renderer for %s: %w", art.ID, err)
		}
		if v.frame != nil {
			v.frame.Destroy()
		}
		v.frame = next
		v.builtW, v.builtH = v.width, v.height
		v.reloads++
		log.Info("viewer: scene loaded", "id", art.ID, "source", art.Source, "reloads", v.reloads)
	}

	if v.frame == nil {
		return nil
	}

	if v.builtW != v.width || v.builtH != v.height {
		if err := v.frame.Resize(v.width, v.height); err != nil {
			return fmt.Errorf("resize to %dx%d: %w", v.width, v.height, err)
		}
		v.builtW, v.builtH = v.width, v.height
		log.Debug("viewer: resized", "width", v.width, "height", v.height)
	}

	p := sdfplay.Params{
		Width:  v.width,
		Height: v.height,
		Time:   float32(v.now().Sub(v.start).Seconds()),
	}
	if err := v.frame.Update(p); err != nil {
		return fmt.Errorf("update params: %w", err)
	}
	if err := v.frame.Draw(v.target); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	v.frames++

	if v.snap != nil && v.frames%v.snapEvery == 0 {
		img, err := v.frame.Readback()
		if err != nil {
			return fmt.Errorf("snapshot readback: %w", err)
		}
		if err := v.snap(v.frames, img); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	return nil
}

// Run ticks at fps until ctx is cancelled. A cancelled context is a
// normal shutdown and returns nil.
func (v *Viewer) Run(ctx context.Context, fps float64) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	interval := time.Duration(float64(time.Second) / fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sdfplay.Logger().Info("viewer: running", "fps", fps, "width", v.width, "height", v.height)
	for {
		if err := v.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			sdfplay.Logger().Info("viewer: stopped", "frames", v.frames, "reloads", v.reloads)
			return nil
		case <-ticker.C:
		}
	}
}

// Frames returns the number of frames drawn.
func (v *Viewer) Frames() uint64 { return v.frames }

// Reloads returns the number of artifacts loaded.
func (v *Viewer) Reloads() uint64 { return v.reloads }

// Size returns the current viewport.
func (v *Viewer) Size() (uint32, uint32) { return v.width, v.height }

// Close destroys the current renderer.
func (v *Viewer) Close() {
	if v.frame != nil {
		v.frame.Destroy()
		v.frame = nil
	}
}
