package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sdfplay"
	"github.com/gogpu/sdfplay/compiler"
	"github.com/gogpu/wgpu/hal"
)

// DefaultFormat is the output format used when the caller passes
// gputypes.TextureFormatUndefined, e.g. a headless host.
const DefaultFormat = gputypes.TextureFormatRGBA8Unorm

// ErrDestroyed is returned by operations on a destroyed Renderer.
var ErrDestroyed = errors.New("gpu: renderer destroyed")

// submission is a command buffer the queue may still be executing.
type submission struct {
	index uint64
	cmd   hal.CommandBuffer
}

// Renderer draws one compiled scene. It is not safe for concurrent use;
// the host loop owns it.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat

	art    *compiler.Artifact
	set    *resourceSet
	params sdfplay.Params

	inflight []submission
}

// NewRenderer builds the full resource set for art at width x height.
// Errors wrap sdfplay.ErrResourceAllocation or sdfplay.ErrInvalidSize.
func NewRenderer(device hal.Device, queue hal.Queue, format gputypes.TextureFormat, width, height uint32, art *compiler.Artifact) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: nil device or queue", sdfplay.ErrResourceAllocation)
	}
	if format == gputypes.TextureFormatUndefined {
		format = DefaultFormat
	}
	set, err := buildResourceSet(device, format, width, height, art)
	if err != nil {
		return nil, err
	}
	slogger().Info("gpu: renderer ready", "artifact", art.ID, "width", width, "height", height)
	return &Renderer{
		device: device,
		queue:  queue,
		format: format,
		art:    art,
		set:    set,
		params: sdfplay.Params{Width: width, Height: height},
	}, nil
}

// Resize replaces the resource set with one of the new size built from the
// same artifact. The old set is destroyed only after the new one exists;
// on error the renderer keeps drawing at the old size.
func (r *Renderer) Resize(width, height uint32) error {
	if r.set == nil {
		return ErrDestroyed
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: %dx%d", sdfplay.ErrInvalidSize, width, height)
	}
	if width == r.set.width && height == r.set.height {
		return nil
	}

	next, err := buildResourceSet(r.device, r.format, width, height, r.art)
	if err != nil {
		return err
	}
	r.retire(r.set)
	r.set = next

	// Carry the last parameters over so a Draw before the next Update
	// does not read a zeroed uniform.
	if err := r.writeParams(r.params); err != nil {
		return err
	}
	slogger().Debug("gpu: resized", "width", width, "height", height)
	return nil
}

// Update writes p into the uniform buffer. It must precede the Draw that
// is meant to observe it.
func (r *Renderer) Update(p sdfplay.Params) error {
	if r.set == nil {
		return ErrDestroyed
	}
	r.params = p
	return r.writeParams(p)
}

func (r *Renderer) writeParams(p sdfplay.Params) error {
	if err := r.queue.WriteBuffer(r.set.uniform, 0, p.Bytes()); err != nil {
		return fmt.Errorf("write params: %w", err)
	}
	return nil
}

// Draw records and submits one render pass: clear to opaque black, then a
// single full-screen triangle. A nil target draws into the renderer's own
// output texture.
func (r *Renderer) Draw(target hal.TextureView) error {
	if r.set == nil {
		return ErrDestroyed
	}
	r.reclaim()

	if target == nil {
		target = r.set.view
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "scene_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("scene_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "scene_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       target,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	rp.SetPipeline(r.set.pipeline)
	rp.SetBindGroup(0, r.set.bindGroup, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	index, err := r.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		r.device.FreeCommandBuffer(cmd)
		return fmt.Errorf("submit: %w", err)
	}
	r.inflight = append(r.inflight, submission{index: index, cmd: cmd})
	return nil
}

// reclaim frees command buffers whose submissions have completed.
func (r *Renderer) reclaim() {
	if len(r.inflight) == 0 {
		return
	}
	done := r.queue.PollCompleted()
	keep := r.inflight[:0]
	for _, s := range r.inflight {
		if s.index <= done {
			r.device.FreeCommandBuffer(s.cmd)
			continue
		}
		keep = append(keep, s)
	}
	r.inflight = keep
}

// retire waits for the GPU to finish with old and destroys it.
func (r *Renderer) retire(old *resourceSet) {
	if err := r.device.WaitIdle(); err != nil {
		slogger().Warn("gpu: wait idle before destroy", "err", err)
	}
	r.reclaim()
	old.destroy()
}

// Size returns the current output dimensions.
func (r *Renderer) Size() (uint32, uint32) {
	if r.set == nil {
		return 0, 0
	}
	return r.set.width, r.set.height
}

// Format returns the output texture format.
func (r *Renderer) Format() gputypes.TextureFormat { return r.format }

// Artifact returns the artifact the renderer was built from.
func (r *Renderer) Artifact() *compiler.Artifact { return r.art }

// Params returns the last parameters passed to Update.
func (r *Renderer) Params() sdfplay.Params { return r.params }

// OutputView returns the renderer's own output texture view, or nil after
// Destroy.
func (r *Renderer) OutputView() hal.TextureView {
	if r.set == nil {
		return nil
	}
	return r.set.view
}

// Destroy waits for outstanding work and releases every GPU resource.
// Safe to call multiple times.
func (r *Renderer) Destroy() {
	if r.set == nil {
		return
	}
	if err := r.device.WaitIdle(); err != nil {
		slogger().Warn("gpu: wait idle before destroy", "err", err)
	}
	for _, s := range r.inflight {
		r.device.FreeCommandBuffer(s.cmd)
	}
	r.inflight = nil
	r.set.destroy()
	r.set = nil
}
