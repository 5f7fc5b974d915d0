package gpu

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sdfplay"
	"github.com/gogpu/sdfplay/compiler"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// testArtifact returns an artifact with a minimal valid SPIR-V header.
// The noop backend accepts any module.
func testArtifact() *compiler.Artifact {
	return compiler.NewArtifact("test.wgsl", []uint32{0x07230203, 0x00010300, 0, 1, 0})
}

// readUniform returns the 16 bytes of the uniform buffer. Noop buffers are
// host memory, so mapping a uniform buffer works there.
func readUniform(t *testing.T, device hal.Device, r *Renderer) []byte {
	t.Helper()
	m, err := device.MapBuffer(r.set.uniform, 0, sdfplay.UniformSize)
	if err != nil {
		t.Fatalf("MapBuffer: %v", err)
	}
	defer device.UnmapBuffer(r.set.uniform)
	return append([]byte(nil), unsafeBytes(m.Ptr, sdfplay.UniformSize)...)
}

func TestNewRendererPopulatesResourceSet(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewRenderer(device, queue, gputypes.TextureFormatBGRA8Unorm, 700, 700, testArtifact())
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	defer r.Destroy()

	s := r.set
	for name, v := range map[string]any{
		"shader":     s.shader,
		"layout":     s.layout,
		"uniform":    s.uniform,
		"bindGroup":  s.bindGroup,
		"pipeLayout": s.pipeLayout,
		"pipeline":   s.pipeline,
		"texture":    s.texture,
		"view":       s.view,
	} {
		if v == nil {
			t.Errorf("%s not created", name)
		}
	}
	if w, h := r.Size(); w != 700 || h != 700 {
		t.Errorf("Size() = %dx%d, want 700x700", w, h)
	}
	if r.Format() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format() = %v", r.Format())
	}
	if r.OutputView() == nil {
		t.Error("OutputView() is nil")
	}
}

func TestNewRendererDefaultFormat(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewRenderer(device, queue, gputypes.TextureFormatUndefined, 8, 8, testArtifact())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Destroy()
	if r.Format() != DefaultFormat {
		t.Errorf("Format() = %v, want %v", r.Format(), DefaultFormat)
	}
}

func TestNewRendererErrors(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tests := []struct {
		name string
		w, h uint32
		art  *compiler.Artifact
		want error
	}{
		{"zero width", 0, 10, testArtifact(), sdfplay.ErrInvalidSize},
		{"zero height", 10, 0, testArtifact(), sdfplay.ErrInvalidSize},
		{"nil artifact", 10, 10, nil, sdfplay.ErrResourceAllocation},
		{"bad spirv", 10, 10, compiler.NewArtifact("x", []uint32{1, 2, 3}), sdfplay.ErrResourceAllocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRenderer(device, queue, DefaultFormat, tt.w, tt.h, tt.art)
			if !errors.Is(err, tt.want) {
				t.Fatalf("NewRenderer error = %v, want %v", err, tt.want)
			}
			if r != nil {
				t.Error("NewRenderer returned a renderer with an error")
			}
		})
	}

	if _, err := NewRenderer(nil, nil, DefaultFormat, 1, 1, testArtifact()); !errors.Is(err, sdfplay.ErrResourceAllocation) {
		t.Errorf("nil device error = %v", err)
	}
}

func TestRendererUpdateWritesParams(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewRenderer(device, queue, DefaultFormat, 64, 48, testArtifact())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Destroy()

	for _, p := range []sdfplay.Params{
		{Width: 64, Height: 48, Time: 0},
		{Width: 64, Height: 48, Time: 1.25},
		{Width: 700, Height: 700, Time: 12345.5},
	} {
		if err := r.Update(p); err != nil {
			t.Fatalf("Update: %v", err)
		}
		got, ok := sdfplay.ParamsFromBytes(readUniform(t, device, r))
		if !ok || got != p {
			t.Errorf("uniform holds %+v, want %+v", got, p)
		}
	}
}

func TestRendererResize(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewRenderer(device, queue, DefaultFormat, 700, 700, testArtifact())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Destroy()

	p := sdfplay.Params{Width: 700, Height: 700, Time: 3}
	if err := r.Update(p); err != nil {
		t.Fatal(err)
	}
	old := r.set

	if err := r.Resize(320, 200); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if r.set == old {
		t.Fatal("Resize kept the old resource set")
	}
	if old.pipeline != nil || old.texture != nil {
		t.Error("old resource set not destroyed")
	}
	if w, h := r.Size(); w != 320 || h != 200 {
		t.Errorf("Size() = %dx%d, want 320x200", w, h)
	}
	if err := r.Draw(nil); err != nil {
		t.Fatalf("Draw after Resize: %v", err)
	}
	if got, _ := sdfplay.ParamsFromBytes(readUniform(t, device, r)); got != p {
		t.Errorf("uniform after resize = %+v, want %+v carried over", got, p)
	}

	same := r.set
	if err := r.Resize(320, 200); err != nil {
		t.Fatal(err)
	}
	if r.set != same {
		t.Error("Resize to the current size rebuilt the set")
	}

	if err := r.Resize(0, 200); !errors.Is(err, sdfplay.ErrInvalidSize) {
		t.Errorf("Resize(0, 200) = %v, want ErrInvalidSize", err)
	}
	if w, h := r.Size(); w != 320 || h != 200 {
		t.Errorf("failed Resize changed size to %dx%d", w, h)
	}
}

func TestRendererDrawAndReadback(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewRenderer(device, queue, gputypes.TextureFormatBGRA8Unorm, 100, 30, testArtifact())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Destroy()

	for i := range 5 {
		if err := r.Update(sdfplay.Params{Width: 100, Height: 30, Time: float32(i)}); err != nil {
			t.Fatal(err)
		}
		if err := r.Draw(nil); err != nil {
			t.Fatalf("Draw %d: %v", i, err)
		}
	}
	if n := len(r.inflight); n > 1 {
		t.Errorf("%d command buffers still in flight on a synchronous queue", n)
	}

	img, err := r.Readback()
	if err != nil {
		t.Fatalf("Readback: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 30 {
		t.Errorf("Readback bounds = %v, want 100x30", b)
	}
}

func TestRendererDestroyIdempotent(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewRenderer(device, queue, DefaultFormat, 10, 10, testArtifact())
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Draw(nil); err != nil {
		t.Fatal(err)
	}
	r.Destroy()
	r.Destroy()

	if r.OutputView() != nil {
		t.Error("OutputView after Destroy should be nil")
	}
	if err := r.Draw(nil); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Draw after Destroy = %v, want ErrDestroyed", err)
	}
	if err := r.Update(sdfplay.Params{}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Update after Destroy = %v, want ErrDestroyed", err)
	}
	if _, err := r.Readback(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Readback after Destroy = %v, want ErrDestroyed", err)
	}
}

// countingDevice wraps a device, counts live resource-set objects and
// fails the Nth creation.
type countingDevice struct {
	hal.Device
	failAt  int
	created int
	live    int
}

var errInjected = errors.New("injected failure")

func (d *countingDevice) create() error {
	d.created++
	if d.created == d.failAt {
		return errInjected
	}
	d.live++
	return nil
}

func (d *countingDevice) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	if err := d.create(); err != nil {
		return nil, err
	}
	return d.Device.CreateShaderModule(desc)
}

func (d *countingDevice) DestroyShaderModule(m hal.ShaderModule) { d.live--; d.Device.DestroyShaderModule(m) }

func (d *countingDevice) CreateBindGroupLayout(desc *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	if err := d.create(); err != nil {
		return nil, err
	}
	return d.Device.CreateBindGroupLayout(desc)
}

func (d *countingDevice) DestroyBindGroupLayout(l hal.BindGroupLayout) {
	d.live--
	d.Device.DestroyBindGroupLayout(l)
}

func (d *countingDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	if err := d.create(); err != nil {
		return nil, err
	}
	return d.Device.CreateBuffer(desc)
}

func (d *countingDevice) DestroyBuffer(b hal.Buffer) { d.live--; d.Device.DestroyBuffer(b) }

func (d *countingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	if err := d.create(); err != nil {
		return nil, err
	}
	return d.Device.CreateBindGroup(desc)
}

func (d *countingDevice) DestroyBindGroup(g hal.BindGroup) { d.live--; d.Device.DestroyBindGroup(g) }

func (d *countingDevice) CreatePipelineLayout(desc *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	if err := d.create(); err != nil {
		return nil, err
	}
	return d.Device.CreatePipelineLayout(desc)
}

func (d *countingDevice) DestroyPipelineLayout(l hal.PipelineLayout) {
	d.live--
	d.Device.DestroyPipelineLayout(l)
}

func (d *countingDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	if err := d.create(); err != nil {
		return nil, err
	}
	return d.Device.CreateRenderPipeline(desc)
}

func (d *countingDevice) DestroyRenderPipeline(p hal.RenderPipeline) {
	d.live--
	d.Device.DestroyRenderPipeline(p)
}

func (d *countingDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	if err := d.create(); err != nil {
		return nil, err
	}
	return d.Device.CreateTexture(desc)
}

func (d *countingDevice) DestroyTexture(tex hal.Texture) { d.live--; d.Device.DestroyTexture(tex) }

func (d *countingDevice) CreateTextureView(tex hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	if err := d.create(); err != nil {
		return nil, err
	}
	return d.Device.CreateTextureView(tex, desc)
}

func (d *countingDevice) DestroyTextureView(v hal.TextureView) { d.live--; d.Device.DestroyTextureView(v) }

// resourceSetObjects is the number of HAL objects in one resource set.
const resourceSetObjects = 8

func TestBuildFailureLeaksNothing(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	for step := 1; step <= resourceSetObjects; step++ {
		t.Run(fmt.Sprintf("fail at %d", step), func(t *testing.T) {
			dev := &countingDevice{Device: device, failAt: step}
			r, err := NewRenderer(dev, queue, DefaultFormat, 16, 16, testArtifact())
			if !errors.Is(err, sdfplay.ErrResourceAllocation) || !errors.Is(err, errInjected) {
				t.Fatalf("NewRenderer error = %v, want allocation error wrapping the cause", err)
			}
			if r != nil {
				t.Fatal("renderer returned on failure")
			}
			if dev.live != 0 {
				t.Errorf("%d objects leaked", dev.live)
			}
		})
	}

	dev := &countingDevice{Device: device}
	r, err := NewRenderer(dev, queue, DefaultFormat, 16, 16, testArtifact())
	if err != nil {
		t.Fatal(err)
	}
	if dev.live != resourceSetObjects {
		t.Errorf("live objects = %d, want %d", dev.live, resourceSetObjects)
	}

	// A failed resize keeps the current set intact.
	dev.failAt = dev.created + 3
	if err := r.Resize(32, 32); !errors.Is(err, errInjected) {
		t.Fatalf("Resize error = %v, want injected failure", err)
	}
	if dev.live != resourceSetObjects {
		t.Errorf("after failed resize live = %d, want %d", dev.live, resourceSetObjects)
	}
	if w, _ := r.Size(); w != 16 {
		t.Errorf("failed resize changed width to %d", w)
	}

	r.Destroy()
	if dev.live != 0 {
		t.Errorf("after Destroy live = %d, want 0", dev.live)
	}
}

func TestUnpackRows(t *testing.T) {
	// 2x2 image, pitch 12 bytes (8 data + 4 padding).
	src := []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 0xEE, 0xEE, 0xEE, 0xEE,
		9, 10, 11, 12, 13, 14, 15, 16, 0xEE, 0xEE, 0xEE, 0xEE,
	}
	dst := make([]byte, 16)
	unpackRows(dst, src, 2, 2, 12, false)
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	if string(dst) != string(want) {
		t.Errorf("unpackRows = %v, want %v", dst, want)
	}

	unpackRows(dst, src, 2, 2, 12, true)
	want = []byte{3, 2, 1, 4, 7, 6, 5, 8, 11, 10, 9, 12, 15, 14, 13, 16}
	if string(dst) != string(want) {
		t.Errorf("unpackRows(bgra) = %v, want %v", dst, want)
	}
}

func TestPaddedRowBytes(t *testing.T) {
	tests := map[uint32]uint32{1: 256, 64: 256, 65: 512, 700: 2816}
	for w, want := range tests {
		if got := paddedRowBytes(w); got != want {
			t.Errorf("paddedRowBytes(%d) = %d, want %d", w, got, want)
		}
	}
}
