package gpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyRowAlignment is the required BytesPerRow alignment for
// texture-to-buffer copies.
const copyRowAlignment = 256

// paddedRowBytes returns w*4 rounded up to copyRowAlignment.
func paddedRowBytes(w uint32) uint32 {
	row := w * 4
	return (row + copyRowAlignment - 1) / copyRowAlignment * copyRowAlignment
}

// isBGRA reports whether format stores blue in the first byte.
func isBGRA(format gputypes.TextureFormat) bool {
	return format == gputypes.TextureFormatBGRA8Unorm || format == gputypes.TextureFormatBGRA8UnormSrgb
}

// Readback copies the output texture to host memory. It blocks until the
// GPU is idle, so it is meant for snapshots and tests, not for every frame.
func (r *Renderer) Readback() (*image.RGBA, error) {
	if r.set == nil {
		return nil, ErrDestroyed
	}
	w, h := r.set.width, r.set.height
	pitch := paddedRowBytes(w)
	size := uint64(pitch) * uint64(h)

	staging, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "scene_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, allocErr("readback buffer", err)
	}
	defer r.device.DestroyBuffer(staging)

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "scene_readback_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("scene_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	// The output is left in attachment layout by Draw; the copy needs a
	// transfer source layout. No-op on backends without layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.set.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(r.set.texture, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.set.texture, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.set.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmd)

	if _, err := r.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	if err := r.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wait for GPU: %w", err)
	}
	r.reclaim()

	mapping, err := r.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map readback buffer: %w", err)
	}
	defer func() {
		if err := r.device.UnmapBuffer(staging); err != nil {
			slogger().Warn("gpu: unmap readback buffer", "err", err)
		}
	}()

	src := unsafe.Slice((*byte)(mapping.Ptr), size)
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	unpackRows(img.Pix, src, int(w), int(h), int(pitch), isBGRA(r.format))

	slogger().Debug("gpu: readback", "width", w, "height", h, "pitch", pitch)
	return img, nil
}

// unpackRows copies h rows of w pixels from a pitch-aligned source into a
// tightly packed RGBA destination, swapping red and blue when bgra is set.
func unpackRows(dst, src []byte, w, h, pitch int, bgra bool) {
	row := w * 4
	for y := range h {
		d := dst[y*row : (y+1)*row]
		copy(d, src[y*pitch:y*pitch+row])
		if !bgra {
			continue
		}
		for i := 0; i < row; i += 4 {
			d[i], d[i+2] = d[i+2], d[i]
		}
	}
}
