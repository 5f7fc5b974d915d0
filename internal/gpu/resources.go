package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sdfplay"
	"github.com/gogpu/sdfplay/compiler"
	"github.com/gogpu/sdfplay/internal/shader"
	"github.com/gogpu/wgpu/hal"
)

// resourceSet is every GPU object needed to draw one artifact at one size.
// Sets are built whole and destroyed whole; nothing in a set is mutated
// after build except the uniform buffer contents.
type resourceSet struct {
	device hal.Device

	shader     hal.ShaderModule
	layout     hal.BindGroupLayout
	uniform    hal.Buffer
	bindGroup  hal.BindGroup
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	texture    hal.Texture
	view       hal.TextureView

	format        gputypes.TextureFormat
	width, height uint32
}

// allocErr wraps a HAL failure as a resource allocation error.
func allocErr(what string, err error) error {
	return fmt.Errorf("%w: create %s: %w", sdfplay.ErrResourceAllocation, what, err)
}

// buildResourceSet creates a complete set for art at w x h. On failure
// everything created so far is destroyed before returning.
func buildResourceSet(device hal.Device, format gputypes.TextureFormat, w, h uint32, art *compiler.Artifact) (*resourceSet, error) {
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: %dx%d", sdfplay.ErrInvalidSize, w, h)
	}
	if art == nil {
		return nil, fmt.Errorf("%w: no artifact", sdfplay.ErrResourceAllocation)
	}
	if err := compiler.CheckWords(art.SPIRV); err != nil {
		return nil, fmt.Errorf("%w: artifact %s: %w", sdfplay.ErrResourceAllocation, art.ID, err)
	}

	s := &resourceSet{device: device, format: format, width: w, height: h}
	if err := s.build(art); err != nil {
		s.destroy()
		return nil, err
	}
	return s, nil
}

func (s *resourceSet) build(art *compiler.Artifact) error {
	var err error

	s.shader, err = s.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "scene_shader",
		Source: hal.ShaderSource{SPIRV: art.SPIRV},
	})
	if err != nil {
		return allocErr("shader module", err)
	}

	s.layout, err = s.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "scene_params_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return allocErr("bind group layout", err)
	}

	// Params is 12 bytes; uniform bindings are sized in 16-byte units.
	s.uniform, err = s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "scene_params",
		Size:  sdfplay.UniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return allocErr("uniform buffer", err)
	}

	s.bindGroup, err = s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "scene_params_bind",
		Layout: s.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: s.uniform.NativeHandle(), Offset: 0, Size: sdfplay.UniformSize,
			}},
		},
	})
	if err != nil {
		return allocErr("bind group", err)
	}

	s.pipeLayout, err = s.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "scene_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{s.layout},
	})
	if err != nil {
		return allocErr("pipeline layout", err)
	}

	s.pipeline, err = s.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "scene_pipeline",
		Layout: s.pipeLayout,
		Vertex: hal.VertexState{
			Module:     s.shader,
			EntryPoint: shader.VertexEntryPoint,
		},
		Fragment: &hal.FragmentState{
			Module:     s.shader,
			EntryPoint: shader.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{Format: s.format, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return allocErr("render pipeline", err)
	}

	s.texture, err = s.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "scene_output",
		Size:          hal.Extent3D{Width: s.width, Height: s.height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        s.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return allocErr("output texture", err)
	}

	s.view, err = s.device.CreateTextureView(s.texture, &hal.TextureViewDescriptor{
		Label:         "scene_output_view",
		Format:        s.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return allocErr("output view", err)
	}

	slogger().Debug("gpu: resource set built",
		"artifact", art.ID, "width", s.width, "height", s.height,
		"format", s.format, "uniform_bytes", sdfplay.UniformSize)
	return nil
}

// destroy releases the set in reverse creation order. Safe to call on a
// partially built set and more than once.
func (s *resourceSet) destroy() {
	if s == nil || s.device == nil {
		return
	}
	if s.view != nil {
		s.device.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.texture != nil {
		s.device.DestroyTexture(s.texture)
		s.texture = nil
	}
	if s.pipeline != nil {
		s.device.DestroyRenderPipeline(s.pipeline)
		s.pipeline = nil
	}
	if s.pipeLayout != nil {
		s.device.DestroyPipelineLayout(s.pipeLayout)
		s.pipeLayout = nil
	}
	if s.bindGroup != nil {
		s.device.DestroyBindGroup(s.bindGroup)
		s.bindGroup = nil
	}
	if s.uniform != nil {
		s.device.DestroyBuffer(s.uniform)
		s.uniform = nil
	}
	if s.layout != nil {
		s.device.DestroyBindGroupLayout(s.layout)
		s.layout = nil
	}
	if s.shader != nil {
		s.device.DestroyShaderModule(s.shader)
		s.shader = nil
	}
}
