// Package gpu draws compiled scene programs with the gogpu/wgpu HAL.
//
// A [Renderer] owns exactly one resource set built from exactly one
// [compiler.Artifact]:
//
//	shader module -> bind group layout -> uniform buffer -> bind group
//	  -> pipeline layout -> render pipeline -> output texture -> view
//
// Any change of size or artifact builds a complete new set and only then
// destroys the old one, so a failed rebuild leaves the renderer usable.
//
// Each frame the host writes the 12-byte [sdfplay.Params] record with
// [Renderer.Update] and records a single full-screen triangle with
// [Renderer.Draw]. The fragment stage evaluates the scene per pixel.
//
// # Devices
//
// [OpenDevice] picks an adapter from the HAL backends linked into the
// binary (import github.com/gogpu/wgpu/hal/allbackends in main), preferring
// discrete GPUs. [DeviceFromProvider] accepts a device owned by an
// external host through gpucontext.DeviceProvider.
//
// Tests run against github.com/gogpu/wgpu/hal/noop, whose buffers are
// plain host memory.
package gpu
