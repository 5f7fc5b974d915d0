// Package sdfplay is a live-coding viewer for signed distance field scenes.
//
// # Overview
//
// A scene is a WGSL function that returns the signed distance from a point
// to the nearest surface. sdfplay sphere-traces that function once per
// output pixel on the GPU and recompiles the scene whenever its source file
// changes, so edits show up without restarting the viewer.
//
// # Architecture
//
// The module is organized into:
//   - sdf: float32 reference of the scene evaluator (primitives,
//     combinators, March, Normal, Shade) and a parallel CPU renderer
//   - compiler: the hot-reload supervisor. A background goroutine polls the
//     source modification time, builds WGSL to SPIR-V and publishes the
//     newest Artifact through a single-slot mailbox
//   - internal/gpu: the pipeline renderer built over gogpu/wgpu HAL
//   - internal/viewer: the host tick loop that glues the three together
//   - cmd/sdfplay: the command-line front end
//
// This package holds the pieces they share: the per-frame [Params] record,
// [Config], sentinel errors and logger plumbing.
//
// # Logging
//
// sdfplay is silent by default. Call [SetLogger] with a *slog.Logger to see
// build and GPU lifecycle events:
//
//	sdfplay.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
package sdfplay

// Version is the current version of sdfplay.
const Version = "0.3.0"
