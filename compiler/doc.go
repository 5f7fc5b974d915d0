// Package compiler keeps a compiled copy of the scene available to the
// viewer while the scene source is being edited.
//
// A [Supervisor] owns one background goroutine. It polls the modification
// time of the source file and, whenever that time changes, asks a [Builder]
// to produce a SPIR-V binary. Successful builds are published as an
// [Artifact] through a single-slot mailbox: a newer artifact replaces an
// unconsumed older one, and [Supervisor.Poll] never blocks.
//
// A failed build is logged and its modification time is still recorded,
// so a broken edit is not rebuilt until the file changes again.
//
// Two builders are provided: [NagaBuilder] compiles WGSL in-process with
// gogpu/naga, and [CommandBuilder] runs an external toolchain.
package compiler
