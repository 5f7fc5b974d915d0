package sdfplay

import (
	"encoding/binary"
	"math"
)

// ParamsSize is the size in bytes of the encoded Params record.
const ParamsSize = 12

// UniformSize is the allocation size of the uniform buffer holding Params.
// Uniform bindings are sized in multiples of 16 bytes; the last 4 bytes are
// padding and never read by the shader.
const UniformSize = 16

// Params is the per-frame record written to GPU uniform storage before
// each draw. The layout matches the WGSL struct
//
//	struct Params { width: u32, height: u32, time: f32 }
//
// field for field: three 4-byte little-endian values, no padding.
type Params struct {
	Width  uint32
	Height uint32
	Time   float32 // seconds since start
}

// Bytes encodes p into a new 12-byte slice.
func (p Params) Bytes() []byte {
	buf := make([]byte, ParamsSize)
	p.PutBytes(buf)
	return buf
}

// PutBytes encodes p into buf, which must be at least ParamsSize long.
func (p Params) PutBytes(buf []byte) {
	_ = buf[ParamsSize-1]
	binary.LittleEndian.PutUint32(buf[0:4], p.Width)
	binary.LittleEndian.PutUint32(buf[4:8], p.Height)
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(p.Time))
}

// ParamsFromBytes decodes a record produced by Bytes. It reports false if
// buf is shorter than ParamsSize.
func ParamsFromBytes(buf []byte) (Params, bool) {
	if len(buf) < ParamsSize {
		return Params{}, false
	}
	return Params{
		Width:  binary.LittleEndian.Uint32(buf[0:4]),
		Height: binary.LittleEndian.Uint32(buf[4:8]),
		Time:   math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
	}, true
}
