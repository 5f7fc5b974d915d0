package sdfplay

import (
	"bytes"
	"math"
	"testing"
)

func TestParamsBytesLayout(t *testing.T) {
	p := Params{Width: 700, Height: 500, Time: 1.5}
	got := p.Bytes()
	if len(got) != ParamsSize {
		t.Fatalf("len = %d, want %d", len(got), ParamsSize)
	}

	bits := math.Float32bits(1.5)
	want := []byte{
		0xBC, 0x02, 0x00, 0x00, // 700
		0xF4, 0x01, 0x00, 0x00, // 500
		byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24),
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Bytes() = % x, want % x", got, want)
	}
}

func TestParamsZeroValue(t *testing.T) {
	got := Params{}.Bytes()
	if !bytes.Equal(got, make([]byte, ParamsSize)) {
		t.Errorf("zero Params should encode to zeros, got % x", got)
	}
}

func TestParamsFromBytes(t *testing.T) {
	tests := []struct {
		name string
		in   Params
	}{
		{"zero", Params{}},
		{"window", Params{Width: 700, Height: 700, Time: 12.25}},
		{"negative time", Params{Width: 1, Height: 1, Time: -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParamsFromBytes(tt.in.Bytes())
			if !ok {
				t.Fatal("ParamsFromBytes reported short buffer")
			}
			if got != tt.in {
				t.Errorf("got %+v, want %+v", got, tt.in)
			}
		})
	}

	if _, ok := ParamsFromBytes(make([]byte, ParamsSize-1)); ok {
		t.Error("short buffer should not decode")
	}
}

func TestUniformSizeFitsParams(t *testing.T) {
	if UniformSize < ParamsSize || UniformSize%16 != 0 {
		t.Errorf("UniformSize %d must be a multiple of 16 holding %d bytes", UniformSize, ParamsSize)
	}
}
