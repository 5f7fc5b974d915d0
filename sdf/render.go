package sdf

import (
	"context"
	"errors"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidSize is returned by Render for an empty image.
var ErrInvalidSize = errors.New("sdf: invalid image size")

// tileRows is the number of image rows shaded by one task.
const tileRows = 8

// RenderOptions describes one CPU-rendered frame.
type RenderOptions struct {
	Width, Height int
	Time          float32
	Camera        Camera
	Sun           Vec3

	// Workers limits concurrent tiles. Zero means runtime.NumCPU().
	Workers int
}

// DefaultRenderOptions returns options for a w×h frame at t = 0 with the
// default camera and sun.
func DefaultRenderOptions(w, h int) RenderOptions {
	return RenderOptions{
		Width:  w,
		Height: h,
		Camera: DefaultCamera,
		Sun:    DefaultSun,
	}
}

// Render shades every pixel of a frame on the CPU. It evaluates exactly
// what the fragment stage evaluates on the GPU and serves as the reference
// image for tests and for the render command.
//
// Rows are split into tiles rendered concurrently. Cancelling ctx stops the
// frame at the next tile boundary and returns ctx.Err().
func Render(ctx context.Context, scene Scene, opts RenderOptions) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, ErrInvalidSize
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	w, h := float32(opts.Width), float32(opts.Height)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y0 := 0; y0 < opts.Height; y0 += tileRows {
		if gctx.Err() != nil {
			break
		}
		y1 := min(y0+tileRows, opts.Height)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for y := y0; y < y1; y++ {
				for x := 0; x < opts.Width; x++ {
					c := Shade(scene, opts.Time, float32(x)+0.5, float32(y)+0.5, w, h, opts.Camera, opts.Sun)
					img.SetRGBA(x, y, c.RGBA())
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return img, nil
}
