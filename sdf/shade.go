package sdf

import (
	"image/color"

	"github.com/chewxy/math32"
)

// Color is a linear RGBA colour with float32 channels.
type Color struct {
	R, G, B, A float32
}

// Background is the colour of pixels whose ray hits nothing.
var Background = Color{R: 0, G: 0, B: 0, A: 1}

// surfaceColor is the diffuse albedo of every surface.
var surfaceColor = V3(0.02, 0.19, 0.58)

// specularPower sharpens the highlight.
const specularPower = 50

// RGBA converts c to 8-bit colour, clamping each channel to [0, 1].
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: unorm8(c.R),
		G: unorm8(c.G),
		B: unorm8(c.B),
		A: unorm8(c.A),
	}
}

func unorm8(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}

// Camera is a pinhole camera at Origin looking at the world origin.
type Camera struct {
	Origin Vec3
	Up     Vec3
}

// DefaultCamera looks at the origin from (7, 4, 7).
var DefaultCamera = Camera{Origin: V3(7, 4, 7), Up: V3(0, 1, 0)}

// DefaultSun is the position of the only light.
var DefaultSun = V3(50, 100, 50)

// Direction returns the unit view ray through uv, where uv is in [0, 1]²
// with (0, 0) at the top-left of the image.
func (c Camera) Direction(u, v float32) Vec3 {
	f := c.Origin.Normalize().Neg()
	s := f.Cross(c.Up).Normalize()
	up := s.Cross(f)

	x := u*2 - 1
	y := -(v*2 - 1)
	return s.Mul(x).Add(up.Mul(y)).Add(f).Normalize()
}

// Shade computes the colour of the pixel whose centre is (fx, fy) in an
// image of size w×h.
func Shade(scene Scene, t, fx, fy, w, h float32, cam Camera, sun Vec3) Color {
	dir := cam.Direction(fx/w, fy/h)
	hit := March(scene, t, cam.Origin, dir)
	if hit.IsMiss() {
		return Background
	}

	n := Normal(scene, t, hit)
	toSun := sun.Sub(hit).Normalize()
	cosine := clamp01(n.Dot(toSun))

	diffuse := surfaceColor.Mul(cosine)
	specular := math32.Pow(cosine, specularPower)
	return Color{
		R: diffuse.X + specular,
		G: diffuse.Y + specular,
		B: diffuse.Z + specular,
		A: 1,
	}
}
