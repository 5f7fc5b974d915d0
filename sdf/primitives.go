package sdf

import "github.com/chewxy/math32"

// Sphere returns the signed distance from p to a sphere of radius r
// centred at the origin.
func Sphere(p Vec3, r float32) float32 {
	return p.Length() - r
}

// Box returns the signed distance from p to an axis-aligned box centred at
// the origin with half extents b.
func Box(p Vec3, b Vec3) float32 {
	q := p.Abs().Sub(b)
	return q.MaxScalar(0).Length() + math32.Min(q.MaxComp(), 0)
}

// Union combines two distances into their union.
func Union(a, b float32) float32 { return math32.Min(a, b) }

// Intersection keeps the region inside both shapes.
func Intersection(a, b float32) float32 { return math32.Max(a, b) }

// Subtraction removes shape b from shape a.
func Subtraction(a, b float32) float32 { return math32.Max(a, -b) }

// Repeat folds p into a cell of size s centred at the origin, repeating a
// shape infinitely along every axis.
func Repeat(p Vec3, s Vec3) Vec3 {
	return Vec3{
		X: p.X - s.X*math32.Round(p.X/s.X),
		Y: p.Y - s.Y*math32.Round(p.Y/s.Y),
		Z: p.Z - s.Z*math32.Round(p.Z/s.Z),
	}
}

// Ocean wave-field constants.
const (
	oceanIterations  = 15
	oceanFreqGrowth  = 1.18
	oceanWeightDecay = 0.82
	oceanSeedStep    = 1234.4321
	oceanDrag        = 0.25
	oceanTimeScale   = 2
	oceanOffset      = 128
)

// Ocean returns the approximate distance from p to an animated ocean
// surface: p.Y minus a weighted average of directional exponential-sine
// waves. Each wave pushes the sample point along its direction, which
// gives the crests their sharp shape.
//
// This is not an exact SDF; March tolerates it because steps are bounded
// by the far plane.
func Ocean(t float32, p Vec3) float32 {
	t *= oceanTimeScale
	x := p.X + oceanOffset
	z := p.Z + oceanOffset

	var (
		seed, sum, wsum float32
		freq, weight    float32 = 1, 1
	)
	for range oceanIterations {
		dx, dz := math32.Cos(seed), math32.Sin(seed)
		wave := (dx*x+dz*z)*freq + t
		h := math32.Exp(math32.Sin(wave) - 1)
		dh := -h * math32.Cos(wave)

		sum += h * weight
		wsum += weight

		x += oceanDrag * dh * dx * weight
		z += oceanDrag * dh * dz * weight

		freq *= oceanFreqGrowth
		weight *= oceanWeightDecay
		seed += oceanSeedStep
	}

	if wsum == 0 {
		return p.Y
	}
	return p.Y - sum/wsum
}
