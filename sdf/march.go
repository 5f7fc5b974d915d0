package sdf

// Ray-march limits.
const (
	MaxSteps = 64
	Epsilon  = 0.01
	FarPlane = 100

	// normalDelta is the central-difference offset used by Normal.
	normalDelta = 0.001
)

// March sphere-traces scene from origin along dir (expected to be unit
// length). It returns the first sample point closer than Epsilon to a
// surface, or Miss when the ray passes FarPlane or runs out of steps.
func March(scene Scene, t float32, origin, dir Vec3) Vec3 {
	var dist float32
	for range MaxSteps {
		p := origin.Add(dir.Mul(dist))
		step := scene(t, p)
		if step < Epsilon {
			return p
		}
		dist += step
		if dist > FarPlane {
			break
		}
	}
	return Miss
}

// Normal estimates the surface normal at p from the central-difference
// gradient of scene.
func Normal(scene Scene, t float32, p Vec3) Vec3 {
	dx := V3(normalDelta, 0, 0)
	dy := V3(0, normalDelta, 0)
	dz := V3(0, 0, normalDelta)

	return Vec3{
		X: scene(t, p.Add(dx)) - scene(t, p.Sub(dx)),
		Y: scene(t, p.Add(dy)) - scene(t, p.Sub(dy)),
		Z: scene(t, p.Add(dz)) - scene(t, p.Sub(dz)),
	}.Normalize()
}
