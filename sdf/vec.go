package sdf

import "github.com/chewxy/math32"

// Vec3 is a 3D vector in float32, matching WGSL vec3<f32>.
type Vec3 struct {
	X, Y, Z float32
}

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Miss is the March result for a ray that hit nothing. Every component is
// +Inf, so it never equals a finite hit point.
var Miss = Vec3{X: math32.Inf(1), Y: math32.Inf(1), Z: math32.Inf(1)}

// IsMiss reports whether v is the Miss sentinel.
func (v Vec3) IsMiss() bool {
	return math32.IsInf(v.X, 1) && math32.IsInf(v.Y, 1) && math32.IsInf(v.Z, 1)
}

// Add returns the sum of two vectors.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Mul returns the vector scaled by a scalar.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Neg returns the negation of the vector.
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(w Vec3) float32 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the Euclidean length of the vector.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalize returns a unit vector in the same direction.
// The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Mul(1 / l)
}

// Abs returns the component-wise absolute value.
func (v Vec3) Abs() Vec3 {
	return Vec3{X: math32.Abs(v.X), Y: math32.Abs(v.Y), Z: math32.Abs(v.Z)}
}

// MaxScalar returns the component-wise maximum of v and s.
func (v Vec3) MaxScalar(s float32) Vec3 {
	return Vec3{X: math32.Max(v.X, s), Y: math32.Max(v.Y, s), Z: math32.Max(v.Z, s)}
}

// MaxComp returns the largest component.
func (v Vec3) MaxComp() float32 {
	return math32.Max(v.X, math32.Max(v.Y, v.Z))
}
