package sdf

import (
	"errors"
	"fmt"
	"sort"

	"github.com/chewxy/math32"
)

// ErrUnknownScene is returned by Lookup for an unregistered scene name.
var ErrUnknownScene = errors.New("sdf: unknown scene")

// Scene maps a time in seconds and a point to the signed distance to the
// nearest surface.
type Scene func(t float32, p Vec3) float32

// oceanBound is the radius outside of which the ocean scene skips the
// wave field entirely.
const oceanBound = 15

// SphereScene is a sphere of radius 5.
func SphereScene(_ float32, p Vec3) float32 {
	return Sphere(p, 5)
}

// BoxScene is a cube with half extents 3.
func BoxScene(_ float32, p Vec3) float32 {
	return Box(p, V3(3, 3, 3))
}

// PulseScene intersects a breathing sphere with a cube.
func PulseScene(t float32, p Vec3) float32 {
	a := Sphere(p, 4+math32.Sin(t*3))
	b := Box(p, V3(3, 3, 3))
	return Intersection(a, b)
}

// OceanScene is an ocean clipped to a sphere of radius 7.
func OceanScene(t float32, p Vec3) float32 {
	if p.Length() > oceanBound {
		return math32.MaxFloat32
	}
	return Intersection(Ocean(t, p), Sphere(p, 7))
}

// UnitSphere is a sphere of radius 1 at the origin.
func UnitSphere(_ float32, p Vec3) float32 {
	return Sphere(p, 1)
}

// DefaultScene is the name of the scene shown when none is chosen.
const DefaultScene = "ocean"

// Scenes holds the built-in scenes by name.
var Scenes = map[string]Scene{
	"sphere": SphereScene,
	"box":    BoxScene,
	"pulse":  PulseScene,
	"ocean":  OceanScene,
	"unit":   UnitSphere,
}

// Lookup returns the built-in scene registered under name.
func Lookup(name string) (Scene, error) {
	s, ok := Scenes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return s, nil
}

// SceneNames returns the registered scene names in sorted order.
func SceneNames() []string {
	names := make([]string, 0, len(Scenes))
	for name := range Scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
