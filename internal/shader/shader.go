// Package shader holds the embedded WGSL used by sdfplay and assembles a
// complete program from the prelude and a scene body.
//
// A scene source only defines
//
//	fn scene(time: f32, p: vec3<f32>) -> f32
//
// and may call the prelude's SDF library (sd_sphere, sd_box, sd_ocean,
// sd_union, sd_intersection, sd_subtraction, sd_repeat). Sources that
// declare their own @fragment entry point are used unchanged.
package shader

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/gogpu/sdfplay/sdf"
)

//go:embed shaders/prelude.wgsl
var preludeSource string

//go:embed shaders/scenes/*.wgsl
var sceneFS embed.FS

// Entry point names every assembled program exports.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

var (
	// ErrEmptySource is returned when a scene source has no code.
	ErrEmptySource = errors.New("shader: empty scene source")

	// ErrUnknownScene is returned by Scene for an unknown name.
	ErrUnknownScene = errors.New("shader: unknown scene")
)

// Options parameterizes the prelude.
type Options struct {
	MaxSteps uint32
	Epsilon  float32
	FarPlane float32
	Camera   [3]float32
	Sun      [3]float32
}

// DefaultOptions matches the CPU evaluator's defaults.
func DefaultOptions() Options {
	c, s := sdf.DefaultCamera.Origin, sdf.DefaultSun
	return Options{
		MaxSteps: sdf.MaxSteps,
		Epsilon:  sdf.Epsilon,
		FarPlane: sdf.FarPlane,
		Camera:   [3]float32{c.X, c.Y, c.Z},
		Sun:      [3]float32{s.X, s.Y, s.Z},
	}
}

var preludeTemplate = template.Must(template.New("prelude").Funcs(template.FuncMap{
	"vec": func(v [3]float32) string {
		return wgslFloat(v[0]) + ", " + wgslFloat(v[1]) + ", " + wgslFloat(v[2])
	},
}).Parse(preludeSource))

// Prelude renders the prelude for opts.
func Prelude(opts Options) (string, error) {
	var sb strings.Builder
	data := struct {
		MaxSteps          uint32
		Epsilon, FarPlane string
		Camera, Sun       [3]float32
	}{
		MaxSteps: opts.MaxSteps,
		Epsilon:  wgslFloat(opts.Epsilon),
		FarPlane: wgslFloat(opts.FarPlane),
		Camera:   opts.Camera,
		Sun:      opts.Sun,
	}
	if err := preludeTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prelude: %w", err)
	}
	return sb.String(), nil
}

// Assemble returns a complete WGSL program for the scene source.
func Assemble(scene string, opts Options) (string, error) {
	if strings.TrimSpace(scene) == "" {
		return "", ErrEmptySource
	}
	if strings.Contains(scene, "@fragment") {
		return scene, nil
	}
	prelude, err := Prelude(opts)
	if err != nil {
		return "", err
	}
	return prelude + "\n// --- scene ---\n\n" + scene, nil
}

// Scene returns the source of a built-in scene.
func Scene(name string) (string, error) {
	data, err := sceneFS.ReadFile(path.Join("shaders/scenes", name+".wgsl"))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return string(data), nil
}

// SceneNames lists the built-in scenes in sorted order.
func SceneNames() []string {
	entries, _ := sceneFS.ReadDir("shaders/scenes")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".wgsl"))
	}
	sort.Strings(names)
	return names
}

// wgslFloat formats f as a WGSL float literal (always with a decimal point).
func wgslFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
