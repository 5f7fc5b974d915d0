package sdfplay

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Builder kinds accepted in Config.Build.Kind.
const (
	BuilderNaga    = "naga"
	BuilderCommand = "command"
)

// Config is the complete sdfplay configuration, usually read from
// sdfplay.yaml next to the scene source.
type Config struct {
	Source string       `yaml:"source"` // scene description watched for changes
	Build  BuildConfig  `yaml:"build"`
	Window WindowConfig `yaml:"window"`
	Camera CameraConfig `yaml:"camera"`
	GPU    GPUConfig    `yaml:"gpu"`
	Log    LogConfig    `yaml:"log"`
}

// BuildConfig controls the hot-reload supervisor and the build step.
type BuildConfig struct {
	Kind     string        `yaml:"kind"`    // naga or command
	OutDir   string        `yaml:"out_dir"` // where artifacts are written
	Target   string        `yaml:"target"`  // e.g. vulkan1.1, spirv1.3
	Interval time.Duration `yaml:"interval"`
	Command  string        `yaml:"command,omitempty"`
	Args     []string      `yaml:"args,omitempty"`
	Debug    bool          `yaml:"debug"`
}

// WindowConfig describes the output surface.
type WindowConfig struct {
	Width  uint32  `yaml:"width"`
	Height uint32  `yaml:"height"`
	FPS    float64 `yaml:"fps"`
}

// CameraConfig holds the fixed pinhole camera and light.
type CameraConfig struct {
	Origin [3]float32 `yaml:"origin"`
	Sun    [3]float32 `yaml:"sun"`
}

// GPUConfig selects the adapter.
type GPUConfig struct {
	Adapter string `yaml:"adapter,omitempty"` // substring match on adapter name
}

// LogConfig sets the default log level for the command-line tool.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Source: "scene.wgsl",
		Build: BuildConfig{
			Kind:     BuilderNaga,
			OutDir:   ".sdfplay",
			Target:   "vulkan1.1",
			Interval: 5 * time.Millisecond,
		},
		Window: WindowConfig{Width: 700, Height: 700, FPS: 60},
		Camera: CameraConfig{
			Origin: [3]float32{7, 4, 7},
			Sun:    [3]float32{50, 100, 50},
		},
		Log: LogConfig{Level: "warn"},
	}
}

// LoadConfig reads and validates a YAML configuration file. Missing fields
// take their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks c and fills zero values with defaults.
func (c *Config) Validate() error {
	def := DefaultConfig()

	if c.Source == "" {
		return fmt.Errorf("%w: source is required", ErrInvalidConfig)
	}
	switch c.Build.Kind {
	case "":
		c.Build.Kind = def.Build.Kind
	case BuilderNaga:
	case BuilderCommand:
		if c.Build.Command == "" {
			return fmt.Errorf("%w: build.command is required for the command builder", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown build.kind %q", ErrInvalidConfig, c.Build.Kind)
	}
	if c.Build.OutDir == "" {
		c.Build.OutDir = def.Build.OutDir
	}
	if c.Build.Target == "" {
		c.Build.Target = def.Build.Target
	}
	if c.Build.Interval < 0 {
		return fmt.Errorf("%w: build.interval must be >= 0", ErrInvalidConfig)
	}
	if c.Build.Interval == 0 {
		c.Build.Interval = def.Build.Interval
	}

	if c.Window.Width == 0 {
		c.Window.Width = def.Window.Width
	}
	if c.Window.Height == 0 {
		c.Window.Height = def.Window.Height
	}
	if c.Window.FPS < 0 {
		return fmt.Errorf("%w: window.fps must be >= 0", ErrInvalidConfig)
	}
	if c.Window.FPS == 0 {
		c.Window.FPS = def.Window.FPS
	}

	// The camera looks at the world origin with +Y up; an origin on the Y
	// axis leaves the right vector undefined.
	if o := c.Camera.Origin; o[0] == 0 && o[2] == 0 {
		return fmt.Errorf("%w: camera.origin %v lies on the up axis", ErrInvalidConfig, o)
	}

	switch c.Log.Level {
	case "":
		c.Log.Level = def.Log.Level
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}
