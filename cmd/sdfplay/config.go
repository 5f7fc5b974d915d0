package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/gogpu/sdfplay"
	"github.com/gogpu/sdfplay/compiler"
	"github.com/gogpu/sdfplay/internal/shader"
	"github.com/urfave/cli"
)

const defaultConfigFile = "sdfplay.yaml"

// setup loads the configuration and installs the logger. Every command
// starts here.
func setup(ctx *cli.Context) (*sdfplay.Config, error) {
	cfg, err := loadConfig(ctx.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	setupLogging(ctx, cfg.Log.Level)
	return cfg, nil
}

// loadConfig reads path, or ./sdfplay.yaml when path is empty and the file
// exists, or falls back to defaults.
func loadConfig(path string) (*sdfplay.Config, error) {
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); errors.Is(err, fs.ErrNotExist) {
			cfg := sdfplay.DefaultConfig()
			return &cfg, nil
		}
		path = defaultConfigFile
	}
	return sdfplay.LoadConfig(path)
}

// shaderOptions parameterizes the prelude from the camera settings.
func shaderOptions(cfg *sdfplay.Config) shader.Options {
	opts := shader.DefaultOptions()
	opts.Camera = cfg.Camera.Origin
	opts.Sun = cfg.Camera.Sun
	return opts
}

// newBuilder returns the builder selected by build.kind.
func newBuilder(cfg *sdfplay.Config) compiler.Builder {
	if cfg.Build.Kind == sdfplay.BuilderCommand {
		return &compiler.CommandBuilder{
			Command: cfg.Build.Command,
			Args:    cfg.Build.Args,
			OutDir:  cfg.Build.OutDir,
		}
	}
	return &compiler.NagaBuilder{
		OutDir: cfg.Build.OutDir,
		Shader: shaderOptions(cfg),
		Debug:  cfg.Build.Debug,
	}
}

// sourceArg returns the first positional argument or the configured source.
func sourceArg(ctx *cli.Context, cfg *sdfplay.Config) string {
	if ctx.NArg() > 0 {
		return ctx.Args().First()
	}
	return cfg.Source
}
