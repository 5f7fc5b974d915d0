package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/sdfplay/compiler"
	"github.com/urfave/cli"
)

// buildTarget returns the --target flag or the configured target.
func buildTarget(ctx *cli.Context, configured string) (compiler.Target, error) {
	if t := ctx.String("target"); t != "" {
		return compiler.ParseTarget(t)
	}
	return compiler.ParseTarget(configured)
}

func buildScene(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	target, err := buildTarget(ctx, cfg.Build.Target)
	if err != nil {
		return err
	}
	src := sourceArg(ctx, cfg)

	start := time.Now()
	path, err := newBuilder(cfg).Build(context.Background(), src, target)
	if err != nil {
		return err
	}
	words, err := compiler.ReadSPIRV(path)
	if err != nil {
		return err
	}
	art := compiler.NewArtifact(src, words)
	art.Path = path
	art.Target = target
	art.Duration = time.Since(start)
	if err := art.WriteManifest(); err != nil {
		return err
	}
	fmt.Printf("%s: %d bytes (%s, %s)\n", path, art.Size(), target, art.Duration.Round(time.Millisecond))
	return nil
}
