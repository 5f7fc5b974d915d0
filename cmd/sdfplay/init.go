package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gogpu/sdfplay"
	"github.com/gogpu/sdfplay/internal/shader"
	"github.com/urfave/cli"
)

func initProject(ctx *cli.Context) error {
	if _, err := setup(ctx); err != nil {
		return err
	}
	dir := "."
	if ctx.NArg() > 0 {
		dir = ctx.Args().First()
	}
	src, err := shader.Scene(ctx.String("scene"))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	cfg := sdfplay.DefaultConfig()
	scenePath := filepath.Join(dir, cfg.Source)
	cfgPath := filepath.Join(dir, defaultConfigFile)
	force := ctx.Bool("force")
	for _, p := range []string{scenePath, cfgPath} {
		if force {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", p)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	if err := os.WriteFile(scenePath, []byte(src), 0o644); err != nil {
		return err
	}
	if err := cfg.Save(cfgPath); err != nil {
		return err
	}
	fmt.Printf("wrote %s and %s\n", scenePath, cfgPath)
	return nil
}
