package main

import (
	"log/slog"
	"os"

	"github.com/gogpu/sdfplay"
	"github.com/urfave/cli"
)

// setupLogging installs a text logger on stderr. The level comes from the
// configuration; -v and -vv raise it.
func setupLogging(ctx *cli.Context, level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	if ctx.GlobalBool("v") {
		lvl = slog.LevelInfo
	}
	if ctx.GlobalBool("vv") {
		lvl = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	sdfplay.SetLogger(slog.New(h))
}
