package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gogpu/sdfplay"
	"github.com/gogpu/sdfplay/compiler"
	"github.com/gogpu/sdfplay/internal/gpu"
	"github.com/gogpu/sdfplay/internal/viewer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	_ "github.com/gogpu/wgpu/hal/allbackends"
)

// preloadPoller hands out a previously built artifact once, then defers to
// the supervisor.
type preloadPoller struct {
	first *compiler.Artifact
	next  viewer.Poller
}

func (p *preloadPoller) Poll() (*compiler.Artifact, bool) {
	if a, ok := p.next.Poll(); ok {
		p.first = nil
		return a, true
	}
	if p.first != nil {
		a := p.first
		p.first = nil
		return a, true
	}
	return nil, false
}

func watchScene(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	applyWatchFlags(ctx, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	target, err := compiler.ParseTarget(cfg.Build.Target)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dev, err := gpu.OpenDevice(gpu.Preference{
		Backend: ctx.String("backend"),
		Adapter: cfg.GPU.Adapter,
	})
	if err != nil {
		return err
	}
	defer dev.Close()
	info := dev.Info()
	sdfplay.Logger().Info("using adapter", "backend", info.Backend, "name", info.Name)

	sup := compiler.New(sourceArg(ctx, cfg), newBuilder(cfg),
		compiler.WithTarget(target),
		compiler.WithInterval(cfg.Build.Interval))
	if err := sup.Start(runCtx); err != nil {
		return err
	}

	var poller viewer.Poller = sup
	if path := ctx.String("artifact"); path != "" {
		art, err := compiler.LoadArtifact(path)
		if err != nil {
			return err
		}
		poller = &preloadPoller{first: art, next: sup}
	}

	device, queue := dev.Hal()
	opts := []viewer.Option{viewer.WithSize(cfg.Window.Width, cfg.Window.Height)}
	if out := ctx.String("out"); out != "" {
		opts = append(opts, viewer.WithSnapshots(uint64(ctx.Uint("snapshot-every")), viewer.PNGSnapshots(out)))
	}
	v := viewer.New(poller, viewer.GPUFactory{Device: device, Queue: queue}, opts...)
	defer v.Close()

	runErr := v.Run(runCtx, cfg.Window.FPS)
	stop()
	<-sup.Done()

	fmt.Print(buildStats(sup.Stats(), v.Frames(), v.Reloads()))
	return runErr
}

// applyWatchFlags overrides configuration values with explicit flags.
func applyWatchFlags(ctx *cli.Context, cfg *sdfplay.Config) {
	if w := ctx.Uint("width"); w > 0 {
		cfg.Window.Width = uint32(w)
	}
	if h := ctx.Uint("height"); h > 0 {
		cfg.Window.Height = uint32(h)
	}
	if fps := ctx.Float64("fps"); fps > 0 {
		cfg.Window.FPS = fps
	}
	if a := ctx.String("adapter"); a != "" {
		cfg.GPU.Adapter = a
	}
}

// buildStats renders the supervisor and viewer counters as a table.
func buildStats(st compiler.Stats, frames, reloads uint64) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Builds", "OK", "Failed", "Dropped", "Reloads", "Frames"})
	table.Append([]string{
		strconv.FormatUint(st.Attempted, 10),
		strconv.FormatUint(st.Succeeded, 10),
		strconv.FormatUint(st.Failed, 10),
		strconv.FormatUint(st.Dropped, 10),
		strconv.FormatUint(reloads, 10),
		strconv.FormatUint(frames, 10),
	})
	if st.LastError != "" {
		table.SetFooter([]string{"", "", "", "", "last error", truncate(st.LastError, 60)})
	}
	table.Render()
	return buf.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

