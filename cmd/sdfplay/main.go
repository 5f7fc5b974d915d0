// Command sdfplay compiles ray-marched signed distance field scenes and
// redraws them whenever the scene source changes.
package main

import (
	"fmt"
	"os"

	"github.com/gogpu/sdfplay"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "sdfplay"
	app.Usage = "live-edit ray-marched SDF scenes"
	app.Version = sdfplay.Version
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "configuration file (default: ./" + defaultConfigFile + " if present)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "init",
			Usage:     "write a starter scene and configuration",
			ArgsUsage: "[dir]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene",
					Value: "ocean",
					Usage: "built-in scene to start from",
				},
				cli.BoolFlag{
					Name:  "force, f",
					Usage: "overwrite existing files",
				},
			},
			Action: initProject,
		},
		{
			Name:  "build",
			Usage: "compile a scene once",
			Description: `
Assemble the scene with the shader prelude, compile it to SPIR-V and write the
binary plus its manifest to the configured output directory.`,
			ArgsUsage: "[scene.wgsl]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "target, t",
					Usage: "build target (spirv1.0..spirv1.6, vulkan1.0..vulkan1.3)",
				},
			},
			Action: buildScene,
		},
		{
			Name:  "watch",
			Usage: "rebuild and redraw the scene whenever it changes",
			Description: `
Poll the scene source for modification-time changes, rebuild it in the
background and swap the new program in without restarting. Build errors are
logged and the previous program keeps running.`,
			ArgsUsage: "[scene.wgsl]",
			Flags: []cli.Flag{
				cli.UintFlag{
					Name:  "width",
					Usage: "viewport width (default from config)",
				},
				cli.UintFlag{
					Name:  "height",
					Usage: "viewport height (default from config)",
				},
				cli.Float64Flag{
					Name:  "fps",
					Usage: "frames per second (default from config)",
				},
				cli.StringFlag{
					Name:  "adapter",
					Usage: "use the adapter whose name contains this value",
				},
				cli.StringFlag{
					Name:  "backend",
					Usage: "restrict to one backend (vulkan, metal, dx12, gl)",
				},
				cli.StringFlag{
					Name:  "artifact",
					Usage: "start from a previously built .spv while the first build runs",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "directory for PNG snapshots",
				},
				cli.UintFlag{
					Name:  "snapshot-every",
					Value: 60,
					Usage: "write a snapshot every N frames when --out is set",
				},
			},
			Action: watchScene,
		},
		{
			Name:  "render",
			Usage: "render a built-in scene on the CPU",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene",
					Value: "ocean",
					Usage: "built-in scene name",
				},
				cli.StringFlag{
					Name:  "size",
					Value: "700x700",
					Usage: "frame size as WIDTHxHEIGHT",
				},
				cli.Float64Flag{
					Name:  "time",
					Usage: "scene time in seconds",
				},
				cli.Float64Flag{
					Name:  "scale",
					Value: 1.0,
					Usage: "resample the frame by this factor",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "concurrent tiles (default: number of CPUs)",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			},
			Action: renderScene,
		},
		{
			Name:   "devices",
			Usage:  "list GPU adapters",
			Action: listDevices,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "sdfplay: %v\n", err)
		os.Exit(1)
	}
}
