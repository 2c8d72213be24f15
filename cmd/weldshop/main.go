package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "weldshop",
		Usage: "Simulate a welding shop pricing orders from many suppliers",
		Commands: []*cli.Command{
			runCmd,
			validateCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var scenarioFlag = &cli.StringFlag{
	Name:     "scenario",
	Aliases:  []string{"s"},
	Required: true,
	Usage:    "scenario file or glob (** matches directories)",
}

var runCmd = &cli.Command{
	Name:    "run",
	Usage:   "Run scenarios through the workshop",
	Aliases: []string{"r"},
	Flags: []cli.Flag{
		scenarioFlag,
		&cli.IntFlag{
			Name:  "workers",
			Usage: "worker pool size (overrides scenario and WORKERS)",
		},
		&cli.BoolFlag{
			Name:  "dev",
			Usage: "development logging (colored, debug level)",
		},
		&cli.BoolFlag{
			Name:  "metrics",
			Usage: "serve /health, /stats and /metrics while running",
		},
		&cli.StringFlag{
			Name:  "addr",
			Usage: "stats server address (overrides METRICS_HOST and METRICS_PORT)",
		},
		&cli.BoolFlag{
			Name:  "hold",
			Usage: "keep the stats server running after the last scenario until interrupted",
		},
	},
	Action: func(ctx *cli.Context) error {
		opts, err := runOptionsFrom(ctx)
		if err != nil {
			return err
		}
		return run(ctx.Context, opts)
	},
}

var validateCmd = &cli.Command{
	Name:    "validate",
	Usage:   "Check scenario files",
	Aliases: []string{"v"},
	Flags: []cli.Flag{
		scenarioFlag,
		&cli.StringFlag{
			Name:  "print",
			Usage: "print normalized scenarios as yaml, toml or json",
		},
	},
	Action: func(ctx *cli.Context) error {
		return validate(ctx.App.Writer, ctx.String("scenario"), ctx.String("print"))
	},
}
