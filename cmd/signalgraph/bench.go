package main

import (
	"context"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/signalgraph/bench"
	"github.com/delaneyj/signalgraph/reactive"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	widthsKey     = "widths"
	heightsKey    = "heights"
	itersKey      = "iters"
	cpuProfileKey = "cpuprofile"
)

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Measure write+flush latency through w*h grids of derived computations",
		Flags: []cli.Flag{
			&cli.IntSliceFlag{
				Name:  widthsKey,
				Usage: "Number of chains hanging off the source",
				Value: []int64{1, 10, 100, 1_000},
			},
			&cli.IntSliceFlag{
				Name:  heightsKey,
				Usage: "Number of derived computations per chain",
				Value: []int64{1, 10, 100, 1_000},
			},
			&cli.IntFlag{
				Name:  itersKey,
				Usage: "Writes timed per grid",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  cpuProfileKey,
				Usage: "Write a CPU profile to this file",
			},
		},
		Action: runBench,
	}
}

func runBench(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String(cpuProfileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	start := time.Now()
	log.Printf("propagation benchmark started")
	defer func() {
		log.Printf("propagation benchmark finished in %v", time.Since(start))
	}()

	tbl := table.NewWriter()
	tbl.SetTitle("signalgraph propagation")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	logger := newLogger(cmd)
	iters := int(cmd.Int(itersKey))
	for _, w := range cmd.IntSlice(widthsKey) {
		for _, h := range cmd.IntSlice(heightsKey) {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := bench.Propagate(int(w), int(h), iters, reactive.WithLogger(logger))
			if err != nil {
				return err
			}
			calc := p.Metrics
			tbl.AppendRow(table.Row{
				p.Name(),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			})
		}
	}

	tbl.Render()
	return nil
}
