package main

import (
	"context"
	"fmt"
	"os"

	"github.com/delaneyj/signalgraph/counter"
	"github.com/delaneyj/signalgraph/host"
	"github.com/delaneyj/signalgraph/reactive"
	"github.com/delaneyj/signalgraph/view"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

const (
	clicksKey = "clicks"
	frameKey  = "frame"
)

func counterCommand() *cli.Command {
	return &cli.Command{
		Name:  "counter",
		Usage: "Click the counter component a number of times and print its fragments",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  clicksKey,
				Usage: "Number of clicks to post",
				Value: 5,
			},
			&cli.DurationFlag{
				Name:  frameKey,
				Usage: "Flush once per frame instead of after every click",
			},
		},
		Action: runCounter,
	}
}

func runCounter(ctx context.Context, cmd *cli.Command) error {
	logger := newLogger(cmd)
	rs := reactive.New(reactive.WithName("counter"), reactive.WithLogger(logger))

	app, err := counter.New(rs, 0)
	if err != nil {
		return err
	}
	surface := view.NewMemorySurface()
	if err := app.Mount(surface); err != nil {
		return err
	}

	var opts []host.Option
	if d := cmd.Duration(frameKey); d > 0 {
		opts = append(opts, host.WithFramePolicy(d))
	}
	loop := host.New(rs, append(opts, host.WithLogger(logger))...)
	go loop.Run(ctx)

	clicks := int(cmd.Int(clicksKey))
	for i := 0; i < clicks; i++ {
		if err := loop.Post(ctx, func(rs *reactive.System) error {
			return app.Click()
		}); err != nil {
			return err
		}
	}
	loop.Stop()
	<-loop.Done()

	for _, name := range []string{counter.ButtonFragment, counter.DoubleFragment} {
		out, _ := surface.Fragment(name)
		fmt.Fprintf(os.Stdout, "%-8s %s (%s commits)\n", name, out, humanize.Comma(int64(surface.Commits(name))))
	}

	stats := rs.Stats()
	fmt.Fprintf(os.Stdout, "%s clicks, %s flushes, %s runs, %s failures\n",
		humanize.Comma(int64(clicks)),
		humanize.Comma(int64(stats.Flushes)),
		humanize.Comma(int64(stats.Runs)),
		humanize.Comma(int64(stats.Failures)),
	)
	return nil
}
