package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/delaneyj/signalgraph/counter"
	"github.com/delaneyj/signalgraph/host"
	"github.com/delaneyj/signalgraph/reactive"
	"github.com/delaneyj/signalgraph/view"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"
)

const addrKey = "addr"

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the counter component over HTTP with Prometheus metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  addrKey,
				Usage: "Listen address",
				Value: ":8080",
			},
			&cli.DurationFlag{
				Name:  frameKey,
				Usage: "Flush once per frame instead of after every request",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	logger := newLogger(cmd)
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	rs := reactive.New(
		reactive.WithName("counter"),
		reactive.WithLogger(logger),
		reactive.WithMetrics(reg),
	)
	app, err := counter.New(rs, 0)
	if err != nil {
		return err
	}
	surface := view.NewMemorySurface()
	if err := app.Mount(surface); err != nil {
		return err
	}

	opts := []host.Option{host.WithLogger(logger)}
	if d := cmd.Duration(frameKey); d > 0 {
		opts = append(opts, host.WithFramePolicy(d))
	}
	loop := host.New(rs, opts...)
	go loop.Run(ctx)

	srv := &http.Server{
		Addr:              cmd.String(addrKey),
		Handler:           counter.NewServer(loop, app, surface).Routes(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		loop.Stop()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	<-loop.Done()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
