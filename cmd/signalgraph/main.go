package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

const verboseKey = "verbose"

func main() {
	cmd := &cli.Command{
		Name:  "signalgraph",
		Usage: "Benchmarks and demos for the signalgraph reactive runtime",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  verboseKey,
				Usage: "Log scheduler activity at debug level",
			},
		},
		Commands: []*cli.Command{
			benchCommand(),
			dynamicCommand(),
			counterCommand(),
			serveCommand(),
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newLogger(cmd *cli.Command) *slog.Logger {
	level := slog.LevelInfo
	if cmd.Bool(verboseKey) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
