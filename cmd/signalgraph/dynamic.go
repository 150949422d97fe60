package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/delaneyj/signalgraph/bench"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	repeatsKey = "repeats"
	onlyKey    = "only"
)

func dynamicCommand() *cli.Command {
	return &cli.Command{
		Name:  "dynamic",
		Usage: "Stress layered graphs whose nodes change their dependencies",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  repeatsKey,
				Usage: "Timed runs per config, the fastest is reported",
				Value: 5,
			},
			&cli.StringSliceFlag{
				Name:  onlyKey,
				Usage: "Only run the named configs",
			},
		},
		Action: runDynamic,
	}
}

func runDynamic(ctx context.Context, cmd *cli.Command) error {
	log.Print("Starting dynamic graph benchmark, please wait...")
	defer log.Print("Finished dynamic graph benchmark")

	only := map[string]bool{}
	for _, name := range cmd.StringSlice(onlyKey) {
		only[name] = true
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"size", "nSources", "read%", "static%",
		"nTimes", "test", "time", "updateRate", "title",
	})

	repeats := int(cmd.Int(repeatsKey))
	for _, cfg := range bench.DynamicConfigs {
		if len(only) > 0 && !only[cfg.Name] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Printf("Running '%s' config", cfg.Name)

		res, err := bench.RunDynamic(cfg, repeats)
		if err != nil {
			return fmt.Errorf("%s: %w", cfg.Name, err)
		}

		table.Append([]string{
			fmt.Sprintf("%dx%d", cfg.Width, cfg.TotalLayers),
			fmt.Sprint(cfg.NSources),
			fmt.Sprint(cfg.ReadFraction),
			fmt.Sprint(cfg.StaticFraction),
			humanize.Comma(int64(cfg.Iterations)),
			cfg.Name,
			fmt.Sprint(res.Duration),
			humanize.Comma(int64(res.UpdateRate())),
			cfg.Title(),
		})
	}
	table.Render()
	return nil
}
