package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cine-stats/app"
	"cine-stats/notifier"
	"cine-stats/render"
	"cine-stats/storage"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func makeBatchCMD() cli.Command {
	batchCMD := cli.Command{
		Name:    "batch",
		Aliases: []string{"b"},
		Usage:   "Loads the dataset and renders every chart",
		Action:  batch,
	}
	configureBatch(&batchCMD)
	return batchCMD
}

const chartFlag = "chart"

func configureBatch(c *cli.Command) {
	c.Flags = registerSessionFlags(c.Flags)
	c.Flags = append(c.Flags,
		cli.StringSliceFlag{
			Name:  chartFlag + ", c",
			Usage: "render only this chart key (repeatable)",
		},
	)
}

func batch(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setting storage
	store, err := storage.New(c)
	if err != nil {
		return err
	}
	defer store.Close()

	// Setting renderer
	re, err := render.New(c, os.Stdout)
	if err != nil {
		return err
	}

	n := notifier.NewConsoleNotifier(os.Stdout)
	s := app.NewSession(store, re, os.Stdout)

	var opts []app.BatchOption
	if charts := c.StringSlice(chartFlag); len(charts) > 0 {
		opts = append(opts, app.WithCharts(charts...))
	}

	if err := app.NewBatch(s, n, c.String(inputFlag), opts...).Run(ctx); err != nil {
		return err
	}

	logStats(ctx, store)
	return nil
}

func logStats(ctx context.Context, store *storage.SQLiteStorage) {
	stats, err := store.GetStats(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to get catalog stats")
		return
	}
	log.WithFields(log.Fields{
		"total":    stats["total"],
		"movies":   stats["movies"],
		"tv_shows": stats["tv_shows"],
	}).Info("catalog stats")
}
