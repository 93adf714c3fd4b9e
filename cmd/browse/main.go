// Command browse pages through a running gallery the way the infinite-scroll
// view does and prints every item once.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"showcase/internal/client"
	"showcase/internal/domain/models"
	"showcase/internal/lib/logger/sl"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "gallery base url")
	query := flag.String("query", "", "text filter")
	category := flag.String("category", "", "category filter")
	tags := flag.String("tags", "", "comma separated tags")
	sortBy := flag.String("sort", string(models.SortCreated), "created, trending, likes or views")
	order := flag.String("order", string(models.SortDesc), "asc or desc")
	limit := flag.Int("limit", models.DefaultLimit, "page size")
	pages := flag.Int("pages", 0, "stop after this many pages, 0 loads everything")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	acc := client.NewAccumulator(client.NewClient(*addr, 10*time.Second), client.AccumulatorOptions{
		Limit: *limit,
		Log:   log,
	})

	err := acc.SetParams(ctx, models.QueryParams{
		Query:     *query,
		Category:  *category,
		Tags:      models.ParseTags(*tags),
		SortBy:    models.SortBy(*sortBy),
		SortOrder: models.SortOrder(*order),
	})
	for err == nil && !acc.Done() && (*pages == 0 || acc.Snapshot().Page < *pages) {
		err = acc.LoadMore(ctx)
	}
	if err != nil {
		log.Error("failed to load gallery", sl.Err(err))
		os.Exit(1)
	}

	snap := acc.Snapshot()
	for i, item := range snap.Items {
		fmt.Printf("%3d  %-36s  %-14s  %5d likes  %6d views  %s\n",
			i+1, item.ID, item.Category, item.Likes, item.Views, item.Title)
	}

	log.Info("done",
		slog.Int("shown", len(snap.Items)),
		slog.Int("total", snap.Total),
		slog.Int("pages", snap.Page),
	)
}
