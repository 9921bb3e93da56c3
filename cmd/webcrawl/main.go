// Command webcrawl walks a running web graph server from its root, solving every
// hash-chain puzzle, and reports how much of the graph it reached.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/webgraph/internal/pagesrv"
	"github.com/GoSim-25-26J-441/webgraph/pkg/logger"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
	"github.com/GoSim-25-26J-441/webgraph/pkg/utils"
)

func main() {
	var baseURL string
	var logLevel string
	var maxAttempts int

	flag.StringVar(&baseURL, "url", "http://localhost:5000", "base URL of the web graph server")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.IntVar(&maxAttempts, "max-attempts", 20, "attempts per page before giving up on simulated failures")
	flag.Parse()

	logger.SetDefault(logger.NewText(logLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backoff := utils.ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		Multiplier: 2,
		MaxDelay:   5 * time.Second,
		Jitter:     utils.NewRandSource(time.Now().UnixNano()),
	}
	client := pagesrv.NewClient(baseURL, pagesrv.WithRetry(backoff, maxAttempts))

	run := utils.GenerateRunLabel("crawl")
	start := time.Now()
	res, err := client.Crawl(ctx)
	if res != nil {
		counts := make(map[models.BehaviorType]int)
		for _, bt := range res.Visited {
			counts[bt]++
		}
		logger.Info("crawl finished",
			"run", run,
			"root", res.Root,
			"pages", len(res.Visited),
			"links", res.Edges,
			"by_type", counts,
			"elapsed", time.Since(start))
	}
	if err != nil {
		logger.Error("crawl failed", "run", run, "error", err)
		os.Exit(1)
	}
}
