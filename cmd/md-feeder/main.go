// md-feeder creates the market data queue and publishes simulated depth
// updates into it, standing in for the exchange-facing feed handler.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/luxfi/hft/pkg/config"
	"github.com/luxfi/hft/pkg/feed"
	"github.com/luxfi/hft/pkg/shm"
	"github.com/luxfi/hft/pkg/wire"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file (compiled-in defaults when empty)")
	symbol := flag.String("symbol", "", "instrument symbol (overrides config)")
	rate := flag.Int("rate", 0, "updates per second (overrides config)")
	base := flag.Float64("base", 0, "base price for the random walk (overrides config)")
	duration := flag.Duration("duration", 0, "stop after this long (0 = run until SIGINT)")
	depth := flag.Int("depth", 10, "populated book levels per side")
	destroy := flag.Bool("destroy", false, "remove the market data segment on exit")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *symbol != "" {
		cfg.Feed.Symbol = *symbol
	}
	if *rate > 0 {
		cfg.Feed.RateHz = *rate
	}
	if *base > 0 {
		cfg.Feed.BasePrice = *base
	}

	queue, err := shm.CreateMWMRQueue[wire.MarketUpdate](cfg.Shm.MDKey, cfg.Shm.MDQueueSize)
	if err != nil {
		log.Fatalf("market data queue (key 0x%x): %v", cfg.Shm.MDKey, err)
	}
	log.Printf("market data queue ready: key=0x%x capacity=%d", cfg.Shm.MDKey, queue.Capacity())

	sim := feed.New(feed.Config{
		Symbol:    cfg.Feed.Symbol,
		SymbolID:  1,
		Exchange:  wire.ExchangeCodeSHFE,
		BasePrice: cfg.Feed.BasePrice,
		TickSize:  1.0,
		Depth:     *depth,
		RateHz:    cfg.Feed.RateHz,
	}, queue)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if *duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	start := time.Now()
	published := sim.Run(ctx)
	elapsed := time.Since(start).Seconds()
	log.Printf("published %d updates in %.1fs (%.0f/sec)", published, elapsed, float64(published)/elapsed)

	if *destroy {
		if err := queue.Destroy(); err != nil {
			log.Fatalf("destroy queue: %v", err)
		}
		log.Printf("market data segment removed")
		return
	}
	if err := queue.Close(); err != nil {
		log.Fatalf("detach queue: %v", err)
	}
}
