// Package feed generates simulated market data and publishes it on the
// market data queue. It stands in for the exchange-facing feeder during
// development and benchmarks; the real CTP feeder writes the same records
// from its own process.
package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/hft/pkg/shm"
	"github.com/luxfi/hft/pkg/wire"
)

// Config controls the simulation.
type Config struct {
	Symbol    string
	SymbolID  uint16
	Exchange  uint8
	BasePrice float64
	TickSize  float64
	Depth     int // populated levels per side, capped at wire.InterestLevels
	RateHz    int
}

// Simulator publishes a random walk around BasePrice with a populated book.
type Simulator struct {
	cfg    Config
	queue  *shm.MWMRQueue[wire.MarketUpdate]
	rng    *rand.Rand
	seq    uint64
	last   float64
	volume int64
	logger log.Logger
}

// New prepares a simulator writing to queue.
func New(cfg Config, queue *shm.MWMRQueue[wire.MarketUpdate]) *Simulator {
	if cfg.TickSize <= 0 {
		cfg.TickSize = 1.0
	}
	if cfg.Depth <= 0 || cfg.Depth > wire.InterestLevels {
		cfg.Depth = 10
	}
	if cfg.RateHz <= 0 {
		cfg.RateHz = 1000
	}
	return &Simulator{
		cfg:    cfg,
		queue:  queue,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		last:   cfg.BasePrice,
		logger: log.Root().New("module", "feed"),
	}
}

// Run publishes updates at the configured rate until ctx is cancelled.
// Returns the number of updates published.
func (s *Simulator) Run(ctx context.Context) uint64 {
	interval := time.Second / time.Duration(s.cfg.RateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("feeder running",
		"symbol", s.cfg.Symbol, "rateHz", s.cfg.RateHz, "base", s.cfg.BasePrice)

	var published uint64
	var md wire.MarketUpdate
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("feeder stopped", "published", published)
			return published
		case <-ticker.C:
			s.Next(&md)
			s.queue.Enqueue(&md)
			published++
		}
	}
}

// Next fills md with the next simulated update.
func (s *Simulator) Next(md *wire.MarketUpdate) {
	// Bounded random walk: one tick either way, pulled back toward base
	// when it strays more than 2% from it.
	step := float64(s.rng.Intn(3)-1) * s.cfg.TickSize
	s.last += step
	if s.last < s.cfg.BasePrice*0.98 || s.last > s.cfg.BasePrice*1.02 {
		s.last = s.cfg.BasePrice
	}
	s.seq++

	*md = wire.MarketUpdate{}
	now := uint64(time.Now().UnixNano())
	md.Header.ExchangeTS = now
	md.Header.LocalTS = now
	md.Header.SeqNum = s.seq
	md.Header.ReportSeqNum = s.seq
	md.Header.SymbolID = s.cfg.SymbolID
	md.Header.Exchange = s.cfg.Exchange
	md.Header.SetSymbol(s.cfg.Symbol)

	bid := s.last - s.cfg.TickSize/2
	ask := s.last + s.cfg.TickSize/2
	for i := 0; i < s.cfg.Depth; i++ {
		off := float64(i) * s.cfg.TickSize
		md.Body.Bids[i] = wire.DepthLevel{
			Quantity:   int32(10 + s.rng.Intn(90)),
			OrderCount: int32(1 + s.rng.Intn(9)),
			Price:      bid - off,
		}
		md.Body.Asks[i] = wire.DepthLevel{
			Quantity:   int32(10 + s.rng.Intn(90)),
			OrderCount: int32(1 + s.rng.Intn(9)),
			Price:      ask + off,
		}
	}
	md.Body.ValidBids = int8(s.cfg.Depth)
	md.Body.ValidAsks = int8(s.cfg.Depth)
	md.Body.NewPrice = s.last
	md.Body.LastTradedPrice = s.last
	md.Body.LastTradedTime = now
	md.Body.LastTradedQty = int32(1 + s.rng.Intn(20))
	s.volume += int64(md.Body.LastTradedQty)
	md.Body.TotalTradedQty = s.volume
	md.Body.EndOfPacket = 1
	md.Body.FeedType = wire.FeedSnapshot
}
