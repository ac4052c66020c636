// shm-monitor tails the market data queue as a passive observer and fans
// summarized ticks out to dashboards: Prometheus metrics on /metrics, a
// websocket stream on /ws, and optionally a NATS subject. It attaches to the
// segments read-only in spirit (its own reader cursor lives in process
// memory) and never interferes with the trading-path consumers.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luxfi/hft/pkg/config"
	"github.com/luxfi/hft/pkg/metrics"
	"github.com/luxfi/hft/pkg/shm"
	"github.com/luxfi/hft/pkg/wire"
)

// Tick is the summarized update pushed to websocket and NATS subscribers.
type Tick struct {
	Symbol   string  `json:"symbol"`
	SeqNum   uint64  `json:"seq"`
	Last     float64 `json:"last"`
	BestBid  float64 `json:"bid"`
	BestAsk  float64 `json:"ask"`
	BidQty   int32   `json:"bid_qty"`
	AskQty   int32   `json:"ask_qty"`
	Volume   int64   `json:"volume"`
	RecvTime int64   `json:"recv_ns"`
}

type hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func (h *hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		c.SetWriteDeadline(time.Now().Add(time.Second))
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			c.Close()
			delete(h.conns, c)
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func main() {
	cfgPath := flag.String("config", "", "YAML config file (compiled-in defaults when empty)")
	httpAddr := flag.String("http", ":9101", "address for /metrics and /ws")
	natsURL := flag.String("nats", "", "NATS URL to republish ticks to (empty = disabled)")
	subject := flag.String("subject", "hft.md.ticks", "NATS subject for republished ticks")
	idle := flag.Duration("idle", 100*time.Microsecond, "sleep between empty sweeps")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *natsURL == "" && cfg.Nats != "" {
		*natsURL = cfg.Nats
	}

	queue, err := shm.OpenMWMRQueue[wire.MarketUpdate](cfg.Shm.MDKey, cfg.Shm.MDQueueSize)
	if err != nil {
		log.Fatalf("market data queue (key 0x%x): %v", cfg.Shm.MDKey, err)
	}
	defer queue.Close()

	var nc *nats.Conn
	if *natsURL != "" {
		if nc, err = nats.Connect(*natsURL); err != nil {
			log.Fatalf("connect NATS %s: %v", *natsURL, err)
		}
		defer nc.Close()
		log.Printf("republishing to NATS %s subject %s", *natsURL, *subject)
	}

	m := metrics.NewTransport("hft")
	h := &hub{conns: make(map[*websocket.Conn]struct{})}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("ws upgrade: %v", err)
			return
		}
		h.add(conn)
	})
	go func() {
		if err := http.ListenAndServe(*httpAddr, mux); err != nil {
			log.Fatalf("http server: %v", err)
		}
	}()
	log.Printf("monitor up: http=%s mdKey=0x%x", *httpAddr, cfg.Shm.MDKey)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var md wire.MarketUpdate
	var lastSeq uint64
	for {
		select {
		case <-stop:
			log.Printf("monitor stopped")
			return
		default:
		}

		if !queue.Dequeue(&md) {
			m.Lag("md", float64(queue.Head()-queue.Tail()))
			time.Sleep(*idle)
			continue
		}

		now := time.Now().UnixNano()
		m.Dequeued("md")
		m.DequeueLatency(float64(uint64(now) - md.Header.LocalTS))
		if lastSeq != 0 && md.Header.SeqNum > lastSeq+1 {
			m.Gap("md", float64(md.Header.SeqNum-lastSeq-1))
		}
		lastSeq = md.Header.SeqNum

		tick := Tick{
			Symbol:   md.Header.SymbolString(),
			SeqNum:   md.Header.SeqNum,
			Last:     md.Body.LastTradedPrice,
			BestBid:  md.Body.Bids[0].Price,
			BestAsk:  md.Body.Asks[0].Price,
			BidQty:   md.Body.Bids[0].Quantity,
			AskQty:   md.Body.Asks[0].Quantity,
			Volume:   md.Body.TotalTradedQty,
			RecvTime: now,
		}
		payload, err := json.Marshal(tick)
		if err != nil {
			continue
		}
		h.broadcast(payload)
		if nc != nil {
			if err := nc.Publish(*subject, payload); err != nil {
				log.Printf("nats publish: %v", err)
			}
		}
	}
}
