// ors-gateway owns the order path segments. It creates the request and
// response queues plus the client store, drains requests through the matching
// simulator, and publishes the resulting responses. Every message that
// crosses the gateway is journaled for end-of-day reconciliation.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/database/factory"
	"github.com/luxfi/database/leveldb"
	"github.com/luxfi/database/memdb"

	"github.com/luxfi/hft/pkg/config"
	"github.com/luxfi/hft/pkg/ipc"
	"github.com/luxfi/hft/pkg/journal"
	"github.com/luxfi/hft/pkg/sim"
	"github.com/luxfi/hft/pkg/wire"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file (compiled-in defaults when empty)")
	dbPath := flag.String("db", "./ors-journal", "journal database directory (empty = in-memory)")
	idle := flag.Duration("idle", 50*time.Microsecond, "sleep between empty request sweeps (0 = spin)")
	destroy := flag.Bool("destroy", true, "remove all segments on exit")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	db := openDB(*dbPath)
	jnl := journal.New(db)
	defer jnl.Close()

	conn, err := ipc.CreateAll(cfg.Shm)
	if err != nil {
		log.Fatalf("create shm topology: %v", err)
	}
	log.Printf("gateway up: req=0x%x resp=0x%x store=0x%x",
		cfg.Shm.ReqKey, cfg.Shm.RespKey, cfg.Shm.ClientStoreKey)

	engine := sim.NewEngine()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var served, responded uint64
	var req wire.RequestMsg
loop:
	for {
		select {
		case <-stop:
			break loop
		default:
		}

		if !conn.Req.Dequeue(&req) {
			if *idle > 0 {
				time.Sleep(*idle)
			}
			continue
		}
		served++
		if err := jnl.Request(&req); err != nil {
			log.Printf("journal request %d: %v", req.OrderID, err)
		}

		responses := engine.Process(&req)
		for i := range responses {
			conn.Resp.Enqueue(&responses[i])
			if err := jnl.Response(&responses[i]); err != nil {
				log.Printf("journal response %d: %v", responses[i].OrderID, err)
			}
			responded++
		}
	}

	log.Printf("shutting down: served=%d responses=%d", served, responded)
	if *destroy {
		if err := conn.Destroy(); err != nil {
			log.Printf("destroy segments: %v", err)
		}
	} else if err := conn.Close(); err != nil {
		log.Printf("detach segments: %v", err)
	}
}

func openDB(path string) database.Database {
	if path == "" {
		log.Printf("journal: in-memory database")
		return memdb.New()
	}
	db, err := factory.NewFromConfig(factory.DatabaseConfig{
		Type: leveldb.Name,
		Name: "ors-journal",
		Dir:  path,
	})
	if err != nil {
		log.Printf("journal: leveldb open failed (%v), falling back to in-memory", err)
		return memdb.New()
	}
	return db
}
