// Package ipc wires the typed shared memory queues together: market data in,
// order requests out, order responses in, plus the client store that hands
// each process its identity.
//
// A trading engine holds exactly one Connector. The Connector owns the
// single-reader side of the market data and response queues; requests may be
// sent from any goroutine.
package ipc

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/hft/pkg/config"
	"github.com/luxfi/hft/pkg/shm"
	"github.com/luxfi/hft/pkg/wire"
)

// OrderIDRange is the span of order IDs reserved per client:
// orderID = clientID*OrderIDRange + per-process sequence.
const OrderIDRange = 1_000_000

// MDCallback receives each market update the poller dequeues.
type MDCallback func(md *wire.MarketUpdate)

// ResponseCallback receives each order response the poller dequeues.
type ResponseCallback func(resp *wire.ResponseMsg)

// Connector attaches to the well-known queue segments and allocates this
// process's client ID.
type Connector struct {
	MD   *shm.MWMRQueue[wire.MarketUpdate]
	Req  *shm.MWMRQueue[wire.RequestMsg]
	Resp *shm.MWMRQueue[wire.ResponseMsg]

	store    *shm.ClientStore
	clientID int64
	orderSeq atomic.Uint32
	running  atomic.Bool
	logger   log.Logger
}

// Attach connects to existing segments. The gateway side is responsible for
// creating them; a missing or mis-sized segment fails here, at startup, with
// the offending key in the error.
func Attach(cfg config.Shm) (*Connector, error) {
	logger := log.Root().New("module", "ipc")

	md, err := shm.OpenMWMRQueue[wire.MarketUpdate](cfg.MDKey, cfg.MDQueueSize)
	if err != nil {
		return nil, fmt.Errorf("ipc: market data queue: %w", err)
	}
	req, err := shm.OpenMWMRQueue[wire.RequestMsg](cfg.ReqKey, cfg.ReqQueueSize, shm.WithElemSize(wire.ReqElemSize))
	if err != nil {
		md.Close()
		return nil, fmt.Errorf("ipc: request queue: %w", err)
	}
	resp, err := shm.OpenMWMRQueue[wire.ResponseMsg](cfg.RespKey, cfg.RespQueueSize)
	if err != nil {
		md.Close()
		req.Close()
		return nil, fmt.Errorf("ipc: response queue: %w", err)
	}
	store, err := shm.OpenClientStore(cfg.ClientStoreKey)
	if err != nil {
		md.Close()
		req.Close()
		resp.Close()
		return nil, fmt.Errorf("ipc: client store: %w", err)
	}

	c := &Connector{
		MD:     md,
		Req:    req,
		Resp:   resp,
		store:  store,
		logger: logger,
	}
	c.clientID = store.GetClientIDAndIncrement()
	logger.Info("attached to shm queues",
		"clientID", c.clientID,
		"mdKey", fmt.Sprintf("0x%x", cfg.MDKey),
		"reqKey", fmt.Sprintf("0x%x", cfg.ReqKey),
		"respKey", fmt.Sprintf("0x%x", cfg.RespKey))
	return c, nil
}

// CreateAll creates every segment of the topology, as the gateway process
// (or a test harness) does before any engine attaches. Create-or-attach
// semantics make the call safe when another process got there first.
func CreateAll(cfg config.Shm) (*Connector, error) {
	logger := log.Root().New("module", "ipc")

	md, err := shm.CreateMWMRQueue[wire.MarketUpdate](cfg.MDKey, cfg.MDQueueSize)
	if err != nil {
		return nil, fmt.Errorf("ipc: market data queue: %w", err)
	}
	req, err := shm.CreateMWMRQueue[wire.RequestMsg](cfg.ReqKey, cfg.ReqQueueSize, shm.WithElemSize(wire.ReqElemSize))
	if err != nil {
		md.Destroy()
		return nil, fmt.Errorf("ipc: request queue: %w", err)
	}
	resp, err := shm.CreateMWMRQueue[wire.ResponseMsg](cfg.RespKey, cfg.RespQueueSize)
	if err != nil {
		md.Destroy()
		req.Destroy()
		return nil, fmt.Errorf("ipc: response queue: %w", err)
	}
	store, err := shm.CreateClientStore(cfg.ClientStoreKey, 1)
	if err != nil {
		md.Destroy()
		req.Destroy()
		resp.Destroy()
		return nil, fmt.Errorf("ipc: client store: %w", err)
	}

	c := &Connector{
		MD:     md,
		Req:    req,
		Resp:   resp,
		store:  store,
		logger: logger,
	}
	c.clientID = store.GetClientIDAndIncrement()
	logger.Info("created shm queues", "clientID", c.clientID)
	return c, nil
}

// ClientID returns the identity this process claimed at attach time.
func (c *Connector) ClientID() int64 { return c.clientID }

// NextOrderID returns a process-unique order ID inside this client's range.
func (c *Connector) NextOrderID() uint32 {
	return uint32(c.clientID)*OrderIDRange + c.orderSeq.Add(1)
}

// Send enqueues an order request. Safe from any goroutine.
func (c *Connector) Send(req *wire.RequestMsg) {
	c.Req.Enqueue(req)
}

// Start launches the polling goroutines for market data and responses. The
// queues are non-blocking, so an idle poller backs off briefly between empty
// sweeps; latency-sensitive callers pass 0 to spin.
func (c *Connector) Start(idle time.Duration, onMD MDCallback, onResp ResponseCallback) {
	if !c.running.CompareAndSwap(false, true) {
		return
	}

	go func() {
		var md wire.MarketUpdate
		for c.running.Load() {
			if c.MD.Dequeue(&md) {
				if onMD != nil {
					onMD(&md)
				}
				continue
			}
			sleep(idle)
		}
	}()

	go func() {
		var resp wire.ResponseMsg
		for c.running.Load() {
			if c.Resp.Dequeue(&resp) {
				if onResp != nil {
					onResp(&resp)
				}
				continue
			}
			sleep(idle)
		}
	}()
}

// Stop halts the pollers. It does not detach; call Close for that.
func (c *Connector) Stop() {
	c.running.Store(false)
}

// Close stops polling and detaches every segment, leaving them in place for
// other processes.
func (c *Connector) Close() error {
	c.Stop()
	var firstErr error
	for _, f := range []func() error{c.MD.Close, c.Req.Close, c.Resp.Close, c.store.Close} {
		if err := f(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Destroy stops polling and removes every segment system-wide. Used by the
// process that owns the topology, typically at end of day.
func (c *Connector) Destroy() error {
	c.Stop()
	var firstErr error
	for _, f := range []func() error{c.MD.Destroy, c.Req.Destroy, c.Resp.Destroy, c.store.Destroy} {
		if err := f(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
