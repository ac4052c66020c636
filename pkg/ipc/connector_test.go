package ipc

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/hft/pkg/config"
	"github.com/luxfi/hft/pkg/wire"
)

func testTopology(base int) config.Shm {
	return config.Shm{
		MDKey:          base,
		MDQueueSize:    256,
		ReqKey:         base + 1,
		ReqQueueSize:   256,
		RespKey:        base + 2,
		RespQueueSize:  256,
		ClientStoreKey: base + 3,
	}
}

func TestConnectorRoundTrip(t *testing.T) {
	cfg := testTopology(0x4C5B00)

	gateway, err := CreateAll(cfg)
	require.NoError(t, err)
	defer gateway.Destroy()

	engine, err := Attach(cfg)
	require.NoError(t, err)
	defer engine.Close()

	require.NotEqual(t, gateway.ClientID(), engine.ClientID(),
		"both processes claimed the same client ID")

	var (
		mu        sync.Mutex
		responses []wire.ResponseMsg
		updates   []wire.MarketUpdate
	)
	engine.Start(time.Millisecond,
		func(md *wire.MarketUpdate) {
			mu.Lock()
			updates = append(updates, *md)
			mu.Unlock()
		},
		func(resp *wire.ResponseMsg) {
			mu.Lock()
			responses = append(responses, *resp)
			mu.Unlock()
		})
	defer engine.Stop()

	// Engine sends a request; the gateway side dequeues it and answers.
	var req wire.RequestMsg
	req.Type = wire.ReqNewOrder
	req.OrderType = wire.OrdLimit
	req.OrderID = engine.NextOrderID()
	req.Quantity = 5
	req.Price = 7951.5
	req.Contract.SetSymbol("ag2506")
	engine.Send(&req)

	var got wire.RequestMsg
	require.Eventually(t, func() bool { return gateway.Req.Dequeue(&got) },
		time.Second, time.Millisecond)
	require.Equal(t, req.OrderID, got.OrderID)
	require.Equal(t, "ag2506", got.Contract.SymbolString())
	require.Equal(t, 7951.5, got.Price)

	var resp wire.ResponseMsg
	resp.Type = wire.RespNewOrderConfirm
	resp.OrderID = got.OrderID
	resp.Quantity = got.Quantity
	gateway.Resp.Enqueue(&resp)

	var md wire.MarketUpdate
	md.Header.SetSymbol("ag2506")
	md.Header.SeqNum = 1
	md.Body.LastTradedPrice = 7951.0
	gateway.MD.Enqueue(&md)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(responses) == 1 && len(updates) == 1
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, wire.RespNewOrderConfirm, responses[0].Type)
	require.Equal(t, req.OrderID, responses[0].OrderID)
	require.Equal(t, "ag2506", updates[0].Header.SymbolString())
	require.Equal(t, 7951.0, updates[0].Body.LastTradedPrice)
}

func TestConnectorOrderIDRange(t *testing.T) {
	cfg := testTopology(0x4C5B10)

	gateway, err := CreateAll(cfg)
	require.NoError(t, err)
	defer gateway.Destroy()

	engine, err := Attach(cfg)
	require.NoError(t, err)
	defer engine.Close()

	id := engine.NextOrderID()
	require.Equal(t, uint32(engine.ClientID())*OrderIDRange+1, id)
	require.Equal(t, id+1, engine.NextOrderID())
}

func TestAttachFailsFastWithoutGateway(t *testing.T) {
	cfg := testTopology(0x4C5BF0)

	_, err := Attach(cfg)
	require.Error(t, err, "attach must fail when no gateway created the segments")
	require.Contains(t, err.Error(), "market data queue")
}
