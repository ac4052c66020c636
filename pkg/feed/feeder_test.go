package feed

import (
	"testing"

	"github.com/luxfi/hft/pkg/shm"
	"github.com/luxfi/hft/pkg/wire"
)

func TestSimulatorUpdates(t *testing.T) {
	q, err := shm.CreateMWMRQueue[wire.MarketUpdate](0x4C5C00, 64)
	if err != nil {
		t.Fatalf("CreateMWMRQueue: %v", err)
	}
	defer q.Destroy()

	sim := New(Config{
		Symbol:    "ag2506",
		SymbolID:  7,
		Exchange:  wire.ExchangeCodeSHFE,
		BasePrice: 7950,
		TickSize:  1,
		Depth:     10,
	}, q)

	var md wire.MarketUpdate
	var prevSeq uint64
	for i := 0; i < 50; i++ {
		sim.Next(&md)
		q.Enqueue(&md)

		if md.Header.SeqNum != prevSeq+1 {
			t.Fatalf("SeqNum = %d after %d, not monotonic", md.Header.SeqNum, prevSeq)
		}
		prevSeq = md.Header.SeqNum

		if md.Header.SymbolString() != "ag2506" {
			t.Fatalf("symbol = %q", md.Header.SymbolString())
		}
		if md.Body.ValidBids != 10 || md.Body.ValidAsks != 10 {
			t.Fatalf("depth = %d/%d, want 10/10", md.Body.ValidBids, md.Body.ValidAsks)
		}

		// Book sanity: bids strictly below asks, levels ordered outward.
		if md.Body.Bids[0].Price >= md.Body.Asks[0].Price {
			t.Fatalf("crossed book: bid %v >= ask %v", md.Body.Bids[0].Price, md.Body.Asks[0].Price)
		}
		for l := 1; l < 10; l++ {
			if md.Body.Bids[l].Price >= md.Body.Bids[l-1].Price {
				t.Fatalf("bid levels out of order at %d", l)
			}
			if md.Body.Asks[l].Price <= md.Body.Asks[l-1].Price {
				t.Fatalf("ask levels out of order at %d", l)
			}
		}

		// Price stays inside the 2% band around base.
		if md.Body.LastTradedPrice < 7950*0.98 || md.Body.LastTradedPrice > 7950*1.02 {
			t.Fatalf("price %v escaped the band", md.Body.LastTradedPrice)
		}
	}

	// Everything published is readable back through the queue.
	var out wire.MarketUpdate
	for i := 0; i < 50; i++ {
		if !q.Dequeue(&out) {
			t.Fatalf("Dequeue(%d) returned false", i)
		}
	}
	if !q.IsEmpty() {
		t.Error("queue not drained")
	}
}
