package wire

// DepthLevel is one price level of book depth: 16 bytes, no padding.
type DepthLevel struct {
	Quantity   int32
	OrderCount int32
	Price      float64
}

// MDHeader is the identification half of a market update. 96 bytes.
//
// The symbol array is 48 bytes (MaxSymbolSize-2), followed by the 2-byte
// symbol ID and the 1-byte exchange code; 5 bytes of tail padding bring the
// struct to an 8-byte multiple.
type MDHeader struct {
	ExchangeTS   uint64 // exchange timestamp, ns
	LocalTS      uint64 // local receive timestamp, ns
	SeqNum       uint64
	ReportSeqNum uint64
	TokenID      uint64
	Symbol       [MaxSymbolSize - 2]byte
	SymbolID     uint16
	Exchange     uint8 // ExchangeCode* byte
	_            [5]byte
}

// MDBody is the payload half of a market update. 720 bytes.
type MDBody struct {
	NewPrice        float64
	OldPrice        float64
	LastTradedPrice float64
	LastTradedTime  uint64
	TotalTradedVal  float64
	TotalTradedQty  int64
	Yield           float64
	Bids            [InterestLevels]DepthLevel
	Asks            [InterestLevels]DepthLevel
	NewQuantity     int32
	OldQuantity     int32
	LastTradedQty   int32
	ValidBids       int8
	ValidAsks       int8
	UpdateLevel     int8
	EndOfPacket     uint8
	Side            uint8 // SideBuy / SideSell
	UpdateType      uint8
	FeedType        uint8 // FeedTickByTick / FeedSnapshot
	_               [5]byte
}

// MarketUpdate is the record the feeder publishes on the market data queue:
// header followed by body, 816 bytes.
type MarketUpdate struct {
	Header MDHeader
	Body   MDBody
}

// SetSymbol copies s into the header's fixed symbol array, truncating and
// zero-filling as needed.
func (h *MDHeader) SetSymbol(s string) {
	for i := range h.Symbol {
		h.Symbol[i] = 0
	}
	copy(h.Symbol[:], s)
}

// SymbolString returns the symbol up to the first NUL.
func (h *MDHeader) SymbolString() string {
	return cstr(h.Symbol[:])
}

// cstr interprets b as a NUL-terminated C string.
func cstr(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
