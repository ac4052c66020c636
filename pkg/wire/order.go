package wire

import "unsafe"

// ContractDescription identifies the traded instrument on a request.
// 96 bytes: 2 bytes of padding follow the 50-byte symbol so ExpiryDate lands
// on a 4-byte boundary.
type ContractDescription struct {
	InstrumentName [MaxInstrName]byte
	Symbol         [MaxSymbolSize]byte
	_              [2]byte
	ExpiryDate     int32
	StrikePrice    int32
	OptionType     [2]byte
	CALevel        int16
}

// RequestMsg is an order request. The C++ definition carries
// __attribute__((aligned(64))): the struct's 224 bytes of fields round up to
// 256, and the alignment additionally pads the queue element (payload +
// 8-byte sequence number) from 264 up to ReqElemSize. The oversized
// alignment has no semantic meaning; it exists only so every binding agrees
// on slot geometry.
type RequestMsg struct {
	Contract        ContractDescription
	Type            RequestType
	OrderType       OrderType
	Duration        OrderDuration
	PriceType       PriceType
	PosDirection    PositionDirection
	OrderID         uint32
	Token           int32
	Quantity        int32
	QuantityFilled  int32
	DisclosedQty    int32
	Price           float64
	Timestamp       uint64
	AccountID       [MaxAccountID + 1]byte
	TransactionType uint8
	ExchangeType    uint8
	Reserved        [20]byte
	Product         [MaxProductSize]byte
	_               [3]byte
	StrategyID      int32
	_               [32]byte // aligned(64) tail: 224 -> 256
}

// ReqElemSize is sizeof(QueueElem<RequestMsg>) on the C++ side: the 64-byte
// struct alignment pads 256+8 up to 320. Pass it as the element size when
// creating or opening the request queue.
const ReqElemSize uintptr = 320

// ResponseMsg is an order/trade response from the gateway. 176 bytes.
type ResponseMsg struct {
	Type            ResponseType
	SubType         SubResponseType
	OrderID         uint32
	ErrorCode       uint32
	Quantity        int32
	_               [4]byte
	Price           float64
	Timestamp       uint64
	Side            uint8
	Symbol          [MaxSymbolSize]byte
	AccountID       [MaxAccountID + 1]byte
	_               [2]byte
	ExchangeOrderID float64
	ExchangeTradeID [MaxTradeID]byte
	OpenClose       OpenCloseType
	ExchangeID      TsExchangeID
	Product         [MaxProductSize]byte
	_               [1]byte
	StrategyID      int32
	_               [4]byte
}

// Committed total sizes, also asserted in layout_test.go. Compile-time
// guards: a drifted struct stops the build before it can corrupt a queue.
const (
	SizeofContractDescription = 96
	SizeofRequestMsg          = 256
	SizeofResponseMsg         = 176
	SizeofDepthLevel          = 16
	SizeofMDHeader            = 96
	SizeofMDBody              = 720
	SizeofMarketUpdate        = 816
)

var (
	_ = [1]struct{}{}[SizeofContractDescription-unsafe.Sizeof(ContractDescription{})]
	_ = [1]struct{}{}[SizeofRequestMsg-unsafe.Sizeof(RequestMsg{})]
	_ = [1]struct{}{}[SizeofResponseMsg-unsafe.Sizeof(ResponseMsg{})]
	_ = [1]struct{}{}[SizeofDepthLevel-unsafe.Sizeof(DepthLevel{})]
	_ = [1]struct{}{}[SizeofMDHeader-unsafe.Sizeof(MDHeader{})]
	_ = [1]struct{}{}[SizeofMDBody-unsafe.Sizeof(MDBody{})]
	_ = [1]struct{}{}[SizeofMarketUpdate-unsafe.Sizeof(MarketUpdate{})]
)

// SetSymbol copies s into the contract's symbol array.
func (c *ContractDescription) SetSymbol(s string) {
	for i := range c.Symbol {
		c.Symbol[i] = 0
	}
	copy(c.Symbol[:], s)
}

// SymbolString returns the contract symbol up to the first NUL.
func (c *ContractDescription) SymbolString() string { return cstr(c.Symbol[:]) }

// SetAccountID copies s into the request's account array.
func (m *RequestMsg) SetAccountID(s string) {
	for i := range m.AccountID {
		m.AccountID[i] = 0
	}
	copy(m.AccountID[:], s)
}

// SymbolString returns the response symbol up to the first NUL.
func (m *ResponseMsg) SymbolString() string { return cstr(m.Symbol[:]) }

// SetSymbol copies s into the response's symbol array.
func (m *ResponseMsg) SetSymbol(s string) {
	for i := range m.Symbol {
		m.Symbol[i] = 0
	}
	copy(m.Symbol[:], s)
}
