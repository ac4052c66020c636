package wire

import (
	"testing"
	"unsafe"
)

// These tests pin the byte layout shared with the C++ gateway. A failure
// here means the Go structs drifted from the committed ABI; shipping such a
// build corrupts every process on the queues with no runtime error.

func assertSize(t *testing.T, name string, got, want uintptr) {
	t.Helper()
	if got != want {
		t.Errorf("sizeof(%s) = %d, want %d", name, got, want)
	}
}

func assertOffset(t *testing.T, name string, got, want uintptr) {
	t.Helper()
	if got != want {
		t.Errorf("offsetof(%s) = %d, want %d", name, got, want)
	}
}

func TestDepthLevelLayout(t *testing.T) {
	assertSize(t, "DepthLevel", unsafe.Sizeof(DepthLevel{}), 16)
	var d DepthLevel
	assertOffset(t, "DepthLevel.Quantity", unsafe.Offsetof(d.Quantity), 0)
	assertOffset(t, "DepthLevel.OrderCount", unsafe.Offsetof(d.OrderCount), 4)
	assertOffset(t, "DepthLevel.Price", unsafe.Offsetof(d.Price), 8)
}

func TestMDHeaderLayout(t *testing.T) {
	assertSize(t, "MDHeader", unsafe.Sizeof(MDHeader{}), 96)
	var h MDHeader
	assertOffset(t, "MDHeader.ExchangeTS", unsafe.Offsetof(h.ExchangeTS), 0)
	assertOffset(t, "MDHeader.LocalTS", unsafe.Offsetof(h.LocalTS), 8)
	assertOffset(t, "MDHeader.SeqNum", unsafe.Offsetof(h.SeqNum), 16)
	assertOffset(t, "MDHeader.ReportSeqNum", unsafe.Offsetof(h.ReportSeqNum), 24)
	assertOffset(t, "MDHeader.TokenID", unsafe.Offsetof(h.TokenID), 32)
	assertOffset(t, "MDHeader.Symbol", unsafe.Offsetof(h.Symbol), 40)
	assertOffset(t, "MDHeader.SymbolID", unsafe.Offsetof(h.SymbolID), 88)
	assertOffset(t, "MDHeader.Exchange", unsafe.Offsetof(h.Exchange), 90)
}

func TestMDBodyLayout(t *testing.T) {
	assertSize(t, "MDBody", unsafe.Sizeof(MDBody{}), 720)
	var b MDBody
	assertOffset(t, "MDBody.NewPrice", unsafe.Offsetof(b.NewPrice), 0)
	assertOffset(t, "MDBody.OldPrice", unsafe.Offsetof(b.OldPrice), 8)
	assertOffset(t, "MDBody.LastTradedPrice", unsafe.Offsetof(b.LastTradedPrice), 16)
	assertOffset(t, "MDBody.LastTradedTime", unsafe.Offsetof(b.LastTradedTime), 24)
	assertOffset(t, "MDBody.TotalTradedVal", unsafe.Offsetof(b.TotalTradedVal), 32)
	assertOffset(t, "MDBody.TotalTradedQty", unsafe.Offsetof(b.TotalTradedQty), 40)
	assertOffset(t, "MDBody.Yield", unsafe.Offsetof(b.Yield), 48)
	assertOffset(t, "MDBody.Bids", unsafe.Offsetof(b.Bids), 56)
	assertOffset(t, "MDBody.Asks", unsafe.Offsetof(b.Asks), 376)
	assertOffset(t, "MDBody.NewQuantity", unsafe.Offsetof(b.NewQuantity), 696)
	assertOffset(t, "MDBody.OldQuantity", unsafe.Offsetof(b.OldQuantity), 700)
	assertOffset(t, "MDBody.LastTradedQty", unsafe.Offsetof(b.LastTradedQty), 704)
	assertOffset(t, "MDBody.ValidBids", unsafe.Offsetof(b.ValidBids), 708)
	assertOffset(t, "MDBody.ValidAsks", unsafe.Offsetof(b.ValidAsks), 709)
	assertOffset(t, "MDBody.UpdateLevel", unsafe.Offsetof(b.UpdateLevel), 710)
	assertOffset(t, "MDBody.EndOfPacket", unsafe.Offsetof(b.EndOfPacket), 711)
	assertOffset(t, "MDBody.Side", unsafe.Offsetof(b.Side), 712)
	assertOffset(t, "MDBody.UpdateType", unsafe.Offsetof(b.UpdateType), 713)
	assertOffset(t, "MDBody.FeedType", unsafe.Offsetof(b.FeedType), 714)
}

func TestMarketUpdateLayout(t *testing.T) {
	assertSize(t, "MarketUpdate", unsafe.Sizeof(MarketUpdate{}), 816)
	var m MarketUpdate
	assertOffset(t, "MarketUpdate.Header", unsafe.Offsetof(m.Header), 0)
	assertOffset(t, "MarketUpdate.Body", unsafe.Offsetof(m.Body), 96)
}

func TestContractDescriptionLayout(t *testing.T) {
	assertSize(t, "ContractDescription", unsafe.Sizeof(ContractDescription{}), 96)
	var c ContractDescription
	assertOffset(t, "ContractDescription.InstrumentName", unsafe.Offsetof(c.InstrumentName), 0)
	assertOffset(t, "ContractDescription.Symbol", unsafe.Offsetof(c.Symbol), 32)
	assertOffset(t, "ContractDescription.ExpiryDate", unsafe.Offsetof(c.ExpiryDate), 84)
	assertOffset(t, "ContractDescription.StrikePrice", unsafe.Offsetof(c.StrikePrice), 88)
	assertOffset(t, "ContractDescription.OptionType", unsafe.Offsetof(c.OptionType), 92)
	assertOffset(t, "ContractDescription.CALevel", unsafe.Offsetof(c.CALevel), 94)
}

func TestRequestMsgLayout(t *testing.T) {
	assertSize(t, "RequestMsg", unsafe.Sizeof(RequestMsg{}), 256)
	var m RequestMsg
	assertOffset(t, "RequestMsg.Contract", unsafe.Offsetof(m.Contract), 0)
	assertOffset(t, "RequestMsg.Type", unsafe.Offsetof(m.Type), 96)
	assertOffset(t, "RequestMsg.OrderType", unsafe.Offsetof(m.OrderType), 100)
	assertOffset(t, "RequestMsg.Duration", unsafe.Offsetof(m.Duration), 104)
	assertOffset(t, "RequestMsg.PriceType", unsafe.Offsetof(m.PriceType), 108)
	assertOffset(t, "RequestMsg.PosDirection", unsafe.Offsetof(m.PosDirection), 112)
	assertOffset(t, "RequestMsg.OrderID", unsafe.Offsetof(m.OrderID), 116)
	assertOffset(t, "RequestMsg.Token", unsafe.Offsetof(m.Token), 120)
	assertOffset(t, "RequestMsg.Quantity", unsafe.Offsetof(m.Quantity), 124)
	assertOffset(t, "RequestMsg.QuantityFilled", unsafe.Offsetof(m.QuantityFilled), 128)
	assertOffset(t, "RequestMsg.DisclosedQty", unsafe.Offsetof(m.DisclosedQty), 132)
	assertOffset(t, "RequestMsg.Price", unsafe.Offsetof(m.Price), 136)
	assertOffset(t, "RequestMsg.Timestamp", unsafe.Offsetof(m.Timestamp), 144)
	assertOffset(t, "RequestMsg.AccountID", unsafe.Offsetof(m.AccountID), 152)
	assertOffset(t, "RequestMsg.TransactionType", unsafe.Offsetof(m.TransactionType), 163)
	assertOffset(t, "RequestMsg.ExchangeType", unsafe.Offsetof(m.ExchangeType), 164)
	assertOffset(t, "RequestMsg.Reserved", unsafe.Offsetof(m.Reserved), 165)
	assertOffset(t, "RequestMsg.Product", unsafe.Offsetof(m.Product), 185)
	assertOffset(t, "RequestMsg.StrategyID", unsafe.Offsetof(m.StrategyID), 220)
}

func TestResponseMsgLayout(t *testing.T) {
	assertSize(t, "ResponseMsg", unsafe.Sizeof(ResponseMsg{}), 176)
	var m ResponseMsg
	assertOffset(t, "ResponseMsg.Type", unsafe.Offsetof(m.Type), 0)
	assertOffset(t, "ResponseMsg.SubType", unsafe.Offsetof(m.SubType), 4)
	assertOffset(t, "ResponseMsg.OrderID", unsafe.Offsetof(m.OrderID), 8)
	assertOffset(t, "ResponseMsg.ErrorCode", unsafe.Offsetof(m.ErrorCode), 12)
	assertOffset(t, "ResponseMsg.Quantity", unsafe.Offsetof(m.Quantity), 16)
	assertOffset(t, "ResponseMsg.Price", unsafe.Offsetof(m.Price), 24)
	assertOffset(t, "ResponseMsg.Timestamp", unsafe.Offsetof(m.Timestamp), 32)
	assertOffset(t, "ResponseMsg.Side", unsafe.Offsetof(m.Side), 40)
	assertOffset(t, "ResponseMsg.Symbol", unsafe.Offsetof(m.Symbol), 41)
	assertOffset(t, "ResponseMsg.AccountID", unsafe.Offsetof(m.AccountID), 91)
	assertOffset(t, "ResponseMsg.ExchangeOrderID", unsafe.Offsetof(m.ExchangeOrderID), 104)
	assertOffset(t, "ResponseMsg.ExchangeTradeID", unsafe.Offsetof(m.ExchangeTradeID), 112)
	assertOffset(t, "ResponseMsg.OpenClose", unsafe.Offsetof(m.OpenClose), 133)
	assertOffset(t, "ResponseMsg.ExchangeID", unsafe.Offsetof(m.ExchangeID), 134)
	assertOffset(t, "ResponseMsg.Product", unsafe.Offsetof(m.Product), 135)
	assertOffset(t, "ResponseMsg.StrategyID", unsafe.Offsetof(m.StrategyID), 168)
}

func TestEnumValues(t *testing.T) {
	// Spot checks on values that are easy to get wrong because the C++
	// enums do not all start at zero or one.
	if ReqCancelOrder != 2 {
		t.Errorf("ReqCancelOrder = %d, want 2", ReqCancelOrder)
	}
	if OrdLimit != 1 || OrdBestPrice != 5 {
		t.Errorf("OrderType values drifted: limit=%d best=%d", OrdLimit, OrdBestPrice)
	}
	if PxYield != 9 {
		t.Errorf("PxYield = %d, want 9", PxYield)
	}
	if PosOpen != 10 || PosError != 13 {
		t.Errorf("PositionDirection values drifted: open=%d err=%d", PosOpen, PosError)
	}
	if RespTradeConfirm != 4 || RespNull != 18 {
		t.Errorf("ResponseType values drifted: trade=%d null=%d", RespTradeConfirm, RespNull)
	}
	if ExchGFEX != 6 {
		t.Errorf("ExchGFEX = %d, want 6", ExchGFEX)
	}
	if ExchangeCodeSHFE != 57 || ExchangeCodeGFEX != 61 {
		t.Errorf("exchange codes drifted: shfe=%d gfex=%d", ExchangeCodeSHFE, ExchangeCodeGFEX)
	}
	if ExTypeResponseMsgExchg != 12 {
		t.Errorf("ExTypeResponseMsgExchg = %d, want 12", ExTypeResponseMsgExchg)
	}
}
