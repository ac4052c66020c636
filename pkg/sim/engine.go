// Package sim is the simulated counter: a small matching engine the gateway
// runs instead of a live exchange. It consumes order requests and produces
// the same response stream a real counter would, which lets every other
// process run unmodified against it.
package sim

import (
	"strconv"
	"time"

	"github.com/luxfi/log"
	"github.com/shopspring/decimal"

	"github.com/luxfi/hft/pkg/wire"
)

// Error codes stamped on reject responses.
const (
	ErrCodeUnknownOrder   = 1001
	ErrCodeBadQuantity    = 1002
	ErrCodeUnsupportedReq = 1003
)

// Engine matches incoming requests per symbol and emits responses.
// It is driven from the gateway's single request-consumer loop and is not
// goroutine safe.
type Engine struct {
	books   map[string]*book
	tradeID uint64
	logger  log.Logger
}

// NewEngine returns an empty simulated counter.
func NewEngine() *Engine {
	return &Engine{
		books:  make(map[string]*book),
		logger: log.Root().New("module", "sim"),
	}
}

// Process handles one request and returns the responses to publish, in
// order. Trade confirms are emitted for both sides of every fill so each
// owner sees its own order ID.
func (e *Engine) Process(req *wire.RequestMsg) []wire.ResponseMsg {
	switch req.Type {
	case wire.ReqNewOrder:
		return e.newOrder(req)
	case wire.ReqCancelOrder:
		return e.cancelOrder(req)
	default:
		return []wire.ResponseMsg{e.reject(req, wire.RespORSReject, ErrCodeUnsupportedReq)}
	}
}

func (e *Engine) newOrder(req *wire.RequestMsg) []wire.ResponseMsg {
	if req.Quantity <= 0 {
		return []wire.ResponseMsg{e.reject(req, wire.RespOrderError, ErrCodeBadQuantity)}
	}

	symbol := req.Contract.SymbolString()
	b, ok := e.books[symbol]
	if !ok {
		b = newBook(symbol)
		e.books[symbol] = b
		e.logger.Debug("opened book", "symbol", symbol)
	}

	s := bid
	if req.TransactionType == wire.SideSell {
		s = ask
	}
	price := decimal.NewFromFloat(req.Price)

	out := []wire.ResponseMsg{e.respond(req, wire.RespNewOrderConfirm, req.Quantity, req.Price)}

	fills, remaining := b.cross(s, price, req.Quantity)
	for _, f := range fills {
		e.tradeID++
		px, _ := f.price.Float64()
		// Taker side.
		taker := e.respond(req, wire.RespTradeConfirm, f.quantity, px)
		taker.ExchangeTradeID = tradeIDBytes(e.tradeID)
		out = append(out, taker)
		// Maker side routes by the resting order's ID.
		maker := taker
		maker.OrderID = f.makerID
		maker.Side = otherSide(req.TransactionType)
		out = append(out, maker)
	}

	if remaining > 0 {
		if req.Duration == wire.DurIOC || req.Duration == wire.DurFAK {
			expired := e.respond(req, wire.RespOrderExpired, remaining, req.Price)
			out = append(out, expired)
		} else {
			b.rest(req.OrderID, s, price, remaining)
		}
	}
	return out
}

func (e *Engine) cancelOrder(req *wire.RequestMsg) []wire.ResponseMsg {
	symbol := req.Contract.SymbolString()
	b, ok := e.books[symbol]
	if !ok {
		return []wire.ResponseMsg{e.reject(req, wire.RespCancelReject, ErrCodeUnknownOrder)}
	}
	o, ok := b.cancel(req.OrderID)
	if !ok {
		return []wire.ResponseMsg{e.reject(req, wire.RespCancelReject, ErrCodeUnknownOrder)}
	}
	px, _ := o.price.Float64()
	return []wire.ResponseMsg{e.respond(req, wire.RespCancelConfirm, o.remaining, px)}
}

// Book returns the resting top of book for symbol; zeros when one side is
// empty. Used by the gateway to publish simulator marks.
func (e *Engine) Book(symbol string) (bestBid, bestAsk float64) {
	b, ok := e.books[symbol]
	if !ok {
		return 0, 0
	}
	if p, ok := b.bestBid(); ok {
		bestBid, _ = p.Float64()
	}
	if p, ok := b.bestAsk(); ok {
		bestAsk, _ = p.Float64()
	}
	return bestBid, bestAsk
}

// OpenOrders reports how many orders rest on symbol's book.
func (e *Engine) OpenOrders(symbol string) int {
	b, ok := e.books[symbol]
	if !ok {
		return 0
	}
	return len(b.orders)
}

func (e *Engine) respond(req *wire.RequestMsg, rt wire.ResponseType, qty int32, price float64) wire.ResponseMsg {
	var resp wire.ResponseMsg
	resp.Type = rt
	resp.OrderID = req.OrderID
	resp.Quantity = qty
	resp.Price = price
	resp.Timestamp = uint64(time.Now().UnixNano())
	resp.Side = req.TransactionType
	resp.Symbol = req.Contract.Symbol
	resp.AccountID = req.AccountID
	resp.Product = req.Product
	resp.StrategyID = req.StrategyID
	resp.OpenClose = openCloseOf(req.PosDirection)
	return resp
}

func (e *Engine) reject(req *wire.RequestMsg, rt wire.ResponseType, code uint32) wire.ResponseMsg {
	resp := e.respond(req, rt, req.Quantity, req.Price)
	resp.ErrorCode = code
	return resp
}

func openCloseOf(d wire.PositionDirection) wire.OpenCloseType {
	switch d {
	case wire.PosOpen:
		return wire.OCOpen
	case wire.PosClose:
		return wire.OCClose
	case wire.PosCloseIntraday:
		return wire.OCCloseToday
	default:
		return wire.OCNull
	}
}

func otherSide(s uint8) uint8 {
	if s == wire.SideBuy {
		return wire.SideSell
	}
	return wire.SideBuy
}

// tradeIDBytes renders a counter as the NUL-terminated exchange trade ID.
func tradeIDBytes(id uint64) [wire.MaxTradeID]byte {
	var out [wire.MaxTradeID]byte
	copy(out[:len(out)-1], strconv.FormatUint(id, 10))
	return out
}
