package sim

import (
	"sort"

	"github.com/shopspring/decimal"
)

// side of a resting order.
type side int8

const (
	bid side = iota
	ask
)

// restingOrder is an open order on the book.
type restingOrder struct {
	id        uint32
	side      side
	price     decimal.Decimal
	remaining int32
	arrival   uint64 // time priority within a level
}

// book is a single instrument's limit order book with price-time priority.
// Prices are decimals so level comparisons never suffer float drift; the
// wire format's float64 prices are converted at the edge.
type book struct {
	symbol  string
	bids    []*restingOrder // best (highest price) first
	asks    []*restingOrder // best (lowest price) first
	orders  map[uint32]*restingOrder
	arrival uint64
}

func newBook(symbol string) *book {
	return &book{symbol: symbol, orders: make(map[uint32]*restingOrder)}
}

// fill is one match produced while crossing an incoming order.
type fill struct {
	makerID  uint32
	price    decimal.Decimal
	quantity int32
}

// cross matches an incoming order against the opposite side of the book and
// returns the fills, maker orders first in price-time order. The incoming
// order's remaining quantity after crossing is returned alongside.
func (b *book) cross(s side, price decimal.Decimal, qty int32) ([]fill, int32) {
	var fills []fill

	opposite := &b.asks
	crosses := func(best decimal.Decimal) bool { return price.GreaterThanOrEqual(best) }
	if s == ask {
		opposite = &b.bids
		crosses = func(best decimal.Decimal) bool { return price.LessThanOrEqual(best) }
	}

	for qty > 0 && len(*opposite) > 0 {
		maker := (*opposite)[0]
		if !crosses(maker.price) {
			break
		}
		matched := qty
		if maker.remaining < matched {
			matched = maker.remaining
		}
		fills = append(fills, fill{makerID: maker.id, price: maker.price, quantity: matched})
		qty -= matched
		maker.remaining -= matched
		if maker.remaining == 0 {
			*opposite = (*opposite)[1:]
			delete(b.orders, maker.id)
		}
	}
	return fills, qty
}

// rest places the unmatched remainder on the book.
func (b *book) rest(id uint32, s side, price decimal.Decimal, qty int32) {
	b.arrival++
	o := &restingOrder{id: id, side: s, price: price, remaining: qty, arrival: b.arrival}
	b.orders[id] = o

	queue := &b.bids
	better := func(x, y *restingOrder) bool {
		if !x.price.Equal(y.price) {
			return x.price.GreaterThan(y.price)
		}
		return x.arrival < y.arrival
	}
	if s == ask {
		queue = &b.asks
		better = func(x, y *restingOrder) bool {
			if !x.price.Equal(y.price) {
				return x.price.LessThan(y.price)
			}
			return x.arrival < y.arrival
		}
	}

	*queue = append(*queue, o)
	sort.SliceStable(*queue, func(i, j int) bool { return better((*queue)[i], (*queue)[j]) })
}

// cancel removes an open order, reporting whether it existed.
func (b *book) cancel(id uint32) (*restingOrder, bool) {
	o, ok := b.orders[id]
	if !ok {
		return nil, false
	}
	delete(b.orders, id)

	queue := &b.bids
	if o.side == ask {
		queue = &b.asks
	}
	for i, q := range *queue {
		if q.id == id {
			*queue = append((*queue)[:i], (*queue)[i+1:]...)
			break
		}
	}
	return o, true
}

// bestBid and bestAsk return the top of book, or false on an empty side.
func (b *book) bestBid() (decimal.Decimal, bool) {
	if len(b.bids) == 0 {
		return decimal.Decimal{}, false
	}
	return b.bids[0].price, true
}

func (b *book) bestAsk() (decimal.Decimal, bool) {
	if len(b.asks) == 0 {
		return decimal.Decimal{}, false
	}
	return b.asks[0].price, true
}
