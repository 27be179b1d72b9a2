// Package book implements the per-symbol central limit order book:
// price-time priority matching, partial fills, and snapshot derivation.
//
// Grounded on internal/engine/orderbook.go from the teacher tree (the
// tidwall/btree-backed price ladder, walked via MinMut/GetMut/Set/Delete)
// and on order_book.cpp from original_source/ for the exact match-loop
// semantics (maker price, FIFO-at-price, queue/level cleanup order).
package book

import (
	"time"

	"github.com/tidwall/btree"

	"matchcore/internal/domain"
)

// PriceLevel is one price on one side of the book: the resting orders at
// that price, in strict arrival order (index 0 is the oldest, matched
// first).
type PriceLevel struct {
	Price  domain.Price
	Orders []*domain.Order
}

type priceLevels = btree.BTreeG[*PriceLevel]

// OrderBook is the book for a single symbol. All of its exported methods
// are expected to be called from a single goroutine (the engine's
// dispatcher, see internal/engine); it holds no internal lock, matching
// spec's single-threaded-event-loop model for the match path.
type OrderBook struct {
	symbol string

	// bids sorts highest price first, asks sorts lowest price first. Both
	// use MinMut so "best" is always the tree minimum under each
	// comparator (bids invert the comparison for exactly that reason).
	bids *priceLevels
	asks *priceLevels

	orderMap map[uint64]*domain.Order

	nextFillID uint64

	lastTradePrice    domain.Price
	lastTradeQuantity domain.Quantity
}

// New builds an empty book for symbol.
func New(symbol string) *OrderBook {
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price > b.Price
	})
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price < b.Price
	})
	return &OrderBook{
		symbol:     symbol,
		bids:       bids,
		asks:       asks,
		orderMap:   make(map[uint64]*domain.Order),
		nextFillID: 1,
	}
}

// AddOrder inserts a new order, matches it against the opposite side, and
// rests any LIMIT remainder. Preconditions (enforced by the caller, per
// spec): order.RemainingQuantity == order.Quantity > 0 and
// order.Status == domain.New.
func (b *OrderBook) AddOrder(order *domain.Order) []domain.Fill {
	b.orderMap[order.OrderID] = order

	fills := b.match(order)

	switch order.Type {
	case domain.LimitOrder:
		if order.RemainingQuantity > 0 {
			b.rest(order)
		}
	case domain.MarketOrder:
		// MARKET orders never rest. A leftover remainder after sweeping
		// all available liquidity is rejected rather than left resting
		// or silently dropped (spec.md §9's recommended deviation from
		// the original source, which leaves it in NEW/PARTIALLY_FILLED).
		if order.RemainingQuantity > 0 {
			order.Status = domain.Rejected
		}
	}

	return fills
}

// match walks the opposite side of the book, consuming resting orders
// while they cross, in strict price-time priority. Returns fills in
// execution order.
func (b *OrderBook) match(taker *domain.Order) []domain.Fill {
	var fills []domain.Fill

	levels := b.asks
	if taker.Side == domain.Sell {
		levels = b.bids
	}

	for taker.RemainingQuantity > 0 {
		level, ok := levels.MinMut()
		if !ok {
			break
		}

		if taker.Type == domain.LimitOrder {
			crosses := level.Price <= taker.Price
			if taker.Side == domain.Sell {
				crosses = level.Price >= taker.Price
			}
			if !crosses {
				break
			}
		}

		// Defensive skip: a cancelled order is never removed from its
		// queue (spec.md §9), only zeroed; discard any such head
		// entries before they can produce a zero-quantity fill.
		for len(level.Orders) > 0 && level.Orders[0].RemainingQuantity == 0 {
			level.Orders = level.Orders[1:]
		}
		if len(level.Orders) == 0 {
			levels.Delete(level)
			continue
		}

		maker := level.Orders[0]
		qty := min(taker.RemainingQuantity, maker.RemainingQuantity)
		price := maker.Price

		buyID, sellID := maker.OrderID, taker.OrderID
		if taker.Side == domain.Buy {
			buyID, sellID = taker.OrderID, maker.OrderID
		}

		fill := domain.Fill{
			FillID:      b.nextFillID,
			BuyOrderID:  buyID,
			SellOrderID: sellID,
			Symbol:      b.symbol,
			Quantity:    qty,
			Price:       price,
			TimestampNs: uint64(time.Now().UnixNano()),
		}
		b.nextFillID++
		fills = append(fills, fill)

		taker.RemainingQuantity -= qty
		maker.RemainingQuantity -= qty
		settleStatus(taker)
		settleStatus(maker)

		b.lastTradePrice = price
		b.lastTradeQuantity = qty

		if maker.RemainingQuantity == 0 {
			level.Orders = level.Orders[1:]
		}
		if len(level.Orders) == 0 {
			levels.Delete(level)
		}
	}

	return fills
}

func settleStatus(o *domain.Order) {
	if o.RemainingQuantity == 0 {
		o.Status = domain.Filled
	} else {
		o.Status = domain.PartiallyFilled
	}
}

// rest appends order to the tail of its price level's FIFO queue on its
// own side, creating the level if it doesn't exist yet.
func (b *OrderBook) rest(order *domain.Order) {
	levels := b.bids
	if order.Side == domain.Sell {
		levels = b.asks
	}

	level, ok := levels.GetMut(&PriceLevel{Price: order.Price})
	if ok {
		level.Orders = append(level.Orders, order)
		return
	}
	levels.Set(&PriceLevel{Price: order.Price, Orders: []*domain.Order{order}})
}

// CancelOrder marks order_id cancelled. Returns true iff it was known to
// this book. Per spec.md §9, it does not remove the order from its
// resting queue; the match loop discards it defensively on next touch.
func (b *OrderBook) CancelOrder(orderID uint64) bool {
	order, ok := b.orderMap[orderID]
	if !ok {
		return false
	}
	if order.Status == domain.Filled || order.Status == domain.Cancelled {
		return true
	}
	order.Status = domain.Cancelled
	order.RemainingQuantity = 0
	return true
}

// Order returns the order tracked under id, if any, for status lookups.
func (b *OrderBook) Order(orderID uint64) (*domain.Order, bool) {
	order, ok := b.orderMap[orderID]
	return order, ok
}

// Snapshot computes the current top-of-book and last-trade view. Pure
// query: never mutates book state.
func (b *OrderBook) Snapshot() domain.MarketDataSnapshot {
	snap := domain.MarketDataSnapshot{
		Symbol:            b.symbol,
		LastTradePrice:    b.lastTradePrice,
		LastTradeQuantity: b.lastTradeQuantity,
		TimestampNs:       uint64(time.Now().UnixNano()),
	}

	if level, ok := b.bids.MinMut(); ok {
		snap.BidPrice = level.Price
		snap.BidQuantity = sumRemaining(level.Orders)
	}
	if level, ok := b.asks.MinMut(); ok {
		snap.AskPrice = level.Price
		snap.AskQuantity = sumRemaining(level.Orders)
	}

	return snap
}

func sumRemaining(orders []*domain.Order) domain.Quantity {
	var total domain.Quantity
	for _, o := range orders {
		total += o.RemainingQuantity
	}
	return total
}

// BidLevels and AskLevels return the resting price levels in the book's
// own priority order (bids high-to-low, asks low-to-high), for tests and
// diagnostics. Callers must not mutate the returned slices' contents.
func (b *OrderBook) BidLevels() []*PriceLevel {
	return collect(b.bids)
}

func (b *OrderBook) AskLevels() []*PriceLevel {
	return collect(b.asks)
}

func collect(levels *priceLevels) []*PriceLevel {
	return levels.Items()
}
