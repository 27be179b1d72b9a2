// Package engine implements the dispatch loop that owns every symbol's
// order book, allocates order identifiers, and fans execution and
// market-data events out to the drop-copy and multicast egress paths.
//
// Grounded on the teacher's internal/net/server.go sessionHandler: one
// goroutine drains a channel and is the sole mutator of shared state, so
// the book registry and the order-id counter need no lock, exactly
// spec.md §5's single-threaded-event-loop guarantee, recreated with a
// goroutine instead of a literal single OS thread.
package engine

import (
	"context"

	"github.com/rs/zerolog/log"

	"matchcore/internal/book"
	"matchcore/internal/domain"
)

// DropCopyPublisher is the audit-stream egress the engine fans every
// order update and fill out to. Implemented by internal/dropcopy.
type DropCopyPublisher interface {
	BroadcastOrderUpdate(order *domain.Order)
	BroadcastFill(fill domain.Fill)
}

// MarketDataTransport is a dumb, best-effort line sink: the engine
// formats the line, the transport just tries to send it. Implemented by
// internal/multicast (and, for request/response recovery, by whatever
// per-connection handle internal/mdrecovery hands in).
type MarketDataTransport interface {
	Send(line string) error
}

// MetricsSink receives engine-internal counters. Nil-safe: every call
// site guards on e.metrics != nil, and a nil MetricsSink is perfectly
// valid for tests.
type MetricsSink interface {
	OrdersProcessed()
	FillsEmitted(n int)
	OrderRejected()
}

// Engine owns the book registry exclusively; a book owns its own orders.
// Every field below is touched only from the dispatcher goroutine
// started by Run; see jobs.
type Engine struct {
	books       map[string]*book.OrderBook
	nextOrderID uint64

	dropCopy  DropCopyPublisher
	multicast MarketDataTransport
	metrics   MetricsSink

	jobs chan func()
}

// New constructs an Engine. multicast and metrics may be nil (metrics is
// always optional; multicast being nil simply drops every publish).
func New(dropCopy DropCopyPublisher, multicast MarketDataTransport, metrics MetricsSink) *Engine {
	return &Engine{
		books:       make(map[string]*book.OrderBook),
		nextOrderID: 1,
		dropCopy:    dropCopy,
		multicast:   multicast,
		metrics:     metrics,
		jobs:        make(chan func(), 1024),
	}
}

// Run drains the job queue until ctx is cancelled. It must run on
// exactly one goroutine for the life of the Engine.
func (e *Engine) Run(ctx context.Context) error {
	log.Info().Msg("engine dispatch loop starting")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("engine dispatch loop stopping")
			return nil
		case job := <-e.jobs:
			job()
		}
	}
}

// ProcessOrderRequest parses raw_text from client_id and, if well
// formed, dispatches it to the dispatcher goroutine for matching and
// fan-out. Malformed input is logged and dropped; no reply is ever
// sent on the order-gateway channel, per spec.md §4.C/§7.
func (e *Engine) ProcessOrderRequest(clientID, rawText string) {
	req, err := parseOrderLine(rawText)
	if err != nil {
		log.Warn().Err(err).Str("client_id", clientID).Str("raw", rawText).Msg("dropping malformed order request")
		return
	}
	e.jobs <- func() {
		e.processOrderRequest(clientID, req)
	}
}

func (e *Engine) processOrderRequest(clientID string, req orderRequest) {
	bk := e.bookFor(req.symbol)

	order := &domain.Order{
		OrderID:           e.allocateOrderID(),
		AssetType:         domain.Equities,
		Symbol:            req.symbol,
		Side:              req.side,
		Type:              domain.LimitOrder,
		Quantity:          req.quantity,
		RemainingQuantity: req.quantity,
		Price:             req.price,
		TimestampNs:       nowNs(),
		Status:            domain.New,
		ClientID:          clientID,
	}

	fills := bk.AddOrder(order)

	e.dropCopy.BroadcastOrderUpdate(order)
	for _, fill := range fills {
		e.dropCopy.BroadcastFill(fill)
	}

	if e.metrics != nil {
		e.metrics.OrdersProcessed()
		if len(fills) > 0 {
			e.metrics.FillsEmitted(len(fills))
		}
		if order.Status == domain.Rejected {
			e.metrics.OrderRejected()
		}
	}

	e.PublishMarketData(bk.Snapshot())
}

// CancelOrder cancels order_id on symbol's book. There is no wire
// command for this in spec.md's external interfaces (order
// modification/cancellation over the gateway is out of scope), but the
// operation is part of the order book's contract (spec.md §4.A) and is
// reachable for embedders/tests.
func (e *Engine) CancelOrder(symbol string, orderID uint64) bool {
	result := make(chan bool, 1)
	e.jobs <- func() {
		bk, ok := e.books[symbol]
		if !ok {
			result <- false
			return
		}
		result <- bk.CancelOrder(orderID)
	}
	return <-result
}

// SendMarketDataSnapshot computes symbol's snapshot and sends exactly one
// formatted line to client. Unknown symbols get no reply at all (spec.md
// §4.E/§9): this never lazily creates a book.
func (e *Engine) SendMarketDataSnapshot(client MarketDataTransport, symbol string) {
	e.jobs <- func() {
		bk, ok := e.books[symbol]
		if !ok {
			return
		}
		line := formatSnapshotLine(bk.Snapshot())
		if err := client.Send(line); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("failed to send market data snapshot")
		}
	}
}

// PublishMarketData formats snapshot as a multicast line and hands it to
// the configured best-effort transport. Called from within the
// dispatcher after every processed order request; safe to call directly
// since it does not touch book state.
func (e *Engine) PublishMarketData(snapshot domain.MarketDataSnapshot) {
	if e.multicast == nil {
		return
	}
	line := formatMulticastLine(snapshot)
	if err := e.multicast.Send(line); err != nil {
		log.Warn().Err(err).Str("symbol", snapshot.Symbol).Msg("multicast publish failed")
	}
}

func (e *Engine) bookFor(symbol string) *book.OrderBook {
	bk, ok := e.books[symbol]
	if !ok {
		bk = book.New(symbol)
		e.books[symbol] = bk
	}
	return bk
}

func (e *Engine) allocateOrderID() uint64 {
	id := e.nextOrderID
	e.nextOrderID++
	return id
}
