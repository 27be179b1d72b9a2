package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcore/internal/domain"
)

// recordingDropCopy captures every order update and fill it receives, in
// the order received, so tests can assert on fan-out ordering.
type recordingDropCopy struct {
	mu     sync.Mutex
	orders []*domain.Order
	fills  []domain.Fill
	events []string
}

func (r *recordingDropCopy) BroadcastOrderUpdate(order *domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, order)
	r.events = append(r.events, "order")
}

func (r *recordingDropCopy) BroadcastFill(fill domain.Fill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fills = append(r.fills, fill)
	r.events = append(r.events, "fill")
}

type recordingTransport struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingTransport) Send(line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	return nil
}

func runEngine(t *testing.T, e *Engine) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go e.Run(ctx)
	return cancel
}

func TestParseOrderLineRejectsUnknownSide(t *testing.T) {
	_, err := parseOrderLine("HOLD:AAPL:100:150000000000")
	require.Error(t, err)
}

func TestParseOrderLineRejectsWrongArity(t *testing.T) {
	_, err := parseOrderLine("BUY:AAPL:100")
	require.Error(t, err)
}

func TestParseOrderLineRejectsZeroQuantity(t *testing.T) {
	_, err := parseOrderLine("BUY:AAPL:0:150000000000")
	require.Error(t, err)
}

func TestParseOrderLineAcceptsWellFormed(t *testing.T) {
	req, err := parseOrderLine("SELL:AAPL:100:150000000000\n")
	require.NoError(t, err)
	assert.Equal(t, domain.Sell, req.side)
	assert.Equal(t, "AAPL", req.symbol)
	assert.Equal(t, domain.Quantity(100), req.quantity)
	assert.Equal(t, domain.Price(150000000000), req.price)
}

func TestOrderIDsAreMonotonicAcrossSymbols(t *testing.T) {
	dc := &recordingDropCopy{}
	e := New(dc, nil, nil)
	cancel := runEngine(t, e)
	defer cancel()

	e.ProcessOrderRequest("client_1", "BUY:AAPL:10:100000000000")
	e.ProcessOrderRequest("client_2", "BUY:MSFT:10:100000000000")

	require.Eventually(t, func() bool {
		dc.mu.Lock()
		defer dc.mu.Unlock()
		return len(dc.orders) == 2
	}, time.Second, time.Millisecond)

	dc.mu.Lock()
	defer dc.mu.Unlock()
	assert.Equal(t, uint64(1), dc.orders[0].OrderID)
	assert.Equal(t, uint64(2), dc.orders[1].OrderID)
}

// TestEventOrderingGuarantee checks spec.md §4.B's fan-out: on the
// drop-copy stream each request's order update precedes its fills, and
// each request publishes exactly one snapshot.
func TestEventOrderingGuarantee(t *testing.T) {
	dc := &recordingDropCopy{}
	md := &recordingTransport{}
	e := New(dc, md, nil)
	cancel := runEngine(t, e)
	defer cancel()

	e.ProcessOrderRequest("maker", "SELL:AAPL:100:150000000000")
	require.Eventually(t, func() bool {
		dc.mu.Lock()
		defer dc.mu.Unlock()
		return len(dc.orders) == 1
	}, time.Second, time.Millisecond)

	e.ProcessOrderRequest("taker", "BUY:AAPL:100:150000000000")
	require.Eventually(t, func() bool {
		md.mu.Lock()
		defer md.mu.Unlock()
		return len(md.lines) == 2
	}, time.Second, time.Millisecond)

	dc.mu.Lock()
	defer dc.mu.Unlock()
	// One order update per processed request (maker rest, then taker
	// fill) plus the one fill the taker generated against the maker.
	require.Len(t, dc.orders, 2)
	require.Len(t, dc.fills, 1)
	assert.Equal(t, []string{"order", "order", "fill"}, dc.events)
}

func TestMalformedRequestNeverReachesDispatcher(t *testing.T) {
	dc := &recordingDropCopy{}
	e := New(dc, nil, nil)
	cancel := runEngine(t, e)
	defer cancel()

	e.ProcessOrderRequest("client_1", "NOT_A_VALID_LINE")

	// Give the dispatcher a beat to prove silence, then check nothing
	// landed.
	time.Sleep(20 * time.Millisecond)
	dc.mu.Lock()
	defer dc.mu.Unlock()
	assert.Empty(t, dc.orders)
}

func TestSendMarketDataSnapshotSkipsUnknownSymbol(t *testing.T) {
	dc := &recordingDropCopy{}
	e := New(dc, nil, nil)
	cancel := runEngine(t, e)
	defer cancel()

	client := &recordingTransport{}
	e.SendMarketDataSnapshot(client, "NOSUCHSYMBOL")

	time.Sleep(20 * time.Millisecond)
	client.mu.Lock()
	defer client.mu.Unlock()
	assert.Empty(t, client.lines)
}

func TestSendMarketDataSnapshotRepliesForKnownSymbol(t *testing.T) {
	dc := &recordingDropCopy{}
	e := New(dc, nil, nil)
	cancel := runEngine(t, e)
	defer cancel()

	e.ProcessOrderRequest("client_1", "BUY:AAPL:10:100000000000")
	require.Eventually(t, func() bool {
		dc.mu.Lock()
		defer dc.mu.Unlock()
		return len(dc.orders) == 1
	}, time.Second, time.Millisecond)

	client := &recordingTransport{}
	e.SendMarketDataSnapshot(client, "AAPL")

	require.Eventually(t, func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()
		return len(client.lines) == 1
	}, time.Second, time.Millisecond)
}
