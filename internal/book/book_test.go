package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcore/internal/domain"
)

var nextTestID uint64

func newOrder(side domain.Side, typ domain.OrderType, price domain.Price, qty domain.Quantity) *domain.Order {
	nextTestID++
	return &domain.Order{
		OrderID:           nextTestID,
		Symbol:            "TEST",
		Side:              side,
		Type:              typ,
		Price:             price,
		Quantity:          qty,
		RemainingQuantity: qty,
		Status:            domain.New,
		ClientID:          "client_test",
	}
}

func sumFillQty(fills []domain.Fill) domain.Quantity {
	var total domain.Quantity
	for _, f := range fills {
		total += f.Quantity
	}
	return total
}

// TestSimpleCross matches spec.md §8 scenario 1.
func TestSimpleCross(t *testing.T) {
	b := New("AAPL")

	resting := newOrder(domain.Sell, domain.LimitOrder, 150_000_000_000, 100)
	b.AddOrder(resting)

	taker := newOrder(domain.Buy, domain.LimitOrder, 150_000_000_000, 100)
	fills := b.AddOrder(taker)

	require.Len(t, fills, 1)
	assert.Equal(t, domain.Quantity(100), fills[0].Quantity)
	assert.Equal(t, domain.Price(150_000_000_000), fills[0].Price)
	assert.Equal(t, domain.Filled, resting.Status)
	assert.Equal(t, domain.Filled, taker.Status)

	snap := b.Snapshot()
	assert.Equal(t, domain.Price(0), snap.BidPrice)
	assert.Equal(t, domain.Price(0), snap.AskPrice)
	assert.Equal(t, domain.Quantity(100), snap.LastTradeQuantity)
	assert.Equal(t, domain.Price(150_000_000_000), snap.LastTradePrice)
}

// TestPartialFillRests matches spec.md §8 scenario 2.
func TestPartialFillRests(t *testing.T) {
	b := New("MSFT")

	resting := newOrder(domain.Sell, domain.LimitOrder, 300_000_000_000, 50)
	b.AddOrder(resting)

	taker := newOrder(domain.Buy, domain.LimitOrder, 300_000_000_000, 200)
	fills := b.AddOrder(taker)

	require.Len(t, fills, 1)
	assert.Equal(t, domain.Quantity(50), fills[0].Quantity)
	assert.Equal(t, domain.PartiallyFilled, taker.Status)
	assert.Equal(t, domain.Quantity(150), taker.RemainingQuantity)
	assert.Equal(t, domain.Filled, resting.Status)

	snap := b.Snapshot()
	assert.Equal(t, domain.Price(300_000_000_000), snap.BidPrice)
	assert.Equal(t, domain.Quantity(150), snap.BidQuantity)
	assert.Equal(t, domain.Price(0), snap.AskPrice)
}

// TestPriceTimePriority matches spec.md §8 scenario 3.
func TestPriceTimePriority(t *testing.T) {
	b := New("TSLA")

	orderA := newOrder(domain.Sell, domain.LimitOrder, 250_000_000_000, 100)
	b.AddOrder(orderA)
	orderB := newOrder(domain.Sell, domain.LimitOrder, 250_000_000_000, 100)
	b.AddOrder(orderB)

	taker := newOrder(domain.Buy, domain.LimitOrder, 250_000_000_000, 150)
	fills := b.AddOrder(taker)

	require.Len(t, fills, 2)
	assert.Equal(t, orderA.OrderID, fills[0].SellOrderID)
	assert.Equal(t, domain.Quantity(100), fills[0].Quantity)
	assert.Equal(t, orderB.OrderID, fills[1].SellOrderID)
	assert.Equal(t, domain.Quantity(50), fills[1].Quantity)

	assert.Equal(t, domain.Filled, orderA.Status)
	assert.Equal(t, domain.PartiallyFilled, orderB.Status)
	assert.Equal(t, domain.Quantity(50), orderB.RemainingQuantity)
}

// TestNoCrossRests matches spec.md §8 scenario 4.
func TestNoCrossRests(t *testing.T) {
	b := New("AAPL")

	b.AddOrder(newOrder(domain.Sell, domain.LimitOrder, 151_000_000_000, 100))

	taker := newOrder(domain.Buy, domain.LimitOrder, 150_000_000_000, 100)
	fills := b.AddOrder(taker)

	assert.Empty(t, fills)
	assert.Equal(t, domain.New, taker.Status)
	assert.Equal(t, domain.Quantity(100), taker.RemainingQuantity)

	snap := b.Snapshot()
	assert.Less(t, uint64(snap.BidPrice), uint64(snap.AskPrice))
	assert.Equal(t, domain.Price(150_000_000_000), snap.BidPrice)
	assert.Equal(t, domain.Price(151_000_000_000), snap.AskPrice)
}

// TestMultiLevelSweep matches spec.md §8 scenario 5.
func TestMultiLevelSweep(t *testing.T) {
	b := New("AAPL")

	b.AddOrder(newOrder(domain.Sell, domain.LimitOrder, 150_000_000_000, 100))
	b.AddOrder(newOrder(domain.Sell, domain.LimitOrder, 151_000_000_000, 100))
	b.AddOrder(newOrder(domain.Sell, domain.LimitOrder, 152_000_000_000, 100))

	taker := newOrder(domain.Buy, domain.LimitOrder, 152_000_000_000, 250)
	fills := b.AddOrder(taker)

	require.Len(t, fills, 3)
	assert.Equal(t, domain.Price(150_000_000_000), fills[0].Price)
	assert.Equal(t, domain.Quantity(100), fills[0].Quantity)
	assert.Equal(t, domain.Price(151_000_000_000), fills[1].Price)
	assert.Equal(t, domain.Quantity(100), fills[1].Quantity)
	assert.Equal(t, domain.Price(152_000_000_000), fills[2].Price)
	assert.Equal(t, domain.Quantity(50), fills[2].Quantity)

	asks := b.AskLevels()
	require.Len(t, asks, 1)
	assert.Equal(t, domain.Price(152_000_000_000), asks[0].Price)
	require.Len(t, asks[0].Orders, 1)
	assert.Equal(t, domain.Quantity(50), asks[0].Orders[0].RemainingQuantity)
}

// TestSnapshotBeforeAnyTrades matches spec.md §8 scenario 6.
func TestSnapshotBeforeAnyTrades(t *testing.T) {
	b := New("AAPL")
	snap := b.Snapshot()
	assert.Equal(t, domain.Price(0), snap.BidPrice)
	assert.Equal(t, domain.Quantity(0), snap.BidQuantity)
	assert.Equal(t, domain.Price(0), snap.AskPrice)
	assert.Equal(t, domain.Quantity(0), snap.AskQuantity)
	assert.Equal(t, domain.Price(0), snap.LastTradePrice)
	assert.Equal(t, domain.Quantity(0), snap.LastTradeQuantity)
}

func TestSnapshotIdempotent(t *testing.T) {
	b := New("AAPL")
	b.AddOrder(newOrder(domain.Buy, domain.LimitOrder, 100_000_000_000, 10))

	s1 := b.Snapshot()
	s2 := b.Snapshot()
	s1.TimestampNs, s2.TimestampNs = 0, 0
	assert.Equal(t, s1, s2)
}

func TestCancelOrderRemovesLiquidityDefensively(t *testing.T) {
	b := New("AAPL")

	resting := newOrder(domain.Sell, domain.LimitOrder, 100_000_000_000, 50)
	b.AddOrder(resting)

	ok := b.CancelOrder(resting.OrderID)
	require.True(t, ok)
	assert.Equal(t, domain.Cancelled, resting.Status)
	assert.Equal(t, domain.Quantity(0), resting.RemainingQuantity)

	// The level still lists the cancelled order (spec.md §9): matching
	// must skip it defensively rather than fill against it.
	asks := b.AskLevels()
	require.Len(t, asks, 1)
	require.Len(t, asks[0].Orders, 1)

	taker := newOrder(domain.Buy, domain.LimitOrder, 100_000_000_000, 50)
	fills := b.AddOrder(taker)
	assert.Empty(t, fills)
	assert.Equal(t, domain.New, taker.Status)

	// The cancelled order is discarded from the level, which is now
	// empty and removed from the tree, and the taker rests instead.
	assert.Empty(t, b.AskLevels())
	bids := b.BidLevels()
	require.Len(t, bids, 1)
	assert.Equal(t, domain.Quantity(50), sumRemaining(bids[0].Orders))
}

func TestCancelUnknownOrderReturnsFalse(t *testing.T) {
	b := New("AAPL")
	assert.False(t, b.CancelOrder(999))
}

func TestMarketOrderSweepsWithoutResting(t *testing.T) {
	b := New("AAPL")
	b.AddOrder(newOrder(domain.Sell, domain.LimitOrder, 100_000_000_000, 40))

	taker := newOrder(domain.Buy, domain.MarketOrder, 0, 100)
	fills := b.AddOrder(taker)

	require.Len(t, fills, 1)
	assert.Equal(t, domain.Quantity(40), sumFillQty(fills))
	assert.Equal(t, domain.Rejected, taker.Status)
	assert.Equal(t, domain.Quantity(60), taker.RemainingQuantity)
	assert.Empty(t, b.BidLevels(), "a MARKET order must never rest")
}

func TestFillIDsAreMonotonic(t *testing.T) {
	b := New("AAPL")
	b.AddOrder(newOrder(domain.Sell, domain.LimitOrder, 100_000_000_000, 10))
	b.AddOrder(newOrder(domain.Sell, domain.LimitOrder, 100_000_000_000, 10))

	taker := newOrder(domain.Buy, domain.LimitOrder, 100_000_000_000, 20)
	fills := b.AddOrder(taker)

	require.Len(t, fills, 2)
	assert.Less(t, fills[0].FillID, fills[1].FillID)
}
