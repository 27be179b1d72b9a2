// Package domain holds the data types shared by the order book, the
// engine and the transport layers: prices, quantities, orders, fills and
// market-data snapshots.
package domain

// Price is a nanodollar amount (1 USD = 1e9). All match-path arithmetic
// is done in Price; float64 is only ever used for display conversion.
type Price uint64

// NanosPerDollar is the conversion factor between Price and USD.
const NanosPerDollar = 1_000_000_000

// Dollars renders p as a decimal dollar amount, for display only.
func (p Price) Dollars() float64 {
	return float64(p) / NanosPerDollar
}

// Quantity is a share count.
type Quantity uint64

// AssetType tags the instrument class of an order. The engine keys its
// book registry on symbol, never on AssetType; this field exists so an
// Order carries enough information for a future multi-asset venue
// without the book registry itself becoming asset-aware now.
type AssetType uint8

const (
	Equities AssetType = iota
)

func (a AssetType) String() string {
	switch a {
	case Equities:
		return "EQUITIES"
	default:
		return "UNKNOWN"
	}
}

// Side is the direction of an order.
type Side uint8

const (
	Buy Side = iota + 1
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// OrderType distinguishes resting limit orders from market orders, which
// fill what they can immediately and have any remainder REJECTED (see
// internal/book). Every order accepted off the wire today is a LIMIT
// order; MARKET exists for internal/book callers (tests, future wire
// extensions) and is never rested.
type OrderType uint8

const (
	LimitOrder OrderType = iota + 1
	MarketOrder
)

func (t OrderType) String() string {
	switch t {
	case LimitOrder:
		return "LIMIT"
	case MarketOrder:
		return "MARKET"
	default:
		return "UNKNOWN"
	}
}

// OrderStatus is the lifecycle state of an Order. FILLED and CANCELLED
// are terminal and imply RemainingQuantity == 0. REJECTED is terminal
// for a MARKET order that could not be fully filled and is left with its
// actual remaining quantity (see internal/book).
type OrderStatus uint8

const (
	New OrderStatus = iota + 1
	PartiallyFilled
	Filled
	Cancelled
	Rejected
)

func (s OrderStatus) String() string {
	switch s {
	case New:
		return "NEW"
	case PartiallyFilled:
		return "PARTIAL"
	case Filled:
		return "FILLED"
	case Cancelled:
		return "CANCELLED"
	case Rejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}
