package domain

// MarketDataSnapshot is the instantaneous top-of-book plus last-trade
// view of one symbol. A zero value on any field indicates "no such
// level" or "no trades yet"; there is no separate boolean to track
// presence, matching the original source's convention.
type MarketDataSnapshot struct {
	Symbol             string
	BidPrice           Price
	BidQuantity        Quantity
	AskPrice           Price
	AskQuantity        Quantity
	LastTradePrice     Price
	LastTradeQuantity  Quantity
	TimestampNs        uint64
}
