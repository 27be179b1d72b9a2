package engine

import (
	"fmt"
	"time"

	"matchcore/internal/domain"
)

// nowNs returns the current wall-clock time in nanoseconds, the unit
// every timestamp field in the wire protocol and the domain types uses.
func nowNs() uint64 {
	return uint64(time.Now().UnixNano())
}

// formatSnapshotLine renders the recovery-server snapshot reply, spec.md
// §4.E: "SNAPSHOT:<sym>:BID:<bq>@<bp>($<bd>):ASK:<aq>@<ap>($<ad>):
// LAST:<lq>@<lp>($<ld>)". No trailing TS field, unlike the multicast line.
func formatSnapshotLine(s domain.MarketDataSnapshot) string {
	return fmt.Sprintf(
		"SNAPSHOT:%s:BID:%d@%d($%.9f):ASK:%d@%d($%.9f):LAST:%d@%d($%.9f)",
		s.Symbol,
		s.BidQuantity, s.BidPrice, s.BidPrice.Dollars(),
		s.AskQuantity, s.AskPrice, s.AskPrice.Dollars(),
		s.LastTradeQuantity, s.LastTradePrice, s.LastTradePrice.Dollars(),
	)
}

// formatMulticastLine renders the multicast market-data line, spec.md
// §4.F: "MD:<sym>:BID:<bq>@<bp>($<bd>):ASK:<aq>@<ap>($<ad>):
// LAST:<lq>@<lp>($<ld>):TS:<ns>".
func formatMulticastLine(s domain.MarketDataSnapshot) string {
	return fmt.Sprintf(
		"MD:%s:BID:%d@%d($%.9f):ASK:%d@%d($%.9f):LAST:%d@%d($%.9f):TS:%d",
		s.Symbol,
		s.BidQuantity, s.BidPrice, s.BidPrice.Dollars(),
		s.AskQuantity, s.AskPrice, s.AskPrice.Dollars(),
		s.LastTradeQuantity, s.LastTradePrice, s.LastTradePrice.Dollars(),
		s.TimestampNs,
	)
}
