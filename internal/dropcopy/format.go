package dropcopy

import (
	"fmt"

	"matchcore/internal/domain"
)

// formatOrderUpdateLine renders spec.md §4.D's order-update line:
// "ORDER:<id>:CLIENT:<cid>:SIDE:<BUY|SELL>:SYMBOL:<sym>:QTY:<q>:
// REMAINING:<r>:PRICE:<p>($<p_dollars>):STATUS:<...>:TS:<ns>".
func formatOrderUpdateLine(order *domain.Order) string {
	return fmt.Sprintf(
		"ORDER:%d:CLIENT:%s:SIDE:%s:SYMBOL:%s:QTY:%d:REMAINING:%d:PRICE:%d($%.9f):STATUS:%s:TS:%d",
		order.OrderID, order.ClientID, order.Side, order.Symbol,
		order.Quantity, order.RemainingQuantity, order.Price, order.Price.Dollars(),
		order.Status, order.TimestampNs,
	)
}

// formatFillLine renders spec.md §4.D's fill line:
// "FILL:<fid>:BUY_ORDER:<boid>:SELL_ORDER:<soid>:SYMBOL:<sym>:QTY:<q>:
// PRICE:<p>($<d>):TS:<ns>".
func formatFillLine(fill domain.Fill) string {
	return fmt.Sprintf(
		"FILL:%d:BUY_ORDER:%d:SELL_ORDER:%d:SYMBOL:%s:QTY:%d:PRICE:%d($%.9f):TS:%d",
		fill.FillID, fill.BuyOrderID, fill.SellOrderID, fill.Symbol,
		fill.Quantity, fill.Price, fill.Price.Dollars(), fill.TimestampNs,
	)
}
