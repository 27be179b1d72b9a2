package domain

import "fmt"

// Order is a single order tracked by one symbol's book for its entire
// lifetime: created on engine intake, mutated only by its owning book's
// AddOrder/CancelOrder, kept in the book's order map after it goes terminal.
//
// Invariants (enforced by internal/book, never by this type itself):
//   - RemainingQuantity <= Quantity
//   - RemainingQuantity == 0 => Status in {Filled, Cancelled}
//   - Status == PartiallyFilled => 0 < RemainingQuantity < Quantity
//   - MARKET orders never rest on a book.
type Order struct {
	OrderID           uint64
	AssetType         AssetType
	Symbol            string
	Side              Side
	Type              OrderType
	Quantity          Quantity
	RemainingQuantity Quantity
	Price             Price
	TimestampNs       uint64
	Status            OrderStatus
	ClientID          string
}

func (o *Order) String() string {
	return fmt.Sprintf(
		"Order{id:%d asset:%s symbol:%s side:%s type:%s qty:%d/%d price:%d status:%s client:%s}",
		o.OrderID, o.AssetType, o.Symbol, o.Side, o.Type,
		o.RemainingQuantity, o.Quantity, o.Price, o.Status, o.ClientID,
	)
}
