package domain

import "fmt"

// Fill is an immutable execution record produced when a taker order
// crosses a resting maker order. Price is always the maker's resting
// price, per price-time priority (taker pays resting price).
type Fill struct {
	FillID      uint64
	BuyOrderID  uint64
	SellOrderID uint64
	Symbol      string
	Quantity    Quantity
	Price       Price
	TimestampNs uint64
}

func (f Fill) String() string {
	return fmt.Sprintf(
		"Fill{id:%d buy:%d sell:%d symbol:%s qty:%d price:%d}",
		f.FillID, f.BuyOrderID, f.SellOrderID, f.Symbol, f.Quantity, f.Price,
	)
}
