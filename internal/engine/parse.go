package engine

import (
	"fmt"
	"strconv"
	"strings"

	"matchcore/internal/domain"
)

// orderRequest is a parsed, validated order line, ready for the
// dispatcher to turn into a domain.Order.
type orderRequest struct {
	side     domain.Side
	symbol   string
	quantity domain.Quantity
	price    domain.Price
}

// parseOrderLine parses spec.md §4.C's wire format:
// "SIDE:SYMBOL:QTY:PRICE_NANOS". Any deviation (wrong field count,
// unknown side, non-numeric qty/price, zero qty or price) is rejected
// so the book never sees an invalid side (spec.md §9's "reject, don't
// coerce to SELL" resolution).
func parseOrderLine(raw string) (orderRequest, error) {
	raw = strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
	parts := strings.Split(raw, ":")
	if len(parts) != 4 {
		return orderRequest{}, fmt.Errorf("expected 4 colon-delimited fields, got %d", len(parts))
	}

	var side domain.Side
	switch parts[0] {
	case "BUY":
		side = domain.Buy
	case "SELL":
		side = domain.Sell
	default:
		return orderRequest{}, fmt.Errorf("unknown side %q", parts[0])
	}

	symbol := parts[1]
	if symbol == "" {
		return orderRequest{}, fmt.Errorf("empty symbol")
	}

	qty, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return orderRequest{}, fmt.Errorf("invalid quantity %q: %w", parts[2], err)
	}
	if qty == 0 {
		return orderRequest{}, fmt.Errorf("quantity must be positive")
	}

	price, err := strconv.ParseUint(parts[3], 10, 64)
	if err != nil {
		return orderRequest{}, fmt.Errorf("invalid price %q: %w", parts[3], err)
	}
	if price == 0 {
		return orderRequest{}, fmt.Errorf("price must be positive")
	}

	return orderRequest{
		side:     side,
		symbol:   symbol,
		quantity: domain.Quantity(qty),
		price:    domain.Price(price),
	}, nil
}
