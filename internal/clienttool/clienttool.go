// Package clienttool backs the manual test client for the matching
// engine's three TCP transports: it places orders on the order gateway
// (8001), prints drop-copy lines (8002) as they arrive, and can issue
// one recovery request (8003). See cmd/client/main.go for the
// entrypoint.
//
// Adapted from the teacher's cmd/client/client.go flag shape (-server,
// -owner, -ticker, -side, -price, -qty) onto spec.md's text wire
// protocol in place of the teacher's binary encoding/binary framing.
package clienttool

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Flags holds the parsed command-line configuration for one client run.
type Flags struct {
	GatewayAddr  string
	DropCopyAddr string
	RecoveryAddr string
	Side         string
	Symbol       string
	PriceNanos   uint64
	Quantities   []uint64
	SnapshotOnly string
}

// ParseFlags parses os.Args-style arguments into Flags, grounded on the
// teacher's -server/-ticker/-side/-price/-qty flag names.
func ParseFlags(fs *flag.FlagSet, args []string) (Flags, error) {
	gatewayAddr := fs.String("gateway", "127.0.0.1:8001", "order gateway address")
	dropCopyAddr := fs.String("dropcopy", "127.0.0.1:8002", "drop-copy address")
	recoveryAddr := fs.String("recovery", "127.0.0.1:8003", "market data recovery address")
	side := fs.String("side", "buy", "order side: buy or sell")
	symbol := fs.String("symbol", "AAPL", "ticker symbol")
	price := fs.Float64("price", 100.0, "limit price in dollars")
	qtyStr := fs.String("qty", "10", "quantity or comma-separated list, e.g. 10,20,50")
	snapshotOnly := fs.String("snapshot", "", "if set, request one SNAPSHOT for this symbol and exit")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	return Flags{
		GatewayAddr:  *gatewayAddr,
		DropCopyAddr: *dropCopyAddr,
		RecoveryAddr: *recoveryAddr,
		Side:         strings.ToUpper(*side),
		Symbol:       *symbol,
		PriceNanos:   uint64(*price * 1_000_000_000),
		Quantities:   parseQuantities(*qtyStr),
		SnapshotOnly: *snapshotOnly,
	}, nil
}

func parseQuantities(input string) []uint64 {
	var out []uint64
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if val, err := strconv.ParseUint(p, 10, 64); err == nil && val > 0 {
			out = append(out, val)
		} else {
			fmt.Fprintf(os.Stderr, "warning: invalid quantity %q, skipping\n", p)
		}
	}
	return out
}

// RequestSnapshot dials the recovery server, sends one SNAPSHOT request
// and prints whatever single line (or silence) comes back.
func RequestSnapshot(addr, symbol string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial recovery %s: %w", addr, err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "SNAPSHOT:%s\n", symbol); err != nil {
		return fmt.Errorf("send snapshot request: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	scanner := bufio.NewScanner(conn)
	if scanner.Scan() {
		fmt.Println(scanner.Text())
	} else {
		fmt.Println("(no reply: unknown symbol or timeout)")
	}
	return nil
}

// PlaceOrders dials the order gateway and sends one "SIDE:SYMBOL:QTY:
// PRICE_NANOS" line per quantity in f.Quantities.
func PlaceOrders(f Flags) error {
	conn, err := net.Dial("tcp", f.GatewayAddr)
	if err != nil {
		return fmt.Errorf("dial order gateway %s: %w", f.GatewayAddr, err)
	}
	defer conn.Close()

	for _, qty := range f.Quantities {
		line := fmt.Sprintf("%s:%s:%d:%d\n", f.Side, f.Symbol, qty, f.PriceNanos)
		if _, err := conn.Write([]byte(line)); err != nil {
			return fmt.Errorf("send order: %w", err)
		}
		fmt.Printf("-> sent %s %s qty=%d price_nanos=%d\n", f.Side, f.Symbol, qty, f.PriceNanos)
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

// StreamDropCopy connects to the drop-copy publisher and prints every
// line it receives until the connection closes.
func StreamDropCopy(addr string, out *os.File) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial drop-copy %s: %w", addr, err)
	}
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		fmt.Fprintln(out, scanner.Text())
	}
	return scanner.Err()
}
