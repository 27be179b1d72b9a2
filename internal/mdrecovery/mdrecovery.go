// Package mdrecovery implements the market-data recovery TCP
// request/response server on port 8003: spec.md §4.E. Each connection
// sends zero or more "SNAPSHOT:<SYMBOL>" requests and gets back zero or
// one reply line per request.
//
// Shares the buffer-and-split fix (bufio.Scanner) and the
// workerpool/tomb plumbing with internal/gateway; grounded on the same
// teacher pattern (internal/net/server.go).
package mdrecovery

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchcore/internal/engine"
	"matchcore/internal/workerpool"
)

const defaultWorkers = 8

// Engine is the seam into the match engine. Implementations must never
// reply for an unknown symbol (spec.md §4.E/§9); that silence is
// enforced by the engine itself, not by this package.
type Engine interface {
	SendMarketDataSnapshot(client engine.MarketDataTransport, symbol string)
}

// connSender adapts a net.Conn to engine.MarketDataTransport.
type connSender struct{ conn net.Conn }

func (c connSender) Send(line string) error {
	_, err := fmt.Fprintf(c.conn, "%s\n", line)
	return err
}

// Server is the market-data recovery listener.
type Server struct {
	address string
	port    int
	engine  Engine
	pool    *workerpool.Pool
}

// New builds a recovery Server bound to address:port.
func New(address string, port int, engine Engine) *Server {
	s := &Server{
		address: address,
		port:    port,
		engine:  engine,
	}
	s.pool = workerpool.New(defaultWorkers, s.handleConnection)
	return s
}

// Run listens until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		return fmt.Errorf("md recovery: listen: %w", err)
	}
	defer listener.Close()

	t.Go(func() error {
		s.pool.Run(t)
		return nil
	})

	log.Info().Str("address", listener.Addr().String()).Msg("market data recovery listening")

	t.Go(func() error {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-t.Dying():
					return nil
				default:
					log.Error().Err(err).Msg("md recovery accept failed")
					continue
				}
			}
			s.pool.AddTask(conn)
		}
	})

	<-t.Dying()
	listener.Close()
	return t.Wait()
}

func (s *Server) handleConnection(t *tomb.Tomb, conn net.Conn) error {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		select {
		case <-t.Dying():
			return nil
		default:
		}

		line := scanner.Text()
		symbol, ok := parseSnapshotRequest(line)
		if !ok {
			// Any other prefix is silently ignored, per spec.md §4.E.
			continue
		}
		s.engine.SendMarketDataSnapshot(connSender{conn: conn}, symbol)
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Str("remote_addr", remote).Msg("md recovery connection read error")
	}
	return nil
}

// parseSnapshotRequest recognizes "SNAPSHOT:<SYMBOL>". Anything else,
// including a malformed SNAPSHOT request with extra fields, is not a
// recognized request and is dropped silently by the caller.
func parseSnapshotRequest(line string) (symbol string, ok bool) {
	rest, found := strings.CutPrefix(line, "SNAPSHOT:")
	if !found || rest == "" {
		return "", false
	}
	if strings.Contains(rest, ":") {
		return "", false
	}
	return rest, true
}
