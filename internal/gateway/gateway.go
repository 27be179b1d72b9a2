// Package gateway implements the order-entry TCP listener on port 8001:
// spec.md §4.C's "Order Gateway" component.
//
// Grounded on the teacher's internal/net/server.go accept loop, tomb.v2
// supervision, and zerolog logging. Unlike the teacher's one-read
// handleConnection (which reads a single fixed-size buffer per worker
// invocation and requeues the connection for the next message), this
// handler owns its connection for its entire lifetime and uses
// bufio.Scanner to split incoming bytes on '\n'. spec.md §9 names
// buffer-and-split as the MUST-have robust behavior a compliant rewrite
// needs, since a single TCP read is not guaranteed to equal one line.
package gateway

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchcore/internal/workerpool"
)

const defaultWorkers = 16

// Processor is the engine seam: the gateway hands it raw lines tagged
// with a client id and never inspects them itself.
type Processor interface {
	ProcessOrderRequest(clientID, rawLine string)
}

// Gateway accepts order-entry connections and feeds every line received
// on them to a Processor.
type Gateway struct {
	address   string
	port      int
	processor Processor
	pool      *workerpool.Pool

	nextClientID atomic.Uint64
}

// New builds a Gateway bound to address:port, fanning parsed requests
// out to processor.
func New(address string, port int, processor Processor) *Gateway {
	g := &Gateway{
		address:   address,
		port:      port,
		processor: processor,
	}
	g.pool = workerpool.New(defaultWorkers, g.handleConnection)
	return g
}

// Run listens until ctx is cancelled, supervising the accept loop and
// the worker pool under one tomb.
func (g *Gateway) Run(ctx context.Context) error {
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", g.address, g.port))
	if err != nil {
		return fmt.Errorf("order gateway: listen: %w", err)
	}
	defer listener.Close()

	t.Go(func() error {
		g.pool.Run(t)
		return nil
	})

	log.Info().Str("address", listener.Addr().String()).Msg("order gateway listening")

	t.Go(func() error {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-t.Dying():
					return nil
				default:
					log.Error().Err(err).Msg("order gateway accept failed")
					continue
				}
			}
			g.pool.AddTask(conn)
		}
	})

	<-t.Dying()
	listener.Close()
	return t.Wait()
}

func (g *Gateway) handleConnection(t *tomb.Tomb, conn net.Conn) error {
	clientID := fmt.Sprintf("client_%d", g.nextClientID.Add(1))
	defer conn.Close()

	log.Info().Str("client_id", clientID).Str("remote_addr", conn.RemoteAddr().String()).Msg("order gateway client connected")

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		select {
		case <-t.Dying():
			return nil
		default:
		}
		g.processor.ProcessOrderRequest(clientID, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Str("client_id", clientID).Msg("order gateway connection read error")
	}
	log.Info().Str("client_id", clientID).Msg("order gateway client disconnected")
	return nil
}
