// Package dropcopy implements the push-only TCP audit stream on port
// 8002: spec.md §4.D. Every accepted order update and every fill is
// broadcast, best-effort, to every currently-connected subscriber.
//
// Grounded on the teacher's internal/net/server.go clientSessions map +
// clientSessionsLock pattern. Unlike the Engine's book/order-id state
// (owned exclusively by one dispatcher goroutine, see internal/engine),
// the subscriber set here is touched from two independent goroutine
// families, accept/disconnect and the Engine's broadcast calls, so it
// keeps the mutex spec.md §5 says the match path itself doesn't need.
package dropcopy

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchcore/internal/domain"
	"matchcore/internal/workerpool"
)

const defaultWorkers = 16

// Publisher implements engine.DropCopyPublisher.
type Publisher struct {
	address string
	port    int
	pool    *workerpool.Pool

	mu          sync.Mutex
	subscribers map[string]net.Conn
}

// New builds a drop-copy Publisher bound to address:port.
func New(address string, port int) *Publisher {
	p := &Publisher{
		address:     address,
		port:        port,
		subscribers: make(map[string]net.Conn),
	}
	p.pool = workerpool.New(defaultWorkers, p.handleConnection)
	return p
}

// Run listens for subscribers until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", p.address, p.port))
	if err != nil {
		return fmt.Errorf("drop-copy: listen: %w", err)
	}
	defer listener.Close()

	t.Go(func() error {
		p.pool.Run(t)
		return nil
	})

	log.Info().Str("address", listener.Addr().String()).Msg("drop-copy publisher listening")

	t.Go(func() error {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-t.Dying():
					return nil
				default:
					log.Error().Err(err).Msg("drop-copy accept failed")
					continue
				}
			}
			p.pool.AddTask(conn)
		}
	})

	<-t.Dying()
	listener.Close()
	return t.Wait()
}

// handleConnection registers conn as a subscriber and holds it open
// until the remote side closes it or the pool is shutting down; a
// drop-copy connection has nothing to read, it only ever receives.
func (p *Publisher) handleConnection(t *tomb.Tomb, conn net.Conn) error {
	correlationID := uuid.NewString()
	key := conn.RemoteAddr().String()

	p.addSubscriber(key, conn)
	log.Info().Str("correlation_id", correlationID).Str("remote_addr", key).Msg("drop-copy subscriber connected")

	defer func() {
		p.removeSubscriber(key)
		conn.Close()
		log.Info().Str("correlation_id", correlationID).Str("remote_addr", key).Msg("drop-copy subscriber disconnected")
	}()

	// Closing the connection once the pool dies unblocks the Read below.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-t.Dying():
			conn.Close()
		case <-done:
		}
	}()

	// Block until the subscriber disconnects or the pool dies; reads are
	// only used to detect connection death, per spec.md §4.D's push-only
	// contract.
	buf := make([]byte, 1)
	for {
		select {
		case <-t.Dying():
			return nil
		default:
		}
		if _, err := conn.Read(buf); err != nil {
			return nil
		}
	}
}

func (p *Publisher) addSubscriber(key string, conn net.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers[key] = conn
}

func (p *Publisher) removeSubscriber(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.subscribers, key)
}

// BroadcastOrderUpdate sends an ORDER line to every subscriber. Per
// spec.md §4.D, a failing write does not eagerly remove the subscriber;
// removal happens via the connection's own read-driven lifecycle.
func (p *Publisher) BroadcastOrderUpdate(order *domain.Order) {
	p.broadcast(formatOrderUpdateLine(order))
}

// BroadcastFill sends a FILL line to every subscriber.
func (p *Publisher) BroadcastFill(fill domain.Fill) {
	p.broadcast(formatFillLine(fill))
}

func (p *Publisher) broadcast(line string) {
	p.mu.Lock()
	conns := make([]net.Conn, 0, len(p.subscribers))
	for _, c := range p.subscribers {
		conns = append(conns, c)
	}
	p.mu.Unlock()

	for _, c := range conns {
		if _, err := fmt.Fprintf(c, "%s\n", line); err != nil {
			log.Warn().Err(err).Str("remote_addr", c.RemoteAddr().String()).Msg("drop-copy broadcast write failed")
		}
	}
}
