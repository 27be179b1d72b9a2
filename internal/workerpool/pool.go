// Package workerpool implements a fixed-size pool of goroutines that
// each pull one net.Conn off a shared queue, hand it to a caller-supplied
// handler, and go back for the next one.
//
// Grounded on the teacher's internal/worker.go WorkerPool. The teacher's
// own internal/net/server.go imports a "fenrir/internal/utils" WorkerPool
// that is never defined anywhere in the teacher tree (see DESIGN.md); this
// package fills that gap using the teacher's own, separately-written
// worker.go as the model, generalized from WorkerFunction's `any` task
// type to net.Conn (the only task every transport in this repo queues)
// and given the AddTask method server.go assumed but worker.go never
// provided.
package workerpool

import (
	"net"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// Handler processes one connection. A returned error is fatal to that
// worker goroutine (the tomb it belongs to will bring the owning
// component down), matching the teacher's "any error returned is fatal"
// contract on handleConnection.
type Handler func(t *tomb.Tomb, conn net.Conn) error

// Pool is a fixed-size set of workers draining a shared connection queue.
type Pool struct {
	size  int
	tasks chan net.Conn
	work  Handler
}

// New builds a pool of size workers that each run work against the next
// queued connection.
func New(size int, work Handler) *Pool {
	return &Pool{
		size:  size,
		tasks: make(chan net.Conn, taskChanSize),
		work:  work,
	}
}

// AddTask queues conn for the next available worker.
func (p *Pool) AddTask(conn net.Conn) {
	p.tasks <- conn
}

// Run keeps size workers alive under t until t starts dying. Each worker
// is itself supervised by t, so a worker's fatal error propagates to the
// pool's owner exactly like the teacher's Setup loop.
func (p *Pool) Run(t *tomb.Tomb) {
	log.Info().Int("workers", p.size).Msg("workerpool starting")
	active := 0
	for {
		select {
		case <-t.Dying():
			return
		default:
			if active < p.size {
				t.Go(func() error {
					err := p.worker(t)
					active--
					return err
				})
				active++
			}
		}
	}
}

func (p *Pool) worker(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case conn := <-p.tasks:
			if err := p.work(t, conn); err != nil {
				log.Error().Err(err).Msg("workerpool worker exiting")
				return err
			}
		}
	}
}
