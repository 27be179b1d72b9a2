// Package supervisor wires the engine and its four transports into one
// supervised process: spec.md §4.G / SPEC_FULL.md §4.G.
//
// Grounded on the teacher's cmd/main.go signal.NotifyContext shutdown
// pattern, generalized from one TCP server to the whole component set
// using gopkg.in/tomb.v2, the supervision primitive the teacher already
// uses inside internal/net/server.go.
package supervisor

import (
	"context"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchcore/internal/dropcopy"
	"matchcore/internal/engine"
	"matchcore/internal/gateway"
	"matchcore/internal/mdrecovery"
	"matchcore/internal/metrics"
	"matchcore/internal/multicast"
)

const (
	orderGatewayPort = 8001
	dropCopyPort     = 8002
	mdRecoveryPort   = 8003
	metricsPort      = 9100
)

// Config is the CLI-derived configuration for one process.
type Config struct {
	BindAddress    string
	MulticastGroup string
	MulticastPort  int
	MetricsAddress string
}

// Supervisor owns one Engine and its transports for the process
// lifetime.
type Supervisor struct {
	cfg Config

	Engine    *engine.Engine
	DropCopy  *dropcopy.Publisher
	Gateway   *gateway.Gateway
	Recovery  *mdrecovery.Server
	Multicast *multicast.Publisher
	Metrics   *metrics.Registry
}

// New constructs every component and wires their cross-references, but
// starts nothing; call Run to start the supervised goroutines.
func New(cfg Config) (*Supervisor, error) {
	mc, err := multicast.Dial(cfg.MulticastGroup, cfg.MulticastPort)
	if err != nil {
		return nil, err
	}

	dc := dropcopy.New(cfg.BindAddress, dropCopyPort)
	reg := metrics.NewRegistry()
	eng := engine.New(dc, mc, reg)
	gw := gateway.New(cfg.BindAddress, orderGatewayPort, eng)
	recovery := mdrecovery.New(cfg.BindAddress, mdRecoveryPort, eng)

	return &Supervisor{
		cfg:       cfg,
		Engine:    eng,
		DropCopy:  dc,
		Gateway:   gw,
		Recovery:  recovery,
		Multicast: mc,
		Metrics:   reg,
	}, nil
}

// Run starts every component as a supervised goroutine and blocks until
// ctx is cancelled or any component returns a fatal error, then tears
// everything down in an orderly way.
func (s *Supervisor) Run(ctx context.Context) error {
	t, ctx := tomb.WithContext(ctx)

	t.Go(func() error { return s.Engine.Run(ctx) })
	t.Go(func() error { return s.Gateway.Run(ctx) })
	t.Go(func() error { return s.DropCopy.Run(ctx) })
	t.Go(func() error { return s.Recovery.Run(ctx) })
	t.Go(func() error { return metrics.Serve(ctx, s.cfg.MetricsAddress, metricsPort) })

	log.Info().
		Str("bind_address", s.cfg.BindAddress).
		Str("multicast_group", s.cfg.MulticastGroup).
		Int("multicast_port", s.cfg.MulticastPort).
		Msg("matchcore supervisor running")

	<-t.Dying()
	if err := s.Multicast.Close(); err != nil {
		log.Error().Err(err).Msg("error closing multicast publisher")
	}
	return t.Wait()
}
