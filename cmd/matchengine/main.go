// Command matchengine starts the matching engine process: the order
// gateway, drop-copy publisher, market-data recovery server and
// multicast publisher, all sharing one Engine.
//
// Grounded on the teacher's cmd/main.go for signal handling
// (signal.NotifyContext on SIGINT/SIGTERM) and on
// VictorVVedtion-perp-dex's cli package for cobra.Command usage, the
// one other repo in the retrieval pack that ships a real cmd/ entrypoint
// for a trading component.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"matchcore/internal/supervisor"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	root := newRootCmd()
	// spec.md §6: wrong arity must print its usage line to stdout, not
	// stderr (cobra's default).
	root.SetOut(os.Stdout)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matchengine <bind_ip> <multicast_ip> <multicast_port>",
		Short: "Run the matching engine's order gateway, drop-copy, recovery and multicast transports.",
		Args:  cobra.ExactArgs(3),
		RunE:  runMatchEngine,
		// Wrong arity (ExactArgs failure) prints usage to stdout and
		// exits 1, per spec.md §6.
		SilenceUsage: false,
	}
	return cmd
}

func runMatchEngine(cmd *cobra.Command, args []string) error {
	bindIP := args[0]
	multicastIP := args[1]
	multicastPort, err := strconv.Atoi(args[2])
	if err != nil {
		fmt.Fprintf(os.Stdout, "usage: %s\n", cmd.Use)
		return fmt.Errorf("invalid multicast_port %q: %w", args[2], err)
	}

	sup, err := supervisor.New(supervisor.Config{
		BindAddress:    bindIP,
		MulticastGroup: multicastIP,
		MulticastPort:  multicastPort,
		MetricsAddress: bindIP,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct supervisor")
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	return sup.Run(ctx)
}
