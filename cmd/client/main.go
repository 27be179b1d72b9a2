// Command client is a manual test harness for the matching engine: it
// places orders on the order gateway, streams drop-copy lines, and can
// issue a single market-data recovery request. See internal/clienttool
// for the implementation.
package main

import (
	"flag"
	"fmt"
	"os"

	"matchcore/internal/clienttool"
)

func main() {
	f, err := clienttool.ParseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	if f.SnapshotOnly != "" {
		if err := clienttool.RequestSnapshot(f.RecoveryAddr, f.SnapshotOnly); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	go func() {
		if err := clienttool.StreamDropCopy(f.DropCopyAddr, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "drop-copy stream ended:", err)
		}
	}()

	if err := clienttool.PlaceOrders(f); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("\nlistening for drop-copy reports... (press ctrl+c to exit)")
	select {}
}
