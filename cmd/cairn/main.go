// Command cairn drives the frame orchestrator against a registered GPU
// backend.
//
// Usage:
//
//	cairn run [--backend headless] [--scenario resize.yaml] [--frames 120]
//	cairn adapters [--backend wgpu]
//	cairn backends
//	cairn version
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/gogpu/wgpu/hal/allbackends"

	_ "github.com/CaymanFreeman/Cairn/backend/headless"
	_ "github.com/CaymanFreeman/Cairn/backend/wgpu"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stderr, nil).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "cairn:", err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
