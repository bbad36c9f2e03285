// The main package for the harvester executable.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/openlawindex/harvester/cmd"
)

// main defers all execution to the Cobra CLI, with a base context that
// cancels on SIGINT or SIGTERM so runs stop cleanly mid-walk.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd.Execute(ctx)
}
