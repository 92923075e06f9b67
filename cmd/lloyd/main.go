// Command lloyd clusters a point file or quantizes a P3 PPM image with
// multi-restart k-means.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/lloyd/cmd/lloyd/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "lloyd:", err)
		stop()
		os.Exit(1)
	}
}
