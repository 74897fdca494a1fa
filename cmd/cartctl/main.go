package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"RocketShoes/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	code := cli.GetExitCode(err)
	// Rejections were already printed as notifications.
	if code == cli.ExitCommandError {
		fmt.Fprintf(os.Stderr, "cartctl: %v\n", err)
	}
	os.Exit(code)
}
