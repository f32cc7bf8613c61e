package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/on3d/cmd"
)

func main() {
	// cancel running commands (build --watch, remote fetches) on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	code := cmd.Execute(ctx)
	stop()
	os.Exit(code)
}
