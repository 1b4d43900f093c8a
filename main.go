package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"readiness/cmd"
)

var (
	version = "dev" // Overwritten at build time
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cmd.Execute(ctx, version, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
