package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root, closeLog := newRootCmd()
	err := root.ExecuteContext(ctx)
	closeLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "netinspector-tui: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
