// Command salaryrace creates and inspects salary races from the terminal,
// against the local database or a running API server.
//
// Usage:
//
//	salaryrace create Alice 50000 Bob 60000 --currency USD
//	salaryrace show alice-vs-bob-Ab12Cd
//	salaryrace watch alice-vs-bob-Ab12Cd
//	salaryrace og alice-vs-bob-Ab12Cd -o card.svg
//	salaryrace migrate
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
