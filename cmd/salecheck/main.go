// Package main is the entry point for the salecheck command.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/salecheck/internal/product"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		var invalid *product.ValidationError
		if errors.As(err, &invalid) {
			fmt.Fprintln(stderr, invalid.Message)
		} else {
			fmt.Fprintf(stderr, "salecheck: %v\n", err)
		}
		return 1
	}
	return 0
}
