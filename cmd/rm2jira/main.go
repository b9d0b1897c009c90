package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/k1LoW/errors"
	"github.com/qawatake/rm2jira/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		if st := errors.StackTraces(err); len(st) > 0 {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", st)
		}
		stop()
		os.Exit(1)
	}
}
