package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"mediasort/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, services.ErrLockHeld) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if !errors.Is(err, context.Canceled) && !errors.Is(err, errRunFailures) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
