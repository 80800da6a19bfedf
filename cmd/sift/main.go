package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Iron-Ham/sift/internal/cmd"
	"github.com/Iron-Ham/sift/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if errors.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
