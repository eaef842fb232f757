package main

import (
	"context"
	"fmt"
	"os"

	"deepscan-server/internal/bootstrap"
)

func main() {
	if err := bootstrap.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "deepscan-server failed: %v\n", err)
		os.Exit(1)
	}
}
