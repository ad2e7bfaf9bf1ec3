package main

import (
	"os"

	"github.com/existflow/ironmeet/internal/cli"
	"github.com/existflow/ironmeet/internal/logger"
)

func main() {
	defer logger.Close()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
