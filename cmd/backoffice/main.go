package main

import (
	"os"

	"github.com/yourusername/stock-backoffice/internal/delivery/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
