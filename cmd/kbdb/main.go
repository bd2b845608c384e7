package main

import (
	"os"

	"github.com/kbdb-labs/kbdb/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
