package main

import (
	"os"

	"github.com/bayfiles/bay_sdk_go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
