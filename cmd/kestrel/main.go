package main

import (
	"os"

	"github.com/kestrelquant/kestrel/cmd/kestrel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
