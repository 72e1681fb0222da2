package main

import (
	"os"

	"github.com/btracey/newton/cmd/newtonroot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
