package main

import (
	"os"

	"github.com/ziadkadry99/puter-gallery/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
