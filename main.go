package main

import (
	"os"

	"github.com/eiken-drill/eiken/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
