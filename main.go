package main

import (
	"os"

	"github.com/openscenario-sim/oscsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
