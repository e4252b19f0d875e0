package main

import (
	"os"

	"github.com/pgokul695/Winterthon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
