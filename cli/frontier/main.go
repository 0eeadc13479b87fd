package main

import (
	"os"

	frontiercmder "github.com/papercomputeco/frontier/cmd/frontier"
)

func main() {
	cmd := frontiercmder.NewFrontierCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
