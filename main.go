package main

import (
	"os"
	"time"

	"countries/cmd"
)

func main() {
	// set timezone to utc
	time.Local = time.UTC

	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
