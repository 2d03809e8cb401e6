package main

import (
	"fmt"
	"os"

	"youtube-scout/cmd/ytscout/cmd"
	"youtube-scout/internal/config"
)

func main() {
	// Missing .env only matters for commands that need API keys; those
	// commands check for themselves.
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cmd.Execute()
}
