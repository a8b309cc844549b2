package main

import (
	"log"

	"tableflip.dev/syncpanel/pkg/commands"
	"tableflip.dev/syncpanel/pkg/logging"
)

func main() {
	defer func() { _ = logging.Sync() }()
	if err := commands.New().Execute(); err != nil {
		log.Fatalf("error during command execution: %v", err)
	}
}
