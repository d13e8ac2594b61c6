package main

import (
	"os"

	"github.com/zlin/chanscan/cmd/chanscan/commands"
)

// main is the entry point for the chanscan CLI
// ⭐ 统一 CLI 入口: go run ./cmd/chanscan [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
