package main

import (
	"os"

	"github.com/bookmarkhub/a2a/internal/bmactl/cli"
	_ "github.com/bookmarkhub/a2a/internal/bmactl/cli/commands"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	cli.SetVersion(Version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
