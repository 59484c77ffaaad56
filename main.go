package main

import "github.com/custodia-labs/serpcluster-cli/internal/adapters/driving/cli"

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	cli.SetVersion(Version)
	cli.Execute()
}
