// noticectl is the command-line client for the notice intelligence engine.
package main

import (
	"os"

	"github.com/taxletterhelp/notice-intelligence/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate

	os.Exit(cli.Execute())
}
