package main

import (
	"os"

	"github.com/conduit-lang/xgen/internal/builderrors"
	"github.com/conduit-lang/xgen/internal/cli/commands"
)

// Exit codes
const (
	exitBuildFailure = 1
	exitInternal     = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	err := commands.Execute()
	switch {
	case err == nil:
		return 0
	case builderrors.IsBuildFailure(err):
		return exitBuildFailure
	default:
		return exitInternal
	}
}
