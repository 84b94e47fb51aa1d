package main

import (
	"os"

	"github.com/idelchi/dusage/internal/cli"
)

// version is overridden at build time.
var version = "unversioned"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		os.Exit(1)
	}
}
