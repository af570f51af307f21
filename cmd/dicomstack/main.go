package main

import (
	"os"

	"github.com/mrsinham/dicomstack/internal/cli"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	os.Exit(cli.Execute(version, os.Args[1:], os.Stdout, os.Stderr))
}
