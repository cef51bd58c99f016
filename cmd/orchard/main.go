// Command orchard is the terminal client for the orchard health backend.
package main

import (
	"os"

	"github.com/mesh-intelligence/orchard/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
