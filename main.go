// The main package for the snapshotgen executable.
package main

import (
	"github.com/JakeFAU/seo-snapshot-generator/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
