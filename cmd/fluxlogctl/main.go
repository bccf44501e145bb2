// fluxlogctl is an operator tool that loads a fluxlog configuration,
// starts the configured LogManager and TraceManager, reports whether the
// result is healthy, and stops them again — useful for validating a
// configuration without writing a throwaway Go program. It is not a
// general-purpose logging CLI: concrete sinks and configuration-file
// parsing beyond this tool's own needs are out of scope for fluxlog
// itself.
package main

import (
	"fmt"
	"os"

	"github.com/fluxlog/fluxlog/cmd/fluxlogctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
