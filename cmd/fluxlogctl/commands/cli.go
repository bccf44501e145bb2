package commands

import (
	"fmt"
	"os"
)

// cmdErr is where fluxlogctl prints operator-facing diagnostics that are
// not part of a command's structured output, mirroring the teacher's
// cli.Stderr convention.
var cmdErr = os.Stderr

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(cmdErr, format+"\n", args...)
	os.Exit(1)
}
