package formatter

import (
	"os"

	"github.com/mattn/go-isatty"
)

// DefaultColorEnabled reports whether a hypothetical text sink writing to
// stdout should enable color, using the same terminal-detection approach
// as the operational logger's stdout factory.
func DefaultColorEnabled() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
