// Package version holds fluxlogctl's build-time version stamp. VERSION and
// GITCOMMIT are left for the release build to set via -ldflags -X; a
// developer build leaves both empty and VersionToString reports no version
// rather than printing a confusing "- ".
package version

import "fmt"

// VERSION is fluxlogctl's major.minor.patch version, injected at build time.
var VERSION string

// GITCOMMIT is the short git hash fluxlogctl was built from, injected at
// build time.
var GITCOMMIT string

// VersionToString renders fluxlogctl's version for cobra's --version flag.
func VersionToString() string {
	if VERSION == "" && GITCOMMIT == "" {
		return ""
	}
	return fmt.Sprintf("%s - %s", VERSION, GITCOMMIT)
}
