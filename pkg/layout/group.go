package layout

import "strings"

// RootGroup is the group assigned to nodes whose file path carries no
// directory information (empty, or a bare filename).
const RootGroup = "root"

// pathSeparator is the analyzer's path separator. File paths arrive
// normalized to forward slashes regardless of the analyzed platform.
const pathSeparator = "/"

// groupFor derives the structural group for a file path: the containing
// directory when one exists, otherwise RootGroup. An empty or malformed
// path simply yields RootGroup; there are no failure modes.
//
//	"src/a/b.ts" -> "src/a"
//	"b.ts"       -> "root"
//	""           -> "root"
func groupFor(file string) string {
	segments := strings.Split(file, pathSeparator)
	if len(segments) <= 1 {
		return RootGroup
	}
	return strings.Join(segments[:len(segments)-1], pathSeparator)
}
