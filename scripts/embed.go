// Package scripts embeds the bundled Risor pattern-table scripts.
package scripts

import "embed"

// FS holds patterns/*.risor. Each script evaluates to a map of language tag
// to pattern list.
//
//go:embed patterns/*.risor
var FS embed.FS

// PatternScriptPath returns the path within FS of a bundled pattern script.
func PatternScriptPath(name string) string {
	return "patterns/" + name + ".risor"
}
