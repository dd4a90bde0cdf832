package formatter

import "github.com/kr/pretty"

// BuildPretty renders v as a Go-syntax tree with pointers followed, for
// reading merged entities in a terminal.
func BuildPretty(v any) []byte {
	return []byte(pretty.Sprintf("%# v\n", v))
}
