package sql

import "fmt"

// SyntaxError reports a lexical or grammar failure, carrying the
// offending token and its byte position in the statement.
type SyntaxError struct {
	Pos      int
	Got      string
	Expected string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: unexpected %s, expected %s", e.Pos, e.Got, e.Expected)
}

// UnsupportedFeatureError reports SQL the engine explicitly rejects
// rather than approximates.
type UnsupportedFeatureError struct {
	Feature string
}

func (e UnsupportedFeatureError) Error() string {
	return "unsupported feature: " + e.Feature
}
