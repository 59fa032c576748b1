package dom

import (
	"errors"
	"fmt"
)

// ErrHierarchy is returned when an append would create a cycle or move a
// node between documents.
var ErrHierarchy = errors.New("dom: hierarchy request error")

// InvalidNameError reports an unusable tag, attribute, or namespace name.
type InvalidNameError struct {
	Name string
	Kind string
}

func (e *InvalidNameError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "name"
	}
	return fmt.Sprintf("dom: invalid %s %q", kind, e.Name)
}

// ParseError is produced when markup cannot be parsed. It plays the role
// of the browser's <parsererror> node.
type ParseError struct {
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("dom: parse error on line %d: %s", e.Line, e.Reason)
	}
	return "dom: parse error: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }
