// Package errors provides coded, structured errors for domkit.
//
// Each error carries a code (e.g. "E010") that maps to a short message, a
// longer explanation, and a category. Errors can wrap an underlying cause
// and carry a fix suggestion, and they format for terminal display:
//
//	err := errors.New("E010").
//	    WithDetail("<svg> root has no xmlns attribute").
//	    WithSuggestion(`Add xmlns="http://www.w3.org/2000/svg" to the root element`)
//
//	fmt.Println(err.Format())
//
// # Error Categories
//
//   - build: element construction failures
//   - fetch: request wrapper usage errors
//   - config: configuration file errors
//   - cli: command line errors
package errors
