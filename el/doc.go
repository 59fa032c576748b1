// Package el builds live DOM elements from declarative descriptions.
//
// A Spec describes one element: its tag, text, inner markup, attributes,
// properties, children, event listeners, and an optional callback that runs
// once the element exists. Build turns a Spec into a *dom.Element:
//
//	doc := dom.NewDocument()
//	list, err := el.Build(doc, &el.Spec{
//	    Tag:   "ul",
//	    Class: "menu",
//	    Content: []*el.Spec{
//	        {Text: "Home"},   // tag inferred as <li>
//	        {Text: "About"},
//	    },
//	}, nil)
//
// Construction never panics into the caller. Any failure, including a
// panicking callback, yields a nil element and a coded error, which is also
// logged through the builder's logger.
//
// # Reserved Keys
//
// The structural names tag, text, html, props, content, events, callback,
// svg and node are never applied as attributes, even when they appear in
// Spec.Attrs or as top-level keys of a JSON description.
package el
