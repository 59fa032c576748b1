// Package dom provides the live document model that domkit builds into.
//
// A Document is a tree of golang.org/x/net/html nodes. Each element node is
// owned by an Element wrapper that adds what the HTML tree alone cannot
// hold: JavaScript-style properties, inline style access, and event
// listeners. The tree can be rendered to HTML at any time.
//
// # Core Types
//
// Document owns the root html/head/body elements and creates new elements.
// Element exposes attribute, property, text, markup, style, and child
// operations modelled on the browser DOM.
//
//	doc := dom.NewDocument()
//	btn := doc.CreateElement("button")
//	btn.SetTextContent("Save")
//	btn.AddEventListener("click", func(e *dom.Event) { ... })
//	doc.Body().AppendChild(btn)
//
// # SVG
//
// ParseSVG parses standalone SVG markup with a strict XML parser. The root
// element must declare the SVG namespace; malformed markup yields a
// *ParseError instead of a partial tree.
//
// # Concurrency
//
// Every tree mutation takes the owning document's lock, so elements may be
// mutated from timer goroutines. Event listeners run without the lock held.
package dom
