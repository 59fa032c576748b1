package dom

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Namespace URIs recognized by CreateElementNS.
const (
	NamespaceHTML = "http://www.w3.org/1999/xhtml"
	NamespaceSVG  = "http://www.w3.org/2000/svg"
	NamespaceMath = "http://www.w3.org/1998/Math/MathML"
)

// Document is a live HTML document.
type Document struct {
	mu   sync.Mutex
	root *html.Node

	documentElement *Element
	head            *Element
	body            *Element
}

// NewDocument returns an empty document with html, head and body elements.
func NewDocument() *Document {
	d := &Document{
		root: &html.Node{Type: html.DocumentNode},
	}
	d.root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	d.documentElement = d.newElement("", "html")
	d.head = d.newElement("", "head")
	d.body = d.newElement("", "body")

	d.root.AppendChild(d.documentElement.node)
	d.documentElement.appendLocked(d.head)
	d.documentElement.appendLocked(d.body)
	return d
}

// DocumentElement returns the root <html> element.
func (d *Document) DocumentElement() *Element { return d.documentElement }

// Head returns the <head> element.
func (d *Document) Head() *Element { return d.head }

// Body returns the <body> element.
func (d *Document) Body() *Element { return d.body }

// CreateElement creates a detached HTML element. Tag names are lowercased.
func (d *Document) CreateElement(tag string) (*Element, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if !validName(tag) {
		return nil, &InvalidNameError{Name: tag}
	}
	return d.newElement("", tag), nil
}

// CreateElementNS creates a detached element in the given namespace.
// Tag name case is preserved for foreign namespaces.
func (d *Document) CreateElementNS(namespace, tag string) (*Element, error) {
	ns, ok := namespacePrefix(namespace)
	if !ok {
		return nil, &InvalidNameError{Name: namespace, Kind: "namespace"}
	}
	if ns == "" {
		return d.CreateElement(tag)
	}
	tag = strings.TrimSpace(tag)
	if !validName(tag) {
		return nil, &InvalidNameError{Name: tag}
	}
	return d.newElement(ns, tag), nil
}

// GetElementByID returns the first connected element whose id attribute
// equals id, or nil.
func (d *Document) GetElementByID(id string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.documentElement.findLocked(func(e *Element) bool {
		v, ok := e.attrLocked("id")
		return ok && v == id
	})
}

// Render writes the whole document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String renders the document to a string.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (d *Document) newElement(ns, tag string) *Element {
	return &Element{
		doc: d,
		node: &html.Node{
			Type:      html.ElementNode,
			Data:      tag,
			DataAtom:  atom.Lookup([]byte(tag)),
			Namespace: ns,
		},
	}
}

// namespacePrefix maps a namespace URI to the short form used by
// x/net/html nodes.
func namespacePrefix(uri string) (string, bool) {
	switch uri {
	case "", NamespaceHTML:
		return "", true
	case NamespaceSVG:
		return "svg", true
	case NamespaceMath:
		return "math", true
	default:
		return "", false
	}
}

func namespaceURI(prefix string) string {
	switch prefix {
	case "svg":
		return NamespaceSVG
	case "math":
		return NamespaceMath
	default:
		return NamespaceHTML
	}
}

// validName reports whether s is usable as a tag or attribute name.
func validName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '"', '\'', '>', '<', '/', '=', 0:
			return false
		}
	}
	return true
}
