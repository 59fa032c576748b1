package dom

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Element is a live element node.
type Element struct {
	doc    *Document
	node   *html.Node
	parent *Element

	// children holds the element children in document order. Text and
	// comment nodes live only in the html tree.
	children  []*Element
	props     map[string]any
	listeners map[string][]*listenerEntry
}

// Document returns the document that created the element.
func (e *Element) Document() *Document { return e.doc }

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.node.Data }

// Namespace returns the element's namespace URI.
func (e *Element) Namespace() string { return namespaceURI(e.node.Namespace) }

// Node returns the underlying html node. Callers must not mutate it.
func (e *Element) Node() *html.Node { return e.node }

// Inspect calls fn with the underlying html node while holding the
// document lock, so timers cannot change the tree during the call. fn must
// not mutate the node or call back into the document.
func (e *Element) Inspect(fn func(n *html.Node)) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	fn(e.node)
}

// Parent returns the parent element, or nil when detached or when the
// element is the document element.
func (e *Element) Parent() *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.parent
}

// Children returns a snapshot of the element children.
func (e *Element) Children() []*Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// ChildCount returns the number of element children.
func (e *Element) ChildCount() int {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return len(e.children)
}

// IsConnected reports whether the element is attached to its document.
func (e *Element) IsConnected() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for n := e; n != nil; n = n.parent {
		if n == e.doc.documentElement {
			return true
		}
	}
	return false
}

// =============================================================================
// Attributes
// =============================================================================

// SetAttribute sets an attribute. Names are lowercased on HTML elements.
func (e *Element) SetAttribute(name, value string) error {
	name = e.normalizeAttrName(name)
	if !validName(name) {
		return &InvalidNameError{Name: name, Kind: "attribute name"}
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.setAttrLocked(name, value)
	return nil
}

// Attribute returns the value of an attribute and whether it is present.
func (e *Element) Attribute(name string) (string, bool) {
	name = e.normalizeAttrName(name)
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.attrLocked(name)
}

// HasAttribute reports whether the attribute is present.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.Attribute(name)
	return ok
}

// RemoveAttribute removes an attribute if present.
func (e *Element) RemoveAttribute(name string) {
	name = e.normalizeAttrName(name)
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.removeAttrLocked(name)
}

// Attributes returns a copy of the attributes keyed by qualified name.
func (e *Element) Attributes() map[string]string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	out := make(map[string]string, len(e.node.Attr))
	for _, a := range e.node.Attr {
		out[qualifiedName(a)] = a.Val
	}
	return out
}

// AttributeNames returns the qualified attribute names in insertion order.
func (e *Element) AttributeNames() []string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	out := make([]string, 0, len(e.node.Attr))
	for _, a := range e.node.Attr {
		out = append(out, qualifiedName(a))
	}
	return out
}

func (e *Element) normalizeAttrName(name string) string {
	name = strings.TrimSpace(name)
	if e.node.Namespace == "" {
		return strings.ToLower(name)
	}
	return name
}

func (e *Element) attrLocked(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if qualifiedName(a) == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *Element) setAttrLocked(name, value string) {
	for i, a := range e.node.Attr {
		if qualifiedName(a) == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	ns, key := "", name
	if prefix, local, ok := strings.Cut(name, ":"); ok && (prefix == "xlink" || prefix == "xml") {
		ns, key = prefix, local
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Namespace: ns, Key: key, Val: value})
}

func (e *Element) removeAttrLocked(name string) {
	for i, a := range e.node.Attr {
		if qualifiedName(a) == name {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			return
		}
	}
}

func qualifiedName(a html.Attribute) string {
	if a.Namespace != "" {
		return a.Namespace + ":" + a.Key
	}
	return a.Key
}

// =============================================================================
// Properties
// =============================================================================

// SetProperty assigns a property directly on the element. A few properties
// reflect onto the tree the way the browser does: textContent, innerHTML,
// className and id. Everything else is stored on the element only and never
// appears in rendered markup.
func (e *Element) SetProperty(name string, value any) error {
	switch name {
	case "textContent":
		e.SetTextContent(stringify(value))
		return nil
	case "innerHTML":
		return e.SetInnerHTML(stringify(value))
	case "className":
		return e.SetAttribute("class", stringify(value))
	case "id":
		return e.SetAttribute("id", stringify(value))
	}

	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.props == nil {
		e.props = make(map[string]any)
	}
	e.props[name] = value
	return nil
}

// Property returns a property value and whether it is set.
func (e *Element) Property(name string) (any, bool) {
	switch name {
	case "textContent":
		return e.TextContent(), true
	case "innerHTML":
		return e.InnerHTML(), true
	case "className":
		v, _ := e.Attribute("class")
		return v, true
	case "id":
		v, _ := e.Attribute("id")
		return v, true
	}

	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	v, ok := e.props[name]
	return v, ok
}

// PropertyNames returns the names of stored properties in sorted order.
func (e *Element) PropertyNames() []string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	names := make([]string, 0, len(e.props))
	for k := range e.props {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// =============================================================================
// Content
// =============================================================================

// SetTextContent replaces all children with a single text node. An empty
// string leaves the element empty.
func (e *Element) SetTextContent(text string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.clearLocked()
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// TextContent returns the concatenated text of all descendant text nodes.
func (e *Element) TextContent() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var b strings.Builder
	collectText(&b, e.node)
	return b.String()
}

func collectText(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			collectText(b, c)
		}
	}
}

// SetInnerHTML replaces all children with the result of parsing markup as
// an HTML fragment in the context of this element.
func (e *Element) SetInnerHTML(markup string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return &ParseError{Reason: err.Error(), Err: err}
	}
	e.clearLocked()
	for _, n := range nodes {
		e.node.AppendChild(n)
		if n.Type == html.ElementNode {
			e.children = append(e.children, e.doc.adoptLocked(n, e))
		}
	}
	return nil
}

// InnerHTML serializes the element's children.
func (e *Element) InnerHTML() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// OuterHTML serializes the element itself.
func (e *Element) OuterHTML() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return ""
	}
	return buf.String()
}

// clearLocked detaches every child node.
func (e *Element) clearLocked() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	for _, child := range e.children {
		child.parent = nil
	}
	e.children = nil
}

// adoptLocked wraps a parsed node subtree in Elements.
func (d *Document) adoptLocked(n *html.Node, parent *Element) *Element {
	el := &Element{doc: d, node: n, parent: parent}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			el.children = append(el.children, d.adoptLocked(c, el))
		}
	}
	return el
}

// =============================================================================
// Tree mutation
// =============================================================================

// AppendChild appends child as the last child, detaching it from any
// previous parent first.
func (e *Element) AppendChild(child *Element) error {
	if child == nil {
		return fmt.Errorf("%w: nil child", ErrHierarchy)
	}
	if child.doc != e.doc {
		return fmt.Errorf("%w: element belongs to another document", ErrHierarchy)
	}

	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	for n := e; n != nil; n = n.parent {
		if n == child {
			return fmt.Errorf("%w: <%s> cannot contain its ancestor", ErrHierarchy, e.node.Data)
		}
	}
	if child == e.doc.documentElement {
		return fmt.Errorf("%w: the document element cannot be moved", ErrHierarchy)
	}
	if e.node.Namespace == "" && IsVoidElement(e.node.Data) {
		return fmt.Errorf("%w: <%s> is a void element", ErrHierarchy, e.node.Data)
	}

	child.detachLocked()
	e.appendLocked(child)
	return nil
}

func (e *Element) appendLocked(child *Element) {
	e.node.AppendChild(child.node)
	e.children = append(e.children, child)
	child.parent = e
}

// Remove detaches the element from its parent. It is a no-op for
// detached elements.
func (e *Element) Remove() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e == e.doc.documentElement {
		return
	}
	e.detachLocked()
}

func (e *Element) detachLocked() {
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
	p := e.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == e {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	e.parent = nil
}

func (e *Element) findLocked(match func(*Element) bool) *Element {
	if match(e) {
		return e
	}
	for _, c := range e.children {
		if found := c.findLocked(match); found != nil {
			return found
		}
	}
	return nil
}
