package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/domkit/pkg/dom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables pretty-printed HTML output with indentation.
	// Elements containing text are kept on one line so whitespace in
	// content is never changed.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string
}

// Renderer serializes live element trees to HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders an element and its subtree to a string.
func (r *Renderer) RenderToString(el *dom.Element) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, el); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams an element and its subtree to w. The document is
// locked for the duration of the call.
func (r *Renderer) RenderToWriter(w io.Writer, el *dom.Element) error {
	if el == nil {
		return nil
	}
	var err error
	el.Inspect(func(n *html.Node) {
		err = r.renderNode(w, n, 0, r.config.Pretty)
	})
	return err
}

// RenderDocument writes the doctype followed by the document element.
func (r *Renderer) RenderDocument(w io.Writer, doc *dom.Document) error {
	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	return r.RenderToWriter(w, doc.DocumentElement())
}

// renderNode dispatches rendering based on node type.
func (r *Renderer) renderNode(w io.Writer, n *html.Node, depth int, pretty bool) error {
	switch n.Type {
	case html.ElementNode:
		return r.renderElement(w, n, depth, pretty)
	case html.TextNode:
		return r.renderText(w, n)
	case html.CommentNode:
		if pretty {
			r.writeIndent(w, depth)
		}
		if _, err := fmt.Fprintf(w, "<!--%s-->", n.Data); err != nil {
			return err
		}
		if pretty {
			_, err := w.Write([]byte{'\n'})
			return err
		}
		return nil
	case html.RawNode:
		_, err := io.WriteString(w, n.Data)
		return err
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := r.renderNode(w, c, depth, pretty); err != nil {
				return err
			}
		}
		return nil
	case html.DoctypeNode:
		_, err := fmt.Fprintf(w, "<!DOCTYPE %s>\n", n.Data)
		return err
	default:
		return fmt.Errorf("render: unsupported node type %d", n.Type)
	}
}

// renderElement renders an element with its attributes and children.
func (r *Renderer) renderElement(w io.Writer, n *html.Node, depth int, pretty bool) error {
	tag := n.Data

	if pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, n); err != nil {
		return err
	}

	foreign := n.Namespace != ""
	switch {
	case !foreign && dom.IsVoidElement(tag):
		if _, err := w.Write([]byte{'>'}); err != nil {
			return err
		}
		return r.newline(w, pretty)
	case foreign && n.FirstChild == nil:
		if _, err := io.WriteString(w, "/>"); err != nil {
			return err
		}
		return r.newline(w, pretty)
	}

	if _, err := w.Write([]byte{'>'}); err != nil {
		return err
	}

	// Only element-only content is reflowed; anything with text stays inline.
	block := pretty && n.FirstChild != nil && !isInlineElement(tag) && elementOnly(n)
	if block {
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return err
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if block && c.Type == html.TextNode {
			continue
		}
		if c.Type == html.TextNode && !foreign && rawTextElements[tag] {
			if _, err := io.WriteString(w, c.Data); err != nil {
				return err
			}
			continue
		}
		if err := r.renderNode(w, c, depth+1, block); err != nil {
			return err
		}
	}

	if block {
		r.writeIndent(w, depth)
	}
	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	return r.newline(w, pretty)
}

// renderText renders a text node with HTML escaping.
func (r *Renderer) renderText(w io.Writer, n *html.Node) error {
	_, err := io.WriteString(w, escapeHTML(n.Data))
	return err
}

// renderAttributes renders attributes in document order.
func (r *Renderer) renderAttributes(w io.Writer, n *html.Node) error {
	for _, a := range n.Attr {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + a.Key
		}

		if n.Namespace == "" && isBooleanAttr(key) && (a.Val == "" || strings.EqualFold(a.Val, key)) {
			if _, err := io.WriteString(w, " "+key); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(a.Val)); err != nil {
			return err
		}
	}
	return nil
}

// elementOnly reports whether n has no non-whitespace text children.
func elementOnly(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return false
		}
	}
	return true
}

func (r *Renderer) newline(w io.Writer, pretty bool) error {
	if !pretty {
		return nil
	}
	_, err := w.Write([]byte{'\n'})
	return err
}

// writeIndent writes indentation for pretty printing.
func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, r.config.Indent)
	}
}
