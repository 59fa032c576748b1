package dom

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	namespaceXLink = "http://www.w3.org/1999/xlink"
	namespaceXML   = "http://www.w3.org/XML/1998/namespace"
)

// ParseSVG parses standalone SVG markup into a detached element. The markup
// must be well-formed XML with a single <svg> root that declares
// xmlns="http://www.w3.org/2000/svg".
func (d *Document) ParseSVG(markup string) (*Element, error) {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = true

	var (
		root  *html.Node
		stack []*html.Node
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, syntaxError(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, &ParseError{Line: line(dec, markup), Reason: "extra content after the document element"}
			}
			if root == nil {
				if t.Name.Local != "svg" {
					return nil, &ParseError{Line: line(dec, markup), Reason: "root element is <" + t.Name.Local + ">, want <svg>"}
				}
				if t.Name.Space != NamespaceSVG {
					return nil, &ParseError{Line: line(dec, markup), Reason: "<svg> does not declare the SVG namespace"}
				}
			}
			n := svgNode(t)
			if len(stack) > 0 {
				stack[len(stack)-1].AppendChild(n)
			} else {
				root = n
			}
			stack = append(stack, n)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, &ParseError{Line: line(dec, markup), Reason: "text outside the document element"}
				}
				continue
			}
			stack[len(stack)-1].AppendChild(&html.Node{Type: html.TextNode, Data: string(t)})

		case xml.Comment:
			if len(stack) > 0 {
				stack[len(stack)-1].AppendChild(&html.Node{Type: html.CommentNode, Data: string(t)})
			}
		}
	}

	if root == nil {
		return nil, &ParseError{Reason: "no root element"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.adoptLocked(root, nil), nil
}

func svgNode(t xml.StartElement) *html.Node {
	ns := "svg"
	if t.Name.Space == NamespaceHTML {
		ns = ""
	}
	n := &html.Node{
		Type:      html.ElementNode,
		Data:      t.Name.Local,
		DataAtom:  atom.Lookup([]byte(t.Name.Local)),
		Namespace: ns,
	}
	for _, a := range t.Attr {
		n.Attr = append(n.Attr, svgAttr(a))
	}
	return n
}

// svgAttr maps an XML attribute onto the attribute forms x/net/html
// renders: plain keys, xmlns declarations, and xlink/xml prefixed keys.
func svgAttr(a xml.Attr) html.Attribute {
	switch a.Name.Space {
	case "":
		return html.Attribute{Key: a.Name.Local, Val: a.Value}
	case "xmlns":
		return html.Attribute{Key: "xmlns:" + a.Name.Local, Val: a.Value}
	case namespaceXLink, "xlink":
		return html.Attribute{Namespace: "xlink", Key: a.Name.Local, Val: a.Value}
	case namespaceXML, "xml":
		return html.Attribute{Namespace: "xml", Key: a.Name.Local, Val: a.Value}
	default:
		return html.Attribute{Key: a.Name.Local, Val: a.Value}
	}
}

func syntaxError(err error) *ParseError {
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return &ParseError{Line: se.Line, Reason: se.Msg, Err: err}
	}
	return &ParseError{Reason: err.Error(), Err: err}
}

// line reports the 1-based line of the decoder's current offset.
func line(dec *xml.Decoder, markup string) int {
	off := int(dec.InputOffset())
	if off > len(markup) {
		off = len(markup)
	}
	return strings.Count(markup[:off], "\n") + 1
}
