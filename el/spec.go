package el

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/vango-dev/domkit/pkg/dom"
)

// Spec describes one element and its subtree.
type Spec struct {
	// Node short-circuits construction: Build returns it unchanged.
	Node *dom.Element

	// SVG is standalone SVG markup parsed in place of construction.
	SVG string

	// Tag is the element name. When empty it is inferred from the parent.
	Tag string

	// Text sets the text content. Applied before HTML.
	Text string

	// HTML sets the inner markup. Applied after Text.
	HTML string

	// ID and Class are the id and class attributes.
	ID    string
	Class string

	// Attrs holds any other attributes. Values must be strings, booleans,
	// numbers, or fmt.Stringers; nil values are skipped.
	Attrs map[string]any

	// Props are assigned directly on the element, bypassing attributes.
	Props map[string]any

	// Content lists the children in order. Nil entries are skipped.
	Content []*Spec

	// Events maps event names (e.g. "click") to listeners.
	Events map[string]dom.Listener

	// Callback runs after construction with the element, this Spec and the
	// parent passed to Build.
	Callback func(node *dom.Element, spec *Spec, parent *dom.Element)
}

var reserved = map[string]bool{
	"tag":      true,
	"text":     true,
	"html":     true,
	"props":    true,
	"content":  true,
	"events":   true,
	"callback": true,
	"svg":      true,
	"node":     true,
}

// IsReserved reports whether name is a structural key that is never applied
// as an attribute.
func IsReserved(name string) bool {
	return reserved[name]
}

// ReservedKeys returns the reserved structural keys in sorted order.
func ReservedKeys() []string {
	keys := make([]string, 0, len(reserved))
	for k := range reserved {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decode reads a JSON description.
func Decode(r io.Reader) (*Spec, error) {
	var s Spec
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UnmarshalJSON decodes the loose description shape: structural keys at the
// top level and every other top-level key treated as an attribute. The
// events and callback keys cannot be expressed in JSON and are ignored.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Spec{}
	for key, msg := range raw {
		var err error
		switch key {
		case "tag":
			s.Tag, err = jsonString(msg)
		case "text":
			s.Text, err = jsonString(msg)
		case "html":
			s.HTML, err = jsonString(msg)
		case "svg":
			s.SVG, err = jsonString(msg)
		case "props":
			err = decodeNumbers(msg, &s.Props)
		case "content":
			err = json.Unmarshal(msg, &s.Content)
		case "events", "callback", "node":
		default:
			var v any
			if err = decodeNumbers(msg, &v); err != nil {
				break
			}
			if str, ok := v.(string); ok && (key == "id" || key == "class") {
				if key == "id" {
					s.ID = str
				} else {
					s.Class = str
				}
				break
			}
			if s.Attrs == nil {
				s.Attrs = make(map[string]any)
			}
			s.Attrs[key] = v
		}
		if err != nil {
			return fmt.Errorf("el: field %q: %w", key, err)
		}
	}
	return nil
}

func decodeNumbers(msg json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	return dec.Decode(v)
}

// jsonString accepts a JSON string, number, boolean or null.
func jsonString(msg json.RawMessage) (string, error) {
	var v any
	if err := decodeNumbers(msg, &v); err != nil {
		return "", err
	}
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}
