package dom

import "strings"

// Style is a view over an element's inline style attribute.
type Style struct {
	el *Element
}

// Style returns the inline style view of the element.
func (e *Element) Style() Style {
	return Style{el: e}
}

type declaration struct {
	prop  string
	value string
}

// Get returns the value of a style property, or "" if unset.
func (s Style) Get(prop string) string {
	prop = strings.ToLower(strings.TrimSpace(prop))
	s.el.doc.mu.Lock()
	defer s.el.doc.mu.Unlock()
	for _, d := range s.declarationsLocked() {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

// Set assigns a style property. An empty value removes it.
func (s Style) Set(prop, value string) {
	prop = strings.ToLower(strings.TrimSpace(prop))
	value = strings.TrimSpace(value)
	if prop == "" {
		return
	}

	s.el.doc.mu.Lock()
	defer s.el.doc.mu.Unlock()

	decls := s.declarationsLocked()
	found := false
	out := decls[:0]
	for _, d := range decls {
		if d.prop == prop {
			found = true
			if value == "" {
				continue
			}
			d.value = value
		}
		out = append(out, d)
	}
	if !found && value != "" {
		out = append(out, declaration{prop: prop, value: value})
	}
	s.writeLocked(out)
}

// Remove deletes a style property.
func (s Style) Remove(prop string) {
	s.Set(prop, "")
}

// CSSText returns the serialized inline style.
func (s Style) CSSText() string {
	s.el.doc.mu.Lock()
	defer s.el.doc.mu.Unlock()
	v, _ := s.el.attrLocked("style")
	return v
}

func (s Style) declarationsLocked() []declaration {
	raw, _ := s.el.attrLocked("style")
	var decls []declaration
	for _, part := range strings.Split(raw, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" {
			continue
		}
		decls = append(decls, declaration{prop: prop, value: value})
	}
	return decls
}

func (s Style) writeLocked(decls []declaration) {
	if len(decls) == 0 {
		s.el.removeAttrLocked("style")
		return
	}
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.prop + ": " + d.value
	}
	s.el.setAttrLocked("style", strings.Join(parts, "; ")+";")
}
