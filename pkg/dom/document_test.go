package dom

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func mustCreate(t *testing.T, d *Document, tag string) *Element {
	t.Helper()
	el, err := d.CreateElement(tag)
	if err != nil {
		t.Fatalf("CreateElement(%q) error: %v", tag, err)
	}
	return el
}

func TestNewDocument(t *testing.T) {
	d := NewDocument()

	want := "<!DOCTYPE html><html><head></head><body></body></html>"
	if got := d.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if d.Body().Parent() != d.DocumentElement() {
		t.Error("body should be a child of the document element")
	}
	if !d.Body().IsConnected() {
		t.Error("body should be connected")
	}
	if d.DocumentElement().Parent() != nil {
		t.Error("document element has no parent element")
	}
}

func TestCreateElement(t *testing.T) {
	d := NewDocument()

	t.Run("lowercases tag", func(t *testing.T) {
		el := mustCreate(t, d, "DIV")
		if el.Tag() != "div" {
			t.Errorf("Tag() = %q, want div", el.Tag())
		}
		if el.Namespace() != NamespaceHTML {
			t.Errorf("Namespace() = %q", el.Namespace())
		}
		if el.IsConnected() {
			t.Error("new element should be detached")
		}
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		for _, tag := range []string{"", "a b", "x>y", "p/"} {
			_, err := d.CreateElement(tag)
			var nameErr *InvalidNameError
			if !errors.As(err, &nameErr) {
				t.Errorf("CreateElement(%q) error = %v, want InvalidNameError", tag, err)
			}
		}
	})

	t.Run("svg namespace preserves case", func(t *testing.T) {
		el, err := d.CreateElementNS(NamespaceSVG, "linearGradient")
		if err != nil {
			t.Fatal(err)
		}
		if el.Tag() != "linearGradient" || el.Namespace() != NamespaceSVG {
			t.Errorf("got <%s> in %q", el.Tag(), el.Namespace())
		}
	})

	t.Run("unknown namespace", func(t *testing.T) {
		if _, err := d.CreateElementNS("urn:example", "x"); err == nil {
			t.Error("expected error for unknown namespace")
		}
	})
}

func TestGetElementByID(t *testing.T) {
	d := NewDocument()
	outer := mustCreate(t, d, "div")
	inner := mustCreate(t, d, "span")
	_ = inner.SetAttribute("id", "target")

	if d.GetElementByID("target") != nil {
		t.Fatal("detached element should not be found")
	}

	_ = outer.AppendChild(inner)
	_ = d.Body().AppendChild(outer)

	if got := d.GetElementByID("target"); got != inner {
		t.Errorf("GetElementByID() = %v, want inner span", got)
	}
	if d.GetElementByID("missing") != nil {
		t.Error("expected nil for missing id")
	}
}

func TestDocumentConcurrentMutation(t *testing.T) {
	d := NewDocument()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			el, err := d.CreateElement("p")
			if err != nil {
				t.Error(err)
				return
			}
			el.SetTextContent("hello")
			el.Style().Set("opacity", "1")
			if err := d.Body().AppendChild(el); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := d.Body().ChildCount(); got != 20 {
		t.Errorf("ChildCount() = %d, want 20", got)
	}
	if strings.Count(d.String(), "<p ") != 20 {
		t.Errorf("expected 20 rendered paragraphs in %s", d.String())
	}
}
