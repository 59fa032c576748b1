package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vango-dev/domkit/el"
	"github.com/vango-dev/domkit/pkg/dom"
)

func build(t *testing.T, doc *dom.Document, spec *el.Spec) *dom.Element {
	t.Helper()
	node, err := el.Build(doc, spec, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return node
}

func TestRenderElement(t *testing.T) {
	doc := dom.NewDocument()
	renderer := NewRenderer(RendererConfig{})

	node := build(t, doc, &el.Spec{
		Tag:   "div",
		Class: "container",
		Content: []*el.Spec{
			{Tag: "h1", Text: "Title"},
			{Tag: "p", Text: "Content"},
		},
	})

	got, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<div class="container"><h1>Title</h1><p>Content</p></div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderTextEscaping(t *testing.T) {
	doc := dom.NewDocument()
	renderer := NewRenderer(RendererConfig{})

	node := build(t, doc, &el.Spec{Tag: "p", Text: "<script>alert('xss')</script>"})
	got, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("HTML should be escaped, got %q", got)
	}
	if got != `<p>&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;</p>` {
		t.Errorf("got %q", got)
	}
}

func TestRenderAttributes(t *testing.T) {
	doc := dom.NewDocument()
	renderer := NewRenderer(RendererConfig{})

	tests := []struct {
		name string
		spec *el.Spec
		want string
	}{
		{
			name: "void element",
			spec: &el.Spec{Tag: "input", Attrs: map[string]any{"type": "text", "name": "email"}},
			want: `<input name="email" type="text">`,
		},
		{
			name: "escaped value",
			spec: &el.Spec{Tag: "a", Attrs: map[string]any{"title": `a "b" & <c>`}},
			want: `<a title="a &quot;b&quot; &amp; &lt;c&gt;"></a>`,
		},
		{
			name: "boolean attribute with empty value",
			spec: &el.Spec{Tag: "button", Text: "Go", Attrs: map[string]any{"disabled": ""}},
			want: `<button disabled>Go</button>`,
		},
		{
			name: "boolean attribute keeps explicit value",
			spec: &el.Spec{Tag: "input", Attrs: map[string]any{"required": true}},
			want: `<input required="true">`,
		},
		{
			name: "empty non-boolean value",
			spec: &el.Spec{Tag: "img", Attrs: map[string]any{"alt": ""}},
			want: `<img alt="">`,
		},
		{
			name: "id and class first",
			spec: &el.Spec{Tag: "span", ID: "x", Class: "y", Attrs: map[string]any{"data-a": 1}},
			want: `<span id="x" class="y" data-a="1"></span>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderer.RenderToString(build(t, doc, tt.spec))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	doc := dom.NewDocument()
	renderer := NewRenderer(RendererConfig{})

	node := build(t, doc, &el.Spec{
		SVG: `<svg xmlns="http://www.w3.org/2000/svg" width="16"><circle r="4"/></svg>`,
	})
	got, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<svg xmlns="http://www.w3.org/2000/svg" width="16"><circle r="4"/></svg>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderRawText(t *testing.T) {
	doc := dom.NewDocument()
	renderer := NewRenderer(RendererConfig{})

	node := build(t, doc, &el.Spec{Tag: "script", Text: "if (a < b && c) {}"})
	got, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `<script>if (a < b && c) {}</script>` {
		t.Errorf("script content should not be escaped, got %q", got)
	}
}

func TestRenderInnerHTML(t *testing.T) {
	doc := dom.NewDocument()
	renderer := NewRenderer(RendererConfig{})

	node := build(t, doc, &el.Spec{Tag: "div", HTML: "<!-- note --><b>x</b>"})
	got, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `<div><!-- note --><b>x</b></div>` {
		t.Errorf("got %q", got)
	}
}

func TestRenderPretty(t *testing.T) {
	doc := dom.NewDocument()
	renderer := NewRenderer(RendererConfig{Pretty: true})

	node := build(t, doc, &el.Spec{
		Tag:   "div",
		Class: "card",
		Content: []*el.Spec{
			{Tag: "h1", Text: "Title"},
			{Tag: "ul", Content: []*el.Spec{{Text: "A"}}},
			{Tag: "p", HTML: "Hello <b>world</b>"},
		},
	})

	got, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := strings.Join([]string{
		`<div class="card">`,
		`  <h1>Title</h1>`,
		`  <ul>`,
		`    <li>A</li>`,
		`  </ul>`,
		`  <p>Hello <b>world</b></p>`,
		`</div>`,
		``,
	}, "\n")
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderPrettyCustomIndent(t *testing.T) {
	doc := dom.NewDocument()
	renderer := NewRenderer(RendererConfig{Pretty: true, Indent: "\t"})

	node := build(t, doc, &el.Spec{Tag: "section", Content: []*el.Spec{{Tag: "hr"}}})
	got, _ := renderer.RenderToString(node)
	if got != "<section>\n\t<hr>\n</section>\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderNil(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer(RendererConfig{}).RenderToWriter(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestRenderDocument(t *testing.T) {
	doc := dom.NewDocument()
	p := build(t, doc, &el.Spec{Tag: "p", Text: "hi"})
	if err := doc.Body().AppendChild(p); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := NewRenderer(RendererConfig{}).RenderDocument(&buf, doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := buf.String()
	if !strings.HasPrefix(got, "<!DOCTYPE html>\n<html") {
		t.Errorf("missing doctype: %q", got)
	}
	if !strings.Contains(got, "<body><p>hi</p></body>") {
		t.Errorf("missing body content: %q", got)
	}
}
