package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vango-dev/domkit/el"
	"github.com/vango-dev/domkit/pkg/dom"
	"github.com/vango-dev/domkit/pkg/toast"
)

func TestRenderPage(t *testing.T) {
	doc := dom.NewDocument()
	p := build(t, doc, &el.Spec{Tag: "p", Text: "hi"})
	doc.Body().AppendChild(p)

	renderer := NewRenderer(RendererConfig{})
	var buf bytes.Buffer
	err := renderer.RenderPage(&buf, PageData{
		Title: "Dash <1>",
		Body:  doc.Body(),
		Head: Head{
			Meta:        []MetaTag{{Name: "description", Content: "A test"}, {Property: "og:title", Content: "Dash"}},
			Links:       []LinkTag{{Rel: "icon", Href: "/favicon.svg", Type: "image/svg+xml"}, {Rel: "preload", Href: "/font.woff2", CrossOrigin: "anonymous"}},
			StyleSheets: []string{"/app.css"},
			Scripts: []ScriptTag{
				{Src: "/head.js", Defer: true},
				{Src: "/mod.js", Module: true, Async: true},
				{Inline: "console.log(1)"},
			},
		},
		ToastClient: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html := buf.String()

	checks := []string{
		"<!DOCTYPE html>\n<html lang=\"en\">\n",
		"<title>Dash &lt;1&gt;</title>",
		`<meta name="description" content="A test">`,
		`<meta property="og:title" content="Dash">`,
		`<link rel="icon" href="/favicon.svg" type="image/svg+xml">`,
		`<link rel="preload" href="/font.woff2" crossorigin="anonymous">`,
		`<link rel="stylesheet" href="/app.css">`,
		`<script src="/mod.js" type="module" async></script>`,
		`<script src="/head.js" defer></script>`,
		"<p>hi</p>",
		"<script>console.log(1)</script>",
		toast.EventName,
	}
	for _, want := range checks {
		if !strings.Contains(html, want) {
			t.Errorf("page should contain %q\n%s", want, html)
		}
	}
	if strings.Count(html, "<body") != 1 {
		t.Errorf("body element should not be nested:\n%s", html)
	}
	if !strings.HasSuffix(html, "</body>\n</html>\n") {
		t.Errorf("page should end with closing tags:\n%s", html)
	}
	if strings.Index(html, "/head.js") > strings.Index(html, "</head>") {
		t.Error("deferred scripts belong in the head")
	}
}

func TestRenderPage_NonBodyElement(t *testing.T) {
	doc := dom.NewDocument()
	main := build(t, doc, &el.Spec{Tag: "main", Text: "content"})

	var buf bytes.Buffer
	if err := NewRenderer(RendererConfig{}).RenderPage(&buf, PageData{Body: main, Lang: "fr"}); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	if !strings.Contains(html, `<html lang="fr">`) {
		t.Error("missing lang")
	}
	if !strings.Contains(html, "<body>\n<main>content</main>") {
		t.Errorf("main should be the body's child:\n%s", html)
	}
	if strings.Contains(html, toast.EventName) {
		t.Error("toast client should be opt-in")
	}
}

func TestPage(t *testing.T) {
	doc := dom.NewDocument()
	var buf bytes.Buffer
	if err := Page(&buf, "Home", doc.Body()); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	if !strings.Contains(html, "<title>Home</title>") {
		t.Error("missing title")
	}
	if !strings.Contains(html, ".toast-container") {
		t.Error("missing toast styles")
	}
	if !strings.Contains(html, toast.EventName) {
		t.Error("missing toast client script")
	}
}

func TestHeadMerge(t *testing.T) {
	base := Head{StyleSheets: []string{"/a.css"}, Meta: []MetaTag{{Name: "x", Content: "1"}}}
	merged := base.Merge(Head{StyleSheets: []string{"/b.css"}, Scripts: []ScriptTag{{Src: "/b.js"}}})

	if len(merged.StyleSheets) != 2 || merged.StyleSheets[1] != "/b.css" {
		t.Errorf("StyleSheets = %v", merged.StyleSheets)
	}
	if len(merged.Meta) != 1 || len(merged.Scripts) != 1 {
		t.Errorf("merged = %+v", merged)
	}
	if len(base.StyleSheets) != 1 {
		t.Error("Merge must not modify the receiver")
	}
}

func TestRenderPage_ToastContainerID(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer(RendererConfig{}).RenderPage(&buf, PageData{ToastClient: true, ToastContainerID: `alerts"x`})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `<script data-container="alerts&#34;x">`) {
		t.Errorf("container id not passed to the client:\n%s", buf.String())
	}

	buf.Reset()
	NewRenderer(RendererConfig{}).RenderPage(&buf, PageData{ToastClient: true})
	if !strings.Contains(buf.String(), `data-container="`+toast.DefaultContainerID+`"`) {
		t.Errorf("default container id missing:\n%s", buf.String())
	}
}
