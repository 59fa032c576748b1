package render

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/domkit/pkg/dom"
	"github.com/vango-dev/domkit/pkg/toast"
)

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the page content. A <body> element has its children
	// rendered into the page body; any other element is rendered as the
	// body's only child.
	Body *dom.Element

	// Title is the page title
	Title string

	// Head holds the extra meta, link and script elements.
	Head

	// Styles contains inline CSS styles
	Styles []string

	// ToastClient injects the script that mirrors toast hub events.
	ToastClient bool

	// ToastContainerID is the container id the toast client uses.
	// Defaults to toast.DefaultContainerID.
	ToastContainerID string

	// Lang is the language attribute for the html element
	// Defaults to "en" if not specified
	Lang string
}

// Head lists the elements added to the document head. It is decoded from
// the head section of domkit.json.
type Head struct {
	Meta        []MetaTag   `json:"meta,omitempty"`
	Links       []LinkTag   `json:"links,omitempty"`
	Scripts     []ScriptTag `json:"scripts,omitempty"`
	StyleSheets []string    `json:"stylesheets,omitempty"`
}

// Merge returns h with other's entries appended.
func (h Head) Merge(other Head) Head {
	return Head{
		Meta:        append(append([]MetaTag(nil), h.Meta...), other.Meta...),
		Links:       append(append([]LinkTag(nil), h.Links...), other.Links...),
		Scripts:     append(append([]ScriptTag(nil), h.Scripts...), other.Scripts...),
		StyleSheets: append(append([]string(nil), h.StyleSheets...), other.StyleSheets...),
	}
}

// MetaTag is a <meta> element. Property is used for OpenGraph tags.
type MetaTag struct {
	Name     string `json:"name,omitempty"`
	Property string `json:"property,omitempty"`
	Content  string `json:"content"`
}

// LinkTag is a <link> element.
type LinkTag struct {
	Rel         string `json:"rel"`
	Href        string `json:"href"`
	Type        string `json:"type,omitempty"`
	Sizes       string `json:"sizes,omitempty"`
	Media       string `json:"media,omitempty"`
	CrossOrigin string `json:"crossorigin,omitempty"`
}

// ScriptTag is a <script> element. Deferred and async scripts go in the
// head; the rest are written at the end of the body.
type ScriptTag struct {
	Src    string `json:"src,omitempty"`
	Module bool   `json:"module,omitempty"`
	Defer  bool   `json:"defer,omitempty"`
	Async  bool   `json:"async,omitempty"`
	Inline string `json:"inline,omitempty"`
}

func (t MetaTag) attrs() []attr {
	return []attr{{"name", t.Name}, {"property", t.Property}, {"content", t.Content}}
}

func (t LinkTag) attrs() []attr {
	return []attr{
		{"rel", t.Rel}, {"href", t.Href}, {"type", t.Type},
		{"sizes", t.Sizes}, {"media", t.Media}, {"crossorigin", t.CrossOrigin},
	}
}

func (t ScriptTag) attrs() []attr {
	out := []attr{{"src", t.Src}}
	if t.Module {
		out = append(out, attr{"type", "module"})
	}
	if t.Defer {
		out = append(out, attr{"defer", ""})
	}
	if t.Async {
		out = append(out, attr{"async", ""})
	}
	return out
}

func (t ScriptTag) inHead() bool { return t.Defer || t.Async }

// ToastStyles is a minimal stylesheet for toasts.
const ToastStyles = `.toast-container{display:flex;flex-direction:column;gap:.5rem}` +
	`.toast{padding:.75rem 1rem;border-radius:.375rem;background:#333;color:#fff;font:14px/1.4 system-ui,sans-serif}` +
	`.toast-success{background:#15803d}.toast-error{background:#b91c1c}` +
	`.toast-warning{background:#b45309}.toast-info{background:#1d4ed8}`

// Page renders a page with the toast styles and client script, using a
// default Renderer.
func Page(w io.Writer, title string, body *dom.Element) error {
	return NewRenderer(RendererConfig{}).RenderPage(w, PageData{
		Title:       title,
		Body:        body,
		Styles:      []string{ToastStyles},
		ToastClient: true,
	})
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	if err := r.renderOpen(w, page); err != nil {
		return err
	}
	if err := r.renderHead(w, page); err != nil {
		return err
	}
	if err := r.renderBody(w, page); err != nil {
		return err
	}
	return r.renderClose(w, page)
}

func (r *Renderer) renderOpen(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"%s\">\n", escapeAttr(lang))
	return err
}

func (r *Renderer) renderBody(w io.Writer, page PageData) error {
	if _, err := w.Write([]byte("<body>\n")); err != nil {
		return err
	}
	if page.Body == nil {
		return nil
	}
	if page.Body.Tag() != "body" {
		return r.RenderToWriter(w, page.Body)
	}
	var err error
	page.Body.Inspect(func(n *html.Node) {
		for c := n.FirstChild; c != nil && err == nil; c = c.NextSibling {
			err = r.renderNode(w, c, 0, r.config.Pretty)
		}
	})
	return err
}

func (r *Renderer) renderClose(w io.Writer, page PageData) error {
	for _, script := range page.Scripts {
		if !script.inHead() {
			if err := writeTag(w, "script", script.attrs(), script.Inline, true); err != nil {
				return err
			}
		}
	}
	if page.ToastClient {
		if _, err := io.WriteString(w, toast.ClientScript(page.ToastContainerID)); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte("</body>\n</html>\n"))
	return err
}

// renderHead renders the document head section.
func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	if _, err := w.Write([]byte("<head>\n")); err != nil {
		return err
	}

	// Charset
	if _, err := w.Write([]byte(`  <meta charset="utf-8">` + "\n")); err != nil {
		return err
	}

	// Viewport
	if _, err := w.Write([]byte(`  <meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")); err != nil {
		return err
	}

	// Title
	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "  <title>%s</title>\n", escapeHTML(page.Title)); err != nil {
			return err
		}
	}

	for _, meta := range page.Meta {
		if err := writeTag(w, "meta", meta.attrs(), "", false); err != nil {
			return err
		}
	}
	for _, link := range page.Links {
		if err := writeTag(w, "link", link.attrs(), "", false); err != nil {
			return err
		}
	}
	for _, href := range page.StyleSheets {
		if err := writeTag(w, "link", []attr{{"rel", "stylesheet"}, {"href", href}}, "", false); err != nil {
			return err
		}
	}

	// Inline styles
	for _, style := range page.Styles {
		if _, err := fmt.Fprintf(w, "  <style>%s</style>\n", style); err != nil {
			return err
		}
	}

	for _, script := range page.Scripts {
		if script.inHead() {
			if err := writeTag(w, "script", script.attrs(), script.Inline, true); err != nil {
				return err
			}
		}
	}

	if _, err := w.Write([]byte("</head>\n")); err != nil {
		return err
	}

	return nil
}

type attr struct{ key, val string }

// writeTag writes one indented head or tail element. Attributes with an
// empty value are skipped, except the valueless defer and async flags.
// Inline content is written raw.
func writeTag(w io.Writer, name string, attrs []attr, inline string, closed bool) error {
	var b strings.Builder
	b.WriteString("  <")
	b.WriteString(name)
	for _, a := range attrs {
		switch {
		case a.key == "defer" || a.key == "async":
			b.WriteString(" " + a.key)
		case a.val != "":
			b.WriteString(" " + a.key + `="` + escapeAttr(a.val) + `"`)
		}
	}
	b.WriteString(">")
	if closed {
		b.WriteString(inline)
		b.WriteString("</" + name + ">")
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
