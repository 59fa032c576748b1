// Package render serializes live dom trees to HTML.
//
// The Renderer walks the html nodes behind a *dom.Element while holding the
// document lock, so pages can be rendered while toast timers are running:
//
//	renderer := render.NewRenderer(render.RendererConfig{Pretty: true})
//	out, err := renderer.RenderToString(node)
//
// Text and attribute values are escaped. Void elements have no closing tag,
// childless SVG elements self-close, and the content of <script> and
// <style> is written verbatim.
//
// # Full Page Rendering
//
// RenderPage writes a document with head metadata, the body tree, and
// optionally the toast client script:
//
//	err := renderer.RenderPage(w, render.PageData{
//	    Title:       "Dashboard",
//	    Body:        doc.Body(),
//	    ToastClient: true,
//	})
//
// Page does the same with defaults. StreamingRenderer flushes after the
// head and the body for faster first paint.
package render
