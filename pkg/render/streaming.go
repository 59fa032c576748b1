package render

import (
	"io"
	"net/http"
)

// StreamingRenderer wraps Renderer with chunked output support.
// It flushes content incrementally for faster time-to-first-byte.
type StreamingRenderer struct {
	*Renderer
	flusher http.Flusher
	w       io.Writer
}

// NewStreamingRenderer creates a streaming renderer that writes to
// an http.ResponseWriter. If the writer implements http.Flusher,
// content will be flushed after each section.
func NewStreamingRenderer(w http.ResponseWriter, config RendererConfig) *StreamingRenderer {
	flusher, _ := w.(http.Flusher)
	return &StreamingRenderer{
		Renderer: NewRenderer(config),
		flusher:  flusher,
		w:        w,
	}
}

// RenderPage renders a complete HTML document, flushing after the head
// and after the body content.
func (s *StreamingRenderer) RenderPage(page PageData) error {
	if err := s.renderOpen(s.w, page); err != nil {
		return err
	}
	if err := s.renderHead(s.w, page); err != nil {
		return err
	}
	s.flush()

	if err := s.renderBody(s.w, page); err != nil {
		return err
	}
	s.flush()

	if err := s.renderClose(s.w, page); err != nil {
		return err
	}
	s.flush()
	return nil
}

// flush flushes the writer if it supports flushing.
func (s *StreamingRenderer) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
