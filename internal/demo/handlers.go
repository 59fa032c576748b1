package demo

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/domkit/pkg/fetch"
	"github.com/vango-dev/domkit/pkg/render"
	"github.com/vango-dev/domkit/pkg/toast"
)

// ShowRequest is the body of POST /api/toast.
type ShowRequest struct {
	Message string     `json:"message"`
	Level   toast.Type `json:"level,omitempty"`
	Long    bool       `json:"long,omitempty"`
}

// ShowResponse is returned by POST /api/toast.
type ShowResponse struct {
	ID toast.ID `json:"id"`
}

// CheckRequest is the body of POST /api/check.
type CheckRequest struct {
	URL    string `json:"url"`
	Method string `json:"method,omitempty"`
}

// CheckResponse is returned by POST /api/check.
type CheckResponse struct {
	OK      bool           `json:"ok"`
	Status  int            `json:"status"`
	Problem *fetch.Problem `json:"problem,omitempty"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	sr := render.NewStreamingRenderer(w, render.RendererConfig{Pretty: s.config.Pretty})
	err := sr.RenderPage(render.PageData{
		Title:            s.config.Title,
		Body:             s.doc.Body(),
		Head:             s.config.Head,
		Styles:           []string{render.ToastStyles},
		ToastClient:      true,
		ToastContainerID: s.notifier.ContainerID(),
	})
	if err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

func (s *Server) handleListToasts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]toast.ID{"active": s.notifier.Active()})
}

func (s *Server) handleShowToast(w http.ResponseWriter, r *http.Request) {
	var req ShowRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "request body must be JSON: "+err.Error())
		return
	}
	if req.Message == "" {
		writeProblem(w, http.StatusBadRequest, "message is required")
		return
	}
	switch req.Level {
	case toast.TypeDefault, toast.TypeSuccess, toast.TypeError, toast.TypeWarning, toast.TypeInfo:
	default:
		writeProblem(w, http.StatusBadRequest, fmt.Sprintf("unknown level %q", req.Level))
		return
	}

	id := s.notifier.ShowLevel(req.Level, req.Message, req.Long)
	if id == 0 {
		writeProblem(w, http.StatusInternalServerError, "toast could not be shown")
		return
	}
	level := string(req.Level)
	if level == "" {
		level = "default"
	}
	s.toastsShown.WithLabelValues(level).Inc()
	writeJSON(w, http.StatusCreated, ShowResponse{ID: id})
}

func (s *Server) handleRemoveToast(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}
	if !s.notifier.Remove(toast.ID(id)) {
		writeProblem(w, http.StatusNotFound, fmt.Sprintf("no active toast %d", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProblem answers with the requested status. The shape query
// parameter selects the body: problem (default), message, empty or text.
func (s *Server) handleProblem(w http.ResponseWriter, r *http.Request) {
	status, err := strconv.Atoi(chi.URLParam(r, "status"))
	if err != nil || status < 400 || status > 599 {
		writeProblem(w, http.StatusBadRequest, "status must be between 400 and 599")
		return
	}

	switch r.URL.Query().Get("shape") {
	case "", "problem":
		writeProblem(w, status, http.StatusText(status))
	case "message":
		writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
	case "empty":
		writeJSON(w, status, map[string]string{})
	case "text":
		http.Error(w, http.StatusText(status), status)
	default:
		writeProblem(w, http.StatusBadRequest, "shape must be problem, message, empty or text")
	}
}

// handleCheck requests a URL and shows the resulting problem as a toast.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil || req.URL == "" {
		writeProblem(w, http.StatusBadRequest, "body must be JSON with a url")
		return
	}

	resp, err := s.client.Request(r.Context(), req.URL, req.Method, nil, nil)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, err.Error())
		return
	}
	defer resp.Close()

	out := CheckResponse{OK: resp.OK(), Status: resp.Status()}
	if problem, ok := fetch.AsProblem(resp); ok {
		out.Problem = problem
		if err := fetch.Display(resp, s.notifier); err != nil {
			s.logger.Warn("problem display failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(fetch.Problem{
		Status: status,
		Title:  http.StatusText(status),
		Detail: detail,
	})
}
