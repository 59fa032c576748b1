package fetch

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// Response is either a successful HTTP response or a synthesized failure
// carrying a Problem.
type Response interface {
	// OK reports whether the status is in the 2xx range.
	OK() bool
	// Status returns the HTTP status, or the Problem status for failures.
	Status() int
	// JSON decodes the body into v and closes it.
	JSON(v any) error
	// Body returns the unread body.
	Body() io.ReadCloser
	// Close releases the body.
	Close() error
}

// AsProblem returns the Problem carried by a failure response.
func AsProblem(resp Response) (*Problem, bool) {
	pr, ok := resp.(*problemResponse)
	if !ok {
		return nil, false
	}
	return pr.problem, true
}

// httpResponse is a successful response returned as-is.
type httpResponse struct {
	resp *http.Response
}

func (r *httpResponse) OK() bool            { return true }
func (r *httpResponse) Status() int         { return r.resp.StatusCode }
func (r *httpResponse) Body() io.ReadCloser { return r.resp.Body }
func (r *httpResponse) Close() error        { return r.resp.Body.Close() }

// Header returns the response headers.
func (r *httpResponse) Header() http.Header { return r.resp.Header }

func (r *httpResponse) JSON(v any) error {
	defer r.resp.Body.Close()
	return json.NewDecoder(r.resp.Body).Decode(v)
}

// problemResponse is the minimal response wrapping a Problem.
type problemResponse struct {
	problem *Problem
}

// NewProblemResponse wraps p in a failure Response.
func NewProblemResponse(p *Problem) Response {
	return &problemResponse{problem: p}
}

func (r *problemResponse) OK() bool     { return false }
func (r *problemResponse) Status() int  { return r.problem.Status }
func (r *problemResponse) Close() error { return nil }

func (r *problemResponse) Body() io.ReadCloser {
	data, _ := json.Marshal(r.problem)
	return io.NopCloser(bytes.NewReader(data))
}

func (r *problemResponse) JSON(v any) error {
	if p, ok := v.(*Problem); ok {
		*p = *r.problem
		return nil
	}
	data, err := json.Marshal(r.problem)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
