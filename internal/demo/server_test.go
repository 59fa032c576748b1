package demo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/domkit/el"
	"github.com/vango-dev/domkit/internal/clock"
	"github.com/vango-dev/domkit/pkg/fetch"
	"github.com/vango-dev/domkit/pkg/render"
	"github.com/vango-dev/domkit/pkg/toast"
)

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Unix(0, 0))
	cfg.Clock = fake
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Hub().Close()
	})
	return s, ts, fake
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeProblem(t *testing.T, resp *http.Response) fetch.Problem {
	t.Helper()
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var p fetch.Problem
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	return p
}

func TestPage(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{
		Title: "Demo <1>",
		Page:  &el.Spec{Tag: "section", ID: "app", Content: []*el.Spec{{Tag: "h2", Text: "Hello"}}},
	})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	html := string(body)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Demo &lt;1&gt;</title>",
		`<section id="app"><h2>Hello</h2></section>`,
		".toast-container",
		"new WebSocket",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
}

func TestPageHeadAndContainer(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{
		Head: render.Head{
			StyleSheets: []string{"/site.css"},
			Meta:        []render.MetaTag{{Name: "description", Content: "demo"}},
			Scripts:     []render.ScriptTag{{Src: "/app.js", Defer: true}},
		},
		ToastOptions: []toast.Option{toast.WithContainerID("alerts")},
	})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`<link rel="stylesheet" href="/site.css">`,
		`<meta name="description" content="demo">`,
		`<script src="/app.js" defer></script>`,
		`<script data-container="alerts">`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestNewInvalidPage(t *testing.T) {
	_, err := New(Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Page:   &el.Spec{Tag: "not a tag"},
	})
	if err == nil {
		t.Fatal("expected an error for an invalid page description")
	}
}

func TestDefaultPage(t *testing.T) {
	s, _, _ := newTestServer(t, Config{})
	kids := s.Document().Body().Children()
	if len(kids) != 1 || kids[0].Tag() != "main" {
		t.Fatalf("body children = %v", kids)
	}
	lists := kids[0].Children()
	if got := lists[len(lists)-1].Children(); len(got) != 3 || got[0].Tag() != "li" {
		t.Errorf("list items = %v", got)
	}
}

func TestToastLifecycle(t *testing.T) {
	s, ts, fake := newTestServer(t, Config{})

	resp := postJSON(t, ts.URL+"/api/toast", `{"message":"Saved","level":"success"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var created ShowResponse
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if created.ID == 0 {
		t.Fatal("expected a non-zero id")
	}

	node, ok := s.Notifier().Node(created.ID)
	if !ok || node.TextContent() != "Saved" {
		t.Fatalf("toast node = %v, %v", node, ok)
	}
	if class, _ := node.Attribute("class"); class != "toast toast-success" {
		t.Errorf("class = %q", class)
	}

	list, err := http.Get(ts.URL + "/api/toast")
	if err != nil {
		t.Fatal(err)
	}
	var active map[string][]toast.ID
	json.NewDecoder(list.Body).Decode(&active)
	list.Body.Close()
	if len(active["active"]) != 1 || active["active"][0] != created.ID {
		t.Errorf("active = %v", active)
	}

	fake.Advance(toast.DefaultShort + toast.DefaultFadeOut)
	if s.Notifier().Len() != 0 {
		t.Error("toast should have been dismissed")
	}
	if node.IsConnected() {
		t.Error("node should be detached after the fade-out")
	}
}

func TestRemoveToast(t *testing.T) {
	s, ts, _ := newTestServer(t, Config{})
	id := s.Notifier().Info("bye")

	del := func(path string) int {
		req, _ := http.NewRequest(http.MethodDelete, ts.URL+path, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	path := "/api/toast/" + strconv.FormatUint(uint64(id), 10)
	if got := del(path); got != http.StatusNoContent {
		t.Errorf("first delete = %d, want 204", got)
	}
	if got := del(path); got != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", got)
	}
	if got := del("/api/toast/abc"); got != http.StatusBadRequest {
		t.Errorf("bad id = %d, want 400", got)
	}
}

func TestShowToastValidation(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})

	tests := []struct {
		name string
		body string
	}{
		{"not json", `hello`},
		{"missing message", `{"level":"info"}`},
		{"unknown level", `{"message":"x","level":"loud"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/toast", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			p := decodeProblem(t, resp)
			if p.Status != http.StatusBadRequest || p.Detail == "" {
				t.Errorf("problem = %+v", p)
			}
		})
	}
}

func TestProblemShapes(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})
	client := fetch.New()

	tests := []struct {
		path   string
		status int
		detail string
	}{
		{"/api/problem/404", 404, "Not Found"},
		{"/api/problem/409?shape=message", 409, "Conflict"},
		{"/api/problem/500?shape=empty", 500, "An error occurred: 500"},
		{"/api/problem/502?shape=text", 502, "An error occurred: 502"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := client.Get(context.Background(), ts.URL+tt.path)
			if err != nil {
				t.Fatal(err)
			}
			p, ok := fetch.AsProblem(resp)
			if !ok {
				t.Fatalf("expected a problem, got status %d", resp.Status())
			}
			if p.Status != tt.status || p.Detail != tt.detail {
				t.Errorf("problem = %+v, want %d %q", p, tt.status, tt.detail)
			}
		})
	}

	resp, err := http.Get(ts.URL + "/api/problem/200")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("out-of-range status = %d, want 400", resp.StatusCode)
	}
}

func TestCheckDisplaysProblem(t *testing.T) {
	s, ts, _ := newTestServer(t, Config{})

	resp := postJSON(t, ts.URL+"/api/check", `{"url":"`+ts.URL+`/api/problem/403"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out CheckResponse
	json.NewDecoder(resp.Body).Decode(&out)
	if out.OK || out.Status != 403 || out.Problem == nil || out.Problem.Detail != "Forbidden" {
		t.Errorf("check = %+v", out)
	}

	ids := s.Notifier().Active()
	if len(ids) != 1 {
		t.Fatalf("active toasts = %v, want 1", ids)
	}
	node, _ := s.Notifier().Node(ids[0])
	if node.TextContent() != "Forbidden" {
		t.Errorf("toast text = %q", node.TextContent())
	}
}

func TestCheckSuccessShowsNothing(t *testing.T) {
	s, ts, _ := newTestServer(t, Config{})

	resp := postJSON(t, ts.URL+"/api/check", `{"url":"`+ts.URL+`/healthz","method":"GET"}`)
	defer resp.Body.Close()
	var out CheckResponse
	json.NewDecoder(resp.Body).Decode(&out)
	if !out.OK || out.Status != 200 || out.Problem != nil {
		t.Errorf("check = %+v", out)
	}
	if s.Notifier().Len() != 0 {
		t.Error("a successful check must not show a toast")
	}
}

func TestCheckInvalidURL(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})
	resp := postJSON(t, ts.URL+"/api/check", `{"url":"relative/path"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	decodeProblem(t, resp)
}

func TestMetricsAndHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, ts, _ := newTestServer(t, Config{Registry: reg})

	postJSON(t, ts.URL+"/api/toast", `{"message":"one"}`).Body.Close()
	postJSON(t, ts.URL+"/api/toast", `{"message":"two","level":"error"}`).Body.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	for _, want := range []string{
		`domkit_demo_toasts_shown_total{level="default"} 1`,
		`domkit_demo_toasts_shown_total{level="error"} 1`,
		`domkit_http_requests_total{method="POST",route="/api/toast",status="2xx"} 2`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %q", want)
		}
	}

	health, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(health.Body)
	health.Body.Close()
	if string(b) != "OK" {
		t.Errorf("healthz = %q", b)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s, err := New(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestToastStreamThroughRouter(t *testing.T) {
	s, ts, _ := newTestServer(t, Config{})

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+toast.DefaultHubPath, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.Hub().ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	postJSON(t, ts.URL+"/api/toast", `{"message":"live","level":"info"}`).Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type   string      `json:"type"`
		Detail toast.Event `json:"detail"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != toast.EventName || msg.Detail.Message != "live" || msg.Detail.Action != toast.ActionShow {
		t.Errorf("message = %+v", msg)
	}
}
