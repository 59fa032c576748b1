package demo

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/domkit/el"
	"github.com/vango-dev/domkit/internal/clock"
	"github.com/vango-dev/domkit/internal/errors"
	"github.com/vango-dev/domkit/pkg/dom"
	"github.com/vango-dev/domkit/pkg/fetch"
	"github.com/vango-dev/domkit/pkg/middleware"
	"github.com/vango-dev/domkit/pkg/render"
	"github.com/vango-dev/domkit/pkg/toast"
)

// DefaultTitle is the page title when none is configured.
const DefaultTitle = "domkit"

// Config configures a Server.
type Config struct {
	// Page describes the page body. Nil uses DefaultPage.
	Page *el.Spec

	// Title is the page title.
	Title string

	// Pretty enables indented page output.
	Pretty bool

	// Head adds meta, link and script elements to the page head.
	Head render.Head

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// Registry receives the server and fetch metrics. Nil creates a
	// private registry.
	Registry *prometheus.Registry

	// Clock drives toast timers. Nil uses the real clock.
	Clock clock.Clock

	// ToastOptions are applied after the server's own toast options.
	ToastOptions []toast.Option

	// FetchOptions are applied after the server's own fetch options.
	FetchOptions []fetch.Option
}

// Server is the demo HTTP server.
type Server struct {
	config   Config
	logger   *slog.Logger
	doc      *dom.Document
	hub      *toast.Hub
	notifier *toast.Notifier
	client   *fetch.Client
	registry *prometheus.Registry
	router   chi.Router

	toastsShown *prometheus.CounterVec
}

// New builds the page and wires the routes.
func New(config Config) (*Server, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if config.Title == "" {
		config.Title = DefaultTitle
	}
	if config.Page == nil {
		config.Page = DefaultPage()
	}

	s := &Server{
		config:   config,
		logger:   config.Logger,
		doc:      dom.NewDocument(),
		hub:      toast.NewHub(config.Logger),
		registry: config.Registry,
	}

	body, err := el.New(s.doc, el.WithLogger(s.logger)).Build(config.Page, s.doc.Body())
	if err != nil {
		return nil, err
	}
	if err := s.doc.Body().AppendChild(body); err != nil {
		return nil, errors.New("E001").Wrap(err)
	}

	toastOpts := []toast.Option{toast.WithEmitter(s.hub), toast.WithLogger(s.logger)}
	if config.Clock != nil {
		toastOpts = append(toastOpts, toast.WithClock(config.Clock))
	}
	s.notifier = toast.New(s.doc, append(toastOpts, config.ToastOptions...)...)

	fetchOpts := []fetch.Option{fetch.WithLogger(s.logger), fetch.WithMetrics(s.registry)}
	s.client = fetch.New(append(fetchOpts, config.FetchOptions...)...)

	s.toastsShown = promauto.With(s.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "domkit",
		Subsystem: "demo",
		Name:      "toasts_shown_total",
		Help:      "Total number of toasts shown through the API",
	}, []string{"level"})

	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)
	r.Use(middleware.Prometheus(middleware.WithRegistry(s.registry)))
	r.Use(middleware.OpenTelemetry(middleware.WithRequestFilter(func(r *http.Request) bool {
		return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
	})))

	r.Get("/", s.handlePage)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle(toast.DefaultHubPath, s.hub)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/toast", s.handleListToasts)
		r.Post("/toast", s.handleShowToast)
		r.Delete("/toast/{id}", s.handleRemoveToast)
		r.Get("/problem/{status}", s.handleProblem)
		r.Post("/check", s.handleCheck)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Document returns the live page document.
func (s *Server) Document() *dom.Document { return s.doc }

// Notifier returns the page's toast notifier.
func (s *Server) Notifier() *toast.Notifier { return s.notifier }

// Hub returns the toast event hub.
func (s *Server) Hub() *toast.Hub { return s.hub }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	s.logger.Info("server listening", "addr", addr)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		s.hub.Close()
		return err
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// DefaultPage is the page shown when no description is configured.
func DefaultPage() *el.Spec {
	return &el.Spec{
		Tag:   "main",
		Class: "demo",
		Content: []*el.Spec{
			{Tag: "h1", Text: "domkit"},
			{Tag: "p", Text: "Toasts shown through the API appear in the corner of this page."},
			{Tag: "ul", Content: []*el.Spec{
				{HTML: "<code>POST /api/toast</code> shows a toast"},
				{HTML: "<code>DELETE /api/toast/{id}</code> removes one early"},
				{HTML: "<code>GET /api/problem/404</code> returns a failure body"},
			}},
		},
	}
}
