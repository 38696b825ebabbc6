package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/wrale/wrale-proof/internal/wproofd/ratelimit"
)

// RouterOptions configures cross-cutting router behavior
type RouterOptions struct {
	// AllowedOrigins are the sites whose pages may call the API
	AllowedOrigins []string
	// RequestTimeout bounds non-streaming requests
	RequestTimeout time.Duration
}

// Router creates and configures the HTTP router
func (h *Handler) Router(opts RouterOptions) chi.Router {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestIDHeaderMiddleware)
	r.Use(recoverMiddleware(h.logger))
	r.Use(logMiddleware(h.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1alpha1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(opts.RequestTimeout))

			r.Get("/settings", h.GetSettings)
			r.Put("/settings", h.PutSettings)

			r.Post("/items", h.AddItem)
			r.Delete("/items/{id}", h.RemoveItem)

			r.Post("/groups", h.AddGroup)
			r.Delete("/groups/{id}", h.RemoveGroup)

			r.Get("/pages/{page}/group", h.GetPageGroup)
			r.Put("/pages/{page}/group", h.PutPageGroup)
			r.Get("/pages/{page}/overlays", h.GetOverlays)
		})

		// Streams outlive the request timeout
		r.Group(func(r chi.Router) {
			if h.ratelimit != nil {
				r.Use(ratelimit.Middleware(h.ratelimit, h.logger, ratelimit.Options{
					LimitType: ratelimit.WSConnection,
				}))
			}
			r.Get("/pages/{page}/stream", h.ServeStream)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			h.respondError(w, r, ErrNotFound("not found"))
		})
	})

	return r
}
