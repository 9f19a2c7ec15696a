package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions configures Routes. Events and Metrics are mounted only
// when set.
type RouterOptions struct {
	CORSOrigins  []string
	RateLimitRPM int
	Events       http.Handler
	Metrics      http.Handler
}

// Routes builds the HTTP router
func (h *ClientHandler) Routes(m *Middleware, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(m.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(m.CORS(opts.CORSOrigins))

	r.Get("/healthz", h.Healthz)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.Events != nil {
		r.Method(http.MethodGet, "/events", opts.Events)
	}

	r.Route("/api/clients", func(r chi.Router) {
		r.Use(m.RateLimit(opts.RateLimitRPM))

		r.Get("/", h.ListClients)
		r.Post("/", h.CreateClient)
		r.Get("/count", h.CountClients)
		r.Post("/sort", h.SortClients)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetClient)
			r.Put("/", h.UpdateClient)
			r.Delete("/", h.DeleteClient)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, "Not found", r.URL.Path, http.StatusNotFound)
	})
	return r
}
