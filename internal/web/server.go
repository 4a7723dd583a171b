// Package web serves the local comparator pages and JSON API over one session.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/secure"

	"pricecompare/internal/app"
	"pricecompare/internal/session"
)

// Handler wires the comparator pages and API to a session.
type Handler struct {
	logger    *slog.Logger
	config    *app.Config
	session   *session.Session
	decoder   session.Decoder
	validator *validator.Validate
	now       func() time.Time
}

func NewHandler(logger *slog.Logger, cfg *app.Config, sess *session.Session, decoder session.Decoder) *Handler {
	return &Handler{
		logger:    logger,
		config:    cfg,
		session:   sess,
		decoder:   decoder,
		validator: validator.New(),
		now:       time.Now,
	}
}

// Routes builds the router with the middleware stack installed.
func (h *Handler) Routes() http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      !h.config.IsProduction(),
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(secureMiddleware.Handler)
	r.Use(h.logRequests)

	r.Get("/", h.uploadHandler)
	r.Get("/display", h.displayHandler)
	r.Get("/export", h.exportHandler)
	r.Get("/healthz", h.healthHandler)
	r.Get("/api/summary", h.summaryAPIHandler)
	r.Get("/api/products", h.productsAPIHandler)

	r.Group(func(r chi.Router) {
		if h.config.RateLimitPerMinute > 0 {
			r.Use(httprate.Limit(h.config.RateLimitPerMinute, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		}
		r.Post("/upload", h.uploadPostHandler)
		r.Post("/recalculate", h.recalculateHandler)
		r.Post("/select", h.selectHandler)
		r.Post("/calculate", h.calculateHandler)
		r.Post("/api/recalculate", h.recalculateAPIHandler)
		r.Post("/api/validate", h.validateFileHandler)
	})
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := h.now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", h.now().Sub(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// NewServer returns an http.Server for the handler using the configured
// address and timeouts.
func NewServer(cfg *app.Config, h *Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      h.Routes(),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}
}
