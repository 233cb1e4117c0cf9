package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) registerRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	// Pages
	r.Get("/", s.handleIndex)

	// API endpoints
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/data", s.handleData)
		r.Post("/resize", s.handleResize)
		r.Post("/click", s.handleClick)
		r.Post("/clear", s.handleClear)
		r.Post("/search", s.handleSearch)
		r.Post("/hover", s.handleHover)
		r.Post("/scroll", s.handleScroll)

		r.Get("/selection", s.handleSelection)
		r.Delete("/selection", s.handleSelectionClear)

		r.Get("/config", s.handleConfig)
		r.Put("/config/{key}", s.handleConfigSet)
		r.Post("/config/reload", s.handleConfigReload)
		r.Post("/config/validate", s.handleConfigValidate)
	})
	s.router = r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}
