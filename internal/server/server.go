package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/wcatz/chiclet-slicer/internal/config"
	errs "github.com/wcatz/chiclet-slicer/internal/errors"
	"github.com/wcatz/chiclet-slicer/internal/persist"
	"github.com/wcatz/chiclet-slicer/internal/slicer"
	"github.com/wcatz/chiclet-slicer/internal/source"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcMap = template.FuncMap{
	"px": func(v float64) string { return fmt.Sprintf("%.0fpx", v) },
	// image trusts refs that passed slicer.ValidateImage, inline data URIs included.
	"image": func(ref string) template.URL {
		return template.URL(slicer.ValidateImage(ref))
	},
}

// Server hosts one slicer instance behind a JSON API and an HTML preview.
type Server struct {
	cfg     *config.Config
	cfgPath string
	mu      sync.RWMutex
	// edit serializes settings file writes with the reload that follows.
	edit sync.Mutex

	// events serializes slicer calls so a data update completes before a
	// queued click is applied.
	events sync.Mutex
	slicer *slicer.Slicer
	store  persist.Store

	logger *log.Logger
	page   *template.Template
	router chi.Router
}

// New creates a Server for the settings file at cfgPath. An empty path
// serves the default settings. The store receives the selection of the
// named instance; identities are minted in the same namespace as the CLI.
func New(cfgPath, instance string, store persist.Store, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	if store == nil {
		store = persist.NewMemoryStore()
	}
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath, nil)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	page, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		cfgPath: cfgPath,
		store:   store,
		logger:  logger,
		page:    page,
	}
	s.slicer = slicer.New(slicer.Options{
		Settings:    cfg.Settings(),
		Persistence: store,
		Minter:      slicer.NewUUIDMinter(persist.InstanceName(instance)),
		Logger:      logger,
		OnNeedMore: func() {
			logger.Info("window reached the end of a segmented view")
		},
	})
	s.registerRoutes()
	return s, nil
}

// ReloadConfig reloads the settings file and applies it to the slicer.
func (s *Server) ReloadConfig(ctx context.Context) error {
	if s.cfgPath == "" {
		return nil
	}
	cfg, err := config.Load(s.cfgPath, nil)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	s.events.Lock()
	s.slicer.SetSettings(ctx, cfg.Settings())
	s.events.Unlock()
	return nil
}

// LoadData feeds the data file at path to the slicer. A file without
// categories leaves the slicer in the no data state.
func (s *Server) LoadData(ctx context.Context, path string) error {
	dv, err := source.Load(path)
	if err != nil {
		return err
	}
	var res slicer.UpdateResult
	s.do(func(sl *slicer.Slicer) { res, err = sl.Update(ctx, dv) })
	if err != nil && !errs.Is(err, errs.ErrCodeNoData) {
		return err
	}
	s.logger.Info("data loaded", "file", path, "items", res.Items, "no_data", res.NoData)
	return nil
}

// Config returns the current settings (read-locked).
func (s *Server) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// ConfigPath returns the absolute path to the settings file.
func (s *Server) ConfigPath() string {
	if s.cfgPath == "" {
		return ""
	}
	abs, err := filepath.Abs(s.cfgPath)
	if err != nil {
		return s.cfgPath
	}
	return abs
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("chiclet slicer preview", "url", "http://localhost"+addr, "backend", s.store.Name())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// do runs fn with the slicer while holding the event lock.
func (s *Server) do(fn func(*slicer.Slicer)) {
	s.events.Lock()
	defer s.events.Unlock()
	fn(s.slicer)
}

// renderPage renders a full page template.
func (s *Server) renderPage(w http.ResponseWriter, page string, data map[string]interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.ExecuteTemplate(w, page, data); err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
	}
}
