package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wcatz/chiclet-slicer/internal/config"
	errs "github.com/wcatz/chiclet-slicer/internal/errors"
	"github.com/wcatz/chiclet-slicer/internal/render"
	"github.com/wcatz/chiclet-slicer/internal/slicer"
	"github.com/wcatz/chiclet-slicer/internal/source"
)

// maxBody caps request bodies.
const maxBody = 8 << 20

type clickRequest struct {
	Identity string `json:"identity"`
	Ctrl     bool   `json:"ctrl"`
	Meta     bool   `json:"meta"`
	Alt      bool   `json:"alt"`
}

type resizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type searchRequest struct {
	Text string `json:"text"`
}

type hoverRequest struct {
	Identity string `json:"identity"`
}

type scrollRequest struct {
	Delta int `json:"delta"`
}

type settingRequest struct {
	Value string `json:"value"`
}

type updateResponse struct {
	NoData      bool            `json:"no_data"`
	ResetScroll bool            `json:"reset_scroll"`
	Items       int             `json:"items"`
	Groups      int             `json:"groups"`
	Reason      string          `json:"reason,omitempty"`
	State       render.Document `json:"state"`
}

type eventResponse struct {
	Changed bool            `json:"changed"`
	Matches *int            `json:"matches,omitempty"`
	State   render.Document `json:"state"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Page handlers

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	cfg := s.Config()
	var doc render.Document
	var items int
	s.do(func(sl *slicer.Slicer) {
		doc = render.BuildDocument(sl.State(), cfg)
		items = sl.Layout().Len()
	})

	s.renderPage(w, "preview.html", map[string]interface{}{
		"Title":      "chiclet slicer",
		"ConfigPath": s.ConfigPath(),
		"Backend":    s.store.Name(),
		"Doc":        doc,
		"Items":      items,
		"Chiclets":   cfg.Chiclets,
		"Header":     cfg.Header,
	})
}

// API handlers

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.document())
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	format := source.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := source.ParseFormat(q)
		if err != nil {
			writeError(w, err)
			return
		}
		format = f
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "reading data view"))
		return
	}

	dv, err := source.Parse(data, format)
	if err != nil {
		writeError(w, err)
		return
	}

	var resp updateResponse
	s.do(func(sl *slicer.Slicer) {
		res, uerr := sl.Update(r.Context(), dv)
		resp = updateResponse{
			NoData:      res.NoData,
			ResetScroll: res.ResetScroll,
			Items:       res.Items,
			Groups:      res.Groups,
		}
		if uerr != nil {
			resp.Reason = errs.UserMessage(uerr)
		}
		resp.State = render.BuildDocument(sl.State(), s.Config())
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Width < 0 || req.Height < 0 {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "viewport size must not be negative"))
		return
	}
	s.event(w, func(sl *slicer.Slicer) eventResponse {
		sl.Resize(r.Context(), req.Width, req.Height)
		return eventResponse{Changed: true}
	})
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Identity == "" {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "click needs an identity"))
		return
	}
	mod := slicer.Modifiers{Ctrl: req.Ctrl, Meta: req.Meta, Alt: req.Alt}
	s.event(w, func(sl *slicer.Slicer) eventResponse {
		return eventResponse{Changed: sl.Click(r.Context(), slicer.Identity(req.Identity), mod)}
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.event(w, func(sl *slicer.Slicer) eventResponse {
		return eventResponse{Changed: sl.ClearAll(r.Context())}
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decode(w, r, &req) {
		return
	}
	s.event(w, func(sl *slicer.Slicer) eventResponse {
		n := sl.Search(r.Context(), req.Text)
		return eventResponse{Changed: true, Matches: &n}
	})
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req hoverRequest
	if !decode(w, r, &req) {
		return
	}
	s.event(w, func(sl *slicer.Slicer) eventResponse {
		sl.Hover(slicer.Identity(req.Identity))
		return eventResponse{Changed: true}
	})
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if !decode(w, r, &req) {
		return
	}
	s.event(w, func(sl *slicer.Slicer) eventResponse {
		before := sl.State().Window
		sl.Scroll(req.Delta)
		return eventResponse{Changed: sl.State().Window != before}
	})
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	stored, err := s.store.LoadSelection(r.Context())
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "loading selection from %s", s.store.Name()))
		return
	}
	if stored.Keys == nil {
		stored.Keys = []string{}
	}
	var current slicer.SelectionSnapshot
	s.do(func(sl *slicer.Slicer) { current = sl.Selection().Snapshot() })
	if current.Keys == nil {
		current.Keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"backend": s.store.Name(),
		"stored":  stored,
		"current": current,
	})
}

func (s *Server) handleSelectionClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(r.Context()); err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "clearing selection in %s", s.store.Name()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Config())
}

func (s *Server) handleConfigSet(w http.ResponseWriter, r *http.Request) {
	if s.cfgPath == "" {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "server runs without a settings file"))
		return
	}
	key := chi.URLParam(r, "key")
	if key == config.SavedSelectionKey {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "'%s' is managed by the selection store", key))
		return
	}
	var req settingRequest
	if !decode(w, r, &req) {
		return
	}
	s.edit.Lock()
	defer s.edit.Unlock()
	if err := config.SetSetting(s.cfgPath, key, req.Value); err != nil {
		writeError(w, err)
		return
	}
	if err := s.ReloadConfig(r.Context()); err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidConfig, err, "saved but reload failed"))
		return
	}
	writeJSON(w, http.StatusOK, s.document())
}

func (s *Server) handleConfigReload(w http.ResponseWriter, r *http.Request) {
	s.edit.Lock()
	defer s.edit.Unlock()
	if err := s.ReloadConfig(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "config reloaded"})
}

func (s *Server) handleConfigValidate(w http.ResponseWriter, r *http.Request) {
	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "reading config"))
		return
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "empty content"))
		return
	}

	format := config.FormatYAML
	if strings.EqualFold(r.URL.Query().Get("format"), "toml") {
		format = config.FormatTOML
	}
	cfg, err := config.LoadFromBytes(content, format)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("valid: %s, %d columns, %d rows",
			cfg.General.Orientation, cfg.General.Columns, cfg.General.Rows),
	})
}

// event applies fn under the event lock and answers with the new state.
func (s *Server) event(w http.ResponseWriter, fn func(*slicer.Slicer) eventResponse) {
	var resp eventResponse
	s.do(func(sl *slicer.Slicer) {
		resp = fn(sl)
		resp.State = render.BuildDocument(sl.State(), s.Config())
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) document() render.Document {
	var doc render.Document
	s.do(func(sl *slicer.Slicer) { doc = render.BuildDocument(sl.State(), s.Config()) })
	return doc
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "decoding request"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorResponse{Code: string(code), Error: err.Error()})
}

func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeNoData:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
