package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ahmadov/tabris-markdown/internal/markup"
	"github.com/ahmadov/tabris-markdown/internal/token"
	"github.com/ahmadov/tabris-markdown/internal/transducer"
	"github.com/go-chi/chi/v5/middleware"
)

type renderRequest struct {
	Markdown     string `json:"markdown"`
	HeadingBreak string `json:"heading_break,omitempty"`
}

// decodeRenderRequest reads a JSON render request and builds its transducer.
func (s *Server) decodeRenderRequest(w http.ResponseWriter, r *http.Request) (*transducer.Transducer, int, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return nil, 0, false
		}
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return nil, 0, false
	}

	tr, err := s.newTransducer(r, req.Markdown, req.HeadingBreak)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return nil, 0, false
	}
	return tr, len(req.Markdown), true
}

func (s *Server) newTransducer(r *http.Request, src, headingBreak string) (*transducer.Transducer, error) {
	policy := s.cfg.HeadingBreak
	if headingBreak != "" {
		hb, err := transducer.ParseHeadingBreak(headingBreak)
		if err != nil {
			return nil, err
		}
		policy = hb
	}
	log := s.log.With("request_id", middleware.GetReqID(r.Context()))
	return transducer.Parse(src, transducer.WithLogger(log), transducer.WithHeadingBreak(policy)), nil
}

// renderMarkup renders tr, records its latency and extracts its link targets.
func (s *Server) renderMarkup(r *http.Request, tr *transducer.Transducer, size int) (string, []string) {
	var out string
	s.stats.Time(size, func() { out = tr.Render() })

	links, err := markup.Links(out)
	if err != nil {
		s.log.Debug("markup not inspectable", "error", err, "request_id", middleware.GetReqID(r.Context()))
	}
	if links == nil {
		links = []string{}
	}
	return out, links
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	tr, size, ok := s.decodeRenderRequest(w, r)
	if !ok {
		return
	}
	out, links := s.renderMarkup(r, tr, size)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"markup": out,
		"links":  links,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	tr, size, ok := s.decodeRenderRequest(w, r)
	if !ok {
		return
	}
	var events []transducer.Event
	s.stats.Time(size, func() { events = tr.Events() })
	if events == nil {
		events = []transducer.Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"events": events})
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	tr, _, ok := s.decodeRenderRequest(w, r)
	if !ok {
		return
	}
	tokens := tr.Tokens()
	if tokens == nil {
		tokens = []*token.Token{}
	}
	jsonOK(w, map[string]any{"tokens": tokens})
}

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]any{
		"window": s.cfg.StatsWindow.String(),
		"stats":  s.stats.Snapshot(),
	})
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
