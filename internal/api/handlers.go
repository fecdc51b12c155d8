package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/salaryrace/salaryrace-go/internal/analytics"
	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/og"
	"github.com/salaryrace/salaryrace-go/internal/view"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// allowCreate applies the per-client rate and the hourly creation budget.
func (s *Server) allowCreate(w http.ResponseWriter, r *http.Request) bool {
	ip := clientIP(r, s.opts.TrustProxy)
	if !s.limiter.Allow(ip) {
		writeError(w, http.StatusTooManyRequests, msgTooManyRequest)
		return false
	}
	if err := s.budget.Check(ip, "create"); err != nil {
		writeServiceError(w, r, err, "Failed to create")
		return false
	}
	return true
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !s.allowCreate(w, r) {
		return
	}

	var body createRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := s.svc.Create(r.Context(), body.input())
	if err != nil {
		writeServiceError(w, r, err, "Failed to create")
		return
	}
	s.budget.Record(clientIP(r, s.opts.TrustProxy), "create")
	writeJSON(w, http.StatusCreated, createResponse{Slug: c.Slug, URL: c.URL()})
}

func (s *Server) handleGetComparison(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, r, err, "DB error")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCounters(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Sample(r.Context(), r.PathValue("slug"), s.sched.Clock().Now())
	if err != nil {
		writeServiceError(w, r, err, "DB error")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePageModel(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, r, err, "DB error")
		return
	}
	writeJSON(w, http.StatusOK, s.buildPage(r, c))
}

func (s *Server) handleOG(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, r, err, "DB error")
		return
	}
	w.Header().Set("Content-Type", og.ContentType)
	w.Header().Set("Cache-Control", og.CacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(og.SVG(c)))
	s.opts.Metrics.RecordOGRender(r.Context())
}

func (s *Server) handleRecordEvent(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(clientIP(r, s.opts.TrustProxy)) {
		writeError(w, http.StatusTooManyRequests, msgTooManyRequest)
		return
	}

	var body map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	typ, _ := body["type"].(string)
	delete(body, "type")
	if len(body) == 0 {
		body = nil
	}

	if _, err := s.events.Record(r.Context(), typ, body); err != nil {
		if errors.Is(err, analytics.ErrMissingType) {
			writeError(w, http.StatusBadRequest, "Missing event type")
			return
		}
		writeServiceError(w, r, err, "Failed to record")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	n := analytics.DefaultLatest
	if raw := strings.TrimSpace(r.URL.Query().Get("latest")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "latest must be a positive integer")
			return
		}
		n = v
	}
	writeJSON(w, http.StatusOK, s.events.Summary(n))
}

func (s *Server) buildPage(r *http.Request, c domain.Comparison) view.Page {
	return view.Build(c, view.Options{
		BaseURL: s.baseURL(r),
		Slots:   s.opts.Slots,
		Grace:   s.opts.AdGrace,
		Now:     s.sched.Clock().Now(),
	})
}
