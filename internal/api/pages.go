package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/salaryrace/salaryrace-go/internal/ads"
	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/money"
	"github.com/salaryrace/salaryrace-go/internal/og"
	"github.com/salaryrace/salaryrace-go/internal/store"
	"github.com/salaryrace/salaryrace-go/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index.html", "compare.html", "notfound.html"}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"money":  money.Format,
		"perSec": og.FormatPerSec,
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return pages, nil
}

// render executes a page into a buffer first so template errors still
// produce a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.ErrorContext(r.Context(), "render page", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type indexData struct {
	Title           string
	Error           string
	Form            domain.CreateInput
	DefaultCurrency string
	Recent          []domain.Comparison
}

type compareData struct {
	Title    string
	Page     view.Page
	Fallback string
}

func (s *Server) indexData(r *http.Request) indexData {
	recent, err := s.svc.Recent(r.Context(), 5)
	if err != nil && !errors.Is(err, store.ErrSchemaMissing) {
		slog.WarnContext(r.Context(), "load recent comparisons", "error", err)
	}
	return indexData{Title: "Salary race", DefaultCurrency: s.opts.DefaultCurrency, Recent: recent}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", s.indexData(r))
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := domain.CreateInput{
		NameA:    r.PostForm.Get("nameA"),
		NameB:    r.PostForm.Get("nameB"),
		AnnualA:  r.PostForm.Get("annualA"),
		AnnualB:  r.PostForm.Get("annualB"),
		Currency: r.PostForm.Get("currency"),
	}

	data := s.indexData(r)
	data.Form = in

	ip := clientIP(r, s.opts.TrustProxy)
	if !s.limiter.Allow(ip) || s.budget.Check(ip, "create") != nil {
		data.Error = msgTooManyRequest
		s.render(w, r, http.StatusTooManyRequests, "index.html", data)
		return
	}

	c, err := s.svc.Create(r.Context(), in)
	if err != nil {
		var verr *domain.ValidationError
		status := http.StatusInternalServerError
		data.Error = "Failed to create"
		switch {
		case errors.As(err, &verr):
			status, data.Error = http.StatusBadRequest, verr.Msg
		case errors.Is(err, store.ErrSchemaMissing):
			data.Error = store.SchemaHint
		default:
			slog.ErrorContext(r.Context(), "create from form", "error", err)
		}
		s.render(w, r, status, "index.html", data)
		return
	}
	s.budget.Record(ip, "create")
	http.Redirect(w, r, c.URL(), http.StatusSeeOther)
}

func (s *Server) handleComparePage(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Get(r.Context(), r.PathValue("slug"))
	if errors.Is(err, store.ErrNotFound) {
		s.render(w, r, http.StatusNotFound, "notfound.html", indexData{Title: "Not found"})
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "load comparison page", "slug", r.PathValue("slug"), "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	page := s.buildPage(r, c)
	s.render(w, r, http.StatusOK, "compare.html", compareData{
		Title:    page.Title,
		Page:     page,
		Fallback: ads.FallbackText,
	})
}
