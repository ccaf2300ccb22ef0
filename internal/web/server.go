// Package web serves the search form as a server-rendered HTML page.
package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"scisearch/internal/controller"
	"scisearch/internal/domain"
	"scisearch/internal/render"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Server renders the search page and runs searches on form posts.
type Server struct {
	searcher domain.Searcher
	endpoint string
	defaults controller.Form
	logger   *zap.Logger
}

// NewServer creates a server posting searches through searcher. endpoint is
// only displayed; defaults seed the form on first load.
func NewServer(searcher domain.Searcher, endpoint string, defaults controller.Form, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{searcher: searcher, endpoint: endpoint, defaults: defaults, logger: logger}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := newPage(s.defaults)
	controller.New(s.searcher, p, s.endpoint, s.logger)
	s.write(w, http.StatusOK, p)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := controller.Form{
		Query:         r.PostForm.Get("query"),
		Summarization: r.PostForm.Has("enable_summarization"),
		Reasoning:     r.PostForm.Has("enable_reasoning"),
		Arxiv:         r.PostForm.Has("source_arxiv"),
		Pubchem:       r.PostForm.Has("source_pubchem"),
	}
	p := newPage(form)
	ctrl := controller.New(s.searcher, p, s.endpoint, s.logger)

	status := http.StatusOK
	_, err := ctrl.Submit(r.Context(), form)
	var rf *controller.RequestFailedError
	switch {
	case err == nil:
	case errors.As(err, &rf):
		status = http.StatusBadGateway
	default:
		status = http.StatusUnprocessableEntity
	}
	s.write(w, status, p)
}

func (s *Server) write(w http.ResponseWriter, status int, p *page) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		s.logger.Error("render page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// page is the per-request view the controller fills in and the template reads.
type page struct {
	Form           controller.Form
	Endpoint       string
	ResultsVisible bool
	Results        render.Results
	ErrorVisible   bool
	Error          string
	Loading        bool
	TriggerEnabled bool
	TriggerLabel   string
	Step           string
}

func newPage(form controller.Form) *page {
	return &page{Form: form, TriggerEnabled: true, TriggerLabel: controller.IdleLabel}
}

func (p *page) ShowEndpoint(url string) { p.Endpoint = url }
func (p *page) HideResults()            { p.ResultsVisible = false }
func (p *page) HideError()              { p.ErrorVisible = false }
func (p *page) SetLoading(loading bool) { p.Loading = loading }
func (p *page) SetStep(label string)    { p.Step = label }

func (p *page) ShowError(msg string) {
	p.ErrorVisible = true
	p.Error = msg
}

func (p *page) SetTrigger(enabled bool, label string) {
	p.TriggerEnabled = enabled
	p.TriggerLabel = label
}

func (p *page) ShowResults(r render.Results) {
	p.ResultsVisible = true
	p.Results = r
}
