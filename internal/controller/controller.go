// Package controller drives a single search from form input to rendered
// results through an injected View.
package controller

import (
	"context"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"scisearch/internal/domain"
	"scisearch/internal/render"
)

const (
	IdleLabel = "Search"
	BusyLabel = "Processing..."
)

// Steps are the progress labels of a search. Only the first is shown: the
// single request gives no signal for the later phases.
var Steps = []string{
	"Retrieving documents…",
	"Summarizing…",
	"Reasoning…",
	"Storing…",
}

// Form is the state of the search form controls.
type Form struct {
	Query         string
	Summarization bool
	Reasoning     bool
	Arxiv         bool
	Pubchem       bool
}

// View is the UI surface the controller drives.
type View interface {
	ShowEndpoint(url string)
	HideResults()
	HideError()
	ShowError(msg string)
	SetLoading(loading bool)
	SetTrigger(enabled bool, label string)
	SetStep(label string)
	ShowResults(r render.Results)
}

// Controller owns the search flow for one view.
type Controller struct {
	searcher domain.Searcher
	view     View
	logger   *zap.Logger
	endpoint string
	inFlight atomic.Bool
}

// New creates a controller and shows the endpoint on the view.
func New(searcher domain.Searcher, view View, endpoint string, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{searcher: searcher, view: view, endpoint: endpoint, logger: logger}
	view.ShowEndpoint(endpoint)
	return c
}

// Endpoint returns the API endpoint fixed at construction.
func (c *Controller) Endpoint() string { return c.endpoint }

// Busy reports whether a search is outstanding.
func (c *Controller) Busy() bool { return c.inFlight.Load() }

// Submit runs a whole search synchronously.
func (c *Controller) Submit(ctx context.Context, form Form) (*render.Results, error) {
	req, err := c.Begin(form)
	if err != nil {
		return nil, err
	}
	resp, err := c.Execute(ctx, req)
	return c.Finish(resp, err)
}

// Begin validates the form, marks a search in flight and puts the view in
// its loading state. On success the caller must run Execute and Finish.
func (c *Controller) Begin(form Form) (domain.SearchRequest, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.logger.Debug("rejected overlapping search")
		return domain.SearchRequest{}, ErrSearchInFlight
	}
	req, err := BuildRequest(form)
	if err != nil {
		c.inFlight.Store(false)
		c.view.ShowError(Message(err))
		return domain.SearchRequest{}, err
	}

	c.view.HideResults()
	c.view.HideError()
	c.view.SetLoading(true)
	c.view.SetTrigger(false, BusyLabel)
	c.view.SetStep(Steps[0])
	c.logger.Info("search started", zap.String("query", req.Query), zap.Any("sources", req.Sources),
		zap.Bool("summarization", req.EnableSummarization), zap.Bool("reasoning", req.EnableReasoning))
	return req, nil
}

// Execute performs the network call. It does not touch the view, so it may
// run off the UI goroutine.
func (c *Controller) Execute(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	return c.searcher.Search(ctx, req)
}

// Finish restores the idle state and renders resp, or shows err.
func (c *Controller) Finish(resp *domain.SearchResponse, err error) (*render.Results, error) {
	defer c.inFlight.Store(false)
	c.view.SetLoading(false)
	c.view.SetTrigger(true, IdleLabel)

	if err != nil {
		rf := &RequestFailedError{Reason: err.Error(), Err: err}
		c.logger.Warn("search failed", zap.Error(err))
		c.view.ShowError(Message(rf))
		return nil, rf
	}
	results := render.Render(resp)
	c.logger.Info("search rendered", zap.Int("documents", len(results.Documents.Cards)),
		zap.Bool("summarization", results.Summarization.Visible),
		zap.Bool("reasoning", results.Reasoning.Visible),
		zap.Bool("storage", results.Storage.Visible))
	c.view.ShowResults(results)
	return &results, nil
}

// BuildRequest validates form and converts it to a request.
func BuildRequest(form Form) (domain.SearchRequest, error) {
	query := strings.TrimSpace(form.Query)
	if query == "" {
		return domain.SearchRequest{}, ErrEmptyQuery
	}
	var sources []domain.Source
	if form.Arxiv {
		sources = append(sources, domain.SourceArxiv)
	}
	if form.Pubchem {
		sources = append(sources, domain.SourcePubchem)
	}
	if len(sources) == 0 {
		return domain.SearchRequest{}, ErrNoSourceSelected
	}
	return domain.SearchRequest{
		Query:               query,
		Sources:             sources,
		EnableSummarization: form.Summarization,
		EnableReasoning:     form.Reasoning,
	}, nil
}
