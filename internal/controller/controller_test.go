package controller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scisearch/internal/domain"
	"scisearch/internal/render"
	"scisearch/internal/searchapi"
)

type fakeView struct {
	endpoint       string
	resultsVisible bool
	errorVisible   bool
	errorMsg       string
	loading        bool
	triggerEnabled bool
	triggerLabel   string
	step           string
	results        render.Results
}

func (v *fakeView) ShowEndpoint(url string) { v.endpoint = url }
func (v *fakeView) HideResults()            { v.resultsVisible = false }
func (v *fakeView) HideError()              { v.errorVisible = false }
func (v *fakeView) SetLoading(loading bool) { v.loading = loading }
func (v *fakeView) SetStep(label string)    { v.step = label }

func (v *fakeView) ShowError(msg string) {
	v.errorVisible = true
	v.errorMsg = msg
}

func (v *fakeView) SetTrigger(enabled bool, label string) {
	v.triggerEnabled = enabled
	v.triggerLabel = label
}

func (v *fakeView) ShowResults(r render.Results) {
	v.resultsVisible = true
	v.results = r
}

type fakeSearcher struct {
	calls int
	last  domain.SearchRequest
	resp  *domain.SearchResponse
	err   error
}

func (s *fakeSearcher) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	s.calls++
	s.last = req
	return s.resp, s.err
}

func newTestController(s domain.Searcher) (*Controller, *fakeView) {
	v := &fakeView{triggerEnabled: true, triggerLabel: IdleLabel}
	return New(s, v, "https://api.example.test/search", nil), v
}

func TestNewShowsEndpoint(t *testing.T) {
	_, v := newTestController(&fakeSearcher{})
	assert.Equal(t, "https://api.example.test/search", v.endpoint)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name    string
		form    Form
		wantErr error
		wantMsg string
	}{
		{name: "empty query", form: Form{Query: "", Arxiv: true}, wantErr: ErrEmptyQuery, wantMsg: "Please enter a search query"},
		{name: "whitespace query", form: Form{Query: " \t\n ", Arxiv: true, Pubchem: true}, wantErr: ErrEmptyQuery, wantMsg: "Please enter a search query"},
		{name: "no source", form: Form{Query: "graphene", Summarization: true}, wantErr: ErrNoSourceSelected, wantMsg: "Please select at least one source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSearcher{}
			c, v := newTestController(s)
			_, err := c.Submit(context.Background(), tt.form)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, s.calls)
			assert.True(t, v.errorVisible)
			assert.Equal(t, tt.wantMsg, v.errorMsg)
			assert.False(t, v.loading)
			assert.True(t, v.triggerEnabled)
			assert.False(t, c.Busy())
		})
	}
}

func TestBeginEntersLoadingState(t *testing.T) {
	c, v := newTestController(&fakeSearcher{})
	v.resultsVisible, v.errorVisible = true, true

	req, err := c.Begin(Form{Query: "  graphene ", Arxiv: true, Reasoning: true})
	require.NoError(t, err)
	assert.Equal(t, domain.SearchRequest{Query: "graphene", Sources: []domain.Source{domain.SourceArxiv}, EnableReasoning: true}, req)
	assert.False(t, v.resultsVisible)
	assert.False(t, v.errorVisible)
	assert.True(t, v.loading)
	assert.False(t, v.triggerEnabled)
	assert.Equal(t, BusyLabel, v.triggerLabel)
	assert.Equal(t, Steps[0], v.step)
	assert.True(t, c.Busy())
}

func TestBeginRejectsOverlappingSearch(t *testing.T) {
	c, v := newTestController(&fakeSearcher{})
	_, err := c.Begin(Form{Query: "a", Arxiv: true})
	require.NoError(t, err)

	_, err = c.Begin(Form{Query: "b", Pubchem: true})
	assert.ErrorIs(t, err, ErrSearchInFlight)
	assert.True(t, v.loading, "rejected call must not disturb the running search")

	_, err = c.Finish(&domain.SearchResponse{}, nil)
	require.NoError(t, err)
	_, err = c.Begin(Form{Query: "b", Pubchem: true})
	assert.NoError(t, err)
}

func TestSubmitSuccess(t *testing.T) {
	total := 3
	s := &fakeSearcher{resp: &domain.SearchResponse{Retrieval: &domain.Retrieval{
		TotalCount: &total,
		Arxiv:      []domain.Document{{Title: "A"}, {Title: "B"}},
		Pubchem:    []domain.Document{{Name: "C"}},
	}}}
	c, v := newTestController(s)

	results, err := c.Submit(context.Background(), Form{Query: "graphene", Arxiv: true, Pubchem: true, Summarization: true})
	require.NoError(t, err)
	assert.Equal(t, 1, s.calls)
	assert.Equal(t, []domain.Source{domain.SourceArxiv, domain.SourcePubchem}, s.last.Sources)
	assert.True(t, s.last.EnableSummarization)

	require.Len(t, results.Documents.Cards, 3)
	assert.True(t, v.resultsVisible)
	assert.False(t, v.errorVisible)
	assert.False(t, v.loading)
	assert.True(t, v.triggerEnabled)
	assert.Equal(t, IdleLabel, v.triggerLabel)
	assert.False(t, c.Busy())
}

func TestSubmitHidesSectionsMissingFromLaterResponse(t *testing.T) {
	total, count, stored := 1, 1, 1
	summary, reasoning, uri := "Graphene is strong.", "Carbon lattice.", "gs://results/run-1.json"
	docs := &domain.Retrieval{TotalCount: &total, Arxiv: []domain.Document{{Title: "A"}}}
	s := &fakeSearcher{resp: &domain.SearchResponse{
		Retrieval:     docs,
		Summarization: &domain.Summarization{ExecutiveSummary: &summary, Count: &count},
		Reasoning:     &domain.Reasoning{Reasoning: &reasoning, KeyTerms: []string{"lattice"}},
		Storage:       &domain.Storage{ResultsURI: &uri, DocumentsStored: &stored},
	}}
	c, v := newTestController(s)
	form := Form{Query: "graphene", Arxiv: true, Summarization: true, Reasoning: true}

	_, err := c.Submit(context.Background(), form)
	require.NoError(t, err)
	require.True(t, v.results.Summarization.Visible)
	require.True(t, v.results.Reasoning.Visible)
	require.True(t, v.results.Storage.Visible)

	s.resp = &domain.SearchResponse{Retrieval: docs}
	results, err := c.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, 2, s.calls)
	assert.False(t, results.Summarization.Visible)
	assert.False(t, results.Reasoning.Visible)
	assert.False(t, results.Storage.Visible)
	assert.Equal(t, *results, v.results)
	require.Len(t, v.results.Documents.Cards, 1)
}

func TestSubmitFailureRestoresIdle(t *testing.T) {
	s := &fakeSearcher{err: errors.New("connection refused")}
	c, v := newTestController(s)

	_, err := c.Submit(context.Background(), Form{Query: "graphene", Arxiv: true})
	var rf *RequestFailedError
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, "Error: connection refused. Please check the API endpoint and try again.", v.errorMsg)
	assert.True(t, v.errorVisible)
	assert.False(t, v.resultsVisible)
	assert.False(t, v.loading)
	assert.True(t, v.triggerEnabled)
	assert.Equal(t, IdleLabel, v.triggerLabel)
	assert.False(t, c.Busy())
}

func TestSubmitAgainstAPI(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantMsg    string
	}{
		{
			name:       "error field",
			statusCode: http.StatusTooManyRequests,
			body:       `{"error": "rate limited"}`,
			wantMsg:    "Error: rate limited. Please check the API endpoint and try again.",
		},
		{
			name:       "unparsable body",
			statusCode: http.StatusServiceUnavailable,
			body:       `upstream down`,
			wantMsg:    "Error: HTTP 503. Please check the API endpoint and try again.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c, v := newTestController(searchapi.NewClient(searchapi.Config{Endpoint: ts.URL}, nil))
			_, err := c.Submit(context.Background(), Form{Query: "graphene", Arxiv: true})
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, v.errorMsg)
			assert.Equal(t, tt.wantMsg, Message(err))
		})
	}
}

func TestSubmitUndecodableResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"retrieval":`))
	}))
	defer ts.Close()

	c, v := newTestController(searchapi.NewClient(searchapi.Config{Endpoint: ts.URL}, nil))
	_, err := c.Submit(context.Background(), Form{Query: "graphene", Arxiv: true})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(v.errorMsg, "Error: decode search response:"))
	assert.True(t, strings.HasSuffix(v.errorMsg, ". Please check the API endpoint and try again."))
	assert.True(t, v.triggerEnabled)
}

func TestBuildRequestSourceOrder(t *testing.T) {
	req, err := BuildRequest(Form{Query: "caffeine", Pubchem: true, Arxiv: true})
	require.NoError(t, err)
	assert.Equal(t, []domain.Source{domain.SourceArxiv, domain.SourcePubchem}, req.Sources)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "A search is already in progress", Message(ErrSearchInFlight))
	assert.Equal(t, "Error: boom", Message(errors.New("boom")))
}
