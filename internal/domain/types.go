package domain

import "context"

// Source is a content provider the backend can query.
type Source string

const (
	SourceArxiv   Source = "arxiv"
	SourcePubchem Source = "pubchem"
)

// SearchRequest is the single JSON body posted to the search API.
// Field order matches the wire format.
type SearchRequest struct {
	Query               string   `json:"query"`
	Sources             []Source `json:"sources"`
	EnableSummarization bool     `json:"enable_summarization"`
	EnableReasoning     bool     `json:"enable_reasoning"`
}

// Document is a single retrieved item. Papers carry title/summary,
// compounds carry name/content.
type Document struct {
	Title     string   `json:"title,omitempty"`
	Name      string   `json:"name,omitempty"`
	Authors   []string `json:"authors,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Content   string   `json:"content,omitempty"`
	Source    string   `json:"source,omitempty"`
	Published string   `json:"published,omitempty"`
}

// DisplayTitle returns the first non-empty of title and name.
func (d Document) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// Text returns the first non-empty of summary and content.
func (d Document) Text() string {
	if d.Summary != "" {
		return d.Summary
	}
	return d.Content
}

// Searcher submits a search request to the remote API.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}
