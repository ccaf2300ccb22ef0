// Package render turns a search response into view-neutral result sections.
// It performs no I/O; front ends decide how a Results value is drawn.
package render

import (
	"fmt"
	"strings"
	"time"

	"scisearch/internal/domain"
)

const (
	// MaxSummaryChars is the number of characters of a document summary shown on a card.
	MaxSummaryChars = 300

	NoDocumentsText    = "No documents found. Try a different query."
	UntitledText       = "Untitled"
	NoSummaryText      = "No summary available"
	UnknownSourceText  = "unknown"
	NoStorageInfoText  = "Storage information not available"
	DateLayout         = "1/2/2006"
	truncationEllipsis = "..."
)

// Card is one rendered document.
type Card struct {
	Title     string
	Authors   string
	Source    string
	Published string
	Summary   string
}

// Documents is the always-visible document list.
type Documents struct {
	// Placeholder is set instead of Cards when nothing was retrieved.
	Placeholder string
	Cards       []Card
}

// Summarization is the executive summary section.
type Summarization struct {
	Visible          bool
	ExecutiveSummary string
	CountLine        string
}

// Reasoning is the reasoning section.
type Reasoning struct {
	Visible  bool
	Text     string
	KeyTerms []string
}

// Storage is the storage metadata section.
type Storage struct {
	Visible bool
	Lines   []string
}

// Results is everything a view needs to draw one response.
type Results struct {
	Documents     Documents
	Summarization Summarization
	Reasoning     Reasoning
	Storage       Storage
}

// Render builds the result sections for resp. Each optional section is
// visible only when the response carried it.
func Render(resp *domain.SearchResponse) Results {
	if resp == nil {
		resp = &domain.SearchResponse{}
	}
	return Results{
		Documents:     RenderDocuments(resp.Retrieval),
		Summarization: RenderSummarization(resp.Summarization),
		Reasoning:     RenderReasoning(resp.Reasoning),
		Storage:       RenderStorage(resp.Storage),
	}
}

// RenderDocuments renders arxiv cards followed by pubchem cards, or the
// placeholder when total_count is zero or absent.
func RenderDocuments(r *domain.Retrieval) Documents {
	if r.Total() == 0 {
		return Documents{Placeholder: NoDocumentsText}
	}
	docs := r.Documents()
	cards := make([]Card, 0, len(docs))
	for _, d := range docs {
		cards = append(cards, renderCard(d))
	}
	return Documents{Cards: cards}
}

func renderCard(d domain.Document) Card {
	c := Card{
		Title:   d.DisplayTitle(),
		Authors: strings.Join(d.Authors, ", "),
		Source:  d.Source,
		Summary: d.Text(),
	}
	if c.Title == "" {
		c.Title = UntitledText
	}
	if c.Summary == "" {
		c.Summary = NoSummaryText
	}
	if c.Source == "" {
		c.Source = UnknownSourceText
	}
	c.Summary = Truncate(c.Summary, MaxSummaryChars)
	if d.Published != "" {
		c.Published = FormatDate(d.Published)
	}
	return c
}

// Truncate cuts s to n characters and appends an ellipsis when it was longer.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + truncationEllipsis
}

// displayLocation is the zone dates are shown in.
var displayLocation = time.Local

// Timestamps without a zone are read in the display zone; a bare date is UTC midnight.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FormatDate renders an ISO-8601 date as a short date in local time. Values
// that do not parse are returned unchanged.
func FormatDate(s string) string {
	return formatDateIn(s, displayLocation)
}

func formatDateIn(s string, loc *time.Location) string {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.In(loc).Format(DateLayout)
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc).Format(DateLayout)
		}
	}
	return s
}

// RenderSummarization renders the summary section when present.
func RenderSummarization(s *domain.Summarization) Summarization {
	if !s.Present() {
		return Summarization{}
	}
	out := Summarization{Visible: true}
	if s.ExecutiveSummary != nil {
		out.ExecutiveSummary = *s.ExecutiveSummary
	}
	if s.Count != nil && *s.Count != 0 {
		out.CountLine = fmt.Sprintf("Summarized %d document(s)", *s.Count)
	}
	return out
}

// RenderReasoning renders the reasoning section when present.
func RenderReasoning(r *domain.Reasoning) Reasoning {
	if !r.Present() {
		return Reasoning{}
	}
	out := Reasoning{Visible: true}
	if r.Reasoning != nil {
		out.Text = *r.Reasoning
	}
	if len(r.KeyTerms) > 0 {
		out.KeyTerms = append([]string(nil), r.KeyTerms...)
	}
	return out
}

// RenderStorage renders the storage section when present. A stored count of
// zero is shown; only an absent count is omitted.
func RenderStorage(s *domain.Storage) Storage {
	if !s.Present() {
		return Storage{}
	}
	out := Storage{Visible: true}
	if s.ResultsURI != nil && *s.ResultsURI != "" {
		out.Lines = append(out.Lines, "Results URI: "+*s.ResultsURI)
	}
	if s.DocumentsStored != nil {
		out.Lines = append(out.Lines, fmt.Sprintf("Documents stored: %d", *s.DocumentsStored))
	}
	if len(out.Lines) == 0 {
		out.Lines = []string{NoStorageInfoText}
	}
	return out
}
