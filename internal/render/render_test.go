package render

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scisearch/internal/domain"
)

func decode(t *testing.T, body string) *domain.SearchResponse {
	t.Helper()
	var resp domain.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return &resp
}

func TestRenderNoDocuments(t *testing.T) {
	for _, body := range []string{
		`{"retrieval":{"total_count":0,"arxiv":[{"title":"ignored"}]}}`,
		`{"retrieval":{}}`,
		`{}`,
	} {
		r := Render(decode(t, body))
		assert.Equal(t, NoDocumentsText, r.Documents.Placeholder, body)
		assert.Empty(t, r.Documents.Cards, body)
	}
}

func TestRenderCardOrder(t *testing.T) {
	r := Render(decode(t, `{"retrieval":{"total_count":3,
		"pubchem":[{"name":"C","source":"pubchem"}],
		"arxiv":[{"title":"A","source":"arxiv"},{"title":"B","source":"arxiv"}]}}`))
	require.Len(t, r.Documents.Cards, 3)
	var titles []string
	for _, c := range r.Documents.Cards {
		titles = append(titles, c.Title)
	}
	assert.Equal(t, []string{"A", "B", "C"}, titles)
	assert.Empty(t, r.Documents.Placeholder)
}

func TestRenderCardFields(t *testing.T) {
	useLocation(t, time.UTC)
	r := Render(decode(t, `{"retrieval":{"total_count":2,"arxiv":[
		{"title":"Graphene","authors":["Geim","Novoselov"],"summary":"2D carbon","source":"arxiv","published":"2004-10-22T00:00:00Z"},
		{}]}}`))
	require.Len(t, r.Documents.Cards, 2)

	assert.Equal(t, Card{
		Title:     "Graphene",
		Authors:   "Geim, Novoselov",
		Source:    "arxiv",
		Published: "10/22/2004",
		Summary:   "2D carbon",
	}, r.Documents.Cards[0])

	assert.Equal(t, Card{
		Title:   UntitledText,
		Source:  UnknownSourceText,
		Summary: NoSummaryText,
	}, r.Documents.Cards[1])
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 350)
	got := Truncate(long, MaxSummaryChars)
	assert.Equal(t, strings.Repeat("a", 300)+"...", got)

	exact := strings.Repeat("b", 300)
	assert.Equal(t, exact, Truncate(exact, MaxSummaryChars))

	multibyte := strings.Repeat("é", 301)
	assert.Equal(t, strings.Repeat("é", 300)+"...", Truncate(multibyte, MaxSummaryChars))
}

func TestCardSummaryTruncated(t *testing.T) {
	summary := strings.Repeat("x", 350)
	r := Render(&domain.SearchResponse{Retrieval: &domain.Retrieval{
		TotalCount: intPtr(1),
		Arxiv:      []domain.Document{{Title: "T", Summary: summary}},
	}})
	require.Len(t, r.Documents.Cards, 1)
	assert.Equal(t, summary[:300]+"...", r.Documents.Cards[0].Summary)
}

func TestFormatDate(t *testing.T) {
	useLocation(t, time.UTC)
	assert.Equal(t, "1/15/2024", FormatDate("2024-01-15"))
	assert.Equal(t, "3/5/2023", FormatDate("2023-03-05T10:20:30Z"))
	assert.Equal(t, "3/5/2023", FormatDate("2023-03-05T10:20:30"))
	assert.Equal(t, "sometime", FormatDate("sometime"))
}

func TestFormatDateUsesLocalZone(t *testing.T) {
	newYork := time.FixedZone("EST", -5*60*60)
	tokyo := time.FixedZone("JST", 9*60*60)

	// 02:00 UTC is still the previous day in New York
	assert.Equal(t, "3/4/2023", formatDateIn("2023-03-05T02:00:00Z", newYork))
	assert.Equal(t, "3/5/2023", formatDateIn("2023-03-05T02:00:00Z", tokyo))
	// an explicit offset is converted too
	assert.Equal(t, "3/6/2023", formatDateIn("2023-03-05T20:00:00-05:00", tokyo))
	// a bare date is UTC midnight
	assert.Equal(t, "1/14/2024", formatDateIn("2024-01-15", newYork))
	// a zoneless timestamp is already local
	assert.Equal(t, "3/5/2023", formatDateIn("2023-03-05T23:30:00", newYork))
}

func useLocation(t *testing.T, loc *time.Location) {
	t.Helper()
	prev := displayLocation
	displayLocation = loc
	t.Cleanup(func() { displayLocation = prev })
}

func TestOnlyRetrievalShowsOnlyDocuments(t *testing.T) {
	for _, body := range []string{
		`{"retrieval":{"total_count":1,"arxiv":[{"title":"A"}]}}`,
		`{"retrieval":{"total_count":1,"arxiv":[{"title":"A"}]},"summarization":{},"reasoning":{},"storage":{}}`,
	} {
		r := Render(decode(t, body))
		assert.Len(t, r.Documents.Cards, 1, body)
		assert.False(t, r.Summarization.Visible, body)
		assert.False(t, r.Reasoning.Visible, body)
		assert.False(t, r.Storage.Visible, body)
	}
}

func TestRenderSummarization(t *testing.T) {
	r := Render(decode(t, `{"summarization":{"executive_summary":"Overall findings.","count":4}}`))
	assert.Equal(t, Summarization{
		Visible:          true,
		ExecutiveSummary: "Overall findings.",
		CountLine:        "Summarized 4 document(s)",
	}, r.Summarization)

	r = Render(decode(t, `{"summarization":{"count":0}}`))
	assert.True(t, r.Summarization.Visible)
	assert.Empty(t, r.Summarization.CountLine)
	assert.Empty(t, r.Summarization.ExecutiveSummary)
}

func TestRenderReasoning(t *testing.T) {
	r := Render(decode(t, `{"reasoning":{"reasoning":"Because.","key_terms":["graphene","lattice"]}}`))
	assert.Equal(t, Reasoning{Visible: true, Text: "Because.", KeyTerms: []string{"graphene", "lattice"}}, r.Reasoning)

	r = Render(decode(t, `{"reasoning":{"key_terms":[]}}`))
	assert.True(t, r.Reasoning.Visible)
	assert.Empty(t, r.Reasoning.KeyTerms)
}

func TestRenderStorage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "both fields",
			body: `{"storage":{"results_uri":"gs://bucket/results.json","documents_stored":5}}`,
			want: []string{"Results URI: gs://bucket/results.json", "Documents stored: 5"},
		},
		{
			name: "zero stored is shown",
			body: `{"storage":{"documents_stored":0}}`,
			want: []string{"Documents stored: 0"},
		},
		{
			name: "no known fields",
			body: `{"storage":{"bucket":"x"}}`,
			want: []string{NoStorageInfoText},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Render(decode(t, tt.body))
			assert.True(t, r.Storage.Visible)
			assert.Equal(t, tt.want, r.Storage.Lines)
		})
	}
}

func intPtr(v int) *int { return &v }
