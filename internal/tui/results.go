package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scisearch/internal/render"
)

var (
	sectionStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	metaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cardStyle      = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).PaddingLeft(1).MarginBottom(1)
	termStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// RenderResults lays out r for a terminal of the given width. The sentence
// of the executive summary and reasoning that best matches query is highlighted.
func RenderResults(r render.Results, query string, width int) string {
	wrap := lipgloss.NewStyle()
	if width > 4 {
		wrap = wrap.Width(width - 4)
	}
	var sections []string

	docs := []string{sectionStyle.Render("Documents")}
	if r.Documents.Placeholder != "" {
		docs = append(docs, r.Documents.Placeholder)
	}
	for _, c := range r.Documents.Cards {
		docs = append(docs, cardStyle.Render(renderCard(c, wrap)))
	}
	sections = append(sections, strings.Join(docs, "\n"))

	if s := r.Summarization; s.Visible {
		lines := []string{sectionStyle.Render("Summary")}
		if s.ExecutiveSummary != "" {
			lines = append(lines, wrap.Render(highlightBestSentence(s.ExecutiveSummary, query)))
		}
		if s.CountLine != "" {
			lines = append(lines, metaStyle.Render(s.CountLine))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if rs := r.Reasoning; rs.Visible {
		lines := []string{sectionStyle.Render("Reasoning")}
		if rs.Text != "" {
			lines = append(lines, wrap.Render(highlightBestSentence(rs.Text, query)))
		}
		if len(rs.KeyTerms) > 0 {
			terms := make([]string, len(rs.KeyTerms))
			for i, t := range rs.KeyTerms {
				terms[i] = termStyle.Render(t)
			}
			lines = append(lines, "Key Terms: "+strings.Join(terms, " "))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if st := r.Storage; st.Visible {
		lines := append([]string{sectionStyle.Render("Storage")}, st.Lines...)
		sections = append(sections, strings.Join(lines, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

func renderCard(c render.Card, wrap lipgloss.Style) string {
	lines := []string{titleStyle.Render(c.Title)}
	if c.Authors != "" {
		lines = append(lines, metaStyle.Render("Authors: "+c.Authors))
	}
	meta := "Source: " + c.Source
	if c.Published != "" {
		meta += "  Published: " + c.Published
	}
	lines = append(lines, metaStyle.Render(meta))
	lines = append(lines, wrap.Render(c.Summary))
	return strings.Join(lines, "\n")
}

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := splitSentences(text)
	qTokens := toTokenSet(query)
	bestIdx := 0
	bestScore := 0
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if bestScore > 0 && i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

// splitSentences keeps any unterminated trailing text as a final sentence.
func splitSentences(text string) []string {
	var out []string
	end := 0
	for _, loc := range sentenceRe.FindAllStringIndex(text, -1) {
		out = append(out, text[loc[0]:loc[1]])
		end = loc[1]
	}
	if rest := strings.TrimSpace(text[end:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
