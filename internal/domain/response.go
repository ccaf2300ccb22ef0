package domain

import (
	"bytes"
	"encoding/json"
)

// SearchResponse is the decoded API reply. Each section is independently
// absent, empty or present.
type SearchResponse struct {
	Retrieval     *Retrieval     `json:"retrieval,omitempty"`
	Summarization *Summarization `json:"summarization,omitempty"`
	Reasoning     *Reasoning     `json:"reasoning,omitempty"`
	Storage       *Storage       `json:"storage,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Retrieval holds the documents returned per source.
type Retrieval struct {
	TotalCount *int       `json:"total_count,omitempty"`
	Arxiv      []Document `json:"arxiv,omitempty"`
	Pubchem    []Document `json:"pubchem,omitempty"`
}

// Total returns total_count, treating absent as zero.
func (r *Retrieval) Total() int {
	if r == nil || r.TotalCount == nil {
		return 0
	}
	return *r.TotalCount
}

func (r *Retrieval) UnmarshalJSON(b []byte) error {
	type retrievalFields Retrieval
	var f retrievalFields
	if _, err := decodeSection(b, &f); err != nil {
		return err
	}
	*r = Retrieval(f)
	return nil
}

// Documents returns arxiv documents followed by pubchem documents.
func (r *Retrieval) Documents() []Document {
	if r == nil {
		return nil
	}
	out := make([]Document, 0, len(r.Arxiv)+len(r.Pubchem))
	out = append(out, r.Arxiv...)
	out = append(out, r.Pubchem...)
	return out
}

// Summarization is the backend's condensed view of the retrieved documents.
type Summarization struct {
	ExecutiveSummary *string `json:"executive_summary,omitempty"`
	Count            *int    `json:"count,omitempty"`

	keys int
}

// Present reports whether the section was sent with at least one key.
func (s *Summarization) Present() bool {
	if s == nil {
		return false
	}
	return s.keys > 0 || s.ExecutiveSummary != nil || s.Count != nil
}

func (s *Summarization) UnmarshalJSON(b []byte) error {
	type summarizationFields Summarization
	var f summarizationFields
	n, err := decodeSection(b, &f)
	if err != nil {
		return err
	}
	*s = Summarization(f)
	s.keys = n
	return nil
}

// Reasoning carries the backend's analysis and extracted key terms.
type Reasoning struct {
	Reasoning *string  `json:"reasoning,omitempty"`
	KeyTerms  []string `json:"key_terms,omitempty"`

	keys int
}

// Present reports whether the section was sent with at least one key.
func (r *Reasoning) Present() bool {
	if r == nil {
		return false
	}
	return r.keys > 0 || r.Reasoning != nil || r.KeyTerms != nil
}

func (r *Reasoning) UnmarshalJSON(b []byte) error {
	type reasoningFields Reasoning
	var f reasoningFields
	n, err := decodeSection(b, &f)
	if err != nil {
		return err
	}
	*r = Reasoning(f)
	r.keys = n
	return nil
}

// Storage describes where the backend persisted the results.
type Storage struct {
	ResultsURI      *string `json:"results_uri,omitempty"`
	DocumentsStored *int    `json:"documents_stored,omitempty"`

	keys int
}

// Present reports whether the section was sent with at least one key.
func (s *Storage) Present() bool {
	if s == nil {
		return false
	}
	return s.keys > 0 || s.ResultsURI != nil || s.DocumentsStored != nil
}

func (s *Storage) UnmarshalJSON(b []byte) error {
	type storageFields Storage
	var f storageFields
	n, err := decodeSection(b, &f)
	if err != nil {
		return err
	}
	*s = Storage(f)
	s.keys = n
	return nil
}

// decodeSection decodes a JSON object into dst and returns how many keys it
// had. null, arrays and scalars leave dst untouched and count as absent.
func decodeSection(b []byte, dst any) (int, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return 0, nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return 0, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return 0, err
	}
	return len(m), nil
}
