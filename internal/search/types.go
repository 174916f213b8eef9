// Package search implements the brand-knowledge retrieval pipeline: query
// validation, embedding, concurrent per-source candidate retrieval, optional
// cross-encoder reranking with diversity selection, and facet aggregation.
package search

import (
	"context"
	"strings"
	"time"
)

// SourceType identifies a knowledge source searched by the pipeline.
type SourceType string

const (
	SourceChats     SourceType = "chats"
	SourceAssets    SourceType = "assets"
	SourceDocuments SourceType = "documents"
)

// AllSourceTypes returns every searchable source type, in canonical order.
func AllSourceTypes() []SourceType {
	return []SourceType{SourceChats, SourceAssets, SourceDocuments}
}

// Mode selects the retrieval strategy for a request.
type Mode string

const (
	ModeHybrid   Mode = "hybrid"
	ModeSemantic Mode = "semantic"
	ModeKeyword  Mode = "keyword"
)

// MatchType records which retrieval signal matched a candidate.
type MatchType string

const (
	MatchSemantic MatchType = "semantic"
	MatchKeyword  MatchType = "keyword"
	MatchBoth     MatchType = "both"
)

// Filters narrows retrieval results. Dimensions combine with AND; values
// within a dimension combine with OR. Zero values mean "no filter".
type Filters struct {
	Categories  []string   `json:"categories,omitempty"`
	Variants    []string   `json:"variants,omitempty"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	ExcludeIDs  []string   `json:"exclude_ids,omitempty"`
	DocumentIDs []string   `json:"document_ids,omitempty"`
}

// Empty reports whether no filter dimension is set.
func (f Filters) Empty() bool {
	return len(f.Categories) == 0 &&
		len(f.Variants) == 0 &&
		f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.ExcludeIDs) == 0 &&
		len(f.DocumentIDs) == 0
}

// ChatResult carries the display fields of a conversation-history match.
type ChatResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AssetResult carries the display fields of a brand-asset match.
type AssetResult struct {
	Filename    string `json:"filename"`
	Category    string `json:"category,omitempty"`
	Variant     string `json:"variant,omitempty"`
	Description string `json:"description,omitempty"`
}

// DocumentResult carries the display fields of a document-chunk match.
type DocumentResult struct {
	DocumentID       string   `json:"document_id"`
	HeadingHierarchy []string `json:"heading_hierarchy,omitempty"`
	Content          string   `json:"content"`
}

// Candidate is a single retrieval result. Source is the discriminant;
// exactly one of Chat, Asset, or Document is non-nil.
type Candidate struct {
	ID          string     `json:"id"`
	Source      SourceType `json:"source"`
	Similarity  float64    `json:"similarity"`
	MatchType   MatchType  `json:"match_type,omitempty"`
	KeywordRank int        `json:"keyword_rank,omitempty"`
	RRFScore    float64    `json:"rrf_score,omitempty"`

	Chat     *ChatResult     `json:"chat,omitempty"`
	Asset    *AssetResult    `json:"asset,omitempty"`
	Document *DocumentResult `json:"document,omitempty"`

	// Ranking is populated only when the rerank stage ran.
	Ranking *Ranking `json:"ranking,omitempty"`
}

// DisplayText returns the text used for reranking and diversity comparison:
// the candidate's content, falling back to its description or filename.
func (c *Candidate) DisplayText() string {
	switch {
	case c.Chat != nil:
		if c.Chat.Content != "" {
			return c.Chat.Content
		}
		return c.Chat.Title
	case c.Asset != nil:
		if c.Asset.Description != "" {
			return c.Asset.Description
		}
		return c.Asset.Filename
	case c.Document != nil:
		return c.Document.Content
	}
	return ""
}

// Ranking holds the rerank-stage scores attached to a candidate.
type Ranking struct {
	RelevanceScore float64  `json:"relevance_score"`
	DiversityScore *float64 `json:"diversity_score,omitempty"`
	OriginalRank   int      `json:"original_rank"`
}

// Facet is a count of items sharing a metadata value.
type Facet struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Count int    `json:"count"`
}

// SourceFacets groups facet counts for one source type.
type SourceFacets struct {
	Source SourceType `json:"source"`
	Facets []Facet    `json:"facets"`
}

// Request describes one search invocation.
type Request struct {
	Query          string       `json:"query"`
	Types          []SourceType `json:"types,omitempty"`
	Limit          int          `json:"limit,omitempty"`
	Threshold      float64      `json:"threshold,omitempty"`
	Mode           Mode         `json:"search_mode,omitempty"`
	SemanticWeight float64      `json:"semantic_weight,omitempty"`

	// Rerank defaults to "scorer available" when nil.
	Rerank      *bool  `json:"rerank,omitempty"`
	RerankModel string `json:"rerank_model,omitempty"`
	// Diversity defaults to true when reranking is enabled.
	Diversity       *bool   `json:"diversity,omitempty"`
	DiversityLambda float64 `json:"diversity_lambda,omitempty"`

	Filters Filters `json:"filters,omitempty"`

	// SimilarTo switches the request to nearest-neighbor lookup keyed by a
	// stored chunk's vector; no query embedding is generated.
	SimilarTo           string `json:"similar_to,omitempty"`
	ExcludeSameDocument bool   `json:"exclude_same_document,omitempty"`

	IncludeFacets bool `json:"include_facets,omitempty"`
}

// Timing reports per-stage latency in milliseconds. Rerank is set only when
// the rerank stage actually executed.
type Timing struct {
	Embedding int64  `json:"embedding"`
	Search    int64  `json:"search"`
	Rerank    *int64 `json:"rerank,omitempty"`
	Total     int64  `json:"total"`
}

// Meta describes how the response was produced.
type Meta struct {
	Reranked            bool `json:"reranked"`
	DiversityApplied    bool `json:"diversity_applied"`
	CandidatesRetrieved int  `json:"candidates_retrieved"`
}

// Response is the assembled search result.
type Response struct {
	Results []Candidate    `json:"results"`
	Query   string         `json:"query"`
	Timing  Timing         `json:"timing"`
	Meta    Meta           `json:"meta"`
	Facets  []SourceFacets `json:"facets,omitempty"`
}

// SearchParams is the per-source query passed to the KnowledgeStore.
type SearchParams struct {
	Source         SourceType
	Query          string
	Vector         []float32
	Limit          int
	Threshold      float64
	SemanticWeight float64
	Filters        Filters
}

// SimilarParams keys a nearest-neighbor lookup by a stored chunk ID.
type SimilarParams struct {
	ChunkID             string
	Limit               int
	Threshold           float64
	ExcludeSameDocument bool
	ExcludeIDs          []string
}

// KnowledgeStore is the retrieval surface the pipeline depends on. Hybrid
// fusion (weighted RRF) happens inside the store; SemanticWeight passes
// through unchanged.
type KnowledgeStore interface {
	HybridSearch(ctx context.Context, p SearchParams) ([]Candidate, error)
	SemanticSearch(ctx context.Context, p SearchParams) ([]Candidate, error)
	KeywordSearch(ctx context.Context, p SearchParams) ([]Candidate, error)
	FindSimilar(ctx context.Context, p SimilarParams) ([]Candidate, error)
	Facets(ctx context.Context, source SourceType) ([]Facet, error)
}

// Embedder turns query text into a fixed-length vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// RelevanceScorer scores documents against a query with a cross-encoder
// model. It returns one score per input text, in input order.
type RelevanceScorer interface {
	Score(ctx context.Context, query, model string, texts []string) ([]float64, error)
}

func normalizeSources(types []SourceType) []SourceType {
	if len(types) == 0 {
		return AllSourceTypes()
	}
	seen := make(map[SourceType]bool, len(types))
	out := make([]SourceType, 0, len(types))
	for _, t := range types {
		t = SourceType(strings.ToLower(string(t)))
		switch t {
		case SourceChats, SourceAssets, SourceDocuments:
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	if len(out) == 0 {
		return AllSourceTypes()
	}
	return out
}
