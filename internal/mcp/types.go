// Package mcp exposes the brand-knowledge search pipeline as MCP tools.
package mcp

import (
	"time"

	"github.com/brandkit/knowledge-server/internal/markdown"
	"github.com/brandkit/knowledge-server/internal/search"
)

// SearchKnowledgeInput defines the input parameters for the search_knowledge tool.
type SearchKnowledgeInput struct {
	// Query is the free-text search query.
	Query string `json:"query" jsonschema:"required,description=The search query for finding relevant brand knowledge"`
	// Types restricts the search to specific source types.
	Types []string `json:"types,omitempty" jsonschema:"description=Source types to search: chats assets documents (default all three)"`
	// Limit is the maximum number of results to return.
	Limit int `json:"limit,omitempty" jsonschema:"minimum=1,maximum=50,default=10,description=Maximum number of results to return"`
	// Threshold is the minimum similarity score (0-1).
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum=0,maximum=1,default=0.3,description=Minimum similarity score threshold (0-1)"`
	// SearchMode selects the retrieval strategy.
	SearchMode string `json:"search_mode,omitempty" jsonschema:"default=hybrid,description=Retrieval strategy: hybrid semantic or keyword"`
	// SemanticWeight balances vector vs keyword signals in hybrid fusion.
	SemanticWeight float64 `json:"semantic_weight,omitempty" jsonschema:"minimum=0,maximum=1,default=0.7,description=Weight of the vector signal in hybrid fusion (0-1)"`
	// Rerank toggles cross-encoder reranking. Defaults to provider availability.
	Rerank *bool `json:"rerank,omitempty" jsonschema:"description=Rerank results with a cross-encoder (default when a rerank provider is configured)"`
	// RerankModel overrides the rerank model.
	RerankModel string `json:"rerank_model,omitempty" jsonschema:"description=Cross-encoder model to rerank with"`
	// Diversity toggles MMR diversity selection during reranking.
	Diversity *bool `json:"diversity,omitempty" jsonschema:"description=Apply diversity selection when reranking (default true)"`
	// DiversityLambda trades relevance against diversity (0-1).
	DiversityLambda float64 `json:"diversity_lambda,omitempty" jsonschema:"minimum=0,maximum=1,default=0.7,description=Relevance vs diversity trade-off (1 = pure relevance)"`
	// Categories filters results by document/asset category.
	Categories []string `json:"categories,omitempty" jsonschema:"description=Filter by category values"`
	// Variants filters assets by variant.
	Variants []string `json:"variants,omitempty" jsonschema:"description=Filter by asset variant values"`
	// DateFrom restricts results to items created at or after this RFC3339 time.
	DateFrom string `json:"date_from,omitempty" jsonschema:"description=Only items created at or after this RFC3339 timestamp"`
	// DateTo restricts results to items created at or before this RFC3339 time.
	DateTo string `json:"date_to,omitempty" jsonschema:"description=Only items created at or before this RFC3339 timestamp"`
	// ExcludeIDs removes specific items from the results.
	ExcludeIDs []string `json:"exclude_ids,omitempty" jsonschema:"description=Item IDs to exclude from results"`
	// DocumentIDs restricts document results to specific parent documents.
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"description=Restrict document chunks to these parent document IDs"`
	// IncludeFacets adds facet counts per source to the response.
	IncludeFacets bool `json:"include_facets,omitempty" jsonschema:"description=Include metadata facet counts per source type"`
}

// SearchKnowledgeOutput contains the ranked search results.
type SearchKnowledgeOutput struct {
	// Results is the ranked, deduplicated result list.
	Results []search.Candidate `json:"results"`
	// Query echoes the query that produced the results.
	Query string `json:"query"`
	// Timing reports per-stage latency in milliseconds.
	Timing search.Timing `json:"timing"`
	// Meta describes how the results were produced.
	Meta search.Meta `json:"meta"`
	// Facets holds per-source facet counts when requested.
	Facets []search.SourceFacets `json:"facets,omitempty"`
	// Message provides informational context (e.g., "No matching items found").
	Message string `json:"message,omitempty"`
}

// FindSimilarInput defines the input parameters for the find_similar tool.
type FindSimilarInput struct {
	// ChunkID is the stored chunk whose neighbors to find.
	ChunkID string `json:"chunk_id" jsonschema:"required,description=ID of the stored chunk to find similar content for"`
	// Limit is the maximum number of results to return.
	Limit int `json:"limit,omitempty" jsonschema:"minimum=1,maximum=50,default=10,description=Maximum number of results to return"`
	// Threshold is the minimum similarity score (0-1).
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum=0,maximum=1,default=0.3,description=Minimum similarity score threshold (0-1)"`
	// ExcludeSameDocument drops chunks from the reference chunk's document.
	ExcludeSameDocument bool `json:"exclude_same_document,omitempty" jsonschema:"description=Exclude chunks belonging to the same document as the reference chunk"`
	// ExcludeIDs removes specific items from the results.
	ExcludeIDs []string `json:"exclude_ids,omitempty" jsonschema:"description=Item IDs to exclude from results"`
}

// FindSimilarOutput contains the nearest-neighbor results.
type FindSimilarOutput struct {
	// Results is the similarity-ordered neighbor list.
	Results []search.Candidate `json:"results"`
	// Timing reports per-stage latency in milliseconds.
	Timing search.Timing `json:"timing"`
	// Meta describes how the results were produced.
	Meta search.Meta `json:"meta"`
	// Message provides informational context.
	Message string `json:"message,omitempty"`
}

// GetFacetsInput defines the input parameters for the get_facets tool.
type GetFacetsInput struct {
	// Types restricts facet aggregation to specific source types.
	Types []string `json:"types,omitempty" jsonschema:"description=Source types to aggregate facets for: chats assets documents (default all three)"`
}

// GetFacetsOutput contains facet counts grouped by source type.
type GetFacetsOutput struct {
	// Facets is one group of counts per source type.
	Facets []search.SourceFacets `json:"facets"`
}

// FetchDocumentInput defines the input parameters for the fetch_document tool.
type FetchDocumentInput struct {
	// Path is the document path to retrieve (e.g., "voice/tone-of-voice.md").
	Path string `json:"path" jsonschema:"required,description=The document path to retrieve (e.g. voice/tone-of-voice.md)"`
}

// FetchDocumentOutput contains the retrieved document.
type FetchDocumentOutput struct {
	// Content is the full markdown content with source header prepended.
	Content string `json:"content"`
	// Path is the document path.
	Path string `json:"path"`
	// Title is the document title.
	Title string `json:"title"`
	// Summary is the LLM-generated document summary.
	Summary string `json:"summary"`
	// Category is the facet category the document was filed under.
	Category string `json:"category"`
	// Tags lists extracted brand concepts.
	Tags []string `json:"tags"`
	// IndexedAt is when the document was last indexed.
	IndexedAt time.Time `json:"indexed_at"`
	// Found indicates whether the document exists.
	Found bool `json:"found"`
}

// DocumentOutlineInput defines the input parameters for the document_outline tool.
type DocumentOutlineInput struct {
	// Path is the document path to outline.
	Path string `json:"path" jsonschema:"required,description=The document path to extract the heading outline from"`
}

// DocumentOutlineOutput contains the document's heading tree.
type DocumentOutlineOutput struct {
	// Path is the document path.
	Path string `json:"path"`
	// Outline is the nested heading structure.
	Outline []markdown.OutlineItem `json:"outline"`
	// Found indicates whether the document exists.
	Found bool `json:"found"`
}
