package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/brandkit/knowledge-server/internal/markdown"
	"github.com/brandkit/knowledge-server/internal/search"
	"github.com/brandkit/knowledge-server/internal/storage"
)

// makeSearchHandler creates the search_knowledge tool handler. It maps the
// tool input onto a pipeline request and hands off to the orchestrator, which
// owns defaulting, fan-out, fusion, and reranking.
func makeSearchHandler(orch *search.Orchestrator) func(
	context.Context, *mcp.CallToolRequest, SearchKnowledgeInput,
) (*mcp.CallToolResult, SearchKnowledgeOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchKnowledgeInput) (
		*mcp.CallToolResult, SearchKnowledgeOutput, error,
	) {
		searchReq := search.Request{
			Query:           input.Query,
			Types:           toSourceTypes(input.Types),
			Limit:           input.Limit,
			Threshold:       input.Threshold,
			Mode:            search.Mode(input.SearchMode),
			SemanticWeight:  input.SemanticWeight,
			Rerank:          input.Rerank,
			RerankModel:     input.RerankModel,
			Diversity:       input.Diversity,
			DiversityLambda: input.DiversityLambda,
			Filters: search.Filters{
				Categories:  input.Categories,
				Variants:    input.Variants,
				DateFrom:    parseDate(input.DateFrom),
				DateTo:      parseDate(input.DateTo),
				ExcludeIDs:  input.ExcludeIDs,
				DocumentIDs: input.DocumentIDs,
			},
			IncludeFacets: input.IncludeFacets,
		}

		resp, err := orch.Search(ctx, searchReq)
		if err != nil {
			return nil, SearchKnowledgeOutput{}, fmt.Errorf("search failed: %w", err)
		}

		out := SearchKnowledgeOutput{
			Results: resp.Results,
			Query:   resp.Query,
			Timing:  resp.Timing,
			Meta:    resp.Meta,
			Facets:  resp.Facets,
		}
		if len(out.Results) == 0 {
			out.Message = "No matching items found. Try broader search terms."
		}
		return nil, out, nil
	}
}

// makeSimilarHandler creates the find_similar tool handler. It runs the
// pipeline in nearest-neighbor mode, keyed by a stored chunk's vector.
func makeSimilarHandler(orch *search.Orchestrator) func(
	context.Context, *mcp.CallToolRequest, FindSimilarInput,
) (*mcp.CallToolResult, FindSimilarOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input FindSimilarInput) (
		*mcp.CallToolResult, FindSimilarOutput, error,
	) {
		resp, err := orch.Search(ctx, search.Request{
			SimilarTo:           input.ChunkID,
			Limit:               input.Limit,
			Threshold:           input.Threshold,
			ExcludeSameDocument: input.ExcludeSameDocument,
			Filters: search.Filters{
				ExcludeIDs: input.ExcludeIDs,
			},
		})
		if err != nil {
			if errors.Is(err, storage.ErrChunkNotFound) {
				return nil, FindSimilarOutput{
					Results: []search.Candidate{},
					Message: fmt.Sprintf("Chunk %s not found.", input.ChunkID),
				}, nil
			}
			return nil, FindSimilarOutput{}, fmt.Errorf("find similar failed: %w", err)
		}

		out := FindSimilarOutput{
			Results: resp.Results,
			Timing:  resp.Timing,
			Meta:    resp.Meta,
		}
		if len(out.Results) == 0 {
			out.Message = "No similar items found."
		}
		return nil, out, nil
	}
}

// makeFacetsHandler creates the get_facets tool handler. A source whose facet
// aggregation fails contributes nothing rather than failing the tool call.
func makeFacetsHandler(orch *search.Orchestrator) func(
	context.Context, *mcp.CallToolRequest, GetFacetsInput,
) (*mcp.CallToolResult, GetFacetsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetFacetsInput) (
		*mcp.CallToolResult, GetFacetsOutput, error,
	) {
		sources := toSourceTypes(input.Types)
		if len(sources) == 0 {
			sources = search.AllSourceTypes()
		}

		out := GetFacetsOutput{Facets: make([]search.SourceFacets, 0, len(sources))}
		for _, src := range sources {
			facets, err := orch.GetFacets(ctx, src)
			if err != nil {
				continue
			}
			out.Facets = append(out.Facets, search.SourceFacets{Source: src, Facets: facets})
		}
		return nil, out, nil
	}
}

// makeFetchHandler creates the fetch_document tool handler.
// Retrieves full document content by path.
// Prepends source header: <!-- Source: path/to/doc.md -->
func makeFetchHandler(store *storage.Store) func(
	context.Context, *mcp.CallToolRequest, FetchDocumentInput,
) (*mcp.CallToolResult, FetchDocumentOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input FetchDocumentInput) (
		*mcp.CallToolResult, FetchDocumentOutput, error,
	) {
		doc, err := store.GetDocumentByPath(ctx, input.Path)
		if err != nil {
			if errors.Is(err, storage.ErrDocumentNotFound) {
				return nil, FetchDocumentOutput{
					Found: false,
					Path:  input.Path,
				}, nil
			}
			return nil, FetchDocumentOutput{}, fmt.Errorf("failed to fetch document: %w", err)
		}

		content := fmt.Sprintf("<!-- Source: %s -->\n\n%s", doc.Metadata.Path, doc.Content)

		tags := doc.Metadata.Tags
		if tags == nil {
			tags = []string{}
		}

		return nil, FetchDocumentOutput{
			Content:   content,
			Path:      doc.Metadata.Path,
			Title:     doc.Title,
			Summary:   doc.Metadata.Summary,
			Category:  doc.Metadata.Category,
			Tags:      tags,
			IndexedAt: doc.Metadata.IndexedAt,
			Found:     true,
		}, nil
	}
}

// makeOutlineHandler creates the document_outline tool handler. It fetches
// the stored markdown and extracts its heading tree.
func makeOutlineHandler(store *storage.Store, chunker *markdown.Chunker) func(
	context.Context, *mcp.CallToolRequest, DocumentOutlineInput,
) (*mcp.CallToolResult, DocumentOutlineOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DocumentOutlineInput) (
		*mcp.CallToolResult, DocumentOutlineOutput, error,
	) {
		doc, err := store.GetDocumentByPath(ctx, input.Path)
		if err != nil {
			if errors.Is(err, storage.ErrDocumentNotFound) {
				return nil, DocumentOutlineOutput{
					Found: false,
					Path:  input.Path,
				}, nil
			}
			return nil, DocumentOutlineOutput{}, fmt.Errorf("failed to fetch document: %w", err)
		}

		outline, err := chunker.Outline([]byte(doc.Content))
		if err != nil {
			return nil, DocumentOutlineOutput{}, fmt.Errorf("failed to build outline: %w", err)
		}
		if outline == nil {
			outline = []markdown.OutlineItem{}
		}

		return nil, DocumentOutlineOutput{
			Path:    doc.Metadata.Path,
			Outline: outline,
			Found:   true,
		}, nil
	}
}

func toSourceTypes(types []string) []search.SourceType {
	out := make([]search.SourceType, 0, len(types))
	for _, t := range types {
		out = append(out, search.SourceType(t))
	}
	return out
}

// parseDate maps an RFC3339 string onto a filter timestamp. A malformed value
// is treated as absent, never as a request error.
func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}
