// Package indexer orchestrates brand-document ingestion: fetch, metadata
// generation, chunking, embedding, and storage.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brandkit/knowledge-server/internal/embedding"
	"github.com/brandkit/knowledge-server/internal/github"
	"github.com/brandkit/knowledge-server/internal/markdown"
	"github.com/brandkit/knowledge-server/internal/metadata"
	"github.com/brandkit/knowledge-server/internal/storage"
)

// IndexResult contains statistics about an indexing operation.
type IndexResult struct {
	TotalDocs      int
	TotalChunks    int
	SuccessfulDocs int
	FailedDocs     []FailedDoc
	CommitSHA      string
	Duration       time.Duration
}

// FailedDoc represents a document that failed to index.
type FailedDoc struct {
	Path   string
	Reason string
}

// Pipeline orchestrates the full indexing process from fetching to storage.
type Pipeline struct {
	fetcher   *github.Fetcher
	chunker   *markdown.Chunker
	embedder  *embedding.Embedder
	generator *metadata.Generator
	storage   *storage.Store
	logger    *slog.Logger
}

// NewPipeline creates a new indexing pipeline with the given components.
func NewPipeline(
	fetcher *github.Fetcher,
	chunker *markdown.Chunker,
	embedder *embedding.Embedder,
	generator *metadata.Generator,
	storage *storage.Store,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		fetcher:   fetcher,
		chunker:   chunker,
		embedder:  embedder,
		generator: generator,
		storage:   storage,
		logger:    logger,
	}
}

// IndexAll fetches all brand documents and indexes them. A document that
// fails to process is skipped and reported; it never aborts the run.
func (p *Pipeline) IndexAll(ctx context.Context) (*IndexResult, error) {
	start := time.Now()
	result := &IndexResult{}

	commitSHA, err := p.fetcher.GetLatestCommitSHA(ctx)
	if err != nil {
		return nil, fmt.Errorf("get commit SHA: %w", err)
	}
	result.CommitSHA = commitSHA
	p.logger.Info("Starting indexing", "commit", commitSHA)

	paths, err := p.fetcher.ListDocs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list docs: %w", err)
	}
	result.TotalDocs = len(paths)
	p.logger.Info("Found documents", "count", len(paths))

	for _, path := range paths {
		chunks, err := p.processDocument(ctx, path)
		if err != nil {
			p.logger.Warn("Failed to process document", "path", path, "error", err)
			result.FailedDocs = append(result.FailedDocs, FailedDoc{
				Path:   path,
				Reason: err.Error(),
			})
			continue
		}
		result.SuccessfulDocs++
		result.TotalChunks += chunks
	}

	result.Duration = time.Since(start)
	p.logger.Info("Indexing complete",
		"successful", result.SuccessfulDocs,
		"failed", len(result.FailedDocs),
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)

	return result, nil
}

// processDocument handles the full pipeline for a single document.
// Returns the number of chunks created for the document.
func (p *Pipeline) processDocument(ctx context.Context, path string) (int, error) {
	fetched, err := p.fetcher.FetchDoc(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	p.logger.Debug("Fetched document", "path", path, "size", len(fetched.Content))

	meta, err := p.generator.GenerateMetadata(ctx, path, fetched.Content)
	if err != nil {
		p.logger.Warn("Metadata generation failed, using defaults", "path", path, "error", err)
		meta = &metadata.DocumentMetadata{Category: "general", Tags: []string{}}
	}

	chunks := p.chunker.ChunkDocument([]byte(fetched.Content))
	p.logger.Debug("Chunked document", "path", path, "chunks", len(chunks))
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document produced no chunks")
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := p.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embeddings: %w", err)
	}

	docID := uuid.New().String()
	doc := &storage.Document{
		ID:      docID,
		Title:   documentTitle(chunks, path),
		Content: fetched.Content,
		Metadata: storage.DocumentMetadata{
			Path:      path,
			Category:  meta.Category,
			Summary:   meta.Summary,
			Tags:      meta.Tags,
			IndexedAt: time.Now(),
		},
	}

	if err := p.storage.UpsertDocument(ctx, doc); err != nil {
		return 0, fmt.Errorf("store document: %w", err)
	}

	storageChunks := make([]*storage.Chunk, len(chunks))
	for i, chunk := range chunks {
		storageChunks[i] = &storage.Chunk{
			ID:               uuid.New().String(),
			DocumentID:       docID,
			ChunkIndex:       i,
			Heading:          chunk.Heading,
			HeadingHierarchy: chunk.HeadingHierarchy,
			Content:          chunk.Content,
			TokenCount:       chunk.TokenCount,
			Category:         meta.Category,
			Embedding:        embeddings[i],
		}
	}

	if err := p.storage.UpsertChunks(ctx, storageChunks); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	p.logger.Info("Indexed document", "path", path, "chunks", len(chunks))
	return len(chunks), nil
}

// documentTitle uses the first heading as the document title, falling back
// to the file path.
func documentTitle(chunks []markdown.Chunk, path string) string {
	for _, chunk := range chunks {
		if chunk.HeadingLevel > 0 && chunk.Heading != "" {
			return chunk.Heading
		}
	}
	return path
}
