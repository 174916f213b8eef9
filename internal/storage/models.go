package storage

import "time"

// Document is a full brand document stored alongside its chunks.
// Documents carry no embedding vector; they exist for full-content retrieval.
type Document struct {
	ID       string
	Title    string
	Content  string
	Metadata DocumentMetadata
}

// DocumentMetadata contains indexing metadata for a document.
type DocumentMetadata struct {
	Path      string    // Relative path: "guidelines/logo-usage.md"
	Category  string    // Facet dimension, e.g. "guidelines"
	Summary   string    // LLM-generated summary
	Tags      []string  // LLM-extracted brand concepts
	IndexedAt time.Time // When this version was indexed
}

// Chunk is a heading-scoped document section with an embedding vector.
// Chunks are the atomic unit of embedding and retrieval.
type Chunk struct {
	ID               string
	DocumentID       string // Links to the parent Document.ID
	ChunkIndex       int    // Position in document (0, 1, 2...)
	Heading          string
	HeadingHierarchy []string
	Content          string
	TokenCount       int
	Category         string
	Embedding        []float32
}

// Chat is an embedded conversation-history entry.
type Chat struct {
	ID        string
	Title     string
	Content   string
	CreatedAt time.Time
	Embedding []float32
}

// Asset is an embedded binary-asset record; the embedding covers its
// description text, not the binary itself.
type Asset struct {
	ID          string
	Filename    string
	Category    string
	Variant     string
	Description string
	CreatedAt   time.Time
	Embedding   []float32
}

// CollectionName is the single Qdrant collection holding every source type.
const CollectionName = "brand_knowledge"

// VectorName is the named vector carrying the content embedding.
const VectorName = "content"

// VectorDimension is the embedding size for text-embedding-3-small.
const VectorDimension = 1536
