package storage

import "errors"

var (
	ErrUnreachable       = errors.New("qdrant server unreachable")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrChunkNotFound     = errors.New("chunk not found")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
