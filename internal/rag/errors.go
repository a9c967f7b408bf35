package rag

import (
	"errors"

	"github.com/yungbote/docqa-backend/internal/extract"
	"github.com/yungbote/docqa-backend/internal/rag/chunker"
)

// Error kinds surfaced across the service boundary. Dimension
// mismatches never appear here: they are recovered internally by
// recreating the collection (at most once per operation).
var (
	// ErrEmptyInput: no usable text to ingest.
	ErrEmptyInput = chunker.ErrEmptyInput

	// ErrUnsupportedType: the uploaded document is neither PDF nor plain text.
	ErrUnsupportedType = extract.ErrUnsupportedType

	// ErrEmbedding: the embedding capability failed. Fatal.
	ErrEmbedding = errors.New("embedding capability failed")

	// ErrGeneration: the generation capability failed. Fatal.
	ErrGeneration = errors.New("generation capability failed")

	// ErrStoreUnavailable: the vector store is unreachable. Fatal.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrIngestion: ingest failed after the single repair attempt.
	ErrIngestion = errors.New("ingestion failed")

	// ErrRetrievalExhausted: every retrieval strategy failed.
	ErrRetrievalExhausted = errors.New("all retrieval strategies failed")

	// ErrEmptyCorpus: the collection holds zero points. Expected
	// condition, not a store failure.
	ErrEmptyCorpus = errors.New("collection has no documents")

	// ErrNotInitialized: query attempted before a successful initialize.
	ErrNotInitialized = errors.New("pipeline not initialized")
)
