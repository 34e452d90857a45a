package domain

import "errors"

var (
	// ErrIndexUnavailable signals that the semantic index backing store is
	// unreachable or not built. Fatal to the request.
	ErrIndexUnavailable = errors.New("semantic index unavailable")
	// ErrCatalogEmpty signals an uninitialized catalog. Fatal to the request.
	ErrCatalogEmpty = errors.New("assessment catalog is empty")
	// ErrQueryTooShort signals an input rejected at the boundary.
	ErrQueryTooShort = errors.New("query too short")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRerankUnavailable signals a rerank provider failure. Never surfaced
	// to callers: the pipeline falls back to the pre-rerank order.
	ErrRerankUnavailable = errors.New("rerank provider unavailable")
)
