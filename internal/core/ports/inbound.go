package ports

import (
	"context"
	"io"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
)

// CatalogIngestor is the inbound contract for accepting a raw catalog item.
type CatalogIngestor interface {
	Ingest(ctx context.Context, item domain.CatalogItem) (string, error)
}

// CatalogProcessor is the inbound contract for asynchronous projection of a
// stored catalog snapshot into both stores.
type CatalogProcessor interface {
	ProcessByKey(ctx context.Context, storageKey string) error
}

// Retriever is the inbound contract for hybrid retrieval.
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int) (*domain.RetrievalResult, error)
}

// ChatService is the inbound contract for answered questions. Answer uses
// the direct top-K; AnswerWithContext requests the wider context top-K and
// leaves narrowing to the generation step.
type ChatService interface {
	Answer(ctx context.Context, question string) (*domain.Answer, error)
	AnswerWithContext(ctx context.Context, question string) (*domain.Answer, error)
}

// CatalogReader is the inbound read model for stored attribute rows.
type CatalogReader interface {
	GetByUPC(ctx context.Context, upc string) (*domain.AttributeRow, error)
}

// BulkLoader is the inbound contract for batch catalog population.
type BulkLoader interface {
	Load(ctx context.Context, source io.Reader) (*BulkLoadReport, error)
}

// BulkLoadReport summarizes a bulk load. Failures are reported per batch
// index; committed batches are unaffected by later failures.
type BulkLoadReport struct {
	Items         int
	Batches       int
	FailedBatches []BatchFailure
}

// BatchFailure records one failed batch by its zero-based index.
type BatchFailure struct {
	Index int
	Err   error
}
