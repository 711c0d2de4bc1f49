package ports

import (
	"context"
	"io"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
)

// AttributeStore persists and filters the relational projection.
type AttributeStore interface {
	Upsert(ctx context.Context, row domain.AttributeRow) error
	GetByUPC(ctx context.Context, upc string) (*domain.AttributeRow, error)
	SelectUPCs(ctx context.Context, filter *domain.Expression) ([]string, error)
}

// VectorIndex performs similarity search and bulk upserts. A nil or empty
// upcs slice means an unrestricted query.
type VectorIndex interface {
	Upsert(ctx context.Context, entries []domain.VectorEntry) error
	Query(ctx context.Context, vector []float32, topK int, upcs []string) ([]domain.RetrievedDocument, error)
}

// Embedder builds vectors for payloads and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// QueryPlanner classifies a question and translates it into a structured
// filter plus a rewritten semantic search string.
type QueryPlanner interface {
	Plan(ctx context.Context, question string) (domain.QueryPlan, error)
}

// AnswerGenerator creates the final user-facing answer, or a polite
// decline for out-of-domain questions.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, docs []domain.RetrievedDocument) (string, error)
	GenerateDecline(ctx context.Context, question string) (string, error)
}

// Projector builds both store projections from a raw catalog item. The
// returned entry carries no vector yet; the caller embeds entry.Text.
type Projector interface {
	Project(item domain.CatalogItem) (domain.AttributeRow, domain.VectorEntry)
}

// ObjectStorage stores raw catalog item snapshots.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes catalog ingestion events.
type MessageQueue interface {
	PublishItemStored(ctx context.Context, storageKey string) error
	SubscribeItemStored(ctx context.Context, handler func(context.Context, string) error) error
}
