package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
	"github.com/kirillkom/cheese-shop-assistant/internal/core/ports"
)

const defaultTopK = 5

// RetrieveUseCase sequences planner, attribute store, and vector index:
// plan the question, reject out-of-domain ones before touching any store,
// narrow by structured filter when possible, and fall back to an
// unrestricted similarity search when the filter matches nothing.
type RetrieveUseCase struct {
	planner   ports.QueryPlanner
	embedder  ports.Embedder
	attrs     ports.AttributeStore
	vectors   ports.VectorIndex
	dimension int
	logger    *slog.Logger
}

func NewRetrieveUseCase(
	planner ports.QueryPlanner,
	embedder ports.Embedder,
	attrs ports.AttributeStore,
	vectors ports.VectorIndex,
	dimension int,
	logger *slog.Logger,
) *RetrieveUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetrieveUseCase{
		planner:   planner,
		embedder:  embedder,
		attrs:     attrs,
		vectors:   vectors,
		dimension: dimension,
		logger:    logger,
	}
}

func (uc *RetrieveUseCase) Retrieve(ctx context.Context, question string, topK int) (*domain.RetrievalResult, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	plan, err := uc.planner.Plan(ctx, question)
	if err != nil {
		// Fail closed: retrieval must never run on an unparseable plan.
		uc.logger.Warn("query plan failed, rejecting question", "error", err)
		return &domain.RetrievalResult{Rejected: true}, nil
	}
	if !plan.NeedRetrieve {
		return &domain.RetrievalResult{Rejected: true}, nil
	}

	searchText := strings.TrimSpace(plan.SearchText)
	if searchText == "" {
		searchText = question
	}

	vector, err := uc.embedder.EmbedQuery(ctx, searchText)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStoreUnavailable, "embed query", err)
	}
	if uc.dimension > 0 && len(vector) != uc.dimension {
		return nil, domain.WrapError(
			domain.ErrDimensionMismatch,
			"embed query",
			fmt.Errorf("vector has %d dimensions, index expects %d", len(vector), uc.dimension),
		)
	}

	result := &domain.RetrievalResult{}

	var upcs []string
	if filter := uc.parseFilter(plan); filter != nil {
		upcs, err = uc.attrs.SelectUPCs(ctx, filter)
		if err != nil {
			return nil, domain.WrapError(domain.ErrStoreUnavailable, "select upcs", err)
		}
		if len(upcs) == 0 {
			// The filter vocabulary is a coarse approximation of intent:
			// an empty structured match is not proof that nothing exists.
			result.FallbackUsed = true
			upcs = nil
		} else {
			result.Filtered = true
		}
	}

	docs, err := uc.vectors.Query(ctx, vector, topK, upcs)
	if err != nil {
		if domain.IsKind(err, domain.ErrDimensionMismatch) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrStoreUnavailable, "vector query", err)
	}

	result.Documents = mergeDocuments(docs)
	return result, nil
}

func (uc *RetrieveUseCase) parseFilter(plan domain.QueryPlan) *domain.Expression {
	if !plan.NeedFilter {
		return nil
	}
	expr, err := domain.ParseFilter(plan.Filter)
	if err != nil {
		uc.logger.Warn("structured filter failed validation, degrading to unfiltered search", "error", err)
		return nil
	}
	return expr
}

// mergeDocuments dedupes by UPC keeping the highest-scored hit and orders
// by descending score. The stable sort preserves index order on ties.
func mergeDocuments(docs []domain.RetrievedDocument) []domain.RetrievedDocument {
	seen := make(map[string]int, len(docs))
	merged := make([]domain.RetrievedDocument, 0, len(docs))
	for _, doc := range docs {
		if doc.UPC == "" {
			merged = append(merged, doc)
			continue
		}
		if at, ok := seen[doc.UPC]; ok {
			if doc.Score > merged[at].Score {
				merged[at] = doc
			}
			continue
		}
		seen[doc.UPC] = len(merged)
		merged = append(merged, doc)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged
}
