package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
	"github.com/kirillkom/cheese-shop-assistant/internal/core/ports"
)

const defaultBatchSize = 100

// BulkLoadUseCase populates both stores from a catalog JSON array in
// bounded batches. Each batch commits or fails on its own: a failed batch
// is reported by index and never rolls back batches already committed.
type BulkLoadUseCase struct {
	projector ports.Projector
	embedder  ports.Embedder
	attrs     ports.AttributeStore
	vectors   ports.VectorIndex
	batchSize int
	logger    *slog.Logger
}

func NewBulkLoadUseCase(
	projector ports.Projector,
	embedder ports.Embedder,
	attrs ports.AttributeStore,
	vectors ports.VectorIndex,
	batchSize int,
	logger *slog.Logger,
) *BulkLoadUseCase {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BulkLoadUseCase{
		projector: projector,
		embedder:  embedder,
		attrs:     attrs,
		vectors:   vectors,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (uc *BulkLoadUseCase) Load(ctx context.Context, source io.Reader) (*ports.BulkLoadReport, error) {
	var items []domain.CatalogItem
	if err := json.NewDecoder(source).Decode(&items); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "decode catalog file", err)
	}

	report := &ports.BulkLoadReport{Items: len(items)}
	for start := 0; start < len(items); start += uc.batchSize {
		end := start + uc.batchSize
		if end > len(items) {
			end = len(items)
		}

		index := report.Batches
		report.Batches++

		if err := uc.loadBatch(ctx, items[start:end]); err != nil {
			uc.logger.Error("catalog batch failed", "batch", index, "error", err)
			report.FailedBatches = append(report.FailedBatches, ports.BatchFailure{
				Index: index,
				Err:   err,
			})
			continue
		}
		uc.logger.Info("catalog batch committed", "batch", index, "items", end-start)
	}
	return report, nil
}

func (uc *BulkLoadUseCase) loadBatch(ctx context.Context, items []domain.CatalogItem) error {
	rows := make([]domain.AttributeRow, 0, len(items))
	entries := make([]domain.VectorEntry, 0, len(items))
	texts := make([]string, 0, len(items))

	for _, item := range items {
		row, entry := uc.projector.Project(item)
		rows = append(rows, row)
		entries = append(entries, entry)
		texts = append(texts, entry.Text)
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(texts) {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"embed batch",
			fmt.Errorf("vectors/texts mismatch: %d/%d", len(vectors), len(texts)),
		)
	}
	for i := range entries {
		entries[i].Vector = vectors[i]
	}

	for _, row := range rows {
		if err := uc.attrs.Upsert(ctx, row); err != nil {
			return fmt.Errorf("upsert attribute row %s: %w", row.UPC, err)
		}
	}
	if err := uc.vectors.Upsert(ctx, entries); err != nil {
		return fmt.Errorf("upsert vector batch: %w", err)
	}
	return nil
}
