package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
	"github.com/kirillkom/cheese-shop-assistant/internal/core/ports"
)

// ProjectCatalogItemUseCase is the worker-side pipeline: load the raw
// snapshot, derive both store projections, embed the conversational
// payload, and upsert the attribute row and the vector entry.
type ProjectCatalogItemUseCase struct {
	storage   ports.ObjectStorage
	projector ports.Projector
	embedder  ports.Embedder
	attrs     ports.AttributeStore
	vectors   ports.VectorIndex
}

func NewProjectCatalogItemUseCase(
	storage ports.ObjectStorage,
	projector ports.Projector,
	embedder ports.Embedder,
	attrs ports.AttributeStore,
	vectors ports.VectorIndex,
) *ProjectCatalogItemUseCase {
	return &ProjectCatalogItemUseCase{
		storage:   storage,
		projector: projector,
		embedder:  embedder,
		attrs:     attrs,
		vectors:   vectors,
	}
}

func (uc *ProjectCatalogItemUseCase) ProcessByKey(ctx context.Context, storageKey string) error {
	item, err := uc.loadItem(ctx, storageKey)
	if err != nil {
		return err
	}

	row, entry := uc.projector.Project(item)

	vectors, err := uc.embedder.Embed(ctx, []string{entry.Text})
	if err != nil {
		return fmt.Errorf("embed payload: %w", err)
	}
	if len(vectors) != 1 {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"embed payload",
			fmt.Errorf("expected 1 vector, got %d", len(vectors)),
		)
	}
	entry.Vector = vectors[0]

	if err := uc.attrs.Upsert(ctx, row); err != nil {
		return fmt.Errorf("upsert attribute row: %w", err)
	}
	if err := uc.vectors.Upsert(ctx, []domain.VectorEntry{entry}); err != nil {
		return fmt.Errorf("upsert vector entry: %w", err)
	}
	return nil
}

func (uc *ProjectCatalogItemUseCase) loadItem(ctx context.Context, storageKey string) (domain.CatalogItem, error) {
	reader, err := uc.storage.Open(ctx, storageKey)
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("open catalog snapshot: %w", err)
	}
	defer reader.Close()

	var item domain.CatalogItem
	if err := json.NewDecoder(reader).Decode(&item); err != nil {
		return domain.CatalogItem{}, domain.WrapError(domain.ErrInvalidInput, "decode catalog snapshot", err)
	}
	return item, nil
}
