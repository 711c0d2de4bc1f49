package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
	"github.com/kirillkom/cheese-shop-assistant/internal/core/ports"
)

// IngestCatalogUseCase accepts a raw catalog item, snapshots it to object
// storage, and hands projection off to the worker via the queue.
type IngestCatalogUseCase struct {
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestCatalogUseCase(storage ports.ObjectStorage, queue ports.MessageQueue) *IngestCatalogUseCase {
	return &IngestCatalogUseCase{
		storage: storage,
		queue:   queue,
	}
}

func (uc *IngestCatalogUseCase) Ingest(ctx context.Context, item domain.CatalogItem) (string, error) {
	if strings.TrimSpace(item.UPC) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "ingest catalog item", errors.New("upc is required"))
	}
	if strings.TrimSpace(item.Title) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "ingest catalog item", errors.New("title is required"))
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("marshal catalog item: %w", err)
	}

	storageKey := fmt.Sprintf("%s_%s.json", item.UPC, uuid.NewString())
	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(payload)); err != nil {
		return "", fmt.Errorf("save catalog snapshot: %w", err)
	}

	if err := uc.queue.PublishItemStored(ctx, storageKey); err != nil {
		return "", fmt.Errorf("publish ingestion event: %w", err)
	}

	return storageKey, nil
}
