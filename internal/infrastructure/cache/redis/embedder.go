package redis

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/ports"
)

// KV is the cache surface the embedder needs. *Store satisfies it.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedEmbedder caches embedding vectors keyed by model and text hash.
// Cache failures degrade to the inner embedder: a broken cache slows
// requests down but never fails them.
type CachedEmbedder struct {
	inner  ports.Embedder
	kv     KV
	model  string
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedEmbedder(inner ports.Embedder, kv KV, model string, ttl time.Duration, logger *slog.Logger) *CachedEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedEmbedder{
		inner:  inner,
		kv:     kv,
		model:  model,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	missing := make([]int, 0, len(texts))

	for i, text := range texts {
		vector, err := c.lookup(ctx, text)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				c.logger.Warn("embedding cache read failed", "error", err)
			}
			missing = append(missing, i)
			continue
		}
		vectors[i] = vector
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	missingTexts := make([]string, len(missing))
	for j, i := range missing {
		missingTexts[j] = texts[i]
	}

	fresh, err := c.inner.Embed(ctx, missingTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missingTexts) {
		return nil, fmt.Errorf("embeddings/texts mismatch: %d/%d", len(fresh), len(missingTexts))
	}

	for j, i := range missing {
		vectors[i] = fresh[j]
		if err := c.store(ctx, texts[i], fresh[j]); err != nil {
			c.logger.Warn("embedding cache write failed", "error", err)
		}
	}
	return vectors, nil
}

func (c *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

func (c *CachedEmbedder) lookup(ctx context.Context, text string) ([]float32, error) {
	data, err := c.kv.Get(ctx, c.cacheKey(text))
	if err != nil {
		return nil, err
	}
	return bytesToVector(data)
}

func (c *CachedEmbedder) store(ctx context.Context, text string, vector []float32) error {
	return c.kv.SetWithTTL(ctx, c.cacheKey(text), vectorToBytes(vector), c.ttl)
}

func (c *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return "emb:" + c.model + ":" + hex.EncodeToString(sum[:])
}

func vectorToBytes(vector []float32) []byte {
	out := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("corrupt cached vector: %d bytes", len(data))
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}
