package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
)

// Client talks to a Pinecone-compatible index over its REST API. All
// vectors in the index share one fixed dimension; the client rejects
// mismatched vectors before they reach the wire.
type Client struct {
	baseURL    string
	apiKey     string
	namespace  string
	dimension  int
	httpClient *http.Client
}

func New(baseURL, apiKey, namespace string, dimension int) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		namespace:  namespace,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type upsertVector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Upsert writes entries by ID. Writing an existing ID replaces its vector
// and metadata, which is what makes re-projection idempotent.
func (c *Client) Upsert(ctx context.Context, entries []domain.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}

	vectors := make([]upsertVector, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Vector) != c.dimension {
			return domain.WrapError(
				domain.ErrDimensionMismatch,
				"vector upsert",
				fmt.Errorf("entry %s has dimension %d, index expects %d", entry.ID, len(entry.Vector), c.dimension),
			)
		}
		metadata := make(map[string]any, len(entry.Metadata)+1)
		for k, v := range entry.Metadata {
			metadata[k] = v
		}
		metadata["text"] = entry.Text
		vectors = append(vectors, upsertVector{
			ID:       entry.ID,
			Values:   entry.Vector,
			Metadata: metadata,
		})
	}

	reqBody := map[string]any{
		"vectors":   vectors,
		"namespace": c.namespace,
	}
	var resp struct{}
	if err := c.post(ctx, "/vectors/upsert", reqBody, &resp); err != nil {
		return fmt.Errorf("vector upsert: %w", err)
	}
	return nil
}

// Query runs similarity search. A non-empty upcs slice restricts matches
// to vectors whose upc metadata is in the set; nil means unrestricted.
func (c *Client) Query(ctx context.Context, vector []float32, topK int, upcs []string) ([]domain.RetrievedDocument, error) {
	if len(vector) != c.dimension {
		return nil, domain.WrapError(
			domain.ErrDimensionMismatch,
			"vector query",
			fmt.Errorf("query vector has dimension %d, index expects %d", len(vector), c.dimension),
		)
	}

	reqBody := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
		"namespace":       c.namespace,
	}
	if len(upcs) > 0 {
		reqBody["filter"] = map[string]any{
			"upc": map[string]any{"$in": upcs},
		}
	}

	var queryResp struct {
		Matches []struct {
			ID       string         `json:"id"`
			Score    float64        `json:"score"`
			Metadata map[string]any `json:"metadata"`
		} `json:"matches"`
	}
	if err := c.post(ctx, "/query", reqBody, &queryResp); err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	out := make([]domain.RetrievedDocument, 0, len(queryResp.Matches))
	for _, m := range queryResp.Matches {
		out = append(out, domain.RetrievedDocument{
			UPC:      metadataString(m.Metadata, "upc"),
			Text:     metadataString(m.Metadata, "text"),
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody any, out any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrStoreUnavailable, "vector index request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return domain.WrapError(domain.ErrStoreUnavailable, "vector index request", err)
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func metadataString(metadata map[string]any, key string) string {
	v, ok := metadata[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
