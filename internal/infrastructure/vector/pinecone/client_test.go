package pinecone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
)

func TestClientUpsert(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vectors/upsert" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Api-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", "catalog", 3)
	err := client.Upsert(context.Background(), []domain.VectorEntry{
		{
			ID:       "item-123456789012",
			Vector:   []float32{0.1, 0.2, 0.3},
			Text:     "This is Aged Cheddar.",
			Metadata: map[string]any{"upc": "123456789012"},
		},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if captured["namespace"] != "catalog" {
		t.Errorf("namespace = %v", captured["namespace"])
	}
	vectors, ok := captured["vectors"].([]any)
	if !ok || len(vectors) != 1 {
		t.Fatalf("vectors = %v", captured["vectors"])
	}
	first := vectors[0].(map[string]any)
	if first["id"] != "item-123456789012" {
		t.Errorf("id = %v", first["id"])
	}
	metadata := first["metadata"].(map[string]any)
	if metadata["text"] != "This is Aged Cheddar." {
		t.Errorf("text missing from metadata: %v", metadata)
	}
	if metadata["upc"] != "123456789012" {
		t.Errorf("upc missing from metadata: %v", metadata)
	}
}

func TestClientUpsertDimensionMismatch(t *testing.T) {
	client := New("http://unused", "test-key", "catalog", 3)
	err := client.Upsert(context.Background(), []domain.VectorEntry{
		{ID: "item-1", Vector: []float32{0.1, 0.2}},
	})
	if !domain.IsKind(err, domain.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestClientQueryRestricted(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		resp := map[string]any{
			"matches": []map[string]any{
				{
					"id":    "item-123456789012",
					"score": 0.91,
					"metadata": map[string]any{
						"upc":  "123456789012",
						"text": "This is Aged Cheddar.",
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", "catalog", 3)
	docs, err := client.Query(context.Background(), []float32{0.1, 0.2, 0.3}, 5, []string{"123456789012"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if captured["topK"] != float64(5) {
		t.Errorf("topK = %v", captured["topK"])
	}
	filter, ok := captured["filter"].(map[string]any)
	if !ok {
		t.Fatalf("filter missing: %v", captured)
	}
	upcFilter := filter["upc"].(map[string]any)
	in := upcFilter["$in"].([]any)
	if len(in) != 1 || in[0] != "123456789012" {
		t.Errorf("upc restriction = %v", in)
	}

	if len(docs) != 1 {
		t.Fatalf("docs = %v", docs)
	}
	if docs[0].UPC != "123456789012" || docs[0].Score != 0.91 || docs[0].Text != "This is Aged Cheddar." {
		t.Errorf("unexpected doc: %+v", docs[0])
	}
}

func TestClientQueryUnrestricted(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"matches": []}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", "catalog", 3)
	docs, err := client.Query(context.Background(), []float32{0.1, 0.2, 0.3}, 5, nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if _, hasFilter := captured["filter"]; hasFilter {
		t.Errorf("unrestricted query must not carry a filter: %v", captured)
	}
	if len(docs) != 0 {
		t.Errorf("docs = %v", docs)
	}
}

func TestClientQueryDimensionMismatch(t *testing.T) {
	client := New("http://unused", "test-key", "catalog", 3)
	_, err := client.Query(context.Background(), []float32{0.1}, 5, nil)
	if !domain.IsKind(err, domain.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestClientServerErrorIsStoreUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", "catalog", 3)
	_, err := client.Query(context.Background(), []float32{0.1, 0.2, 0.3}, 5, nil)
	if !domain.IsKind(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}
