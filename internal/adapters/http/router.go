package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
	"github.com/kirillkom/cheese-shop-assistant/internal/core/ports"
	"github.com/kirillkom/cheese-shop-assistant/internal/observability/metrics"
)

type Router struct {
	ingestor  ports.CatalogIngestor
	retriever ports.Retriever
	chat      ports.ChatService
	catalog   ports.CatalogReader

	service string
	metrics *metrics.HTTPServerMetrics
}

func NewRouter(
	ingestor ports.CatalogIngestor,
	retriever ports.Retriever,
	chat ports.ChatService,
	catalog ports.CatalogReader,
	service string,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		ingestor:  ingestor,
		retriever: retriever,
		chat:      chat,
		catalog:   catalog,
		service:   service,
		metrics:   m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/catalog/items", rt.ingestItem)
	mux.HandleFunc("/v1/catalog/items/", rt.getItemByUPC)
	mux.HandleFunc("/v1/retrieve", rt.retrieve)
	mux.HandleFunc("/v1/chat/query", rt.chatQuery)

	var handler http.Handler = mux
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) ingestItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var item domain.CatalogItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	storageKey, err := rt.ingestor.Ingest(r.Context(), item)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"upc":         item.UPC,
		"storage_key": storageKey,
	})
}

func (rt *Router) getItemByUPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	upc := strings.TrimPrefix(r.URL.Path, "/v1/catalog/items/")
	if upc == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "upc is required"})
		return
	}

	row, err := rt.catalog.GetByUPC(r.Context(), upc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (rt *Router) retrieve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
		TopK     int    `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	result, err := rt.retriever.Retrieve(r.Context(), req.Question, req.TopK)
	if err != nil {
		rt.recordRetrieval("retrieve", "error", 0, time.Since(start))
		writeError(w, err)
		return
	}
	rt.recordRetrieval("retrieve", retrievalOutcome(result), len(result.Documents), time.Since(start))

	writeJSON(w, http.StatusOK, map[string]any{
		"documents":     result.Documents,
		"rejected":      result.Rejected,
		"filtered":      result.Filtered,
		"fallback_used": result.FallbackUsed,
	})
}

func (rt *Router) chatQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question    string `json:"question"`
		WideContext bool   `json:"wide_context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	var (
		answer *domain.Answer
		err    error
	)
	if req.WideContext {
		answer, err = rt.chat.AnswerWithContext(r.Context(), req.Question)
	} else {
		answer, err = rt.chat.Answer(r.Context(), req.Question)
	}
	if err != nil {
		rt.recordRetrieval("chat", "error", 0, time.Since(start))
		writeError(w, err)
		return
	}

	outcome := "filtered"
	if answer.FallbackUsed {
		outcome = "fallback"
	}
	if len(answer.Sources) == 0 {
		outcome = "rejected"
	}
	rt.recordRetrieval("chat", outcome, len(answer.Sources), time.Since(start))

	writeJSON(w, http.StatusOK, map[string]any{
		"answer":        answer.Text,
		"sources":       answer.Sources,
		"fallback_used": answer.FallbackUsed,
	})
}

func (rt *Router) recordRetrieval(endpoint, outcome string, documents int, duration time.Duration) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordRetrieval(rt.service, endpoint, outcome, documents, duration)
}

func retrievalOutcome(result *domain.RetrievalResult) string {
	switch {
	case result.Rejected:
		return "rejected"
	case result.FallbackUsed:
		return "fallback"
	case result.Filtered:
		return "filtered"
	default:
		return "unfiltered"
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
