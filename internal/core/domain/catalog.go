package domain

// CatalogItem is the raw record produced by the catalog source. It is
// immutable from the retrieval engine's point of view: re-ingestion
// replaces the projections derived from it, never patches them in place.
type CatalogItem struct {
	UPC            string   `json:"upc"`
	SKU            string   `json:"sku"`
	Title          string   `json:"title"`
	Brand          string   `json:"brand"`
	Description    string   `json:"description"`
	URL            string   `json:"url"`
	Categories     []string `json:"categories"`
	PricePerUnit   float64  `json:"price_per_unit"`
	CasePrice      float64  `json:"case_price"`
	EachPrice      float64  `json:"each_price"`
	CaseWeight     float64  `json:"case_weight"`
	EachWeight     float64  `json:"each_weight"`
	CasePackSize   string   `json:"case_pack_size"`
	EachPackSize   string   `json:"each_pack_size"`
	CaseDimensions string   `json:"case_dimensions"`
	EachDimensions string   `json:"each_dimensions"`
	ImageURLs      []string `json:"image_urls"`
	RelatedItems   []string `json:"related_items"`
}

// DerivedAttributes are computed from the item's text fields at projection
// time. Every field has a documented default, so retrieval degrades instead
// of failing when the source text carries no signal.
type DerivedAttributes struct {
	Texture       string
	Color         string
	FlavorProfile string
	MilkType      string
	Origin        string
	UseCases      []string
	Keywords      []string
	Pairings      string
	Melting       string
	Storage       string
}

// AttributeRow is the relational projection of a CatalogItem plus its
// derived attributes, one row per UPC. List fields are flattened to JSON
// strings; numeric columns default to zero, never NULL.
type AttributeRow struct {
	UPC           string
	SKU           string
	Title         string
	Description   string
	Brand         string
	Origin        string
	Color         string
	Texture       string
	PricePerUnit  float64
	CasePrice     float64
	EachPrice     float64
	EachWeight    float64
	CaseWeight    float64
	MilkType      string
	FlavorProfile string
	Category      string
	Subcategory   string
	AllCategories string
	ImageURLs     string
	URL           string
	RelatedItems  string
	UseCases      string
	Keywords      string
	VectorID      string
}

// VectorEntry is the vector index projection of a CatalogItem: the
// conversational payload, its embedding, and a metadata bag carrying the
// same scalar attributes as the relational row plus the UPC.
type VectorEntry struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]any
}

// RetrievedDocument is one ranked hit from the vector index.
type RetrievedDocument struct {
	UPC      string         `json:"upc"`
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// RetrievalResult is the orchestrator's output. Rejected means the question
// was out of domain and no store was queried. FallbackUsed means the
// structured filter matched nothing and the unrestricted vector query was
// substituted, so callers can present "related items" instead of failure.
type RetrievalResult struct {
	Documents    []RetrievedDocument `json:"documents"`
	Rejected     bool                `json:"rejected"`
	Filtered     bool                `json:"filtered"`
	FallbackUsed bool                `json:"fallback_used"`
}

// Answer is the generated response with its supporting documents.
type Answer struct {
	Text         string              `json:"text"`
	Sources      []RetrievedDocument `json:"sources"`
	FallbackUsed bool                `json:"fallback_used"`
}
