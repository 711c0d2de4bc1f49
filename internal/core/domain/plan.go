package domain

import "encoding/json"

// QueryPlan is the planner's per-request output. Never persisted.
// Filter carries the raw structured filter exactly as the planner emitted
// it; the orchestrator parses and validates it, degrading to an unfiltered
// search when it fails validation.
type QueryPlan struct {
	NeedRetrieve bool            `json:"need_retrieve"`
	NeedFilter   bool            `json:"need_filter"`
	Filter       json.RawMessage `json:"filter"`
	SearchText   string          `json:"search_text"`
}
