package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Operator is a predicate operator over a whitelisted attribute. The
// vocabulary is intentionally closed: no substring or partial-match
// operator exists, because the attribute store cannot evaluate those
// efficiently. Criteria that need substring semantics stay in the
// semantic search string instead.
type Operator string

const (
	OpEq    Operator = "$eq"
	OpNe    Operator = "$ne"
	OpLt    Operator = "$lt"
	OpLte   Operator = "$lte"
	OpGt    Operator = "$gt"
	OpGte   Operator = "$gte"
	OpIn    Operator = "$in"
	OpNotIn Operator = "$nin"
)

// Condition is a single predicate. Value holds a string or float64 for
// scalar operators and a []string or []float64 for $in/$nin.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Expression is a boolean combination of conditions. Exactly one of All,
// Any, or Cond is set; All/Any members may nest further.
type Expression struct {
	All  []Expression
	Any  []Expression
	Cond *Condition
}

// Attribute whitelist for structured filtering. Fields absent here cannot
// appear in a filter; a plan referencing them is invalid and degrades to
// unfiltered semantic search.
var (
	numericFilterFields = map[string]bool{
		"price_per_unit": true,
		"case_price":     true,
		"each_price":     true,
		"each_weight":    true,
		"case_weight":    true,
	}
	stringFilterFields = map[string]bool{
		"brand":       true,
		"origin":      true,
		"color":       true,
		"texture":     true,
		"milk_type":   true,
		"sku":         true,
		"upc":         true,
		"category":    true,
		"subcategory": true,
	}

	// Denomination defaults: a plan that filters on bare "price" or
	// "weight" lands on the per-unit price and each-weight columns.
	filterFieldAliases = map[string]string{
		"price":  "price_per_unit",
		"weight": "each_weight",
	}
)

// FilterFields returns the whitelisted attribute names, sorted.
func FilterFields() []string {
	fields := make([]string, 0, len(numericFilterFields)+len(stringFilterFields))
	for f := range numericFilterFields {
		fields = append(fields, f)
	}
	for f := range stringFilterFields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// ParseFilter decodes a Pinecone-syntax filter document into an
// Expression, validating every field against the whitelist and every
// value against the field's type. Supported forms:
//
//	{"$and": [f1, f2]}            boolean AND
//	{"$or": [f1, f2]}             boolean OR
//	{"field": "value"}            equality
//	{"field": {"$gt": 5}}         operator object
//	{"f1": ..., "f2": ...}        implicit AND across keys
//
// Any malformed or non-whitelisted input returns ErrPlanInvalid.
func ParseFilter(raw json.RawMessage) (*Expression, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, WrapError(ErrPlanInvalid, "parse filter", fmt.Errorf("empty filter"))
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, WrapError(ErrPlanInvalid, "parse filter", err)
	}

	expr, err := parseFilterObject(doc)
	if err != nil {
		return nil, WrapError(ErrPlanInvalid, "parse filter", err)
	}
	return expr, nil
}

func parseFilterObject(doc map[string]json.RawMessage) (*Expression, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("empty filter object")
	}

	parts := make([]Expression, 0, len(doc))

	// Deterministic traversal keeps compiled output stable across runs.
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := doc[key]
		switch key {
		case "$and", "$or":
			var members []map[string]json.RawMessage
			if err := json.Unmarshal(raw, &members); err != nil {
				return nil, fmt.Errorf("%s must hold an array of filters: %w", key, err)
			}
			if len(members) == 0 {
				return nil, fmt.Errorf("%s must not be empty", key)
			}
			children := make([]Expression, 0, len(members))
			for _, member := range members {
				child, err := parseFilterObject(member)
				if err != nil {
					return nil, err
				}
				children = append(children, *child)
			}
			if key == "$and" {
				parts = append(parts, Expression{All: children})
			} else {
				parts = append(parts, Expression{Any: children})
			}
		default:
			conds, err := parseFieldFilter(key, raw)
			if err != nil {
				return nil, err
			}
			parts = append(parts, conds...)
		}
	}

	if len(parts) == 1 {
		return &parts[0], nil
	}
	return &Expression{All: parts}, nil
}

func parseFieldFilter(field string, raw json.RawMessage) ([]Expression, error) {
	if strings.HasPrefix(field, "$") {
		return nil, fmt.Errorf("unknown operator %q", field)
	}
	field = canonicalField(field)
	if !numericFilterFields[field] && !stringFilterFields[field] {
		return nil, fmt.Errorf("field %q is not filterable", field)
	}

	// Operator object: {"$gt": 5, ...}. Multiple operators on one field
	// combine as AND.
	var ops map[string]json.RawMessage
	if err := json.Unmarshal(raw, &ops); err == nil {
		if len(ops) == 0 {
			return nil, fmt.Errorf("field %q has an empty operator object", field)
		}
		opNames := make([]string, 0, len(ops))
		for name := range ops {
			opNames = append(opNames, name)
		}
		sort.Strings(opNames)

		conds := make([]Expression, 0, len(ops))
		for _, name := range opNames {
			cond, err := parseOperator(field, Operator(name), ops[name])
			if err != nil {
				return nil, err
			}
			conds = append(conds, Expression{Cond: cond})
		}
		return conds, nil
	}

	// Bare scalar: equality.
	value, err := parseScalar(field, raw)
	if err != nil {
		return nil, err
	}
	return []Expression{{Cond: &Condition{Field: field, Op: OpEq, Value: value}}}, nil
}

func parseOperator(field string, op Operator, raw json.RawMessage) (*Condition, error) {
	switch op {
	case OpEq, OpNe:
		value, err := parseScalar(field, raw)
		if err != nil {
			return nil, err
		}
		return &Condition{Field: field, Op: op, Value: value}, nil
	case OpLt, OpLte, OpGt, OpGte:
		if !numericFilterFields[field] {
			return nil, fmt.Errorf("operator %s requires a numeric field, got %q", op, field)
		}
		var num float64
		if err := json.Unmarshal(raw, &num); err != nil {
			return nil, fmt.Errorf("operator %s on %q requires a number: %w", op, field, err)
		}
		return &Condition{Field: field, Op: op, Value: num}, nil
	case OpIn, OpNotIn:
		value, err := parseList(field, raw)
		if err != nil {
			return nil, err
		}
		return &Condition{Field: field, Op: op, Value: value}, nil
	default:
		return nil, fmt.Errorf("unknown operator %q on field %q", op, field)
	}
}

func parseScalar(field string, raw json.RawMessage) (any, error) {
	if numericFilterFields[field] {
		var num float64
		if err := json.Unmarshal(raw, &num); err != nil {
			return nil, fmt.Errorf("field %q requires a numeric value: %w", field, err)
		}
		return num, nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return nil, fmt.Errorf("field %q requires a string value: %w", field, err)
	}
	return str, nil
}

func parseList(field string, raw json.RawMessage) (any, error) {
	if numericFilterFields[field] {
		var nums []float64
		if err := json.Unmarshal(raw, &nums); err != nil {
			return nil, fmt.Errorf("field %q requires a numeric list: %w", field, err)
		}
		if len(nums) == 0 {
			return nil, fmt.Errorf("field %q has an empty list", field)
		}
		return nums, nil
	}
	var strs []string
	if err := json.Unmarshal(raw, &strs); err != nil {
		return nil, fmt.Errorf("field %q requires a string list: %w", field, err)
	}
	if len(strs) == 0 {
		return nil, fmt.Errorf("field %q has an empty list", field)
	}
	return strs, nil
}

func canonicalField(field string) string {
	field = strings.ToLower(strings.TrimSpace(field))
	if alias, ok := filterFieldAliases[field]; ok {
		return alias
	}
	return field
}
