package domain

import (
	"encoding/json"
	"testing"
)

func parse(t *testing.T, filter string) *Expression {
	t.Helper()
	expr, err := ParseFilter(json.RawMessage(filter))
	if err != nil {
		t.Fatalf("ParseFilter(%s) error = %v", filter, err)
	}
	return expr
}

func TestParseFilterBareEquality(t *testing.T) {
	expr := parse(t, `{"origin": "Italy"}`)
	if expr.Cond == nil {
		t.Fatalf("expected single condition, got %+v", expr)
	}
	if expr.Cond.Field != "origin" || expr.Cond.Op != OpEq || expr.Cond.Value != "Italy" {
		t.Errorf("cond = %+v", expr.Cond)
	}
}

func TestParseFilterOperatorObject(t *testing.T) {
	expr := parse(t, `{"price_per_unit": {"$gte": 5, "$lt": 20}}`)
	if len(expr.All) != 2 {
		t.Fatalf("expected 2 conditions, got %+v", expr)
	}
	// Operators traverse in sorted order: $gte before $lt.
	if expr.All[0].Cond.Op != OpGte || expr.All[1].Cond.Op != OpLt {
		t.Errorf("ops = %v, %v", expr.All[0].Cond.Op, expr.All[1].Cond.Op)
	}
}

func TestParseFilterBooleanCombinators(t *testing.T) {
	expr := parse(t, `{"$or": [{"origin": "Italy"}, {"origin": "France"}]}`)
	if len(expr.Any) != 2 {
		t.Fatalf("expected 2 disjuncts, got %+v", expr)
	}

	expr = parse(t, `{"$and": [{"texture": "soft"}, {"each_weight": {"$lte": 2}}]}`)
	if len(expr.All) != 2 {
		t.Fatalf("expected 2 conjuncts, got %+v", expr)
	}
}

func TestParseFilterImplicitAndAcrossKeys(t *testing.T) {
	expr := parse(t, `{"origin": "France", "texture": "soft"}`)
	if len(expr.All) != 2 {
		t.Fatalf("expected implicit AND, got %+v", expr)
	}
}

func TestParseFilterListOperators(t *testing.T) {
	expr := parse(t, `{"milk_type": {"$in": ["goat", "sheep"]}}`)
	values, ok := expr.Cond.Value.([]string)
	if !ok || len(values) != 2 {
		t.Fatalf("cond = %+v", expr.Cond)
	}

	expr = parse(t, `{"price_per_unit": {"$nin": [10, 20]}}`)
	nums, ok := expr.Cond.Value.([]float64)
	if !ok || len(nums) != 2 {
		t.Fatalf("cond = %+v", expr.Cond)
	}
}

func TestParseFilterPriceAliasDefaultsToPerUnit(t *testing.T) {
	expr := parse(t, `{"price": {"$lt": 10}}`)
	if expr.Cond.Field != "price_per_unit" {
		t.Errorf("field = %q", expr.Cond.Field)
	}

	expr = parse(t, `{"weight": 2}`)
	if expr.Cond.Field != "each_weight" {
		t.Errorf("field = %q", expr.Cond.Field)
	}
}

func TestParseFilterRejectsUnknownField(t *testing.T) {
	_, err := ParseFilter(json.RawMessage(`{"secret_column": "x"}`))
	if !IsKind(err, ErrPlanInvalid) {
		t.Errorf("expected ErrPlanInvalid, got %v", err)
	}
}

func TestParseFilterRejectsComparisonOnStringField(t *testing.T) {
	_, err := ParseFilter(json.RawMessage(`{"origin": {"$lt": 5}}`))
	if !IsKind(err, ErrPlanInvalid) {
		t.Errorf("expected ErrPlanInvalid, got %v", err)
	}
}

func TestParseFilterRejectsTypeMismatches(t *testing.T) {
	cases := []string{
		`{"price_per_unit": "expensive"}`,
		`{"origin": 42}`,
		`{"milk_type": {"$in": []}}`,
		`{"brand": {"$unknown": "x"}}`,
		`{"$and": []}`,
		`{}`,
		`null`,
		`"just a string"`,
	}
	for _, filter := range cases {
		if _, err := ParseFilter(json.RawMessage(filter)); !IsKind(err, ErrPlanInvalid) {
			t.Errorf("ParseFilter(%s): expected ErrPlanInvalid, got %v", filter, err)
		}
	}
}

func TestParseFilterNestedBoolean(t *testing.T) {
	expr := parse(t, `{"$and": [{"$or": [{"origin": "Italy"}, {"origin": "Spain"}]}, {"each_weight": {"$lte": 2}}]}`)
	if len(expr.All) != 2 {
		t.Fatalf("expected 2 conjuncts, got %+v", expr)
	}
	if len(expr.All[0].Any) != 2 {
		t.Fatalf("expected nested OR, got %+v", expr.All[0])
	}
}

func TestFilterFieldsAreSorted(t *testing.T) {
	fields := FilterFields()
	if len(fields) == 0 {
		t.Fatal("no filterable fields")
	}
	for i := 1; i < len(fields); i++ {
		if fields[i-1] >= fields[i] {
			t.Fatalf("fields not sorted: %v", fields)
		}
	}
}
