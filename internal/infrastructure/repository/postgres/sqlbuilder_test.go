package postgres

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
)

func mustParse(t *testing.T, filter string) *domain.Expression {
	t.Helper()
	expr, err := domain.ParseFilter(json.RawMessage(filter))
	if err != nil {
		t.Fatalf("parse filter %s: %v", filter, err)
	}
	return expr
}

func TestCompileFilterEquality(t *testing.T) {
	clause, args, err := compileFilter(mustParse(t, `{"origin": "Italy"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "origin = $1" {
		t.Errorf("clause = %q", clause)
	}
	if !reflect.DeepEqual(args, []any{"Italy"}) {
		t.Errorf("args = %v", args)
	}
}

func TestCompileFilterRange(t *testing.T) {
	clause, args, err := compileFilter(mustParse(t, `{"price_per_unit": {"$gte": 5, "$lt": 20}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "(price_per_unit >= $1 AND price_per_unit < $2)" {
		t.Errorf("clause = %q", clause)
	}
	if !reflect.DeepEqual(args, []any{float64(5), float64(20)}) {
		t.Errorf("args = %v", args)
	}
}

func TestCompileFilterOr(t *testing.T) {
	clause, args, err := compileFilter(mustParse(t, `{"$or": [{"origin": "Italy"}, {"origin": "France"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "(origin = $1 OR origin = $2)" {
		t.Errorf("clause = %q", clause)
	}
	if !reflect.DeepEqual(args, []any{"Italy", "France"}) {
		t.Errorf("args = %v", args)
	}
}

func TestCompileFilterInList(t *testing.T) {
	clause, args, err := compileFilter(mustParse(t, `{"milk_type": {"$in": ["goat", "sheep"]}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "milk_type IN ($1, $2)" {
		t.Errorf("clause = %q", clause)
	}
	if !reflect.DeepEqual(args, []any{"goat", "sheep"}) {
		t.Errorf("args = %v", args)
	}
}

func TestCompileFilterImplicitAnd(t *testing.T) {
	clause, args, err := compileFilter(mustParse(t, `{"origin": "France", "texture": "soft"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Keys traverse in sorted order.
	if clause != "(origin = $1 AND texture = $2)" {
		t.Errorf("clause = %q", clause)
	}
	if !reflect.DeepEqual(args, []any{"France", "soft"}) {
		t.Errorf("args = %v", args)
	}
}

func TestCompileFilterPriceAlias(t *testing.T) {
	clause, _, err := compileFilter(mustParse(t, `{"price": {"$lt": 10}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "price_per_unit < $1" {
		t.Errorf("alias not applied, clause = %q", clause)
	}
}

func TestCompileFilterNestedBoolean(t *testing.T) {
	filter := `{"$and": [{"$or": [{"origin": "Italy"}, {"origin": "Spain"}]}, {"each_weight": {"$lte": 2}}]}`
	clause, args, err := compileFilter(mustParse(t, filter))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "((origin = $1 OR origin = $2) AND each_weight <= $3)" {
		t.Errorf("clause = %q", clause)
	}
	if len(args) != 3 {
		t.Errorf("args = %v", args)
	}
}

func TestCompileFilterNilExpression(t *testing.T) {
	_, _, err := compileFilter(nil)
	if !domain.IsKind(err, domain.ErrPlanInvalid) {
		t.Errorf("expected ErrPlanInvalid, got %v", err)
	}
}
