package postgres

import (
	"fmt"
	"strings"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
)

// compileFilter turns a validated filter expression into a parameterized
// WHERE clause. Field names come from the closed whitelist the parser
// enforces, so only values ever travel through placeholders.
func compileFilter(expr *domain.Expression) (string, []any, error) {
	if expr == nil {
		return "", nil, domain.WrapError(domain.ErrPlanInvalid, "compile filter", fmt.Errorf("nil expression"))
	}
	b := &clauseBuilder{}
	clause, err := b.compile(expr)
	if err != nil {
		return "", nil, domain.WrapError(domain.ErrPlanInvalid, "compile filter", err)
	}
	return clause, b.args, nil
}

type clauseBuilder struct {
	args []any
}

func (b *clauseBuilder) placeholder(value any) string {
	b.args = append(b.args, value)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *clauseBuilder) compile(expr *domain.Expression) (string, error) {
	switch {
	case expr.Cond != nil:
		return b.condition(expr.Cond)
	case len(expr.All) > 0:
		return b.join(expr.All, " AND ")
	case len(expr.Any) > 0:
		return b.join(expr.Any, " OR ")
	default:
		return "", fmt.Errorf("expression has no condition and no members")
	}
}

func (b *clauseBuilder) join(members []domain.Expression, sep string) (string, error) {
	clauses := make([]string, 0, len(members))
	for i := range members {
		clause, err := b.compile(&members[i])
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return "(" + strings.Join(clauses, sep) + ")", nil
}

func (b *clauseBuilder) condition(cond *domain.Condition) (string, error) {
	switch cond.Op {
	case domain.OpEq:
		return cond.Field + " = " + b.placeholder(cond.Value), nil
	case domain.OpNe:
		return cond.Field + " <> " + b.placeholder(cond.Value), nil
	case domain.OpLt:
		return cond.Field + " < " + b.placeholder(cond.Value), nil
	case domain.OpLte:
		return cond.Field + " <= " + b.placeholder(cond.Value), nil
	case domain.OpGt:
		return cond.Field + " > " + b.placeholder(cond.Value), nil
	case domain.OpGte:
		return cond.Field + " >= " + b.placeholder(cond.Value), nil
	case domain.OpIn:
		return b.listCondition(cond, "IN")
	case domain.OpNotIn:
		return b.listCondition(cond, "NOT IN")
	default:
		return "", fmt.Errorf("unsupported operator %q", cond.Op)
	}
}

func (b *clauseBuilder) listCondition(cond *domain.Condition, keyword string) (string, error) {
	var placeholders []string
	switch values := cond.Value.(type) {
	case []string:
		placeholders = make([]string, 0, len(values))
		for _, v := range values {
			placeholders = append(placeholders, b.placeholder(v))
		}
	case []float64:
		placeholders = make([]string, 0, len(values))
		for _, v := range values {
			placeholders = append(placeholders, b.placeholder(v))
		}
	default:
		return "", fmt.Errorf("operator %s on %q requires a list value", cond.Op, cond.Field)
	}
	if len(placeholders) == 0 {
		return "", fmt.Errorf("operator %s on %q has an empty list", cond.Op, cond.Field)
	}
	return cond.Field + " " + keyword + " (" + strings.Join(placeholders, ", ") + ")", nil
}
