package repository

import (
	"fmt"
	"strings"

	"github.com/baharkarakas/approval-backend/internal/apperr"
)

const (
	OpILike   = "ilike"
	OpEq      = "="
	OpGt      = ">"
	OpLt      = "<"
	OpGte     = ">="
	OpLte     = "<="
	OpBetween = "between"
)

// Filter is one field/operator/value condition; a listing ANDs them.
type Filter struct {
	Field    string `json:"field" validate:"required"`
	Operator string `json:"operator" validate:"omitempty,oneof=ilike = > < >= <= between"`
	Value    any    `json:"value"`
}

// Columns maps the camelCase names callers use onto SQL columns. Only
// listed fields can be filtered on or written.
type Columns map[string]string

func (c Columns) Lookup(field string) (string, bool) {
	col, ok := c[field]
	return col, ok
}

// BuildWhere renders filters as a WHERE clause with $n placeholders
// starting at $1. Filters with an empty value are skipped.
func BuildWhere(cols Columns, filters []Filter) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, f := range filters {
		if isEmptyValue(f.Value) {
			continue
		}
		col, ok := cols.Lookup(f.Field)
		if !ok {
			return "", nil, &apperr.InvalidFilterError{Field: f.Field, Operator: f.Operator, Msg: "unknown field"}
		}
		op := strings.ToLower(strings.TrimSpace(f.Operator))
		if op == "" {
			op = OpILike
		}

		switch op {
		case OpILike:
			conds = append(conds, fmt.Sprintf("%s::text ILIKE %s", col, next(fmt.Sprintf("%%%v%%", f.Value))))
		case OpEq, OpGt, OpLt, OpGte, OpLte:
			conds = append(conds, fmt.Sprintf("%s %s %s", col, op, next(f.Value)))
		case OpBetween:
			bounds, ok := f.Value.([]any)
			if !ok || len(bounds) != 2 {
				return "", nil, &apperr.InvalidFilterError{Field: f.Field, Operator: op, Msg: "between needs exactly two values"}
			}
			conds = append(conds, fmt.Sprintf("%s BETWEEN %s AND %s", col, next(bounds[0]), next(bounds[1])))
		default:
			return "", nil, &apperr.InvalidFilterError{Field: f.Field, Operator: op, Msg: "unsupported operator"}
		}
	}

	if len(conds) == 0 {
		return "", args, nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args, nil
}

func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}
