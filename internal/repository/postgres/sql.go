package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/approval-backend/internal/apperr"
	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/models"
	"github.com/baharkarakas/approval-backend/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// buildSet renders "col = $n" pairs for the writable fields, numbering
// placeholders from start. Keys outside cols are dropped. Columns are
// sorted so the statement text is stable.
func buildSet(cols repository.Columns, fields models.Fields, start int) (string, []any) {
	type pair struct {
		col string
		val any
	}
	var pairs []pair
	for k, v := range fields {
		if col, ok := cols.Lookup(k); ok {
			pairs = append(pairs, pair{col, v})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].col < pairs[j].col })

	parts := make([]string, 0, len(pairs))
	args := make([]any, 0, len(pairs))
	for i, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s = $%d", p.col, start+i))
		args = append(args, p.val)
	}
	return strings.Join(parts, ", "), args
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// listQuery describes one filtered, paginated listing.
type listQuery struct {
	from    string
	columns string
	orderBy string
	filter  repository.Columns
}

func listPage[T any](ctx context.Context, q db.Querier, lq listQuery, page, pageSize int, filters []repository.Filter, scan func(pgx.Rows) (T, error)) (models.Page[T], error) {
	page, pageSize = normalizePage(page, pageSize)
	where, args, err := repository.BuildWhere(lq.filter, filters)
	if err != nil {
		return models.Page[T]{}, err
	}

	var total int
	if err := q.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s %s`, lq.from, where), args...).Scan(&total); err != nil {
		return models.Page[T]{}, err
	}

	n := len(args)
	sql := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		lq.columns, lq.from, where, lq.orderBy, n+1, n+2)
	rows, err := q.Query(ctx, sql, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return models.Page[T]{}, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return models.Page[T]{}, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return models.Page[T]{}, err
	}
	return models.NewPage(out, total, page, pageSize), nil
}

func notFound(resource string, id any) error {
	return &apperr.NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}

// mustAffect turns a statement that touched no row into a NotFoundError.
func mustAffect(resource string, id any, affected int64) error {
	if affected == 0 {
		return notFound(resource, id)
	}
	return nil
}
