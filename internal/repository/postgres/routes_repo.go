package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/models"
	"github.com/baharkarakas/approval-backend/internal/repository"
)

type routesRepo struct{}

var routeFilterable = repository.Columns{
	"id":          "id",
	"name":        "name",
	"path":        "path",
	"method":      "method",
	"isProtected": "is_protected",
	"internal":    "internal",
	"menuId":      "menu_id",
	"routeAction": "action_type",
	"status":      "status",
	"createdAt":   "created_at",
}

var routeWritable = repository.Columns{
	"name":        "name",
	"path":        "path",
	"method":      "method",
	"isProtected": "is_protected",
	"internal":    "internal",
	"description": "description",
	"menuId":      "menu_id",
	"routeAction": "action_type",
	"status":      "status",
}

const routeColumns = `id, name, path, method, is_protected, internal, description, menu_id, action_type, status, created_by, updated_by, created_at, updated_at`

func scanRoute(row pgx.Row) (models.Route, error) {
	var r models.Route
	err := row.Scan(&r.ID, &r.Name, &r.Path, &r.Method, &r.IsProtected, &r.Internal, &r.Description,
		&r.MenuID, &r.ActionType, &r.Status, &r.CreatedBy, &r.UpdatedBy, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r *routesRepo) GetByID(ctx context.Context, q db.Querier, id int64) (models.Route, error) {
	rt, err := scanRoute(q.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Route{}, notFound("route", id)
	}
	return rt, err
}

func (r *routesRepo) Insert(ctx context.Context, q db.Querier, rt models.Route) (models.Route, error) {
	err := q.QueryRow(ctx,
		`INSERT INTO routes(name, path, method, is_protected, internal, description, menu_id, action_type, status, created_by)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 RETURNING id, created_at`,
		rt.Name, rt.Path, rt.Method, rt.IsProtected, rt.Internal, rt.Description, rt.MenuID, rt.ActionType, rt.Status, rt.CreatedBy,
	).Scan(&rt.ID, &rt.CreatedAt)
	return rt, err
}

func (r *routesRepo) List(ctx context.Context, q db.Querier, page, pageSize int, filters []repository.Filter) (models.Page[models.Route], error) {
	return listPage(ctx, q, listQuery{
		from:    "routes",
		columns: routeColumns,
		orderBy: "id",
		filter:  routeFilterable,
	}, page, pageSize, filters, func(rows pgx.Rows) (models.Route, error) { return scanRoute(rows) })
}

func (r *routesRepo) ListActive(ctx context.Context, q db.Querier) ([]models.Route, error) {
	rows, err := q.Query(ctx, `SELECT `+routeColumns+` FROM routes WHERE status=$1 ORDER BY id`, models.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Route
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *routesRepo) UpdateFields(ctx context.Context, q db.Querier, id int64, fields models.Fields, actor int64) error {
	set, args := buildSet(routeWritable, fields, 3)
	if set != "" {
		set += ", "
	}
	tag, err := q.Exec(ctx,
		fmt.Sprintf(`UPDATE routes SET %supdated_by=$2, updated_at=now() WHERE id=$1`, set),
		append([]any{id, actor}, args...)...,
	)
	if err != nil {
		return err
	}
	return mustAffect("route", id, tag.RowsAffected())
}

func (r *routesRepo) UpdateStatus(ctx context.Context, q db.Querier, id int64, status models.EntityStatus, actor int64) error {
	tag, err := q.Exec(ctx,
		`UPDATE routes SET status=$2, updated_by=$3, updated_at=now() WHERE id=$1`,
		id, status, actor,
	)
	if err != nil {
		return err
	}
	return mustAffect("route", id, tag.RowsAffected())
}

func (r *routesRepo) Delete(ctx context.Context, q db.Querier, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM routes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return mustAffect("route", id, tag.RowsAffected())
}
