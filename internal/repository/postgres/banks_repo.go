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

type banksRepo struct{}

var bankFilterable = repository.Columns{
	"id":          "id",
	"bankCode":    "bank_code",
	"bankSwift":   "bank_swift",
	"name":        "name",
	"description": "description",
	"status":      "status",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

var bankWritable = repository.Columns{
	"bankCode":    "bank_code",
	"bankSwift":   "bank_swift",
	"name":        "name",
	"description": "description",
	"status":      "status",
}

const bankColumns = `id, bank_code, bank_swift, name, description, status, created_by, updated_by, created_at, updated_at`

func scanBank(row pgx.Row) (models.Bank, error) {
	var b models.Bank
	err := row.Scan(&b.ID, &b.BankCode, &b.BankSwift, &b.Name, &b.Description, &b.Status,
		&b.CreatedBy, &b.UpdatedBy, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *banksRepo) GetByID(ctx context.Context, q db.Querier, id int64) (models.Bank, error) {
	b, err := scanBank(q.QueryRow(ctx, `SELECT `+bankColumns+` FROM banks WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Bank{}, notFound("bank", id)
	}
	return b, err
}

func (r *banksRepo) Insert(ctx context.Context, q db.Querier, b models.Bank) (models.Bank, error) {
	err := q.QueryRow(ctx,
		`INSERT INTO banks(bank_code, bank_swift, name, description, status, created_by)
		 VALUES($1,$2,$3,$4,$5,$6)
		 RETURNING id, created_at`,
		b.BankCode, b.BankSwift, b.Name, b.Description, b.Status, b.CreatedBy,
	).Scan(&b.ID, &b.CreatedAt)
	return b, err
}

func (r *banksRepo) List(ctx context.Context, q db.Querier, page, pageSize int, filters []repository.Filter) (models.Page[models.Bank], error) {
	return listPage(ctx, q, listQuery{
		from:    "banks",
		columns: bankColumns,
		orderBy: "id",
		filter:  bankFilterable,
	}, page, pageSize, filters, func(rows pgx.Rows) (models.Bank, error) { return scanBank(rows) })
}

func (r *banksRepo) UpdateFields(ctx context.Context, q db.Querier, id int64, fields models.Fields, actor int64) error {
	set, args := buildSet(bankWritable, fields, 3)
	if set != "" {
		set += ", "
	}
	tag, err := q.Exec(ctx,
		fmt.Sprintf(`UPDATE banks SET %supdated_by=$2, updated_at=now() WHERE id=$1`, set),
		append([]any{id, actor}, args...)...,
	)
	if err != nil {
		return err
	}
	return mustAffect("bank", id, tag.RowsAffected())
}

func (r *banksRepo) UpdateStatus(ctx context.Context, q db.Querier, id int64, status models.EntityStatus, actor int64) error {
	tag, err := q.Exec(ctx,
		`UPDATE banks SET status=$2, updated_by=$3, updated_at=now() WHERE id=$1`,
		id, status, actor,
	)
	if err != nil {
		return err
	}
	return mustAffect("bank", id, tag.RowsAffected())
}

func (r *banksRepo) SoftDelete(ctx context.Context, q db.Querier, id int64, actor int64) error {
	tag, err := q.Exec(ctx,
		`UPDATE banks SET status=$2, deleted_at=now(), updated_by=$3, updated_at=now() WHERE id=$1`,
		id, models.StatusDeleted, actor,
	)
	if err != nil {
		return err
	}
	return mustAffect("bank", id, tag.RowsAffected())
}

func (r *banksRepo) Delete(ctx context.Context, q db.Querier, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM banks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return mustAffect("bank", id, tag.RowsAffected())
}
