package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/models"
	"github.com/baharkarakas/approval-backend/internal/repository"
)

type usersRepo struct{}

var userFilterable = repository.Columns{
	"id":          "user_id",
	"username":    "username",
	"status":      "status",
	"firstName":   "first_name",
	"lastName":    "last_name",
	"email":       "email",
	"phoneNumber": "phone_number",
	"branchId":    "branch_id",
	"roleId":      "role_id",
	"createdAt":   "created_at",
}

var userWritable = repository.Columns{
	"username": "username",
	"password": "password",
	"status":   "status",
}

var profileWritable = repository.Columns{
	"firstName":   "first_name",
	"lastName":    "last_name",
	"email":       "email",
	"phoneNumber": "phone_number",
	"avatarUrl":   "avatar_url",
}

const userDetailColumns = `user_id, username, password, status, created_by, updated_by, created_at, updated_at,
	first_name, last_name, email, phone_number, avatar_url, branch_id, role_id`

func scanUserDetails(row pgx.Row) (models.UserDetails, error) {
	var u models.UserDetails
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Status, &u.CreatedBy, &u.UpdatedBy, &u.CreatedAt, &u.UpdatedAt,
		&u.Profile.FirstName, &u.Profile.LastName, &u.Profile.Email, &u.Profile.PhoneNumber, &u.Profile.AvatarURL,
		&u.BranchID, &u.RoleID)
	return u, err
}

func (r *usersRepo) GetByID(ctx context.Context, q db.Querier, id int64) (models.UserDetails, error) {
	u, err := scanUserDetails(q.QueryRow(ctx, `SELECT `+userDetailColumns+` FROM vw_user_details WHERE user_id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.UserDetails{}, notFound("user", id)
	}
	return u, err
}

func (r *usersRepo) List(ctx context.Context, q db.Querier, page, pageSize int, filters []repository.Filter) (models.Page[models.UserDetails], error) {
	return listPage(ctx, q, listQuery{
		from:    "vw_user_details",
		columns: userDetailColumns,
		orderBy: "user_id",
		filter:  userFilterable,
	}, page, pageSize, filters, func(rows pgx.Rows) (models.UserDetails, error) { return scanUserDetails(rows) })
}

func (r *usersRepo) InsertUser(ctx context.Context, q db.Querier, u models.User) (models.User, error) {
	err := q.QueryRow(ctx,
		`INSERT INTO users(username, password, status, created_by)
		 VALUES($1,$2,$3,$4)
		 RETURNING id, created_at`,
		u.Username, u.PasswordHash, u.Status, u.CreatedBy,
	).Scan(&u.ID, &u.CreatedAt)
	return u, err
}

func (r *usersRepo) InsertProfile(ctx context.Context, q db.Querier, userID int64, p models.UserProfile) error {
	_, err := q.Exec(ctx,
		`INSERT INTO user_profile(user_id, first_name, last_name, email, phone_number, avatar_url)
		 VALUES($1,$2,$3,$4,$5,$6)`,
		userID, p.FirstName, p.LastName, p.Email, p.PhoneNumber, p.AvatarURL,
	)
	return err
}

// UpdateProfile upserts so a user created without a profile row can still
// receive one through an approved update.
func (r *usersRepo) UpdateProfile(ctx context.Context, q db.Querier, userID int64, fields models.Fields) error {
	byCol := make(map[string]any, len(fields))
	cols := make([]string, 0, len(fields))
	for k, v := range fields {
		if col, ok := profileWritable.Lookup(k); ok {
			byCol[col] = v
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		return nil
	}
	sort.Strings(cols)

	args := []any{userID}
	placeholders := []string{"$1"}
	updates := make([]string, 0, len(cols))
	for _, c := range cols {
		args = append(args, byCol[c])
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		updates = append(updates, fmt.Sprintf("%s=EXCLUDED.%s", c, c))
	}
	sql := fmt.Sprintf(`INSERT INTO user_profile(user_id, %s) VALUES(%s)
		ON CONFLICT (user_id) DO UPDATE SET %s`,
		strings.Join(cols, ", "), strings.Join(placeholders, ","), strings.Join(updates, ", "))
	_, err := q.Exec(ctx, sql, args...)
	return err
}

func (r *usersRepo) ReplaceBranch(ctx context.Context, q db.Querier, userID int64, branchID *int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM user_branch WHERE user_id=$1`, userID); err != nil {
		return err
	}
	if branchID == nil {
		return nil
	}
	_, err := q.Exec(ctx, `INSERT INTO user_branch(user_id, branch_id) VALUES($1,$2)`, userID, *branchID)
	return err
}

func (r *usersRepo) ReplaceRole(ctx context.Context, q db.Querier, userID int64, roleID *int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM user_roles WHERE user_id=$1`, userID); err != nil {
		return err
	}
	if roleID == nil {
		return nil
	}
	_, err := q.Exec(ctx, `INSERT INTO user_roles(user_id, role_id) VALUES($1,$2)`, userID, *roleID)
	return err
}

func (r *usersRepo) UpdateFields(ctx context.Context, q db.Querier, id int64, fields models.Fields, actor int64) error {
	set, args := buildSet(userWritable, fields, 3)
	if set != "" {
		set += ", "
	}
	tag, err := q.Exec(ctx,
		fmt.Sprintf(`UPDATE users SET %supdated_by=$2, updated_at=now() WHERE id=$1`, set),
		append([]any{id, actor}, args...)...,
	)
	if err != nil {
		return err
	}
	return mustAffect("user", id, tag.RowsAffected())
}

func (r *usersRepo) UpdateStatus(ctx context.Context, q db.Querier, id int64, status models.EntityStatus, actor int64) error {
	tag, err := q.Exec(ctx,
		`UPDATE users SET status=$2, updated_by=$3, updated_at=now() WHERE id=$1`,
		id, status, actor,
	)
	if err != nil {
		return err
	}
	return mustAffect("user", id, tag.RowsAffected())
}

// Delete removes the user and every sub-table row, children first.
func (r *usersRepo) Delete(ctx context.Context, q db.Querier, id int64) error {
	for _, stmt := range []string{
		`DELETE FROM user_roles WHERE user_id=$1`,
		`DELETE FROM user_branch WHERE user_id=$1`,
		`DELETE FROM user_profile WHERE user_id=$1`,
	} {
		if _, err := q.Exec(ctx, stmt, id); err != nil {
			return err
		}
	}
	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return mustAffect("user", id, tag.RowsAffected())
}
