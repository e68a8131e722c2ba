package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/models"
)

// Approvals is the durable store of change requests.
type Approvals interface {
	Insert(ctx context.Context, q db.Querier, cr models.ChangeRequest) (models.ChangeRequest, error)
	// FetchForDecision locks and returns the request only while it is still
	// pending. It must run on the transaction that records the decision.
	FetchForDecision(ctx context.Context, q db.Querier, id uuid.UUID, decision models.Decision) (models.ChangeRequest, error)
	// RecordDecision returns the decision time the store recorded.
	RecordDecision(ctx context.Context, q db.Querier, id uuid.UUID, decidedBy int64, status models.RequestStatus) (time.Time, error)
	List(ctx context.Context, q db.Querier, page, pageSize int, filters []Filter) (models.Page[models.ChangeRequest], error)
}

// Entities is the write surface every managed entity repository offers to
// the apply policies.
type Entities interface {
	UpdateFields(ctx context.Context, q db.Querier, id int64, fields models.Fields, actor int64) error
	UpdateStatus(ctx context.Context, q db.Querier, id int64, status models.EntityStatus, actor int64) error
	Delete(ctx context.Context, q db.Querier, id int64) error
}

type Banks interface {
	Entities
	GetByID(ctx context.Context, q db.Querier, id int64) (models.Bank, error)
	Insert(ctx context.Context, q db.Querier, b models.Bank) (models.Bank, error)
	List(ctx context.Context, q db.Querier, page, pageSize int, filters []Filter) (models.Page[models.Bank], error)
	// SoftDelete moves the bank to its terminal deleted state.
	SoftDelete(ctx context.Context, q db.Querier, id int64, actor int64) error
}

type Routes interface {
	Entities
	GetByID(ctx context.Context, q db.Querier, id int64) (models.Route, error)
	Insert(ctx context.Context, q db.Querier, r models.Route) (models.Route, error)
	List(ctx context.Context, q db.Querier, page, pageSize int, filters []Filter) (models.Page[models.Route], error)
	ListActive(ctx context.Context, q db.Querier) ([]models.Route, error)
}

// Users spans users, user_profile, user_branch and user_roles. Delete
// removes the rows of every sub-table.
type Users interface {
	Entities
	GetByID(ctx context.Context, q db.Querier, id int64) (models.UserDetails, error)
	List(ctx context.Context, q db.Querier, page, pageSize int, filters []Filter) (models.Page[models.UserDetails], error)
	InsertUser(ctx context.Context, q db.Querier, u models.User) (models.User, error)
	InsertProfile(ctx context.Context, q db.Querier, userID int64, p models.UserProfile) error
	UpdateProfile(ctx context.Context, q db.Querier, userID int64, fields models.Fields) error
	// ReplaceBranch and ReplaceRole drop the existing rows and insert the
	// given one; nil leaves the user without a branch or role.
	ReplaceBranch(ctx context.Context, q db.Querier, userID int64, branchID *int64) error
	ReplaceRole(ctx context.Context, q db.Querier, userID int64, roleID *int64) error
}

type AuditLogs interface {
	Create(ctx context.Context, q db.Querier, l models.AuditLog) error
}
