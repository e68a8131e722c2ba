package approval

import (
	"context"
	"fmt"

	"github.com/baharkarakas/approval-backend/internal/apperr"
	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/models"
	"github.com/baharkarakas/approval-backend/internal/repository"
)

// ApplyInput carries one decided request into a Policy.
type ApplyInput struct {
	EntityID   int64
	ActionType models.ActionType
	Changes    models.Changes
	Decision   models.Decision
	Actor      int64
}

// Policy makes a decision effective on the live rows of one entity kind.
// Apply runs on the decision transaction and must not commit it.
type Policy interface {
	Apply(ctx context.Context, q db.Querier, in ApplyInput) error
}

type PolicyFunc func(ctx context.Context, q db.Querier, in ApplyInput) error

func (f PolicyFunc) Apply(ctx context.Context, q db.Querier, in ApplyInput) error {
	return f(ctx, q, in)
}

// BankWriter is the part of repository.Banks the bank policy needs.
type BankWriter interface {
	repository.Entities
	SoftDelete(ctx context.Context, q db.Querier, id int64, actor int64) error
}

// UserWriter is the part of repository.Users the user policy needs.
type UserWriter interface {
	repository.Entities
	UpdateProfile(ctx context.Context, q db.Querier, userID int64, fields models.Fields) error
	ReplaceBranch(ctx context.Context, q db.Querier, userID int64, branchID *int64) error
	ReplaceRole(ctx context.Context, q db.Querier, userID int64, roleID *int64) error
}

// Registry maps every managed entity kind to its policy. It is built once
// and only read afterwards.
type Registry struct {
	policies map[models.EntityKind]Policy
}

func NewRegistry(banks BankWriter, routes repository.Entities, users UserWriter) *Registry {
	return &Registry{policies: map[models.EntityKind]Policy{
		models.EntityBanks:  NewBankPolicy(banks),
		models.EntityRoutes: NewRoutePolicy(routes),
		models.EntityUsers:  NewUserPolicy(users),
	}}
}

func (r *Registry) Lookup(kind models.EntityKind) (Policy, error) {
	p, ok := r.policies[kind]
	if !ok {
		return nil, &apperr.UnsupportedOperationError{EntityKind: string(kind)}
	}
	return p, nil
}

func (r *Registry) Kinds() []models.EntityKind {
	out := make([]models.EntityKind, 0, len(r.policies))
	for k := range r.policies {
		out = append(out, k)
	}
	return out
}

// flatPolicy serves single-table entities. Only the delete approval differs
// between them.
type flatPolicy struct {
	kind          models.EntityKind
	repo          repository.Entities
	approveDelete func(ctx context.Context, q db.Querier, in ApplyInput) error
}

func (p *flatPolicy) Apply(ctx context.Context, q db.Querier, in ApplyInput) error {
	switch in.Decision {
	case models.DecisionApprove:
		switch in.ActionType {
		case models.ActionCreate:
			return p.repo.UpdateStatus(ctx, q, in.EntityID, models.StatusActive, in.Actor)
		case models.ActionUpdate:
			fields := in.Changes.New.Clone()
			fields["status"] = string(statusOr(in.Changes.New, models.StatusActive))
			return p.repo.UpdateFields(ctx, q, in.EntityID, fields, in.Actor)
		case models.ActionDelete:
			return p.approveDelete(ctx, q, in)
		}
	case models.DecisionReject:
		switch in.ActionType {
		case models.ActionCreate:
			return p.repo.Delete(ctx, q, in.EntityID)
		case models.ActionUpdate, models.ActionDelete:
			if len(in.Changes.Old) == 0 {
				return &apperr.MissingRollbackDataError{EntityKind: string(p.kind), EntityID: in.EntityID}
			}
			fields := in.Changes.Old.Clone()
			fields["status"] = string(statusOr(in.Changes.Old, models.StatusActive))
			return p.repo.UpdateFields(ctx, q, in.EntityID, fields, in.Actor)
		}
	}
	return unsupported(p.kind, in)
}

func unsupported(kind models.EntityKind, in ApplyInput) error {
	return &apperr.UnsupportedOperationError{
		EntityKind: string(kind),
		ActionType: fmt.Sprintf("%s/%s", in.ActionType, in.Decision),
	}
}

// statusOr reads the status carried by a snapshot, falling back to def when
// it is missing or not a known status.
func statusOr(f models.Fields, def models.EntityStatus) models.EntityStatus {
	s, ok := f["status"].(string)
	if !ok {
		return def
	}
	if st := models.EntityStatus(s); st.Valid() {
		return st
	}
	return def
}
