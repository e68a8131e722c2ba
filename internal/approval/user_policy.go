package approval

import (
	"context"
	"fmt"
	"math"

	"github.com/baharkarakas/approval-backend/internal/apperr"
	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/models"
)

type userPolicy struct {
	users UserWriter
}

// NewUserPolicy applies decisions to the composite user entity. Changes are
// keyed by sub-table; only the sub-tables present in a snapshot are written.
func NewUserPolicy(users UserWriter) Policy {
	return &userPolicy{users: users}
}

func (p *userPolicy) Apply(ctx context.Context, q db.Querier, in ApplyInput) error {
	switch in.Decision {
	case models.DecisionApprove:
		switch in.ActionType {
		case models.ActionCreate:
			return p.users.UpdateStatus(ctx, q, in.EntityID, models.StatusActive, in.Actor)
		case models.ActionUpdate:
			return p.write(ctx, q, in, in.Changes.New)
		case models.ActionDelete:
			return p.users.Delete(ctx, q, in.EntityID)
		}
	case models.DecisionReject:
		switch in.ActionType {
		case models.ActionCreate:
			return p.users.Delete(ctx, q, in.EntityID)
		case models.ActionUpdate, models.ActionDelete:
			if len(in.Changes.Old) == 0 {
				return &apperr.MissingRollbackDataError{EntityKind: string(models.EntityUsers), EntityID: in.EntityID}
			}
			return p.write(ctx, q, in, in.Changes.Old)
		}
	}
	return unsupported(models.EntityUsers, in)
}

// write brings the user row out of pending and patches every sub-table the
// snapshot carries.
func (p *userPolicy) write(ctx context.Context, q db.Querier, in ApplyInput, snapshot models.Fields) error {
	userFields, _ := snapshot.Table(models.TableUsers)
	fields := userFields.Clone()
	fields["status"] = string(statusOr(userFields, models.StatusActive))
	if err := p.users.UpdateFields(ctx, q, in.EntityID, fields, in.Actor); err != nil {
		return err
	}

	if profile, ok := snapshot.Table(models.TableUserProfile); ok {
		if err := p.users.UpdateProfile(ctx, q, in.EntityID, profile); err != nil {
			return err
		}
	}
	if branch, ok := snapshot.Table(models.TableUserBranch); ok {
		id, err := optionalID(branch, "branchId")
		if err != nil {
			return err
		}
		if err := p.users.ReplaceBranch(ctx, q, in.EntityID, id); err != nil {
			return err
		}
	}
	if roles, ok := snapshot.Table(models.TableUserRoles); ok {
		id, err := optionalID(roles, "roleId")
		if err != nil {
			return err
		}
		if err := p.users.ReplaceRole(ctx, q, in.EntityID, id); err != nil {
			return err
		}
	}
	return nil
}

// optionalID reads an id that may come back from jsonb as float64.
func optionalID(f models.Fields, key string) (*int64, error) {
	var id int64
	switch v := f[key].(type) {
	case nil:
		return nil, nil
	case int64:
		id = v
	case int:
		id = int64(v)
	case int32:
		id = int64(v)
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%s: %v is not an integer id", key, v)
		}
		id = int64(v)
	default:
		return nil, fmt.Errorf("%s: unexpected type %T", key, v)
	}
	return &id, nil
}
