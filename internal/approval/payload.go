package approval

import (
	"github.com/baharkarakas/approval-backend/internal/models"
)

// Build diffs old against new and wraps the result as a pending change
// request. It returns nil when nothing changed, except for deletes, which
// always produce a request.
func Build(kind models.EntityKind, entityID int64, action models.ActionType, requestedBy int64, old, new models.Fields) *models.ChangeRequest {
	return newRequest(kind, entityID, action, requestedBy, Diff(old, new))
}

// BuildMulti is Build for composite entities keyed by table name.
func BuildMulti(kind models.EntityKind, entityID int64, action models.ActionType, requestedBy int64, old, new map[string]models.Fields) *models.ChangeRequest {
	return newRequest(kind, entityID, action, requestedBy, DiffMulti(old, new))
}

func newRequest(kind models.EntityKind, entityID int64, action models.ActionType, requestedBy int64, ch models.Changes) *models.ChangeRequest {
	if ch.IsEmpty() && action != models.ActionDelete {
		return nil
	}
	return &models.ChangeRequest{
		EntityKind:  kind,
		EntityID:    entityID,
		ActionType:  action,
		Changes:     ch,
		RequestedBy: requestedBy,
		Status:      models.RequestPending,
	}
}
