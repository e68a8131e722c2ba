package models

import "time"

type Route struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Path        string       `json:"path"`
	Method      string       `json:"method"`
	IsProtected bool         `json:"is_protected"`
	Internal    bool         `json:"internal"`
	Description *string      `json:"description,omitempty"`
	MenuID      *int64       `json:"menu_id,omitempty"`
	ActionType  ActionType   `json:"action_type"`
	Status      EntityStatus `json:"status"`
	CreatedBy   *int64       `json:"created_by,omitempty"`
	UpdatedBy   *int64       `json:"updated_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

func (r Route) Fields() Fields {
	return Fields{
		"name":        r.Name,
		"path":        r.Path,
		"method":      r.Method,
		"isProtected": r.IsProtected,
		"internal":    r.Internal,
		"description": derefString(r.Description),
		"menuId":      derefInt64(r.MenuID),
		"routeAction": string(r.ActionType),
		"status":      string(r.Status),
	}
}
