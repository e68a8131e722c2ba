package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EntityKind string

const (
	EntityRoutes EntityKind = "routes"
	EntityBanks  EntityKind = "banks"
	EntityUsers  EntityKind = "users"
)

func ParseEntityKind(s string) (EntityKind, error) {
	switch k := EntityKind(s); k {
	case EntityRoutes, EntityBanks, EntityUsers:
		return k, nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// ActionType uses the single-letter codes stored in approvals.action_type.
type ActionType string

const (
	ActionCreate ActionType = "c"
	ActionRead   ActionType = "r"
	ActionUpdate ActionType = "u"
	ActionDelete ActionType = "d"
)

func (a ActionType) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionRead:
		return "read"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return string(a)
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Decision is the reviewer's verdict. Its values double as the terminal
// request status it produces.
type Decision string

const (
	DecisionApprove Decision = "approved"
	DecisionReject  Decision = "rejected"
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionApprove, DecisionReject:
		return d, nil
	}
	return "", fmt.Errorf("unknown decision %q", s)
}

func (d Decision) Status() RequestStatus { return RequestStatus(d) }

// Changes is the two-sided diff. For composite entities each side maps a
// sub-table name to its own Fields.
type Changes struct {
	Old Fields `json:"old"`
	New Fields `json:"new"`
}

func (c Changes) IsEmpty() bool { return len(c.Old) == 0 && len(c.New) == 0 }

type ChangeRequest struct {
	ID          uuid.UUID     `json:"id"`
	EntityKind  EntityKind    `json:"entity_kind"`
	EntityID    int64         `json:"entity_id"`
	ActionType  ActionType    `json:"action_type"`
	Changes     Changes       `json:"changes"`
	RequestedBy int64         `json:"requested_by"`
	RequestedAt time.Time     `json:"requested_at"`
	Status      RequestStatus `json:"status"`
	ApprovedBy  *int64        `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time    `json:"approved_at,omitempty"`
}
