package models

// EntityStatus is the lifecycle status carried by every managed entity.
// Rows in StatusPending belong to a change request that is still in flight.
type EntityStatus string

const (
	StatusPending  EntityStatus = "pending"
	StatusActive   EntityStatus = "active"
	StatusInactive EntityStatus = "inactive"
	StatusDeleted  EntityStatus = "deleted"
)

func (s EntityStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive, StatusDeleted:
		return true
	}
	return false
}
