package models

import "time"

// Sub-table keys of the composite user entity inside Changes.
const (
	TableUsers       = "users"
	TableUserProfile = "userProfile"
	TableUserBranch  = "userBranch"
	TableUserRoles   = "userRoles"
)

type User struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"`
	Status       EntityStatus `json:"status"`
	CreatedBy    *int64       `json:"created_by,omitempty"`
	UpdatedBy    *int64       `json:"updated_by,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    *time.Time   `json:"updated_at,omitempty"`
}

type UserProfile struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// UserDetails is the joined view of the composite user entity.
type UserDetails struct {
	User
	Profile  UserProfile `json:"profile"`
	BranchID *int64      `json:"branch_id,omitempty"`
	RoleID   *int64      `json:"role_id,omitempty"`
}

// Tables splits the details into the per-table states used by DiffMulti.
func (u UserDetails) Tables() map[string]Fields {
	return map[string]Fields{
		TableUsers: {
			"username": u.Username,
			"password": u.PasswordHash,
			"status":   string(u.Status),
		},
		TableUserProfile: {
			"firstName":   derefString(u.Profile.FirstName),
			"lastName":    derefString(u.Profile.LastName),
			"email":       derefString(u.Profile.Email),
			"phoneNumber": derefString(u.Profile.PhoneNumber),
			"avatarUrl":   derefString(u.Profile.AvatarURL),
		},
		TableUserBranch: {"branchId": derefInt64(u.BranchID)},
		TableUserRoles:  {"roleId": derefInt64(u.RoleID)},
	}
}
