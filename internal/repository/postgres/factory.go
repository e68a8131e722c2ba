package postgres

import (
	repo "github.com/baharkarakas/approval-backend/internal/repository"
)

type Repositories struct {
	Approvals repo.Approvals
	Banks     repo.Banks
	Routes    repo.Routes
	Users     repo.Users
	AuditLogs repo.AuditLogs
}

// NewRepositories wires the Postgres implementations. They hold no
// connection of their own; every call runs on the Querier it is given.
func NewRepositories() Repositories {
	return Repositories{
		Approvals: &approvalsRepo{},
		Banks:     &banksRepo{},
		Routes:    &routesRepo{},
		Users:     &usersRepo{},
		AuditLogs: &auditLogsRepo{},
	}
}
