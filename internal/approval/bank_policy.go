package approval

import (
	"context"

	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/models"
)

// NewBankPolicy soft-deletes on an approved delete so the bank code stays
// reserved.
func NewBankPolicy(banks BankWriter) Policy {
	return &flatPolicy{
		kind: models.EntityBanks,
		repo: banks,
		approveDelete: func(ctx context.Context, q db.Querier, in ApplyInput) error {
			return banks.SoftDelete(ctx, q, in.EntityID, in.Actor)
		},
	}
}
