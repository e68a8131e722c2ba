package models

import "time"

type Bank struct {
	ID          int64        `json:"id"`
	BankCode    string       `json:"bank_code"`
	BankSwift   string       `json:"bank_swift"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Status      EntityStatus `json:"status"`
	CreatedBy   *int64       `json:"created_by,omitempty"`
	UpdatedBy   *int64       `json:"updated_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

// Fields is the reviewable state of the bank.
func (b Bank) Fields() Fields {
	return Fields{
		"bankCode":    b.BankCode,
		"bankSwift":   b.BankSwift,
		"name":        b.Name,
		"description": derefString(b.Description),
		"status":      string(b.Status),
	}
}

func derefString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
