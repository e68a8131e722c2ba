package approval

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/approval-backend/internal/apperr"
	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/models"
	"github.com/baharkarakas/approval-backend/internal/repository"
)

var errStore = errors.New("store unavailable")

// memRows is an in-memory single-table entity store.
type memRows struct {
	mu        sync.Mutex
	rows      map[int64]models.Fields
	failWrite error
	calls     []string
}

func newMemRows() *memRows { return &memRows{rows: map[int64]models.Fields{}} }

func (m *memRows) put(id int64, f models.Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id] = f.Clone()
}

func (m *memRows) get(id int64) (models.Fields, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	return f, ok
}

func (m *memRows) UpdateFields(_ context.Context, _ db.Querier, id int64, fields models.Fields, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "update")
	if m.failWrite != nil {
		return m.failWrite
	}
	row, ok := m.rows[id]
	if !ok {
		return &apperr.NotFoundError{Resource: "row", ID: "-"}
	}
	m.rows[id] = row.Overlay(fields)
	return nil
}

func (m *memRows) UpdateStatus(_ context.Context, _ db.Querier, id int64, status models.EntityStatus, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "status:"+string(status))
	if m.failWrite != nil {
		return m.failWrite
	}
	row, ok := m.rows[id]
	if !ok {
		return &apperr.NotFoundError{Resource: "row", ID: "-"}
	}
	row["status"] = string(status)
	return nil
}

func (m *memRows) Delete(_ context.Context, _ db.Querier, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "delete")
	delete(m.rows, id)
	return nil
}

func (m *memRows) SoftDelete(_ context.Context, _ db.Querier, id int64, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "softdelete")
	row := m.rows[id]
	row["status"] = string(models.StatusDeleted)
	row["deletedAt"] = "now"
	return nil
}

// memUsers keeps one Fields per sub-table per user.
type memUsers struct {
	mu     sync.Mutex
	tables map[int64]map[string]models.Fields
}

func newMemUsers() *memUsers { return &memUsers{tables: map[int64]map[string]models.Fields{}} }

func (m *memUsers) put(id int64, t map[string]models.Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := map[string]models.Fields{}
	for k, v := range t {
		cp[k] = v.Clone()
	}
	m.tables[id] = cp
}

func (m *memUsers) table(id int64, name string) models.Fields {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tables[id][name]
}

func (m *memUsers) exists(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tables[id]
	return ok
}

func (m *memUsers) UpdateFields(_ context.Context, _ db.Querier, id int64, fields models.Fields, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tables[id]
	t[models.TableUsers] = t[models.TableUsers].Overlay(fields)
	return nil
}

func (m *memUsers) UpdateStatus(_ context.Context, _ db.Querier, id int64, status models.EntityStatus, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[id][models.TableUsers]["status"] = string(status)
	return nil
}

func (m *memUsers) Delete(_ context.Context, _ db.Querier, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, id)
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, _ db.Querier, id int64, fields models.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tables[id]
	t[models.TableUserProfile] = t[models.TableUserProfile].Overlay(fields)
	return nil
}

func (m *memUsers) ReplaceBranch(_ context.Context, _ db.Querier, id int64, branchID *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[id][models.TableUserBranch] = models.Fields{"branchId": ptrValue(branchID)}
	return nil
}

func (m *memUsers) ReplaceRole(_ context.Context, _ db.Querier, id int64, roleID *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[id][models.TableUserRoles] = models.Fields{"roleId": ptrValue(roleID)}
	return nil
}

func ptrValue(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

// decisionClock stands in for the database clock.
var decisionClock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// memApprovals mimics the pending-only guard of the real store.
type memApprovals struct {
	mu        sync.Mutex
	requests  map[uuid.UUID]models.ChangeRequest
	failWrite error
}

func newMemApprovals() *memApprovals {
	return &memApprovals{requests: map[uuid.UUID]models.ChangeRequest{}}
}

func (m *memApprovals) Insert(_ context.Context, _ db.Querier, cr models.ChangeRequest) (models.ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cr.ID = uuid.New()
	cr.Status = models.RequestPending
	m.requests[cr.ID] = cr
	return cr, nil
}

func (m *memApprovals) FetchForDecision(_ context.Context, _ db.Querier, id uuid.UUID, _ models.Decision) (models.ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cr, ok := m.requests[id]
	if !ok || cr.Status != models.RequestPending {
		return models.ChangeRequest{}, &apperr.NotFoundError{Resource: "change request", ID: id.String(), Reason: "not found or already processed"}
	}
	return cr, nil
}

func (m *memApprovals) RecordDecision(_ context.Context, _ db.Querier, id uuid.UUID, decidedBy int64, status models.RequestStatus) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return time.Time{}, m.failWrite
	}
	cr := m.requests[id]
	cr.Status = status
	at := decisionClock
	cr.ApprovedBy = &decidedBy
	cr.ApprovedAt = &at
	m.requests[id] = cr
	return at, nil
}

func (m *memApprovals) List(context.Context, db.Querier, int, int, []repository.Filter) (models.Page[models.ChangeRequest], error) {
	return models.Page[models.ChangeRequest]{}, nil
}

func (m *memApprovals) status(id uuid.UUID) models.RequestStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[id].Status
}
