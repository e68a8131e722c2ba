package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baharkarakas/approval-backend/internal/apperr"
	"github.com/baharkarakas/approval-backend/internal/approval"
	"github.com/baharkarakas/approval-backend/internal/audit"
	"github.com/baharkarakas/approval-backend/internal/bulk"
	"github.com/baharkarakas/approval-backend/internal/db"
	"github.com/baharkarakas/approval-backend/internal/db/dbtest"
	"github.com/baharkarakas/approval-backend/internal/models"
	repo "github.com/baharkarakas/approval-backend/internal/repository"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var decisionClock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func strp(s string) *string { return &s }
func i64p(v int64) *int64   { return &v }

// memApprovals enforces one pending request per entity like the partial
// unique index on approvals.
type memApprovals struct {
	mu       sync.Mutex
	requests map[uuid.UUID]models.ChangeRequest
	inserted int
}

func newMemApprovals() *memApprovals {
	return &memApprovals{requests: map[uuid.UUID]models.ChangeRequest{}}
}

func (m *memApprovals) Insert(_ context.Context, _ db.Querier, cr models.ChangeRequest) (models.ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.Status == models.RequestPending && r.EntityKind == cr.EntityKind && r.EntityID == cr.EntityID {
			return models.ChangeRequest{}, &pgconn.PgError{Code: "23505", ConstraintName: "approvals_one_pending_per_entity"}
		}
	}
	cr.ID = uuid.New()
	cr.Status = models.RequestPending
	cr.RequestedAt = time.Now()
	m.requests[cr.ID] = cr
	m.inserted++
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
	cr := m.requests[id]
	cr.Status = status
	at := decisionClock
	cr.ApprovedBy = &decidedBy
	cr.ApprovedAt = &at
	m.requests[id] = cr
	return at, nil
}

func (m *memApprovals) List(_ context.Context, _ db.Querier, page, pageSize int, _ []repo.Filter) (models.Page[models.ChangeRequest], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ChangeRequest
	for _, cr := range m.requests {
		out = append(out, cr)
	}
	return models.NewPage(out, len(out), page, pageSize), nil
}

func (m *memApprovals) only() models.ChangeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cr := range m.requests {
		return cr
	}
	return models.ChangeRequest{}
}

type memBanks struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]models.Bank
	statusErr error
}

func newMemBanks() *memBanks { return &memBanks{rows: map[int64]models.Bank{}} }

func (m *memBanks) get(id int64) models.Bank {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

func (m *memBanks) GetByID(_ context.Context, _ db.Querier, id int64) (models.Bank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return models.Bank{}, &apperr.NotFoundError{Resource: "bank", ID: itoa(id)}
	}
	return b, nil
}

func (m *memBanks) Insert(_ context.Context, _ db.Querier, b models.Bank) (models.Bank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	b.ID = m.nextID
	m.rows[b.ID] = b
	return b, nil
}

func (m *memBanks) List(_ context.Context, _ db.Querier, page, pageSize int, _ []repo.Filter) (models.Page[models.Bank], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Bank
	for _, b := range m.rows {
		out = append(out, b)
	}
	return models.NewPage(out, len(out), page, pageSize), nil
}

func (m *memBanks) UpdateFields(_ context.Context, _ db.Querier, id int64, f models.Fields, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return &apperr.NotFoundError{Resource: "bank", ID: itoa(id)}
	}
	for k, v := range f {
		switch k {
		case "bankCode":
			b.BankCode = v.(string)
		case "bankSwift":
			b.BankSwift = v.(string)
		case "name":
			b.Name = v.(string)
		case "description":
			if v == nil {
				b.Description = nil
			} else {
				b.Description = strp(v.(string))
			}
		case "status":
			b.Status = models.EntityStatus(v.(string))
		}
	}
	m.rows[id] = b
	return nil
}

func (m *memBanks) UpdateStatus(_ context.Context, _ db.Querier, id int64, status models.EntityStatus, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusErr != nil {
		return m.statusErr
	}
	b := m.rows[id]
	b.Status = status
	m.rows[id] = b
	return nil
}

func (m *memBanks) SoftDelete(ctx context.Context, q db.Querier, id int64, actor int64) error {
	return m.UpdateStatus(ctx, q, id, models.StatusDeleted, actor)
}

func (m *memBanks) Delete(_ context.Context, _ db.Querier, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type memRoutes struct {
	mu         sync.Mutex
	rows       map[int64]models.Route
	activeHits int
}

func newMemRoutes() *memRoutes { return &memRoutes{rows: map[int64]models.Route{}} }

func (m *memRoutes) GetByID(_ context.Context, _ db.Querier, id int64) (models.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return models.Route{}, &apperr.NotFoundError{Resource: "route", ID: itoa(id)}
	}
	return r, nil
}

func (m *memRoutes) Insert(_ context.Context, _ db.Querier, r models.Route) (models.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = int64(len(m.rows) + 1)
	m.rows[r.ID] = r
	return r, nil
}

func (m *memRoutes) List(_ context.Context, _ db.Querier, page, pageSize int, _ []repo.Filter) (models.Page[models.Route], error) {
	return models.Page[models.Route]{}, nil
}

func (m *memRoutes) ListActive(_ context.Context, _ db.Querier) ([]models.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeHits++
	var out []models.Route
	for _, r := range m.rows {
		if r.Status == models.StatusActive {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRoutes) UpdateFields(_ context.Context, _ db.Querier, id int64, f models.Fields, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rows[id]
	if s, ok := f["status"].(string); ok {
		r.Status = models.EntityStatus(s)
	}
	if s, ok := f["name"].(string); ok {
		r.Name = s
	}
	if s, ok := f["routeAction"].(string); ok {
		r.ActionType = models.ActionType(s)
	}
	m.rows[id] = r
	return nil
}

func (m *memRoutes) UpdateStatus(_ context.Context, _ db.Querier, id int64, status models.EntityStatus, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rows[id]
	r.Status = status
	m.rows[id] = r
	return nil
}

func (m *memRoutes) Delete(_ context.Context, _ db.Querier, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.UserDetails
}

func newMemUsers() *memUsers { return &memUsers{rows: map[int64]models.UserDetails{}} }

func (m *memUsers) get(id int64) (models.UserDetails, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	return u, ok
}

func (m *memUsers) GetByID(_ context.Context, _ db.Querier, id int64) (models.UserDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return models.UserDetails{}, &apperr.NotFoundError{Resource: "user", ID: itoa(id)}
	}
	return u, nil
}

func (m *memUsers) List(context.Context, db.Querier, int, int, []repo.Filter) (models.Page[models.UserDetails], error) {
	return models.Page[models.UserDetails]{}, nil
}

func (m *memUsers) InsertUser(_ context.Context, _ db.Querier, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	m.rows[u.ID] = models.UserDetails{User: u}
	return u, nil
}

func (m *memUsers) InsertProfile(_ context.Context, _ db.Querier, id int64, p models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.rows[id]
	u.Profile = p
	m.rows[id] = u
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, _ db.Querier, id int64, f models.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.rows[id]
	if v, ok := f["email"]; ok {
		if v == nil {
			u.Profile.Email = nil
		} else {
			u.Profile.Email = strp(v.(string))
		}
	}
	m.rows[id] = u
	return nil
}

func (m *memUsers) ReplaceBranch(_ context.Context, _ db.Querier, id int64, branchID *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.rows[id]
	u.BranchID = branchID
	m.rows[id] = u
	return nil
}

func (m *memUsers) ReplaceRole(_ context.Context, _ db.Querier, id int64, roleID *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.rows[id]
	u.RoleID = roleID
	m.rows[id] = u
	return nil
}

func (m *memUsers) UpdateFields(_ context.Context, _ db.Querier, id int64, f models.Fields, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.rows[id]
	if v, ok := f["username"].(string); ok {
		u.Username = v
	}
	if v, ok := f["password"].(string); ok {
		u.PasswordHash = v
	}
	if v, ok := f["status"].(string); ok {
		u.Status = models.EntityStatus(v)
	}
	m.rows[id] = u
	return nil
}

func (m *memUsers) UpdateStatus(_ context.Context, _ db.Querier, id int64, status models.EntityStatus, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.rows[id]
	u.Status = status
	m.rows[id] = u
	return nil
}

func (m *memUsers) Delete(_ context.Context, _ db.Querier, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return &apperr.NotFoundError{Resource: "user", ID: itoa(id)}
	}
	delete(m.rows, id)
	return nil
}

type memAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *memAuditor) Record(ev audit.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

type memRouteCache struct {
	mu          sync.Mutex
	routes      []models.Route
	ok          bool
	invalidated int
}

func (c *memRouteCache) Get(context.Context) ([]models.Route, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.routes, c.ok
}

func (c *memRouteCache) Set(_ context.Context, r []models.Route) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes, c.ok = r, true
}

func (c *memRouteCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes, c.ok = nil, false
	c.invalidated++
}

// fixture wires every service over the in-memory stores, the way main does
// over Postgres.
type fixture struct {
	beginner  *dbtest.Beginner
	approvals *memApprovals
	banks     *memBanks
	routes    *memRoutes
	users     *memUsers
	auditor   *memAuditor
	cache     *memRouteCache

	dispatcher   *approval.Dispatcher
	approvalSvc  *ApprovalService
	bankSvc      *BankService
	routeSvc     *RouteService
	userSvc      *UserService
	decidedHooks int
}

func newFixture() *fixture {
	f := &fixture{
		beginner:  &dbtest.Beginner{},
		approvals: newMemApprovals(),
		banks:     newMemBanks(),
		routes:    newMemRoutes(),
		users:     newMemUsers(),
		auditor:   &memAuditor{},
		cache:     &memRouteCache{},
	}
	runner := bulk.NewRunner(f.beginner, time.Second, discard)
	registry := approval.NewRegistry(f.banks, f.routes, f.users)

	var hookMu sync.Mutex
	counter := func(context.Context, approval.DecisionResult) {
		hookMu.Lock()
		f.decidedHooks++
		hookMu.Unlock()
	}
	f.dispatcher = approval.NewDispatcher(f.beginner, f.approvals, registry, time.Second, discard, counter, RouteCacheHook(f.cache))
	f.approvalSvc = NewApprovalService(nil, f.approvals, f.dispatcher, runner, f.auditor, discard)
	f.routeSvc = NewRouteService(f.beginner, nil, f.routes, f.approvalSvc, f.cache, time.Second, discard)
	f.bankSvc = NewBankService(f.beginner, nil, f.banks, f.approvalSvc, time.Second, discard)
	f.userSvc = NewUserService(f.beginner, nil, f.users, f.approvalSvc, runner, time.Second, discard)
	return f
}
