package integration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Transactor ---

// memTx is a pgx.Tx that records an undo step for every write made through it.
// Rollback replays the journal in reverse; after Commit it is a no-op.
type memTx struct {
	mu   sync.Mutex
	undo []func()
	done bool
}

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &memTx{}, nil
}

// journal registers an undo step on tx when it is a memTx.
func journal(tx pgx.Tx, undo func()) {
	if mt, ok := tx.(*memTx); ok {
		mt.mu.Lock()
		mt.undo = append(mt.undo, undo)
		mt.mu.Unlock()
	}
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *memTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.undo = nil
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return pgx.ErrTxClosed
	}
	t.done = true
	steps := t.undo
	t.undo = nil
	t.mu.Unlock()

	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
	return nil
}

func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("memTx: CopyFrom not supported")
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("memTx: Prepare not supported")
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), errors.New("memTx: Exec not supported")
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("memTx: Query not supported")
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *memTx) Conn() *pgx.Conn                                               { return nil }

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
	order    []uuid.UUID
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return fmt.Errorf("insert account: %w", ports.ErrDuplicate)
		}
	}
	cp := *a
	r.accounts[a.ID] = &cp
	r.order = append(r.order, a.ID)
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("account not found: %s", id)
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryAccountRepo) Credit(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return 0, fmt.Errorf("credit account: account not found: %s", id)
	}
	a.Balance += amount
	journal(tx, func() { r.adjust(id, -amount) })
	return a.Balance, nil
}

func (r *inMemoryAccountRepo) DebitIfSufficient(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.Balance < amount {
		return 0, false, nil
	}
	a.Balance -= amount
	journal(tx, func() { r.adjust(id, amount) })
	return a.Balance, true, nil
}

func (r *inMemoryAccountRepo) adjust(id uuid.UUID, delta int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.Balance += delta
	}
}

func (r *inMemoryAccountRepo) CountByRole(ctx context.Context, role domain.AccountRole) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, a := range r.accounts {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *inMemoryAccountRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]uuid.UUID(nil), r.order...), nil
}

// balance reads the stored balance directly, for assertions.
func (r *inMemoryAccountRepo) balance(id uuid.UUID) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.accounts[id]; ok {
		return a.Balance
	}
	return 0
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu       sync.RWMutex
	entries  []*domain.LedgerEntry
	byOrder  map[string]*domain.LedgerEntry
	accounts *inMemoryAccountRepo
}

func newInMemoryLedgerRepo(accounts *inMemoryAccountRepo) *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{byOrder: make(map[string]*domain.LedgerEntry), accounts: accounts}
}

func (r *inMemoryLedgerRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	if e.OrderID != nil {
		if _, exists := r.byOrder[*e.OrderID]; exists {
			return fmt.Errorf("insert ledger entry: %w", ports.ErrDuplicate)
		}
		r.byOrder[*e.OrderID] = &cp
	}
	r.entries = append(r.entries, &cp)
	journal(tx, func() { r.remove(e.ID) })
	return nil
}

func (r *inMemoryLedgerRepo) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID == id {
			if e.OrderID != nil {
				delete(r.byOrder, *e.OrderID)
			}
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

func (r *inMemoryLedgerRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byOrder[orderID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *inMemoryLedgerRepo) TransitionPending(ctx context.Context, tx pgx.Tx, orderID string, to domain.LedgerStatus, paymentRef *string) (*domain.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byOrder[orderID]
	if !ok || e.Status != domain.LedgerStatusPending {
		return nil, nil
	}
	prevRef, prevUpdated := e.PaymentReference, e.UpdatedAt
	e.Status = to
	if paymentRef != nil {
		e.PaymentReference = paymentRef
	}
	e.UpdatedAt = time.Now().UTC()
	journal(tx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		e.Status = domain.LedgerStatusPending
		e.PaymentReference = prevRef
		e.UpdatedAt = prevUpdated
	})
	cp := *e
	return &cp, nil
}

func (r *inMemoryLedgerRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	return r.list(func(e *domain.LedgerEntry) bool { return e.AccountID == accountID }, limit), nil
}

func (r *inMemoryLedgerRepo) ListRecent(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	return r.list(func(*domain.LedgerEntry) bool { return true }, limit), nil
}

// list returns matching entries newest first.
func (r *inMemoryLedgerRepo) list(match func(*domain.LedgerEntry) bool, limit int) []domain.LedgerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.LedgerEntry{}
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if match(r.entries[i]) {
			out = append(out, *r.entries[i])
		}
	}
	return out
}

func (r *inMemoryLedgerRepo) Totals(ctx context.Context, accountID uuid.UUID) (*domain.LedgerTotals, error) {
	acc, err := r.accounts.GetByID(ctx, accountID)
	if err != nil || acc == nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	t := &domain.LedgerTotals{AccountID: accountID, StoredBalance: acc.Balance}
	for _, e := range r.entries {
		if e.AccountID != accountID || e.Status != domain.LedgerStatusSuccess {
			continue
		}
		if e.Direction == domain.DirectionCredit {
			t.Credits += e.Amount
		} else {
			t.Debits += e.Amount
		}
	}
	return t, nil
}

func (r *inMemoryLedgerRepo) GetStats(ctx context.Context, since time.Time) (*ports.LedgerStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.LedgerStats{}
	for _, e := range r.entries {
		if e.Category != domain.CategoryRecharge || e.Direction != domain.DirectionCredit {
			continue
		}
		switch e.Status {
		case domain.LedgerStatusSuccess:
			stats.TotalRevenue += e.Amount
			if !e.CreatedAt.Before(since) {
				stats.PeriodRevenue += e.Amount
			}
		case domain.LedgerStatusPending:
			stats.PendingRecharges++
		}
	}
	return stats, nil
}

// --- In-Memory Service Repo ---

type inMemoryServiceRepo struct {
	mu   sync.RWMutex
	apps map[uuid.UUID]*domain.Application
}

func newInMemoryServiceRepo() *inMemoryServiceRepo {
	return &inMemoryServiceRepo{apps: make(map[uuid.UUID]*domain.Application)}
}

func copyApplication(app *domain.Application) *domain.Application {
	svc := *app.Service
	svc.Comments = append([]domain.Comment{}, app.Service.Comments...)
	svc.Documents = append([]domain.Document{}, app.Service.Documents...)
	variant := *app.Variant
	variant.GeneralRemarks = append([]domain.Remark{}, app.Variant.GeneralRemarks...)
	return &domain.Application{Service: &svc, Variant: &variant}
}

func (r *inMemoryServiceRepo) CreateApplication(ctx context.Context, tx pgx.Tx, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := app.Service.ID
	r.apps[id] = copyApplication(app)
	journal(tx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.apps, id)
	})
	return nil
}

func (r *inMemoryServiceRepo) GetApplication(ctx context.Context, serviceID uuid.UUID) (*domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[serviceID]
	if !ok {
		return nil, nil
	}
	return copyApplication(app), nil
}

func (r *inMemoryServiceRepo) GetApplicationForUpdate(ctx context.Context, tx pgx.Tx, serviceID uuid.UUID) (*domain.Application, error) {
	return r.GetApplication(ctx, serviceID)
}

func (r *inMemoryServiceRepo) UpdateApplication(ctx context.Context, tx pgx.Tx, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := app.Service.ID
	prev, ok := r.apps[id]
	if !ok {
		return fmt.Errorf("service not found: %s", id)
	}
	r.apps[id] = copyApplication(app)
	journal(tx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.apps[id] = prev
	})
	return nil
}

func (r *inMemoryServiceRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Service{}
	for _, app := range r.apps {
		if app.Service.AccountID == accountID {
			out = append(out, *app.Service)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *inMemoryServiceRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.apps)
}

// --- In-Memory Service Config Repo ---

type inMemoryServiceConfigRepo struct {
	mu      sync.RWMutex
	configs map[domain.ServiceType]*domain.ServiceConfig
}

func newInMemoryServiceConfigRepo() *inMemoryServiceConfigRepo {
	return &inMemoryServiceConfigRepo{configs: make(map[domain.ServiceType]*domain.ServiceConfig)}
}

func (r *inMemoryServiceConfigRepo) Get(ctx context.Context, serviceType domain.ServiceType) (*domain.ServiceConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[serviceType]
	if !ok {
		return nil, nil
	}
	cp := *cfg
	return &cp, nil
}

func (r *inMemoryServiceConfigRepo) List(ctx context.Context) ([]domain.ServiceConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ServiceConfig, 0, len(r.configs))
	for _, cfg := range r.configs {
		out = append(out, *cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceType < out[j].ServiceType })
	return out, nil
}

func (r *inMemoryServiceConfigRepo) CreateIfMissing(ctx context.Context, cfg *domain.ServiceConfig) (*domain.ServiceConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.configs[cfg.ServiceType]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *cfg
	r.configs[cfg.ServiceType] = &cp
	out := cp
	return &out, nil
}

func (r *inMemoryServiceConfigRepo) Update(ctx context.Context, cfg *domain.ServiceConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[cfg.ServiceType]; !ok {
		return fmt.Errorf("service config not found: %s", cfg.ServiceType)
	}
	cp := *cfg
	r.configs[cfg.ServiceType] = &cp
	return nil
}

// --- In-Memory Gateway Event Repo ---

type inMemoryGatewayEventRepo struct {
	mu     sync.RWMutex
	events []domain.GatewayEvent
}

func newInMemoryGatewayEventRepo() *inMemoryGatewayEventRepo {
	return &inMemoryGatewayEventRepo{}
}

func (r *inMemoryGatewayEventRepo) Create(ctx context.Context, event *domain.GatewayEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *inMemoryGatewayEventRepo) ListByOrderID(ctx context.Context, orderID string) ([]domain.GatewayEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.GatewayEvent{}
	for _, e := range r.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu   sync.RWMutex
	logs []domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *inMemoryAuditRepo) actions() []domain.AuditAction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AuditAction, 0, len(r.logs))
	for _, l := range r.logs {
		out = append(out, l.Action)
	}
	return out
}
