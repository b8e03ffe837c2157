package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/repository"
)

// Mocks return the same sentinels the SQLite implementations do.
var (
	errNotFound       = sql.ErrNoRows
	errAlreadySettled = repository.ErrAlreadySettled
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func normalizePrompt(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

// mockTokenRepository implements repository.TokenRepository for testing
type mockTokenRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.UserTokenData
	getErr   error
}

func newMockTokenRepository() *mockTokenRepository {
	return &mockTokenRepository{accounts: make(map[string]*models.UserTokenData)}
}

func (m *mockTokenRepository) Get(ctx context.Context, userID string) (*models.UserTokenData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if a, ok := m.accounts[userID]; ok {
		copy := *a
		return &copy, nil
	}
	return nil, nil
}

func (m *mockTokenRepository) Create(ctx context.Context, data *models.UserTokenData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *data
	m.accounts[data.UserID] = &copy
	return nil
}

func (m *mockTokenRepository) DeductIfSufficient(ctx context.Context, userID string, amount int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok || a.Tokens < amount {
		return false, nil
	}
	a.Tokens -= amount
	return true, nil
}

func (m *mockTokenRepository) Credit(ctx context.Context, userID string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		return errNotFound
	}
	a.Tokens += amount
	return nil
}

func (m *mockTokenRepository) Set(ctx context.Context, userID string, tokens int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[userID]; ok {
		a.Tokens = tokens
		return nil
	}
	m.accounts[userID] = &models.UserTokenData{UserID: userID, Tokens: tokens}
	return nil
}

func (m *mockTokenRepository) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, userID)
	return nil
}

func (m *mockTokenRepository) setBalance(userID string, tokens int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[userID] = &models.UserTokenData{UserID: userID, Tokens: tokens}
}

// mockLedgerRepository implements repository.TokenTransactionRepository for testing
type mockLedgerRepository struct {
	mu      sync.RWMutex
	entries []*models.TokenTransaction
}

func newMockLedgerRepository() *mockLedgerRepository {
	return &mockLedgerRepository{}
}

func (m *mockLedgerRepository) Create(ctx context.Context, tx *models.TokenTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *tx
	m.entries = append(m.entries, &copy)
	return nil
}

func (m *mockLedgerRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.TokenTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.TokenTransaction
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID {
			out = append(out, m.entries[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockLedgerRepository) DeleteByUserID(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func (m *mockLedgerRepository) all() []*models.TokenTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.TokenTransaction, len(m.entries))
	copy(out, m.entries)
	return out
}

// mockAnonymousRepository implements repository.AnonymousUsageRepository for testing
type mockAnonymousRepository struct {
	mu    sync.RWMutex
	usage map[string]*models.AnonymousUsage
}

func newMockAnonymousRepository() *mockAnonymousRepository {
	return &mockAnonymousRepository{usage: make(map[string]*models.AnonymousUsage)}
}

func (m *mockAnonymousRepository) Get(ctx context.Context, anonymousID string) (*models.AnonymousUsage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.usage[anonymousID]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, nil
}

func (m *mockAnonymousRepository) IncrementForDate(ctx context.Context, anonymousID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.usage[anonymousID]
	if !ok {
		m.usage[anonymousID] = &models.AnonymousUsage{
			AnonymousID:          anonymousID,
			TodayGenerationCount: 1,
			LastGeneratedDate:    date,
		}
		return nil
	}
	if u.LastGeneratedDate == date {
		u.TodayGenerationCount++
	} else {
		u.TodayGenerationCount = 1
		u.LastGeneratedDate = date
	}
	return nil
}

// mockStyleRepository implements repository.StyleRepository for testing
type mockStyleRepository struct {
	mu     sync.RWMutex
	styles map[string]*models.Style
}

func newMockStyleRepository() *mockStyleRepository {
	return &mockStyleRepository{styles: make(map[string]*models.Style)}
}

func (m *mockStyleRepository) Create(ctx context.Context, style *models.Style) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *style
	m.styles[style.ID] = &copy
	return nil
}

func (m *mockStyleRepository) GetByID(ctx context.Context, id string) (*models.Style, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.styles[id]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, nil
}

func (m *mockStyleRepository) List(ctx context.Context, status models.StyleStatus) ([]*models.Style, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Style
	for _, s := range m.styles {
		if status == "" || s.Status == status {
			copy := *s
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *mockStyleRepository) Update(ctx context.Context, style *models.Style) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *style
	m.styles[style.ID] = &copy
	return nil
}

func (m *mockStyleRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.styles, id)
	return nil
}

func (m *mockStyleRepository) GetByPrompt(ctx context.Context, prompt string) (*models.Style, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	norm := normalizePrompt(prompt)
	for _, s := range m.styles {
		if normalizePrompt(s.Prompt) == norm {
			copy := *s
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *mockStyleRepository) SetStatus(ctx context.Context, ids []string, status models.StyleStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match := func(id string) bool {
		if len(ids) == 0 {
			return true
		}
		for _, want := range ids {
			if id == want {
				return true
			}
		}
		return false
	}
	var n int64
	for _, s := range m.styles {
		if match(s.ID) && s.Status != status {
			s.Status = status
			n++
		}
	}
	return n, nil
}

// mockGenerationRepository implements repository.GenerationRepository for testing
type mockGenerationRepository struct {
	mu          sync.RWMutex
	generations map[string]*models.Generation
	createErr   error
}

func newMockGenerationRepository() *mockGenerationRepository {
	return &mockGenerationRepository{generations: make(map[string]*models.Generation)}
}

func (m *mockGenerationRepository) Create(ctx context.Context, gen *models.Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	copy := *gen
	m.generations[gen.ID] = &copy
	return nil
}

func (m *mockGenerationRepository) GetByID(ctx context.Context, id string) (*models.Generation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.generations[id]; ok {
		copy := *g
		return &copy, nil
	}
	return nil, nil
}

func (m *mockGenerationRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Generation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Generation
	for _, g := range m.generations {
		if g.UserID == userID {
			copy := *g
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockGenerationRepository) GetByAnonymousID(ctx context.Context, anonymousID string, limit, offset int) ([]*models.Generation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Generation
	for _, g := range m.generations {
		if g.AnonymousID == anonymousID {
			copy := *g
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (m *mockGenerationRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.generations, id)
	return nil
}

func (m *mockGenerationRepository) DeleteByUserID(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, g := range m.generations {
		if g.UserID == userID {
			delete(m.generations, id)
		}
	}
	return nil
}

// mockTopupRepository implements repository.TopupRepository for testing.
// failSettles injects settleErr for that many Settle calls before
// letting one through.
type mockTopupRepository struct {
	mu          sync.RWMutex
	topups      map[string]*models.TopupTransaction // keyed by order ID
	tokens      *mockTokenRepository
	ledger      *mockLedgerRepository
	settleErr   error
	failSettles int
	settleCalls int
}

func newMockTopupRepository(tokens *mockTokenRepository, ledger *mockLedgerRepository) *mockTopupRepository {
	return &mockTopupRepository{
		topups: make(map[string]*models.TopupTransaction),
		tokens: tokens,
		ledger: ledger,
	}
}

func (m *mockTopupRepository) Create(ctx context.Context, topup *models.TopupTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *topup
	m.topups[topup.OrderID] = &copy
	return nil
}

func (m *mockTopupRepository) GetByID(ctx context.Context, id string) (*models.TopupTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.topups {
		if t.ID == id {
			copy := *t
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *mockTopupRepository) GetByOrderID(ctx context.Context, orderID string) (*models.TopupTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.topups[orderID]; ok {
		copy := *t
		return &copy, nil
	}
	return nil, nil
}

func (m *mockTopupRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.TopupTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.TopupTransaction
	for _, t := range m.topups {
		if t.UserID == userID {
			copy := *t
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (m *mockTopupRepository) List(ctx context.Context, status models.TopupStatus, limit, offset int) ([]*models.TopupTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.TopupTransaction
	for _, t := range m.topups {
		if status == "" || t.Status == status {
			copy := *t
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (m *mockTopupRepository) UpdateStatus(ctx context.Context, orderID string, status models.TopupStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.topups[orderID]
	if !ok {
		return errNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *mockTopupRepository) GetStalePending(ctx context.Context, before time.Time, limit int) ([]*models.TopupTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.TopupTransaction
	for _, t := range m.topups {
		if t.Status == models.TopupPending && t.CreatedAt.Before(before) {
			copy := *t
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (m *mockTopupRepository) Settle(ctx context.Context, orderID string, ledger *models.TokenTransaction) (*models.TopupTransaction, error) {
	m.mu.Lock()
	m.settleCalls++
	if m.failSettles > 0 {
		m.failSettles--
		err := m.settleErr
		m.mu.Unlock()
		return nil, err
	}
	t, ok := m.topups[orderID]
	if !ok {
		m.mu.Unlock()
		return nil, errNotFound
	}
	if t.CompletedAt != nil {
		copy := *t
		m.mu.Unlock()
		return &copy, errAlreadySettled
	}
	now := time.Now().UTC()
	t.Status = models.TopupSettlement
	t.CompletedAt = &now
	t.UpdatedAt = now
	settled := *t
	m.mu.Unlock()

	amount := settled.TotalDiamonds()
	if err := m.tokens.Credit(ctx, settled.UserID, amount); err != nil {
		m.tokens.setBalance(settled.UserID, amount)
	}
	account, _ := m.tokens.Get(ctx, settled.UserID)
	ledger.UserID = settled.UserID
	ledger.Amount = amount
	if account != nil {
		ledger.BalanceAfter = account.Tokens
	}
	_ = m.ledger.Create(ctx, ledger)
	return &settled, nil
}

// mockPlanRepository implements repository.TopupPlanRepository for testing
type mockPlanRepository struct {
	mu    sync.RWMutex
	plans map[string]*models.TopupPlan
}

func newMockPlanRepository() *mockPlanRepository {
	return &mockPlanRepository{plans: make(map[string]*models.TopupPlan)}
}

func (m *mockPlanRepository) Create(ctx context.Context, plan *models.TopupPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *plan
	m.plans[plan.ID] = &copy
	return nil
}

func (m *mockPlanRepository) GetByID(ctx context.Context, id string) (*models.TopupPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.plans[id]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, nil
}

func (m *mockPlanRepository) List(ctx context.Context, activeOnly bool) ([]*models.TopupPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.TopupPlan
	for _, p := range m.plans {
		if !activeOnly || p.Active {
			copy := *p
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *mockPlanRepository) Update(ctx context.Context, plan *models.TopupPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *plan
	m.plans[plan.ID] = &copy
	return nil
}

func (m *mockPlanRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.plans, id)
	return nil
}

// mockSettingsRepository implements repository.SettingsRepository for testing
type mockSettingsRepository struct {
	mu       sync.RWMutex
	settings map[string]*models.Setting
}

func newMockSettingsRepository() *mockSettingsRepository {
	return &mockSettingsRepository{settings: make(map[string]*models.Setting)}
}

func (m *mockSettingsRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.settings[key]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, nil
}

func (m *mockSettingsRepository) GetAll(ctx context.Context) ([]*models.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Setting
	for _, s := range m.settings {
		copy := *s
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *mockSettingsRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *setting
	m.settings[setting.Key] = &copy
	return nil
}

func (m *mockSettingsRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.settings, key)
	return nil
}

// mockAdminRepository implements repository.AdminRepository for testing
type mockAdminRepository struct {
	mu     sync.RWMutex
	admins map[string]*models.Admin
}

func newMockAdminRepository() *mockAdminRepository {
	return &mockAdminRepository{admins: make(map[string]*models.Admin)}
}

func (m *mockAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *admin
	m.admins[admin.UserID] = &copy
	return nil
}

func (m *mockAdminRepository) Get(ctx context.Context, userID string) (*models.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.admins[userID]; ok {
		copy := *a
		return &copy, nil
	}
	return nil, nil
}

func (m *mockAdminRepository) List(ctx context.Context) ([]*models.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Admin
	for _, a := range m.admins {
		copy := *a
		out = append(out, &copy)
	}
	return out, nil
}

func (m *mockAdminRepository) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.admins, userID)
	return nil
}
