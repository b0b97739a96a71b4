package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajaflow/caja/internal/domain"
)

// MockMovementRepository is a mock implementation of usecase.MovementRepository.
type MockMovementRepository struct {
	mu        sync.RWMutex
	movements map[string]*domain.Movement
	nextSeq   int64

	InsertFunc                  func(ctx context.Context, movement *domain.Movement) error
	UpdateFunc                  func(ctx context.Context, movement *domain.Movement) error
	UpdateVerificationStateFunc func(ctx context.Context, id string, state domain.VerificationState, updatedAt time.Time) error
	UpdateNotificationRefsFunc  func(ctx context.Context, id string, refs domain.NotificationRefs) error
	GetByIDFunc                 func(ctx context.Context, id string) (*domain.Movement, error)
	ListFunc                    func(ctx context.Context, filter domain.MovementFilter) ([]*domain.Movement, error)
	ListAllFunc                 func(ctx context.Context) ([]*domain.Movement, error)
	AggregateStatsFunc          func(ctx context.Context) (*domain.Stats, error)
}

func NewMockMovementRepository() *MockMovementRepository {
	return &MockMovementRepository{
		movements: make(map[string]*domain.Movement),
	}
}

func (m *MockMovementRepository) Insert(ctx context.Context, movement *domain.Movement) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, movement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSeq++
	movement.Seq = m.nextSeq
	cp := *movement
	m.movements[movement.ID] = &cp
	return nil
}

func (m *MockMovementRepository) Update(ctx context.Context, movement *domain.Movement) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, movement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.movements[movement.ID]; !ok {
		return domain.ErrMovementNotFound
	}
	cp := *movement
	m.movements[movement.ID] = &cp
	return nil
}

func (m *MockMovementRepository) UpdateVerificationState(ctx context.Context, id string, state domain.VerificationState, updatedAt time.Time) error {
	if m.UpdateVerificationStateFunc != nil {
		return m.UpdateVerificationStateFunc(ctx, id, state, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	movement, ok := m.movements[id]
	if !ok {
		return domain.ErrMovementNotFound
	}
	movement.VerificationState = state
	movement.UpdatedAt = updatedAt
	return nil
}

func (m *MockMovementRepository) UpdateNotificationRefs(ctx context.Context, id string, refs domain.NotificationRefs) error {
	if m.UpdateNotificationRefsFunc != nil {
		return m.UpdateNotificationRefsFunc(ctx, id, refs)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	movement, ok := m.movements[id]
	if !ok {
		return domain.ErrMovementNotFound
	}
	movement.ExternalMessageRef = refs.MessageRef
	movement.ExternalThreadRef = refs.ThreadRef
	return nil
}

func (m *MockMovementRepository) GetByID(ctx context.Context, id string) (*domain.Movement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if movement, ok := m.movements[id]; ok {
		cp := *movement
		return &cp, nil
	}
	return nil, domain.ErrMovementNotFound
}

func (m *MockMovementRepository) List(ctx context.Context, filter domain.MovementFilter) ([]*domain.Movement, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return m.ListAll(ctx)
}

func (m *MockMovementRepository) ListAll(ctx context.Context) ([]*domain.Movement, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	movements := make([]*domain.Movement, 0, len(m.movements))
	for _, movement := range m.movements {
		cp := *movement
		movements = append(movements, &cp)
	}
	return movements, nil
}

func (m *MockMovementRepository) AggregateStats(ctx context.Context) (*domain.Stats, error) {
	if m.AggregateStatsFunc != nil {
		return m.AggregateStatsFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &domain.Stats{
		IncomeTotal:  decimal.Zero,
		ExpenseTotal: decimal.Zero,
		Balance:      decimal.Zero,
	}
	for _, movement := range m.movements {
		stats.TotalCount++
		switch movement.Kind {
		case domain.KindIncome:
			stats.IncomeCount++
			stats.IncomeTotal = stats.IncomeTotal.Add(movement.Amount)
		case domain.KindExpense:
			stats.ExpenseCount++
			stats.ExpenseTotal = stats.ExpenseTotal.Add(movement.Amount)
		}
	}
	stats.Balance = stats.IncomeTotal.Sub(stats.ExpenseTotal)
	return stats, nil
}

// MockUserRepository is a mock implementation of usecase.UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	UpdateFunc     func(ctx context.Context, user *domain.User) error
	ListFunc       func(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		cp := *user
		users = append(users, &cp)
	}
	return users, nil
}

// MockNotifier is a mock implementation of usecase.Notifier that records
// every dispatch.
type MockNotifier struct {
	mu sync.Mutex

	CreatedCalls   []string
	VerifiedCalls  []string
	RetractedCalls []string
	// Calls records dispatch order across all three endpoints.
	Calls []string

	MovementCreatedFunc   func(ctx context.Context, movement *domain.Movement, balance decimal.Decimal) (domain.NotificationRefs, error)
	MovementVerifiedFunc  func(ctx context.Context, movement *domain.Movement) error
	MovementRetractedFunc func(ctx context.Context, movement *domain.Movement) error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) MovementCreated(ctx context.Context, movement *domain.Movement, balance decimal.Decimal) (domain.NotificationRefs, error) {
	m.record("created", movement.ID)
	if m.MovementCreatedFunc != nil {
		return m.MovementCreatedFunc(ctx, movement, balance)
	}
	return domain.NotificationRefs{}, nil
}

func (m *MockNotifier) MovementVerified(ctx context.Context, movement *domain.Movement) error {
	m.record("verified", movement.ID)
	if m.MovementVerifiedFunc != nil {
		return m.MovementVerifiedFunc(ctx, movement)
	}
	return nil
}

func (m *MockNotifier) MovementRetracted(ctx context.Context, movement *domain.Movement) error {
	m.record("retracted", movement.ID)
	if m.MovementRetractedFunc != nil {
		return m.MovementRetractedFunc(ctx, movement)
	}
	return nil
}

func (m *MockNotifier) record(kind, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch kind {
	case "created":
		m.CreatedCalls = append(m.CreatedCalls, id)
	case "verified":
		m.VerifiedCalls = append(m.VerifiedCalls, id)
	case "retracted":
		m.RetractedCalls = append(m.RetractedCalls, id)
	}
	m.Calls = append(m.Calls, kind)
}

// MockCache is a mock implementation of usecase.Cache.
type MockCache struct {
	mu      sync.RWMutex
	entries map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error

	Deletes int
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[key], nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	m.Deletes++
	return nil
}

// MockIDGenerator is a mock implementation of usecase.IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "test-id-" + strconv.Itoa(m.counter)
}

// MockReceiptStorage is a mock implementation of usecase.ReceiptStorage.
type MockReceiptStorage struct {
	StoreFunc func(ctx context.Context, key string, data []byte, contentType string) (string, error)

	StoredKeys []string
}

func NewMockReceiptStorage() *MockReceiptStorage {
	return &MockReceiptStorage{}
}

func (m *MockReceiptStorage) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.StoredKeys = append(m.StoredKeys, key)
	if m.StoreFunc != nil {
		return m.StoreFunc(ctx, key, data, contentType)
	}
	return "https://storage.example.com/" + key, nil
}

// MockReceiptProcessor is a mock implementation of usecase.ReceiptProcessor.
type MockReceiptProcessor struct {
	NormalizeFunc func(data []byte) ([]byte, string, error)
}

func NewMockReceiptProcessor() *MockReceiptProcessor {
	return &MockReceiptProcessor{}
}

func (m *MockReceiptProcessor) Normalize(data []byte) ([]byte, string, error) {
	if m.NormalizeFunc != nil {
		return m.NormalizeFunc(data)
	}
	return data, "image/jpeg", nil
}
