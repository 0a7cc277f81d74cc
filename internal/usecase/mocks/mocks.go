// Package mocks provides in-memory mock implementations of the usecase
// interfaces. Every method can be overridden via its Func field; the default
// behavior is a small in-memory store good enough for most tests.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/usecase"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*domain.User

	CreateFunc    func(ctx context.Context, tx usecase.Transaction, user *domain.User) error
	GetByNameFunc func(ctx context.Context, tx usecase.Transaction, name string) (*domain.User, error)
	ListFunc      func(ctx context.Context) ([]*domain.User, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[int64]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Name == user.Name {
			return domain.ErrConflict
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByName(ctx context.Context, tx usecase.Transaction, name string) (*domain.User, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, tx, name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var users []*domain.User
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

// MockCurrencyRepository is a mock implementation of CurrencyRepository. It
// starts out seeded with the default currency set.
type MockCurrencyRepository struct {
	mu         sync.RWMutex
	currencies map[string]*domain.Currency

	GetByCodeFunc func(ctx context.Context, tx usecase.Transaction, code string) (*domain.Currency, error)
}

func NewMockCurrencyRepository() *MockCurrencyRepository {
	m := &MockCurrencyRepository{
		currencies: make(map[string]*domain.Currency),
	}
	var id int64
	for code, name := range domain.DefaultCurrencies {
		id++
		n := name
		m.currencies[code] = &domain.Currency{ID: id, ISO4217: code, Name: &n}
	}
	return m
}

func (m *MockCurrencyRepository) GetByCode(ctx context.Context, tx usecase.Transaction, code string) (*domain.Currency, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, tx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.currencies[code]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

// MockTagRepository is a mock implementation of TagRepository.
type MockTagRepository struct {
	mu           sync.RWMutex
	nextID       int64
	tags         map[int64]*domain.Tag
	associations map[[2]int64]bool

	CreateFunc               func(ctx context.Context, tx usecase.Transaction, tag *domain.Tag) error
	GetByNameAndParentFunc   func(ctx context.Context, tx usecase.Transaction, name string, parentID *int64) (*domain.Tag, error)
	DeleteFunc               func(ctx context.Context, tx usecase.Transaction, id int64) error
	ListFunc                 func(ctx context.Context) ([]*domain.Tag, error)
	AddTransactionTagFunc    func(ctx context.Context, tx usecase.Transaction, transactionID, tagID int64) error
	RemoveTransactionTagFunc func(ctx context.Context, tx usecase.Transaction, transactionID, tagID int64) error
}

func NewMockTagRepository() *MockTagRepository {
	return &MockTagRepository{
		tags:         make(map[int64]*domain.Tag),
		associations: make(map[[2]int64]bool),
	}
}

func (m *MockTagRepository) Create(ctx context.Context, tx usecase.Transaction, tag *domain.Tag) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, tag)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tags {
		if t.Name == tag.Name && sameParent(t.ParentID, tag.ParentID) {
			return domain.ErrConflict
		}
	}
	m.nextID++
	tag.ID = m.nextID
	m.tags[tag.ID] = tag
	return nil
}

func (m *MockTagRepository) GetByNameAndParent(ctx context.Context, tx usecase.Transaction, name string, parentID *int64) (*domain.Tag, error) {
	if m.GetByNameAndParentFunc != nil {
		return m.GetByNameAndParentFunc(ctx, tx, name, parentID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tags {
		if t.Name == name && sameParent(t.ParentID, parentID) {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockTagRepository) Delete(ctx context.Context, tx usecase.Transaction, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tags[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.tags, id)
	for key := range m.associations {
		if key[1] == id {
			delete(m.associations, key)
		}
	}
	return nil
}

func (m *MockTagRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var tags []*domain.Tag
	for _, t := range m.tags {
		tags = append(tags, t)
	}
	return tags, nil
}

func (m *MockTagRepository) AddTransactionTag(ctx context.Context, tx usecase.Transaction, transactionID, tagID int64) error {
	if m.AddTransactionTagFunc != nil {
		return m.AddTransactionTagFunc(ctx, tx, transactionID, tagID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.associations[[2]int64{transactionID, tagID}] = true
	return nil
}

func (m *MockTagRepository) RemoveTransactionTag(ctx context.Context, tx usecase.Transaction, transactionID, tagID int64) error {
	if m.RemoveTransactionTagFunc != nil {
		return m.RemoveTransactionTagFunc(ctx, tx, transactionID, tagID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.associations, [2]int64{transactionID, tagID})
	return nil
}

// HasAssociation reports whether the transaction carries the tag. Test helper.
func (m *MockTagRepository) HasAssociation(transactionID, tagID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.associations[[2]int64{transactionID, tagID}]
}

// MockAgentRepository is a mock implementation of AgentRepository.
type MockAgentRepository struct {
	mu     sync.RWMutex
	nextID int64
	agents map[int64]*domain.Agent

	CreateFunc    func(ctx context.Context, tx usecase.Transaction, agent *domain.Agent) error
	GetByNameFunc func(ctx context.Context, tx usecase.Transaction, name string) (*domain.Agent, error)
}

func NewMockAgentRepository() *MockAgentRepository {
	return &MockAgentRepository{
		agents: make(map[int64]*domain.Agent),
	}
}

func (m *MockAgentRepository) Create(ctx context.Context, tx usecase.Transaction, agent *domain.Agent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, agent)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.agents {
		if a.Name == agent.Name {
			return domain.ErrConflict
		}
	}
	m.nextID++
	agent.ID = m.nextID
	m.agents[agent.ID] = agent
	return nil
}

func (m *MockAgentRepository) GetByName(ctx context.Context, tx usecase.Transaction, name string) (*domain.Agent, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, tx, name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.agents {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
// The default Create mirrors the store triggers by adjusting the balances in
// the given MockUserRepository, so balance-sensitive tests work unmodified.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	nextID       int64
	transactions map[int64]*domain.Transaction
	users        *MockUserRepository

	CreateFunc     func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	DeleteFunc     func(ctx context.Context, tx usecase.Transaction, id int64) error
	ListByUserFunc func(ctx context.Context, userID int64) ([]*domain.TransactionRecord, error)
}

// NewMockTransactionRepository creates the mock. users may be nil when the
// test does not care about balances.
func NewMockTransactionRepository(users *MockUserRepository) *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[int64]*domain.Transaction),
		users:        users,
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	m.nextID++
	txn.ID = m.nextID
	m.transactions[txn.ID] = txn
	m.mu.Unlock()

	if m.users != nil {
		m.users.mu.Lock()
		if from, ok := m.users.users[txn.UserFromID]; ok {
			from.Balance = from.Balance.Sub(txn.ConvertedAmount)
		}
		if to, ok := m.users.users[txn.UserToID]; ok {
			to.Balance = to.Balance.Add(txn.ConvertedAmount)
		}
		m.users.mu.Unlock()
	}
	return nil
}

func (m *MockTransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	txn, ok := m.transactions[id]
	if !ok {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(m.transactions, id)
	m.mu.Unlock()

	if m.users != nil {
		m.users.mu.Lock()
		if from, ok := m.users.users[txn.UserFromID]; ok {
			from.Balance = from.Balance.Add(txn.ConvertedAmount)
		}
		if to, ok := m.users.users[txn.UserToID]; ok {
			to.Balance = to.Balance.Sub(txn.ConvertedAmount)
		}
		m.users.mu.Unlock()
	}
	return nil
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.TransactionRecord, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var records []*domain.TransactionRecord
	for _, t := range m.transactions {
		if t.UserFromID == userID || t.UserToID == userID {
			records = append(records, &domain.TransactionRecord{
				ID:              t.ID,
				ConvertedAmount: t.ConvertedAmount,
				Note:            t.Note,
				DtCreatedUTC:    t.DtCreatedUTC,
				DtDueUTC:        t.DtDueUTC,
			})
		}
	}
	return records, nil
}

// All returns every stored transaction. Test helper.
func (m *MockTransactionRepository) All() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.Transaction
	for _, t := range m.transactions {
		txns = append(txns, t)
	}
	return txns
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]*domain.StandingOrder

	CreateFunc             func(ctx context.Context, tx usecase.Transaction, order *domain.StandingOrder) error
	GetByNameAndSenderFunc func(ctx context.Context, tx usecase.Transaction, name string, userFromID int64) (*domain.StandingOrder, error)
	ListDueIDsFunc         func(ctx context.Context, now time.Time) ([]int64, error)
	GetByIDForUpdateFunc   func(ctx context.Context, tx usecase.Transaction, id int64) (*domain.StandingOrder, error)
	UpdateNextFunc         func(ctx context.Context, tx usecase.Transaction, id int64, next *time.Time) error
	ListFunc               func(ctx context.Context) ([]*domain.OrderRecord, error)
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[int64]*domain.StandingOrder),
	}
}

func (m *MockOrderRepository) Create(ctx context.Context, tx usecase.Transaction, order *domain.StandingOrder) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.Name == order.Name && o.UserFromID == order.UserFromID {
			return domain.ErrConflict
		}
	}
	m.nextID++
	order.ID = m.nextID
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepository) GetByNameAndSender(ctx context.Context, tx usecase.Transaction, name string, userFromID int64) (*domain.StandingOrder, error) {
	if m.GetByNameAndSenderFunc != nil {
		return m.GetByNameAndSenderFunc(ctx, tx, name, userFromID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.Name == name && o.UserFromID == userFromID {
			return o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockOrderRepository) ListDueIDs(ctx context.Context, now time.Time) ([]int64, error) {
	if m.ListDueIDsFunc != nil {
		return m.ListDueIDsFunc(ctx, now)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []int64
	for _, o := range m.orders {
		if o.DtNextUTC != nil && o.DtNextUTC.Before(now) {
			ids = append(ids, o.ID)
		}
	}
	return ids, nil
}

func (m *MockOrderRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.StandingOrder, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockOrderRepository) UpdateNext(ctx context.Context, tx usecase.Transaction, id int64, next *time.Time) error {
	if m.UpdateNextFunc != nil {
		return m.UpdateNextFunc(ctx, tx, id, next)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.DtNextUTC = next
	return nil
}

func (m *MockOrderRepository) List(ctx context.Context) ([]*domain.OrderRecord, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var records []*domain.OrderRecord
	for _, o := range m.orders {
		records = append(records, &domain.OrderRecord{
			ID:           o.ID,
			Name:         o.Name,
			Amount:       o.Amount,
			Note:         o.Note,
			RRule:        o.RRule,
			DtNextUTC:    o.DtNextUTC,
			DtCreatedUTC: o.DtCreatedUTC,
		})
	}
	return records, nil
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	OrphanedRowsFunc  func(ctx context.Context) ([]string, error)
	SumBalancesFunc   func(ctx context.Context) (decimal.Decimal, int64, error)
	BalanceChecksFunc func(ctx context.Context) ([]domain.BalanceCheck, error)
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) OrphanedRows(ctx context.Context) ([]string, error) {
	if m.OrphanedRowsFunc != nil {
		return m.OrphanedRowsFunc(ctx)
	}
	return nil, nil
}

func (m *MockLedgerRepository) SumBalances(ctx context.Context) (decimal.Decimal, int64, error) {
	if m.SumBalancesFunc != nil {
		return m.SumBalancesFunc(ctx)
	}
	return decimal.Zero, 0, nil
}

func (m *MockLedgerRepository) BalanceChecks(ctx context.Context) ([]domain.BalanceCheck, error) {
	if m.BalanceChecksFunc != nil {
		return m.BalanceChecksFunc(ctx)
	}
	return nil, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
