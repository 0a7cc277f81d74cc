package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mpay/mpay/internal/domain"
)

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, tx Transaction, user *domain.User) error
	GetByName(ctx context.Context, tx Transaction, name string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

// CurrencyRepository defines data access for currencies.
type CurrencyRepository interface {
	GetByCode(ctx context.Context, tx Transaction, code string) (*domain.Currency, error)
}

// TagRepository defines data access for the tag forest and for
// transaction-tag associations.
type TagRepository interface {
	Create(ctx context.Context, tx Transaction, tag *domain.Tag) error
	// GetByNameAndParent resolves one step of a hierarchical walk. A nil
	// parentID matches root tags only.
	GetByNameAndParent(ctx context.Context, tx Transaction, name string, parentID *int64) (*domain.Tag, error)
	Delete(ctx context.Context, tx Transaction, id int64) error
	List(ctx context.Context) ([]*domain.Tag, error)
	// AddTransactionTag and RemoveTransactionTag are idempotent.
	AddTransactionTag(ctx context.Context, tx Transaction, transactionID, tagID int64) error
	RemoveTransactionTag(ctx context.Context, tx Transaction, transactionID, tagID int64) error
}

// AgentRepository defines data access for agents.
type AgentRepository interface {
	Create(ctx context.Context, tx Transaction, agent *domain.Agent) error
	GetByName(ctx context.Context, tx Transaction, name string) (*domain.Agent, error)
}

// TransactionRepository defines data access for transactions. Balance
// maintenance rides on the store triggers, within the same unit of work as
// each write.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	Delete(ctx context.Context, tx Transaction, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]*domain.TransactionRecord, error)
}

// OrderRepository defines data access for standing orders.
type OrderRepository interface {
	Create(ctx context.Context, tx Transaction, order *domain.StandingOrder) error
	GetByNameAndSender(ctx context.Context, tx Transaction, name string, userFromID int64) (*domain.StandingOrder, error)
	// ListDueIDs returns ids of active orders with dt_next_utc strictly
	// before now.
	ListDueIDs(ctx context.Context, now time.Time) ([]int64, error)
	// GetByIDForUpdate locks the order row for the duration of the
	// enclosing unit of work.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.StandingOrder, error)
	UpdateNext(ctx context.Context, tx Transaction, id int64, next *time.Time) error
	List(ctx context.Context) ([]*domain.OrderRecord, error)
}

// LedgerRepository defines the read-back queries used by the consistency
// checker.
type LedgerRepository interface {
	// OrphanedRows scans every foreign key of the schema for dangling
	// references and describes each violation found.
	OrphanedRows(ctx context.Context) ([]string, error)
	// SumBalances returns the sum of all user balances and the user count.
	SumBalances(ctx context.Context) (decimal.Decimal, int64, error)
	// BalanceChecks recomputes every user's balance from the transaction
	// table, independently of the cached column.
	BalanceChecks(ctx context.Context) ([]domain.BalanceCheck, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// ConfirmFunc asks the caller to sign off on a destructive or entity-creating
// decision. It blocks until answered.
type ConfirmFunc func(question string) bool

// AutoConfirm answers yes to every question. It is the default when the
// caller does not supply a ConfirmFunc.
func AutoConfirm(string) bool { return true }
