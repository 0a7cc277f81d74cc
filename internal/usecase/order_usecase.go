package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/infrastructure/metrics"
	"github.com/mpay/mpay/internal/recurrence"
)

// OrderUseCase handles standing orders and the scheduler that materializes
// them into transactions.
type OrderUseCase struct {
	txManager TransactionManager
	userRepo  UserRepository
	orderRepo OrderRepository
	txnRepo   TransactionRepository
	confirm   ConfirmFunc
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewOrderUseCase creates a new OrderUseCase. A nil confirm defaults to
// auto-confirm.
func NewOrderUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	orderRepo OrderRepository,
	txnRepo TransactionRepository,
	confirm ConfirmFunc,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *OrderUseCase {
	if confirm == nil {
		confirm = AutoConfirm
	}

	return &OrderUseCase{
		txManager: txManager,
		userRepo:  userRepo,
		orderRepo: orderRepo,
		txnRepo:   txnRepo,
		confirm:   confirm,
		logger:    logger,
		metrics:   m,
	}
}

// CreateOrderInput represents input for creating a standing order.
type CreateOrderInput struct {
	Name      string
	Sender    string
	Recipient string
	Amount    decimal.Decimal
	RRule     string
	Note      *string
}

// CreateOrder creates a standing order. The amount must be strictly positive;
// unlike a one-off payment, a standing order has no direction flip. The rule
// is stored in canonical serialization and dt_next_utc is seeded with the
// rule's first occurrence.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.StandingOrder, error) {
	name, err := domain.SanitizeOrderName(input.Name)
	if err != nil {
		return nil, err
	}

	senderName, err := domain.SanitizeUserName(input.Sender)
	if err != nil {
		return nil, err
	}

	recipientName, err := domain.SanitizeUserName(input.Recipient)
	if err != nil {
		return nil, err
	}

	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: standing order amount must be positive, got %s",
			domain.ErrValidation, input.Amount.String())
	}

	rule, err := recurrence.Parse(input.RRule)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	first, ok := rule.First()
	if !ok {
		return nil, fmt.Errorf("%w: recurrence rule produces no occurrences", domain.ErrValidation)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	sender, err := uc.userRepo.GetByName(ctx, tx, senderName)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: sender user does not exist", domain.ErrNotFound)
		}
		return nil, err
	}

	recipient, err := uc.userRepo.GetByName(ctx, tx, recipientName)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: recipient user does not exist", domain.ErrNotFound)
		}
		return nil, err
	}

	order := &domain.StandingOrder{
		Name:         name,
		UserFromID:   sender.ID,
		UserToID:     recipient.ID,
		Amount:       input.Amount,
		Note:         input.Note,
		RRule:        rule.String(),
		DtNextUTC:    &first,
		DtCreatedUTC: time.Now().UTC(),
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := uc.orderRepo.Create(ctx, tx, order); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.OrdersCreated.Inc()
	uc.logger.Info().
		Str("order", name).
		Time("dt_next_utc", first).
		Msg("standing order created")

	return order, nil
}

// DisableOrder deactivates a standing order owned by the sender. Disabling is
// irreversible and is confirmed first. An already-disabled order reports
// success without prompting. The returned bool says whether the order is
// disabled when the call returns.
func (uc *OrderUseCase) DisableOrder(ctx context.Context, name, sender string) (bool, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	user, err := uc.userRepo.GetByName(ctx, tx, sender)
	if err != nil {
		if isNotFound(err) {
			return false, fmt.Errorf("%w: sender user does not exist", domain.ErrNotFound)
		}
		return false, err
	}

	order, err := uc.orderRepo.GetByNameAndSender(ctx, tx, name, user.ID)
	if err != nil {
		if isNotFound(err) {
			return false, fmt.Errorf("%w: standing order %q does not exist", domain.ErrNotFound, name)
		}
		return false, err
	}

	if !order.Active() {
		return true, nil
	}

	if !uc.confirm("This operation is irreversible. Proceed?") {
		return false, nil
	}

	if err := uc.orderRepo.UpdateNext(ctx, tx, order.ID, nil); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	uc.metrics.OrdersDisabled.Inc()
	uc.logger.Info().Str("order", name).Msg("standing order disabled")

	return true, nil
}

// ExecuteDueOrders materializes every active order whose dt_next_utc lies
// strictly before now. Each order is processed in its own unit of work under
// a row lock, so a crash mid-run loses at most the orders not yet committed
// and concurrent runs never double-fire an order. An order that missed
// several occurrences catches up with one transaction per occurrence.
func (uc *OrderUseCase) ExecuteDueOrders(ctx context.Context, now time.Time) error {
	now = now.UTC()

	ids, err := uc.orderRepo.ListDueIDs(ctx, now)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := uc.executeOrder(ctx, id, now); err != nil {
			return err
		}
	}

	return nil
}

func (uc *OrderUseCase) executeOrder(ctx context.Context, id int64, now time.Time) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	order, err := uc.orderRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if isNotFound(err) {
			// Disabled or deleted between the due scan and the lock.
			return nil
		}
		return err
	}

	if order.DtNextUTC == nil || !order.DtNextUTC.Before(now) {
		// Another run got here first.
		return nil
	}

	rule, err := recurrence.Parse(order.RRule)
	if err != nil {
		return fmt.Errorf("%w: stored rule of order %d no longer parses: %s",
			domain.ErrInternalInvariant, order.ID, err.Error())
	}

	created := 0
	dtNext := order.DtNextUTC.UTC()

	for !dtNext.After(now) {
		txn := &domain.Transaction{
			UserFromID:      order.UserFromID,
			UserToID:        order.UserToID,
			UserCreatedID:   order.UserFromID,
			ConvertedAmount: order.Amount,
			StandingOrderID: &order.ID,
			Note:            order.Note,
			DtCreatedUTC:    now,
			DtDueUTC:        dtNext,
		}

		if err := txn.Validate(); err != nil {
			return err
		}

		if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
			return err
		}
		created++

		next, ok := rule.NextAfter(dtNext)
		if !ok {
			uc.logger.Info().Str("order", order.Name).Msg("standing order expired")
			uc.metrics.OrdersExpired.Inc()

			if err := uc.orderRepo.UpdateNext(ctx, tx, order.ID, nil); err != nil {
				return err
			}
			if err := tx.Commit(ctx); err != nil {
				return err
			}
			uc.metrics.OrderTransactions.Add(float64(created))
			return nil
		}

		if !next.After(dtNext) {
			return fmt.Errorf("%w: rule of order %d produced a non-advancing occurrence %s after %s",
				domain.ErrInternalInvariant, order.ID, next.Format(time.RFC3339), dtNext.Format(time.RFC3339))
		}

		dtNext = next
	}

	if err := uc.orderRepo.UpdateNext(ctx, tx, order.ID, &dtNext); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	uc.metrics.OrderTransactions.Add(float64(created))
	uc.logger.Info().
		Str("order", order.Name).
		Int("transactions", created).
		Time("dt_next_utc", dtNext).
		Msg("standing order executed")

	return nil
}

// ListOrders returns all standing orders joined with user names, disabled
// ones included.
func (uc *OrderUseCase) ListOrders(ctx context.Context) ([]*domain.OrderRecord, error) {
	return uc.orderRepo.List(ctx)
}
