package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/infrastructure/metrics"
)

// PaymentUseCase handles transaction creation and tagging on behalf of the
// configured current user.
type PaymentUseCase struct {
	txManager    TransactionManager
	userRepo     UserRepository
	currencyRepo CurrencyRepository
	agentRepo    AgentRepository
	tagRepo      TagRepository
	txnRepo      TransactionRepository
	confirm      ConfirmFunc
	currentUser  string
	logger       zerolog.Logger
	metrics      *metrics.Metrics
}

// NewPaymentUseCase creates a new PaymentUseCase. A nil confirm defaults to
// auto-confirm.
func NewPaymentUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	currencyRepo CurrencyRepository,
	agentRepo AgentRepository,
	tagRepo TagRepository,
	txnRepo TransactionRepository,
	confirm ConfirmFunc,
	currentUser string,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *PaymentUseCase {
	if confirm == nil {
		confirm = AutoConfirm
	}

	return &PaymentUseCase{
		txManager:    txManager,
		userRepo:     userRepo,
		currencyRepo: currencyRepo,
		agentRepo:    agentRepo,
		tagRepo:      tagRepo,
		txnRepo:      txnRepo,
		confirm:      confirm,
		currentUser:  currentUser,
		logger:       logger,
		metrics:      m,
	}
}

// PayInput represents input for creating a payment.
type PayInput struct {
	Recipient        string
	ConvertedAmount  decimal.Decimal
	Due              *time.Time
	OriginalCurrency *string
	OriginalAmount   *decimal.Decimal
	Agent            *string
	Note             *string
	TagPaths         []string
}

// Pay records a transaction from the current user to the recipient. A
// negative amount flips the direction and stores the absolute value, so a
// reversed payment needs no separate API.
func (uc *PaymentUseCase) Pay(ctx context.Context, input PayInput) (int64, error) {
	id, err := uc.pay(ctx, input)
	if err != nil {
		uc.metrics.PaymentErrors.WithLabelValues(errKind(err)).Inc()
		return 0, err
	}

	uc.metrics.PaymentsCreated.Inc()

	return id, nil
}

func (uc *PaymentUseCase) pay(ctx context.Context, input PayInput) (int64, error) {
	recipientName, err := domain.SanitizeUserName(input.Recipient)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()

	due := now
	if input.Due != nil {
		due = input.Due.UTC()
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	sender, err := uc.userRepo.GetByName(ctx, tx, uc.currentUser)
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("%w: current user does not exist in the database", domain.ErrNotFound)
		}
		return 0, err
	}

	recipient, err := uc.userRepo.GetByName(ctx, tx, recipientName)
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("%w: recipient user does not exist", domain.ErrNotFound)
		}
		return 0, err
	}

	// The schema checks this too, but an engine check gives a friendlier
	// error than a constraint failure.
	if sender.ID == recipient.ID {
		return 0, fmt.Errorf("%w: recipient must not be the same as the current user", domain.ErrValidation)
	}

	var currencyID *int64
	if input.OriginalCurrency != nil {
		currency, err := uc.currencyRepo.GetByCode(ctx, tx, *input.OriginalCurrency)
		if err != nil {
			return 0, err
		}
		currencyID = &currency.ID
	}

	var agentID *int64
	if input.Agent != nil {
		agent, err := getOrConfirmAgent(ctx, tx, uc.agentRepo, uc.confirm, *input.Agent)
		if err != nil {
			return 0, err
		}
		agentID = &agent.ID
	}

	tagIDs, err := uc.resolveOrConfirmTags(ctx, tx, input.TagPaths)
	if err != nil {
		return 0, err
	}

	fromID, toID := sender.ID, recipient.ID
	amount := input.ConvertedAmount
	if amount.IsNegative() {
		fromID, toID = toID, fromID
		amount = amount.Abs()
	}

	var originalAmount *decimal.Decimal
	if input.OriginalAmount != nil {
		abs := input.OriginalAmount.Abs()
		originalAmount = &abs
	}

	txn := &domain.Transaction{
		UserFromID:         fromID,
		UserToID:           toID,
		UserCreatedID:      sender.ID,
		OriginalAmount:     originalAmount,
		OriginalCurrencyID: currencyID,
		ConvertedAmount:    amount,
		AgentID:            agentID,
		Note:               input.Note,
		DtCreatedUTC:       now,
		DtDueUTC:           due,
	}

	if err := txn.Validate(); err != nil {
		return 0, err
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return 0, err
	}

	for _, tagID := range tagIDs {
		if err := uc.tagRepo.AddTransactionTag(ctx, tx, txn.ID, tagID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	uc.logger.Info().
		Int64("transaction_id", txn.ID).
		Str("recipient", recipientName).
		Str("amount", amount.String()).
		Msg("payment recorded")

	return txn.ID, nil
}

// AddTags associates every resolved tag with every listed transaction.
// Missing tag paths are created after confirmation; re-adding an existing
// association is a no-op.
func (uc *PaymentUseCase) AddTags(ctx context.Context, transactionIDs []int64, tagPaths []string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tagIDs, err := uc.resolveOrConfirmTags(ctx, tx, tagPaths)
	if err != nil {
		return err
	}

	for _, txnID := range transactionIDs {
		for _, tagID := range tagIDs {
			if err := uc.tagRepo.AddTransactionTag(ctx, tx, txnID, tagID); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

// RemoveTags removes tag associations. Tags are never auto-created here; a
// missing path is an error. Removing an absent association is a no-op.
func (uc *PaymentUseCase) RemoveTags(ctx context.Context, transactionIDs []int64, tagPaths []string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var tagIDs []int64
	for _, path := range tagPaths {
		tag, err := resolveTagPath(ctx, tx, uc.tagRepo, path)
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	for _, txnID := range transactionIDs {
		for _, tagID := range tagIDs {
			if err := uc.tagRepo.RemoveTransactionTag(ctx, tx, txnID, tagID); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

// ImportRow is one row of a batch import.
type ImportRow struct {
	Amount decimal.Decimal
	Due    time.Time
	Note   string
}

// ImportBatch imports transactions between two users as a single unit of
// work. The sign of each amount picks the direction: a positive amount
// increases user1's balance, a negative one decreases it. The whole batch is
// confirmed before commit, showing the row count and user1's net delta.
func (uc *PaymentUseCase) ImportBatch(ctx context.Context, rows []ImportRow, user1Name, user2Name, agentName string) error {
	user1Name, err := domain.SanitizeUserName(user1Name)
	if err != nil {
		return err
	}
	user2Name, err = domain.SanitizeUserName(user2Name)
	if err != nil {
		return err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	agent, err := getOrConfirmAgent(ctx, tx, uc.agentRepo, uc.confirm, agentName)
	if err != nil {
		return err
	}

	user1, err := uc.userRepo.GetByName(ctx, tx, user1Name)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: user1 (%s) does not exist", domain.ErrNotFound, user1Name)
		}
		return err
	}

	user2, err := uc.userRepo.GetByName(ctx, tx, user2Name)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: user2 (%s) does not exist", domain.ErrNotFound, user2Name)
		}
		return err
	}

	now := time.Now().UTC()
	user1Delta := decimal.Zero
	count := 0

	for _, row := range rows {
		uc.logger.Debug().Str("amount", row.Amount.String()).Time("due", row.Due).Msg("import row")

		fromID, toID := user1.ID, user2.ID
		if row.Amount.IsPositive() {
			fromID, toID = user2.ID, user1.ID
		}

		var note *string
		if row.Note != "" {
			n := row.Note
			note = &n
		}

		txn := &domain.Transaction{
			UserFromID:      fromID,
			UserToID:        toID,
			UserCreatedID:   fromID,
			ConvertedAmount: row.Amount.Abs(),
			AgentID:         &agent.ID,
			Note:            note,
			DtCreatedUTC:    now,
			DtDueUTC:        row.Due.UTC(),
		}

		if err := txn.Validate(); err != nil {
			return err
		}

		if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
			return err
		}

		user1Delta = user1Delta.Add(row.Amount)
		count++
	}

	question := fmt.Sprintf("%d transactions imported, final balance difference for user1: %s. Proceed?",
		count, user1Delta.String())
	if !uc.confirm(question) {
		return confirmationDeclined("import cancelled")
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	uc.metrics.ImportedRows.Add(float64(count))
	uc.logger.Info().Int("rows", count).Str("user1_delta", user1Delta.String()).Msg("batch imported")

	return nil
}

// History returns the transactions the current user participates in, joined
// with user, currency and agent names.
func (uc *PaymentUseCase) History(ctx context.Context) ([]*domain.TransactionRecord, error) {
	me, err := uc.userRepo.GetByName(ctx, nil, uc.currentUser)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: current user does not exist in the database", domain.ErrNotFound)
		}
		return nil, err
	}

	return uc.txnRepo.ListByUser(ctx, me.ID)
}

func (uc *PaymentUseCase) resolveOrConfirmTags(ctx context.Context, tx Transaction, paths []string) ([]int64, error) {
	var ids []int64
	for _, path := range paths {
		tag, err := resolveTagPath(ctx, tx, uc.tagRepo, path)
		if err != nil {
			if !isNotFound(err) {
				return nil, err
			}
			if !uc.confirm("Tag " + path + " does not exist. Create?") {
				return nil, confirmationDeclined("tag " + path + " does not exist")
			}
			tag, err = ensureTagPath(ctx, tx, uc.tagRepo, path)
			if err != nil {
				return nil, err
			}
		}
		ids = append(ids, tag.ID)
	}

	return ids, nil
}
