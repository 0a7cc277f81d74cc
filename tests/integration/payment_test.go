package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/usecase"
)

func TestPaymentFlow(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	d.db.TruncateAll(ctx)

	bob := d.db.CreateUser(ctx, "bob")
	alice := d.db.CreateUser(ctx, "alice")

	payments := d.payments("bob", usecase.AutoConfirm)

	note := "lunch"
	agent := "cafe"
	id, err := payments.Pay(ctx, usecase.PayInput{
		Recipient:       "alice",
		ConvertedAmount: decimal.RequireFromString("12.30"),
		Agent:           &agent,
		Note:            &note,
		TagPaths:        []string{"food/lunch"},
	})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}

	// The insert trigger maintains both cached balances.
	if got := d.db.Balance(ctx, bob.ID); !got.Equal(decimal.RequireFromString("-12.30")) {
		t.Errorf("bob balance = %s, want -12.30", got)
	}
	if got := d.db.Balance(ctx, alice.ID); !got.Equal(decimal.RequireFromString("12.30")) {
		t.Errorf("alice balance = %s, want 12.30", got)
	}

	records, err := payments.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.ID != id || rec.UserFrom != "bob" || rec.UserTo != "alice" {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.Agent == nil || *rec.Agent != "cafe" {
		t.Error("agent name missing from the record")
	}
	if len(rec.Tags) != 1 || rec.Tags[0] != "lunch" {
		t.Errorf("tags = %v, want [lunch]", rec.Tags)
	}

	// The delete trigger reverses the effect.
	if err := d.txnRepo.Delete(ctx, nil, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := d.db.Balance(ctx, bob.ID); !got.IsZero() {
		t.Errorf("bob balance after delete = %s, want 0", got)
	}
	if got := d.db.Balance(ctx, alice.ID); !got.IsZero() {
		t.Errorf("alice balance after delete = %s, want 0", got)
	}
}

func TestBalanceTriggersOnDirectUpdate(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	d.db.TruncateAll(ctx)

	bob := d.db.CreateUser(ctx, "bob")
	alice := d.db.CreateUser(ctx, "alice")

	payments := d.payments("bob", usecase.AutoConfirm)
	id, err := payments.Pay(ctx, usecase.PayInput{
		Recipient:       "alice",
		ConvertedAmount: decimal.RequireFromString("10.00"),
	})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}

	// The engine never updates transactions, but the trigger still keeps
	// balances right when someone does it with direct SQL.
	_, err = d.db.Pool.Exec(ctx,
		`UPDATE transactions SET converted_amount = 4.000 WHERE id = $1`, id)
	if err != nil {
		t.Fatalf("direct update: %v", err)
	}

	if got := d.db.Balance(ctx, bob.ID); !got.Equal(decimal.RequireFromString("-4")) {
		t.Errorf("bob balance = %s, want -4", got)
	}
	if got := d.db.Balance(ctx, alice.ID); !got.Equal(decimal.RequireFromString("4")) {
		t.Errorf("alice balance = %s, want 4", got)
	}

	if err := d.check().Check(ctx); err != nil {
		t.Errorf("ledger should still be consistent: %v", err)
	}
}

func TestPaymentRollbackOnDecline(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	d.db.TruncateAll(ctx)

	bob := d.db.CreateUser(ctx, "bob")
	d.db.CreateUser(ctx, "alice")

	decline := func(string) bool { return false }
	payments := d.payments("bob", decline)

	agent := "ghost"
	_, err := payments.Pay(ctx, usecase.PayInput{
		Recipient:       "alice",
		ConvertedAmount: decimal.NewFromInt(5),
		Agent:           &agent,
	})
	if !errors.Is(err, domain.ErrConfirmationDeclined) {
		t.Fatalf("expected ErrConfirmationDeclined, got %v", err)
	}

	if got := d.db.Balance(ctx, bob.ID); !got.IsZero() {
		t.Errorf("declined payment must leave balances untouched, got %s", got)
	}
	var agents int64
	if err := d.db.Pool.QueryRow(ctx, `SELECT count(*) FROM agents`).Scan(&agents); err != nil {
		t.Fatal(err)
	}
	if agents != 0 {
		t.Error("declined payment must roll the new agent back")
	}
}

func TestImportBatch(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	d.db.TruncateAll(ctx)

	bob := d.db.CreateUser(ctx, "bob")
	bank := d.db.CreateUser(ctx, "bank")

	payments := d.payments("bob", usecase.AutoConfirm)

	due := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rows := []usecase.ImportRow{
		{Amount: decimal.RequireFromString("100.00"), Due: due, Note: "salary"},
		{Amount: decimal.RequireFromString("-33.97"), Due: due.AddDate(0, 0, 1), Note: "rent"},
	}

	if err := payments.ImportBatch(ctx, rows, "bob", "bank", "bank-import"); err != nil {
		t.Fatalf("import: %v", err)
	}

	if got := d.db.Balance(ctx, bob.ID); !got.Equal(decimal.RequireFromString("66.03")) {
		t.Errorf("bob balance = %s, want 66.03", got)
	}
	if got := d.db.Balance(ctx, bank.ID); !got.Equal(decimal.RequireFromString("-66.03")) {
		t.Errorf("bank balance = %s, want -66.03", got)
	}

	if err := d.check().Check(ctx); err != nil {
		t.Errorf("check after import: %v", err)
	}
}

func TestSelfPaymentRejectedByEngineAndSchema(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	d.db.TruncateAll(ctx)

	bob := d.db.CreateUser(ctx, "bob")

	payments := d.payments("bob", usecase.AutoConfirm)
	_, err := payments.Pay(ctx, usecase.PayInput{
		Recipient:       "bob",
		ConvertedAmount: decimal.NewFromInt(1),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("engine: expected ErrValidation, got %v", err)
	}

	// The schema backstops the same invariant against direct SQL.
	_, err = d.db.Pool.Exec(ctx, `
		INSERT INTO transactions (user_from_id, user_to_id, user_created_id, converted_amount, dt_created_utc, dt_due_utc)
		VALUES ($1, $1, $1, 1, now(), now())
	`, bob.ID)
	if err == nil {
		t.Error("schema: self transaction should violate a check constraint")
	}
}
