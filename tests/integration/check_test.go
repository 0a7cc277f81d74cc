package integration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/usecase"
)

func TestConsistencyCheck(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	d.db.TruncateAll(ctx)

	check := d.check()

	t.Run("empty ledger passes", func(t *testing.T) {
		if err := check.Check(ctx); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	d.db.CreateUser(ctx, "bob")
	alice := d.db.CreateUser(ctx, "alice")

	payments := d.payments("bob", usecase.AutoConfirm)
	if _, err := payments.Pay(ctx, usecase.PayInput{
		Recipient:       "alice",
		ConvertedAmount: decimal.RequireFromString("42.42"),
	}); err != nil {
		t.Fatalf("pay: %v", err)
	}

	t.Run("populated ledger passes", func(t *testing.T) {
		if err := check.Check(ctx); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("corrupted cached balance is detected and named", func(t *testing.T) {
		_, err := d.db.Pool.Exec(ctx,
			`UPDATE users SET balance = balance + 1 WHERE id = $1`, alice.ID)
		if err != nil {
			t.Fatal(err)
		}

		err = check.Check(ctx)
		if !errors.Is(err, domain.ErrIntegrity) {
			t.Fatalf("expected ErrIntegrity, got %v", err)
		}

		// Repair and verify the check recovers.
		_, err = d.db.Pool.Exec(ctx,
			`UPDATE users SET balance = balance - 1 WHERE id = $1`, alice.ID)
		if err != nil {
			t.Fatal(err)
		}
		if err := check.Check(ctx); err != nil {
			t.Errorf("check after repair: %v", err)
		}
	})

	t.Run("matching but shifted balances fail the per-user check", func(t *testing.T) {
		// Shift two balances in opposite directions: the zero sum still
		// holds, only the recomputation catches it.
		_, err := d.db.Pool.Exec(ctx, `UPDATE users SET balance = balance + 5 WHERE name = 'alice'`)
		if err != nil {
			t.Fatal(err)
		}
		_, err = d.db.Pool.Exec(ctx, `UPDATE users SET balance = balance - 5 WHERE name = 'bob'`)
		if err != nil {
			t.Fatal(err)
		}

		err = check.Check(ctx)
		if !errors.Is(err, domain.ErrIntegrity) {
			t.Fatalf("expected ErrIntegrity, got %v", err)
		}
		if !strings.Contains(err.Error(), "alice") && !strings.Contains(err.Error(), "bob") {
			t.Errorf("error should name a user: %v", err)
		}
	})
}
