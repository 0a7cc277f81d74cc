package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mpay/mpay/internal/usecase"
)

func TestStandingOrderCatchUp(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	d.db.TruncateAll(ctx)

	alice := d.db.CreateUser(ctx, "alice")
	test2 := d.db.CreateUser(ctx, "test2")

	orders := d.orders(usecase.AutoConfirm)

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -4).Truncate(24 * time.Hour)

	order, err := orders.CreateOrder(ctx, usecase.CreateOrderInput{
		Name:      "daily",
		Sender:    "alice",
		Recipient: "test2",
		Amount:    decimal.RequireFromString("2.01"),
		RRule:     fmt.Sprintf("DTSTART:%s\nRRULE:FREQ=DAILY", start.Format("20060102T150405Z")),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := orders.ExecuteDueOrders(ctx, now); err != nil {
		t.Fatalf("execute: %v", err)
	}

	// Five occurrences: four missed days plus today.
	var count int64
	err = d.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM transactions WHERE standing_order_id = $1`, order.ID).Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("expected 5 transactions, got %d", count)
	}

	if got := d.db.Balance(ctx, test2.ID); !got.Equal(decimal.RequireFromString("10.05")) {
		t.Errorf("test2 balance = %s, want 10.05", got)
	}
	if got := d.db.Balance(ctx, alice.ID); !got.Equal(decimal.RequireFromString("-10.05")) {
		t.Errorf("alice balance = %s, want -10.05", got)
	}

	fresh, err := d.orderRepo.GetByNameAndSender(ctx, nil, "daily", alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	wantNext := start.AddDate(0, 0, 5)
	if fresh.DtNextUTC == nil || !fresh.DtNextUTC.Equal(wantNext) {
		t.Errorf("dt_next = %v, want %v", fresh.DtNextUTC, wantNext)
	}

	// Re-running immediately changes nothing.
	if err := orders.ExecuteDueOrders(ctx, now); err != nil {
		t.Fatalf("re-execute: %v", err)
	}
	err = d.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM transactions WHERE standing_order_id = $1`, order.ID).Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("re-run must not double-fire, got %d transactions", count)
	}

	if err := d.check().Check(ctx); err != nil {
		t.Errorf("check after orders: %v", err)
	}
}

func TestStandingOrderExpiry(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	d.db.TruncateAll(ctx)

	alice := d.db.CreateUser(ctx, "alice")
	d.db.CreateUser(ctx, "bob")

	orders := d.orders(usecase.AutoConfirm)

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -10).Truncate(24 * time.Hour)

	order, err := orders.CreateOrder(ctx, usecase.CreateOrderInput{
		Name:      "short",
		Sender:    "alice",
		Recipient: "bob",
		Amount:    decimal.NewFromInt(1),
		RRule:     fmt.Sprintf("DTSTART:%s\nRRULE:FREQ=DAILY;COUNT=3", start.Format("20060102T150405Z")),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := orders.ExecuteDueOrders(ctx, now); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var count int64
	err = d.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM transactions WHERE standing_order_id = $1`, order.ID).Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("expected 3 transactions, got %d", count)
	}

	fresh, err := d.orderRepo.GetByNameAndSender(ctx, nil, "short", alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Active() {
		t.Error("exhausted order must be disabled")
	}
}

func TestDisableOrder(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	d.db.TruncateAll(ctx)

	alice := d.db.CreateUser(ctx, "alice")
	d.db.CreateUser(ctx, "bob")

	orders := d.orders(usecase.AutoConfirm)

	start := time.Now().UTC().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	if _, err := orders.CreateOrder(ctx, usecase.CreateOrderInput{
		Name:      "rent",
		Sender:    "alice",
		Recipient: "bob",
		Amount:    decimal.NewFromInt(500),
		RRule:     fmt.Sprintf("DTSTART:%s\nRRULE:FREQ=MONTHLY", start.Format("20060102T150405Z")),
	}); err != nil {
		t.Fatalf("create order: %v", err)
	}

	disabled, err := orders.DisableOrder(ctx, "rent", "alice")
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	if !disabled {
		t.Fatal("expected disabled=true")
	}

	fresh, err := d.orderRepo.GetByNameAndSender(ctx, nil, "rent", alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Active() {
		t.Error("order should be disabled")
	}

	// Disabled orders never fire.
	if err := orders.ExecuteDueOrders(ctx, time.Now().UTC().AddDate(1, 0, 0)); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var count int64
	if err := d.db.Pool.QueryRow(ctx, `SELECT count(*) FROM transactions`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("disabled order fired %d transactions", count)
	}
}
