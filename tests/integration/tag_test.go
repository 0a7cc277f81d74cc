package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/usecase"
)

func TestTagHierarchyAndCascade(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	d.db.TruncateAll(ctx)

	d.db.CreateUser(ctx, "bob")
	d.db.CreateUser(ctx, "alice")

	tags := d.tags()

	// Root tag2 and a/b/tag2 are unrelated tags.
	rootTag2, err := tags.CreateTag(ctx, "tag2", nil, nil)
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	nestedTag2, err := tags.CreateOrGetHierarchicalTag(ctx, "a/b/tag2")
	if err != nil {
		t.Fatalf("create hierarchical tag: %v", err)
	}
	if rootTag2.ID == nestedTag2.ID {
		t.Fatal("root tag2 and a/b/tag2 must be distinct")
	}

	// Duplicate root names are blocked by the partial unique index.
	if _, err := tags.CreateTag(ctx, "tag2", nil, nil); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate root, got %v", err)
	}

	payments := d.payments("bob", usecase.AutoConfirm)
	id, err := payments.Pay(ctx, usecase.PayInput{
		Recipient:       "alice",
		ConvertedAmount: decimal.NewFromInt(3),
		TagPaths:        []string{"a/b/tag2"},
	})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}

	// Deleting the tag drops the association but keeps the transaction.
	if err := tags.DeleteTag(ctx, "a/b/tag2"); err != nil {
		t.Fatalf("delete tag: %v", err)
	}

	var associations, transactions int64
	if err := d.db.Pool.QueryRow(ctx, `SELECT count(*) FROM transactions_tags WHERE transaction_id = $1`, id).Scan(&associations); err != nil {
		t.Fatal(err)
	}
	if associations != 0 {
		t.Error("association should be cascaded away")
	}
	if err := d.db.Pool.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE id = $1`, id).Scan(&transactions); err != nil {
		t.Fatal(err)
	}
	if transactions != 1 {
		t.Error("the transaction itself must survive")
	}

	// A tag with children cannot be deleted.
	if err := tags.DeleteTag(ctx, "a"); err == nil {
		t.Error("deleting a parent tag should fail on the child foreign key")
	}
}
