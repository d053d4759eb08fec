package sqlite

import (
	"context"
	"testing"

	"github.com/uptrace/bun"
)

func TestWithWriteTx_RollsBackOnError(t *testing.T) {
	db := openMigratedDB(t)
	ctx := context.Background()

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO receipt_drafts (workstation) VALUES ('ws-rollback')`); err != nil {
			return err
		}
		// Duplicate workstation violates the unique constraint and aborts the tx.
		_, err := tx.ExecContext(ctx, `INSERT INTO receipt_drafts (workstation) VALUES ('ws-rollback')`)
		return err
	})
	if err == nil {
		t.Fatalf("expected unique constraint error")
	}

	var count int
	if err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(1) FROM receipt_drafts WHERE workstation = 'ws-rollback'`).Scan(ctx, &count)
	}); err != nil {
		t.Fatalf("count drafts: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to remove partial insert, found %d rows", count)
	}
}

func TestWithReadTx_RejectsWrites(t *testing.T) {
	db := openMigratedDB(t)

	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO receipt_drafts (workstation) VALUES ('ws-readonly')`)
		return err
	})
	if err == nil {
		t.Fatalf("expected write on read handle to fail")
	}
}
