package exports

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"stockdesk/infrastructure/audit"
	"stockdesk/infrastructure/sqlite"
	"stockdesk/models"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "exports-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := sqlite.ApplyMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func logSubmission(t *testing.T, db *sqlite.DB, kind string, referenceID int64) {
	t.Helper()
	auditSvc := audit.NewService()
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return auditSvc.WriteSubmission(ctx, tx, "ws-1", kind, referenceID, 2, 3, 15, nil)
	})
	if err != nil {
		t.Fatalf("write submission: %v", err)
	}
}

func TestLoadSubmissions_FilterAndOrder(t *testing.T) {
	db := openTestDB(t)
	logSubmission(t, db, models.SubmissionKindReceipt, 10)
	logSubmission(t, db, models.SubmissionKindDispatchReceive, 41)
	logSubmission(t, db, models.SubmissionKindReceipt, 11)

	all, err := LoadSubmissions(context.Background(), db, "", 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(all) != 3 || all[0].ReferenceID != 11 {
		t.Fatalf("expected newest first, got %+v", all)
	}

	receipts, err := LoadSubmissions(context.Background(), db, models.SubmissionKindReceipt, 0)
	if err != nil {
		t.Fatalf("load filtered: %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("expected 2 receipt entries, got %d", len(receipts))
	}
	for _, e := range receipts {
		if e.Kind != models.SubmissionKindReceipt {
			t.Fatalf("filter leaked kind %q", e.Kind)
		}
	}
}

func TestWriteSubmissionsCSV(t *testing.T) {
	entries := []models.SubmissionLog{
		{
			ID:          1,
			Workstation: "ws-1",
			Kind:        models.SubmissionKindReceipt,
			ReferenceID: 42,
			LocationID:  2,
			LineCount:   3,
			TotalQty:    15,
			CreatedAt:   time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC),
		},
	}
	var b strings.Builder
	if err := WriteSubmissionsCSV(&b, entries); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := b.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one record, got %d lines", len(lines))
	}
	if lines[0] != "id,created_at,workstation,kind,reference_id,location_id,line_count,total_qty" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if lines[1] != "1,2026-08-31T14:00:00Z,ws-1,grn,42,2,3,15" {
		t.Fatalf("unexpected record: %s", lines[1])
	}
}
