package bulk

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"stockdesk/infrastructure/sqlite"
	"stockdesk/models"
)

// LoadDraft returns the workstation's draft and its ordered lines,
// creating a draft with one empty row on first use.
func LoadDraft(ctx context.Context, db *sqlite.DB, workstation string) (models.ReceiptDraft, []models.DraftLine, error) {
	var draft models.ReceiptDraft
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&draft).Where("workstation = ?", workstation).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		if draft, err = createDraft(ctx, db, workstation); err != nil {
			return draft, nil, err
		}
	} else if err != nil {
		return draft, nil, err
	}

	lines := make([]models.DraftLine, 0)
	err = db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&lines).
			Where("draft_id = ?", draft.ID).
			Order("position ASC").
			Scan(ctx)
	})
	if err != nil {
		return draft, nil, err
	}

	// The editor never renders zero rows.
	if len(lines) == 0 {
		lines = []models.DraftLine{NewEmptyLine(draft.ID, 0)}
		if err := SaveLines(ctx, db, draft.ID, lines); err != nil {
			return draft, nil, err
		}
	}
	return draft, lines, nil
}

func createDraft(ctx context.Context, db *sqlite.DB, workstation string) (models.ReceiptDraft, error) {
	draft := models.ReceiptDraft{Workstation: workstation}
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&draft).Exec(ctx); err != nil {
			return err
		}
		line := NewEmptyLine(draft.ID, 0)
		_, err := tx.NewInsert().Model(&line).Exec(ctx)
		return err
	})
	return draft, err
}

// SaveLines replaces the draft's rows with the given set, renumbered.
func SaveLines(ctx context.Context, db *sqlite.DB, draftID int64, lines []models.DraftLine) error {
	lines = renumber(lines)
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return saveLinesTx(ctx, tx, draftID, lines)
	})
}

func saveLinesTx(ctx context.Context, tx bun.Tx, draftID int64, lines []models.DraftLine) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM draft_lines WHERE draft_id = ?`, draftID); err != nil {
		return err
	}
	for i := range lines {
		lines[i].ID = 0
		lines[i].DraftID = draftID
		if _, err := tx.NewInsert().Model(&lines[i]).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SaveHeader persists the receipt header fields.
func SaveHeader(ctx context.Context, db *sqlite.DB, draft models.ReceiptDraft) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `
UPDATE receipt_drafts
SET location_id = ?, vendor_id = ?, vendor_name = ?, invoice_no = ?,
    invoice_date = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`,
			draft.LocationID, draft.VendorID, draft.VendorName, draft.InvoiceNo,
			draft.InvoiceDate, draft.Notes, draft.ID)
		return err
	})
}

// ResetDraftTx discards all rows after a successful submission, leaving
// exactly one fresh empty row. The location sticks; per-receipt header
// fields (vendor, invoice, notes) are cleared.
func ResetDraftTx(ctx context.Context, tx bun.Tx, draftID int64) error {
	if _, err := tx.ExecContext(ctx, `
UPDATE receipt_drafts
SET vendor_id = NULL, vendor_name = '', invoice_no = '', invoice_date = '',
    notes = '', updated_at = CURRENT_TIMESTAMP
WHERE id = ?`, draftID); err != nil {
		return err
	}
	return saveLinesTx(ctx, tx, draftID, []models.DraftLine{NewEmptyLine(draftID, 0)})
}
