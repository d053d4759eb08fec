package receive

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"stockdesk/infrastructure/inventory"
	"stockdesk/infrastructure/sqlite"
	"stockdesk/models"
)

// RefreshWorksheet upserts the workstation's worksheet for a dispatch
// from a freshly fetched manifest: the status snapshot is overwritten,
// draft buckets and check marks survive for lines still on the manifest.
func RefreshWorksheet(ctx context.Context, db *sqlite.DB, workstation string, d *inventory.Dispatch) (models.DispatchWorksheet, []models.WorksheetLine, error) {
	ws, lines, err := LoadWorksheet(ctx, db, workstation, d.ID)
	if errors.Is(err, sql.ErrNoRows) {
		ws = models.DispatchWorksheet{Workstation: workstation, DispatchID: d.ID}
		lines = nil
	} else if err != nil {
		return ws, nil, err
	}

	ws.Status = string(d.Status)
	ws.FromLocation = d.FromLocation
	ws.ToLocation = d.ToLocation
	// The received stamp only covers the window between an accepted
	// submission and the next manifest fetch. A dispatch the service
	// still reports as receivable reopens here, so partial receives can
	// continue across sessions.
	if d.Status.CanReceive() {
		ws.ReceivedAt = nil
	}

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if ws.ID == 0 {
			if _, err := tx.NewInsert().Model(&ws).Exec(ctx); err != nil {
				return err
			}
		} else {
			if _, err := tx.ExecContext(ctx, `
UPDATE dispatch_worksheets
SET status = ?, from_location = ?, to_location = ?, received_at = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`, ws.Status, ws.FromLocation, ws.ToLocation, ws.ReceivedAt, ws.ID); err != nil {
				return err
			}
		}
		lines = MergeManifest(lines, ws.ID, d)
		return saveWorksheetLinesTx(ctx, tx, ws.ID, lines)
	})
	if err != nil {
		return ws, nil, err
	}
	return ws, lines, nil
}

// LoadWorksheet reads the worksheet and its lines from local state only.
// Returns sql.ErrNoRows when this workstation never opened the dispatch.
func LoadWorksheet(ctx context.Context, db *sqlite.DB, workstation string, dispatchID int64) (models.DispatchWorksheet, []models.WorksheetLine, error) {
	var ws models.DispatchWorksheet
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&ws).
			Where("workstation = ?", workstation).
			Where("dispatch_id = ?", dispatchID).
			Scan(ctx)
	})
	if err != nil {
		return ws, nil, err
	}

	lines := make([]models.WorksheetLine, 0)
	err = db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&lines).
			Where("worksheet_id = ?", ws.ID).
			Order("id ASC").
			Scan(ctx)
	})
	if err != nil {
		return ws, nil, err
	}
	return ws, lines, nil
}

// SaveWorksheet persists the notes and all line drafts.
func SaveWorksheet(ctx context.Context, db *sqlite.DB, ws models.DispatchWorksheet, lines []models.WorksheetLine) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, `
UPDATE dispatch_worksheets SET notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			ws.Notes, ws.ID); err != nil {
			return err
		}
		return saveWorksheetLinesTx(ctx, tx, ws.ID, lines)
	})
}

func saveWorksheetLinesTx(ctx context.Context, tx bun.Tx, worksheetID int64, lines []models.WorksheetLine) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM worksheet_lines WHERE worksheet_id = ?`, worksheetID); err != nil {
		return err
	}
	for i := range lines {
		lines[i].ID = 0
		lines[i].WorksheetID = worksheetID
		if _, err := tx.NewInsert().Model(&lines[i]).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// MarkReceivedTx stamps the worksheet after an accepted submission.
// The stamp blocks repeat submits from stale renders; RefreshWorksheet
// clears it again while the dispatch stays receivable.
func MarkReceivedTx(ctx context.Context, tx bun.Tx, worksheetID int64, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
UPDATE dispatch_worksheets SET received_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		at, worksheetID)
	return err
}

// RecentWorksheets lists this workstation's latest worksheets for the
// lookup page.
func RecentWorksheets(ctx context.Context, db *sqlite.DB, workstation string, limit int) ([]models.DispatchWorksheet, error) {
	sheets := make([]models.DispatchWorksheet, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&sheets).
			Where("workstation = ?", workstation).
			Order("updated_at DESC").
			Limit(limit).
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return sheets, nil
}
