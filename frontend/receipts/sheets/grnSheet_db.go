package sheets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"stockdesk/infrastructure/inventory"
	"stockdesk/infrastructure/sqlite"
	"stockdesk/models"
)

// LoadGRNSheet rebuilds the sheet data from the submission log entry of
// an accepted receipt.
func LoadGRNSheet(ctx context.Context, db *sqlite.DB, receiptID int64) (GRNSheetData, error) {
	var entry models.SubmissionLog
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&entry).
			Where("kind = ?", models.SubmissionKindReceipt).
			Where("reference_id = ?", receiptID).
			Order("id DESC").
			Limit(1).
			Scan(ctx)
	})
	if err != nil {
		return GRNSheetData{}, err
	}

	var detail inventory.ReceiptSubmissionDetail
	if entry.DetailJSON != "" {
		if err := json.Unmarshal([]byte(entry.DetailJSON), &detail); err != nil {
			return GRNSheetData{}, fmt.Errorf("decode submission detail: %w", err)
		}
	}

	return GRNSheetData{
		ReceiptID:   entry.ReferenceID,
		Workstation: entry.Workstation,
		LocationID:  entry.LocationID,
		VendorName:  detail.VendorName,
		InvoiceNo:   detail.InvoiceNo,
		InvoiceDate: detail.InvoiceDate,
		Notes:       detail.Notes,
		Lines:       detail.Lines,
		SubmittedAt: entry.CreatedAt,
	}, nil
}
