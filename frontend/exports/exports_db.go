package exports

import (
	"context"

	"github.com/uptrace/bun"

	"stockdesk/infrastructure/sqlite"
	"stockdesk/models"
)

// LoadSubmissions lists logged submissions, newest first, optionally
// filtered by kind.
func LoadSubmissions(ctx context.Context, db *sqlite.DB, kind string, limit int) ([]models.SubmissionLog, error) {
	entries := make([]models.SubmissionLog, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model(&entries).Order("id DESC")
		if kind != "" {
			q = q.Where("kind = ?", kind)
		}
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
