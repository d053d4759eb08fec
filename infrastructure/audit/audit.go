package audit

import (
	"context"
	"encoding/json"

	"github.com/uptrace/bun"

	"stockdesk/models"
)

// Service writes submission log records inside the caller transaction.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// WriteSubmission records one accepted submission to the Inventory Service.
func (s *Service) WriteSubmission(ctx context.Context, tx bun.Tx, workstation, kind string, referenceID, locationID, lineCount, totalQty int64, detail any) error {
	detailJSON, err := marshal(detail)
	if err != nil {
		return err
	}
	entry := &models.SubmissionLog{
		Workstation: workstation,
		Kind:        kind,
		ReferenceID: referenceID,
		LocationID:  locationID,
		LineCount:   lineCount,
		TotalQty:    totalQty,
		DetailJSON:  detailJSON,
	}
	_, err = tx.NewInsert().Model(entry).Exec(ctx)
	return err
}

func marshal(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
