package bulk

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"stockdesk/infrastructure/inventory"
	"stockdesk/models"
)

// NewEmptyLine creates a fresh draft row. The row id is client-local and
// never sent to the Inventory Service.
func NewEmptyLine(draftID int64, position int64) models.DraftLine {
	return models.DraftLine{
		DraftID:  draftID,
		RowID:    uuid.NewString(),
		Position: position,
	}
}

// AddRow appends one empty row.
func AddRow(lines []models.DraftLine, draftID int64) []models.DraftLine {
	lines = append(lines, NewEmptyLine(draftID, int64(len(lines))))
	return renumber(lines)
}

// DuplicateRow clones the row's field values (not its id) into a new row
// appended to the end. No-op when the row id is unknown.
func DuplicateRow(lines []models.DraftLine, rowID string) []models.DraftLine {
	for _, line := range lines {
		if line.RowID != rowID {
			continue
		}
		clone := line
		clone.ID = 0
		clone.RowID = uuid.NewString()
		clone.Error = ""
		clone.Position = int64(len(lines))
		return renumber(append(lines, clone))
	}
	return lines
}

// RemoveRow deletes the row. The editor never reaches zero rows: deleting
// the last remaining row replaces it with a fresh empty one.
func RemoveRow(lines []models.DraftLine, draftID int64, rowID string) []models.DraftLine {
	kept := make([]models.DraftLine, 0, len(lines))
	for _, line := range lines {
		if line.RowID == rowID {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		kept = append(kept, NewEmptyLine(draftID, 0))
	}
	return renumber(kept)
}

// ApplyVariant resolves a searched variant onto the row, filling the
// display cache and requirement hints and clearing any prior server error.
func ApplyVariant(lines []models.DraftLine, rowID string, opt VariantOption) []models.DraftLine {
	for i := range lines {
		if lines[i].RowID != rowID {
			continue
		}
		id := opt.VariantID
		lines[i].VariantID = &id
		lines[i].SKU = opt.SKU
		lines[i].ProductName = opt.ProductName
		lines[i].RequiresLot = opt.RequiresLot
		lines[i].RequiresExp = opt.RequiresExp
		lines[i].RequiresMfg = opt.RequiresMfg
		lines[i].Error = ""
		break
	}
	return lines
}

// ParsedQuantity returns the row quantity as a positive integer, or false
// when the raw input does not qualify.
func ParsedQuantity(line models.DraftLine) (int64, bool) {
	qty, err := strconv.ParseInt(strings.TrimSpace(line.Quantity), 10, 64)
	if err != nil || qty <= 0 {
		return 0, false
	}
	return qty, true
}

// SubmittableLines filters rows down to the service payload. A row is
// submittable iff it has a resolved variant and a quantity parsing to a
// positive integer. The returned index slice maps each payload position
// back to its source row, for per-row error attribution.
func SubmittableLines(lines []models.DraftLine) ([]inventory.ReceiptLine, []int) {
	payload := make([]inventory.ReceiptLine, 0, len(lines))
	sources := make([]int, 0, len(lines))
	for i, line := range lines {
		if line.VariantID == nil {
			continue
		}
		qty, ok := ParsedQuantity(line)
		if !ok {
			continue
		}
		out := inventory.ReceiptLine{
			VariantID: *line.VariantID,
			Quantity:  qty,
			LotCode:   strings.TrimSpace(line.LotCode),
			MfgDate:   strings.TrimSpace(line.MfgDate),
			ExpDate:   strings.TrimSpace(line.ExpDate),
		}
		if cost, err := strconv.ParseFloat(strings.TrimSpace(line.UnitCost), 64); err == nil && line.UnitCost != "" {
			out.UnitCost = &cost
		}
		payload = append(payload, out)
		sources = append(sources, i)
	}
	return payload, sources
}

// TotalQuantity sums the payload quantities for the success summary.
func TotalQuantity(payload []inventory.ReceiptLine) int64 {
	var total int64
	for _, l := range payload {
		total += l.Quantity
	}
	return total
}

// ApplyRowErrors maps the service's rowIndex-keyed validation messages
// back onto the source rows. Indexes outside the submitted set are ignored.
func ApplyRowErrors(lines []models.DraftLine, sources []int, rowErrs []inventory.RowError) []models.DraftLine {
	for _, re := range rowErrs {
		if re.RowIndex < 0 || re.RowIndex >= len(sources) {
			continue
		}
		lines[sources[re.RowIndex]].Error = re.Message
	}
	return lines
}

func renumber(lines []models.DraftLine) []models.DraftLine {
	for i := range lines {
		lines[i].Position = int64(i)
	}
	return lines
}
