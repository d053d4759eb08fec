package receive

import (
	"fmt"
	"strconv"
	"strings"

	"stockdesk/infrastructure/inventory"
	"stockdesk/models"
)

// Bucket field names accepted by UpdateBucket.
const (
	BucketReceived = "received"
	BucketDamaged  = "damaged"
	BucketShort    = "short"
)

// LineKey is the composite identity of a worksheet row. A dispatch may
// carry the same variant in multiple lots, so the variant id alone is
// not enough.
func LineKey(line models.WorksheetLine) string {
	return fmt.Sprintf("%d-%d", line.VariantID, line.LotID)
}

// Remaining is the unreconciled quantity from the manifest snapshot, the
// hard ceiling for new allocations on this line.
func Remaining(line models.WorksheetLine) int64 {
	return line.QtyDispatched - line.QtyReceived - line.QtyDamaged - line.QtyShort
}

// bucketValue parses one raw input. Unparsable and negative inputs count
// as zero; the raw string stays in the field either way.
func bucketValue(raw string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// RowTotal sums the three draft buckets, each floored at zero.
func RowTotal(line models.WorksheetLine) int64 {
	return bucketValue(line.Received) + bucketValue(line.Damaged) + bucketValue(line.Short)
}

// RowError returns the realtime validation message for a checked row
// whose buckets overshoot the remaining quantity.
func RowError(line models.WorksheetLine) string {
	if line.Checked && RowTotal(line) > Remaining(line) {
		return fmt.Sprintf("Total cannot exceed %d", Remaining(line))
	}
	return ""
}

// NewLinesFromManifest builds the default worksheet rows for a freshly
// opened dispatch: received pre-filled with the remaining quantity when
// there is any, everything unchecked.
func NewLinesFromManifest(worksheetID int64, d *inventory.Dispatch) []models.WorksheetLine {
	lines := make([]models.WorksheetLine, 0, len(d.Items))
	for _, item := range d.Items {
		line := models.WorksheetLine{
			WorksheetID:   worksheetID,
			VariantID:     item.VariantID,
			LotID:         item.LotID,
			QtyDispatched: item.QuantityDispatched,
			QtyReceived:   item.QuantityReceived,
			QtyDamaged:    item.QuantityDamaged,
			QtyShort:      item.QuantityShort,
			VariantLabel:  item.Variant,
			LotLabel:      item.Lot,
			Received:      "0",
			Damaged:       "0",
			Short:         "0",
		}
		if rem := item.Remaining(); rem > 0 {
			line.Received = strconv.FormatInt(rem, 10)
		}
		lines = append(lines, line)
	}
	return lines
}

// MergeManifest refreshes the snapshot counters from a refetched
// manifest while keeping the operator's draft buckets and check marks.
// Lines new to the manifest get defaults; lines gone from it are
// dropped.
func MergeManifest(existing []models.WorksheetLine, worksheetID int64, d *inventory.Dispatch) []models.WorksheetLine {
	byKey := make(map[string]models.WorksheetLine, len(existing))
	for _, line := range existing {
		byKey[LineKey(line)] = line
	}
	merged := NewLinesFromManifest(worksheetID, d)
	for i := range merged {
		prev, ok := byKey[LineKey(merged[i])]
		if !ok {
			continue
		}
		merged[i].ID = prev.ID
		merged[i].Received = prev.Received
		merged[i].Damaged = prev.Damaged
		merged[i].Short = prev.Short
		merged[i].Checked = prev.Checked
	}
	return merged
}

// Toggle flips the check mark on the addressed row. Rows with nothing
// remaining cannot be checked.
func Toggle(lines []models.WorksheetLine, key string) []models.WorksheetLine {
	for i := range lines {
		if LineKey(lines[i]) != key {
			continue
		}
		if !lines[i].Checked && Remaining(lines[i]) <= 0 {
			return lines
		}
		lines[i].Checked = !lines[i].Checked
		return lines
	}
	return lines
}

// UpdateBucket stores the raw input into one draft bucket of the
// addressed row.
func UpdateBucket(lines []models.WorksheetLine, key, field, value string) []models.WorksheetLine {
	for i := range lines {
		if LineKey(lines[i]) != key {
			continue
		}
		switch field {
		case BucketReceived:
			lines[i].Received = value
		case BucketDamaged:
			lines[i].Damaged = value
		case BucketShort:
			lines[i].Short = value
		}
		return lines
	}
	return lines
}

// PrefillAll checks every row that still has quantity remaining and
// pre-fills received with that remainder. Fully reconciled rows are left
// alone, as are the damaged/short buckets.
func PrefillAll(lines []models.WorksheetLine) []models.WorksheetLine {
	for i := range lines {
		rem := Remaining(lines[i])
		if rem <= 0 {
			continue
		}
		lines[i].Checked = true
		lines[i].Received = strconv.FormatInt(rem, 10)
	}
	return lines
}

// CanSubmit gates the receive-selected action: at least one row checked,
// and every checked row allocating more than zero without overshooting
// its remaining quantity.
func CanSubmit(lines []models.WorksheetLine) bool {
	checked := 0
	for _, line := range lines {
		if !line.Checked {
			continue
		}
		checked++
		total := RowTotal(line)
		if total <= 0 || total > Remaining(line) {
			return false
		}
	}
	return checked > 0
}

// SelectedItems builds the submission payload from the checked rows with
// a positive, in-bound allocation.
func SelectedItems(lines []models.WorksheetLine) []inventory.DispatchReceiveItem {
	items := make([]inventory.DispatchReceiveItem, 0, len(lines))
	for _, line := range lines {
		if !line.Checked {
			continue
		}
		total := RowTotal(line)
		if total <= 0 || total > Remaining(line) {
			continue
		}
		items = append(items, inventory.DispatchReceiveItem{
			VariantID:        line.VariantID,
			LotID:            line.LotID,
			QuantityReceived: bucketValue(line.Received),
			QuantityDamaged:  bucketValue(line.Damaged),
			QuantityShort:    bucketValue(line.Short),
		})
	}
	return items
}

// AllRemainingItems builds the receive-all payload: every line with
// quantity remaining is claimed in full as received, ignoring the draft
// buckets entirely.
func AllRemainingItems(lines []models.WorksheetLine) []inventory.DispatchReceiveItem {
	items := make([]inventory.DispatchReceiveItem, 0, len(lines))
	for _, line := range lines {
		rem := Remaining(line)
		if rem <= 0 {
			continue
		}
		items = append(items, inventory.DispatchReceiveItem{
			VariantID:        line.VariantID,
			LotID:            line.LotID,
			QuantityReceived: rem,
		})
	}
	return items
}

// TotalUnits sums the allocated units across a payload, for the
// submission log and the success banner.
func TotalUnits(items []inventory.DispatchReceiveItem) int64 {
	var total int64
	for _, item := range items {
		total += item.QuantityReceived + item.QuantityDamaged + item.QuantityShort
	}
	return total
}
