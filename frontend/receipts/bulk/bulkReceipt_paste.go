package bulk

import (
	"strconv"
	"strings"

	"stockdesk/models"
)

// ParsePaste splits clipboard text into draft rows. Each line is split on
// tab when one is present, else on comma; fields map positionally to
// [variantOrSku, quantity, unitCost, lotCode, mfgDate, expDate]. A first
// line whose leading token looks like a header (variantId/sku/quantity)
// is skipped, as are lines that are empty after trimming. This is a
// best-effort convenience, not a CSV parser.
func ParsePaste(text string) []PastedRow {
	rawLines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	rows := make([]PastedRow, 0, len(rawLines))
	first := true
	for _, raw := range rawLines {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		fields := splitPasteLine(raw)
		if first {
			first = false
			if looksLikeHeader(fields[0]) {
				continue
			}
		}
		rows = append(rows, buildPastedRow(fields))
	}
	return rows
}

// InsertPasted splices the parsed rows into the draft immediately after
// the anchor row, preserving the anchor. Unknown anchors append at the
// end. Total rows = old + parsed, always.
func InsertPasted(lines []models.DraftLine, draftID int64, anchorRowID string, rows []PastedRow) []models.DraftLine {
	fresh := make([]models.DraftLine, 0, len(rows))
	for _, r := range rows {
		line := NewEmptyLine(draftID, 0)
		line.VariantID = r.VariantID
		line.SKU = r.SKU
		line.Quantity = r.Quantity
		line.UnitCost = r.UnitCost
		line.LotCode = r.LotCode
		line.MfgDate = r.MfgDate
		line.ExpDate = r.ExpDate
		fresh = append(fresh, line)
	}

	at := len(lines)
	for i, line := range lines {
		if line.RowID == anchorRowID {
			at = i + 1
			break
		}
	}

	merged := make([]models.DraftLine, 0, len(lines)+len(fresh))
	merged = append(merged, lines[:at]...)
	merged = append(merged, fresh...)
	merged = append(merged, lines[at:]...)
	return renumber(merged)
}

func splitPasteLine(raw string) []string {
	var fields []string
	if strings.Contains(raw, "\t") {
		fields = strings.Split(raw, "\t")
	} else {
		fields = strings.Split(raw, ",")
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func looksLikeHeader(token string) bool {
	t := strings.ToLower(token)
	return strings.HasPrefix(t, "variantid") || strings.HasPrefix(t, "sku") || strings.HasPrefix(t, "quantity")
}

func buildPastedRow(fields []string) PastedRow {
	row := PastedRow{}
	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	firstToken := get(0)
	if id, err := strconv.ParseInt(firstToken, 10, 64); err == nil && firstToken != "" {
		row.VariantID = &id
	} else {
		row.SKU = firstToken
	}
	row.Quantity = get(1)
	row.UnitCost = get(2)
	row.LotCode = get(3)
	row.MfgDate = get(4)
	row.ExpDate = get(5)
	return row
}
