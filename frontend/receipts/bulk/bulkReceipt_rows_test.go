package bulk

import (
	"testing"

	"stockdesk/models"
)

func draftWithRows(n int) []models.DraftLine {
	lines := make([]models.DraftLine, 0, n)
	for i := 0; i < n; i++ {
		lines = append(lines, NewEmptyLine(1, int64(i)))
	}
	return lines
}

func TestParsePaste_RowConservation(t *testing.T) {
	text := "VAR-100\t5\t12.50\n VAR-200\t3\t\tLOT9\t2024-01-01\t2025-01-01"
	rows := ParsePaste(text)
	if len(rows) != 2 {
		t.Fatalf("expected 2 parsed rows, got %d", len(rows))
	}

	if rows[0].SKU != "VAR-100" || rows[0].Quantity != "5" || rows[0].UnitCost != "12.50" {
		t.Fatalf("unexpected row 1: %+v", rows[0])
	}
	if rows[1].SKU != "VAR-200" || rows[1].Quantity != "3" || rows[1].LotCode != "LOT9" ||
		rows[1].MfgDate != "2024-01-01" || rows[1].ExpDate != "2025-01-01" {
		t.Fatalf("unexpected row 2: %+v", rows[1])
	}

	lines := InsertPasted(draftWithRows(1), 1, "", rows)
	if len(lines) != 3 {
		t.Fatalf("expected 2 new + 1 original = 3 rows, got %d", len(lines))
	}
}

func TestParsePaste_SkipsHeaderAndBlankLines(t *testing.T) {
	text := "sku,quantity,unitCost\nVAR-1,2\n\n   \nVAR-2,4"
	rows := ParsePaste(text)
	if len(rows) != 2 {
		t.Fatalf("expected header and blanks skipped, got %d rows", len(rows))
	}
	if rows[0].SKU != "VAR-1" || rows[1].SKU != "VAR-2" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestParsePaste_NumericFirstTokenBecomesVariantID(t *testing.T) {
	rows := ParsePaste("12345\t6")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].VariantID == nil || *rows[0].VariantID != 12345 {
		t.Fatalf("expected direct variant id, got %+v", rows[0])
	}
	if rows[0].SKU != "" {
		t.Fatalf("sku should be empty for numeric token, got %q", rows[0].SKU)
	}
}

func TestParsePaste_RaggedRowTreatsMissingFieldsAsAbsent(t *testing.T) {
	rows := ParsePaste("VAR-9,7")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.UnitCost != "" || r.LotCode != "" || r.MfgDate != "" || r.ExpDate != "" {
		t.Fatalf("expected missing trailing fields to stay empty: %+v", r)
	}
}

func TestInsertPasted_SplicesAfterAnchor(t *testing.T) {
	lines := draftWithRows(3)
	anchor := lines[0].RowID
	rows := ParsePaste("VAR-A,1\nVAR-B,2")

	merged := InsertPasted(lines, 1, anchor, rows)
	if len(merged) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(merged))
	}
	if merged[0].RowID != anchor {
		t.Fatalf("anchor must stay in place")
	}
	if merged[1].SKU != "VAR-A" || merged[2].SKU != "VAR-B" {
		t.Fatalf("pasted rows must follow the anchor: %+v", merged[1:3])
	}
	for i, line := range merged {
		if line.Position != int64(i) {
			t.Fatalf("positions not renumbered at %d: %d", i, line.Position)
		}
	}
}

func TestSubmittableLines_FilterCorrectness(t *testing.T) {
	variant := int64(77)
	lines := []models.DraftLine{
		{RowID: "a", VariantID: &variant, Quantity: "5"},
		{RowID: "b", VariantID: nil, Quantity: "5"},       // no variant
		{RowID: "c", VariantID: &variant, Quantity: "0"},  // zero qty
		{RowID: "d", VariantID: &variant, Quantity: "-2"}, // negative qty
		{RowID: "e", VariantID: &variant, Quantity: "x"},  // unparsable
		{RowID: "f", VariantID: &variant, Quantity: " 3 ", UnitCost: "1.25"},
	}

	payload, sources := SubmittableLines(lines)
	if len(payload) != 2 {
		t.Fatalf("expected 2 submittable lines, got %d", len(payload))
	}
	if payload[0].Quantity != 5 || payload[1].Quantity != 3 {
		t.Fatalf("unexpected quantities: %+v", payload)
	}
	if sources[0] != 0 || sources[1] != 5 {
		t.Fatalf("unexpected source mapping: %v", sources)
	}
	if payload[1].UnitCost == nil || *payload[1].UnitCost != 1.25 {
		t.Fatalf("unit cost should parse when present: %+v", payload[1])
	}
	if got := TotalQuantity(payload); got != 8 {
		t.Fatalf("total quantity = %d, want 8", got)
	}
}

func TestDuplicateRow_ClonesValuesNotIdentity(t *testing.T) {
	variant := int64(9)
	lines := draftWithRows(2)
	lines[0].VariantID = &variant
	lines[0].SKU = "VAR-X"
	lines[0].Quantity = "4"
	lines[0].Error = "stale error"

	out := DuplicateRow(lines, lines[0].RowID)
	if len(out) != 3 {
		t.Fatalf("expected 3 rows after duplicate, got %d", len(out))
	}
	clone := out[2]
	if clone.RowID == lines[0].RowID {
		t.Fatalf("clone must get a fresh row id")
	}
	if clone.SKU != "VAR-X" || clone.Quantity != "4" {
		t.Fatalf("clone must copy field values: %+v", clone)
	}
	if clone.Error != "" {
		t.Fatalf("clone must not inherit server errors")
	}

	if got := DuplicateRow(lines, "missing"); len(got) != 2 {
		t.Fatalf("duplicate of unknown row must be a no-op")
	}
}

func TestRemoveRow_NeverReachesZeroRows(t *testing.T) {
	lines := draftWithRows(1)
	out := RemoveRow(lines, 1, lines[0].RowID)
	if len(out) != 1 {
		t.Fatalf("expected replacement empty row, got %d rows", len(out))
	}
	if out[0].RowID == lines[0].RowID {
		t.Fatalf("replacement must be a fresh row")
	}
	if out[0].SKU != "" || out[0].Quantity != "" {
		t.Fatalf("replacement must be empty: %+v", out[0])
	}
}

func TestApplyVariant_FillsRowAndClearsError(t *testing.T) {
	lines := draftWithRows(2)
	lines[1].Error = "unknown variant"

	out := ApplyVariant(lines, lines[1].RowID, VariantOption{
		VariantID:   501,
		SKU:         "VAR-501",
		ProductName: "Widget",
		RequiresLot: true,
	})
	got := out[1]
	if got.VariantID == nil || *got.VariantID != 501 {
		t.Fatalf("variant id not applied: %+v", got)
	}
	if got.SKU != "VAR-501" || got.ProductName != "Widget" || !got.RequiresLot {
		t.Fatalf("display cache not applied: %+v", got)
	}
	if got.Error != "" {
		t.Fatalf("selection must clear the prior error")
	}
}
