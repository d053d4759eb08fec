package sheets

import (
	"testing"
	"time"

	"stockdesk/infrastructure/inventory"
)

func TestRenderGRNSheetPDF_GeneratesPDF(t *testing.T) {
	t.Parallel()

	cost := 12.5
	pdf, code, err := renderGRNSheetPDF(GRNSheetData{
		ReceiptID:   42,
		Workstation: "ws-dock-1",
		LocationID:  2,
		VendorName:  "Acme Foods",
		InvoiceNo:   "INV-991",
		InvoiceDate: "2026-08-30",
		Notes:       "two cartons water damaged on arrival",
		Lines: []inventory.ReceiptLine{
			{VariantID: 100, Quantity: 5, UnitCost: &cost, LotCode: "LOT9"},
			{VariantID: 200, Quantity: 3, MfgDate: "2024-01-01", ExpDate: "2025-01-01"},
		},
		SubmittedAt: time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC),
	}, time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("renderGRNSheetPDF returned error: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatalf("expected non-empty pdf bytes")
	}
	if code != "GRN00000042" {
		t.Fatalf("expected barcode GRN00000042, got %q", code)
	}
}

func TestRenderGRNSheetPDF_EmptyLines(t *testing.T) {
	t.Parallel()

	pdf, _, err := renderGRNSheetPDF(GRNSheetData{ReceiptID: 7}, time.Now())
	if err != nil {
		t.Fatalf("renderGRNSheetPDF returned error: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatalf("expected non-empty pdf bytes")
	}
}
