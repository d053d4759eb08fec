package bulk

import "stockdesk/models"

// PageData feeds the bulk receipt editor page.
type PageData struct {
	Draft   models.ReceiptDraft
	Lines   []models.DraftLine
	Message string
	IsError bool
}

// VariantOption is one suggestion row posted back on selection.
type VariantOption struct {
	VariantID   int64
	SKU         string
	Title       string
	ProductName string
	RequiresLot bool
	RequiresExp bool
	RequiresMfg bool
}

// PastedRow is one parsed clipboard line, mapped positionally to
// [variantOrSku, quantity, unitCost, lotCode, mfgDate, expDate].
// Missing trailing columns are simply absent.
type PastedRow struct {
	VariantID *int64
	SKU       string
	Quantity  string
	UnitCost  string
	LotCode   string
	MfgDate   string
	ExpDate   string
}
