package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ReceiptDraft is the bulk receipt header a workstation is building.
// Exactly one draft exists per workstation; it survives restarts and is
// reset (not deleted) after a successful submission.
type ReceiptDraft struct {
	bun.BaseModel `bun:"table:receipt_drafts,alias:rd"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Workstation string    `bun:"workstation,notnull,unique"`
	LocationID  *int64    `bun:"location_id"`
	VendorID    *int64    `bun:"vendor_id"`
	VendorName  string    `bun:"vendor_name"`
	InvoiceNo   string    `bun:"invoice_no"`
	InvoiceDate string    `bun:"invoice_date"`
	Notes       string    `bun:"notes"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// DraftLine is one editable row of a receipt draft.
//
// RowID is a client-local random identifier; it is never sent to the
// Inventory Service. Quantity and UnitCost hold the operator's raw input
// and are parsed only when the draft is submitted.
type DraftLine struct {
	bun.BaseModel `bun:"table:draft_lines,alias:dl"`

	ID          int64     `bun:"id,pk,autoincrement"`
	DraftID     int64     `bun:"draft_id,notnull"`
	RowID       string    `bun:"row_id,notnull,unique"`
	Position    int64     `bun:"position,notnull"`
	VariantID   *int64    `bun:"variant_id"`
	SKU         string    `bun:"sku"`
	ProductName string    `bun:"product_name"`
	Quantity    string    `bun:"quantity"`
	UnitCost    string    `bun:"unit_cost"`
	LotCode     string    `bun:"lot_code"`
	MfgDate     string    `bun:"mfg_date"`
	ExpDate     string    `bun:"exp_date"`
	RequiresLot bool      `bun:"requires_lot,notnull,default:false"`
	RequiresExp bool      `bun:"requires_exp,notnull,default:false"`
	RequiresMfg bool      `bun:"requires_mfg,notnull,default:false"`
	Error       string    `bun:"error"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// DispatchWorksheet is the local reconciliation state for a dispatch.
// Status and the location labels are a snapshot of the manifest taken on
// the last page load, so the receive commands can gate on status without
// refetching the manifest.
type DispatchWorksheet struct {
	bun.BaseModel `bun:"table:dispatch_worksheets,alias:dw"`

	ID           int64      `bun:"id,pk,autoincrement"`
	Workstation  string     `bun:"workstation,notnull"`
	DispatchID   int64      `bun:"dispatch_id,notnull"`
	Status       string     `bun:"status,notnull,default:''"`
	FromLocation string     `bun:"from_location"`
	ToLocation   string     `bun:"to_location"`
	Notes        string     `bun:"notes"`
	ReceivedAt   *time.Time `bun:"received_at"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// WorksheetLine holds the draft received/damaged/short allocation for one
// dispatch line, keyed by variant and lot (lot 0 when the line has none).
// The Qty* columns snapshot the manifest's cumulative counters; the three
// buckets keep the raw strings the operator typed.
type WorksheetLine struct {
	bun.BaseModel `bun:"table:worksheet_lines,alias:wl"`

	ID            int64     `bun:"id,pk,autoincrement"`
	WorksheetID   int64     `bun:"worksheet_id,notnull"`
	VariantID     int64     `bun:"variant_id,notnull"`
	LotID         int64     `bun:"lot_id,notnull,default:0"`
	QtyDispatched int64     `bun:"qty_dispatched,notnull,default:0"`
	QtyReceived   int64     `bun:"qty_received,notnull,default:0"`
	QtyDamaged    int64     `bun:"qty_damaged,notnull,default:0"`
	QtyShort      int64     `bun:"qty_short,notnull,default:0"`
	VariantLabel  string    `bun:"variant_label"`
	LotLabel      string    `bun:"lot_label"`
	Received      string    `bun:"received"`
	Damaged       string    `bun:"damaged"`
	Short         string    `bun:"short"`
	Checked       bool      `bun:"checked,notnull,default:false"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// SubmissionLog captures every accepted submission to the Inventory
// Service, for the exports screen and the printable GRN sheet.
type SubmissionLog struct {
	bun.BaseModel `bun:"table:submission_logs,alias:sl"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Workstation string    `bun:"workstation,notnull"`
	Kind        string    `bun:"kind,notnull"`
	ReferenceID int64     `bun:"reference_id,notnull"`
	LocationID  int64     `bun:"location_id"`
	LineCount   int64     `bun:"line_count,notnull"`
	TotalQty    int64     `bun:"total_qty,notnull"`
	DetailJSON  string    `bun:"detail_json"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Submission kinds recorded in the log.
const (
	SubmissionKindReceipt         = "grn"
	SubmissionKindDispatchReceive = "dispatch_receive"
)
