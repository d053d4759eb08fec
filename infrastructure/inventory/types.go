package inventory

import "fmt"

// Variant is a sellable product variant returned by variant search.
type Variant struct {
	ID             int64   `json:"id"`
	SKU            string  `json:"sku"`
	Title          string  `json:"title"`
	ProductID      int64   `json:"productId"`
	RequiresLot    bool    `json:"requiresLot"`
	RequiresExpiry bool    `json:"requiresExpiry"`
	RequiresMfg    bool    `json:"requiresMfg"`
	Product        Product `json:"product"`
}

type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Vendor is a receipt header vendor option.
type Vendor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ReceiptRequest is one batched goods-received-note submission.
type ReceiptRequest struct {
	LocationID  int64         `json:"locationId"`
	VendorID    *int64        `json:"vendorId,omitempty"`
	InvoiceNo   string        `json:"invoiceNo,omitempty"`
	InvoiceDate string        `json:"invoiceDate,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	Lines       []ReceiptLine `json:"lines"`
}

type ReceiptLine struct {
	VariantID int64    `json:"variantId"`
	Quantity  int64    `json:"quantity"`
	UnitCost  *float64 `json:"unitCost,omitempty"`
	LotCode   string   `json:"lotCode,omitempty"`
	MfgDate   string   `json:"mfgDate,omitempty"`
	ExpDate   string   `json:"expDate,omitempty"`
}

// Receipt is the created GRN acknowledged by the service.
type Receipt struct {
	ID    int64         `json:"id"`
	Lines []ReceiptLine `json:"lines"`
}

// ReceiptSubmissionDetail is the receipt payload as written to the local
// submission log, with display metadata the wire request does not carry.
type ReceiptSubmissionDetail struct {
	ReceiptRequest
	VendorName string `json:"vendorName,omitempty"`
}

// RowError is a server-side validation failure keyed back to the
// submitted line's position in the request.
type RowError struct {
	RowIndex int    `json:"rowIndex"`
	Message  string `json:"message"`
}

// ValidationError carries the structured per-row rejection of a receipt
// submission. Any other failure surfaces as a plain error.
type ValidationError struct {
	Rows []RowError `json:"errors"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("receipt rejected with %d row errors", len(e.Rows))
}

// DispatchStatus is the server-owned lifecycle of a dispatch.
type DispatchStatus string

const (
	DispatchCreated   DispatchStatus = "CREATED"
	DispatchPacked    DispatchStatus = "PACKED"
	DispatchInTransit DispatchStatus = "IN_TRANSIT"
	DispatchDelivered DispatchStatus = "DELIVERED"
)

// IsValid reports whether the status is one the console understands.
func (s DispatchStatus) IsValid() bool {
	switch s {
	case DispatchCreated, DispatchPacked, DispatchInTransit, DispatchDelivered:
		return true
	default:
		return false
	}
}

// CanReceive reports whether receive submissions are allowed. The service
// is the real authority and rejects out-of-state submissions regardless;
// this gate only spares the operator a doomed round-trip.
func (s DispatchStatus) CanReceive() bool {
	return s == DispatchInTransit
}

// Dispatch is the manifest loaded for reconciliation.
type Dispatch struct {
	ID           int64          `json:"id"`
	Status       DispatchStatus `json:"status"`
	FromLocation string         `json:"fromLocation"`
	ToLocation   string         `json:"toLocation"`
	InTransitAt  string         `json:"inTransitAt,omitempty"`
	CreatedAt    string         `json:"createdAt"`
	Items        []DispatchItem `json:"items"`
}

// DispatchItem carries the cumulative counters recorded so far for one
// variant/lot line. They are immutable for the reconciliation session.
type DispatchItem struct {
	VariantID          int64  `json:"variantId"`
	LotID              int64  `json:"lotId,omitempty"`
	QuantityDispatched int64  `json:"quantityDispatched"`
	QuantityReceived   int64  `json:"quantityReceived"`
	QuantityDamaged    int64  `json:"quantityDamaged"`
	QuantityShort      int64  `json:"quantityShort"`
	Variant            string `json:"variant"`
	Lot                string `json:"lot,omitempty"`
}

// Remaining is the unreconciled quantity, the hard ceiling for new
// allocations on this line.
func (i DispatchItem) Remaining() int64 {
	return i.QuantityDispatched - i.QuantityReceived - i.QuantityDamaged - i.QuantityShort
}

// DispatchReceiveRequest records a partial or full reconciliation.
type DispatchReceiveRequest struct {
	Items []DispatchReceiveItem `json:"items"`
	Notes string                `json:"notes,omitempty"`
}

type DispatchReceiveItem struct {
	VariantID        int64 `json:"variantId"`
	LotID            int64 `json:"lotId,omitempty"`
	QuantityReceived int64 `json:"quantityReceived"`
	QuantityDamaged  int64 `json:"quantityDamaged"`
	QuantityShort    int64 `json:"quantityShort"`
}
