package bulk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	sessioncontext "stockdesk/frontend/shared/context"
	"stockdesk/infrastructure/audit"
	"stockdesk/infrastructure/cache"
	"stockdesk/infrastructure/inventory"
	"stockdesk/infrastructure/notify"
	"stockdesk/infrastructure/sqlite"
	"stockdesk/models"
)

const editorPath = "/desk/receipts/bulk"

// EditorPageQueryHandler renders the bulk receipt editor.
func EditorPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := sessioncontext.GetWorkstationFromContext(r.Context())
		if !ok {
			http.Error(w, "workstation not identified", http.StatusBadRequest)
			return
		}
		draft, lines, err := LoadDraft(r.Context(), db, ws)
		if err != nil {
			http.Error(w, "failed to load draft", http.StatusInternalServerError)
			return
		}
		data := PageData{Draft: draft, Lines: lines}
		if msg := strings.TrimSpace(r.URL.Query().Get("status")); msg != "" {
			data.Message = msg
		}
		if msg := strings.TrimSpace(r.URL.Query().Get("error")); msg != "" {
			data.Message, data.IsError = msg, true
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := EditorPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render editor", http.StatusInternalServerError)
			return
		}
	}
}

// AddRowCommandHandler appends one empty row.
func AddRowCommandHandler(db *sqlite.DB) http.HandlerFunc {
	return withDraftForm(db, func(draft models.ReceiptDraft, lines []models.DraftLine, _ *http.Request) ([]models.DraftLine, string, error) {
		return AddRow(lines, draft.ID), "", nil
	})
}

// DuplicateRowCommandHandler clones the addressed row to the end.
func DuplicateRowCommandHandler(db *sqlite.DB) http.HandlerFunc {
	return withDraftForm(db, func(draft models.ReceiptDraft, lines []models.DraftLine, r *http.Request) ([]models.DraftLine, string, error) {
		return DuplicateRow(lines, chi.URLParam(r, "rowID")), "", nil
	})
}

// DeleteRowCommandHandler removes the addressed row, keeping one empty
// row when the last one goes.
func DeleteRowCommandHandler(db *sqlite.DB) http.HandlerFunc {
	return withDraftForm(db, func(draft models.ReceiptDraft, lines []models.DraftLine, r *http.Request) ([]models.DraftLine, string, error) {
		return RemoveRow(lines, draft.ID, chi.URLParam(r, "rowID")), "", nil
	})
}

// SaveCommandHandler persists all edited fields without further action.
func SaveCommandHandler(db *sqlite.DB) http.HandlerFunc {
	return withDraftForm(db, func(_ models.ReceiptDraft, lines []models.DraftLine, _ *http.Request) ([]models.DraftLine, string, error) {
		return lines, "", nil
	})
}

// PasteCommandHandler parses clipboard text and splices the rows in
// after the anchor row.
func PasteCommandHandler(db *sqlite.DB) http.HandlerFunc {
	return withDraftForm(db, func(draft models.ReceiptDraft, lines []models.DraftLine, r *http.Request) ([]models.DraftLine, string, error) {
		text := r.FormValue("paste_text")
		rows := ParsePaste(text)
		if len(rows) == 0 {
			return lines, "Nothing to paste", nil
		}
		anchor := r.FormValue("anchor_row")
		lines = InsertPasted(lines, draft.ID, anchor, rows)
		return lines, fmt.Sprintf("Pasted %d rows", len(rows)), nil
	})
}

// SelectVariantCommandHandler resolves a suggestion onto the row.
func SelectVariantCommandHandler(db *sqlite.DB) http.HandlerFunc {
	return withDraftForm(db, func(_ models.ReceiptDraft, lines []models.DraftLine, r *http.Request) ([]models.DraftLine, string, error) {
		variantID, err := strconv.ParseInt(r.FormValue("variant_id"), 10, 64)
		if err != nil || variantID <= 0 {
			return lines, "", errors.New("invalid variant id")
		}
		opt := VariantOption{
			VariantID:   variantID,
			SKU:         strings.TrimSpace(r.FormValue("variant_sku")),
			Title:       strings.TrimSpace(r.FormValue("variant_title")),
			ProductName: strings.TrimSpace(r.FormValue("product_name")),
			RequiresLot: r.FormValue("requires_lot") == "1",
			RequiresExp: r.FormValue("requires_exp") == "1",
			RequiresMfg: r.FormValue("requires_mfg") == "1",
		}
		return ApplyVariant(lines, chi.URLParam(r, "rowID"), opt), "", nil
	})
}

// SubmitCommandHandler validates preconditions, issues the one batched
// receipt request, and resets the draft on success. Precondition
// failures never reach the network.
func SubmitCommandHandler(db *sqlite.DB, svc inventory.Service, gate *cache.InflightGate, notifier *notify.Center, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := sessioncontext.GetWorkstationFromContext(r.Context())
		if !ok {
			http.Error(w, "workstation not identified", http.StatusBadRequest)
			return
		}
		if err := r.ParseForm(); err != nil {
			redirectError(w, r, "invalid form")
			return
		}
		draft, lines, err := LoadDraft(r.Context(), db, ws)
		if err != nil {
			redirectError(w, r, "failed to load draft")
			return
		}
		applyHeaderForm(&draft, r)
		lines = applyLineForm(lines, r)
		if err := SaveHeader(r.Context(), db, draft); err != nil {
			redirectError(w, r, "failed to save draft")
			return
		}
		if err := SaveLines(r.Context(), db, draft.ID, lines); err != nil {
			redirectError(w, r, "failed to save draft")
			return
		}

		if draft.LocationID == nil || *draft.LocationID <= 0 {
			redirectError(w, r, "select a receiving location first")
			return
		}
		payload, sources := SubmittableLines(lines)
		if len(payload) == 0 {
			redirectError(w, r, "no submittable lines: each line needs a resolved variant and a quantity above zero")
			return
		}

		gateKey := "grn:" + ws
		if !gate.Begin(gateKey) {
			redirectError(w, r, "a submission is already in progress")
			return
		}
		defer gate.End(gateKey)

		req := inventory.ReceiptRequest{
			LocationID:  *draft.LocationID,
			VendorID:    draft.VendorID,
			InvoiceNo:   strings.TrimSpace(draft.InvoiceNo),
			InvoiceDate: strings.TrimSpace(draft.InvoiceDate),
			Notes:       strings.TrimSpace(draft.Notes),
			Lines:       payload,
		}

		receipt, err := svc.SubmitReceipt(r.Context(), req)
		if err != nil {
			var vErr *inventory.ValidationError
			if errors.As(err, &vErr) {
				lines = ApplyRowErrors(lines, sources, vErr.Rows)
				if saveErr := SaveLines(r.Context(), db, draft.ID, lines); saveErr != nil {
					redirectError(w, r, "failed to record validation errors")
					return
				}
				redirectError(w, r, fmt.Sprintf("%d rows failed validation; fix the highlighted rows and resubmit", len(vErr.Rows)))
				return
			}
			notifier.Publish(notify.Notification{Level: notify.LevelError, Message: "receipt submission failed: " + err.Error(), Workstation: ws})
			redirectError(w, r, "submission failed: "+err.Error())
			return
		}

		total := TotalQuantity(payload)
		detail := inventory.ReceiptSubmissionDetail{ReceiptRequest: req, VendorName: draft.VendorName}
		err = db.WithWriteTx(r.Context(), func(ctx context.Context, tx bun.Tx) error {
			if err := auditSvc.WriteSubmission(ctx, tx, ws, models.SubmissionKindReceipt, receipt.ID, *draft.LocationID, int64(len(payload)), total, detail); err != nil {
				return err
			}
			return ResetDraftTx(ctx, tx, draft.ID)
		})
		if err != nil {
			// The GRN exists server-side; only the local reset failed.
			redirectError(w, r, fmt.Sprintf("GRN %d created but local draft reset failed", receipt.ID))
			return
		}

		notifier.Publish(notify.Notification{
			Level:       notify.LevelSuccess,
			Message:     fmt.Sprintf("GRN %d created: %d lines, %d units", receipt.ID, len(payload), total),
			Workstation: ws,
		})
		redirectStatus(w, r, fmt.Sprintf("GRN %d created: %d lines, %d units", receipt.ID, len(payload), total))
	}
}

// SearchVariantsQueryHandler returns the suggestion list fragment for the
// row's search box. The seq parameter is echoed so the client can drop
// stale responses.
func SearchVariantsQueryHandler(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		rowID := r.URL.Query().Get("row")
		seq := r.URL.Query().Get("seq")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if q == "" {
			writeVariantSuggestionListHTML(w, rowID, seq, nil)
			return
		}
		variants, err := svc.SearchVariants(r.Context(), q, 10)
		if err != nil {
			// Degrade to an empty list; search must never take the page down.
			variants = nil
		}
		writeVariantSuggestionListHTML(w, rowID, seq, variants)
	}
}

// SearchVendorsQueryHandler returns vendor suggestions for the header.
func SearchVendorsQueryHandler(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		seq := r.URL.Query().Get("seq")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if q == "" {
			writeVendorSuggestionListHTML(w, seq, nil)
			return
		}
		vendors, err := svc.SearchVendors(r.Context(), q)
		if err != nil {
			vendors = nil
		}
		writeVendorSuggestionListHTML(w, seq, vendors)
	}
}

// TemplateQueryHandler streams the paste template blob from the service.
func TemplateQueryHandler(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blob, contentType, err := svc.DownloadTemplate(r.Context())
		if err != nil {
			http.Error(w, "template unavailable", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", `attachment; filename="receipt-template.csv"`)
		_, _ = w.Write(blob)
	}
}

// withDraftForm loads the draft, applies all posted field edits, runs op,
// saves, and redirects back to the editor.
func withDraftForm(db *sqlite.DB, op func(models.ReceiptDraft, []models.DraftLine, *http.Request) ([]models.DraftLine, string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := sessioncontext.GetWorkstationFromContext(r.Context())
		if !ok {
			http.Error(w, "workstation not identified", http.StatusBadRequest)
			return
		}
		if err := r.ParseForm(); err != nil {
			redirectError(w, r, "invalid form")
			return
		}
		draft, lines, err := LoadDraft(r.Context(), db, ws)
		if err != nil {
			redirectError(w, r, "failed to load draft")
			return
		}
		applyHeaderForm(&draft, r)
		lines = applyLineForm(lines, r)

		lines, message, err := op(draft, lines, r)
		if err != nil {
			redirectError(w, r, err.Error())
			return
		}
		if err := SaveHeader(r.Context(), db, draft); err != nil {
			redirectError(w, r, "failed to save draft")
			return
		}
		if err := SaveLines(r.Context(), db, draft.ID, lines); err != nil {
			redirectError(w, r, "failed to save draft")
			return
		}
		if message != "" {
			redirectStatus(w, r, message)
			return
		}
		http.Redirect(w, r, editorPath, http.StatusSeeOther)
	}
}

// applyHeaderForm copies posted header fields onto the draft. Fields not
// present in the form are left alone.
func applyHeaderForm(draft *models.ReceiptDraft, r *http.Request) {
	if r.Form.Has("location_id") {
		draft.LocationID = parseOptionalID(r.FormValue("location_id"))
	}
	if r.Form.Has("vendor_id") {
		draft.VendorID = parseOptionalID(r.FormValue("vendor_id"))
	}
	if r.Form.Has("vendor_name") {
		draft.VendorName = strings.TrimSpace(r.FormValue("vendor_name"))
	}
	if r.Form.Has("invoice_no") {
		draft.InvoiceNo = strings.TrimSpace(r.FormValue("invoice_no"))
	}
	if r.Form.Has("invoice_date") {
		draft.InvoiceDate = strings.TrimSpace(r.FormValue("invoice_date"))
	}
	if r.Form.Has("notes") {
		draft.Notes = strings.TrimSpace(r.FormValue("notes"))
	}
}

// applyLineForm copies posted per-row fields onto the matching rows. The
// raw strings are stored as typed; parsing happens at submit time.
func applyLineForm(lines []models.DraftLine, r *http.Request) []models.DraftLine {
	for i := range lines {
		id := lines[i].RowID
		if r.Form.Has("qty_" + id) {
			lines[i].Quantity = r.FormValue("qty_" + id)
		}
		if r.Form.Has("unit_cost_" + id) {
			lines[i].UnitCost = r.FormValue("unit_cost_" + id)
		}
		if r.Form.Has("lot_code_" + id) {
			lines[i].LotCode = strings.TrimSpace(r.FormValue("lot_code_" + id))
		}
		if r.Form.Has("mfg_date_" + id) {
			lines[i].MfgDate = strings.TrimSpace(r.FormValue("mfg_date_" + id))
		}
		if r.Form.Has("exp_date_" + id) {
			lines[i].ExpDate = strings.TrimSpace(r.FormValue("exp_date_" + id))
		}
	}
	return lines
}

func parseOptionalID(v string) *int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func redirectStatus(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, editorPath+"?status="+url.QueryEscape(msg), http.StatusSeeOther)
}

func redirectError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, editorPath+"?error="+url.QueryEscape(msg), http.StatusSeeOther)
}
