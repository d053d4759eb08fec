package receive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

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

const dispatchesPath = "/desk/dispatches"

// IndexPageQueryHandler renders the dispatch lookup page with this
// workstation's recent worksheets.
func IndexPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := sessioncontext.GetWorkstationFromContext(r.Context())
		if !ok {
			http.Error(w, "workstation not identified", http.StatusBadRequest)
			return
		}
		recent, err := RecentWorksheets(r.Context(), db, ws, 15)
		if err != nil {
			http.Error(w, "failed to load worksheets", http.StatusInternalServerError)
			return
		}
		data := IndexData{Recent: recent}
		if msg := strings.TrimSpace(r.URL.Query().Get("error")); msg != "" {
			data.Message, data.IsError = msg, true
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := IndexPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render page", http.StatusInternalServerError)
		}
	}
}

// OpenCommandHandler resolves the typed dispatch id and redirects to its
// worksheet.
func OpenCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("dispatch_id")), 10, 64)
		if err != nil || id <= 0 {
			http.Redirect(w, r, dispatchesPath+"?error="+url.QueryEscape("enter a valid dispatch id"), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("%s/%d", dispatchesPath, id), http.StatusSeeOther)
	}
}

// WorksheetPageQueryHandler fetches the manifest, refreshes the local
// snapshot, and renders the reconciliation worksheet. This is the only
// dispatch route that talks to the Inventory Service for reads.
func WorksheetPageQueryHandler(db *sqlite.DB, svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := sessioncontext.GetWorkstationFromContext(r.Context())
		if !ok {
			http.Error(w, "workstation not identified", http.StatusBadRequest)
			return
		}
		dispatchID, err := strconv.ParseInt(chi.URLParam(r, "dispatchID"), 10, 64)
		if err != nil || dispatchID <= 0 {
			http.Redirect(w, r, dispatchesPath+"?error="+url.QueryEscape("invalid dispatch id"), http.StatusSeeOther)
			return
		}

		dispatch, err := svc.FetchDispatch(r.Context(), dispatchID)
		if err != nil {
			http.Redirect(w, r, dispatchesPath+"?error="+url.QueryEscape(fmt.Sprintf("dispatch %d unavailable: %s", dispatchID, err)), http.StatusSeeOther)
			return
		}

		sheet, lines, err := RefreshWorksheet(r.Context(), db, ws, dispatch)
		if err != nil {
			http.Error(w, "failed to load worksheet", http.StatusInternalServerError)
			return
		}

		data := PageData{Worksheet: sheet, Lines: lines}
		data.ReadOnly, data.ReadOnlyReason = readOnlyState(sheet)
		if msg := strings.TrimSpace(r.URL.Query().Get("status")); msg != "" {
			data.Message = msg
		}
		if msg := strings.TrimSpace(r.URL.Query().Get("error")); msg != "" {
			data.Message, data.IsError = msg, true
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := WorksheetPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render worksheet", http.StatusInternalServerError)
		}
	}
}

// SaveCommandHandler persists the draft buckets and notes without any
// service traffic.
func SaveCommandHandler(db *sqlite.DB) http.HandlerFunc {
	return withWorksheetForm(db, func(_ models.DispatchWorksheet, lines []models.WorksheetLine, _ *http.Request) ([]models.WorksheetLine, string, error) {
		return lines, "", nil
	})
}

// PrefillAllCommandHandler checks every row with quantity remaining and
// pre-fills received with that remainder.
func PrefillAllCommandHandler(db *sqlite.DB) http.HandlerFunc {
	return withWorksheetForm(db, func(_ models.DispatchWorksheet, lines []models.WorksheetLine, _ *http.Request) ([]models.WorksheetLine, string, error) {
		return PrefillAll(lines), "Pre-filled all open lines", nil
	})
}

// ReceiveSelectedCommandHandler submits the checked rows' allocations.
// Every precondition is checked against local state first, so a gated
// worksheet never costs a network round-trip.
func ReceiveSelectedCommandHandler(db *sqlite.DB, svc inventory.Service, gate *cache.InflightGate, notifier *notify.Center, auditSvc *audit.Service) http.HandlerFunc {
	return receiveHandler(db, svc, gate, notifier, auditSvc, func(lines []models.WorksheetLine) ([]inventory.DispatchReceiveItem, string) {
		if !CanSubmit(lines) {
			return nil, "check at least one row and fix any allocation above the remaining quantity"
		}
		items := SelectedItems(lines)
		if len(items) == 0 {
			return nil, "nothing to receive: no checked row allocates any quantity"
		}
		return items, ""
	})
}

// ReceiveAllCommandHandler claims the full remaining quantity of every
// open line as received, ignoring the draft buckets.
func ReceiveAllCommandHandler(db *sqlite.DB, svc inventory.Service, gate *cache.InflightGate, notifier *notify.Center, auditSvc *audit.Service) http.HandlerFunc {
	return receiveHandler(db, svc, gate, notifier, auditSvc, func(lines []models.WorksheetLine) ([]inventory.DispatchReceiveItem, string) {
		items := AllRemainingItems(lines)
		if len(items) == 0 {
			return nil, "nothing to receive: every line is fully reconciled"
		}
		return items, ""
	})
}

func receiveHandler(db *sqlite.DB, svc inventory.Service, gate *cache.InflightGate, notifier *notify.Center, auditSvc *audit.Service, build func([]models.WorksheetLine) ([]inventory.DispatchReceiveItem, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := sessioncontext.GetWorkstationFromContext(r.Context())
		if !ok {
			http.Error(w, "workstation not identified", http.StatusBadRequest)
			return
		}
		dispatchID, err := strconv.ParseInt(chi.URLParam(r, "dispatchID"), 10, 64)
		if err != nil || dispatchID <= 0 {
			http.Redirect(w, r, dispatchesPath+"?error="+url.QueryEscape("invalid dispatch id"), http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			redirectWorksheetError(w, r, dispatchID, "invalid form")
			return
		}

		sheet, lines, err := LoadWorksheet(r.Context(), db, ws, dispatchID)
		if errors.Is(err, sql.ErrNoRows) {
			http.Redirect(w, r, fmt.Sprintf("%s/%d", dispatchesPath, dispatchID), http.StatusSeeOther)
			return
		} else if err != nil {
			redirectWorksheetError(w, r, dispatchID, "failed to load worksheet")
			return
		}
		applyWorksheetForm(&sheet, lines, r)
		if err := SaveWorksheet(r.Context(), db, sheet, lines); err != nil {
			redirectWorksheetError(w, r, dispatchID, "failed to save worksheet")
			return
		}

		if reason, blocked := receiveBlocked(sheet); blocked {
			redirectWorksheetError(w, r, dispatchID, reason)
			return
		}
		items, warn := build(lines)
		if warn != "" {
			redirectWorksheetError(w, r, dispatchID, warn)
			return
		}

		gateKey := fmt.Sprintf("dispatch:%d:%s", dispatchID, ws)
		if !gate.Begin(gateKey) {
			redirectWorksheetError(w, r, dispatchID, "a submission is already in progress")
			return
		}
		defer gate.End(gateKey)

		req := inventory.DispatchReceiveRequest{Items: items, Notes: strings.TrimSpace(sheet.Notes)}
		if err := svc.SubmitDispatchReceive(r.Context(), dispatchID, req); err != nil {
			notifier.Publish(notify.Notification{Level: notify.LevelError, Message: "dispatch receive failed: " + err.Error(), Workstation: ws})
			redirectWorksheetError(w, r, dispatchID, "receive failed: "+err.Error())
			return
		}

		total := TotalUnits(items)
		err = db.WithWriteTx(r.Context(), func(ctx context.Context, tx bun.Tx) error {
			if err := auditSvc.WriteSubmission(ctx, tx, ws, models.SubmissionKindDispatchReceive, dispatchID, 0, int64(len(items)), total, req); err != nil {
				return err
			}
			return MarkReceivedTx(ctx, tx, sheet.ID, time.Now().UTC())
		})
		if err != nil {
			redirectWorksheetError(w, r, dispatchID, fmt.Sprintf("dispatch %d received but local bookkeeping failed", dispatchID))
			return
		}

		msg := fmt.Sprintf("Dispatch %d received: %d lines, %d units", dispatchID, len(items), total)
		notifier.Publish(notify.Notification{Level: notify.LevelSuccess, Message: msg, Workstation: ws})
		redirectWorksheetStatus(w, r, dispatchID, msg)
	}
}

// receiveBlocked applies the status gate from the local snapshot. The
// service is still the authority and rejects out-of-state submissions on
// its own; this check just spares the doomed round-trip.
func receiveBlocked(sheet models.DispatchWorksheet) (string, bool) {
	if sheet.ReceivedAt != nil {
		return "this worksheet was already submitted; reopen the dispatch to continue", true
	}
	if !inventory.DispatchStatus(sheet.Status).CanReceive() {
		return fmt.Sprintf("dispatch is %s; only IN_TRANSIT dispatches can be received", sheet.Status), true
	}
	return "", false
}

func readOnlyState(sheet models.DispatchWorksheet) (bool, string) {
	if reason, blocked := receiveBlocked(sheet); blocked {
		return true, reason
	}
	return false, ""
}

func withWorksheetForm(db *sqlite.DB, op func(models.DispatchWorksheet, []models.WorksheetLine, *http.Request) ([]models.WorksheetLine, string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := sessioncontext.GetWorkstationFromContext(r.Context())
		if !ok {
			http.Error(w, "workstation not identified", http.StatusBadRequest)
			return
		}
		dispatchID, err := strconv.ParseInt(chi.URLParam(r, "dispatchID"), 10, 64)
		if err != nil || dispatchID <= 0 {
			http.Redirect(w, r, dispatchesPath+"?error="+url.QueryEscape("invalid dispatch id"), http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			redirectWorksheetError(w, r, dispatchID, "invalid form")
			return
		}
		sheet, lines, err := LoadWorksheet(r.Context(), db, ws, dispatchID)
		if errors.Is(err, sql.ErrNoRows) {
			http.Redirect(w, r, fmt.Sprintf("%s/%d", dispatchesPath, dispatchID), http.StatusSeeOther)
			return
		} else if err != nil {
			redirectWorksheetError(w, r, dispatchID, "failed to load worksheet")
			return
		}
		applyWorksheetForm(&sheet, lines, r)

		lines, message, err := op(sheet, lines, r)
		if err != nil {
			redirectWorksheetError(w, r, dispatchID, err.Error())
			return
		}
		if err := SaveWorksheet(r.Context(), db, sheet, lines); err != nil {
			redirectWorksheetError(w, r, dispatchID, "failed to save worksheet")
			return
		}
		if message != "" {
			redirectWorksheetStatus(w, r, dispatchID, message)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("%s/%d", dispatchesPath, dispatchID), http.StatusSeeOther)
	}
}

// applyWorksheetForm copies posted buckets and check marks onto the
// lines. The presence of a row's received field marks the row as part of
// the posted form, which is how an unchecked checkbox is told apart from
// a row that was never rendered.
func applyWorksheetForm(sheet *models.DispatchWorksheet, lines []models.WorksheetLine, r *http.Request) {
	if r.Form.Has("notes") {
		sheet.Notes = strings.TrimSpace(r.FormValue("notes"))
	}
	for i := range lines {
		key := LineKey(lines[i])
		if !r.Form.Has("recv_" + key) {
			continue
		}
		lines = UpdateBucket(lines, key, BucketReceived, r.FormValue("recv_"+key))
		lines = UpdateBucket(lines, key, BucketDamaged, r.FormValue("dmg_"+key))
		lines = UpdateBucket(lines, key, BucketShort, r.FormValue("short_"+key))
		if want := r.FormValue("check_"+key) == "1"; want != lines[i].Checked {
			lines = Toggle(lines, key)
		}
	}
}

func redirectWorksheetStatus(w http.ResponseWriter, r *http.Request, dispatchID int64, msg string) {
	http.Redirect(w, r, fmt.Sprintf("%s/%d?status=%s", dispatchesPath, dispatchID, url.QueryEscape(msg)), http.StatusSeeOther)
}

func redirectWorksheetError(w http.ResponseWriter, r *http.Request, dispatchID int64, msg string) {
	http.Redirect(w, r, fmt.Sprintf("%s/%d?error=%s", dispatchesPath, dispatchID, url.QueryEscape(msg)), http.StatusSeeOther)
}
