package receive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	sessioncontext "stockdesk/frontend/shared/context"
	"stockdesk/infrastructure/audit"
	"stockdesk/infrastructure/cache"
	"stockdesk/infrastructure/inventory"
	"stockdesk/infrastructure/notify"
	"stockdesk/infrastructure/sqlite"
	"stockdesk/models"
)

type spyService struct {
	calls       int
	receiveErr  error
	lastID      int64
	lastReceive inventory.DispatchReceiveRequest
	dispatch    *inventory.Dispatch
}

func (s *spyService) SearchVariants(_ context.Context, _ string, _ int) ([]inventory.Variant, error) {
	s.calls++
	return nil, nil
}

func (s *spyService) SearchVendors(_ context.Context, _ string) ([]inventory.Vendor, error) {
	s.calls++
	return nil, nil
}

func (s *spyService) SubmitReceipt(_ context.Context, _ inventory.ReceiptRequest) (*inventory.Receipt, error) {
	s.calls++
	return nil, nil
}

func (s *spyService) FetchDispatch(_ context.Context, _ int64) (*inventory.Dispatch, error) {
	s.calls++
	return s.dispatch, nil
}

func (s *spyService) SubmitDispatchReceive(_ context.Context, id int64, req inventory.DispatchReceiveRequest) error {
	s.calls++
	s.lastID = id
	s.lastReceive = req
	return s.receiveErr
}

func (s *spyService) DownloadTemplate(_ context.Context) ([]byte, string, error) {
	s.calls++
	return nil, "", nil
}

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "receive-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := sqlite.ApplyMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

// seedWorksheet stores a manifest snapshot locally, the state a page
// load leaves behind.
func seedWorksheet(t *testing.T, db *sqlite.DB, d *inventory.Dispatch) models.DispatchWorksheet {
	t.Helper()
	sheet, _, err := RefreshWorksheet(context.Background(), db, "ws-test", d)
	if err != nil {
		t.Fatalf("refresh worksheet: %v", err)
	}
	return sheet
}

func newReceiveRequest(t *testing.T, path string, values url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req.WithContext(sessioncontext.NewContextWithWorkstation(req.Context(), "ws-test"))
}

func serveDispatchRoute(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Post("/desk/dispatches/{dispatchID}/receive-selected", handler)
	router.Post("/desk/dispatches/{dispatchID}/receive-all", handler)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func inTransitDispatch() *inventory.Dispatch {
	return &inventory.Dispatch{
		ID:     41,
		Status: inventory.DispatchInTransit,
		Items: []inventory.DispatchItem{
			{VariantID: 1, QuantityDispatched: 10, QuantityReceived: 2, QuantityDamaged: 1, Variant: "SKU-1"},
			{VariantID: 2, QuantityDispatched: 4, Variant: "SKU-2"},
		},
	}
}

func TestReceiveSelected_NonTransitStatusMakesNoNetworkCall(t *testing.T) {
	db := openTestDB(t)
	d := inTransitDispatch()
	d.Status = inventory.DispatchPacked
	seedWorksheet(t, db, d)

	spy := &spyService{}
	handler := ReceiveSelectedCommandHandler(db, spy, cache.NewInflightGate(), notify.NewCenter(), audit.NewService())

	values := url.Values{"recv_1-0": {"7"}, "dmg_1-0": {"0"}, "short_1-0": {"0"}, "check_1-0": {"1"}}
	rr := serveDispatchRoute(handler, newReceiveRequest(t, "/desk/dispatches/41/receive-selected", values))

	if !strings.Contains(rr.Header().Get("Location"), "error=") {
		t.Fatalf("expected error redirect, got %s", rr.Header().Get("Location"))
	}
	if spy.calls != 0 {
		t.Fatalf("status gate must short-circuit before the network, saw %d calls", spy.calls)
	}
}

func TestReceiveSelected_NoValidRowsMakesNoNetworkCall(t *testing.T) {
	db := openTestDB(t)
	seedWorksheet(t, db, inTransitDispatch())

	spy := &spyService{}
	handler := ReceiveSelectedCommandHandler(db, spy, cache.NewInflightGate(), notify.NewCenter(), audit.NewService())

	// Nothing checked.
	values := url.Values{"recv_1-0": {"7"}, "dmg_1-0": {"0"}, "short_1-0": {"0"}}
	rr := serveDispatchRoute(handler, newReceiveRequest(t, "/desk/dispatches/41/receive-selected", values))

	if !strings.Contains(rr.Header().Get("Location"), "error=") {
		t.Fatalf("expected error redirect, got %s", rr.Header().Get("Location"))
	}
	if spy.calls != 0 {
		t.Fatalf("empty selection must not reach the network, saw %d calls", spy.calls)
	}
}

func TestReceiveSelected_OvershootMakesNoNetworkCall(t *testing.T) {
	db := openTestDB(t)
	seedWorksheet(t, db, inTransitDispatch())

	spy := &spyService{}
	handler := ReceiveSelectedCommandHandler(db, spy, cache.NewInflightGate(), notify.NewCenter(), audit.NewService())

	// remaining for 1-0 is 7; 5+3 overshoots.
	values := url.Values{"recv_1-0": {"5"}, "dmg_1-0": {"3"}, "short_1-0": {"0"}, "check_1-0": {"1"}}
	rr := serveDispatchRoute(handler, newReceiveRequest(t, "/desk/dispatches/41/receive-selected", values))

	if !strings.Contains(rr.Header().Get("Location"), "error=") {
		t.Fatalf("expected error redirect, got %s", rr.Header().Get("Location"))
	}
	if spy.calls != 0 {
		t.Fatalf("overshoot must not reach the network, saw %d calls", spy.calls)
	}
}

func TestReceiveSelected_SubmitsCheckedRowsAndMarksReceived(t *testing.T) {
	db := openTestDB(t)
	seedWorksheet(t, db, inTransitDispatch())

	spy := &spyService{}
	handler := ReceiveSelectedCommandHandler(db, spy, cache.NewInflightGate(), notify.NewCenter(), audit.NewService())

	values := url.Values{
		"recv_1-0": {"5"}, "dmg_1-0": {"2"}, "short_1-0": {"0"}, "check_1-0": {"1"},
		"recv_2-0": {"4"}, "dmg_2-0": {"0"}, "short_2-0": {"0"},
		"notes": {"dock 3"},
	}
	rr := serveDispatchRoute(handler, newReceiveRequest(t, "/desk/dispatches/41/receive-selected", values))

	if !strings.Contains(rr.Header().Get("Location"), "status=") {
		t.Fatalf("expected success redirect, got %s", rr.Header().Get("Location"))
	}
	if spy.calls != 1 || spy.lastID != 41 {
		t.Fatalf("expected one receive call for dispatch 41, got %d calls for %d", spy.calls, spy.lastID)
	}
	if len(spy.lastReceive.Items) != 1 || spy.lastReceive.Items[0].QuantityReceived != 5 || spy.lastReceive.Items[0].QuantityDamaged != 2 {
		t.Fatalf("unexpected payload: %+v", spy.lastReceive.Items)
	}
	if spy.lastReceive.Notes != "dock 3" {
		t.Fatalf("notes must ride along, got %q", spy.lastReceive.Notes)
	}

	sheet, _, err := LoadWorksheet(context.Background(), db, "ws-test", 41)
	if err != nil {
		t.Fatalf("reload worksheet: %v", err)
	}
	if sheet.ReceivedAt == nil {
		t.Fatal("worksheet must be marked received")
	}
}

func TestReceiveSelected_SecondSubmitIsBlockedLocally(t *testing.T) {
	db := openTestDB(t)
	seedWorksheet(t, db, inTransitDispatch())

	spy := &spyService{}
	handler := ReceiveSelectedCommandHandler(db, spy, cache.NewInflightGate(), notify.NewCenter(), audit.NewService())

	values := url.Values{"recv_1-0": {"7"}, "dmg_1-0": {"0"}, "short_1-0": {"0"}, "check_1-0": {"1"}}
	serveDispatchRoute(handler, newReceiveRequest(t, "/desk/dispatches/41/receive-selected", values))
	rr := serveDispatchRoute(handler, newReceiveRequest(t, "/desk/dispatches/41/receive-selected", values))

	if !strings.Contains(rr.Header().Get("Location"), "error=") {
		t.Fatalf("expected error redirect, got %s", rr.Header().Get("Location"))
	}
	if spy.calls != 1 {
		t.Fatalf("second submit must not reach the network, saw %d calls", spy.calls)
	}
}

func TestReceiveSelected_PartialThenRefreshReceivesAgain(t *testing.T) {
	db := openTestDB(t)
	d := inTransitDispatch()
	seedWorksheet(t, db, d)

	spy := &spyService{}
	handler := ReceiveSelectedCommandHandler(db, spy, cache.NewInflightGate(), notify.NewCenter(), audit.NewService())

	// First session records 3 of the 7 remaining on line 1-0.
	values := url.Values{"recv_1-0": {"3"}, "dmg_1-0": {"0"}, "short_1-0": {"0"}, "check_1-0": {"1"}}
	rr := serveDispatchRoute(handler, newReceiveRequest(t, "/desk/dispatches/41/receive-selected", values))
	if !strings.Contains(rr.Header().Get("Location"), "status=") {
		t.Fatalf("expected success redirect, got %s", rr.Header().Get("Location"))
	}

	// Next page load refetches the manifest: the service booked the 3
	// units and the dispatch is still in transit.
	d.Items[0].QuantityReceived += 3
	sheet, lines, err := RefreshWorksheet(context.Background(), db, "ws-test", d)
	if err != nil {
		t.Fatalf("refresh worksheet: %v", err)
	}
	if sheet.ReceivedAt != nil {
		t.Fatal("refresh must reopen a still-receivable worksheet")
	}
	if rem := Remaining(lines[0]); rem != 4 {
		t.Fatalf("expected 4 remaining after the partial receive, got %d", rem)
	}

	// Second session reconciles the remainder.
	values = url.Values{"recv_1-0": {"4"}, "dmg_1-0": {"0"}, "short_1-0": {"0"}, "check_1-0": {"1"}}
	rr = serveDispatchRoute(handler, newReceiveRequest(t, "/desk/dispatches/41/receive-selected", values))
	if !strings.Contains(rr.Header().Get("Location"), "status=") {
		t.Fatalf("expected success redirect, got %s", rr.Header().Get("Location"))
	}
	if spy.calls != 2 {
		t.Fatalf("expected both sessions to submit, saw %d calls", spy.calls)
	}
	if len(spy.lastReceive.Items) != 1 || spy.lastReceive.Items[0].QuantityReceived != 4 {
		t.Fatalf("unexpected second payload: %+v", spy.lastReceive.Items)
	}
}

func TestReceiveSelected_FormCannotCheckReconciledRow(t *testing.T) {
	db := openTestDB(t)
	d := inTransitDispatch()
	d.Items = append(d.Items, inventory.DispatchItem{VariantID: 3, QuantityDispatched: 5, QuantityReceived: 5, Variant: "SKU-3"})
	seedWorksheet(t, db, d)

	spy := &spyService{}
	handler := ReceiveSelectedCommandHandler(db, spy, cache.NewInflightGate(), notify.NewCenter(), audit.NewService())

	// Only the fully reconciled row carries a check mark.
	values := url.Values{"recv_3-0": {"1"}, "dmg_3-0": {"0"}, "short_3-0": {"0"}, "check_3-0": {"1"}}
	rr := serveDispatchRoute(handler, newReceiveRequest(t, "/desk/dispatches/41/receive-selected", values))

	if !strings.Contains(rr.Header().Get("Location"), "error=") {
		t.Fatalf("expected error redirect, got %s", rr.Header().Get("Location"))
	}
	if spy.calls != 0 {
		t.Fatalf("a reconciled row must not produce a submission, saw %d calls", spy.calls)
	}
}

func TestReceiveAll_ClaimsEveryOpenLine(t *testing.T) {
	db := openTestDB(t)
	seedWorksheet(t, db, inTransitDispatch())

	spy := &spyService{}
	handler := ReceiveAllCommandHandler(db, spy, cache.NewInflightGate(), notify.NewCenter(), audit.NewService())

	// Draft buckets deliberately nonsense; receive-all ignores them.
	values := url.Values{"recv_1-0": {"999"}, "dmg_1-0": {"5"}, "short_1-0": {"0"}}
	rr := serveDispatchRoute(handler, newReceiveRequest(t, "/desk/dispatches/41/receive-all", values))

	if !strings.Contains(rr.Header().Get("Location"), "status=") {
		t.Fatalf("expected success redirect, got %s", rr.Header().Get("Location"))
	}
	if len(spy.lastReceive.Items) != 2 {
		t.Fatalf("expected both open lines, got %+v", spy.lastReceive.Items)
	}
	for _, item := range spy.lastReceive.Items {
		if item.QuantityDamaged != 0 || item.QuantityShort != 0 {
			t.Fatalf("receive-all must claim everything as received, got %+v", item)
		}
	}
	if spy.lastReceive.Items[0].QuantityReceived != 7 || spy.lastReceive.Items[1].QuantityReceived != 4 {
		t.Fatalf("expected full remainders 7 and 4, got %+v", spy.lastReceive.Items)
	}
}
