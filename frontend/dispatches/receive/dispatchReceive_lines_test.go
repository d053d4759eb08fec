package receive

import (
	"testing"

	"stockdesk/infrastructure/inventory"
	"stockdesk/models"
)

func manifestLine(variantID, lotID, dispatched, received, damaged, short int64) models.WorksheetLine {
	return models.WorksheetLine{
		VariantID:     variantID,
		LotID:         lotID,
		QtyDispatched: dispatched,
		QtyReceived:   received,
		QtyDamaged:    damaged,
		QtyShort:      short,
		Received:      "0",
		Damaged:       "0",
		Short:         "0",
	}
}

func TestRowError_OvershootScenario(t *testing.T) {
	// Line with 10 dispatched and 3 already recorded leaves 7 remaining.
	line := manifestLine(1, 0, 10, 2, 1, 0)
	if got := Remaining(line); got != 7 {
		t.Fatalf("remaining: got %d, want 7", got)
	}

	line.Checked = true
	line.Received, line.Damaged, line.Short = "5", "3", "0"
	if got := RowTotal(line); got != 8 {
		t.Fatalf("row total: got %d, want 8", got)
	}
	if got := RowError(line); got != "Total cannot exceed 7" {
		t.Fatalf("row error: got %q", got)
	}
	if CanSubmit([]models.WorksheetLine{line}) {
		t.Fatal("overshooting checked row must block submission")
	}

	line.Damaged = "2"
	if got := RowError(line); got != "" {
		t.Fatalf("in-bound row must carry no error, got %q", got)
	}
	if !CanSubmit([]models.WorksheetLine{line}) {
		t.Fatal("in-bound checked row must allow submission")
	}
}

func TestRowError_UncheckedRowNeverFlags(t *testing.T) {
	line := manifestLine(1, 0, 5, 0, 0, 0)
	line.Received = "99"
	if got := RowError(line); got != "" {
		t.Fatalf("unchecked row must not flag, got %q", got)
	}
}

func TestBucketValue_NegativeAndGarbageClampToZero(t *testing.T) {
	line := manifestLine(1, 0, 10, 0, 0, 0)
	line.Checked = true
	line.Received, line.Damaged, line.Short = "-4", "abc", " 3 "
	if got := RowTotal(line); got != 3 {
		t.Fatalf("row total: got %d, want 3", got)
	}
	// Raw strings stay in the fields for re-rendering.
	if line.Received != "-4" || line.Damaged != "abc" {
		t.Fatal("raw input must be retained")
	}
}

func TestCanSubmit_RequiresCheckedRowWithPositiveTotal(t *testing.T) {
	a := manifestLine(1, 0, 10, 0, 0, 0)
	b := manifestLine(2, 0, 4, 0, 0, 0)

	if CanSubmit([]models.WorksheetLine{a, b}) {
		t.Fatal("no checked rows must block submission")
	}

	a.Checked = true
	a.Received = "0"
	if CanSubmit([]models.WorksheetLine{a, b}) {
		t.Fatal("checked row with zero total must block submission")
	}

	a.Received = "6"
	if !CanSubmit([]models.WorksheetLine{a, b}) {
		t.Fatal("one valid checked row must allow submission")
	}

	b.Checked = true
	b.Received = "5"
	if CanSubmit([]models.WorksheetLine{a, b}) {
		t.Fatal("any overshooting checked row must block submission")
	}
}

func TestToggle_IgnoresFullyReconciledRows(t *testing.T) {
	lines := []models.WorksheetLine{
		manifestLine(1, 0, 10, 10, 0, 0),
		manifestLine(2, 3, 5, 0, 0, 0),
	}
	lines = Toggle(lines, "1-0")
	if lines[0].Checked {
		t.Fatal("row with zero remaining must not become checked")
	}
	lines = Toggle(lines, "2-3")
	if !lines[1].Checked {
		t.Fatal("open row must toggle on")
	}
	lines = Toggle(lines, "2-3")
	if lines[1].Checked {
		t.Fatal("second toggle must turn the row off")
	}
}

func TestPrefillAll_ChecksOpenLinesOnly(t *testing.T) {
	lines := []models.WorksheetLine{
		manifestLine(1, 0, 10, 2, 1, 0), // remaining 7
		manifestLine(2, 0, 5, 5, 0, 0),  // fully reconciled
	}
	lines[0].Received = ""
	lines[0].Damaged = "1"

	lines = PrefillAll(lines)
	if !lines[0].Checked || lines[0].Received != "7" {
		t.Fatalf("open line must be checked with received=7, got %+v", lines[0])
	}
	if lines[0].Damaged != "1" {
		t.Fatal("damaged bucket must be left alone")
	}
	if lines[1].Checked || lines[1].Received != "0" {
		t.Fatalf("reconciled line must be untouched, got %+v", lines[1])
	}
}

func TestSelectedItems_SkipsUncheckedAndOutOfBound(t *testing.T) {
	checked := manifestLine(1, 0, 10, 0, 0, 0)
	checked.Checked = true
	checked.Received, checked.Damaged, checked.Short = "4", "2", "1"

	unchecked := manifestLine(2, 0, 10, 0, 0, 0)
	unchecked.Received = "5"

	over := manifestLine(3, 0, 3, 0, 0, 0)
	over.Checked = true
	over.Received = "9"

	items := SelectedItems([]models.WorksheetLine{checked, unchecked, over})
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	want := inventory.DispatchReceiveItem{VariantID: 1, QuantityReceived: 4, QuantityDamaged: 2, QuantityShort: 1}
	if items[0] != want {
		t.Fatalf("item: got %+v, want %+v", items[0], want)
	}
	if got := TotalUnits(items); got != 7 {
		t.Fatalf("total units: got %d, want 7", got)
	}
}

func TestAllRemainingItems_ClaimsRemainderAsReceived(t *testing.T) {
	lines := []models.WorksheetLine{
		manifestLine(1, 0, 10, 2, 1, 0), // remaining 7
		manifestLine(2, 5, 4, 0, 0, 0),  // remaining 4
		manifestLine(3, 0, 6, 6, 0, 0),  // remaining 0
	}
	// Draft buckets are ignored entirely by receive-all.
	lines[0].Checked = true
	lines[0].Received, lines[0].Damaged = "2", "5"

	items := AllRemainingItems(lines)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].QuantityReceived != 7 || items[0].QuantityDamaged != 0 || items[0].QuantityShort != 0 {
		t.Fatalf("remaining must be claimed fully as received, got %+v", items[0])
	}
	if items[1].VariantID != 2 || items[1].LotID != 5 || items[1].QuantityReceived != 4 {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
}

func TestNewLinesFromManifest_Defaults(t *testing.T) {
	d := &inventory.Dispatch{
		ID:     9,
		Status: inventory.DispatchInTransit,
		Items: []inventory.DispatchItem{
			{VariantID: 1, QuantityDispatched: 10, QuantityReceived: 2, QuantityDamaged: 1, Variant: "SKU-1"},
			{VariantID: 2, QuantityDispatched: 5, QuantityReceived: 5, Variant: "SKU-2"},
		},
	}
	lines := NewLinesFromManifest(7, d)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Received != "7" || lines[0].Checked {
		t.Fatalf("open line defaults to received=remaining, unchecked; got %+v", lines[0])
	}
	if lines[1].Received != "0" {
		t.Fatalf("reconciled line defaults to received=0, got %+v", lines[1])
	}
}

func TestMergeManifest_KeepsDraftRefreshesCounters(t *testing.T) {
	d := &inventory.Dispatch{
		ID:     9,
		Status: inventory.DispatchInTransit,
		Items: []inventory.DispatchItem{
			{VariantID: 1, QuantityDispatched: 10},
			{VariantID: 2, QuantityDispatched: 5},
		},
	}
	existing := NewLinesFromManifest(7, d)
	existing[0].Checked = true
	existing[0].Received = "3"

	// Another workstation reconciled 4 units of variant 1 meanwhile.
	d.Items[0].QuantityReceived = 4
	merged := MergeManifest(existing, 7, d)

	if merged[0].QtyReceived != 4 {
		t.Fatalf("counters must refresh from the manifest, got %+v", merged[0])
	}
	if !merged[0].Checked || merged[0].Received != "3" {
		t.Fatalf("draft state must survive the merge, got %+v", merged[0])
	}
	if merged[1].Checked {
		t.Fatal("untouched line must stay unchecked")
	}
}
