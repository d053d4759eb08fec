package receive

import (
	"context"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	sharedhtml "stockdesk/frontend/shared/html"
	"stockdesk/frontend/shared/nav"
	"stockdesk/models"
)

// IndexPage renders the dispatch lookup form and recent worksheets.
func IndexPage(data IndexData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := nav.TopNav("/desk/dispatches").Render(ctx, w); err != nil {
			return err
		}
		var b strings.Builder
		b.WriteString(`<main class="p-4 max-w-3xl mx-auto">`)
		b.WriteString(`<h1 class="text-xl font-semibold mb-2">Receive Dispatch</h1>`)
		if err := sharedhtml.Banner(data.Message, data.IsError).Render(ctx, &b); err != nil {
			return err
		}
		b.WriteString(`<form method="post" action="/desk/dispatches/open" class="flex gap-2 items-end">`)
		b.WriteString(`<label class="form-control"><span class="label-text">Dispatch #</span><input class="input input-bordered input-sm" type="number" name="dispatch_id" autofocus></label>`)
		b.WriteString(`<button class="btn btn-primary btn-sm" type="submit">Open</button>`)
		b.WriteString(`</form>`)

		if len(data.Recent) > 0 {
			b.WriteString(`<h2 class="text-lg font-semibold mt-6 mb-2">Recent worksheets</h2>`)
			b.WriteString(`<table class="table table-sm w-full"><thead><tr><th>Dispatch</th><th>Status</th><th>Route</th><th>Received</th></tr></thead><tbody>`)
			for _, sheet := range data.Recent {
				id := strconv.FormatInt(sheet.DispatchID, 10)
				received := "-"
				if sheet.ReceivedAt != nil {
					received = sheet.ReceivedAt.Format("2006-01-02 15:04")
				}
				b.WriteString(`<tr>`)
				b.WriteString(`<td><a class="link" href="/desk/dispatches/` + id + `">#` + id + `</a></td>`)
				b.WriteString(`<td>` + statusBadge(sheet.Status) + `</td>`)
				b.WriteString(`<td>` + html.EscapeString(sheet.FromLocation) + ` → ` + html.EscapeString(sheet.ToLocation) + `</td>`)
				b.WriteString(`<td>` + html.EscapeString(received) + `</td>`)
				b.WriteString(`</tr>`)
			}
			b.WriteString(`</tbody></table>`)
		}
		b.WriteString(`</main>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
	return sharedhtml.Layout("Receive Dispatch", body)
}

// WorksheetPage renders the reconciliation worksheet for one dispatch.
func WorksheetPage(data PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := nav.TopNav("/desk/dispatches").Render(ctx, w); err != nil {
			return err
		}
		var b strings.Builder
		sheet := data.Worksheet
		base := fmt.Sprintf("/desk/dispatches/%d", sheet.DispatchID)

		b.WriteString(`<main class="p-4 max-w-6xl mx-auto">`)
		b.WriteString(`<h1 class="text-xl font-semibold mb-1">Dispatch #` + strconv.FormatInt(sheet.DispatchID, 10) + ` ` + statusBadge(sheet.Status) + `</h1>`)
		b.WriteString(`<p class="text-sm opacity-70 mb-2">` + html.EscapeString(sheet.FromLocation) + ` → ` + html.EscapeString(sheet.ToLocation) + `</p>`)
		if err := sharedhtml.Banner(data.Message, data.IsError).Render(ctx, &b); err != nil {
			return err
		}
		if data.ReadOnly {
			b.WriteString(`<div role="alert" class="alert alert-warning mb-2"><span>` + html.EscapeString(data.ReadOnlyReason) + `</span></div>`)
		}

		if data.ReadOnly {
			writeWorksheetTable(&b, data.Lines, true)
		} else {
			b.WriteString(`<form id="worksheet-form" method="post" action="` + base + `/save" class="space-y-3">`)
			writeWorksheetTable(&b, data.Lines, false)
			b.WriteString(`<label class="form-control"><span class="label-text">Notes</span><textarea class="textarea textarea-bordered w-full" name="notes" rows="2">` + html.EscapeString(sheet.Notes) + `</textarea></label>`)
			b.WriteString(`<div class="flex gap-2">`)
			b.WriteString(`<button class="btn btn-sm" type="submit">Save draft</button>`)
			b.WriteString(`<button class="btn btn-sm" type="submit" formaction="` + base + `/prefill-all">Check all open lines</button>`)
			b.WriteString(`<button class="btn btn-primary btn-sm" id="receive-selected-btn" type="submit" formaction="` + base + `/receive-selected">Receive selected</button>`)
			b.WriteString(`<button class="btn btn-secondary btn-sm" type="submit" formaction="` + base + `/receive-all">Receive all remaining</button>`)
			b.WriteString(`</div>`)
			b.WriteString(`</form>`)
			b.WriteString(worksheetScript)
		}
		b.WriteString(`</main>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
	return sharedhtml.Layout("Receive Dispatch", body)
}

func writeWorksheetTable(b *strings.Builder, lines []models.WorksheetLine, readOnly bool) {
	b.WriteString(`<table class="table table-sm w-full"><thead><tr>`)
	for _, h := range []string{"", "Variant", "Lot", "Dispatched", "Recorded", "Remaining", "Receive", "Damaged", "Short"} {
		b.WriteString(`<th>` + h + `</th>`)
	}
	b.WriteString(`</tr></thead><tbody>`)

	for _, line := range lines {
		key := LineKey(line)
		remaining := Remaining(line)
		rowErr := RowError(line)
		rowClass := ""
		if rowErr != "" {
			rowClass = ` class="bg-error/10"`
		}
		b.WriteString(`<tr data-key="` + html.EscapeString(key) + `"` + rowClass + `>`)

		b.WriteString(`<td>`)
		if !readOnly {
			checked := ""
			if line.Checked {
				checked = ` checked`
			}
			disabled := ""
			if remaining <= 0 {
				disabled = ` disabled`
			}
			b.WriteString(`<input type="checkbox" class="checkbox checkbox-sm" name="check_` + html.EscapeString(key) + `" value="1"` + checked + disabled + `>`)
		}
		b.WriteString(`</td>`)

		b.WriteString(`<td>` + html.EscapeString(line.VariantLabel) + `</td>`)
		b.WriteString(`<td>` + html.EscapeString(line.LotLabel) + `</td>`)
		b.WriteString(`<td>` + strconv.FormatInt(line.QtyDispatched, 10) + `</td>`)
		b.WriteString(`<td class="text-xs opacity-70">` + recordedSummary(line) + `</td>`)
		b.WriteString(`<td class="font-semibold">` + strconv.FormatInt(remaining, 10) + `</td>`)

		if readOnly {
			b.WriteString(`<td>` + html.EscapeString(line.Received) + `</td>`)
			b.WriteString(`<td>` + html.EscapeString(line.Damaged) + `</td>`)
			b.WriteString(`<td>` + html.EscapeString(line.Short) + `</td>`)
		} else {
			writeBucketCell(b, "recv_"+key, line.Received, rowErr)
			writeBucketCell(b, "dmg_"+key, line.Damaged, "")
			writeBucketCell(b, "short_"+key, line.Short, "")
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table>`)
}

func writeBucketCell(b *strings.Builder, name, value, rowErr string) {
	b.WriteString(`<td><input class="input input-bordered input-xs w-20" type="number" min="0" name="` + html.EscapeString(name) + `" value="` + html.EscapeString(value) + `">`)
	if rowErr != "" {
		b.WriteString(`<div class="text-error text-xs">` + html.EscapeString(rowErr) + `</div>`)
	}
	b.WriteString(`</td>`)
}

func recordedSummary(line models.WorksheetLine) string {
	return fmt.Sprintf("%d rec / %d dmg / %d short", line.QtyReceived, line.QtyDamaged, line.QtyShort)
}

func statusBadge(status string) string {
	class := "badge-ghost"
	switch status {
	case "IN_TRANSIT":
		class = "badge-info"
	case "DELIVERED":
		class = "badge-success"
	}
	return `<span class="badge ` + class + ` badge-sm">` + html.EscapeString(status) + `</span>`
}

// worksheetScript mirrors the per-row ceiling check client-side so the
// operator sees the overshoot message while typing, before any save.
const worksheetScript = `<script>
document.addEventListener("input", function (ev) {
  var el = ev.target;
  if (!el.name) return;
  var row = el.closest ? el.closest("tr[data-key]") : null;
  if (!row) return;
  var key = row.dataset.key;
  if (el.name !== "recv_" + key && el.name !== "dmg_" + key && el.name !== "short_" + key) return;

  var cells = row.querySelectorAll("td");
  var remaining = parseInt(cells[5].textContent, 10) || 0;
  var total = 0;
  ["recv_", "dmg_", "short_"].forEach(function (prefix) {
    var input = row.querySelector('[name="' + prefix + key + '"]');
    var n = input ? parseInt(input.value, 10) : 0;
    if (!isNaN(n) && n > 0) total += n;
  });

  var existing = row.querySelector(".row-overshoot");
  if (existing) existing.remove();
  var checkbox = row.querySelector('[name="check_' + key + '"]');
  if (checkbox && checkbox.checked && total > remaining) {
    var div = document.createElement("div");
    div.className = "text-error text-xs row-overshoot";
    div.textContent = "Total cannot exceed " + remaining;
    row.querySelector('[name="recv_' + key + '"]').parentNode.appendChild(div);
  }
});

document.addEventListener("submit", function () {
  var btn = document.getElementById("receive-selected-btn");
  if (btn) btn.disabled = true;
});
</script>`
