package bulk

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
	"stockdesk/infrastructure/inventory"
	"stockdesk/models"
)

// EditorPage renders the bulk receipt editor.
func EditorPage(data PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := nav.TopNav("/desk/receipts").Render(ctx, w); err != nil {
			return err
		}
		var b strings.Builder
		b.WriteString(`<main class="p-4 max-w-6xl mx-auto">`)
		b.WriteString(`<h1 class="text-xl font-semibold mb-2">Bulk Receipt</h1>`)
		if err := sharedhtml.Banner(data.Message, data.IsError).Render(ctx, &b); err != nil {
			return err
		}
		writeHeaderFields(&b, data.Draft)
		writeLinesTable(&b, data.Lines)
		writePasteBox(&b, data.Lines)
		b.WriteString(editorScript)
		b.WriteString(`</main>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
	return sharedhtml.Layout("Bulk Receipt", body)
}

func writeHeaderFields(b *strings.Builder, draft models.ReceiptDraft) {
	b.WriteString(`<form id="editor-form" method="post" action="/desk/receipts/bulk/submit" class="space-y-3">`)
	b.WriteString(`<div class="grid grid-cols-2 gap-2 md:grid-cols-6">`)

	location := ""
	if draft.LocationID != nil {
		location = strconv.FormatInt(*draft.LocationID, 10)
	}
	vendorID := ""
	if draft.VendorID != nil {
		vendorID = strconv.FormatInt(*draft.VendorID, 10)
	}
	b.WriteString(`<label class="form-control"><span class="label-text">Location</span><input class="input input-bordered input-sm" type="number" name="location_id" value="` + html.EscapeString(location) + `"></label>`)
	b.WriteString(`<input type="hidden" name="vendor_id" id="vendor_id" value="` + html.EscapeString(vendorID) + `">`)
	b.WriteString(`<label class="form-control relative"><span class="label-text">Vendor</span><input class="input input-bordered input-sm" autocomplete="off" id="vendor_name" name="vendor_name" value="` + html.EscapeString(draft.VendorName) + `"><div id="vendor_suggestions"></div></label>`)
	b.WriteString(`<label class="form-control"><span class="label-text">Invoice #</span><input class="input input-bordered input-sm" name="invoice_no" value="` + html.EscapeString(draft.InvoiceNo) + `"></label>`)
	b.WriteString(`<label class="form-control"><span class="label-text">Invoice date</span><input class="input input-bordered input-sm" type="date" name="invoice_date" value="` + html.EscapeString(draft.InvoiceDate) + `"></label>`)
	b.WriteString(`<label class="form-control col-span-2"><span class="label-text">Notes</span><input class="input input-bordered input-sm" name="notes" value="` + html.EscapeString(draft.Notes) + `"></label>`)
	b.WriteString(`</div>`)
}

func writeLinesTable(b *strings.Builder, lines []models.DraftLine) {
	b.WriteString(`<table class="table table-sm w-full"><thead><tr>`)
	for _, h := range []string{"Variant", "Qty", "Unit cost", "Lot", "Mfg date", "Exp date", ""} {
		b.WriteString(`<th>` + h + `</th>`)
	}
	b.WriteString(`</tr></thead><tbody>`)

	for _, line := range lines {
		id := line.RowID
		rowClass := ""
		if line.Error != "" {
			rowClass = ` class="bg-error/10"`
		}
		b.WriteString(`<tr data-row="` + html.EscapeString(id) + `"` + rowClass + `>`)

		b.WriteString(`<td class="relative">`)
		label := strings.TrimSpace(line.SKU)
		if line.ProductName != "" {
			label += " - " + line.ProductName
		}
		if line.VariantID != nil {
			b.WriteString(`<span class="badge badge-ghost badge-sm">` + html.EscapeString(label) + `</span>`)
		} else {
			b.WriteString(`<input class="input input-bordered input-xs variant-search" autocomplete="off" data-row="` + html.EscapeString(id) + `" placeholder="search sku or name" value="` + html.EscapeString(line.SKU) + `">`)
			b.WriteString(`<div id="suggestions_` + html.EscapeString(id) + `"></div>`)
		}
		hints := requirementHints(line)
		if hints != "" {
			b.WriteString(`<span class="text-xs opacity-60 ml-1">` + html.EscapeString(hints) + `</span>`)
		}
		if line.Error != "" {
			b.WriteString(`<div class="text-error text-xs">` + html.EscapeString(line.Error) + `</div>`)
		}
		b.WriteString(`</td>`)

		writeCellInput(b, "qty_"+id, line.Quantity, "number")
		writeCellInput(b, "unit_cost_"+id, line.UnitCost, "text")
		writeCellInput(b, "lot_code_"+id, line.LotCode, "text")
		writeCellInput(b, "mfg_date_"+id, line.MfgDate, "date")
		writeCellInput(b, "exp_date_"+id, line.ExpDate, "date")

		b.WriteString(`<td class="whitespace-nowrap">`)
		b.WriteString(`<button class="btn btn-ghost btn-xs" type="submit" formaction="/desk/receipts/bulk/rows/` + html.EscapeString(id) + `/duplicate" title="Duplicate (Ctrl+D)">⧉</button>`)
		b.WriteString(`<button class="btn btn-ghost btn-xs" type="submit" formaction="/desk/receipts/bulk/rows/` + html.EscapeString(id) + `/delete" title="Delete">✕</button>`)
		b.WriteString(`</td></tr>`)
	}
	b.WriteString(`</tbody></table>`)

	b.WriteString(`<div class="flex gap-2">`)
	b.WriteString(`<button class="btn btn-sm" type="submit" formaction="/desk/receipts/bulk/rows/add" title="Add row (Alt+N)">Add row</button>`)
	b.WriteString(`<button class="btn btn-sm" type="submit" formaction="/desk/receipts/bulk/save">Save draft</button>`)
	b.WriteString(`<button class="btn btn-primary btn-sm" id="submit-btn" type="submit" title="Submit (Ctrl+Enter)">Submit receipt</button>`)
	b.WriteString(`<a class="btn btn-ghost btn-sm" href="/desk/receipts/template.csv">CSV template</a>`)
	b.WriteString(`</div>`)
}

func writePasteBox(b *strings.Builder, lines []models.DraftLine) {
	anchor := ""
	if len(lines) > 0 {
		anchor = lines[len(lines)-1].RowID
	}
	b.WriteString(`<div class="mt-4"><span class="label-text">Paste rows (tab or comma separated: variant/sku, qty, unit cost, lot, mfg date, exp date)</span>`)
	b.WriteString(`<textarea class="textarea textarea-bordered w-full" name="paste_text" rows="3"></textarea>`)
	b.WriteString(`<input type="hidden" name="anchor_row" value="` + html.EscapeString(anchor) + `">`)
	b.WriteString(`<button class="btn btn-sm mt-1" type="submit" formaction="/desk/receipts/bulk/paste">Insert pasted rows</button></div>`)
	b.WriteString(`</form>`)
}

func writeCellInput(b *strings.Builder, name, value, typ string) {
	b.WriteString(`<td><input class="input input-bordered input-xs w-24" type="` + typ + `" name="` + html.EscapeString(name) + `" value="` + html.EscapeString(value) + `"></td>`)
}

func requirementHints(line models.DraftLine) string {
	var hints []string
	if line.RequiresLot {
		hints = append(hints, "lot required")
	}
	if line.RequiresMfg {
		hints = append(hints, "mfg required")
	}
	if line.RequiresExp {
		hints = append(hints, "expiry required")
	}
	return strings.Join(hints, ", ")
}

// writeVariantSuggestionListHTML renders the morph target markup for one
// row's variant suggestions. data-seq lets the client ignore stale
// fragments from out-of-order responses.
func writeVariantSuggestionListHTML(w io.Writer, rowID, seq string, items []inventory.Variant) {
	var b strings.Builder
	b.WriteString(`<ul id="suggestions_` + html.EscapeString(rowID) + `" data-seq="` + html.EscapeString(seq) + `" class="menu menu-sm absolute z-10 max-h-56 w-72 overflow-y-auto rounded-box border border-base-300 bg-base-100 p-1 shadow-md">`)
	if len(items) == 0 {
		b.WriteString(`<li><span class="text-xs opacity-60">No matching variants</span></li>`)
	}
	for _, v := range items {
		sku := strings.TrimSpace(v.SKU)
		if sku == "" {
			continue
		}
		label := sku
		if v.Title != "" {
			label += " - " + v.Title
		}
		b.WriteString(`<li><button type="button" class="justify-start text-left" onclick="selectVariant(this)"`)
		b.WriteString(` data-row="` + html.EscapeString(rowID) + `"`)
		b.WriteString(` data-variant-id="` + strconv.FormatInt(v.ID, 10) + `"`)
		b.WriteString(` data-sku="` + html.EscapeString(sku) + `"`)
		b.WriteString(` data-title="` + html.EscapeString(v.Title) + `"`)
		b.WriteString(` data-product-name="` + html.EscapeString(v.Product.Name) + `"`)
		b.WriteString(` data-requires-lot="` + boolFlag(v.RequiresLot) + `"`)
		b.WriteString(` data-requires-exp="` + boolFlag(v.RequiresExpiry) + `"`)
		b.WriteString(` data-requires-mfg="` + boolFlag(v.RequiresMfg) + `">`)
		b.WriteString(html.EscapeString(label))
		b.WriteString(`</button></li>`)
	}
	b.WriteString(`</ul>`)
	_, _ = io.WriteString(w, b.String())
}

func writeVendorSuggestionListHTML(w io.Writer, seq string, items []inventory.Vendor) {
	var b strings.Builder
	b.WriteString(`<ul id="vendor_suggestions" data-seq="` + html.EscapeString(seq) + `" class="menu menu-sm absolute z-10 max-h-56 w-72 overflow-y-auto rounded-box border border-base-300 bg-base-100 p-1 shadow-md">`)
	if len(items) == 0 {
		b.WriteString(`<li><span class="text-xs opacity-60">No matching vendors</span></li>`)
	}
	for _, v := range items {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			continue
		}
		b.WriteString(`<li><button type="button" class="justify-start text-left" onclick="selectVendor(this)" data-vendor-id="` + strconv.FormatInt(v.ID, 10) + `" data-name="` + html.EscapeString(name) + `">`)
		b.WriteString(html.EscapeString(name))
		b.WriteString(`</button></li>`)
	}
	b.WriteString(`</ul>`)
	_, _ = io.WriteString(w, b.String())
}

func boolFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

var editorScript = fmt.Sprintf(`<script>
var searchSeq = 0;
var searchTimer = null;

function debounceSearch(url, targetID) {
  if (searchTimer) clearTimeout(searchTimer);
  var seq = ++searchSeq;
  searchTimer = setTimeout(function () {
    fetch(url + "&seq=" + seq)
      .then(function (res) { return res.text(); })
      .then(function (fragment) {
        // Last request wins: drop fragments from superseded searches.
        if (seq !== searchSeq) return;
        var target = document.getElementById(targetID);
        if (!target) return;
        target.outerHTML = fragment;
      })
      .catch(function () {});
  }, %d);
}

document.addEventListener("input", function (ev) {
  var el = ev.target;
  if (el.classList && el.classList.contains("variant-search")) {
    var row = el.dataset.row;
    debounceSearch("/desk/api/variants/search?row=" + encodeURIComponent(row) + "&q=" + encodeURIComponent(el.value), "suggestions_" + row);
  }
  if (el.id === "vendor_name") {
    debounceSearch("/desk/api/vendors/search?q=" + encodeURIComponent(el.value), "vendor_suggestions");
  }
});

function postForm(action, extra) {
  var form = document.getElementById("editor-form");
  if (!form) return;
  for (var key in (extra || {})) {
    var input = document.createElement("input");
    input.type = "hidden";
    input.name = key;
    input.value = extra[key];
    form.appendChild(input);
  }
  form.action = action;
  form.submit();
}

function selectVariant(el) {
  postForm("/desk/receipts/bulk/rows/" + el.dataset.row + "/variant", {
    variant_id: el.dataset.variantId,
    variant_sku: el.dataset.sku,
    variant_title: el.dataset.title,
    product_name: el.dataset.productName,
    requires_lot: el.dataset.requiresLot,
    requires_exp: el.dataset.requiresExp,
    requires_mfg: el.dataset.requiresMfg
  });
}

function selectVendor(el) {
  var id = document.getElementById("vendor_id");
  var name = document.getElementById("vendor_name");
  if (id) id.value = el.dataset.vendorId;
  if (name) name.value = el.dataset.name;
  var list = document.getElementById("vendor_suggestions");
  if (list) list.innerHTML = "";
}

document.addEventListener("keydown", function (ev) {
  if (ev.ctrlKey && ev.key === "Enter") {
    ev.preventDefault();
    postForm("/desk/receipts/bulk/submit");
  } else if (ev.altKey && (ev.key === "n" || ev.key === "N")) {
    ev.preventDefault();
    postForm("/desk/receipts/bulk/rows/add");
  } else if (ev.ctrlKey && (ev.key === "d" || ev.key === "D")) {
    var row = ev.target && ev.target.closest ? ev.target.closest("tr[data-row]") : null;
    if (row) {
      ev.preventDefault();
      postForm("/desk/receipts/bulk/rows/" + row.dataset.row + "/duplicate");
    }
  }
});

document.addEventListener("submit", function () {
  var btn = document.getElementById("submit-btn");
  if (btn) btn.disabled = true;
});
</script>`, 200)
