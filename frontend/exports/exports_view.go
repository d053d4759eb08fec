package exports

import (
	"context"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	sharedhtml "stockdesk/frontend/shared/html"
	"stockdesk/frontend/shared/nav"
	"stockdesk/models"
)

// HistoryPage renders the submission log.
func HistoryPage(data PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := nav.TopNav("/desk/exports").Render(ctx, w); err != nil {
			return err
		}
		var b strings.Builder
		b.WriteString(`<main class="p-4 max-w-5xl mx-auto">`)
		b.WriteString(`<h1 class="text-xl font-semibold mb-2">Submissions</h1>`)
		if err := sharedhtml.Banner(data.Message, data.IsError).Render(ctx, &b); err != nil {
			return err
		}

		b.WriteString(`<div class="flex gap-2 mb-3">`)
		writeKindFilter(&b, "", "All", data.Kind)
		writeKindFilter(&b, models.SubmissionKindReceipt, "Receipts", data.Kind)
		writeKindFilter(&b, models.SubmissionKindDispatchReceive, "Dispatch receives", data.Kind)
		csvHref := "/desk/exports/submissions.csv"
		if data.Kind != "" {
			csvHref += "?kind=" + data.Kind
		}
		b.WriteString(`<a class="btn btn-sm ml-auto" href="` + csvHref + `">Download CSV</a>`)
		b.WriteString(`</div>`)

		b.WriteString(`<table class="table table-sm w-full"><thead><tr>`)
		for _, h := range []string{"When", "Workstation", "Kind", "Reference", "Lines", "Units", ""} {
			b.WriteString(`<th>` + h + `</th>`)
		}
		b.WriteString(`</tr></thead><tbody>`)
		for _, e := range data.Entries {
			b.WriteString(`<tr>`)
			b.WriteString(`<td>` + e.CreatedAt.Format("2006-01-02 15:04") + `</td>`)
			b.WriteString(`<td>` + html.EscapeString(e.Workstation) + `</td>`)
			b.WriteString(`<td>` + html.EscapeString(e.Kind) + `</td>`)
			b.WriteString(`<td>` + referenceCell(e) + `</td>`)
			b.WriteString(`<td>` + strconv.FormatInt(e.LineCount, 10) + `</td>`)
			b.WriteString(`<td>` + strconv.FormatInt(e.TotalQty, 10) + `</td>`)
			if e.Kind == models.SubmissionKindReceipt {
				b.WriteString(`<td><a class="link text-xs" href="/desk/receipts/sheets/` + strconv.FormatInt(e.ReferenceID, 10) + `">GRN sheet</a></td>`)
			} else {
				b.WriteString(`<td></td>`)
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table>`)
		b.WriteString(`</main>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
	return sharedhtml.Layout("Submissions", body)
}

func writeKindFilter(b *strings.Builder, kind, label, active string) {
	class := "btn btn-ghost btn-sm"
	if kind == active {
		class = "btn btn-active btn-sm"
	}
	href := "/desk/exports"
	if kind != "" {
		href += "?kind=" + kind
	}
	b.WriteString(`<a class="` + class + `" href="` + href + `">` + html.EscapeString(label) + `</a>`)
}

func referenceCell(e models.SubmissionLog) string {
	id := strconv.FormatInt(e.ReferenceID, 10)
	if e.Kind == models.SubmissionKindDispatchReceive {
		return `<a class="link" href="/desk/dispatches/` + id + `">Dispatch #` + id + `</a>`
	}
	return "GRN " + id
}
