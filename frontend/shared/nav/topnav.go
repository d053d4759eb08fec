package nav

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

type link struct {
	Href  string
	Label string
}

var links = []link{
	{Href: "/desk/receipts/bulk", Label: "Bulk Receipt"},
	{Href: "/desk/dispatches", Label: "Dispatches"},
	{Href: "/desk/exports", Label: "Exports"},
}

// TopNav renders the shared navigation bar; active marks the current area.
func TopNav(active string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<nav class="navbar bg-base-100 shadow-sm"><div class="flex-1"><span class="text-lg font-semibold px-2">stockdesk</span></div><div class="flex-none"><ul class="menu menu-horizontal px-1">`)
		for _, l := range links {
			class := ""
			if strings.HasPrefix(l.Href, active) && active != "" {
				class = ` class="active"`
			}
			b.WriteString(`<li><a` + class + ` href="` + l.Href + `">` + html.EscapeString(l.Label) + `</a></li>`)
		}
		b.WriteString(`</ul></div></nav>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
