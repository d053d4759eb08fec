package html

import (
	"context"
	"html"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps a page body in the shared document shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html><html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`+html.EscapeString(title)+`</title><link rel="stylesheet" href="/assets/app.css"></head><body class="min-h-screen bg-base-200">`); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, CSRFFormScript()+`</body></html>`)
		return err
	})
}

// Raw renders a pre-built trusted HTML fragment.
func Raw(fragment string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, fragment)
		return err
	})
}

// Banner renders the status/error message strip shown under the topnav.
func Banner(message string, isError bool) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if message == "" {
			return nil
		}
		class := "alert alert-info"
		if isError {
			class = "alert alert-error"
		}
		_, err := io.WriteString(w, `<div class="`+class+` my-2" role="status">`+html.EscapeString(message)+`</div>`)
		return err
	})
}
