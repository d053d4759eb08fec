package sheets

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"stockdesk/infrastructure/sqlite"
)

// GRNSheetQueryHandler streams the printable goods-received-note for an
// accepted receipt.
func GRNSheetQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := chi.URLParam(r, "receiptID")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid receipt id", http.StatusBadRequest)
			return
		}

		data, err := LoadGRNSheet(r.Context(), db, id)
		if err != nil {
			http.Error(w, "receipt not found", http.StatusNotFound)
			return
		}

		pdfBytes, _, err := renderGRNSheetPDF(data, time.Now())
		if err != nil {
			http.Error(w, "failed to build GRN sheet", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=grn-%d.pdf", id))
		_, _ = w.Write(pdfBytes)
	}
}
