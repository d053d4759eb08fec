package exports

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stockdesk/infrastructure/sqlite"
	"stockdesk/models"
)

// HistoryPageQueryHandler renders the submission log with an optional
// kind filter.
func HistoryPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := normalizeKind(r.URL.Query().Get("kind"))
		entries, err := LoadSubmissions(r.Context(), db, kind, 200)
		if err != nil {
			http.Error(w, "failed to load submissions", http.StatusInternalServerError)
			return
		}
		data := PageData{Entries: entries, Kind: kind}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := HistoryPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render page", http.StatusInternalServerError)
		}
	}
}

// SubmissionsCSVQueryHandler streams the full submission log as CSV.
func SubmissionsCSVQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := normalizeKind(r.URL.Query().Get("kind"))
		entries, err := LoadSubmissions(r.Context(), db, kind, 0)
		if err != nil {
			http.Error(w, "failed to load submissions", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=submissions-%s.csv", time.Now().Format("20060102-150405")))
		if err := WriteSubmissionsCSV(w, entries); err != nil {
			// Headers are gone; nothing left to do but log via middleware.
			return
		}
	}
}

// WriteSubmissionsCSV writes the log entries in a spreadsheet-friendly
// shape.
func WriteSubmissionsCSV(w io.Writer, entries []models.SubmissionLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "created_at", "workstation", "kind", "reference_id", "location_id", "line_count", "total_qty"}); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.Workstation,
			e.Kind,
			strconv.FormatInt(e.ReferenceID, 10),
			strconv.FormatInt(e.LocationID, 10),
			strconv.FormatInt(e.LineCount, 10),
			strconv.FormatInt(e.TotalQty, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func normalizeKind(v string) string {
	switch strings.TrimSpace(v) {
	case models.SubmissionKindReceipt:
		return models.SubmissionKindReceipt
	case models.SubmissionKindDispatchReceive:
		return models.SubmissionKindDispatchReceive
	default:
		return ""
	}
}
