package http

import (
	"github.com/go-chi/chi/v5"

	dispatchreceive "stockdesk/frontend/dispatches/receive"
	exportspage "stockdesk/frontend/exports"
	bulkreceipt "stockdesk/frontend/receipts/bulk"
	grnsheets "stockdesk/frontend/receipts/sheets"
)

// RegisterDeskRoutes wires all operator console routes under /desk.
func (s *Server) RegisterDeskRoutes(r chi.Router) chi.Router {
	s.registerReceiptRoutes(r)
	s.registerDispatchRoutes(r)
	s.registerExportRoutes(r)
	s.registerSearchRoutes(r)
	return r
}

func (s *Server) registerReceiptRoutes(r chi.Router) {
	r.Get("/receipts/bulk", bulkreceipt.EditorPageQueryHandler(s.DB))
	r.Post("/receipts/bulk/save", bulkreceipt.SaveCommandHandler(s.DB))
	r.Post("/receipts/bulk/rows/add", bulkreceipt.AddRowCommandHandler(s.DB))
	r.Post("/receipts/bulk/rows/{rowID}/duplicate", bulkreceipt.DuplicateRowCommandHandler(s.DB))
	r.Post("/receipts/bulk/rows/{rowID}/delete", bulkreceipt.DeleteRowCommandHandler(s.DB))
	r.Post("/receipts/bulk/rows/{rowID}/variant", bulkreceipt.SelectVariantCommandHandler(s.DB))
	r.Post("/receipts/bulk/paste", bulkreceipt.PasteCommandHandler(s.DB))
	r.Post("/receipts/bulk/submit", bulkreceipt.SubmitCommandHandler(s.DB, s.Inventory, s.Gate, s.Notify, s.Audit))
	r.Get("/receipts/template.csv", bulkreceipt.TemplateQueryHandler(s.Inventory))
	r.Get("/receipts/sheets/{receiptID}", grnsheets.GRNSheetQueryHandler(s.DB))
}

func (s *Server) registerDispatchRoutes(r chi.Router) {
	r.Get("/dispatches", dispatchreceive.IndexPageQueryHandler(s.DB))
	r.Post("/dispatches/open", dispatchreceive.OpenCommandHandler())
	r.Get("/dispatches/{dispatchID}", dispatchreceive.WorksheetPageQueryHandler(s.DB, s.Inventory))
	r.Post("/dispatches/{dispatchID}/save", dispatchreceive.SaveCommandHandler(s.DB))
	r.Post("/dispatches/{dispatchID}/prefill-all", dispatchreceive.PrefillAllCommandHandler(s.DB))
	r.Post("/dispatches/{dispatchID}/receive-selected", dispatchreceive.ReceiveSelectedCommandHandler(s.DB, s.Inventory, s.Gate, s.Notify, s.Audit))
	r.Post("/dispatches/{dispatchID}/receive-all", dispatchreceive.ReceiveAllCommandHandler(s.DB, s.Inventory, s.Gate, s.Notify, s.Audit))
}

func (s *Server) registerExportRoutes(r chi.Router) {
	r.Get("/exports", exportspage.HistoryPageQueryHandler(s.DB))
	r.Get("/exports/submissions.csv", exportspage.SubmissionsCSVQueryHandler(s.DB))
}

func (s *Server) registerSearchRoutes(r chi.Router) {
	r.Get("/api/variants/search", bulkreceipt.SearchVariantsQueryHandler(s.Inventory))
	r.Get("/api/vendors/search", bulkreceipt.SearchVendorsQueryHandler(s.Inventory))
}
