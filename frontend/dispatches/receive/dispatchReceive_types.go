package receive

import "stockdesk/models"

// PageData drives the worksheet view. ReadOnly is set when the dispatch
// status does not allow receiving or this worksheet has already been
// submitted; ReadOnlyReason is the banner text explaining why.
type PageData struct {
	Worksheet      models.DispatchWorksheet
	Lines          []models.WorksheetLine
	Message        string
	IsError        bool
	ReadOnly       bool
	ReadOnlyReason string
}

// IndexData drives the dispatch lookup page.
type IndexData struct {
	Recent  []models.DispatchWorksheet
	Message string
	IsError bool
}
