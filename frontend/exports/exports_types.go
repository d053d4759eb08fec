package exports

import "stockdesk/models"

// PageData drives the submission history page.
type PageData struct {
	Entries []models.SubmissionLog
	Kind    string
	Message string
	IsError bool
}
