package status

import (
	"log/slog"

	"github.com/glassbreakers/glasspanel/internal/view"
)

// ElementID is the id of the status line element
const ElementID = "status"

const (
	ColorSuccess = "green"
	ColorError   = "red"
)

// Reporter writes one-line outcomes into the status element. Last call wins.
type Reporter struct {
	doc    *view.Document
	logger *slog.Logger
}

// NewReporter creates a reporter writing into doc
func NewReporter(doc *view.Document, logger *slog.Logger) *Reporter {
	return &Reporter{doc: doc, logger: logger}
}

// Report sets the status text and its color
func (r *Reporter) Report(message string, isError bool) {
	color := ColorSuccess
	if isError {
		color = ColorError
		r.logger.Warn(message)
	} else {
		r.logger.Info(message)
	}

	r.doc.Update(ElementID, func(e *view.Element) {
		e.Text = message
		e.Color = color
	})
}
