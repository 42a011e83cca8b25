package views

import (
	"errors"

	"goldcast/internal/i18n"
	"goldcast/internal/models"
)

// ErrorMessage picks the user-facing text for a failed action.
// Server messages are shown as sent; everything unknown reads as a connectivity problem.
func ErrorMessage(err error, cat *i18n.Catalog) string {
	if err == nil {
		return ""
	}

	var verr *models.ValidationError
	var serr *models.ServerError
	switch {
	case errors.As(err, &verr):
		return cat.T("error.validation." + string(verr.Reason))
	case errors.As(err, &serr):
		if serr.Message != "" {
			return serr.Message
		}
		return cat.T("error.server")
	default:
		return cat.T("error.transport")
	}
}
