package handlers

import (
	"errors"
	"net/http"

	"meetpoint/services/scheduling"
	sessionSvc "meetpoint/services/session"
	"meetpoint/utils"

	"github.com/gin-gonic/gin"
)

// respondDomainError maps typed domain errors to HTTP statuses, always
// surfacing the machine-readable kind. Anything untyped is an
// infrastructure failure and becomes an opaque 500 with retry guidance.
func respondDomainError(c *gin.Context, err error) {
	var bookingErr *scheduling.BookingError
	if errors.As(err, &bookingErr) {
		status := http.StatusConflict
		switch bookingErr.Kind {
		case scheduling.KindInvalidDuration, scheduling.KindPastStartTime:
			status = http.StatusUnprocessableEntity
		case scheduling.KindProviderIneligible:
			status = http.StatusForbidden
		}
		utils.JSONKindError(c, status, bookingErr.Kind, bookingErr.Message)
		return
	}

	var stateErr *sessionSvc.StateError
	if errors.As(err, &stateErr) {
		status := http.StatusConflict
		switch stateErr.Kind {
		case sessionSvc.KindNotFound:
			status = http.StatusNotFound
		case sessionSvc.KindNotAuthorized:
			status = http.StatusForbidden
		case sessionSvc.KindRendezvousExpired:
			status = http.StatusGone
		case sessionSvc.KindUnknownEvent:
			status = http.StatusBadRequest
		}
		utils.JSONKindError(c, status, stateErr.Kind, stateErr.Message)
		return
	}

	utils.JSONError(c, http.StatusInternalServerError,
		"Internal error", "The operation could not be completed; please retry.")
}
