package adaptor

import (
	"errors"
	"net/http"

	"ev-service-center/pkg/apperr"
	"ev-service-center/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps usecase errors onto HTTP responses. The
// wrapped sentinel decides the status; the wrapped message becomes the
// body so callers see what actually went wrong.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, action string) {
	msg := err.Error()

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		utils.ResponseNotFound(w, msg)
	case errors.Is(err, apperr.ErrConflict):
		utils.ResponseConflict(w, msg)
	case errors.Is(err, apperr.ErrInsufficientStock):
		utils.ResponseConflict(w, msg)
	case errors.Is(err, apperr.ErrInvalidArgument):
		utils.ResponseBadRequest(w, msg, nil)
	case errors.Is(err, apperr.ErrUnauthorized):
		utils.ResponseUnauthorized(w, msg)
	case errors.Is(err, apperr.ErrForbidden):
		utils.ResponseForbidden(w, msg)
	case errors.Is(err, apperr.ErrUpstream):
		log.Warn("Upstream dependency failed",
			zap.String("action", action),
			zap.Error(err),
		)
		utils.ResponseBadGateway(w, msg)
	default:
		log.Error("Unhandled service error",
			zap.String("action", action),
			zap.Error(err),
		)
		utils.ResponseInternalError(w, "Internal server error")
	}
}
