// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cargoshare/internal/modules/location"
	"cargoshare/internal/modules/matching"
	"cargoshare/internal/modules/shipment"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	var verr *matching.ValidationError
	var cerr *matching.ConfigurationError
	switch {
	case errors.As(err, &cerr):
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: cerr.Field})
	case errors.As(err, &verr):
		writeJSON(c, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Field: verr.Field})
	case errors.Is(err, shipment.ErrBadRequest), errors.Is(err, location.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, shipment.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, matching.ErrCarbonUnavailable):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "matching timed out")
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
