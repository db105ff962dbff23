// README: Destination proximity lookups backed by the GEO index.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cargoshare/internal/modules/location"
	"cargoshare/internal/types"
)

type LocationHandler struct {
	location *location.Service
}

// NewLocationHandler accepts a nil service when no GEO index is configured.
func NewLocationHandler(svc *location.Service) *LocationHandler {
	return &LocationHandler{location: svc}
}

func (h *LocationHandler) Nearby(c *gin.Context) {
	if h.location == nil {
		writeError(c, http.StatusServiceUnavailable, "destination index not configured")
		return
	}
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(c, http.StatusBadRequest, "lat and lng are required")
		return
	}
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius_km", "50"), 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid radius_km")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid limit")
		return
	}

	hits, err := h.location.Nearby(c.Request.Context(), types.Point{Lat: lat, Lng: lng}, radius, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"shipments": hits})
}
