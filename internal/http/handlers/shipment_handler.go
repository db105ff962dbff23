// README: Shipment pool handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cargoshare/internal/modules/matching"
	"cargoshare/internal/modules/shipment"
	"cargoshare/internal/types"
)

type ShipmentHandler struct {
	shipments *shipment.Service
	matching  *matching.Service
}

func NewShipmentHandler(shipmentSvc *shipment.Service, matchingSvc *matching.Service) *ShipmentHandler {
	return &ShipmentHandler{shipments: shipmentSvc, matching: matchingSvc}
}

func (h *ShipmentHandler) Create(c *gin.Context) {
	var req shipmentPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body")
		return
	}
	sh, err := req.toShipment(h.shipments.Catalog())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	created, err := h.shipments.Create(c.Request.Context(), sh)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, created)
}

func (h *ShipmentHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing id")
		return
	}
	sh, err := h.shipments.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sh)
}

func (h *ShipmentHandler) CarbonImpact(c *gin.Context) {
	id := c.Param("id")
	other := c.Query("with")
	if id == "" || other == "" {
		writeError(c, http.StatusBadRequest, "id and with are required")
		return
	}
	impact, err := h.matching.CarbonImpact(c.Request.Context(), types.ID(id), types.ID(other))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, impact)
}

func (h *ShipmentHandler) GoodsTypes(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"goods_types": h.shipments.Catalog()})
}
