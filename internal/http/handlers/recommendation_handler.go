// README: Recommendation handlers: ranked matches as JSON or XLSX.
package handlers

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cargoshare/internal/export"
	"cargoshare/internal/modules/matching"
	"cargoshare/internal/modules/shipment"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RecommendationHandler struct {
	matching  *matching.Service
	shipments *shipment.Service
}

func NewRecommendationHandler(matchingSvc *matching.Service, shipmentSvc *shipment.Service) *RecommendationHandler {
	return &RecommendationHandler{matching: matchingSvc, shipments: shipmentSvc}
}

type recommendRequest struct {
	shipmentPayload
	NumRecommendations *int     `json:"num_recommendations"`
	DestThresholdKm    *float64 `json:"dest_threshold_km"`
	TimeThresholdHours *float64 `json:"time_threshold_hours"`
}

type recommendResponse struct {
	Recommendations []matching.Result `json:"recommendations"`
	Fallback        bool              `json:"fallback"`
}

func (h *RecommendationHandler) Recommend(c *gin.Context) {
	_, rec, ok := h.run(c)
	if !ok {
		return
	}
	results := rec.Results
	for i := range results {
		results[i].Score = math.Round(results[i].Score*10) / 10
	}
	writeJSON(c, http.StatusOK, recommendResponse{Recommendations: results, Fallback: rec.Fallback})
}

func (h *RecommendationHandler) Export(c *gin.Context) {
	q, rec, ok := h.run(c)
	if !ok {
		return
	}
	data, err := export.Workbook(q, rec.Results, time.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	name := "recommendations.xlsx"
	if q.ID != "" {
		name = fmt.Sprintf("recommendations-%s.xlsx", q.ID)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *RecommendationHandler) run(c *gin.Context) (shipment.Shipment, matching.Recommendation, bool) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body")
		return shipment.Shipment{}, matching.Recommendation{}, false
	}
	q, err := req.toShipment(h.shipments.Catalog())
	if err != nil {
		writeServiceError(c, err)
		return shipment.Shipment{}, matching.Recommendation{}, false
	}
	rec, err := h.matching.Recommend(c.Request.Context(), matching.RecommendCommand{
		Query:              q,
		N:                  req.NumRecommendations,
		DestThresholdKm:    req.DestThresholdKm,
		TimeThresholdHours: req.TimeThresholdHours,
	})
	if err != nil {
		writeServiceError(c, err)
		return shipment.Shipment{}, matching.Recommendation{}, false
	}
	return q, rec, true
}
