package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geo"

	"rentfair/server/internal/models"
)

// DistanceRequest is a second address to compare against the session's
// resolved property location.
type DistanceRequest struct {
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
}

type DistanceResponse struct {
	From           models.GeoPoint `json:"from"`
	To             models.GeoPoint `json:"to"`
	DistanceMeters int             `json:"distance_meters"`
}

// DistanceToAddress geocodes a comparison address and returns its
// great-circle distance from the session's property. Requires an estimate
// with a resolved location; unlike the estimate flow, a failed geocode here
// is the whole answer and is reported as an error.
func (h *Handler) DistanceToAddress(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if s.Location == nil {
		respondError(c, http.StatusNotFound, codeNotFound, "session has no resolved location", "")
		return
	}

	var req DistanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse distance request")
		respondError(c, http.StatusBadRequest, codeBadRequest, "invalid request body", "")
		return
	}

	address := models.Address{
		Street:      req.Street,
		HouseNumber: req.HouseNumber,
		PostalCode:  req.PostalCode,
		City:        req.City,
	}
	point, err := h.geocoder.Resolve(c.Request.Context(), address)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	meters := geo.DistanceHaversine(s.Location.Point(), point.Point())
	c.JSON(http.StatusOK, DistanceResponse{
		From:           *s.Location,
		To:             point,
		DistanceMeters: int(meters),
	})
}
