package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rentfair/server/internal/amenity"
	"rentfair/server/internal/apperrors"
	"rentfair/server/internal/database"
	"rentfair/server/internal/estimator"
	"rentfair/server/internal/features"
	"rentfair/server/internal/geocoding"
	"rentfair/server/internal/market"
	"rentfair/server/internal/models"
	"rentfair/server/internal/session"
)

// Radius bounds for amenity search, meters.
const (
	minRadius     = 100
	maxRadius     = 3000
	defaultRadius = 500
)

type Handler struct {
	logger     *logrus.Logger
	sessions   *session.Manager
	estimator  *estimator.Estimator
	geocoder   *geocoding.Geocoder
	fetcher    *amenity.Fetcher
	table      *market.Table
	db         *database.Database
	totalLimit int
}

func NewHandler(
	logger *logrus.Logger,
	sessions *session.Manager,
	est *estimator.Estimator,
	geocoder *geocoding.Geocoder,
	fetcher *amenity.Fetcher,
	table *market.Table,
	db *database.Database,
	totalLimit int,
) *Handler {
	if totalLimit <= 0 {
		totalLimit = 9
	}
	return &Handler{
		logger:     logger,
		sessions:   sessions,
		estimator:  est,
		geocoder:   geocoder,
		fetcher:    fetcher,
		table:      table,
		db:         db,
		totalLimit: totalLimit,
	}
}

// EstimateRequest is the input page's submission: the raw property details
// plus the amenity categories to resolve around the address.
type EstimateRequest struct {
	models.RawPropertyInput
	Amenities    []string `json:"amenities"`
	RadiusMeters int      `json:"radius_meters"`
}

// EstimateResponse carries the full result page: the session snapshot (with
// estimate, coordinates and per-category amenity results) plus the combined
// nearby list capped across categories.
type EstimateResponse struct {
	Session      *session.Session         `json:"session"`
	Nearby       []models.AmenityDistance `json:"nearby"`
	GeocodeError string                   `json:"geocode_error,omitempty"`
}

// CreateSession opens a new session on the welcome page.
func (h *Handler) CreateSession(c *gin.Context) {
	s := h.sessions.Create()
	c.JSON(http.StatusCreated, s)
}

// GetSession returns the current navigation state and snapshot.
func (h *Handler) GetSession(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// StartSession moves from the welcome page to the input page.
func (h *Handler) StartSession(c *gin.Context) {
	s, err := h.sessions.Start(c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// ResetSession returns from the result page to the input page.
func (h *Handler) ResetSession(c *gin.Context) {
	s, err := h.sessions.Reset(c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// Estimate runs the whole flow: normalize, estimate, geocode, resolve
// amenities, persist and move the session to the result page. Geocoding and
// amenity failures degrade; only validation and model errors stop the
// request.
func (h *Handler) Estimate(c *gin.Context) {
	sessionID := c.Param("id")
	s, err := h.sessions.Get(sessionID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	// Estimates are only accepted from the input page; checking up front
	// keeps illegal submissions off the network.
	if s.Page != session.PageInput {
		respondDomainError(c, apperrors.ErrInvalidTransition)
		return
	}

	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse estimate request")
		respondError(c, http.StatusBadRequest, codeBadRequest, "invalid request body", "")
		return
	}

	radius := req.RadiusMeters
	if radius == 0 {
		radius = defaultRadius
	}
	if radius < minRadius || radius > maxRadius {
		respondDomainError(c, apperrors.Validation("radius_meters", "must be between %d and %d", minRadius, maxRadius))
		return
	}

	record, err := features.Normalize(req.RawPropertyInput)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	ctx := c.Request.Context()

	// Geocoding failure means no map and no distances, never a failed
	// estimate.
	var location *models.GeoPoint
	geocodeErr := ""
	address := models.Address{
		Street:      req.Street,
		HouseNumber: req.HouseNumber,
		PostalCode:  req.PostalCode,
		City:        req.City,
	}
	point, err := h.geocoder.Resolve(ctx, address)
	if err != nil {
		h.logger.WithError(err).WithField("address", address.FreeText()).Warn("Could not locate address")
		geocodeErr = "could not locate your address"
	} else {
		location = &point
	}

	estimate, err := h.estimator.Estimate(record, location)
	if err != nil {
		h.logger.WithError(err).Error("Failed to produce estimate")
		respondDomainError(c, err)
		return
	}

	var results []amenity.CategoryResult
	if location != nil && len(req.Amenities) > 0 {
		categories := make([]models.AmenityCategory, len(req.Amenities))
		for i, name := range req.Amenities {
			categories[i] = models.ParseCategory(name)
		}

		results = h.fetcher.FetchRanked(ctx, *location, categories, radius, s.Cache())
	}

	s, err = h.sessions.CompleteEstimate(sessionID, record, estimate, location, results)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if h.db != nil {
		if err := h.db.SaveEstimate(sessionID, record, estimate); err != nil {
			h.logger.WithError(err).Error("Failed to persist estimate history")
		}
	}

	c.JSON(http.StatusOK, EstimateResponse{
		Session:      s,
		Nearby:       amenity.Flatten(results, h.totalLimit),
		GeocodeError: geocodeErr,
	})
}

// History returns the session's recent estimates.
func (h *Handler) History(c *gin.Context) {
	sessionID := c.Param("id")
	if _, err := h.sessions.Get(sessionID); err != nil {
		respondDomainError(c, err)
		return
	}

	limitStr := c.DefaultQuery("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 10
	}

	rows, err := h.db.RecentEstimates(sessionID, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load estimate history")
		respondError(c, http.StatusInternalServerError, codeInternal, "failed to load history", "")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// MarketAverage looks up the market baseline for a postal code.
func (h *Handler) MarketAverage(c *gin.Context) {
	zip, err := strconv.Atoi(c.Param("zip"))
	if err != nil {
		respondDomainError(c, apperrors.Validation("zip", "must be numeric"))
		return
	}

	avg, ok := h.table.LookupZIP(zip)
	if !ok {
		respondError(c, http.StatusNotFound, codeNotFound, "no market data for this postal code", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"postal_code":          zip,
		"average_per_sqm_year": avg,
	})
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
