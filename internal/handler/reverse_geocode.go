package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"memomap/internal/models"
	"memomap/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ReverseGeocodeHandler handles reverse geocoding requests
type ReverseGeocodeHandler struct {
	service GeoCodingService
}

// Service interface for dependency injection
type GeoCodingService interface {
	ReverseGeocode(context.Context, float64, float64) (*models.Place, error)
}

// NewReverseGeocodeHandler creates a new reverse geocode handler
func NewReverseGeocodeHandler(svc GeoCodingService) *ReverseGeocodeHandler {
	return &ReverseGeocodeHandler{service: svc}
}

// ReverseGeocode handles GET /reverse-geocode requests
//
//	@Summary	Resolve coordinates to a place name
//	@Tags		location
//	@Produce	json
//	@Param		lat	query		number	true	"Latitude"
//	@Param		lon	query		number	true	"Longitude"
//	@Success	200	{object}	models.Place
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	502	{object}	ErrorResponse
//	@Router		/reverse-geocode [get]
func (h *ReverseGeocodeHandler) ReverseGeocode(c *gin.Context) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")

	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters 'lat' and 'lon'"})
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid latitude format"})
		return
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid longitude format"})
		return
	}

	place, err := h.service.ReverseGeocode(c.Request.Context(), lat, lon)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCoordinates) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
			return
		}
		log.Error().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("reverse geocode failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "location unavailable"})
		return
	}

	if place == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no place found near the specified coordinates"})
		return
	}

	c.JSON(http.StatusOK, place)
}
