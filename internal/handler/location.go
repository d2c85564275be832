package handler

import (
	"context"
	"errors"
	"net/http"

	"memomap/internal/models"
	"memomap/internal/repository"
	"memomap/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RenameLocationRequest is the body of PATCH /api/memos/:name/location.
// An empty name keeps the stored one.
type RenameLocationRequest struct {
	Name string `json:"name"`
}

// LocationEditor applies inline location name edits
type LocationEditor interface {
	RenameLocation(ctx context.Context, memoName, locationName string) (*models.MapMemo, error)
}

// LocationHandler handles memo location edits
type LocationHandler struct {
	service LocationEditor
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(svc LocationEditor) *LocationHandler {
	return &LocationHandler{service: svc}
}

// RenameLocation handles PATCH /api/memos/:name/location requests
//
//	@Summary	Rename the location attached to a memo
//	@Tags		location
//	@Accept		json
//	@Produce	json
//	@Param		name	path		string					true	"Memo name"
//	@Param		body	body		RenameLocationRequest	true	"New location name"
//	@Success	200		{object}	models.Location
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/api/memos/{name}/location [patch]
func (h *LocationHandler) RenameLocation(c *gin.Context) {
	memoName := c.Param("name")
	if memoName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing memo name"})
		return
	}

	var req RenameLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	memo, err := h.service.RenameLocation(c.Request.Context(), memoName, req.Name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "memo not found"})
		return
	case errors.Is(err, service.ErrNoLocation):
		c.JSON(http.StatusConflict, gin.H{"error": "memo has no location"})
		return
	case err != nil:
		log.Error().Err(err).Str("memo", memoName).Msg("rename location failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, memo.Location)
}
