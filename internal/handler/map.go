package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"memomap/internal/badge"
	"memomap/internal/models"
	"memomap/internal/repository"
	"memomap/internal/service"
	"memomap/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// MapLoader provides map data
type MapLoader interface {
	Load(ctx context.Context, q service.MapQuery) (*service.MapState, error)
	GetMemo(ctx context.Context, name string) (*models.MapMemo, error)
}

// PageConfig holds the static settings of the rendered pages.
type PageConfig struct {
	TileURL         string
	TileAttribution string
	Center          models.LatLng
	Zoom            int
}

// MapHandler serves the memo map and memo pages
type MapHandler struct {
	service MapLoader
	linker  *badge.Linker
	page    PageConfig
}

// NewMapHandler creates a new map handler
func NewMapHandler(svc MapLoader, linker *badge.Linker, page PageConfig) *MapHandler {
	return &MapHandler{service: svc, linker: linker, page: page}
}

// MapData handles GET /api/map requests
//
//	@Summary	Markers, viewport and paths of the memo map
//	@Tags		map
//	@Produce	json
//	@Param		memo	query		string	false	"Memo to focus"
//	@Param		user	query		int		false	"Creator id filter"
//	@Param		lines	query		bool	false	"Include per-user path lines"
//	@Success	200		{object}	service.MapState
//	@Failure	400		{object}	ErrorResponse
//	@Failure	502		{object}	ErrorResponse
//	@Router		/api/map [get]
func (h *MapHandler) MapData(c *gin.Context) {
	q := service.MapQuery{Memo: c.Query("memo")}

	if raw := c.Query("user"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		q.CreatorID = int32(id)
	}

	if raw := c.Query("lines"); raw != "" {
		lines, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lines flag"})
			return
		}
		q.Lines = lines
	}

	state, err := h.service.Load(c.Request.Context(), q)
	if err != nil {
		log.Error().Err(err).Msg("failed to load map")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load memos"})
		return
	}

	c.JSON(http.StatusOK, state)
}

// MapPage handles GET /map and GET /map/:memoName
func (h *MapHandler) MapPage(c *gin.Context) {
	selected := c.Param("memoName")
	title := "Memo map"
	if selected != "" {
		title = selected + " · " + title
	}

	c.HTML(http.StatusOK, web.MapTemplate, web.MapPage{
		Title:           title,
		APIURL:          "/api/map",
		Selected:        selected,
		TileURL:         h.page.TileURL,
		TileAttribution: h.page.TileAttribution,
		Center:          h.page.Center,
		Zoom:            h.page.Zoom,
	})
}

// MemoPage handles GET /m/:memoName. ?edit=location opens the location field for editing.
func (h *MapHandler) MemoPage(c *gin.Context) {
	name := c.Param("memoName")

	memo, err := h.service.GetMemo(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.String(http.StatusNotFound, "memo not found")
			return
		}
		log.Error().Err(err).Str("memo", name).Msg("failed to load memo")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	c.HTML(http.StatusOK, web.MemoTemplate, web.NewMemoPage(memo, h.linker, c.Query("edit") == "location"))
}
