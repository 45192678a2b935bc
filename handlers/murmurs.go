package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"murmur/metrics"
	"murmur/middleware"
	"murmur/service"
)

type MurmurHandler struct {
	murmurs  *service.Murmurs
	timeline *service.Timeline
	logger   *slog.Logger
}

func NewMurmurHandler(murmurs *service.Murmurs, timeline *service.Timeline, logger *slog.Logger) *MurmurHandler {
	return &MurmurHandler{murmurs: murmurs, timeline: timeline, logger: logger}
}

// Timeline handles GET /murmurs?page=&limit=.
func (h *MurmurHandler) Timeline(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	page, ok := queryInt(c, "page", defaultPage)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", defaultLimit)
	if !ok {
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	result, err := h.timeline.Get(c.Request.Context(), userID, page, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toTimelineDTO(result))
}

// Get handles GET /murmurs/:id. Authentication is optional; without it
// likedByMe is always false.
func (h *MurmurHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	viewerID, _ := middleware.UserID(c)

	v, err := h.murmurs.GetByID(c.Request.Context(), id, viewerID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toMurmurDTO(v))
}

func (h *MurmurHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req murmurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	v, err := h.murmurs.Create(c.Request.Context(), userID, req.Content)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	metrics.MurmursPosted.Inc()
	c.JSON(http.StatusCreated, toMurmurDTO(v))
}

func (h *MurmurHandler) Update(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req murmurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	v, err := h.murmurs.Update(c.Request.Context(), userID, id, req.Content)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toMurmurDTO(v))
}

func (h *MurmurHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.murmurs.Delete(c.Request.Context(), userID, id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MurmurHandler) Like(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.murmurs.Like(c.Request.Context(), userID, id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	metrics.Likes.WithLabelValues("like").Inc()
	c.Status(http.StatusNoContent)
}

func (h *MurmurHandler) Unlike(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.murmurs.Unlike(c.Request.Context(), userID, id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	metrics.Likes.WithLabelValues("unlike").Inc()
	c.Status(http.StatusNoContent)
}
