package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"murmur/metrics"
	"murmur/service"
)

type UserHandler struct {
	users  *service.Users
	graph  *service.Graph
	logger *slog.Logger
}

func NewUserHandler(users *service.Users, graph *service.Graph, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, graph: graph, logger: logger}
}

func (h *UserHandler) List(c *gin.Context) {
	profiles, err := h.users.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out := make([]userDTO, 0, len(profiles))
	for i := range profiles {
		out = append(out, toUserDTO(&profiles[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	p, err := h.users.Me(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(p))
}

func (h *UserHandler) ByUsername(c *gin.Context) {
	viewerID, ok := callerID(c)
	if !ok {
		return
	}
	p, err := h.users.ByUsername(c.Request.Context(), c.Param("user"), viewerID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(p))
}

func (h *UserHandler) Follow(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "user")
	if !ok {
		return
	}
	if err := h.graph.Follow(c.Request.Context(), userID, targetID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	metrics.Follows.WithLabelValues("follow").Inc()
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "user")
	if !ok {
		return
	}
	if err := h.graph.Unfollow(c.Request.Context(), userID, targetID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	metrics.Follows.WithLabelValues("unfollow").Inc()
	c.Status(http.StatusNoContent)
}
