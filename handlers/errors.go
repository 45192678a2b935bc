package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"murmur/middleware"
	"murmur/models"
	"murmur/service"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

var statusByKind = map[service.Kind]int{
	service.KindNotFound:     http.StatusNotFound,
	service.KindForbidden:    http.StatusForbidden,
	service.KindConflict:     http.StatusConflict,
	service.KindUnauthorized: http.StatusUnauthorized,
}

// writeError maps domain failures to their status. Anything else is logged
// and hidden behind a 500.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	if status, ok := statusByKind[service.KindOf(err)]; ok {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	logger.Error("request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"request_id", middleware.GetRequestID(c),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func pathID(c *gin.Context, name string) (models.ID, bool) {
	id, err := models.ParseID(c.Param(name))
	if err != nil || id == 0 {
		badRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}

// callerID returns the authenticated caller. Routes using it sit behind
// AuthMiddleware, so a missing identity is answered with 401.
func callerID(c *gin.Context) (models.ID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	}
	return id, ok
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return n, true
}
