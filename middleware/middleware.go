package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"murmur/models"
)

const (
	userIDKey    = "user_id"
	requestIDKey = "request_id"

	RequestIDHeader = "X-Request-Id"
	UserIDHeader    = "X-User-Id"
)

// Resolver turns a bearer token into a user id.
type Resolver interface {
	Resolve(token string) (models.ID, error)
}

// AuthMiddleware rejects requests without a valid caller identity with 401.
// With allowHeader set, a numeric X-User-Id header is accepted as well.
func AuthMiddleware(r Resolver, allowHeader bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok, msg := identify(c, r, allowHeader)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// OptionalAuth sets the caller identity when one is supplied and valid, and
// lets the request through either way.
func OptionalAuth(r Resolver, allowHeader bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok, _ := identify(c, r, allowHeader); ok {
			c.Set(userIDKey, id)
		}
		c.Next()
	}
}

// UserID returns the caller set by AuthMiddleware or OptionalAuth.
func UserID(c *gin.Context) (models.ID, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(models.ID)
	return id, ok && id != 0
}

func identify(c *gin.Context, r Resolver, allowHeader bool) (models.ID, bool, string) {
	if token := bearerToken(c.GetHeader("Authorization")); token != "" {
		id, err := r.Resolve(token)
		if err != nil {
			return 0, false, "Invalid token"
		}
		return id, true, ""
	}

	if allowHeader {
		if raw := strings.TrimSpace(c.GetHeader(UserIDHeader)); raw != "" {
			id, err := models.ParseID(raw)
			if err != nil || id == 0 {
				return 0, false, "Invalid user id"
			}
			return id, true, ""
		}
	}
	return 0, false, "Authentication required"
}

// bearerToken accepts "Bearer <token>" in any case, or a bare token.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if strings.EqualFold(header, "bearer") {
		return ""
	}
	return header
}

// RequestID propagates an incoming X-Request-Id or mints a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logger writes one access log line per request.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", GetRequestID(c),
		}
		if id, ok := UserID(c); ok {
			attrs = append(attrs, "user_id", id)
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", attrs...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", attrs...)
		default:
			logger.Info("request", attrs...)
		}
	}
}
