package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murmur/models"
	"murmur/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantBody string
	}{
		{service.NotFound("Murmur not found"), http.StatusNotFound, `{"error":"Murmur not found"}`},
		{service.Forbidden("nope"), http.StatusForbidden, `{"error":"nope"}`},
		{fmt.Errorf("wrapped: %w", service.Conflict("dup")), http.StatusConflict, `{"error":"wrapped: dup"}`},
		{service.Unauthorized("Invalid token"), http.StatusUnauthorized, `{"error":"Invalid token"}`},
		{errors.New("db exploded"), http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		c, w := testContext("/")

		writeError(c, logger, tt.err)

		assert.Equal(t, tt.wantCode, w.Code)
		assert.JSONEq(t, tt.wantBody, w.Body.String())
		if tt.wantCode == http.StatusInternalServerError {
			assert.Contains(t, buf.String(), "db exploded")
		} else {
			assert.Empty(t, buf.String())
		}
	}
}

func TestQueryInt(t *testing.T) {
	c, _ := testContext("/?page=3")
	n, ok := queryInt(c, "page", 1)
	require.True(t, ok)
	assert.Equal(t, 3, n)

	n, ok = queryInt(c, "limit", 10)
	require.True(t, ok)
	assert.Equal(t, 10, n)

	c, w := testContext("/?page=three")
	_, ok = queryInt(c, "page", 1)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPathID(t *testing.T) {
	c, _ := testContext("/")
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	id, ok := pathID(c, "id")
	require.True(t, ok)
	assert.Equal(t, models.ID(12), id)

	for _, raw := range []string{"", "0", "-1", "abc"} {
		c, w := testContext("/")
		c.Params = gin.Params{{Key: "id", Value: raw}}
		_, ok := pathID(c, "id")
		assert.False(t, ok, raw)
		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
	}
}

func TestToMurmurDTO(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	dto := toMurmurDTO(&service.MurmurView{
		ID:        7,
		Content:   "hi",
		CreatedAt: at,
		UpdatedAt: at,
		LikeCount: 2,
		LikedByMe: true,
		Author:    service.Author{ID: 3, Username: "alice", DisplayName: "Alice"},
	})
	assert.Equal(t, "7", dto.ID)
	assert.Equal(t, "3", dto.Author.ID)
	assert.EqualValues(t, 2, dto.LikeCount)
	assert.True(t, dto.LikedByMe)
}

func TestToSessionUserDTO(t *testing.T) {
	email := "a@example.com"
	dto := toSessionUserDTO(&models.User{ID: 9, Username: "alice", DisplayName: "Alice", Email: &email})
	assert.Equal(t, sessionUserDTO{ID: "9", Username: "alice", DisplayName: "Alice", Email: email}, dto)

	dto = toSessionUserDTO(&models.User{ID: 9, Username: "alice"})
	assert.Empty(t, dto.Email)
}
