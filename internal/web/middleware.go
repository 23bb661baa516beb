package web

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"trackpal/internal/apperr"
	"trackpal/internal/logger"
)

const (
	userIDHeader = "X-User-ID"
	userIDKey    = "trackpal.user_id"
)

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		keyvals := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start),
		}
		switch {
		case status >= 500:
			logger.Error("request", keyvals...)
		case status >= 400:
			logger.Warn("request", keyvals...)
		default:
			logger.Debug("request", keyvals...)
		}
	}
}

// requireUser reads the caller's profile id from X-User-ID.
func requireUser(c *gin.Context) {
	raw := strings.TrimSpace(c.GetHeader(userIDHeader))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "missing or invalid " + userIDHeader + " header",
		})
		return
	}
	c.Set(userIDKey, uint(id))
	c.Next()
}

func currentUser(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}

func (s *Server) requireJobSecret(c *gin.Context) {
	if s.opts.JobSecret == "" {
		c.Next()
		return
	}
	got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(got), []byte(s.opts.JobSecret)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}
	c.Next()
}

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var verr *apperr.ValidationError
	switch {
	case apperr.IsNotFound(err):
		status = http.StatusNotFound
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case apperr.IsUpstream(err):
		status = http.StatusServiceUnavailable
	}

	body := gin.H{"success": false, "error": err.Error()}
	if verr != nil && verr.Field != "" {
		body["field"] = verr.Field
	}
	if status >= 500 {
		logger.Error("request failed", "path", c.FullPath(), "err", err)
		if status == http.StatusServiceUnavailable {
			body["error"] = "storage unavailable, try again later"
		}
	}
	c.JSON(status, body)
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperr.Invalid(name, "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperr.Invalid("body", err.Error()))
		return false
	}
	return true
}
