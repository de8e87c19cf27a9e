package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// QuotaExceededResponse is the 429 body. Limit and usage are always present
// so the frontend can render "X of Y used".
type QuotaExceededResponse struct {
	Error   string `json:"error"`
	Feature string `json:"feature"`
	Limit   int64  `json:"limit"`
	Usage   int64  `json:"usage"`
}

func traceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// HandleServiceError maps the service error taxonomy onto HTTP semantics.
// Pre-gate store failures surface as 503 so operators can tell an
// infrastructure outage apart from a logic bug.
func HandleServiceError(c *gin.Context, err error) {
	var quota *QuotaExceededError
	switch {
	case errors.As(err, &quota):
		c.JSON(http.StatusTooManyRequests, QuotaExceededResponse{
			Error:   quota.Error(),
			Feature: quota.Feature,
			Limit:   quota.Limit,
			Usage:   quota.Usage,
		})
	case errors.Is(err, ErrTokenMalformed):
		RespondError(c, http.StatusUnauthorized, "Missing or malformed Authorization header")
	case errors.Is(err, ErrSessionInvalid):
		RespondError(c, http.StatusUnauthorized, "Session expired, please log in again")
	case errors.Is(err, ErrIdentityUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "Authentication service temporarily unavailable, please retry")
	case errors.Is(err, ErrStoreUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "Service temporarily unavailable due to a database connection issue, please try again later")
	case errors.Is(err, ErrProvisioning):
		RespondError(c, http.StatusInternalServerError, "Failed to initialize your user profile")
	case errors.Is(err, ErrPlanNotFound):
		RespondError(c, http.StatusInternalServerError, "Subscription plan details could not be loaded")
	case errors.Is(err, ErrNoActivePaidSub):
		RespondError(c, http.StatusBadRequest, "No active paid subscription to cancel")
	case errors.Is(err, ErrNotConfigured):
		RespondError(c, http.StatusServiceUnavailable, "This feature is not configured on the server")
	case errors.Is(err, ErrRecordNotFound):
		RespondError(c, http.StatusNotFound, "Record not found")
	default:
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
