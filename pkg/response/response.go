package response

import (
	"errors"
	"net/http"
	"time"

	"eseva-portal/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key the request-id middleware fills.
const RequestIDKey = "request_id"

// SuccessResponse wraps every successful JSON body.
type SuccessResponse struct {
	Data      any    `json:"data"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse wraps every failed JSON body. SupportRef is set on 5xx
// responses so a retailer can quote it when a paid service was not created.
type ErrorResponse struct {
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	SupportRef string `json:"support_ref,omitempty"`
	RequestID  string `json:"request_id"`
	Timestamp  string `json:"timestamp"`
}

func OK(c *gin.Context, data any) {
	success(c, http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	success(c, http.StatusCreated, data)
}

// Error renders err. Anything that is not an *apperror.AppError is reported
// as SYS_000 without its message.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.New("SYS_000", "Internal server error", http.StatusInternalServerError)
	}

	id := requestID(c)
	body := ErrorResponse{
		ErrorCode: appErr.Code,
		Message:   appErr.Message,
		RequestID: id,
		Timestamp: timestamp(),
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		body.SupportRef = id
	}
	c.JSON(appErr.HTTPStatus, body)
}

// Redirect sends the browser on with a 302. Gateway return and callback
// routes answer this way instead of with JSON.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	// http.Redirect writes no body for POST, so the status would stay buffered.
	c.Writer.WriteHeaderNow()
}

func success(c *gin.Context, status int, data any) {
	c.JSON(status, SuccessResponse{
		Data:      data,
		RequestID: requestID(c),
		Timestamp: timestamp(),
	})
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func requestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return uuid.NewString()
}
