package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/courserate-backend/internal/domain/aggregates"
	"github.com/yungbote/courserate-backend/internal/platform/apierr"
)

const internalMessage = "internal error"

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// StatusFor maps an aggregate error code to its HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeUnauthenticated, domainagg.CodeInvalidToken:
		return http.StatusUnauthorized
	case domainagg.CodeForbidden:
		return http.StatusForbidden
	case domainagg.CodeConflict, domainagg.CodePreconditionFailed:
		return http.StatusConflict
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
		_ = c.Error(err)
	}
	if status >= http.StatusInternalServerError {
		msg = internalMessage
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError writes the envelope for any service error. apierr and
// aggregate errors keep their status and code, everything else is a 500.
func RespondAPIError(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := ae.Code
		if code == "" {
			code = string(domainagg.CodeInternal)
		}
		RespondError(c, status, code, err)
		return
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		status := StatusFor(aggErr.Code)
		msg := aggErr.Message
		if msg == "" {
			msg = string(aggErr.Code)
		}
		_ = c.Error(err)
		if status >= http.StatusInternalServerError {
			msg = internalMessage
		}
		c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: string(aggErr.Code)}})
		return
	}
	RespondError(c, http.StatusInternalServerError, string(domainagg.CodeInternal), err)
}

// AbortWithAPIError responds and stops the handler chain.
func AbortWithAPIError(c *gin.Context, err error) {
	RespondAPIError(c, err)
	c.Abort()
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
