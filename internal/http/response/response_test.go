package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/courserate-backend/internal/domain/aggregates"
	"github.com/yungbote/courserate-backend/internal/platform/apierr"
)

func respond(t *testing.T, err error) (int, APIError) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondAPIError(c, err)

	var env ErrorEnvelope
	if decodeErr := json.Unmarshal(rec.Body.Bytes(), &env); decodeErr != nil {
		t.Fatalf("decode envelope: %v (%s)", decodeErr, rec.Body.String())
	}
	return rec.Code, env.Error
}

func TestStatusFor(t *testing.T) {
	cases := map[domainagg.ErrorCode]int{
		domainagg.CodeValidation:         http.StatusBadRequest,
		domainagg.CodeNotFound:           http.StatusNotFound,
		domainagg.CodeUnauthenticated:    http.StatusUnauthorized,
		domainagg.CodeInvalidToken:       http.StatusUnauthorized,
		domainagg.CodeForbidden:          http.StatusForbidden,
		domainagg.CodeConflict:           http.StatusConflict,
		domainagg.CodePreconditionFailed: http.StatusConflict,
		domainagg.CodeRetryable:          http.StatusServiceUnavailable,
		domainagg.CodeInvariantViolation: http.StatusInternalServerError,
		domainagg.CodeInternal:           http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := StatusFor(code); got != want {
			t.Fatalf("StatusFor(%s): want=%d got=%d", code, want, got)
		}
	}
}

func TestRespondAPIErrorAggregate(t *testing.T) {
	status, body := respond(t, domainagg.NewError(domainagg.CodeForbidden, "Review.Delete", "not the review owner", nil))
	if status != http.StatusForbidden || body.Code != "forbidden" || body.Message != "not the review owner" {
		t.Fatalf("unexpected response: status=%d body=%+v", status, body)
	}
}

func TestRespondAPIErrorHidesServerDetails(t *testing.T) {
	status, body := respond(t, domainagg.NewError(domainagg.CodeRetryable, "Review.Create", "deadlock detected on course row", nil))
	if status != http.StatusServiceUnavailable || body.Message != "internal error" {
		t.Fatalf("retryable: status=%d body=%+v", status, body)
	}

	status, body = respond(t, errors.New("dial tcp 10.0.0.1:5432: connection refused"))
	if status != http.StatusInternalServerError || body.Code != "internal" || body.Message != "internal error" {
		t.Fatalf("plain error: status=%d body=%+v", status, body)
	}
}

func TestRespondAPIErrorAPIErr(t *testing.T) {
	status, body := respond(t, apierr.Conflict("user_exists", "username or email already registered"))
	if status != http.StatusConflict || body.Code != "user_exists" || body.Message != "username or email already registered" {
		t.Fatalf("unexpected response: status=%d body=%+v", status, body)
	}
}
