package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/courserate-backend/internal/services"
)

func TestExtractTokenChannelPrecedence(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		cookie     *string
		header     string
		wantToken  string
		wantSource string
	}{
		{name: "cookie only", cookie: strp("abc"), wantToken: "abc", wantSource: services.TokenSourceCookie},
		{name: "cookie wins over header", cookie: strp("abc"), header: "Bearer xyz", wantToken: "abc", wantSource: services.TokenSourceCookie},
		{name: "empty cookie still wins", cookie: strp(""), header: "Bearer xyz", wantToken: "", wantSource: services.TokenSourceCookie},
		{name: "header only", header: "bearer xyz ", wantToken: "xyz", wantSource: services.TokenSourceHeader},
		{name: "non bearer header", header: "Basic xyz"},
		{name: "nothing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.cookie != nil {
				req.AddCookie(&http.Cookie{Name: services.TokenCookieName, Value: *tc.cookie})
			}
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			c.Request = req

			token, source := extractToken(c)
			if token != tc.wantToken || source != tc.wantSource {
				t.Fatalf("extractToken: want=(%q,%q) got=(%q,%q)", tc.wantToken, tc.wantSource, token, source)
			}
		})
	}
}

func strp(s string) *string { return &s }
