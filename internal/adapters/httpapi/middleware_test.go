package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/Huddle/internal/domain"
)

type verifierFunc func(ctx context.Context, credential string) (domain.UserID, error)

func (f verifierFunc) Verify(ctx context.Context, credential string) (domain.UserID, error) {
	return f(ctx, credential)
}

func newAuthedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	verifier := verifierFunc(func(_ context.Context, credential string) (domain.UserID, error) {
		if credential != "good" {
			return "", errors.New("invalid token")
		}
		return "u1", nil
	})
	r := gin.New()
	r.GET("/whoami", BearerAuth(verifier), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"you": currentUser(c)})
	})
	return r
}

func TestBearerAuthRejections(t *testing.T) {
	r := newAuthedRouter()
	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic abc"},
		{"bad token", "Bearer bad"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestBearerAuthExposesCaller(t *testing.T) {
	r := newAuthedRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		You string `json:"you"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.You != "u1" {
		t.Fatalf("you = %q, want u1", body.You)
	}
}
