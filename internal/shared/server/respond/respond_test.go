package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type bindRequest struct {
	ID       string `json:"id" binding:"required"`
	Revision int    `json:"revision" binding:"gte=0"`
}

func newBindRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/bind", func(c *gin.Context) {
		var req bindRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			ValidationError(c, err)
			return
		}
		OK(c, req)
	})
	return r
}

func TestValidationErrorListsFields(t *testing.T) {
	r := newBindRouter()
	req := httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(`{"revision":-1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Fields []FieldError `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != "validation_error" {
		t.Fatalf("code = %q", resp.Error.Code)
	}
	rules := map[string]string{}
	for _, f := range resp.Error.Details.Fields {
		rules[f.Field] = f.Rule
	}
	if rules["id"] != "required" {
		t.Fatalf("missing id rule in %+v", resp.Error.Details.Fields)
	}
	if rules["revision"] != "gte" {
		t.Fatalf("missing revision rule in %+v", resp.Error.Details.Fields)
	}
}

func TestValidationErrorMalformedBody(t *testing.T) {
	r := newBindRouter()
	req := httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid request body") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestLowerFirst(t *testing.T) {
	cases := map[string]string{
		"ID":             "id",
		"JobDescription": "jobDescription",
		"URLPath":        "urlPath",
		"revision":       "revision",
		"":               "",
	}
	for in, want := range cases {
		if got := lowerFirst(in); got != want {
			t.Fatalf("lowerFirst(%q) = %q, want %q", in, got, want)
		}
	}
}
