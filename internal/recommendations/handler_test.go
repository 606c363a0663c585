package recommendations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/llm"
)

func newRecommendationRouter(f fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", c.GetHeader("X-Test-User"))
		c.Next()
	})
	NewHandler(f.svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(r *gin.Engine, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Test-User", user)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func postJSON(r *gin.Engine, path, user string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	_ = json.NewEncoder(&body).Encode(payload)
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error.Code
}

const streamPath = "/api/v1/resumes/" + testDocID + "/recommendations"

func TestStreamEndpointWritesNDJSONWithTrailer(t *testing.T) {
	f := newFixture(10)
	r := newRecommendationRouter(f)

	rec := get(r, streamPath, "user-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if rec.Header().Get("Cache-Control") != "no-cache" || rec.Header().Get("X-Accel-Buffering") != "no" {
		t.Fatalf("missing streaming headers: %v", rec.Header())
	}
	if rec.Body.String() != sampleOutput {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if got := rec.Result().Trailer.Get("X-Stream-Status"); got != StreamStatusOK {
		t.Fatalf("expected trailer ok, got %q", got)
	}
	if !rec.Flushed {
		t.Fatalf("expected chunks to be flushed")
	}
}

func TestStreamEndpointMockData(t *testing.T) {
	f := newFixture(1)
	r := newRecommendationRouter(f)

	for i := 0; i < 2; i++ {
		rec := get(r, streamPath+"?mockData=true", "user-1")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var res Result
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("mock body is not a json document: %v", err)
		}
		if len(res.Recommendations) != 20 {
			t.Fatalf("expected 20 mock recommendations, got %d", len(res.Recommendations))
		}
	}
	if f.llm.calls != 0 {
		t.Fatalf("mock mode called the model")
	}
}

func TestStreamEndpointErrorsBeforeStreaming(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		user   string
		setup  func(f fixture)
		status int
		code   string
	}{
		{name: "bad mock flag", path: streamPath + "?mockData=maybe", user: "user-1", status: http.StatusBadRequest, code: "validation_error"},
		{name: "other user", path: streamPath, user: "user-2", status: http.StatusNotFound, code: "not_found"},
		{
			name: "quota exhausted", path: streamPath, user: "user-1",
			setup: func(f fixture) {
				_, _ = f.quota.Consume(t.Context(), "user-1")
			},
			status: http.StatusPaymentRequired, code: "quota_exhausted",
		},
		{
			name: "upstream fails before output", path: streamPath, user: "user-1",
			setup: func(f fixture) {
				f.llm.chunks = nil
				f.llm.err = llm.ErrUpstream
			},
			status: http.StatusBadGateway, code: "upstream_error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(1)
			if tt.setup != nil {
				tt.setup(f)
			}
			rec := get(newRecommendationRouter(f), tt.path, tt.user)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if code := errorCode(t, rec); code != tt.code {
				t.Fatalf("expected code %q, got %q", tt.code, code)
			}
		})
	}
}

func TestStreamEndpointReportsFailureInTrailer(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		err    error
	}{
		{name: "upstream drops", chunks: []string{`{"recommendations":[`}, err: llm.ErrUpstream},
		{name: "malformed", chunks: []string{`{"recommendations":[`, `{"lineNum":1}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(10)
			f.llm.chunks = tt.chunks
			f.llm.err = tt.err

			rec := get(newRecommendationRouter(f), streamPath, "user-1")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected committed 200, got %d", rec.Code)
			}
			if got := rec.Result().Trailer.Get("X-Stream-Status"); got != StreamStatusError {
				t.Fatalf("expected trailer error, got %q", got)
			}
		})
	}
}

func TestRecommendEndpoint(t *testing.T) {
	f := newFixture(10)
	r := newRecommendationRouter(f)

	rec := postJSON(r, "/api/v1/resumes/recommend", "user-1", map[string]any{"id": testDocID})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Recommendations) != 1 || res.Recommendations[0].LineNum != 3 {
		t.Fatalf("unexpected result %+v", res)
	}

	rec = postJSON(r, "/api/v1/resumes/recommend", "user-1", map[string]any{"id": testDocID, "mockData": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for mock, got %d", rec.Code)
	}

	rec = postJSON(r, "/api/v1/resumes/recommend", "user-1", map[string]any{})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "validation_error" {
		t.Fatalf("expected validation error, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRecommendEndpointMalformedOutput(t *testing.T) {
	f := newFixture(10)
	f.llm.chunks = []string{"not json"}

	rec := postJSON(newRecommendationRouter(f), "/api/v1/resumes/recommend", "user-1", map[string]any{"id": testDocID})
	if rec.Code != http.StatusBadGateway || errorCode(t, rec) != "malformed_output" {
		t.Fatalf("expected 502 malformed_output, got %d: %s", rec.Code, rec.Body.String())
	}
}
