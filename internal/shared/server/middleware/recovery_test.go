package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryWritesEnvelopeBeforeBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), `"code":"internal"`)
}

func TestRecoveryMarksStreamTrailer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery())
	router.GET("/stream", func(c *gin.Context) {
		c.Header("Trailer", streamStatusTrailer)
		c.Header("Content-Type", "application/x-ndjson")
		c.Status(http.StatusOK)
		_, _ = c.Writer.WriteString(`{"recommendations":[`)
		c.Writer.Flush()
		panic("mid-stream")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, `{"recommendations":[`, resp.Body.String())
	assert.Equal(t, "error", resp.Result().Trailer.Get(streamStatusTrailer))
}
