package recommendations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/llm"
	"resume-tailor/internal/quota"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
)

const (
	streamContentType  = "application/x-ndjson"
	streamStatusHeader = "X-Stream-Status"

	StreamStatusOK    = "ok"
	StreamStatusError = "error"
)

// Handler exposes recommendation endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches recommendation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes/:id/recommendations", h.stream)
	rg.POST("/resumes/recommend", h.recommend)
}

type recommendRequest struct {
	ID       string `json:"id" binding:"required"`
	MockData bool   `json:"mockData"`
}

func (h *Handler) recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ValidationError(c, err)
		return
	}
	c.Set("documentId", req.ID)

	gen, err := h.Svc.Begin(c.Request.Context(), middleware.UserIDFromContext(c), req.ID, req.MockData)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := gen.Complete(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, res)
}

// stream writes the raw model output as it arrives. Errors before the first
// chunk are rendered as a normal error response; after that the outcome is
// reported in the X-Stream-Status trailer.
func (h *Handler) stream(c *gin.Context) {
	docID := c.Param("id")
	c.Set("documentId", docID)

	mock := false
	if v := c.Query("mockData"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "mockData must be a boolean", nil)
			return
		}
		mock = parsed
	}

	ctx := c.Request.Context()
	gen, err := h.Svc.Begin(ctx, middleware.UserIDFromContext(c), docID, mock)
	if err != nil {
		writeError(c, err)
		return
	}

	started := false
	_, err = gen.Stream(ctx, func(chunk string) error {
		if !started {
			startStream(c)
			started = true
		}
		if _, err := c.Writer.WriteString(chunk); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	})

	if !started {
		if err == nil {
			err = ErrMalformedOutput
		}
		c.Set("streamStatus", StreamStatusError)
		writeError(c, err)
		return
	}

	status := StreamStatusOK
	if err != nil {
		status = StreamStatusError
	}
	c.Writer.Header().Set(streamStatusHeader, status)
	c.Set("streamStatus", status)
}

func startStream(c *gin.Context) {
	header := c.Writer.Header()
	header.Set("Content-Type", streamContentType)
	header.Set("Cache-Control", "no-cache")
	header.Set("X-Accel-Buffering", "no")
	header.Set("Trailer", streamStatusHeader)
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
}

func writeError(c *gin.Context, err error) {
	var qe *QuotaError
	switch {
	case errors.As(err, &qe):
		quota.WriteExhausted(c, qe.Status)
	case errors.Is(err, llm.ErrNotImplemented):
		respond.Error(c, http.StatusServiceUnavailable, "llm_unavailable", "recommendation provider not configured", nil)
	case errors.Is(err, ErrMalformedOutput):
		respond.Error(c, http.StatusBadGateway, "malformed_output", "recommendation provider returned an unreadable response", nil)
	case errors.Is(err, llm.ErrUpstream):
		respond.Error(c, http.StatusBadGateway, "upstream_error", "recommendation provider failed", nil)
	default:
		resumes.WriteError(c, err, "failed to generate recommendations")
	}
}
