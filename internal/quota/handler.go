package quota

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
)

// Handler exposes quota endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches quota routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me/quota", h.getQuota)
}

// RegisterDevRoutes attaches dev-only quota routes.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/quota/reset", h.resetQuota)
}

func (h *Handler) getQuota(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	st, err := h.Svc.Status(c.Request.Context(), userID)
	if err != nil {
		writeStoreError(c, err, "failed to fetch quota")
		return
	}
	respond.JSON(c, http.StatusOK, st)
}

func (h *Handler) resetQuota(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if _, err := h.Svc.Reset(c.Request.Context(), userID); err != nil {
		writeStoreError(c, err, "failed to reset quota")
		return
	}
	st, err := h.Svc.Status(c.Request.Context(), userID)
	if err != nil {
		writeStoreError(c, err, "failed to fetch quota")
		return
	}
	respond.JSON(c, http.StatusOK, st)
}

func writeStoreError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
	}
}

// WriteExhausted renders the 402 response for a rejected generation request.
func WriteExhausted(c *gin.Context, st Status) {
	respond.Error(c, http.StatusPaymentRequired, "quota_exhausted", "generation quota exhausted", gin.H{
		"remaining":     st.Remaining,
		"replenishesAt": st.ReplenishesAt,
	})
}
