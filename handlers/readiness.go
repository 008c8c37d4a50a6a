package handlers

import (
	"net/http"

	"meetpoint/middleware"
	sessionSvc "meetpoint/services/session"
	"meetpoint/utils"

	"github.com/gin-gonic/gin"
)

// ReadinessHandler serves the rendezvous endpoints both parties poll while
// waiting to enter a session.
type ReadinessHandler struct {
	Rendezvous *sessionSvc.Rendezvous
}

func NewReadinessHandler(rendezvous *sessionSvc.Rendezvous) *ReadinessHandler {
	return &ReadinessHandler{Rendezvous: rendezvous}
}

// SetReadyHandler records the calling party's readiness flag. A provider
// readying up on a pending session confirms it as a side effect.
func (h *ReadinessHandler) SetReadyHandler(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "caller could not be resolved")
		return
	}

	var req struct {
		Ready *bool `json:"ready" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	state, err := h.Rendezvous.SetReady(c.Request.Context(), c.Param("sessionId"), actor, *req.Ready)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetReadinessHandler is the polling read. Clients poll every 1-2 seconds
// while waiting; once sessionExpired is set they must stop polling and
// discard local state.
func (h *ReadinessHandler) GetReadinessHandler(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "caller could not be resolved")
		return
	}

	status, err := h.Rendezvous.Status(c.Request.Context(), c.Param("sessionId"), actor)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
