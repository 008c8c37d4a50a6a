package handlers

import (
	"net/http"
	"strconv"

	"meetpoint/middleware"
	"meetpoint/models"
	"meetpoint/services/scheduling"
	sessionSvc "meetpoint/services/session"
	"meetpoint/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler serves session creation, lifecycle transitions, the
// expiry sweep, and session listings.
type SessionHandler struct {
	Booking *scheduling.BookingEngine
	Machine *sessionSvc.Machine
	Query   *sessionSvc.QueryService
	Logger  *zap.Logger
}

func NewSessionHandler(booking *scheduling.BookingEngine, machine *sessionSvc.Machine, query *sessionSvc.QueryService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{Booking: booking, Machine: machine, Query: query, Logger: logger}
}

// CreateSessionHandler books a candidate slot for the calling requester.
func (h *SessionHandler) CreateSessionHandler(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok || actor.Role != models.RoleRequester {
		utils.JSONError(c, http.StatusForbidden, "forbidden", "only requesters may book sessions")
		return
	}

	var req scheduling.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	req.RequesterID = actor.ID

	created, err := h.Booking.Book(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// TransitionRequest is the payload for a lifecycle transition.
type TransitionRequest struct {
	Event  string `json:"event" binding:"required"` // confirm|reject|cancel|begin|complete
	Rating *int   `json:"rating,omitempty"`
	Review string `json:"review,omitempty"`
}

// TransitionSessionHandler applies one lifecycle event on behalf of the
// calling actor.
func (h *SessionHandler) TransitionSessionHandler(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "caller could not be resolved")
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		utils.JSONError(c, http.StatusUnprocessableEntity, "invalid input", "rating must be between 1 and 5")
		return
	}

	updated, err := h.Machine.Transition(c.Request.Context(), c.Param("sessionId"), actor, req.Event,
		sessionSvc.TransitionInput{Rating: req.Rating, Review: req.Review})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// SweepExpiredHandler expires overdue pending sessions. Invoked by the
// external periodic trigger; idempotent, so overlapping invocations are
// harmless.
func (h *SessionHandler) SweepExpiredHandler(c *gin.Context) {
	expired, err := h.Machine.SweepExpired(c.Request.Context())
	if err != nil {
		h.Logger.Error("expiry sweep failed", zap.Error(err))
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": expired})
}

// partyForListing resolves the :partyId path parameter and checks that
// the caller is that party. Admins may list anyone's sessions.
func partyForListing(c *gin.Context) (string, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "caller could not be resolved")
		return "", false
	}
	partyID := c.Param("partyId")
	if actor.Role != models.RoleAdmin && actor.ID != partyID {
		utils.JSONError(c, http.StatusForbidden, "forbidden", "you may only list your own sessions")
		return "", false
	}
	return partyID, true
}

// ListSessionsHandler lists a party's sessions, optionally filtered by
// status, paginated.
func (h *SessionHandler) ListSessionsHandler(c *gin.Context) {
	partyID, ok := partyForListing(c)
	if !ok {
		return
	}
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	sessions, err := h.Query.SessionsForParty(c.Request.Context(), partyID, status, page)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"partyId": partyID, "page": page, "sessions": sessions})
}

// ListUpcomingHandler lists the party's sessions inside the
// rendezvous-eligible window.
func (h *SessionHandler) ListUpcomingHandler(c *gin.Context) {
	partyID, ok := partyForListing(c)
	if !ok {
		return
	}
	sessions, err := h.Query.UpcomingRendezvous(c.Request.Context(), partyID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"partyId": partyID, "sessions": sessions})
}
