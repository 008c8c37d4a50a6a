package handlers

import (
	"net/http"

	availabilityRepo "meetpoint/database/repository/availability"
	"meetpoint/middleware"
	"meetpoint/models"
	sessionSvc "meetpoint/services/session"
	"meetpoint/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityHandler serves rule management and the free-interval view.
type AvailabilityHandler struct {
	Rules  availabilityRepo.Repository
	Query  *sessionSvc.QueryService
	Logger *zap.Logger
}

func NewAvailabilityHandler(rules availabilityRepo.Repository, query *sessionSvc.QueryService, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{Rules: rules, Query: query, Logger: logger}
}

// GetFreeIntervalsHandler returns the merged free intervals for a provider
// on a date. Display view; booking validation runs server-side on the
// unmerged rules.
func (h *AvailabilityHandler) GetFreeIntervalsHandler(c *gin.Context) {
	providerID := c.Param("providerId")
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "query parameter 'date' is required (YYYY-MM-DD)")
		return
	}

	intervals, err := h.Query.FreeIntervalsForDisplay(c.Request.Context(), providerID, date)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providerId": providerID, "date": date, "free": intervals})
}

// CreateRuleRequest is the payload for declaring an availability rule.
type CreateRuleRequest struct {
	Weekday   *int   `json:"weekday,omitempty"`
	DateStart string `json:"dateStart,omitempty"`
	DateEnd   string `json:"dateEnd,omitempty"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

// CreateRuleHandler declares a new availability rule for the calling
// provider.
func (h *AvailabilityHandler) CreateRuleHandler(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok || actor.Role != models.RoleProvider {
		utils.JSONError(c, http.StatusForbidden, "forbidden", "only providers may declare availability")
		return
	}

	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if req.Start < 0 || req.End > 24*60 || req.Start >= req.End {
		utils.JSONError(c, http.StatusUnprocessableEntity, "invalid input", "start must be before end, within the day")
		return
	}
	if req.Weekday != nil && (*req.Weekday < 0 || *req.Weekday > 6) {
		utils.JSONError(c, http.StatusUnprocessableEntity, "invalid input", "weekday must be 0 (Sunday) through 6 (Saturday)")
		return
	}
	// A rule is recurring or date-bound, never both.
	if req.Weekday == nil && (req.DateStart == "" || req.DateEnd == "" || req.DateStart > req.DateEnd) {
		utils.JSONError(c, http.StatusUnprocessableEntity, "invalid input", "either weekday or a valid dateStart/dateEnd range is required")
		return
	}
	if req.Weekday != nil && (req.DateStart != "" || req.DateEnd != "") {
		utils.JSONError(c, http.StatusUnprocessableEntity, "invalid input", "a rule is either recurring or date-bound, not both")
		return
	}

	rule := &models.AvailabilityRule{
		ID:         uuid.New().String(),
		ProviderID: actor.ID,
		Weekday:    req.Weekday,
		DateStart:  req.DateStart,
		DateEnd:    req.DateEnd,
		Start:      req.Start,
		End:        req.End,
		Active:     true,
	}
	if err := h.Rules.CreateRule(c.Request.Context(), rule); err != nil {
		h.Logger.Error("failed to create availability rule", zap.Error(err))
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// ListRulesHandler returns every rule owned by a provider.
func (h *AvailabilityHandler) ListRulesHandler(c *gin.Context) {
	providerID := c.Param("providerId")
	rules, err := h.Rules.GetRulesByProvider(c.Request.Context(), providerID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providerId": providerID, "rules": rules})
}

// SetRuleActiveHandler soft-enables or soft-disables one of the calling
// provider's rules. Rules are never deleted while sessions may still
// reference the window.
func (h *AvailabilityHandler) SetRuleActiveHandler(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok || actor.Role != models.RoleProvider {
		utils.JSONError(c, http.StatusForbidden, "forbidden", "only the owning provider may change a rule")
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	ruleID := c.Param("ruleId")
	if err := h.Rules.SetRuleActive(c.Request.Context(), ruleID, actor.ID, *req.Active); err != nil {
		if err == availabilityRepo.ErrRuleNotFound {
			utils.JSONError(c, http.StatusNotFound, "not found", "rule not found")
			return
		}
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ruleId": ruleID, "active": *req.Active})
}
