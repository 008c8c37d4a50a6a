package routes

import (
	"net/http"
	"time"

	"meetpoint/handlers"
	"meetpoint/middleware"
	"meetpoint/services/identity"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle collects the handler groups the router wires up.
type HandlerBundle struct {
	Availability *handlers.AvailabilityHandler
	Session      *handlers.SessionHandler
	Readiness    *handlers.ReadinessHandler
	Identity     identity.Resolver
}

// RegisterRoutes wires every endpoint group onto the router.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterSessionRoutes(r, hb)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Meetpoint"})
	})
}

// RegisterAvailabilityRoutes registers rule management and the
// free-interval view.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/availability")
	{
		// Public reads: requesters browse free time before authenticating
		// a booking.
		api.GET("/:providerId/free", hb.Availability.GetFreeIntervalsHandler)
		api.GET("/:providerId/rules", hb.Availability.ListRulesHandler)

		protected := api.Group("")
		protected.Use(middleware.ActorMiddleware(hb.Identity))
		protected.POST("/rules", hb.Availability.CreateRuleHandler)
		protected.PATCH("/rules/:ruleId/active", hb.Availability.SetRuleActiveHandler)
	}
}

// RegisterSessionRoutes registers booking, lifecycle, sweep and rendezvous
// endpoints.
func RegisterSessionRoutes(r *gin.Engine, hb *HandlerBundle) {
	// The sweep is invoked by the periodic trigger, not an end user.
	r.POST("/api/cron/sweep-expired", hb.Session.SweepExpiredHandler)

	api := r.Group("/api/sessions")
	api.Use(middleware.ActorMiddleware(hb.Identity))
	{
		api.POST("", hb.Session.CreateSessionHandler)
		api.POST("/:sessionId/transition", hb.Session.TransitionSessionHandler)
		api.POST("/:sessionId/ready", hb.Readiness.SetReadyHandler)
		api.GET("/:sessionId/ready", hb.Readiness.GetReadinessHandler)
	}

	parties := r.Group("/api/parties")
	parties.Use(middleware.ActorMiddleware(hb.Identity))
	{
		parties.GET("/:partyId/sessions", hb.Session.ListSessionsHandler)
		parties.GET("/:partyId/upcoming", hb.Session.ListUpcomingHandler)
	}
}
