package server

import (
	"context"
	"net/http"

	"gymcore/internal/auth"
	"gymcore/internal/availability"
	"gymcore/internal/catalog"
	"gymcore/internal/config"
	"gymcore/internal/membership"
	"gymcore/internal/reservation"
	"gymcore/internal/resource"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Deps carries the wired domain services the router exposes.
type Deps struct {
	Catalog      catalog.Repository
	Memberships  membership.Service
	Reservations reservation.Service
	Resources    resource.Service
	Availability *availability.Engine
}

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, deps Deps) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(corsMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	catalogHandler := catalog.NewHandler(deps.Catalog)
	membershipHandler := membership.NewHandler(deps.Memberships)
	reservationHandler := reservation.NewHandler(deps.Reservations)
	resourceHandler := resource.NewHandler(deps.Resources)
	availabilityHandler := availability.NewHandler(deps.Availability)

	router.GET("/health", Health)
	router.GET("/ready", Ready(db))
	router.GET("/metrics", Metrics())
	router.GET("/membership-types", catalogHandler.ListTypes)

	authMiddleware := auth.Middleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/memberships/me", membershipHandler.GetMy)
		protected.POST("/memberships", membershipHandler.Purchase)
		protected.POST("/memberships/:membershipID/activate", membershipHandler.Activate)
		protected.POST("/memberships/:membershipID/renew", membershipHandler.Renew)
		protected.POST("/memberships/:membershipID/suspend", membershipHandler.Suspend)
		protected.POST("/memberships/:membershipID/reactivate", membershipHandler.Reactivate)
		protected.POST("/memberships/:membershipID/cancel", membershipHandler.Cancel)

		protected.GET("/availability", availabilityHandler.ListSlots)

		protected.POST("/reservations", reservationHandler.Create)
		protected.GET("/reservations", reservationHandler.ListMy)
		protected.POST("/reservations/:reservationID/cancel", reservationHandler.Cancel)

		protected.GET("/locations", resourceHandler.ListLocations)
	}

	operator := router.Group("/")
	operator.Use(authMiddleware, auth.RequireRole(auth.RoleOperator, auth.RoleAdmin))
	{
		operator.GET("/classes/:classID/reservations", reservationHandler.ListByGroupClass)
		operator.POST("/reservations/:reservationID/no-show", reservationHandler.MarkNoShow)
		operator.POST("/reservations/:reservationID/complete", reservationHandler.MarkCompleted)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/locations", resourceHandler.CreateLocation)
		admin.GET("/locations", resourceHandler.ListLocations)
		admin.POST("/classes", resourceHandler.CreateGroupClass)
		admin.POST("/instructors", resourceHandler.CreateInstructor)
		admin.POST("/instructors/:instructorID/windows", resourceHandler.AddInstructorWindow)
		admin.POST("/spaces", resourceHandler.CreateSpace)
		admin.POST("/spaces/:spaceID/windows", resourceHandler.AddSpaceWindow)
	}

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
