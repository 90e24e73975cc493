package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"bookstay/internal/infra/config"
	"bookstay/internal/infra/obs"
)

type AvailabilityHTTP interface {
	Create(c *gin.Context)
	UpdateDate(c *gin.Context)
	UpdatePrice(c *gin.Context)
	Slots(c *gin.Context)
	Intervals(c *gin.Context)
	Search(c *gin.Context)
}

type ReservationHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	ListForAccommodation(c *gin.Context)
	Confirm(c *gin.Context)
	Cancel(c *gin.Context)
	ReviewAccommodation(c *gin.Context)
	ReviewHost(c *gin.Context)
	CheckUserDeletable(c *gin.Context)
}

type Handlers struct {
	Availability   AvailabilityHTTP
	Reservation    ReservationHTTP
	UserMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.UserMiddleware != nil {
		router.Use(h.UserMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Availability != nil {
		availabilities := api.Group("/availabilities")
		availabilities.GET("", h.Availability.Search)
		availabilities.POST("/:accommodationId", h.Availability.Create)
		availabilities.GET("/:accommodationId", h.Availability.Intervals)
		availabilities.GET("/:accommodationId/slots", h.Availability.Slots)
		availabilities.PUT("/:accommodationId/date/:id", h.Availability.UpdateDate)
		availabilities.PUT("/:accommodationId/price/:id", h.Availability.UpdatePrice)
	}
	if h.Reservation != nil {
		reservations := api.Group("/reservations")
		reservations.GET("", h.Reservation.List)
		reservations.POST("/:id", h.Reservation.Create)
		reservations.GET("/:id", h.Reservation.ListForAccommodation)
		reservations.PUT("/:id/confirm", h.Reservation.Confirm)
		reservations.PUT("/:id/cancel", h.Reservation.Cancel)
		reservations.POST("/review/accommodation", h.Reservation.ReviewAccommodation)
		reservations.POST("/review/host", h.Reservation.ReviewHost)
		reservations.POST("/delete/users", h.Reservation.CheckUserDeletable)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
