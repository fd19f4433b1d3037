package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"rental-server/auth"
	"rental-server/cache"
	"rental-server/confs"
	"rental-server/db"
	"rental-server/events"
	"rental-server/handlers"
	httpHandler "rental-server/handlers/http"
	"rental-server/repositories"
	"rental-server/services"
	"rental-server/usecases"
	"rental-server/ws"
)

type Server struct {
	app *gin.Engine
	cfg *confs.Config
	db  db.Database
	bus *events.Bus
	mgr *ws.Manager
}

// NewServer wires repositories, use cases and handlers onto a gin engine.
// The caller owns database, propertyCache and bus.
func NewServer(cfg *confs.Config, database db.Database, propertyCache cache.PropertyCache, bus *events.Bus) *Server {
	s := &Server{
		app: gin.Default(),
		cfg: cfg,
		db:  database,
		bus: bus,
		mgr: ws.NewManager(),
	}
	s.routes(propertyCache)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.app }

func (s *Server) routes(propertyCache cache.PropertyCache) {
	httpHandler.RegisterValidation()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	s.app.Use(cors.New(config), tracing())

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	s.app.GET("/health", health)

	// Initialize repositories
	userRepo := repositories.NewUserPgRepository(s.db)
	propertyRepo := repositories.NewPropertyPgRepository(s.db)
	bookingRepo := repositories.NewBookingPgRepository(s.db)
	paymentRepo := repositories.NewPaymentPgRepository(s.db)
	notificationRepo := repositories.NewNotificationPgRepository(s.db)

	// Initialize use cases
	tokens := auth.NewTokenManager(s.cfg.JWTSecret, s.cfg.TokenTTL)
	authUseCase := usecases.NewAuthUseCase(userRepo, tokens, s.bus, s.cfg.AdminEmail)
	propertyUseCase := usecases.NewPropertyUseCase(propertyRepo, propertyCache)
	bookingUseCase := usecases.NewBookingUseCase(bookingRepo, propertyRepo, s.bus)
	paymentUseCase := usecases.NewPaymentUseCase(s.db, paymentRepo, bookingRepo, s.bus)
	notificationUseCase := usecases.NewNotificationUseCase(notificationRepo, s.bus)

	// Event consumers
	services.NewNotificationRecorder(notificationUseCase).Register(s.bus)
	s.bus.Subscribe(events.NotificationCreated, s.mgr.NotificationPusher())

	// Initialize handlers
	mw := httpHandler.NewAuthMiddleware(authUseCase)
	authHandler := httpHandler.NewAuthHandler(authUseCase)
	propertyHandler := httpHandler.NewPropertyHandler(propertyUseCase)
	bookingHandler := httpHandler.NewBookingHandler(bookingUseCase)
	paymentHandler := httpHandler.NewPaymentHandler(paymentUseCase)
	notificationHandler := httpHandler.NewNotificationHandler(notificationUseCase)
	cacheHandler := handlers.NewCacheHandler(propertyCache)
	wsHandler := handlers.NewWSHandler(s.mgr, authUseCase)

	api := s.app.Group("/api")
	{
		api.GET("/health", health)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", mw.RequireAuth(), authHandler.Me)
		}

		properties := api.Group("/properties")
		{
			properties.GET("", propertyHandler.ListProperties)
			properties.GET("/:id", propertyHandler.GetProperty)
			properties.POST("", mw.RequireAdmin(), propertyHandler.CreateProperty)
			properties.PUT("/:id", mw.RequireAdmin(), propertyHandler.UpdateProperty)
			properties.DELETE("/:id", mw.RequireAdmin(), propertyHandler.DeleteProperty)
		}

		bookings := api.Group("/bookings", mw.RequireAuth())
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.GetBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.PUT("/:id", bookingHandler.UpdateBooking)
			bookings.PATCH("/:id/cancel", bookingHandler.CancelBooking)
		}

		notifications := api.Group("/notifications", mw.RequireAuth())
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.POST("", notificationHandler.CreateNotification)
			notifications.PATCH("/:id/read", notificationHandler.MarkAsRead)
			notifications.DELETE("/:id", notificationHandler.DeleteNotification)
		}

		payments := api.Group("/payments", mw.RequireAuth())
		{
			payments.GET("", paymentHandler.GetPayments)
			payments.GET("/booking/:id", paymentHandler.GetPaymentsByBooking)
			payments.GET("/:id", paymentHandler.GetPayment)
			payments.POST("", paymentHandler.CreatePayment)
			payments.PATCH("/:id/status", paymentHandler.UpdatePaymentStatus)
			payments.PATCH("/:id/refund", paymentHandler.RefundPayment)
		}

		// Operator endpoints
		cacheGroup := api.Group("/cache", mw.RequireAdmin())
		{
			cacheGroup.GET("/stats", cacheHandler.GetCacheStats)
			cacheGroup.DELETE("", cacheHandler.ClearCache)
			cacheGroup.DELETE("/properties/:id", cacheHandler.InvalidateProperty)
		}
		api.GET("/ws/connected", mw.RequireAdmin(), wsHandler.GetConnectedUsers)
	}

	s.app.GET("/ws", wsHandler.HandleNotificationsWS)
}

// Run serves until ctx is cancelled, then drains in-flight requests for up to 10s.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              "0.0.0.0:" + s.cfg.Port,
		Handler:           s.app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s (env=%s)", s.cfg.Port, s.cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Println("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("Server stopped gracefully")
	return nil
}
