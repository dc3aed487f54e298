package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/chat-dashboard/internal/common"
	"github.com/suPer8Hu/chat-dashboard/internal/httpapi/handlers"
	"github.com/suPer8Hu/chat-dashboard/internal/httpapi/middleware"
	"github.com/suPer8Hu/chat-dashboard/internal/metrics"
	"github.com/suPer8Hu/chat-dashboard/internal/storage"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	cfg := h.Cfg

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, common.CodeRouteNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, common.CodeMethodNotAllowed, "method not allowed")
	})

	r.Use(metrics.Middleware())
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-Feed-Origin"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.Identify(cfg.JWTSecret))

	r.GET("/metrics", metrics.Handler())
	r.Static(storage.PublicPrefix, cfg.UploadDir)

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/branding", h.Branding)
	api.GET("/themes", h.Themes)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)

	// any signed-in user
	authGroup := api.Group("/")
	authGroup.Use(middleware.AuthRequired())
	authGroup.GET("/auth/me", h.Me)
	authGroup.GET("/settings", h.GetSettings)
	authGroup.POST("/settings", h.UpdateSettings)
	authGroup.PUT("/settings", h.UpdateSettings)
	authGroup.GET("/chat-sessions", h.ChatSessions)
	authGroup.GET("/sessions", h.Sessions)

	// admins only
	adminGroup := api.Group("/")
	adminGroup.Use(middleware.AdminRequired())
	adminGroup.GET("/settings/history", h.SettingsHistory)
	adminGroup.GET("/users", h.ListUsers)
	adminGroup.POST("/users", h.CreateUser)
	adminGroup.DELETE("/users/:id", h.DeleteUser)
	adminGroup.POST("/users/:id/reset-password", h.ResetPassword)
	adminGroup.GET("/analytics", h.AnalyticsReport)

	return r
}
