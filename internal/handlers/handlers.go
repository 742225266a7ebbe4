package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"forestpest/auth/internal/config"
	"forestpest/auth/internal/metrics"
	"forestpest/auth/internal/middleware"
	"forestpest/auth/internal/models"
	"forestpest/auth/internal/permission"
	"forestpest/auth/internal/service"
)

// HandlerSet serves the auth API. db and cache may be nil when the service
// runs on in-memory stores.
type HandlerSet struct {
	log     zerolog.Logger
	cfg     *config.AppConfig
	auth    *service.AuthService
	metrics *metrics.Metrics
	db      *pgxpool.Pool
	cache   *redis.Client
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	auth *service.AuthService,
	m *metrics.Metrics,
	db *pgxpool.Pool,
	cache *redis.Client,
) HandlerSet {
	return HandlerSet{
		log:     log,
		cfg:     cfg,
		auth:    auth,
		metrics: m,
		db:      db,
		cache:   cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/validate", h.Validate)
		auth.GET("/token-status", h.TokenStatus)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/validate-reset-token", h.ValidateResetToken)
		auth.POST("/reset-password", h.ResetPassword)

		protected := v1.Group("/auth")
		protected.Use(middleware.Auth(h.auth))
		protected.GET("/me", h.Me)
		protected.GET("/sessions", h.ListSessions)
		protected.DELETE("/sessions", h.TerminateOwnSessions)
		protected.DELETE("/sessions/:id", h.TerminateOwnSession)
		protected.GET("/session-info", h.GetSessionInfo)
		protected.PUT("/session-info", h.PutSessionInfo)
		protected.DELETE("/session-info", h.DeleteSessionInfo)
		protected.POST("/change-password", h.ChangePassword)
		protected.GET("/permissions", h.Permissions)
		protected.GET("/permissions/check", h.CheckPermission)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.Auth(h.auth))
	{
		users := admin.Group("")
		users.Use(middleware.RequirePermission(h.auth, permission.UserManage))
		users.DELETE("/users/:id/sessions", h.AdminTerminateUserSessions)
		users.PUT("/users/:id/status", h.AdminSetUserStatus)
		users.DELETE("/sessions", h.AdminTerminateSession)

		roles := admin.Group("/roles")
		roles.Use(middleware.RequireRoles(h.auth, models.UserRoleAdmin))
		roles.GET("", h.AdminRoles)
		roles.GET("/:role/permissions", h.AdminRolePermissions)
	}
}

// writeError maps service errors onto HTTP statuses. Anything unexpected is
// attached to the gin context for the request logger and reported as 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrAccountDisabled), errors.Is(err, service.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidResetToken):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal_server_error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
