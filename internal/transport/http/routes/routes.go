package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/core/port"
	"github.com/JLCarveth/blog/internal/infra/config"
	"github.com/JLCarveth/blog/internal/transport/http/handlers"
	"github.com/JLCarveth/blog/internal/transport/http/middleware"
	"github.com/JLCarveth/blog/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth         *usecase.AuthService
	Registration *usecase.RegistrationService
	Roles        *usecase.RoleService
	Posts        *usecase.PostService
	Permissions  *usecase.PermissionCache
	Blocklist    *usecase.BlocklistCache
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	Metrics     *middleware.HTTPMetrics
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	Accounts    port.AccountRepository
}

// Register configures the Gin engine. Every request passes the blocklist
// gate before anything else; protected routes then run the token gate and,
// where needed, a permission check, in that order.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}
	if len(deps.Config.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	}
	r.Use(middleware.Blocklist(deps.Services.Blocklist))

	requireAuth := middleware.RequireAuth(deps.Services.Auth)
	requirePermission := func(permissions ...string) gin.HandlerFunc {
		return middleware.RequirePermission(deps.Services.Permissions, domain.RequireAll(permissions...))
	}

	healthHandler := handlers.NewHealthHandler()
	r.GET("/healthz", healthHandler.Status)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	secureCookie := deps.Config.App.Env == "production"
	authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Services.Registration, secureCookie)

	loginChain := append(rateLimitChain(deps, "login", deps.Config.RateLimit.LoginMaxAttempts), authHandler.Login)
	registerChain := append(rateLimitChain(deps, "register", deps.Config.RateLimit.RegisterMaxAttempts), authHandler.Register)

	r.POST("/login", loginChain...)
	r.POST("/register", registerChain...)
	r.POST("/logout", authHandler.Logout)
	r.POST("/changePassword", requireAuth, authHandler.ChangePassword)

	postsHandler := handlers.NewPostsHandler(deps.Services.Posts, deps.Accounts)
	rolesHandler := handlers.NewRolesHandler(deps.Services.Roles)
	blocklistHandler := handlers.NewBlocklistHandler(deps.Services.Blocklist)

	// Everything under /api requires a valid session token.
	api := r.Group("/api")
	api.Use(requireAuth)
	{
		api.GET("/post", requirePermission("readPost"), postsHandler.List)
		api.GET("/post/:id", requirePermission("readPost"), postsHandler.Get)
		api.POST("/post", requirePermission("createPost"), postsHandler.Create)
		api.GET("/user/posts", postsHandler.ListMine)
		api.PUT("/post/:id", requirePermission("editPostSelf"), postsHandler.Update)
		api.POST("/post/:id/approve", requirePermission("approvePost"), postsHandler.Approve)
		api.DELETE("/post/:id", requirePermission("deletePost"), postsHandler.Delete)

		api.POST("/createRole", requirePermission("modifyRole"), rolesHandler.Create)
		api.POST("/assignPermission", requirePermission("modifyRole"), rolesHandler.Grant)
		api.POST("/revokePermission", requirePermission("modifyRole"), rolesHandler.Revoke)
		api.GET("/roles", requirePermission("modifyRole"), rolesHandler.List)

		api.POST("/banip", requirePermission("banIP"), blocklistHandler.Ban)
		api.POST("/unbanip", requirePermission("banIP"), blocklistHandler.Unban)
		api.GET("/banip", requirePermission("banIP"), blocklistHandler.List)

		api.POST("/deleteUser", requirePermission("deleteUser"), authHandler.DeleteAccount)
	}

	return r
}

func rateLimitChain(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name + "_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
