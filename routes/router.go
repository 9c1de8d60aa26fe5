package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/controllers"
	"github.com/cppla/yatube/feed"
	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/store"
	"github.com/cppla/yatube/utils"
)

// SetupRouter wires routes, middlewares, and controllers. cache holds the
// global front page; nil disables caching.
func SetupRouter(db *gorm.DB, cache feed.Cache) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rotated file; fall back to the app logger.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		gl = utils.Logger
	}
	r.Use(utils.Ginzap(gl, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(gl, false))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", utils.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Location", utils.RequestIDHeader, controllers.CacheStatusHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	s := store.New(db)
	query := feed.NewQuery(s.Posts, s.Follows, cache, feed.PageSizes{
		Index:   cfg.IndexPageSize,
		Group:   cfg.GroupPageSize,
		Profile: cfg.ProfilePageSize,
		Follow:  cfg.FollowPageSize,
	}, utils.Logger)

	authController := controllers.NewAuthController(s)
	feedController := controllers.NewFeedController(s, query)
	followController := controllers.NewFollowController(s)
	postController := controllers.NewPostController(s, query)
	groupController := controllers.NewGroupController(s, query)
	statsController := controllers.NewStatsController(s)

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuth())

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Public reads
	api.GET("/posts", feedController.Index)
	api.GET("/groups", groupController.List)
	api.GET("/groups/:slug/posts", feedController.GroupPosts)
	api.GET("/users/:username", feedController.Profile)
	api.GET("/users/:username/posts/:id", postController.GetPost)
	api.GET("/follow", feedController.FollowFeed)
	api.GET("/stats", statsController.GetStats)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/users/:username/posts/:id", postController.UpdatePost)
	protected.DELETE("/users/:username/posts/:id", postController.DeletePost)
	protected.POST("/users/:username/posts/:id/comments", postController.CreateComment)
	protected.DELETE("/comments/:id", postController.DeleteComment)
	protected.POST("/users/:username/follow", followController.Follow)
	protected.DELETE("/users/:username/follow", followController.Unfollow)

	admin := protected.Group("/groups")
	admin.Use(middleware.AdminRequired())
	admin.POST("", groupController.Create)
	admin.PUT("/:slug", groupController.Update)
	admin.DELETE("/:slug", groupController.Delete)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	})

	return r
}
