package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/goblogdev/goblog/config"
	"github.com/goblogdev/goblog/controllers"
	"github.com/goblogdev/goblog/middleware"
	"github.com/goblogdev/goblog/repository"
	"github.com/goblogdev/goblog/utils"
)

// SetupRouter wires routes, middlewares and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
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
	r.Use(middleware.RequestID())
	if utils.Logger != nil {
		r.Use(utils.GinLogger(utils.Logger))
		r.Use(utils.GinRecovery(utils.Logger))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	articleRepo := repository.NewArticleRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	authController := controllers.NewAuthController(userRepo)
	articleController := controllers.NewArticleController(articleRepo, likeRepo)
	commentController := controllers.NewCommentController(commentRepo, articleRepo, userRepo)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimit())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	articles := api.Group("/articles")
	articles.GET("", articleController.List)
	articles.GET("/:slug", middleware.AuthOptional(), articleController.Get)
	articles.POST("", middleware.AuthRequired(), middleware.AdminRequired(), articleController.Create)
	articles.PATCH("/:slug", middleware.AuthRequired(), middleware.AdminRequired(), articleController.Update)
	articles.DELETE("/:slug", middleware.AuthRequired(), middleware.AdminRequired(), articleController.Delete)

	// Anonymous counter path and identity-bound ledger path live side by
	// side and are deliberately not unified.
	articles.POST("/:slug/like", middleware.RateLimit(), articleController.LikeCounter)
	articles.POST("/:slug/likes", middleware.AuthRequired(), articleController.ToggleLike)
	articles.GET("/:slug/likes", articleController.ListLikes)

	articles.GET("/:slug/comments", commentController.ListForArticle)
	articles.POST("/:slug/comments", middleware.RateLimit(), middleware.AuthOptional(), commentController.Create)

	comments := api.Group("/comments")
	comments.GET("/recent", commentController.ListRecent)
	comments.GET("/:commentId/replies", commentController.ListReplies)
	comments.PATCH("/:commentId", middleware.AuthRequired(), commentController.Update)
	comments.DELETE("/:commentId", middleware.AuthRequired(), commentController.Delete)
	comments.POST("/:commentId/like", middleware.RateLimit(), commentController.LikeCounter)
	comments.PATCH("/:commentId/moderate", middleware.AuthRequired(), middleware.AdminRequired(), commentController.Moderate)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "route not found")
	})

	return r
}
