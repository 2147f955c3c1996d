// Package router wires repositories, services and handlers into the gin engine.
package router

import (
	"net/http"

	"ratethem-backend/internal/config"
	"ratethem-backend/internal/handler"
	"ratethem-backend/internal/middleware"
	"ratethem-backend/internal/repository"
	"ratethem-backend/internal/service"
	"ratethem-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New builds the HTTP engine. rdb may be nil, which disables rate limiting.
// reg receives the HTTP metrics and backs /metrics when metrics are enabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, reg *prometheus.Registry) *gin.Engine {
	handler.UseJSONFieldNames()

	// Repositories
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewRefreshTokenRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	itemRepo := repository.NewItemRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	tagRepo := repository.NewTagRepo(db)
	ratingRepo := repository.NewRatingRepo(db)

	// Services
	authService := service.NewAuthService(userRepo, tokenRepo, auditRepo, cfg.App.Debug)
	userService := service.NewUserService(userRepo, ratingRepo, itemRepo, auditRepo)
	itemService := service.NewItemService(itemRepo, categoryRepo, tagRepo, ratingRepo, auditRepo)
	categoryService := service.NewCategoryService(categoryRepo, auditRepo)
	tagService := service.NewTagService(tagRepo)
	ratingService := service.NewRatingService(ratingRepo, itemRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	itemHandler := handler.NewItemHandler(itemService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	tagHandler := handler.NewTagHandler(tagService)
	ratingHandler := handler.NewRatingHandler(ratingService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg))

	if cfg.Metrics.Enabled && reg != nil {
		reg.MustRegister(collectors.NewGoCollector())
		r.Use(middleware.NewMetrics(reg).Handler())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	r.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"success": code == http.StatusOK,
			"data": gin.H{
				"status":  status,
				"service": cfg.App.Name,
				"version": cfg.App.Version,
			},
		})
	})

	authRequired := middleware.AuthMiddleware(userRepo)
	adminOnly := middleware.RequireAdmin()
	limited := middleware.RateLimit(cfg.RateLimit, rdb)

	// Auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", limited, authHandler.Register)
		auth.POST("/token", limited, authHandler.Token)
		auth.POST("/refresh", limited, authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)

		auth.POST("/logout-all", authRequired, authHandler.LogoutAll)
		auth.GET("/me", authRequired, authHandler.Me)
		auth.PUT("/edit", authRequired, authHandler.EditMe)
		auth.DELETE("/remove", authRequired, authHandler.RemoveMe)
	}

	// User routes (authenticated)
	users := r.Group("/users")
	users.Use(authRequired)
	{
		users.GET("", adminOnly, userHandler.GetAllUsers)
		users.POST("", adminOnly, userHandler.CreateUser)
		users.GET("/stats", adminOnly, userHandler.GetStats)
		users.GET("/growth", adminOnly, userHandler.GetGrowth)
		users.GET("/engagement", adminOnly, userHandler.GetEngagement)

		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", adminOnly, userHandler.UpdateUser)
		users.DELETE("/:id", adminOnly, userHandler.DeleteUser)
		users.GET("/:id/ratings", middleware.RequireSelfOrAdmin("id"), userHandler.GetUserRatings)
		users.GET("/:id/recommendations", middleware.RequireSelfOrAdmin("id"), userHandler.GetRecommendations)
	}

	// Item routes (reads are public)
	items := r.Group("/items")
	{
		items.GET("", itemHandler.GetAllItems)
		items.GET("/:id", itemHandler.GetItem)
		items.GET("/:id/ratings", itemHandler.GetItemRatings)

		items.POST("", authRequired, itemHandler.CreateItem)
		items.PUT("/:id", authRequired, adminOnly, itemHandler.UpdateItem)
		items.PUT("/:id/categories", authRequired, adminOnly, itemHandler.SetCategories)
		items.PUT("/:id/tags", authRequired, adminOnly, itemHandler.SetTags)
		items.DELETE("/:id", authRequired, adminOnly, itemHandler.DeleteItem)
	}

	// Category routes (reads are public)
	categories := r.Group("/categories")
	{
		categories.GET("", categoryHandler.GetAllCategories)
		categories.GET("/:id", categoryHandler.GetCategory)

		categories.POST("", authRequired, adminOnly, categoryHandler.CreateCategory)
		categories.PUT("/:id", authRequired, adminOnly, categoryHandler.UpdateCategory)
		categories.DELETE("/:id", authRequired, adminOnly, categoryHandler.DeleteCategory)
	}

	// Tag routes (reads are public)
	tags := r.Group("/tags")
	{
		tags.GET("", tagHandler.GetAllTags)
		tags.GET("/:id", tagHandler.GetTag)

		tags.POST("", authRequired, adminOnly, tagHandler.CreateTag)
		tags.PUT("/:id", authRequired, adminOnly, tagHandler.UpdateTag)
		tags.DELETE("/:id", authRequired, adminOnly, tagHandler.DeleteTag)
	}

	// Rating routes (authenticated)
	ratings := r.Group("/ratings")
	ratings.Use(authRequired)
	{
		ratings.POST("", middleware.RequireRole("user", "admin"), ratingHandler.CreateRating)
		ratings.GET("", adminOnly, ratingHandler.GetAllRatings)
		ratings.GET("/stats", ratingHandler.GetStats)
		ratings.GET("/distribution", ratingHandler.GetDistribution)
		ratings.GET("/recent", ratingHandler.GetRecent)

		ratings.GET("/:id", ratingHandler.GetRating)
		ratings.GET("/:id/my-rating", ratingHandler.GetMyRating)
		ratings.PUT("/:id", ratingHandler.UpdateRating)
		ratings.DELETE("/:id", ratingHandler.DeleteRating)
		ratings.DELETE("/:id/comment", ratingHandler.RemoveComment)
	}

	r.NoRoute(func(c *gin.Context) {
		utils.ErrorResponse(c, http.StatusNotFound, "Not found")
	})

	return r
}
