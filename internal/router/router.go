package router

import (
	"net/http"
	"time"

	"skillup-go/internal/auth"
	"skillup-go/internal/config"
	"skillup-go/internal/handlers"
	"skillup-go/internal/mediator"
	"skillup-go/internal/models"
	"skillup-go/internal/services"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": "Too many requests. Try again after " + time.Until(info.ResetTime).Round(time.Second).String(),
	})
}

// Deps are what the router needs to build its handlers.
type Deps struct {
	Log      *zap.Logger
	Server   config.ServerConfig
	Mediator *mediator.Mediator
	Tokens   *auth.TokenService
	Feedback *services.FeedbackWorker
}

func Setup(d Deps) *gin.Engine {
	log := d.Log
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CallerLoader(log, d.Tokens))
	router.Use(RequestLogger(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	// Handlers and routes
	authHandler := handlers.NewAuthHandler(log, d.Mediator)
	userHandler := handlers.NewUserHandler(log, d.Mediator)
	pathHandler := handlers.NewLearningPathHandler(log, d.Mediator)
	contentHandler := handlers.NewContentHandler(log, d.Mediator)
	assessmentHandler := handlers.NewAssessmentHandler(log, d.Mediator)
	resultsHandler := handlers.NewResultsHandler(log, d.Mediator)
	adminHandler := handlers.NewAdminHandler(log, d.Mediator, d.Feedback)
	fileHandler := handlers.NewFileHandler(log, d.Mediator)

	limit := uint(d.Server.LoginRateLimit)
	if limit == 0 {
		limit = 5
	}
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: limit,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", limiter, authHandler.Register)
		authRoutes.POST("/login", limiter, authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)
		authRoutes.POST("/logout", AuthRequired(), authHandler.Logout)
		authRoutes.POST("/change-password", AuthRequired(), authHandler.ChangePassword)
	}

	// Catalog browsing is open to anonymous visitors.
	api.GET("/learning-paths", pathHandler.List)
	api.GET("/learning-paths/categories", pathHandler.Categories)
	api.GET("/learning-paths/:id", pathHandler.Get)
	api.GET("/learning-paths/:id/contents", pathHandler.Contents)

	authorized := api.Group("/")
	authorized.Use(AuthRequired())
	{
		me := authorized.Group("/users/me")
		{
			me.GET("", userHandler.Profile)
			me.PUT("", userHandler.UpdateProfile)
			me.GET("/notifications", userHandler.Notifications)
			me.GET("/learning-paths", userHandler.LearningPaths)
			me.GET("/results", userHandler.Results)
			me.GET("/statistics", userHandler.UserStatistics)
		}

		dashboard := authorized.Group("/dashboard")
		{
			dashboard.GET("/overview", userHandler.Overview)
			dashboard.GET("/statistics", userHandler.Statistics)
			dashboard.GET("/streak", userHandler.Streak)
			dashboard.GET("/activities", userHandler.Activities)
			dashboard.GET("/progress", userHandler.Progress)
			dashboard.GET("/calendar", userHandler.Calendar)
		}

		paths := authorized.Group("/learning-paths")
		{
			paths.POST("", pathHandler.Create)
			paths.PUT("/:id", pathHandler.Update)
			paths.POST("/:id/publish", pathHandler.Publish(true))
			paths.POST("/:id/unpublish", pathHandler.Publish(false))
			paths.DELETE("/:id", pathHandler.Delete)
			paths.POST("/:id/enroll", pathHandler.Enroll)
		}

		contents := authorized.Group("/contents")
		{
			contents.POST("", contentHandler.Create)
			contents.GET("/:id", contentHandler.Get)
			contents.PUT("/:id", contentHandler.Update)
			contents.DELETE("/:id", contentHandler.Delete)
			contents.POST("/:id/complete", contentHandler.Complete)
			contents.GET("/:id/next", contentHandler.Adjacent(true))
			contents.GET("/:id/previous", contentHandler.Adjacent(false))
		}

		assessments := authorized.Group("/assessments")
		{
			assessments.GET("", assessmentHandler.List)
			assessments.POST("", assessmentHandler.Create)
			assessments.GET("/:id", assessmentHandler.Get)
			assessments.PUT("/:id", assessmentHandler.Update)
			assessments.DELETE("/:id", assessmentHandler.Delete)
			assessments.GET("/:id/questions", assessmentHandler.Questions)
			assessments.POST("/:id/start", assessmentHandler.Start)
			assessments.POST("/:id/submit", assessmentHandler.Submit)
			assessments.GET("/:id/results", resultsHandler.AssessmentResults)
		}

		creator := authorized.Group("/creator")
		creator.Use(RequireRole(models.RoleContentCreator, models.RoleAdmin))
		{
			creator.GET("/dashboard", resultsHandler.CreatorDashboard)
			creator.GET("/learning-paths/:id/analytics", resultsHandler.LearningPathAnalytics)
			creator.GET("/engagement", resultsHandler.Engagement)
			creator.GET("/revenue", resultsHandler.Revenue)
			creator.GET("/learning-paths", resultsHandler.CreatorLearningPaths)
			creator.GET("/learning-paths/:id/students/:studentId", resultsHandler.StudentProgress)
			creator.GET("/students", resultsHandler.Students)
		}

		admin := authorized.Group("/admin")
		admin.Use(RequireRole(models.RoleAdmin))
		{
			admin.GET("/analytics", adminHandler.Analytics)
			admin.GET("/charts", adminHandler.Charts)
			admin.GET("/feedback", adminHandler.FeedbackStats)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/export", adminHandler.ExportUsers)
			admin.PUT("/users/:id/role", adminHandler.UpdateRole)
			admin.POST("/users/:id/suspend", adminHandler.Suspend)
			admin.POST("/users/:id/activate", adminHandler.Activate)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.POST("/messages", adminHandler.SendMessage)
		}

		files := authorized.Group("/files")
		{
			files.POST("", fileHandler.Upload)
			files.GET("", fileHandler.List)
			files.GET("/categories", fileHandler.Categories)
			files.GET("/:id", fileHandler.Download)
			files.PUT("/:id", fileHandler.Update)
			files.DELETE("/:id", fileHandler.Delete)
			files.POST("/:id/share", fileHandler.Share)
		}
	}

	return router
}
