package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/papergen/papergen-backend/internal/config"
	"github.com/papergen/papergen-backend/internal/handler"
	"github.com/papergen/papergen-backend/internal/middleware"
	"github.com/papergen/papergen-backend/internal/model"
	"github.com/papergen/papergen-backend/internal/response"
	"github.com/papergen/papergen-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Chapter  *handler.ChapterHandler
	Question *handler.QuestionHandler
	Lesson   *handler.LessonHandler
	Exam     *handler.ExamHandler
	Class    *handler.ClassHandler
	Media    *handler.MediaHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Serve uploaded media files statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. API Group (JWT + Session + RBAC) ───────────────────────────
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequireJWT(authService),
		middleware.CheckSession(authService),
	)
	{
		// Media upload
		api.POST("/media/upload",
			middleware.RequirePermission(string(model.PermissionMediaUpload)),
			handlers.Media.Upload,
		)

		// Chapters and their question bank
		api.GET("/chapters",
			middleware.RequirePermission(string(model.PermissionChaptersRead)),
			handlers.Chapter.List,
		)
		api.GET("/chapters/:id",
			middleware.RequirePermission(string(model.PermissionChaptersRead)),
			handlers.Chapter.Get,
		)
		api.POST("/chapters",
			middleware.RequirePermission(string(model.PermissionChaptersWrite)),
			handlers.Chapter.Create,
		)
		api.PUT("/chapters/:id",
			middleware.RequirePermission(string(model.PermissionChaptersWrite)),
			handlers.Chapter.Update,
		)
		api.DELETE("/chapters/:id",
			middleware.RequirePermission(string(model.PermissionChaptersWrite)),
			handlers.Chapter.Delete,
		)
		api.GET("/chapters/:id/questions",
			middleware.RequirePermission(string(model.PermissionChaptersRead)),
			handlers.Question.ListByChapter,
		)

		// Questions
		api.GET("/questions/:id",
			middleware.RequirePermission(string(model.PermissionChaptersRead)),
			handlers.Question.Get,
		)
		api.POST("/questions",
			middleware.RequirePermission(string(model.PermissionChaptersWrite)),
			handlers.Question.Create,
		)
		api.PUT("/questions/:id",
			middleware.RequirePermission(string(model.PermissionChaptersWrite)),
			handlers.Question.Update,
		)
		api.DELETE("/questions/:id",
			middleware.RequirePermission(string(model.PermissionChaptersWrite)),
			handlers.Question.Delete,
		)

		// Lessons
		api.GET("/lessons",
			middleware.RequirePermission(string(model.PermissionLessonsRead)),
			handlers.Lesson.List,
		)
		api.GET("/lessons/:id",
			middleware.RequirePermission(string(model.PermissionLessonsRead)),
			handlers.Lesson.Get,
		)
		api.GET("/lessons/:id/exams",
			middleware.RequireAnyPermission(
				string(model.PermissionLessonsRead),
				string(model.PermissionExamsRead),
			),
			handlers.Lesson.ListExams,
		)
		api.POST("/lessons",
			middleware.RequirePermission(string(model.PermissionLessonsWrite)),
			handlers.Lesson.Create,
		)
		api.PUT("/lessons/:id",
			middleware.RequirePermission(string(model.PermissionLessonsWrite)),
			handlers.Lesson.Update,
		)
		api.DELETE("/lessons/:id",
			middleware.RequirePermission(string(model.PermissionLessonsWrite)),
			handlers.Lesson.Delete,
		)

		// Exam papers
		api.GET("/exams",
			middleware.RequirePermission(string(model.PermissionExamsRead)),
			handlers.Exam.List,
		)
		api.GET("/exams/:id",
			middleware.RequirePermission(string(model.PermissionExamsRead)),
			handlers.Exam.Get,
		)
		api.POST("/exams/generate",
			middleware.RequirePermission(string(model.PermissionExamsGenerate)),
			handlers.Exam.Generate,
		)
		api.POST("/exams/assemble",
			middleware.RequirePermission(string(model.PermissionExamsGenerate)),
			handlers.Exam.Assemble,
		)
		api.PUT("/exams/:id",
			middleware.RequirePermission(string(model.PermissionExamsWrite)),
			handlers.Exam.Update,
		)
		api.DELETE("/exams/:id",
			middleware.RequirePermission(string(model.PermissionExamsWrite)),
			handlers.Exam.Delete,
		)

		// Classes
		api.GET("/classes",
			middleware.RequirePermission(string(model.PermissionClassesRead)),
			handlers.Class.List,
		)
		api.GET("/classes/:id",
			middleware.RequirePermission(string(model.PermissionClassesRead)),
			handlers.Class.Get,
		)
		api.POST("/classes",
			middleware.RequirePermission(string(model.PermissionClassesWrite)),
			handlers.Class.Create,
		)
		api.PUT("/classes/:id",
			middleware.RequirePermission(string(model.PermissionClassesWrite)),
			handlers.Class.Update,
		)
		api.DELETE("/classes/:id",
			middleware.RequirePermission(string(model.PermissionClassesWrite)),
			handlers.Class.Delete,
		)

		// System metrics (SSE)
		api.GET("/system/metrics",
			middleware.RequirePermission(string(model.PermissionSystemMetrics)),
			handlers.System.SystemMetricsSSE,
		)
	}

	return router
}
