package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/exscan-backend/internal/config"
	"github.com/stemsi/exscan-backend/internal/handler"
	"github.com/stemsi/exscan-backend/internal/middleware"
	"github.com/stemsi/exscan-backend/internal/response"
	"github.com/stemsi/exscan-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Test       *handler.TestHandler
	Question   *handler.QuestionHandler
	Answer     *handler.AnswerHandler
	Sheet      *handler.SheetHandler
	Submission *handler.SubmissionHandler
	WS         *handler.WSHandler
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
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve uploaded sheet photos statically with aggressive caching (1 year);
	// filenames are UUIDs, so content never changes under a URL.
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
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireTeacherJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Public Submission Group (No Auth, Rate Limited) ────────────
	// Students hand in sheet photos through the link their teacher shares.
	submitLimiter := middleware.NewRateLimiter(20, time.Minute)
	publicAPI := router.Group("/api/v1/public")
	publicAPI.Use(submitLimiter.Middleware())
	{
		publicAPI.POST("/tests/:test_id/submissions", handlers.Submission.CreateSubmission)
	}

	// ─── 3. Teacher Group (JWT) ────────────────────────────────────────
	teacherAPI := router.Group("/api/v1")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		teacherAPI.POST("/tests", handlers.Test.CreateTest)
		teacherAPI.GET("/tests", handlers.Test.ListTests)
		teacherAPI.GET("/tests/:test_id", handlers.Test.GetTest)
		teacherAPI.PUT("/tests/:test_id", handlers.Test.UpdateTest)
		teacherAPI.DELETE("/tests/:test_id", handlers.Test.DeleteTest)

		teacherAPI.GET("/tests/:test_id/sheet", handlers.Sheet.GetSheet)

		teacherAPI.GET("/tests/:test_id/submissions", handlers.Submission.ListSubmissions)
		teacherAPI.GET("/tests/:test_id/submissions/export", handlers.Submission.ExportSubmissions)

		teacherAPI.POST("/tests/:test_id/questions", handlers.Question.AddQuestion)
		teacherAPI.PUT("/questions/:question_id", handlers.Question.UpdateQuestion)
		teacherAPI.DELETE("/questions/:question_id", handlers.Question.DeleteQuestion)

		teacherAPI.POST("/questions/:question_id/answers", handlers.Answer.AddAnswer)
		teacherAPI.PUT("/answers/:answer_id", handlers.Answer.UpdateAnswer)
		teacherAPI.DELETE("/answers/:answer_id", handlers.Answer.DeleteAnswer)
	}

	// ─── 4. WebSocket Group (Teacher WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireTeacherWSAuth(authService))
	{
		ws.GET("/tests/:test_id/results", handlers.WS.ResultsStream)
	}

	return router
}
