package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/config"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/handler"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/middleware"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	News         *handler.NewsHandler
	Event        *handler.EventHandler
	Availability *handler.AvailabilityHandler
	Attendance   *handler.AttendanceHandler
	Promotion    *handler.PromotionHandler
	System       *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
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

	// Request IDs and metrics apply to every route.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Metrics())

	// Health check and Prometheus scrape endpoint.
	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.RequireAuth(cfg.JWTSecret)
	staffOnly := middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin)
	adminOnly := middleware.RequireRole(middleware.RoleAdmin)

	// Rate limiter for mutating routes (60 requests per minute per IP).
	writeLimiter := middleware.NewRateLimiter(60, time.Minute)

	// ─── News ──────────────────────────────────────────────────────────
	news := router.Group("/api/news")
	{
		news.GET("", handlers.News.ListNews)
		news.GET("/:id", handlers.News.GetNews)

		news.POST("", auth, adminOnly, writeLimiter.Middleware(), handlers.News.CreateNews)
		news.PUT("/:id", auth, adminOnly, writeLimiter.Middleware(), handlers.News.UpdateNews)
		news.DELETE("/:id", auth, adminOnly, writeLimiter.Middleware(), handlers.News.DeleteNews)
	}

	// ─── Planning ──────────────────────────────────────────────────────
	planning := router.Group("/api/planning")
	planning.Use(auth)
	{
		planning.GET("/events", handlers.Event.ListEvents)
		planning.GET("/events/:id", handlers.Event.GetEvent)
		planning.POST("/events", staffOnly, writeLimiter.Middleware(), handlers.Event.CreateEvent)
		planning.PUT("/events/:id", staffOnly, writeLimiter.Middleware(), handlers.Event.UpdateEvent)
		planning.POST("/events/:id/complete", staffOnly, handlers.Event.CompleteEvent)
		planning.DELETE("/events/:id", staffOnly, handlers.Event.DeleteEvent)
		planning.POST("/events/:id/attendees", handlers.Event.JoinEvent)
		planning.DELETE("/events/:id/attendees", handlers.Event.LeaveEvent)

		planning.POST("/conflicts", handlers.Event.CheckConflicts)

		planning.GET("/availability", handlers.Availability.GetAvailability)
		planning.GET("/schedules/:userId", handlers.Availability.GetSchedule)
		planning.PUT("/schedules/:userId", staffOnly, handlers.Availability.UpsertSchedule)
	}

	// ─── Attendance ────────────────────────────────────────────────────
	attendance := router.Group("/api/attendance")
	attendance.Use(auth)
	{
		attendance.GET("/events/:eventId", handlers.Attendance.ListEventAttendance)
		attendance.POST("/events/:eventId/mark", staffOnly, handlers.Attendance.MarkAttendance)
		attendance.POST("/events/:eventId/bulk", staffOnly, handlers.Attendance.BulkMarkAttendance)
		attendance.GET("/students/:studentId/rate", handlers.Attendance.GetStudentRate)
	}

	// ─── Promotions (admin) ────────────────────────────────────────────
	promotions := router.Group("/api/promotions")
	promotions.Use(auth)
	{
		promotions.GET("", handlers.Promotion.ListPromotions)
		promotions.GET("/:id", handlers.Promotion.GetPromotion)

		promotions.POST("", adminOnly, writeLimiter.Middleware(), handlers.Promotion.CreatePromotion)
		promotions.PUT("/:id", adminOnly, writeLimiter.Middleware(), handlers.Promotion.UpdatePromotion)
		promotions.POST("/:id/students/:studentId", adminOnly, handlers.Promotion.AddStudent)
		promotions.DELETE("/:id/students/:studentId", adminOnly, handlers.Promotion.RemoveStudent)
		promotions.POST("/:id/courses/:courseId", adminOnly, handlers.Promotion.AddCourse)
		promotions.DELETE("/:id/courses/:courseId", adminOnly, handlers.Promotion.RemoveCourse)
	}

	return router
}
