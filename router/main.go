package router

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/skillhub/skillhub-api/database"
	"github.com/skillhub/skillhub-api/handlers"
	auth_handlers "github.com/skillhub/skillhub-api/handlers/auth"
	category_handlers "github.com/skillhub/skillhub-api/handlers/category"
	course_handlers "github.com/skillhub/skillhub-api/handlers/course"
	notification_handlers "github.com/skillhub/skillhub-api/handlers/notification"
	review_handlers "github.com/skillhub/skillhub-api/handlers/review"
	"github.com/skillhub/skillhub-api/queue"
	"github.com/skillhub/skillhub-api/services"
	"github.com/skillhub/skillhub-api/utils"
	"github.com/skillhub/skillhub-api/utils/auth"
	"github.com/skillhub/skillhub-api/utils/cache"
	"github.com/skillhub/skillhub-api/utils/middleware"
	"gorm.io/gorm"
)

// Dependencies holds the long-lived services the router wires into handlers.
// SetupRoutes builds them; the caller owns their shutdown.
type Dependencies struct {
	JobQueue      *queue.Queue
	Notifications *services.NotificationService
}

func SetupRoutes(app *fiber.App, store database.Storage) *Dependencies {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "skillhub-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Initialize Redis cache for brute force protection and the job queue
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection and queued delivery will be disabled.", err)
	}

	// Initialize brute force protection
	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Initialize the notification job queue. Without Redis the notification
	// service falls back to inline delivery.
	var jobQueue *queue.Queue
	var enqueuer services.Enqueuer
	if redisCache != nil {
		workers, err := strconv.Atoi(os.Getenv("QUEUE_WORKERS"))
		if err != nil || workers <= 0 {
			workers = 2
		}
		jobQueue = queue.New(redisCache, workers)
		enqueuer = jobQueue
	}

	// Initialize mailer and notification service
	mailer := services.NewMailerFromEnv()
	notificationService := services.NewNotificationService(db, mailer, enqueuer)

	if jobQueue != nil {
		jobQueue.Register(queue.JobTypeNotification, queue.HandlerFunc(notificationService.HandleJob))
		jobQueue.Start()
	}

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Initialize handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection, mailer)
	courseHandler := course_handlers.NewCourseHandler(db, notificationService)
	categoryHandler := category_handlers.NewCategoryHandler(db)
	reviewHandler := review_handlers.NewReviewHandler(db)
	notificationHandler := notification_handlers.NewNotificationHandler(notificationService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Categories routes. Writes are admin only; the handler enforces it so
	// anonymous writers get the same 403 as authenticated non-admins.
	categories := api.Group("/categories")
	categories.Get("/", categoryHandler.ListCategories)
	categories.Get("/:id", categoryHandler.GetCategory)
	categories.Post("/", authMiddleware.Optional(), categoryHandler.CreateCategory)
	categories.Put("/:id", authMiddleware.Optional(), categoryHandler.UpdateCategory)
	categories.Delete("/:id", authMiddleware.Optional(), categoryHandler.DeleteCategory)

	// Courses routes. Reads are public; writes go through the ownership
	// resolver inside the handler (admin anywhere, instructor on own courses).
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Post("/", authMiddleware.Optional(), courseHandler.CreateCourse)
	courses.Put("/:id", authMiddleware.Optional(), courseHandler.UpdateCourse)
	courses.Delete("/:id", authMiddleware.Optional(), courseHandler.DeleteCourse)

	// Enrollment routes
	courses.Post("/:id/enroll", authMiddleware.Required(), courseHandler.Enroll)
	courses.Delete("/:id/enroll", authMiddleware.Required(), courseHandler.Unenroll)
	api.Get("/me/enrollments", authMiddleware.Required(), courseHandler.ListEnrollments)

	// Modules routes (nested under courses)
	modules := courses.Group("/:courseId/modules")
	modules.Get("/", courseHandler.ListModules)
	modules.Post("/", authMiddleware.Optional(), courseHandler.CreateModule)

	api.Get("/modules/:id", courseHandler.GetModule)
	api.Put("/modules/:id", authMiddleware.Optional(), courseHandler.UpdateModule)
	api.Delete("/modules/:id", authMiddleware.Optional(), courseHandler.DeleteModule)

	// Lessons routes (nested under modules)
	lessons := api.Group("/modules/:moduleId/lessons")
	lessons.Get("/", courseHandler.ListLessons)
	lessons.Post("/", authMiddleware.Optional(), courseHandler.CreateLesson)

	api.Get("/lessons/:id", courseHandler.GetLesson)
	api.Put("/lessons/:id", authMiddleware.Optional(), courseHandler.UpdateLesson)
	api.Delete("/lessons/:id", authMiddleware.Optional(), courseHandler.DeleteLesson)

	// Quiz routes (one quiz per lesson)
	api.Get("/lessons/:lessonId/quiz", courseHandler.GetQuiz)
	api.Post("/lessons/:lessonId/quiz", authMiddleware.Optional(), courseHandler.CreateQuiz)
	api.Put("/quizzes/:id", authMiddleware.Optional(), courseHandler.UpdateQuiz)
	api.Delete("/quizzes/:id", authMiddleware.Optional(), courseHandler.DeleteQuiz)

	// Questions routes (nested under quizzes)
	questions := api.Group("/quizzes/:quizId/questions")
	questions.Get("/", courseHandler.ListQuestions)
	questions.Post("/", authMiddleware.Optional(), courseHandler.CreateQuestion)

	api.Put("/questions/:id", authMiddleware.Optional(), courseHandler.UpdateQuestion)
	api.Delete("/questions/:id", authMiddleware.Optional(), courseHandler.DeleteQuestion)

	// Answers routes (nested under questions)
	answers := api.Group("/questions/:questionId/answers")
	answers.Get("/", courseHandler.ListAnswers)
	answers.Post("/", authMiddleware.Optional(), courseHandler.CreateAnswer)

	api.Put("/answers/:id", authMiddleware.Optional(), courseHandler.UpdateAnswer)
	api.Delete("/answers/:id", authMiddleware.Optional(), courseHandler.DeleteAnswer)

	// Reviews routes
	courseReviews := courses.Group("/:courseId/reviews")
	courseReviews.Get("/", reviewHandler.ListCourseReviews)
	courseReviews.Post("/", authMiddleware.Required(), reviewHandler.CreateReview)

	api.Put("/reviews/:id", authMiddleware.Required(), reviewHandler.UpdateReview)
	api.Delete("/reviews/:id", authMiddleware.Required(), reviewHandler.DeleteReview)

	// Notifications routes (own rows only; create is admin only)
	notifications := api.Group("/notifications")
	notifications.Get("/", authMiddleware.Required(), notificationHandler.GetNotifications)
	notifications.Get("/:id", authMiddleware.Required(), notificationHandler.GetNotification)
	notifications.Post("/", authMiddleware.Optional(), notificationHandler.CreateNotification)
	notifications.Delete("/:id", authMiddleware.Required(), notificationHandler.DeleteNotification)

	return &Dependencies{
		JobQueue:      jobQueue,
		Notifications: notificationService,
	}
}
