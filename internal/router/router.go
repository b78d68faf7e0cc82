// Package router assembles the gin engine and route table.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/yukikurage/workforce-api/internal/auth"
	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/handlers"
	"github.com/yukikurage/workforce-api/internal/metrics"
	"github.com/yukikurage/workforce-api/internal/middleware"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/ratelimit"
	"github.com/yukikurage/workforce-api/internal/repository"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/validation"
)

// Deps are the process-wide collaborators handed to every route.
// Redis, Limiter and AI may be nil.
type Deps struct {
	Gateway        *database.Gateway
	Redis          *redis.Client
	Tokens         *auth.TokenManager
	Hasher         *auth.Hasher
	AI             *services.AIService
	Limiter        *ratelimit.Limiter
	Logger         zerolog.Logger
	Debug          bool
	AllowedOrigins []string
}

// New builds the engine with middleware and every route registered.
func New(deps Deps) *gin.Engine {
	validation.Register()

	store := repository.NewStore(deps.Gateway)
	authService := services.NewAuthService(store, deps.Tokens, deps.Hasher)
	taskService := services.NewTaskService(store, deps.AI)
	teamService := services.NewTeamService(store)
	notificationService := services.NewNotificationService(store)
	shiftService := services.NewShiftService(store)

	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	teamHandler := handlers.NewTeamHandler(teamService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	shiftHandler := handlers.NewShiftHandler(shiftService)
	userHandler := handlers.NewUserHandler(authService)
	healthHandler := handlers.NewHealthHandler(deps.Gateway.DB(), deps.Redis)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(deps.Logger),
		middleware.Metrics(),
		middleware.Recovery(deps.Logger, deps.Debug),
		middleware.CORS(deps.AllowedOrigins),
		middleware.BodyCapture(),
		middleware.ErrorHandler(deps.Logger, deps.Debug),
	)
	r.NoRoute(middleware.NoRoute())

	r.GET("/health", healthHandler.Liveness)
	r.GET("/health/ready", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	requireAuth := middleware.RequireAuth(deps.Tokens, store.Users)
	authLimit := middleware.RateLimit(deps.Limiter, "auth", deps.Logger)

	api := r.Group("/api")
	{
		// Auth routes
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authLimit, authHandler.Register)
			authRoutes.POST("/login", authLimit, authHandler.Login)
			authRoutes.POST("/refresh", authLimit, authHandler.Refresh)
			authRoutes.POST("/logout", requireAuth, authHandler.Logout)
			authRoutes.GET("/me", requireAuth, authHandler.Me)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			taskAccess := middleware.RequireTaskAccess(taskService)

			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.GET("/stats", taskHandler.Stats)
			tasks.GET("/stats/overview", taskHandler.Stats)
			tasks.GET("/:id", taskAccess, taskHandler.GetTask)
			tasks.PUT("/:id", taskAccess, taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", taskAccess, taskHandler.UpdateStatus)
			tasks.DELETE("/:id", taskAccess, taskHandler.DeleteTask)
		}

		// Team routes (protected)
		teams := api.Group("/teams")
		teams.Use(requireAuth)
		{
			teamAccess := middleware.RequireTeamAccess(teamService)
			teamManager := middleware.RequireTeamManager()

			teams.POST("", middleware.RequireRole(models.RoleAdmin, models.RoleManager), teamHandler.CreateTeam)
			teams.GET("", teamHandler.ListTeams)
			teams.POST("/join", teamHandler.JoinTeam)
			teams.GET("/:id", teamAccess, teamHandler.GetTeam)
			teams.PUT("/:id", teamAccess, teamManager, teamHandler.UpdateTeam)
			teams.DELETE("/:id", teamAccess, teamManager, teamHandler.DeleteTeam)
			teams.POST("/:id/regenerate-code", teamAccess, teamManager, teamHandler.RegenerateInviteCode)
			teams.DELETE("/:id/members/:userId", teamAccess, teamManager, teamHandler.RemoveMember)
			teams.GET("/:id/boards", teamAccess, teamHandler.ListBoards)
			teams.POST("/:id/boards", teamAccess, teamManager, teamHandler.CreateBoard)
			teams.GET("/:id/messages", teamAccess, teamHandler.ListMessages)
			teams.POST("/:id/messages", teamAccess, teamHandler.PostMessage)
			teams.GET("/:id/shifts", teamAccess, shiftHandler.ListTeamShifts)
			teams.POST("/:id/shifts", teamAccess, teamManager, shiftHandler.CreateShift)
			teams.DELETE("/:id/shifts/:shiftId", teamAccess, teamManager, shiftHandler.DeleteShift)
		}

		api.GET("/shifts/mine", requireAuth, shiftHandler.ListMyShifts)

		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.PATCH("/read-all", notificationHandler.MarkAllRead)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
		}

		api.PATCH("/users/:id", requireAuth, middleware.RequireRole(models.RoleAdmin), userHandler.UpdateUser)
	}

	return r
}
