package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brokerdash/internal/handler"
	"brokerdash/pkg/rbac"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	clientHandler *handler.ClientHandler,
	taskHandler *handler.TaskHandler,
	analyticsHandler *handler.AnalyticsHandler,
	calendarHandler *handler.CalendarHandler,
	adminHandler *handler.AdminHandler,
	jwtSecret string,
	db *pgxpool.Pool,
) *Router {
	r := gin.Default()
	r.Use(TraceMiddleware())
	r.Use(MetricsMiddleware())

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	// Calendar apps can't send auth headers; the feed key gates access.
	r.GET("/calendar/tasks.ics", calendarHandler.GetTasksFeed)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.POST("/clients", clientHandler.CreateClient)
		auth.GET("/clients", clientHandler.ListClients)
		auth.GET("/clients/:id", clientHandler.GetClient)
		auth.PUT("/clients/:id", clientHandler.UpdateClient)
		auth.POST("/clients/:id/stage", clientHandler.MoveStage)
		auth.POST("/clients/:id/archive", clientHandler.ArchiveClient)
		auth.POST("/clients/:id/unarchive", clientHandler.UnarchiveClient)
		auth.DELETE("/clients/:id", clientHandler.DeleteClient)
		auth.GET("/clients/:id/history", clientHandler.GetHistory)
		auth.GET("/clients/:id/stage-duration", clientHandler.GetStageDuration)

		auth.POST("/tasks", taskHandler.CreateTask)
		auth.GET("/tasks", taskHandler.ListTasks)
		auth.GET("/tasks/:id", taskHandler.GetTask)
		auth.PUT("/tasks/:id", taskHandler.UpdateTask)
		auth.POST("/tasks/:id/complete", taskHandler.CompleteTask)
		auth.DELETE("/tasks/:id", taskHandler.DeleteTask)

		auth.GET("/analytics/stage-timing", analyticsHandler.GetStageTiming)

		admin := auth.Group("/admin")
		admin.Use(RequirePermission(rbac.PermissionReplayOutbox))
		{
			admin.GET("/outbox/failed", adminHandler.ListFailedEvents)
			admin.POST("/outbox/replay", adminHandler.ReplayEvent)
		}
	}

	return &Router{Engine: r}
}
