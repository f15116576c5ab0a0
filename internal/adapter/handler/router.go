package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	httpmw "github.com/johnquangdev/meeting-whisperer/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-whisperer/pkg/config"
)

// multipart envelope allowance on top of the recording size limit
const uploadOverheadBytes = 1 << 20

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	meetingHandler *Meeting
	taskHandler    *Task
	authMiddleware echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, meetingHandler *Meeting, taskHandler *Task, authMiddleware echo.MiddlewareFunc) *Router {
	return &Router{
		cfg:            cfg,
		meetingHandler: meetingHandler,
		taskHandler:    taskHandler,
		authMiddleware: authMiddleware,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group, every route requires a valid access token
	v1 := e.Group("/v1")
	if rt.authMiddleware != nil {
		v1.Use(rt.authMiddleware)
	}

	rt.setupMeetingRoutes(v1)
	rt.setupTaskRoutes(v1)
	rt.setupAdminRoutes(v1)
}

// setupMeetingRoutes configures meeting routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")
	h := rt.meetingHandler

	var uploadMW []echo.MiddlewareFunc
	if limit := rt.cfg.Upload.MaxBytes; limit > 0 {
		uploadMW = append(uploadMW, middleware.BodyLimit(strconv.FormatInt(limit+uploadOverheadBytes, 10)+"B"))
	}

	meetings.POST("/upload", h.Upload, uploadMW...)
	meetings.GET("", h.List)
	meetings.GET("/:id", h.Get)
	meetings.PATCH("/:id", h.Update)
	meetings.DELETE("/:id", h.Delete)
	meetings.GET("/:id/status", h.Status)
	meetings.POST("/:id/process", h.Process)
	meetings.GET("/:id/tasks", h.Tasks)
	meetings.GET("/:id/recording", h.Recording)
}

// setupTaskRoutes configures task routes
func (rt *Router) setupTaskRoutes(g *echo.Group) {
	tasks := g.Group("/tasks")
	h := rt.taskHandler

	tasks.GET("/mine", h.ListMine)
	tasks.POST("", h.Create)
	tasks.PATCH("/:id", h.Update)
	tasks.DELETE("/:id", h.Delete)
}

// setupAdminRoutes configures operator routes
func (rt *Router) setupAdminRoutes(g *echo.Group) {
	admin := g.Group("/admin", httpmw.RequireRole(entities.RoleAdmin))
	admin.POST("/meetings/:id/dispatch", rt.meetingHandler.Redispatch)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
