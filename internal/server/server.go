package server

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mountain-community/backend/internal/database"
	"github.com/mountain-community/backend/internal/handlers"
	"github.com/mountain-community/backend/internal/middleware"
	"github.com/mountain-community/backend/internal/models"
)

type Server struct {
	db      database.Service
	handler *handlers.Handler
}

// New creates and configures the HTTP server.
func New() *http.Server {
	db := database.New()

	s := &Server{
		db:      db,
		handler: handlers.NewHandler(db.GetDB()),
	}

	router := s.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes.
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	s.registerAPIRoutes(r, s.db.GetDB())

	return r
}

func (s *Server) registerAPIRoutes(r *gin.Engine, db *gorm.DB) {
	h := s.handler
	api := r.Group("/api")

	// Public routes. Optional auth lets staff see hidden content in reads.
	public := api.Group("")
	public.Use(middleware.OptionalAuth(db))
	{
		public.POST("/auth/register", h.Auth.Register)
		public.POST("/auth/login", h.Auth.Login)

		public.GET("/posts", h.Post.GetPosts)
		public.GET("/posts/:id", h.Post.GetPost)
		public.GET("/comments/post/:postId", h.Comment.GetComments)

		public.GET("/institutions", h.Institution.List)
		public.GET("/institutions/:id", h.Institution.Get)
		public.GET("/categories", h.Category.List)
		public.GET("/categories/:id", h.Category.Get)
		public.GET("/notices", h.Notice.List)
		public.GET("/notices/:id", h.Notice.Get)
	}

	// Authenticated routes. Reads work while suspended; mutations do not.
	auth := api.Group("")
	auth.Use(middleware.RequireAuth(db))
	{
		auth.GET("/users/me", h.Auth.GetMe)
		auth.GET("/users/:id", h.User.GetUser)

		auth.GET("/notifications", h.Notification.List)
		auth.GET("/notifications/unread-count", h.Notification.UnreadCount)
		auth.PUT("/notifications/:id/read", h.Notification.MarkRead)
		auth.PUT("/notifications/read-all", h.Notification.MarkAllRead)
		auth.DELETE("/notifications/:id", h.Notification.Delete)

		active := auth.Group("")
		active.Use(middleware.RequireActive(db))
		{
			active.PUT("/users/me", h.User.UpdateMe)

			active.POST("/posts", h.Post.CreatePost)
			active.PUT("/posts/:id", h.Post.UpdatePost)
			active.DELETE("/posts/:id", h.Post.DeletePost)
			active.POST("/posts/:id/like", h.Post.React(models.ReactionLike))
			active.POST("/posts/:id/dislike", h.Post.React(models.ReactionDislike))
			active.POST("/posts/:id/report", h.Post.Report)

			active.POST("/comments", h.Comment.CreateComment)
			active.PUT("/comments/:id", h.Comment.UpdateComment)
			active.DELETE("/comments/:id", h.Comment.DeleteComment)
			active.POST("/comments/:id/like", h.Comment.React(models.ReactionLike))
			active.POST("/comments/:id/dislike", h.Comment.React(models.ReactionDislike))
			active.POST("/comments/:id/report", h.Comment.Report)
		}
	}

	// Moderator and admin routes.
	staff := api.Group("")
	staff.Use(middleware.RequireAuth(db), middleware.RequireRole(models.RoleModerator, models.RoleAdmin))
	{
		staff.GET("/users", h.User.ListUsers)
		staff.PUT("/users/:id/status", h.User.UpdateStatus)
		staff.GET("/users/:id/restrictions", h.User.Restrictions)

		staff.GET("/reports", h.Report.ListReports)
		staff.GET("/reports/:id", h.Report.GetReport)
		staff.PUT("/reports/:id", h.Report.UpdateReport)
		staff.PUT("/reports/:id/approve", h.Report.ApproveReport)
		staff.PUT("/reports/:id/reject", h.Report.RejectReport)

		staff.PUT("/comments/:id/hide", h.Comment.SetHidden(true))
		staff.PUT("/comments/:id/unhide", h.Comment.SetHidden(false))
	}

	// Admin-only routes.
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAuth(db), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/stats", h.Admin.Stats)
		admin.GET("/settings", h.Admin.GetSettings)
		admin.GET("/settings/:section", h.Admin.GetSection)
		admin.PUT("/settings/:section", h.Admin.UpdateSection)
		admin.GET("/activity-logs", h.Admin.ActivityLogs)
	}

	adminOnly := api.Group("")
	adminOnly.Use(middleware.RequireAuth(db), middleware.RequireRole(models.RoleAdmin))
	{
		adminOnly.PUT("/users/:id/role", h.User.UpdateRole)

		adminOnly.POST("/institutions", h.Institution.Create)
		adminOnly.PUT("/institutions/:id", h.Institution.Update)
		adminOnly.DELETE("/institutions/:id", h.Institution.Delete)

		adminOnly.POST("/categories", h.Category.Create)
		adminOnly.PUT("/categories/:id", h.Category.Update)
		adminOnly.DELETE("/categories/:id", h.Category.Delete)

		adminOnly.POST("/notices", h.Notice.Create)
		adminOnly.PUT("/notices/:id", h.Notice.Update)
		adminOnly.DELETE("/notices/:id", h.Notice.Delete)
	}
}
