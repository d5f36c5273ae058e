package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mountain-community/backend/internal/database"
	"github.com/mountain-community/backend/internal/middleware"
	"github.com/mountain-community/backend/internal/models"
)

type testEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	handler *Handler
}

// newTestEnv builds an in-memory database and a router carrying the same
// middleware chain as the real server.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	h := NewHandler(db)
	r := gin.New()
	api := r.Group("/api")

	public := api.Group("")
	public.Use(middleware.OptionalAuth(db))
	{
		public.POST("/auth/register", h.Auth.Register)
		public.POST("/auth/login", h.Auth.Login)
		public.GET("/posts", h.Post.GetPosts)
		public.GET("/posts/:id", h.Post.GetPost)
		public.GET("/comments/post/:postId", h.Comment.GetComments)
	}

	auth := api.Group("")
	auth.Use(middleware.RequireAuth(db), middleware.RequireActive(db))
	{
		auth.POST("/posts", h.Post.CreatePost)
		auth.PUT("/posts/:id", h.Post.UpdatePost)
		auth.DELETE("/posts/:id", h.Post.DeletePost)
		auth.POST("/posts/:id/like", h.Post.React(models.ReactionLike))
		auth.POST("/posts/:id/dislike", h.Post.React(models.ReactionDislike))
		auth.POST("/posts/:id/report", h.Post.Report)

		auth.POST("/comments", h.Comment.CreateComment)
		auth.PUT("/comments/:id", h.Comment.UpdateComment)
		auth.POST("/comments/:id/like", h.Comment.React(models.ReactionLike))
		auth.POST("/comments/:id/report", h.Comment.Report)
	}

	staff := api.Group("")
	staff.Use(middleware.RequireAuth(db), middleware.RequireRole(models.RoleModerator, models.RoleAdmin))
	{
		staff.PUT("/comments/:id/hide", h.Comment.SetHidden(true))
		staff.PUT("/comments/:id/unhide", h.Comment.SetHidden(false))
		staff.PUT("/users/:id/status", h.User.UpdateStatus)
		staff.GET("/reports", h.Report.ListReports)
		staff.PUT("/reports/:id/approve", h.Report.ApproveReport)
		staff.PUT("/reports/:id/reject", h.Report.RejectReport)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAuth(db), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/settings", h.Admin.GetSettings)
		admin.GET("/settings/:section", h.Admin.GetSection)
		admin.PUT("/settings/:section", h.Admin.UpdateSection)
		admin.GET("/activity-logs", h.Admin.ActivityLogs)
	}

	adminOnly := api.Group("")
	adminOnly.Use(middleware.RequireAuth(db), middleware.RequireRole(models.RoleAdmin))
	{
		adminOnly.PUT("/users/:id/role", h.User.UpdateRole)
	}

	return &testEnv{db: db, router: r, handler: h}
}

func (e *testEnv) createUser(t *testing.T, username, role string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hashed),
		Role:         role,
		Status:       models.StatusActive,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return &user
}

func (e *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := middleware.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func (e *testEnv) createPost(t *testing.T, author *models.User, hidden bool) *models.Post {
	t.Helper()
	post := models.Post{Title: "A post", Content: "body", UserID: author.ID, IsHidden: hidden}
	require.NoError(t, e.db.Create(&post).Error)
	return &post
}

func (e *testEnv) createComment(t *testing.T, author *models.User, post *models.Post, parentID *int, hidden bool) *models.Comment {
	t.Helper()
	comment := models.Comment{Content: "a comment", UserID: author.ID, PostID: post.ID, ParentID: parentID, IsHidden: hidden}
	require.NoError(t, e.db.Create(&comment).Error)
	return &comment
}

// request performs an HTTP request against the test router. token may be
// empty for anonymous requests; body may be nil.
func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
