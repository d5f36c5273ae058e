package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mountain-community/backend/internal/audit"
	"github.com/mountain-community/backend/internal/markup"
	"github.com/mountain-community/backend/internal/middleware"
	"github.com/mountain-community/backend/internal/models"
	"github.com/mountain-community/backend/internal/moderation"
	"github.com/mountain-community/backend/internal/permissions"
)

type PostHandler struct {
	db  *gorm.DB
	mod *moderation.Service
}

func NewPostHandler(db *gorm.DB, mod *moderation.Service) *PostHandler {
	return &PostHandler{db: db, mod: mod}
}

// visibleCommentCount counts non-hidden comments on a post.
func (h *PostHandler) visibleCommentCount(postID int) int64 {
	var count int64
	h.db.Model(&models.Comment{}).
		Where("post_id = ? AND is_hidden = ?", postID, false).
		Count(&count)
	return count
}

func (h *PostHandler) postResponse(post *models.Post, detail bool) gin.H {
	id := post.ID
	likes, dislikes := reactionCounts(h.db, &id, nil)
	resp := gin.H{
		"id":            post.ID,
		"title":         post.Title,
		"content":       post.Content,
		"user_id":       post.UserID,
		"user":          post.User,
		"institution":   post.Institution,
		"category":      post.Category,
		"images":        post.Images,
		"view_count":    post.ViewCount,
		"is_hidden":     post.IsHidden,
		"comment_count": h.visibleCommentCount(post.ID),
		"like_count":    likes,
		"dislike_count": dislikes,
		"created_at":    post.CreatedAt,
		"updated_at":    post.UpdatedAt,
	}
	if detail {
		resp["content_html"] = markup.Render(post.Content)
	}
	return resp
}

// GetPosts lists posts. Hidden posts are visible to moderators and admins
// only, regardless of ownership.
func (h *PostHandler) GetPosts(c *gin.Context) {
	offset, limit := pagination(c)

	query := h.db.Model(&models.Post{}).
		Preload("User").Preload("Institution").Preload("Category").Preload("Images")

	if raw := c.Query("category_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			query = query.Where("category_id = ?", id)
		}
	}
	if raw := c.Query("institution_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			query = query.Where("institution_id = ?", id)
		}
	}
	if !middleware.IsStaff(c) {
		query = query.Where("is_hidden = ?", false)
	}

	var posts []models.Post
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	responses := make([]gin.H, 0, len(posts))
	for i := range posts {
		responses = append(responses, h.postResponse(&posts[i], false))
	}
	c.JSON(http.StatusOK, responses)
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	var post models.Post
	if err := h.db.Preload("User").Preload("Institution").Preload("Category").Preload("Images").
		First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.IsHidden && !middleware.IsStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Post is hidden"})
		return
	}

	h.db.Model(&post).UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	post.ViewCount++

	c.JSON(http.StatusOK, h.postResponse(&post, true))
}

// CreatePost creates a new post for the authenticated user.
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)

	post := models.Post{
		Title:         markup.Clean(input.Title),
		Content:       input.Content,
		UserID:        user.ID,
		InstitutionID: input.InstitutionID,
		CategoryID:    input.CategoryID,
	}
	if err := h.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	for _, url := range input.ImageURLs {
		h.db.Create(&models.PostImage{PostID: post.ID, ImageURL: url})
	}

	audit.Record(h.db, user.ID, "create_post",
		fmt.Sprintf("User %s created post %d", user.Username, post.ID), c.ClientIP())

	h.db.Preload("User").Preload("Images").First(&post, post.ID)
	c.JSON(http.StatusCreated, post)
}

// UpdatePost edits a post. Owners may change the body; only staff may change
// visibility.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var input models.UpdatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)

	var post models.Post
	if err := h.db.First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	owner := post.UserID == user.ID
	if !permissions.Can(user.Role, permissions.ActionEditPost, owner) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}
	if input.IsHidden != nil && !permissions.Can(user.Role, permissions.ActionHideContent, owner) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions to change visibility"})
		return
	}

	// Body edits stay owner-only; staff without ownership only moderate.
	if owner {
		if input.Title != nil {
			post.Title = markup.Clean(*input.Title)
		}
		if input.Content != nil {
			post.Content = *input.Content
		}
		if input.InstitutionID != nil {
			post.InstitutionID = input.InstitutionID
		}
		if input.CategoryID != nil {
			post.CategoryID = input.CategoryID
		}
	}
	if input.IsHidden != nil && *input.IsHidden != post.IsHidden {
		post.IsHidden = *input.IsHidden
		audit.Record(h.db, user.ID, "moderate_post",
			fmt.Sprintf("User %s set post %d hidden=%t", user.Username, post.ID, post.IsHidden), c.ClientIP())
	}

	if err := h.db.Save(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	audit.Record(h.db, user.ID, "update_post",
		fmt.Sprintf("User %s updated post %d", user.Username, post.ID), c.ClientIP())

	h.db.Preload("User").Preload("Images").First(&post, post.ID)
	c.JSON(http.StatusOK, post)
}

// DeletePost removes a post and its dependent rows.
func (h *PostHandler) DeletePost(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var post models.Post
	if err := h.db.First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if !permissions.Can(user.Role, permissions.ActionDeletePost, post.UserID == user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	// Clean up dependents explicitly; the schema cascades are a backstop.
	var commentIDs []int
	h.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Pluck("id", &commentIDs)
	if len(commentIDs) > 0 {
		h.db.Where("comment_id IN ?", commentIDs).Delete(&models.Reaction{})
		h.db.Where("comment_id IN ?", commentIDs).Delete(&models.Report{})
		h.db.Where("post_id = ?", post.ID).Delete(&models.Comment{})
	}
	h.db.Where("post_id = ?", post.ID).Delete(&models.Reaction{})
	h.db.Where("post_id = ?", post.ID).Delete(&models.Report{})
	h.db.Where("post_id = ?", post.ID).Delete(&models.PostImage{})

	if err := h.db.Delete(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	audit.Record(h.db, user.ID, "delete_post",
		fmt.Sprintf("User %s deleted post %d", user.Username, post.ID), c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// React toggles a like or dislike on a post. The reaction type comes from
// the route suffix.
func (h *PostHandler) React(rtype string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var post models.Post
		if err := h.db.First(&post, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}

		postID := post.ID
		removed, reaction, err := toggleReaction(h.db, user.ID, &postID, nil, rtype, post.IsHidden)
		if errors.Is(err, errTargetHidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot react to hidden post"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record reaction"})
			return
		}

		likes, dislikes := reactionCounts(h.db, &postID, nil)
		c.JSON(http.StatusOK, gin.H{
			"removed":       removed,
			"reaction":      reaction,
			"like_count":    likes,
			"dislike_count": dislikes,
		})
	}
}

// Report files a report against a post.
func (h *PostHandler) Report(c *gin.Context) {
	var input models.CreateReportRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return
	}

	user, _ := middleware.CurrentUser(c)

	report, err := h.mod.FileReport(user, &postID, nil, input.Reason, input.Description, c.ClientIP())
	if err != nil {
		writeModerationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// writeModerationError maps moderation sentinel errors onto HTTP statuses.
func writeModerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, moderation.ErrTargetNotFound), errors.Is(err, moderation.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, moderation.ErrBadTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, moderation.ErrAlreadyReported):
		c.JSON(http.StatusConflict, gin.H{"error": "You have already reported this content"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process report"})
	}
}
