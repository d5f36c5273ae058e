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

type CommentHandler struct {
	db  *gorm.DB
	mod *moderation.Service
}

func NewCommentHandler(db *gorm.DB, mod *moderation.Service) *CommentHandler {
	return &CommentHandler{db: db, mod: mod}
}

func (h *CommentHandler) commentResponse(comment *models.Comment, detail bool) gin.H {
	id := comment.ID
	likes, dislikes := reactionCounts(h.db, nil, &id)
	resp := gin.H{
		"id":            comment.ID,
		"content":       comment.Content,
		"user_id":       comment.UserID,
		"user":          comment.User,
		"post_id":       comment.PostID,
		"parent_id":     comment.ParentID,
		"is_hidden":     comment.IsHidden,
		"like_count":    likes,
		"dislike_count": dislikes,
		"created_at":    comment.CreatedAt,
		"updated_at":    comment.UpdatedAt,
	}
	if detail {
		resp["content_html"] = markup.Render(comment.Content)
	}
	return resp
}

// GetComments lists a post's top-level comments with one level of replies.
// Hidden comments are filtered out for everyone but staff.
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID := c.Param("postId")

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	staff := middleware.IsStaff(c)
	if post.IsHidden && !staff {
		c.JSON(http.StatusForbidden, gin.H{"error": "Post is hidden"})
		return
	}

	offset, limit := pagination(c)

	query := h.db.Preload("User").
		Where("post_id = ? AND parent_id IS NULL", post.ID)
	if !staff {
		query = query.Where("is_hidden = ?", false)
	}

	var comments []models.Comment
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	responses := make([]gin.H, 0, len(comments))
	for i := range comments {
		entry := h.commentResponse(&comments[i], true)

		// Replies are materialized one level deep only.
		replyQuery := h.db.Preload("User").Where("parent_id = ?", comments[i].ID)
		if !staff {
			replyQuery = replyQuery.Where("is_hidden = ?", false)
		}
		var replies []models.Comment
		replyQuery.Order("created_at asc").Find(&replies)

		replyResponses := make([]gin.H, 0, len(replies))
		for j := range replies {
			replyResponses = append(replyResponses, h.commentResponse(&replies[j], true))
		}
		entry["replies"] = replyResponses
		responses = append(responses, entry)
	}

	c.JSON(http.StatusOK, responses)
}

// CreateComment creates a comment or a reply on a visible post.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)

	var post models.Post
	if err := h.db.First(&post, input.PostID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if post.IsHidden {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot comment on hidden post"})
		return
	}

	if input.ParentID != nil {
		var parent models.Comment
		if err := h.db.First(&parent, *input.ParentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent comment not found"})
			return
		}
		if parent.IsHidden {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot reply to hidden comment"})
			return
		}
		if parent.PostID != input.PostID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent comment belongs to different post"})
			return
		}
	}

	comment := models.Comment{
		Content:  input.Content,
		UserID:   user.ID,
		PostID:   input.PostID,
		ParentID: input.ParentID,
	}
	if err := h.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	audit.Record(h.db, user.ID, "create_comment",
		fmt.Sprintf("User %s created comment %d on post %d", user.Username, comment.ID, comment.PostID), c.ClientIP())

	h.db.Preload("User").First(&comment, comment.ID)
	c.JSON(http.StatusCreated, comment)
}

// UpdateComment edits a comment. Owners may change the body; only staff may
// change visibility.
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	var input models.UpdateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)

	var comment models.Comment
	if err := h.db.First(&comment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	owner := comment.UserID == user.ID
	if !permissions.Can(user.Role, permissions.ActionEditComment, owner) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}
	if input.IsHidden != nil && !permissions.Can(user.Role, permissions.ActionHideContent, owner) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions to change visibility"})
		return
	}

	// Body edits stay owner-only; staff without ownership only moderate.
	if input.Content != nil && owner {
		comment.Content = *input.Content
	}
	if input.IsHidden != nil {
		comment.IsHidden = *input.IsHidden
	}

	if err := h.db.Save(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	audit.Record(h.db, user.ID, "update_comment",
		fmt.Sprintf("User %s updated comment %d", user.Username, comment.ID), c.ClientIP())

	h.db.Preload("User").First(&comment, comment.ID)
	c.JSON(http.StatusOK, h.commentResponse(&comment, false))
}

// DeleteComment removes a comment, its replies, and their reactions.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var comment models.Comment
	if err := h.db.First(&comment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if !permissions.Can(user.Role, permissions.ActionDeleteComment, comment.UserID == user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	var replyIDs []int
	h.db.Model(&models.Comment{}).Where("parent_id = ?", comment.ID).Pluck("id", &replyIDs)
	ids := append(replyIDs, comment.ID)
	h.db.Where("comment_id IN ?", ids).Delete(&models.Reaction{})
	h.db.Where("comment_id IN ?", ids).Delete(&models.Report{})
	h.db.Where("parent_id = ?", comment.ID).Delete(&models.Comment{})

	if err := h.db.Delete(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	audit.Record(h.db, user.ID, "delete_comment",
		fmt.Sprintf("User %s deleted comment %d", user.Username, comment.ID), c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// React toggles a like or dislike on a comment.
func (h *CommentHandler) React(rtype string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var comment models.Comment
		if err := h.db.First(&comment, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}

		commentID := comment.ID
		removed, reaction, err := toggleReaction(h.db, user.ID, nil, &commentID, rtype, comment.IsHidden)
		if errors.Is(err, errTargetHidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot react to hidden comment"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record reaction"})
			return
		}

		likes, dislikes := reactionCounts(h.db, nil, &commentID)
		c.JSON(http.StatusOK, gin.H{
			"removed":       removed,
			"reaction":      reaction,
			"like_count":    likes,
			"dislike_count": dislikes,
		})
	}
}

// Report files a report against a comment.
func (h *CommentHandler) Report(c *gin.Context) {
	var input models.CreateReportRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	commentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment id"})
		return
	}

	user, _ := middleware.CurrentUser(c)

	report, err := h.mod.FileReport(user, nil, &commentID, input.Reason, input.Description, c.ClientIP())
	if err != nil {
		writeModerationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// SetHidden returns a handler that hides or unhides a comment directly,
// independent of report volume. Already being in the target state is a
// no-op without side effects.
func (h *CommentHandler) SetHidden(hidden bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var comment models.Comment
		if err := h.db.First(&comment, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}

		if comment.IsHidden == hidden {
			c.JSON(http.StatusOK, h.commentResponse(&comment, false))
			return
		}

		if err := h.db.Model(&comment).Update("is_hidden", hidden).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
			return
		}
		comment.IsHidden = hidden

		audit.Record(h.db, user.ID, "moderate_comment",
			fmt.Sprintf("User %s set comment %d hidden=%t", user.Username, comment.ID, hidden), c.ClientIP())

		h.db.Preload("User").First(&comment, comment.ID)
		c.JSON(http.StatusOK, h.commentResponse(&comment, false))
	}
}
