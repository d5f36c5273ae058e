package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mountain-community/backend/internal/models"
)

const defaultPageSize = 50

// pagination reads the skip/limit query parameters.
func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if offset < 0 {
		offset = 0
	}
	if limit < 1 || limit > 100 {
		limit = defaultPageSize
	}
	return offset, limit
}

func reactionScope(q *gorm.DB, postID, commentID *int) *gorm.DB {
	if postID != nil {
		return q.Where("post_id = ?", *postID)
	}
	return q.Where("comment_id = ?", *commentID)
}

// reactionCounts returns like and dislike totals for a target.
func reactionCounts(db *gorm.DB, postID, commentID *int) (int64, int64) {
	var likes, dislikes int64
	reactionScope(db.Model(&models.Reaction{}), postID, commentID).
		Where("type = ?", models.ReactionLike).Count(&likes)
	reactionScope(db.Model(&models.Reaction{}), postID, commentID).
		Where("type = ?", models.ReactionDislike).Count(&dislikes)
	return likes, dislikes
}

var errTargetHidden = errors.New("target is hidden")

// toggleReaction applies the like/dislike rules for one (user, target) pair:
// an existing reaction of the same type is removed, an opposite-type
// reaction is replaced, otherwise a new one is created. New reactions on
// hidden targets are refused, but toggling an existing one off still works.
func toggleReaction(db *gorm.DB, userID int, postID, commentID *int, rtype string, targetHidden bool) (removed bool, reaction *models.Reaction, err error) {
	var existing models.Reaction
	err = reactionScope(db.Where("user_id = ? AND type = ?", userID, rtype), postID, commentID).
		First(&existing).Error
	if err == nil {
		if err := db.Delete(&existing).Error; err != nil {
			return false, nil, err
		}
		return true, &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil, err
	}

	if targetHidden {
		return false, nil, errTargetHidden
	}

	// A user cannot hold both a like and a dislike on the same target.
	opposite := models.ReactionLike
	if rtype == models.ReactionLike {
		opposite = models.ReactionDislike
	}
	reactionScope(db.Where("user_id = ? AND type = ?", userID, opposite), postID, commentID).
		Delete(&models.Reaction{})

	created := models.Reaction{UserID: userID, PostID: postID, CommentID: commentID, Type: rtype}
	if err := db.Create(&created).Error; err != nil {
		return false, nil, err
	}
	return false, &created, nil
}
