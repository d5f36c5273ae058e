package models

import "time"

// Reaction types.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// Reaction targets exactly one of PostID/CommentID. A (user, target) pair
// holds at most one reaction type at a time; the unique indexes back the
// toggle logic in the handlers.
type Reaction struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:uniq_post_reaction;uniqueIndex:uniq_comment_reaction" json:"user_id"`
	PostID    *int      `gorm:"uniqueIndex:uniq_post_reaction" json:"post_id,omitempty"`
	CommentID *int      `gorm:"uniqueIndex:uniq_comment_reaction" json:"comment_id,omitempty"`
	Type      string    `gorm:"size:10;not null;uniqueIndex:uniq_post_reaction;uniqueIndex:uniq_comment_reaction" json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
