package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mountain-community/backend/internal/models"
)

func TestGetCommentsThreading(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author", models.RoleUser)
	post := env.createPost(t, author, false)

	top := env.createComment(t, author, post, nil, false)
	env.createComment(t, author, post, &top.ID, false)
	env.createComment(t, author, post, &top.ID, true)
	env.createComment(t, author, post, nil, true)

	path := fmt.Sprintf("/api/comments/post/%d", post.ID)

	// Anonymous readers get one visible thread with one visible reply.
	w := env.request(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	threads := decodeList(t, w)
	require.Len(t, threads, 1)
	assert.Len(t, threads[0]["replies"], 1)

	// Staff see the hidden thread and the hidden reply too.
	moderator := env.createUser(t, "mod", models.RoleModerator)
	w = env.request(t, http.MethodGet, path, env.token(t, moderator), nil)
	threads = decodeList(t, w)
	require.Len(t, threads, 2)
}

func TestGetCommentsOnHiddenPost(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author", models.RoleUser)
	post := env.createPost(t, author, true)
	path := fmt.Sprintf("/api/comments/post/%d", post.ID)

	w := env.request(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	moderator := env.createUser(t, "mod", models.RoleModerator)
	w = env.request(t, http.MethodGet, path, env.token(t, moderator), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateCommentRules(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author", models.RoleUser)
	commenter := env.createUser(t, "commenter", models.RoleUser)
	token := env.token(t, commenter)

	visible := env.createPost(t, author, false)
	hidden := env.createPost(t, author, true)
	otherPost := env.createPost(t, author, false)
	parent := env.createComment(t, author, visible, nil, false)
	hiddenParent := env.createComment(t, author, visible, nil, true)

	// Commenting on a hidden post is refused.
	w := env.request(t, http.MethodPost, "/api/comments", token, models.CreateCommentRequest{
		Content: "hi", PostID: hidden.ID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Replying to a hidden parent is refused.
	w = env.request(t, http.MethodPost, "/api/comments", token, models.CreateCommentRequest{
		Content: "hi", PostID: visible.ID, ParentID: &hiddenParent.ID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The parent must belong to the same post.
	w = env.request(t, http.MethodPost, "/api/comments", token, models.CreateCommentRequest{
		Content: "hi", PostID: otherPost.ID, ParentID: &parent.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A valid reply goes through.
	w = env.request(t, http.MethodPost, "/api/comments", token, models.CreateCommentRequest{
		Content: "hi", PostID: visible.ID, ParentID: &parent.ID,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUpdateCommentOwnerAndStaff(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author", models.RoleUser)
	other := env.createUser(t, "other", models.RoleUser)
	moderator := env.createUser(t, "mod", models.RoleModerator)
	post := env.createPost(t, author, false)
	comment := env.createComment(t, author, post, nil, false)
	path := fmt.Sprintf("/api/comments/%d", comment.ID)

	edited := "edited"
	w := env.request(t, http.MethodPut, path, env.token(t, other), models.UpdateCommentRequest{Content: &edited})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodPut, path, env.token(t, author), models.UpdateCommentRequest{Content: &edited})
	assert.Equal(t, http.StatusOK, w.Code)

	// A moderator editing someone else's comment moderates visibility but
	// does not rewrite the body.
	rewrite := "rewritten"
	hide := true
	w = env.request(t, http.MethodPut, path, env.token(t, moderator), models.UpdateCommentRequest{
		Content: &rewrite, IsHidden: &hide,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Comment
	require.NoError(t, env.db.First(&got, comment.ID).Error)
	assert.Equal(t, edited, got.Content)
	assert.True(t, got.IsHidden)
}

func TestHideUnhideComment(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author", models.RoleUser)
	user := env.createUser(t, "user", models.RoleUser)
	moderator := env.createUser(t, "mod", models.RoleModerator)
	post := env.createPost(t, author, false)
	comment := env.createComment(t, author, post, nil, false)

	hidePath := fmt.Sprintf("/api/comments/%d/hide", comment.ID)
	unhidePath := fmt.Sprintf("/api/comments/%d/unhide", comment.ID)

	// Regular users cannot reach the moderation routes.
	w := env.request(t, http.MethodPut, hidePath, env.token(t, user), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodPut, hidePath, env.token(t, moderator), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Comment
	require.NoError(t, env.db.First(&got, comment.ID).Error)
	assert.True(t, got.IsHidden)

	// Hiding an already hidden comment is a no-op and writes no audit entry.
	var before int64
	env.db.Model(&models.ActivityLog{}).Where("action_type = ?", "moderate_comment").Count(&before)
	w = env.request(t, http.MethodPut, hidePath, env.token(t, moderator), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var after int64
	env.db.Model(&models.ActivityLog{}).Where("action_type = ?", "moderate_comment").Count(&after)
	assert.Equal(t, before, after)

	w = env.request(t, http.MethodPut, unhidePath, env.token(t, moderator), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, env.db.First(&got, comment.ID).Error)
	assert.False(t, got.IsHidden)
}

func TestCommentAutoHideCascade(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author", models.RoleUser)
	post := env.createPost(t, author, false)
	comment := env.createComment(t, author, post, nil, false)
	path := fmt.Sprintf("/api/comments/%d/report", comment.ID)

	for i := 0; i < 3; i++ {
		reporter := env.createUser(t, fmt.Sprintf("reporter%d", i), models.RoleUser)
		w := env.request(t, http.MethodPost, path, env.token(t, reporter), models.CreateReportRequest{Reason: "spam"})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	var got models.Comment
	require.NoError(t, env.db.First(&got, comment.ID).Error)
	assert.True(t, got.IsHidden)

	// The post itself stays visible.
	var gotPost models.Post
	require.NoError(t, env.db.First(&gotPost, post.ID).Error)
	assert.False(t, gotPost.IsHidden)
}
