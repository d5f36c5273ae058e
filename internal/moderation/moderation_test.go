package moderation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mountain-community/backend/internal/database"
	"github.com/mountain-community/backend/internal/models"
	"github.com/mountain-community/backend/internal/settings"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return NewService(db, settings.NewStore(db)), db
}

func createUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Status:       models.StatusActive,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createPost(t *testing.T, db *gorm.DB, author *models.User) *models.Post {
	t.Helper()
	post := models.Post{Title: "A post", Content: "body", UserID: author.ID}
	require.NoError(t, db.Create(&post).Error)
	return &post
}

func TestFileReportRequiresExactlyOneTarget(t *testing.T) {
	svc, db := setupService(t)
	reporter := createUser(t, db, "reporter", models.RoleUser)
	post := createPost(t, db, reporter)
	commentID := 1

	_, err := svc.FileReport(reporter, nil, nil, "spam", "", "127.0.0.1")
	assert.ErrorIs(t, err, ErrBadTarget)

	_, err = svc.FileReport(reporter, &post.ID, &commentID, "spam", "", "127.0.0.1")
	assert.ErrorIs(t, err, ErrBadTarget)
}

func TestFileReportMissingTarget(t *testing.T) {
	svc, db := setupService(t)
	reporter := createUser(t, db, "reporter", models.RoleUser)

	missing := 9999
	_, err := svc.FileReport(reporter, &missing, nil, "spam", "", "127.0.0.1")
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestFileReportRejectsDuplicates(t *testing.T) {
	svc, db := setupService(t)
	author := createUser(t, db, "author", models.RoleUser)
	reporter := createUser(t, db, "reporter", models.RoleUser)
	post := createPost(t, db, author)

	_, err := svc.FileReport(reporter, &post.ID, nil, "spam", "", "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.FileReport(reporter, &post.ID, nil, "spam again", "", "127.0.0.1")
	assert.ErrorIs(t, err, ErrAlreadyReported)
}

func TestAutoHideAtThreshold(t *testing.T) {
	svc, db := setupService(t)
	author := createUser(t, db, "author", models.RoleUser)
	post := createPost(t, db, author)

	for i := 0; i < 3; i++ {
		reporter := createUser(t, db, fmt.Sprintf("reporter%d", i), models.RoleUser)
		_, err := svc.FileReport(reporter, &post.ID, nil, "spam", "", "127.0.0.1")
		require.NoError(t, err)

		var got models.Post
		require.NoError(t, db.First(&got, post.ID).Error)
		if i < 2 {
			assert.False(t, got.IsHidden, "post hidden after %d reports", i+1)
		} else {
			assert.True(t, got.IsHidden, "post not hidden at the threshold")
		}
	}
}

func TestRejectedReportsDoNotCountTowardThreshold(t *testing.T) {
	svc, db := setupService(t)
	author := createUser(t, db, "author", models.RoleUser)
	moderator := createUser(t, db, "mod", models.RoleModerator)
	post := createPost(t, db, author)

	first := createUser(t, db, "first", models.RoleUser)
	report, err := svc.FileReport(first, &post.ID, nil, "spam", "", "127.0.0.1")
	require.NoError(t, err)
	_, err = svc.Reject(report.ID, moderator, "127.0.0.1")
	require.NoError(t, err)

	// Two more active reports leave the total active count at 2.
	for i := 0; i < 2; i++ {
		reporter := createUser(t, db, fmt.Sprintf("again%d", i), models.RoleUser)
		_, err := svc.FileReport(reporter, &post.ID, nil, "spam", "", "127.0.0.1")
		require.NoError(t, err)
	}

	var got models.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.False(t, got.IsHidden)
}

func TestApproveHidesTargetAndNotifiesReporter(t *testing.T) {
	svc, db := setupService(t)
	author := createUser(t, db, "author", models.RoleUser)
	reporter := createUser(t, db, "reporter", models.RoleUser)
	moderator := createUser(t, db, "mod", models.RoleModerator)
	post := createPost(t, db, author)

	report, err := svc.FileReport(reporter, &post.ID, nil, "abuse", "details", "127.0.0.1")
	require.NoError(t, err)

	updated, err := svc.Approve(report.ID, moderator, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportReviewed, updated.Status)
	require.NotNil(t, updated.ReviewedBy)
	assert.Equal(t, moderator.ID, *updated.ReviewedBy)

	var got models.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.True(t, got.IsHidden)

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", reporter.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationReportStatus, notifications[0].Type)
	assert.Equal(t, "Your report has been reviewed.", notifications[0].Content)
}

func TestRejectUnhidesTarget(t *testing.T) {
	svc, db := setupService(t)
	author := createUser(t, db, "author", models.RoleUser)
	reporter := createUser(t, db, "reporter", models.RoleUser)
	moderator := createUser(t, db, "mod", models.RoleModerator)
	post := createPost(t, db, author)
	require.NoError(t, db.Model(post).Update("is_hidden", true).Error)

	report, err := svc.FileReport(reporter, &post.ID, nil, "abuse", "", "127.0.0.1")
	require.NoError(t, err)

	updated, err := svc.Reject(report.ID, moderator, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportRejected, updated.Status)

	var got models.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.False(t, got.IsHidden)
}

func TestSetStatusUnknownReport(t *testing.T) {
	svc, db := setupService(t)
	moderator := createUser(t, db, "mod", models.RoleModerator)

	_, err := svc.SetStatus(12345, moderator, models.ReportResolved, "127.0.0.1")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestThresholdFollowsSettings(t *testing.T) {
	svc, db := setupService(t)
	author := createUser(t, db, "author", models.RoleUser)
	post := createPost(t, db, author)

	require.NoError(t, db.Create(&models.Setting{
		KeyName: "report.autoHideThreshold",
		Value:   "1",
	}).Error)

	reporter := createUser(t, db, "reporter", models.RoleUser)
	_, err := svc.FileReport(reporter, &post.ID, nil, "spam", "", "127.0.0.1")
	require.NoError(t, err)

	var got models.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.True(t, got.IsHidden)
}
