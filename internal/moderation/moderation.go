// Package moderation implements the report workflow: filing reports,
// auto-hiding content once the configured report threshold is crossed, and
// moderator approval/rejection with reporter notifications.
package moderation

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mountain-community/backend/internal/audit"
	"github.com/mountain-community/backend/internal/models"
	"github.com/mountain-community/backend/internal/settings"
)

var (
	// ErrTargetNotFound means the reported post or comment does not exist.
	ErrTargetNotFound = errors.New("report target not found")
	// ErrReportNotFound means the report id does not exist.
	ErrReportNotFound = errors.New("report not found")
	// ErrBadTarget means the request named both or neither of post/comment.
	ErrBadTarget = errors.New("report must target exactly one of post or comment")
	// ErrAlreadyReported means the reporter already has a report against the
	// same target.
	ErrAlreadyReported = errors.New("already reported")
)

type Service struct {
	db       *gorm.DB
	settings *settings.Store
}

func NewService(db *gorm.DB, store *settings.Store) *Service {
	return &Service{db: db, settings: store}
}

// FileReport validates the target, rejects duplicates, persists a pending
// report, and hides the target once non-rejected reports reach the
// configured threshold.
func (s *Service) FileReport(reporter *models.User, postID, commentID *int, reason, description, ip string) (*models.Report, error) {
	if (postID == nil) == (commentID == nil) {
		return nil, ErrBadTarget
	}

	var targetLabel string
	if postID != nil {
		var post models.Post
		if err := s.db.First(&post, *postID).Error; err != nil {
			return nil, ErrTargetNotFound
		}
		targetLabel = fmt.Sprintf("post %d", post.ID)
	} else {
		var comment models.Comment
		if err := s.db.First(&comment, *commentID).Error; err != nil {
			return nil, ErrTargetNotFound
		}
		targetLabel = fmt.Sprintf("comment %d", comment.ID)
	}

	// One report per reporter per target, enforced by existence check.
	var existing models.Report
	err := s.targetScope(s.db.Where("reporter_id = ?", reporter.ID), postID, commentID).
		First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyReported
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	report := models.Report{
		ReporterID:  reporter.ID,
		PostID:      postID,
		CommentID:   commentID,
		Reason:      reason,
		Description: description,
		Status:      models.ReportPending,
	}
	if err := s.db.Create(&report).Error; err != nil {
		return nil, err
	}

	// Count-then-flip is not atomic; concurrent reports racing past the
	// threshold is tolerated on this low-contention path.
	threshold := s.settings.AutoHideThreshold()
	if s.activeReportCount(postID, commentID) >= int64(threshold) {
		s.setHidden(postID, commentID, true)
	}

	audit.Record(s.db, reporter.ID, "create_report",
		fmt.Sprintf("User %s reported %s: %s", reporter.Username, targetLabel, reason), ip)

	return &report, nil
}

// SetStatus moves a report to the given status, records the reviewer, applies
// the visibility side effect for reviewed/rejected, and notifies the
// reporter. Re-applying a status re-sets the same fields.
func (s *Service) SetStatus(reportID int, reviewer *models.User, status, ip string) (*models.Report, error) {
	var report models.Report
	if err := s.db.First(&report, reportID).Error; err != nil {
		return nil, ErrReportNotFound
	}

	report.Status = status
	report.ReviewedBy = &reviewer.ID
	if err := s.db.Save(&report).Error; err != nil {
		return nil, err
	}

	switch status {
	case models.ReportReviewed:
		s.setHidden(report.PostID, report.CommentID, true)
	case models.ReportRejected:
		s.setHidden(report.PostID, report.CommentID, false)
	}

	audit.Record(s.db, reviewer.ID, "update_report",
		fmt.Sprintf("User %s updated report %d status to %s", reviewer.Username, report.ID, status), ip)

	s.notifyReporter(&report)

	return &report, nil
}

// Approve marks the report reviewed and hides its target.
func (s *Service) Approve(reportID int, reviewer *models.User, ip string) (*models.Report, error) {
	return s.SetStatus(reportID, reviewer, models.ReportReviewed, ip)
}

// Reject marks the report rejected and unhides its target if it was hidden.
func (s *Service) Reject(reportID int, reviewer *models.User, ip string) (*models.Report, error) {
	return s.SetStatus(reportID, reviewer, models.ReportRejected, ip)
}

func (s *Service) targetScope(q *gorm.DB, postID, commentID *int) *gorm.DB {
	if postID != nil {
		return q.Where("post_id = ?", *postID)
	}
	return q.Where("comment_id = ?", *commentID)
}

// activeReportCount counts non-rejected reports against a target. Rejected
// reports are excluded so a rejection cannot push content back over the
// threshold.
func (s *Service) activeReportCount(postID, commentID *int) int64 {
	var count int64
	s.targetScope(s.db.Model(&models.Report{}), postID, commentID).
		Where("status <> ?", models.ReportRejected).
		Count(&count)
	return count
}

func (s *Service) setHidden(postID, commentID *int, hidden bool) {
	if postID != nil {
		s.db.Model(&models.Post{}).Where("id = ?", *postID).Update("is_hidden", hidden)
	} else if commentID != nil {
		s.db.Model(&models.Comment{}).Where("id = ?", *commentID).Update("is_hidden", hidden)
	}
}

func (s *Service) notifyReporter(report *models.Report) {
	prefs, err := s.settings.Notification()
	if err != nil || !prefs.OnReportStatus {
		return
	}
	id := report.ID
	s.db.Create(&models.Notification{
		UserID:    report.ReporterID,
		Type:      models.NotificationReportStatus,
		Content:   fmt.Sprintf("Your report has been %s.", report.Status),
		RelatedID: &id,
	})
}
