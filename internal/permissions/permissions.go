// Package permissions centralizes every role check in the API. Handlers ask
// Can(role, action, owner) instead of comparing role strings inline.
package permissions

import "github.com/mountain-community/backend/internal/models"

type Action string

const (
	ActionEditPost        Action = "post.edit"
	ActionDeletePost      Action = "post.delete"
	ActionHideContent     Action = "content.hide"
	ActionEditComment     Action = "comment.edit"
	ActionDeleteComment   Action = "comment.delete"
	ActionReviewReports   Action = "report.review"
	ActionListUsers       Action = "user.list"
	ActionChangeStatus    Action = "user.status"
	ActionChangeRole      Action = "user.role"
	ActionManageSettings  Action = "settings.manage"
	ActionViewAuditLog    Action = "audit.view"
	ActionViewStats       Action = "stats.view"
	ActionManageTaxonomy  Action = "taxonomy.manage"
	ActionManageNotices   Action = "notice.manage"
	ActionViewHidden      Action = "content.view_hidden"
)

type level int

const (
	ownerOrStaff level = iota
	staffOnly
	adminOnly
)

var policy = map[Action]level{
	ActionEditPost:       ownerOrStaff,
	ActionDeletePost:     ownerOrStaff,
	ActionEditComment:    ownerOrStaff,
	ActionDeleteComment:  ownerOrStaff,
	ActionHideContent:    staffOnly,
	ActionReviewReports:  staffOnly,
	ActionListUsers:      staffOnly,
	ActionChangeStatus:   staffOnly,
	ActionViewStats:      staffOnly,
	ActionViewHidden:     staffOnly,
	ActionChangeRole:     adminOnly,
	ActionManageSettings: adminOnly,
	ActionViewAuditLog:   adminOnly,
	ActionManageTaxonomy: adminOnly,
	ActionManageNotices:  adminOnly,
}

// Can decides whether a role may perform an action. owner reports whether the
// caller owns the target resource; it only matters for owner-or-staff actions.
func Can(role string, action Action, owner bool) bool {
	lvl, ok := policy[action]
	if !ok {
		return false
	}
	staff := role == models.RoleModerator || role == models.RoleAdmin
	switch lvl {
	case ownerOrStaff:
		return owner || staff
	case staffOnly:
		return staff
	case adminOnly:
		return role == models.RoleAdmin
	}
	return false
}
