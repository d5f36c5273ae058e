package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mountain-community/backend/internal/models"
)

func TestCan(t *testing.T) {
	tests := []struct {
		name   string
		role   string
		action Action
		owner  bool
		want   bool
	}{
		{"owner edits own post", models.RoleUser, ActionEditPost, true, true},
		{"user cannot edit others' post", models.RoleUser, ActionEditPost, false, false},
		{"moderator edits any post", models.RoleModerator, ActionEditPost, false, true},
		{"admin deletes any comment", models.RoleAdmin, ActionDeleteComment, false, true},

		{"owner cannot hide own content", models.RoleUser, ActionHideContent, true, false},
		{"moderator hides content", models.RoleModerator, ActionHideContent, false, true},
		{"moderator reviews reports", models.RoleModerator, ActionReviewReports, false, true},
		{"user cannot review reports", models.RoleUser, ActionReviewReports, false, false},
		{"moderator suspends users", models.RoleModerator, ActionChangeStatus, false, true},

		{"moderator cannot change roles", models.RoleModerator, ActionChangeRole, false, false},
		{"admin changes roles", models.RoleAdmin, ActionChangeRole, false, true},
		{"moderator cannot manage settings", models.RoleModerator, ActionManageSettings, false, false},
		{"admin manages settings", models.RoleAdmin, ActionManageSettings, false, true},
		{"admin manages taxonomy", models.RoleAdmin, ActionManageTaxonomy, false, true},
		{"moderator cannot manage notices", models.RoleModerator, ActionManageNotices, false, false},

		{"unknown action denied", models.RoleAdmin, Action("nope"), true, false},
		{"unknown role treated as user", "ghost", ActionEditPost, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.role, tt.action, tt.owner))
		})
	}
}
