package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/mountain-community/backend/internal/moderation"
	"github.com/mountain-community/backend/internal/notify"
	"github.com/mountain-community/backend/internal/settings"
)

// Handler combines all handler types
type Handler struct {
	Auth         *AuthHandler
	Post         *PostHandler
	Comment      *CommentHandler
	Report       *ReportHandler
	Notification *NotificationHandler
	User         *UserHandler
	Admin        *AdminHandler
	Institution  *InstitutionHandler
	Category     *CategoryHandler
	Notice       *NoticeHandler
}

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameRe.MatchString(fl.Field().String())
		})
	}
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB) *Handler {
	registerValidations()

	store := settings.NewStore(db)
	mod := moderation.NewService(db, store)

	var sms notify.SMSSender
	if sender := notify.NewTwilioFromEnv(); sender != nil {
		sms = sender
	}

	return &Handler{
		Auth:         NewAuthHandler(db, store),
		Post:         NewPostHandler(db, mod),
		Comment:      NewCommentHandler(db, mod),
		Report:       NewReportHandler(db, mod),
		Notification: NewNotificationHandler(db),
		User:         NewUserHandler(db, store, sms),
		Admin:        NewAdminHandler(db, store),
		Institution:  NewInstitutionHandler(db),
		Category:     NewCategoryHandler(db),
		Notice:       NewNoticeHandler(db),
	}
}
