package notification

import (
	"strings"
	"time"
	"unicode/utf8"

	"freelancehub/models"

	"github.com/google/uuid"
)

// newNotification validates in and builds the record to persist for userID.
func newNotification(userID string, in models.NotificationInput, now time.Time) (*models.Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("userId", "is required")
	}

	// blank text is rejected; stored text is kept as given
	title := in.Title
	if strings.TrimSpace(title) == "" {
		return nil, invalid("title", "is required")
	}
	if utf8.RuneCountInString(title) > models.MaxNotificationTitleLen {
		return nil, invalid("title", "must be at most %d characters", models.MaxNotificationTitleLen)
	}

	message := in.Message
	if strings.TrimSpace(message) == "" {
		return nil, invalid("message", "is required")
	}
	if utf8.RuneCountInString(message) > models.MaxNotificationMessageLen {
		return nil, invalid("message", "must be at most %d characters", models.MaxNotificationMessageLen)
	}

	category := in.Category
	if category == "" {
		category = models.CategoryInfo
	}
	if !category.Valid() {
		return nil, invalid("type", "%q is not one of info, success, warning, error", category)
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, invalid("priority", "%q is not one of low, medium, high", priority)
	}

	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, invalid("expiresAt", "must be in the future")
	}

	icon := in.Icon
	if icon == "" {
		icon = models.DefaultNotificationIcon
	}

	return &models.Notification{
		ID:                   uuid.New().String(),
		UserID:               userID,
		Title:                title,
		Message:              message,
		Category:             category,
		RelatedTaskID:        in.RelatedTaskID,
		RelatedApplicationID: in.RelatedApplicationID,
		RelatedPaymentID:     in.RelatedPaymentID,
		ActionURL:            in.ActionURL,
		ActionText:           in.ActionText,
		Icon:                 icon,
		Priority:             priority,
		ExpiresAt:            in.ExpiresAt,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

func validateFilter(f models.NotificationFilter) error {
	if f.Category != nil && !f.Category.Valid() {
		return invalid("type", "%q is not one of info, success, warning, error", *f.Category)
	}
	return nil
}
