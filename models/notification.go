package models

import "time"

// Category is the notification "type" shown to the client.
type Category string

const (
	CategoryInfo    Category = "info"
	CategorySuccess Category = "success"
	CategoryWarning Category = "warning"
	CategoryError   Category = "error"
)

// Valid reports whether c is one of the recognised categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryInfo, CategorySuccess, CategoryWarning, CategoryError:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

const (
	MaxNotificationTitleLen   = 100
	MaxNotificationMessageLen = 500
	DefaultNotificationIcon   = "bell"
)

// Notification is a persisted, per-user message describing a domain event.
// Read and ReadAt always change together.
type Notification struct {
	ID                   string     `bson:"id" json:"id"`
	UserID               string     `bson:"userId" json:"userId"`
	Title                string     `bson:"title" json:"title"`
	Message              string     `bson:"message" json:"message"`
	Category             Category   `bson:"type" json:"type"`
	Read                 bool       `bson:"read" json:"read"`
	ReadAt               *time.Time `bson:"readAt" json:"readAt"`
	RelatedTaskID        string     `bson:"relatedTaskId,omitempty" json:"relatedTaskId,omitempty"`
	RelatedApplicationID string     `bson:"relatedApplicationId,omitempty" json:"relatedApplicationId,omitempty"`
	RelatedPaymentID     string     `bson:"relatedPaymentId,omitempty" json:"relatedPaymentId,omitempty"`
	ActionURL            string     `bson:"actionUrl,omitempty" json:"actionUrl,omitempty"`
	ActionText           string     `bson:"actionText,omitempty" json:"actionText,omitempty"`
	Icon                 string     `bson:"icon" json:"icon"`
	Priority             Priority   `bson:"priority" json:"priority"`
	ExpiresAt            *time.Time `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	Sent                 bool       `bson:"isSent" json:"isSent"`
	SentAt               *time.Time `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	CreatedAt            time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// NotificationInput is what a collaborator supplies when raising a notification.
type NotificationInput struct {
	Title                string     `json:"title"`
	Message              string     `json:"message"`
	Category             Category   `json:"type"`
	RelatedTaskID        string     `json:"relatedTaskId,omitempty"`
	RelatedApplicationID string     `json:"relatedApplicationId,omitempty"`
	RelatedPaymentID     string     `json:"relatedPaymentId,omitempty"`
	ActionURL            string     `json:"actionUrl,omitempty"`
	ActionText           string     `json:"actionText,omitempty"`
	Icon                 string     `json:"icon,omitempty"`
	Priority             Priority   `json:"priority,omitempty"`
	ExpiresAt            *time.Time `json:"expiresAt,omitempty"`
}

// NotificationFilter narrows list and bulk-delete operations. Nil fields match everything.
type NotificationFilter struct {
	Category *Category
	Read     *bool
}

// RelatedKind names the entity a notification can point at.
type RelatedKind string

const (
	RelatedTask        RelatedKind = "task"
	RelatedApplication RelatedKind = "application"
	RelatedPayment     RelatedKind = "payment"
)

// Field returns the stored field holding references of this kind, or "" if unknown.
func (k RelatedKind) Field() string {
	switch k {
	case RelatedTask:
		return "relatedTaskId"
	case RelatedApplication:
		return "relatedApplicationId"
	case RelatedPayment:
		return "relatedPaymentId"
	}
	return ""
}

// RelatedRef identifies one related entity for cascade deletes.
type RelatedRef struct {
	Kind RelatedKind
	ID   string
}

type Pagination struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Pagination    Pagination     `json:"pagination"`
	UnreadCount   int64          `json:"unreadCount"`
}
