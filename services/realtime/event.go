package realtime

import "freelancehub/models"

// Event names sent to clients.
const (
	EventNewNotification = "newNotification"
	EventCountUpdate     = "notificationCountUpdate"
)

// Event is one frame on the live channel: {"event": name, "data": payload}.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

type CountUpdate struct {
	UnreadCount int64 `json:"unreadCount"`
}

func NewNotificationEvent(n *models.Notification) Event {
	return Event{Name: EventNewNotification, Data: n}
}

func NewCountEvent(count int64) Event {
	return Event{Name: EventCountUpdate, Data: CountUpdate{UnreadCount: count}}
}
