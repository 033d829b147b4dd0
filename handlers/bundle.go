package handlers

import userService "freelancehub/services/user"

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Auth userService.Authenticator

	User         *UserHandler
	Notification *NotificationHandler
	Admin        *AdminHandler
	Realtime     *RealtimeHandler
}
