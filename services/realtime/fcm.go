package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	userRepo "freelancehub/database/repository/user"
	"freelancehub/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const fcmSendTimeout = 10 * time.Second

// FCMPusher mirrors new notifications to the user's registered mobile device.
// Sends happen in the background; unread counts stay on the live channel.
type FCMPusher struct {
	client *messaging.Client
	users  userRepo.UserRepository
	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewFCMPusher(ctx context.Context, credentialsFile string, users userRepo.UserRepository, logger *zap.Logger) (*FCMPusher, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FCMPusher{client: client, users: users, logger: logger}, nil
}

func (p *FCMPusher) PushNotification(ctx context.Context, userID string, n *models.Notification) (int, error) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fcmSendTimeout)
		defer cancel()
		if err := p.send(ctx, userID, n); err != nil {
			p.logger.Warn("FCM push failed", zap.String("userId", userID), zap.String("notificationId", n.ID), zap.Error(err))
		}
	}()
	return 0, nil
}

func (p *FCMPusher) PushUnreadCount(context.Context, string, int64) (int, error) {
	return 0, nil
}

func (p *FCMPusher) send(ctx context.Context, userID string, n *models.Notification) error {
	u, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up device token: %w", err)
	}
	if u.FCMToken == "" {
		return nil
	}
	_, err = p.client.Send(ctx, buildFCMMessage(u.FCMToken, n))
	return err
}

func buildFCMMessage(token string, n *models.Notification) *messaging.Message {
	androidPriority := "normal"
	apnsPriority := "5"
	if n.Priority == models.PriorityHigh {
		androidPriority = "high"
		apnsPriority = "10"
	}
	data := map[string]string{
		"notificationId": n.ID,
		"type":           string(n.Category),
		"priority":       string(n.Priority),
	}
	if n.ActionURL != "" {
		data["actionUrl"] = n.ActionURL
	}
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data:    data,
		Android: &messaging.AndroidConfig{Priority: androidPriority},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": apnsPriority},
		},
	}
}

// Wait blocks until in-flight sends finish or ctx is done.
func (p *FCMPusher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
