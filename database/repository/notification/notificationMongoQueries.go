// File: database/repository/notification/notificationMongoQueries.go
package notificationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freelancehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetByID retrieves a notification by its unique ID.
func (r *MongoNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	var n models.Notification
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch notification with id %s: %w", id, err)
	}
	return &n, nil
}

func (r *MongoNotificationRepo) List(ctx context.Context, userID string, filter models.NotificationFilter, skip, limit int64) ([]models.Notification, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	if skip < 0 {
		skip = 0
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, buildFilter(userID, filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications of user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

func (r *MongoNotificationRepo) Count(ctx context.Context, userID string, filter models.NotificationFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, buildFilter(userID, filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications of user %s: %w", userID, err)
	}
	return n, nil
}

// CountUnread is a live count query; there is no stored counter to drift.
func (r *MongoNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	unread := false
	return r.Count(ctx, userID, models.NotificationFilter{Read: &unread})
}
