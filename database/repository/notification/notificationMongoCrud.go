// File: database/repository/notification/notificationMongoCrud.go
package notificationRepo

import (
	"context"
	"fmt"
	"time"

	"freelancehub/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Create inserts a new notification document.
func (r *MongoNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// MarkRead sets read/readAt only while the document is still unread, so
// concurrent callers cannot move readAt once it is set.
func (r *MongoNotificationRepo) MarkRead(ctx context.Context, id string, at time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "read": false}
	update := bson.M{"$set": bson.M{"read": true, "readAt": at, "updatedAt": at}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *MongoNotificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"userId": userID, "read": false}
	update := bson.M{"$set": bson.M{"read": true, "readAt": at, "updatedAt": at}}

	result, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications of user %s read: %w", userID, err)
	}
	return result.ModifiedCount, nil
}

func (r *MongoNotificationRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "isSent": false}
	update := bson.M{"$set": bson.M{"isSent": true, "sentAt": at}}
	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to mark notification %s sent: %w", id, err)
	}
	return nil
}

// Delete removes a notification document by its ID.
func (r *MongoNotificationRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete notification %s: %w", id, err)
	}
	return result.DeletedCount > 0, nil
}

func (r *MongoNotificationRepo) DeleteMany(ctx context.Context, userID string, filter models.NotificationFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.coll.DeleteMany(ctx, buildFilter(userID, filter))
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications of user %s: %w", userID, err)
	}
	return result.DeletedCount, nil
}

// DeleteByRelated cascades the deletion of a task, application or payment.
func (r *MongoNotificationRepo) DeleteByRelated(ctx context.Context, ref models.RelatedRef) ([]string, int64, error) {
	filter, err := relatedFilter(ref)
	if err != nil {
		return nil, 0, err
	}

	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	raw, err := r.coll.Distinct(ctx, "userId", filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to collect owners for %s %s: %w", ref.Kind, ref.ID, err)
	}
	userIDs := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			userIDs = append(userIDs, id)
		}
	}

	result, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to delete notifications for %s %s: %w", ref.Kind, ref.ID, err)
	}
	return userIDs, result.DeletedCount, nil
}
