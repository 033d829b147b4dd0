package notificationRepo

import (
	"context"
	"fmt"
	"time"

	"freelancehub/models"
	"freelancehub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const collectionName = "notifications"

// MongoNotificationRepo implements NotificationRepository using MongoDB.
type MongoNotificationRepo struct {
	coll *mongo.Collection
}

// NewMongoNotificationRepo creates a new instance of NotificationRepository using MongoDB.
func NewMongoNotificationRepo(db *mongo.Database) NotificationRepository {
	repo := &MongoNotificationRepo{coll: db.Collection(collectionName)}

	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("notification repo: failed to create indexes", zap.Error(err))
	}
	return repo
}

// withTimeout bounds a store call by d on top of the caller's context.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

// buildFilter scopes a query to one user and applies the optional category/read filter.
func buildFilter(userID string, f models.NotificationFilter) bson.M {
	filter := bson.M{"userId": userID}
	if f.Category != nil {
		filter["type"] = string(*f.Category)
	}
	if f.Read != nil {
		filter["read"] = *f.Read
	}
	return filter
}

func relatedFilter(ref models.RelatedRef) (bson.M, error) {
	field := ref.Kind.Field()
	if field == "" {
		return nil, fmt.Errorf("unknown related kind %q", ref.Kind)
	}
	if ref.ID == "" {
		return nil, fmt.Errorf("related %s id is required", ref.Kind)
	}
	return bson.M{field: ref.ID}, nil
}
