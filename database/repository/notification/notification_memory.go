package notificationRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"freelancehub/models"
)

type memoryRecord struct {
	n   models.Notification
	seq uint64
}

// MemoryNotificationRepo is an in-process NotificationRepository used for
// local development (STORE_BACKEND=memory) and tests.
type MemoryNotificationRepo struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
	seq     uint64
}

func NewMemoryNotificationRepo() *MemoryNotificationRepo {
	return &MemoryNotificationRepo{records: make(map[string]*memoryRecord)}
}

// expired mirrors the Mongo TTL index: past expiresAt a record is gone.
func expired(n *models.Notification) bool {
	return n.ExpiresAt != nil && !n.ExpiresAt.After(time.Now())
}

func matches(n *models.Notification, userID string, f models.NotificationFilter) bool {
	if n.UserID != userID || expired(n) {
		return false
	}
	if f.Category != nil && n.Category != *f.Category {
		return false
	}
	if f.Read != nil && n.Read != *f.Read {
		return false
	}
	return true
}

func (r *MemoryNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[n.ID]; ok {
		return fmt.Errorf("failed to create notification: duplicate id %s", n.ID)
	}
	r.seq++
	r.records[n.ID] = &memoryRecord{n: *n, seq: r.seq}
	return nil
}

func (r *MemoryNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok || expired(&rec.n) {
		return nil, ErrNotFound
	}
	n := rec.n
	return &n, nil
}

func (r *MemoryNotificationRepo) List(ctx context.Context, userID string, filter models.NotificationFilter, skip, limit int64) ([]models.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var recs []*memoryRecord
	for _, rec := range r.records {
		if matches(&rec.n, userID, filter) {
			recs = append(recs, rec)
		}
	}
	r.mu.RUnlock()

	// newest first; insertion order breaks createdAt ties
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].n.CreatedAt.Equal(recs[j].n.CreatedAt) {
			return recs[i].n.CreatedAt.After(recs[j].n.CreatedAt)
		}
		return recs[i].seq > recs[j].seq
	})

	if skip < 0 {
		skip = 0
	}
	out := []models.Notification{}
	for i := skip; i < int64(len(recs)); i++ {
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		out = append(out, recs[i].n)
	}
	return out, nil
}

func (r *MemoryNotificationRepo) Count(ctx context.Context, userID string, filter models.NotificationFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, rec := range r.records {
		if matches(&rec.n, userID, filter) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	unread := false
	return r.Count(ctx, userID, models.NotificationFilter{Read: &unread})
}

func (r *MemoryNotificationRepo) MarkRead(ctx context.Context, id string, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.n.Read || expired(&rec.n) {
		return false, nil
	}
	setRead(&rec.n, at)
	return true, nil
}

func (r *MemoryNotificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, rec := range r.records {
		if rec.n.UserID == userID && !rec.n.Read && !expired(&rec.n) {
			setRead(&rec.n, at)
			n++
		}
	}
	return n, nil
}

func setRead(n *models.Notification, at time.Time) {
	readAt := at
	n.Read = true
	n.ReadAt = &readAt
	n.UpdatedAt = at
}

func (r *MemoryNotificationRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[id]; ok && !rec.n.Sent && !expired(&rec.n) {
		sentAt := at
		rec.n.Sent = true
		rec.n.SentAt = &sentAt
	}
	return nil
}

func (r *MemoryNotificationRepo) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return false, nil
	}
	delete(r.records, id)
	if expired(&rec.n) {
		return false, nil
	}
	return true, nil
}

func (r *MemoryNotificationRepo) DeleteMany(ctx context.Context, userID string, filter models.NotificationFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, rec := range r.records {
		if matches(&rec.n, userID, filter) {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryNotificationRepo) DeleteByRelated(ctx context.Context, ref models.RelatedRef) ([]string, int64, error) {
	if ref.Kind.Field() == "" {
		return nil, 0, fmt.Errorf("unknown related kind %q", ref.Kind)
	}
	if ref.ID == "" {
		return nil, 0, fmt.Errorf("related %s id is required", ref.Kind)
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]bool{}
	var userIDs []string
	var n int64
	for id, rec := range r.records {
		if relatedID(&rec.n, ref.Kind) != ref.ID {
			continue
		}
		if !seen[rec.n.UserID] {
			seen[rec.n.UserID] = true
			userIDs = append(userIDs, rec.n.UserID)
		}
		delete(r.records, id)
		n++
	}
	sort.Strings(userIDs)
	return userIDs, n, nil
}

func relatedID(n *models.Notification, kind models.RelatedKind) string {
	switch kind {
	case models.RelatedTask:
		return n.RelatedTaskID
	case models.RelatedApplication:
		return n.RelatedApplicationID
	case models.RelatedPayment:
		return n.RelatedPaymentID
	}
	return ""
}
