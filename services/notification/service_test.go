package notification

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	notificationRepo "freelancehub/database/repository/notification"
	"freelancehub/models"

	"go.uber.org/multierr"
)

type pushed struct {
	userID string
	kind   string
	id     string
	count  int64
}

// recordingPusher captures every push in call order. online users accept events.
type recordingPusher struct {
	mu     sync.Mutex
	online map[string]bool
	events []pushed
	fail   error
}

func newRecordingPusher(online ...string) *recordingPusher {
	p := &recordingPusher{online: map[string]bool{}}
	for _, u := range online {
		p.online[u] = true
	}
	return p
}

func (p *recordingPusher) PushNotification(_ context.Context, userID string, n *models.Notification) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pushed{userID: userID, kind: "notification", id: n.ID})
	if p.fail != nil {
		return 0, p.fail
	}
	if p.online[userID] {
		return 1, nil
	}
	return 0, nil
}

func (p *recordingPusher) PushUnreadCount(_ context.Context, userID string, count int64) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pushed{userID: userID, kind: "count", count: count})
	if p.fail != nil {
		return 0, p.fail
	}
	if p.online[userID] {
		return 1, nil
	}
	return 0, nil
}

func (p *recordingPusher) snapshot() []pushed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pushed(nil), p.events...)
}

func (p *recordingPusher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

func (p *recordingPusher) lastCount(t *testing.T, userID string) int64 {
	t.Helper()
	events := p.snapshot()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].userID == userID && events[i].kind == "count" {
			return events[i].count
		}
	}
	t.Fatalf("no count pushed for %s", userID)
	return 0
}

// failingCreateRepo rejects Create for selected users.
type failingCreateRepo struct {
	notificationRepo.NotificationRepository
	failFor map[string]bool
}

func (r *failingCreateRepo) Create(ctx context.Context, n *models.Notification) error {
	if r.failFor[n.UserID] {
		return fmt.Errorf("store unavailable for %s", n.UserID)
	}
	return r.NotificationRepository.Create(ctx, n)
}

func newTestService(t *testing.T, repo notificationRepo.NotificationRepository, pusher Pusher) *DefaultNotificationService {
	t.Helper()
	svc, err := NewDefaultNotificationService(repo, pusher, nil)
	if err != nil {
		t.Fatalf("NewDefaultNotificationService: %v", err)
	}
	var mu sync.Mutex
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func input(title string) models.NotificationInput {
	return models.NotificationInput{Title: title, Message: title + " body"}
}

func TestNotifyDefaultsAndPushOrder(t *testing.T) {
	t.Parallel()

	repo := notificationRepo.NewMemoryNotificationRepo()
	pusher := newRecordingPusher("u1")
	svc := newTestService(t, repo, pusher)
	ctx := context.Background()

	n, err := svc.Notify(ctx, "u1", input("Application received"))
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if n.Category != models.CategoryInfo || n.Priority != models.PriorityMedium || n.Icon != models.DefaultNotificationIcon {
		t.Errorf("defaults not applied: %+v", n)
	}
	if n.Read || n.ReadAt != nil {
		t.Errorf("new notification should be unread: %+v", n)
	}
	if !n.Sent || n.SentAt == nil {
		t.Errorf("notification delivered to a live session should be marked sent")
	}

	stored, err := repo.GetByID(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !stored.Sent {
		t.Errorf("stored record not marked sent")
	}

	got := pusher.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 pushes, got %+v", got)
	}
	if got[0].kind != "notification" || got[0].id != n.ID {
		t.Errorf("first push should be the notification, got %+v", got[0])
	}
	if got[1].kind != "count" || got[1].count != 1 {
		t.Errorf("second push should be count 1, got %+v", got[1])
	}
}

func TestNotifyStoresTextAsGiven(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, notificationRepo.NewMemoryNotificationRepo(), newRecordingPusher())

	n, err := svc.Notify(context.Background(), "u1", models.NotificationInput{Title: "  Milestone ", Message: " paid\n"})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if n.Title != "  Milestone " || n.Message != " paid\n" {
		t.Errorf("stored %q / %q, want the input unchanged", n.Title, n.Message)
	}
}

func TestNotifyOfflineUserIsStoredNotSent(t *testing.T) {
	t.Parallel()

	repo := notificationRepo.NewMemoryNotificationRepo()
	svc := newTestService(t, repo, newRecordingPusher())

	n, err := svc.Notify(context.Background(), "offline", input("Payment released"))
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if n.Sent {
		t.Errorf("no live session, notification should not be marked sent")
	}
	count, _ := svc.CountUnread(context.Background(), "offline")
	if count != 1 {
		t.Errorf("unread = %d, want 1", count)
	}
}

func TestNotifySurvivesPushFailure(t *testing.T) {
	t.Parallel()

	repo := notificationRepo.NewMemoryNotificationRepo()
	pusher := newRecordingPusher("u1")
	pusher.fail = errors.New("socket gone")
	svc := newTestService(t, repo, pusher)

	n, err := svc.Notify(context.Background(), "u1", input("Task updated"))
	if err != nil {
		t.Fatalf("push failure must not fail Notify: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), n.ID); err != nil {
		t.Errorf("notification not persisted: %v", err)
	}
}

func TestNotifyValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, notificationRepo.NewMemoryNotificationRepo(), newRecordingPusher())
	past := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		userID string
		in     models.NotificationInput
		field  string
	}{
		{"missing user", "", input("x"), "userId"},
		{"blank title", "u1", models.NotificationInput{Title: "  ", Message: "m"}, "title"},
		{"long title", "u1", models.NotificationInput{Title: strings.Repeat("t", models.MaxNotificationTitleLen+1), Message: "m"}, "title"},
		{"missing message", "u1", models.NotificationInput{Title: "t"}, "message"},
		{"long message", "u1", models.NotificationInput{Title: "t", Message: strings.Repeat("m", models.MaxNotificationMessageLen+1)}, "message"},
		{"bad type", "u1", models.NotificationInput{Title: "t", Message: "m", Category: "urgent"}, "type"},
		{"bad priority", "u1", models.NotificationInput{Title: "t", Message: "m", Priority: "critical"}, "priority"},
		{"expired", "u1", models.NotificationInput{Title: "t", Message: "m", ExpiresAt: &past}, "expiresAt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Notify(context.Background(), tt.userID, tt.in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}

	// boundary lengths are accepted
	ok := models.NotificationInput{
		Title:   strings.Repeat("t", models.MaxNotificationTitleLen),
		Message: strings.Repeat("m", models.MaxNotificationMessageLen),
	}
	if _, err := svc.Notify(context.Background(), "u1", ok); err != nil {
		t.Errorf("max-length input rejected: %v", err)
	}
}

func TestNotifyManyPartialFailure(t *testing.T) {
	t.Parallel()

	base := notificationRepo.NewMemoryNotificationRepo()
	repo := &failingCreateRepo{NotificationRepository: base, failFor: map[string]bool{"b": true}}
	svc := newTestService(t, repo, newRecordingPusher())
	ctx := context.Background()

	created, err := svc.NotifyMany(ctx, []string{"a", "b", "c", "a"}, input("New task posted"))
	if err == nil {
		t.Fatal("expected an error for user b")
	}
	if errs := multierr.Errors(err); len(errs) != 1 || !strings.Contains(errs[0].Error(), `"b"`) {
		t.Errorf("unexpected aggregated error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d, want 2", len(created))
	}
	for _, u := range []string{"a", "c"} {
		if c, _ := base.CountUnread(ctx, u); c != 1 {
			t.Errorf("user %s unread = %d, want 1", u, c)
		}
	}
}

func TestListPagingAndClamp(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, notificationRepo.NewMemoryNotificationRepo(), newRecordingPusher())
	ctx := context.Background()
	var ids []string
	for i := 0; i < 25; i++ {
		n, err := svc.Notify(ctx, "u1", input(fmt.Sprintf("n%d", i)))
		if err != nil {
			t.Fatalf("Notify: %v", err)
		}
		ids = append(ids, n.ID)
	}

	page, err := svc.List(ctx, "u1", 2, 10, models.NotificationFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Pagination.Total != 25 || page.Pagination.Pages != 3 || page.UnreadCount != 25 {
		t.Errorf("unexpected pagination: %+v unread=%d", page.Pagination, page.UnreadCount)
	}
	if len(page.Notifications) != 10 || page.Notifications[0].ID != ids[14] {
		t.Errorf("page 2 should start with the 15th newest notification")
	}

	page, err = svc.List(ctx, "u1", 0, 1000, models.NotificationFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Pagination.Page != 1 || page.Pagination.Limit != MaxPageLimit {
		t.Errorf("paging not clamped: %+v", page.Pagination)
	}

	page, err = svc.List(ctx, "nobody", 1, 0, models.NotificationFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Notifications == nil || len(page.Notifications) != 0 || page.Pagination.Limit != DefaultPageLimit {
		t.Errorf("empty page malformed: %+v", page)
	}

	page, err = svc.List(ctx, "u1", math.MaxInt64/10, 100, models.NotificationFilter{})
	if err != nil {
		t.Fatalf("List with huge page: %v", err)
	}
	if len(page.Notifications) != 0 || page.Pagination.Total != 25 {
		t.Errorf("page past the end should be empty: %+v", page.Pagination)
	}

	bad := models.Category("nope")
	if _, err := svc.List(ctx, "u1", 1, 10, models.NotificationFilter{Category: &bad}); !IsValidation(err) {
		t.Errorf("expected validation error for bad filter, got %v", err)
	}
}

func TestMarkReadOwnershipAndIdempotency(t *testing.T) {
	t.Parallel()

	pusher := newRecordingPusher("u1")
	svc := newTestService(t, notificationRepo.NewMemoryNotificationRepo(), pusher)
	ctx := context.Background()

	n, _ := svc.Notify(ctx, "u1", input("hello"))
	_, _ = svc.Notify(ctx, "u1", input("world"))

	if _, err := svc.MarkRead(ctx, n.ID, "u2"); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign MarkRead: got %v, want ErrForbidden", err)
	}
	if _, err := svc.MarkRead(ctx, "missing", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing MarkRead: got %v, want ErrNotFound", err)
	}

	pusher.reset()
	got, err := svc.MarkRead(ctx, n.ID, "u1")
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !got.Read || got.ReadAt == nil {
		t.Errorf("record not read: %+v", got)
	}
	if c := pusher.lastCount(t, "u1"); c != 1 {
		t.Errorf("pushed count = %d, want 1", c)
	}

	pusher.reset()
	again, err := svc.MarkRead(ctx, n.ID, "u1")
	if err != nil {
		t.Fatalf("second MarkRead: %v", err)
	}
	if !again.ReadAt.Equal(*got.ReadAt) {
		t.Errorf("readAt changed on repeat: %v != %v", again.ReadAt, got.ReadAt)
	}
	if events := pusher.snapshot(); len(events) != 0 {
		t.Errorf("repeat MarkRead should not push, got %+v", events)
	}
}

func TestMarkAllReadAndDeletes(t *testing.T) {
	t.Parallel()

	pusher := newRecordingPusher("u1")
	svc := newTestService(t, notificationRepo.NewMemoryNotificationRepo(), pusher)
	ctx := context.Background()

	first, _ := svc.Notify(ctx, "u1", input("one"))
	_, _ = svc.Notify(ctx, "u1", input("two"))
	warn := models.NotificationInput{Title: "three", Message: "m", Category: models.CategoryWarning}
	_, _ = svc.Notify(ctx, "u1", warn)
	other, _ := svc.Notify(ctx, "u2", input("theirs"))

	if err := svc.Delete(ctx, other.ID, "u1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign Delete: got %v, want ErrForbidden", err)
	}

	if err := svc.Delete(ctx, first.ID, "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if c := pusher.lastCount(t, "u1"); c != 2 {
		t.Errorf("count after delete = %d, want 2", c)
	}
	if err := svc.Delete(ctx, first.ID, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: got %v, want ErrNotFound", err)
	}

	modified, err := svc.MarkAllRead(ctx, "u1")
	if err != nil || modified != 2 {
		t.Fatalf("MarkAllRead = %d, %v; want 2", modified, err)
	}
	if c := pusher.lastCount(t, "u1"); c != 0 {
		t.Errorf("count after mark all = %d, want 0", c)
	}

	// a second bulk call modifies nothing but still republishes
	pusher.reset()
	if modified, _ := svc.MarkAllRead(ctx, "u1"); modified != 0 {
		t.Errorf("repeat MarkAllRead modified %d", modified)
	}
	if c := pusher.lastCount(t, "u1"); c != 0 {
		t.Errorf("republished count = %d, want 0", c)
	}

	cat := models.CategoryWarning
	deleted, err := svc.DeleteAll(ctx, "u1", models.NotificationFilter{Category: &cat})
	if err != nil || deleted != 1 {
		t.Fatalf("DeleteAll(warning) = %d, %v; want 1", deleted, err)
	}
	deleted, err = svc.DeleteAll(ctx, "u1", models.NotificationFilter{})
	if err != nil || deleted != 1 {
		t.Fatalf("DeleteAll = %d, %v; want 1", deleted, err)
	}
	if c, _ := svc.CountUnread(ctx, "u2"); c != 1 {
		t.Errorf("other user's notifications affected: unread = %d", c)
	}
}

func TestDeleteRelatedRepublishesOwners(t *testing.T) {
	t.Parallel()

	pusher := newRecordingPusher()
	svc := newTestService(t, notificationRepo.NewMemoryNotificationRepo(), pusher)
	ctx := context.Background()

	in := models.NotificationInput{Title: "Task", Message: "m", RelatedTaskID: "task-9"}
	_, _ = svc.NotifyMany(ctx, []string{"a", "b"}, in)
	_, _ = svc.Notify(ctx, "a", input("unrelated"))

	pusher.reset()
	deleted, err := svc.DeleteRelated(ctx, models.RelatedRef{Kind: models.RelatedTask, ID: "task-9"})
	if err != nil || deleted != 2 {
		t.Fatalf("DeleteRelated = %d, %v; want 2", deleted, err)
	}
	if c := pusher.lastCount(t, "a"); c != 1 {
		t.Errorf("a count = %d, want 1", c)
	}
	if c := pusher.lastCount(t, "b"); c != 0 {
		t.Errorf("b count = %d, want 0", c)
	}

	if _, err := svc.DeleteRelated(ctx, models.RelatedRef{Kind: "invoice", ID: "x"}); !IsValidation(err) {
		t.Errorf("expected validation error for unknown kind, got %v", err)
	}
}

func TestConcurrentNotifyCountsConverge(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, notificationRepo.NewMemoryNotificationRepo(), newRecordingPusher("u1"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Notify(ctx, "u1", input(fmt.Sprintf("n%d", i))); err != nil {
				t.Errorf("Notify: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if c, _ := svc.CountUnread(ctx, "u1"); c != 50 {
		t.Errorf("unread = %d, want 50", c)
	}
}

func TestPushersFanOut(t *testing.T) {
	t.Parallel()

	live := newRecordingPusher("u1")
	broken := newRecordingPusher("u1")
	broken.fail = errors.New("fcm down")

	delivered, err := Pushers{live, broken}.PushUnreadCount(context.Background(), "u1", 3)
	if delivered != 1 {
		t.Errorf("delivered = %d, want 1", delivered)
	}
	if err == nil {
		t.Error("expected the broken pusher's error")
	}
	if len(live.snapshot()) != 1 || len(broken.snapshot()) != 1 {
		t.Error("every pusher should be called")
	}
}

func TestReadStateScenarios(t *testing.T) {
	t.Parallel()

	repo := notificationRepo.NewMemoryNotificationRepo()
	svc := newTestService(t, repo, newRecordingPusher())
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		n, err := svc.Notify(ctx, "A", input(title))
		if err != nil {
			t.Fatalf("Notify: %v", err)
		}
		ids = append(ids, n.ID)
	}

	// a foreign caller leaves the record untouched
	if _, err := svc.MarkRead(ctx, ids[0], "B"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign MarkRead: %v", err)
	}
	if err := svc.Delete(ctx, ids[0], "B"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign Delete: %v", err)
	}
	if n, err := repo.GetByID(ctx, ids[0]); err != nil || n.Read {
		t.Fatalf("record changed by foreign caller: %+v, %v", n, err)
	}

	if _, err := svc.MarkAllRead(ctx, "A"); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if c, _ := svc.CountUnread(ctx, "A"); c != 0 {
		t.Errorf("unread = %d, want 0", c)
	}
	for _, id := range ids {
		n, err := repo.GetByID(ctx, id)
		if err != nil || !n.Read || n.ReadAt == nil {
			t.Errorf("record %s not fully read: %+v, %v", id, n, err)
		}
	}

	// deleting a read notification leaves the count alone; an unread one decrements it
	fresh, _ := svc.Notify(ctx, "A", input("d"))
	if err := svc.Delete(ctx, ids[0], "A"); err != nil {
		t.Fatalf("Delete read: %v", err)
	}
	if c, _ := svc.CountUnread(ctx, "A"); c != 1 {
		t.Errorf("unread after deleting read = %d, want 1", c)
	}
	if err := svc.Delete(ctx, fresh.ID, "A"); err != nil {
		t.Fatalf("Delete unread: %v", err)
	}
	if c, _ := svc.CountUnread(ctx, "A"); c != 0 {
		t.Errorf("unread after deleting unread = %d, want 0", c)
	}
}

// retainingPusher keeps every notification it is handed, like a session queue.
type retainingPusher struct {
	*recordingPusher
	held []*models.Notification
}

func (p *retainingPusher) PushNotification(ctx context.Context, userID string, n *models.Notification) (int, error) {
	p.mu.Lock()
	p.held = append(p.held, n)
	p.mu.Unlock()
	return p.recordingPusher.PushNotification(ctx, userID, n)
}

func TestNotifyDoesNotMutatePushedNotification(t *testing.T) {
	t.Parallel()

	pusher := &retainingPusher{recordingPusher: newRecordingPusher("u1")}
	svc := newTestService(t, notificationRepo.NewMemoryNotificationRepo(), pusher)

	n, err := svc.Notify(context.Background(), "u1", input("Offer accepted"))
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if !n.Sent {
		t.Fatal("returned notification should be marked sent")
	}
	if len(pusher.held) != 1 {
		t.Fatalf("pushed %d notifications, want 1", len(pusher.held))
	}
	if held := pusher.held[0]; held == n || held.Sent || held.SentAt != nil {
		t.Errorf("pushed notification was updated after the push: %+v", held)
	}
}

func TestConcurrentCountPushesNeverRegress(t *testing.T) {
	t.Parallel()

	pusher := newRecordingPusher("u1")
	svc := newTestService(t, notificationRepo.NewMemoryNotificationRepo(), pusher)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Notify(ctx, "u1", input(fmt.Sprintf("n%d", i))); err != nil {
				t.Errorf("Notify: %v", err)
			}
		}(i)
		go func() {
			defer wg.Done()
			if _, err := svc.PublishUnreadCount(ctx, "u1"); err != nil {
				t.Errorf("PublishUnreadCount: %v", err)
			}
		}()
	}
	wg.Wait()

	var last int64
	for _, e := range pusher.snapshot() {
		if e.kind != "count" {
			continue
		}
		if e.count < last {
			t.Fatalf("count went from %d back to %d", last, e.count)
		}
		last = e.count
	}
	if last != 40 {
		t.Errorf("last pushed count = %d, want 40", last)
	}
}
