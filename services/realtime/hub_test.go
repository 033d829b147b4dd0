package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"freelancehub/models"

	"go.uber.org/multierr"
)

// fakeSession buffers up to cap events in memory.
type fakeSession struct {
	id, userID string
	cap        int

	mu     sync.Mutex
	events []Event
	closed bool
}

func newFakeSession(id, userID string, cap int) *fakeSession {
	return &fakeSession{id: id, userID: userID, cap: cap}
}

func (f *fakeSession) ID() string     { return f.id }
func (f *fakeSession) UserID() string { return f.userID }

func (f *fakeSession) Send(e Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrSessionClosed
	}
	if len(f.events) >= f.cap {
		return ErrSessionBacklogged
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeSession) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSession) received() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Event(nil), f.events...)
}

func (f *fakeSession) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestHubDeliversToEverySessionOfUser(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	phone := newFakeSession("phone", "u1", 10)
	laptop := newFakeSession("laptop", "u1", 10)
	other := newFakeSession("other", "u2", 10)
	for _, s := range []Session{phone, laptop, other} {
		if err := h.Register(s); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	n := &models.Notification{ID: "n1", UserID: "u1"}
	delivered, err := h.PushNotification(context.Background(), "u1", n)
	if err != nil || delivered != 2 {
		t.Fatalf("PushNotification = %d, %v; want 2", delivered, err)
	}
	if _, err := h.PushUnreadCount(context.Background(), "u1", 4); err != nil {
		t.Fatalf("PushUnreadCount: %v", err)
	}

	for _, s := range []*fakeSession{phone, laptop} {
		got := s.received()
		if len(got) != 2 {
			t.Fatalf("%s received %d events, want 2", s.id, len(got))
		}
		if got[0].Name != EventNewNotification || got[1].Name != EventCountUpdate {
			t.Errorf("%s got events out of order: %+v", s.id, got)
		}
		if cu, ok := got[1].Data.(CountUpdate); !ok || cu.UnreadCount != 4 {
			t.Errorf("%s count payload = %+v", s.id, got[1].Data)
		}
	}
	if len(other.received()) != 0 {
		t.Error("events leaked to another user")
	}
}

func TestHubOfflineUserIsNotAnError(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	delivered, err := h.PushUnreadCount(context.Background(), "nobody", 1)
	if err != nil || delivered != 0 {
		t.Errorf("PushUnreadCount = %d, %v; want 0, nil", delivered, err)
	}
}

func TestHubDropsBackloggedSession(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	slow := newFakeSession("slow", "u1", 1)
	fast := newFakeSession("fast", "u1", 10)
	_ = h.Register(slow)
	_ = h.Register(fast)

	_, _ = h.PushUnreadCount(context.Background(), "u1", 1)
	delivered, err := h.PushUnreadCount(context.Background(), "u1", 2)
	if delivered != 1 {
		t.Errorf("delivered = %d, want 1", delivered)
	}
	if !errors.Is(err, ErrSessionBacklogged) {
		t.Errorf("err = %v, want ErrSessionBacklogged", err)
	}
	if !slow.isClosed() {
		t.Error("backlogged session should be closed")
	}
	if got := h.SessionCount("u1"); got != 1 {
		t.Errorf("SessionCount = %d, want 1", got)
	}
	if len(fast.received()) != 2 {
		t.Error("healthy session should receive every event")
	}
}

func TestHubDeregisterOnlyRemovesSameHandle(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	first := newFakeSession("s1", "u1", 10)
	replacement := newFakeSession("s1", "u1", 10)
	_ = h.Register(first)
	_ = h.Register(replacement)

	h.Deregister(first)
	if !h.Online("u1") {
		t.Fatal("stale handle removed the live session")
	}
	h.Deregister(replacement)
	h.Deregister(replacement)
	if h.Online("u1") {
		t.Error("user should be offline")
	}
}

func TestHubClose(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	s := newFakeSession("s1", "u1", 10)
	_ = h.Register(s)

	h.Close()
	h.Close()
	if !s.isClosed() {
		t.Error("Close should close sessions")
	}
	if err := h.Register(newFakeSession("s2", "u1", 10)); !errors.Is(err, ErrHubClosed) {
		t.Errorf("Register after Close = %v", err)
	}
	if _, err := h.PushUnreadCount(context.Background(), "u1", 1); !errors.Is(err, ErrHubClosed) {
		t.Errorf("push after Close = %v", err)
	}
}

func TestHubConcurrentRegisterAndPush(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s := newFakeSession(fmt.Sprintf("s%d", i), "u1", 100)
			_ = h.Register(s)
			h.Deregister(s)
		}(i)
		go func() {
			defer wg.Done()
			_, err := h.PushUnreadCount(context.Background(), "u1", 1)
			for _, e := range multierr.Errors(err) {
				if !errors.Is(e, ErrSessionClosed) {
					t.Errorf("unexpected push error: %v", e)
				}
			}
		}()
	}
	wg.Wait()
	if h.Online("u1") {
		t.Error("all sessions should be gone")
	}
}

func TestHubPushNotificationEnqueuesCopy(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	s := newFakeSession("s1", "u1", 4)
	if err := h.Register(s); err != nil {
		t.Fatalf("Register: %v", err)
	}

	n := &models.Notification{ID: "n1", UserID: "u1"}
	if _, err := h.PushNotification(context.Background(), "u1", n); err != nil {
		t.Fatalf("PushNotification: %v", err)
	}
	n.Sent = true

	got, ok := s.received()[0].Data.(*models.Notification)
	if !ok {
		t.Fatalf("payload type = %T", s.received()[0].Data)
	}
	if got == n || got.Sent {
		t.Error("queued notification shares state with the caller's")
	}
}
