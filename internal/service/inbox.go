package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
)

// Inbox is the read side of the notification engine: unread counts,
// listing, and read-flag mutation.  Mark-read writes are debounced
// through a small in-process cache so rapid repeated interactions do
// not hammer the store; the persisted read flag remains the source of
// truth and the cache is dropped whenever the inbox is reloaded.
type Inbox struct {
	store    NotificationStore
	debounce time.Duration

	mu      sync.Mutex
	pending map[uint64]map[uint64]struct{} // userID -> ids awaiting flush
	timers  map[uint64]*time.Timer         // userID -> debounce timer
}

// NewInbox constructs an Inbox.  debounce bounds how long a mark-read
// may sit in the local cache before being persisted; zero or negative
// disables batching and every MarkRead writes through immediately.
func NewInbox(store NotificationStore, debounce time.Duration) *Inbox {
	if store == nil {
		panic("nil notification store passed to NewInbox")
	}
	return &Inbox{
		store:    store,
		debounce: debounce,
		pending:  make(map[uint64]map[uint64]struct{}),
		timers:   make(map[uint64]*time.Timer),
	}
}

// UnreadCount returns the user's unread total in one aggregate query.
func (i *Inbox) UnreadCount(ctx context.Context, userID uint64) (int, error) {
	return i.store.CountUnread(ctx, userID)
}

// List returns the newest notifications for a user.  Reloading the
// list discards the local read cache for that user: anything pending
// is flushed first so the persisted state wins.
func (i *Inbox) List(ctx context.Context, userID uint64, limit int) ([]model.Notification, error) {
	i.Flush(ctx, userID)
	return i.store.ListByRecipient(ctx, userID, limit)
}

// MarkRead marks one notification read.  The operation is idempotent:
// marking an already-read id succeeds as a no-op.  With debouncing
// enabled the id is parked in the local cache and persisted in one
// batch when the debounce window closes; a second MarkRead for the
// same id inside the window costs nothing.
func (i *Inbox) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	if i.debounce <= 0 {
		return i.store.MarkRead(ctx, userID, notificationID)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	ids, ok := i.pending[userID]
	if !ok {
		ids = make(map[uint64]struct{})
		i.pending[userID] = ids
	}
	if _, dup := ids[notificationID]; dup {
		return nil // already queued, redundant write suppressed
	}
	ids[notificationID] = struct{}{}
	if t, ok := i.timers[userID]; ok {
		t.Reset(i.debounce)
	} else {
		i.timers[userID] = time.AfterFunc(i.debounce, func() { i.flushUser(userID) })
	}
	return nil
}

// MarkAllRead persists immediately and clears anything still parked in
// the cache, since the bulk write covers it.
func (i *Inbox) MarkAllRead(ctx context.Context, userID uint64) error {
	i.mu.Lock()
	delete(i.pending, userID)
	if t, ok := i.timers[userID]; ok {
		t.Stop()
		delete(i.timers, userID)
	}
	i.mu.Unlock()
	return i.store.MarkAllRead(ctx, userID)
}

// Flush forces any debounced mark-reads for the user to be persisted
// now.  Called on inbox reload and view teardown.
func (i *Inbox) Flush(ctx context.Context, userID uint64) {
	ids := i.takePending(userID)
	if len(ids) == 0 {
		return
	}
	if err := i.store.MarkManyRead(ctx, userID, ids); err != nil {
		log.Printf("inbox: flush %d read marks for user %d failed: %v", len(ids), userID, err)
	}
}

func (i *Inbox) flushUser(userID uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	i.Flush(ctx, userID)
}

func (i *Inbox) takePending(userID uint64) []uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	set, ok := i.pending[userID]
	if t, tok := i.timers[userID]; tok {
		t.Stop()
		delete(i.timers, userID)
	}
	if !ok {
		return nil
	}
	delete(i.pending, userID)
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// ScheduleSeen marks the given ids read after a dwell delay, so "new"
// badges stay visible long enough to register before disappearing.
// The returned cancel function aborts the batch if the view closes
// before the delay elapses; cancelling after the batch fired is a
// no-op.
func (i *Inbox) ScheduleSeen(userID uint64, ids []uint64, dwell time.Duration) (cancel func()) {
	if len(ids) == 0 {
		return func() {}
	}
	batch := make([]uint64, len(ids))
	copy(batch, ids)
	t := time.AfterFunc(dwell, func() {
		ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := i.store.MarkManyRead(ctx, userID, batch); err != nil {
			log.Printf("inbox: seen batch for user %d failed: %v", userID, err)
		}
	})
	return func() { t.Stop() }
}

// StartPoller refreshes the unread count on a fixed interval and hands
// each result to fn.  A failed tick is logged and retried on the next
// interval; a stalled store call cannot crash the poller.  The
// goroutine stops when ctx is cancelled.
func (i *Inbox) StartPoller(ctx context.Context, userID uint64, interval time.Duration, fn func(unread int)) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := i.store.CountUnread(ctx, userID)
				if err != nil {
					log.Printf("inbox: poll unread for user %d failed: %v", userID, err)
					continue
				}
				fn(n)
			}
		}
	}()
}
