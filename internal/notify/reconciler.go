package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ssukssuk/planterm/internal/model"
	"github.com/ssukssuk/planterm/internal/storage"
)

// Fetcher retrieves today's notification batch from the service.
type Fetcher interface {
	TodayNotifications(ctx context.Context) (*model.NotificationBatch, error)
}

// seenState is a persisted watermark: everything created at or before
// LastSeenAt on the given calendar day has been seen on that surface.
// A watermark whose Date no longer matches the server's reported day is
// stale and ignored; it is never deleted, so unread counts reset daily
// without an extra write.
type seenState struct {
	Date       string    `json:"date"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// Reconciler computes the unread badge count and the balloon (toast)
// candidate from server notification batches and two locally persisted
// watermarks: one for the bell list, one for the balloon. The two
// surfaces have independent watermarks but acknowledging either one
// advances both; that coupling is a product decision, not an accident.
type Reconciler struct {
	fetcher Fetcher
	store   storage.Storage
	logger  *zap.Logger

	mu      sync.Mutex
	batch   *model.NotificationBatch // notifications sorted newest first
	unread  int
	balloon *model.Notification
}

// New creates a Reconciler backed by the given fetcher and storage.
func New(fetcher Fetcher, store storage.Storage, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// Refresh fetches today's batch and reconciles it against the stored
// watermarks. A fetch failure is logged and leaves the previous
// in-memory state intact; the next poll retries.
func (r *Reconciler) Refresh(ctx context.Context) {
	batch, err := r.fetcher.TodayNotifications(ctx)
	if err != nil {
		r.logger.Warn("notification fetch failed", zap.Error(err))
		return
	}
	if batch == nil {
		return
	}
	r.Reconcile(batch)
}

// Reconcile recomputes the unread count and balloon candidate from a
// batch. Calling it twice with the same batch and no intervening
// acknowledge produces identical results.
func (r *Reconciler) Reconcile(batch *model.NotificationBatch) {
	list := make([]model.Notification, len(batch.Notifications))
	copy(list, batch.Notifications)
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	listSeen := r.readSeenAt(storage.KeyNotifSeenList, batch.Date)
	balloonSeen := r.readSeenAt(storage.KeyNotifSeenBalloon, batch.Date)

	unread := 0
	for _, n := range list {
		if listSeen == nil || n.CreatedAt.Time.After(*listSeen) {
			unread++
		}
	}

	// The balloon shows at most the single newest notification the user
	// has not dismissed yet. With the list sorted newest first, the
	// first entry past the watermark is that candidate.
	var balloon *model.Notification
	if len(list) > 0 {
		if balloonSeen == nil {
			balloon = &list[0]
		} else {
			for i := range list {
				if list[i].CreatedAt.Time.After(*balloonSeen) {
					balloon = &list[i]
					break
				}
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.batch = &model.NotificationBatch{Date: batch.Date, Notifications: list}
	r.unread = unread
	r.balloon = balloon
}

// UnreadCount returns the current bell badge count.
func (r *Reconciler) UnreadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unread
}

// BalloonCandidate returns a copy of the notification eligible for the
// balloon toast, or nil when there is none.
func (r *Reconciler) BalloonCandidate() *model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.balloon == nil {
		return nil
	}
	n := *r.balloon
	return &n
}

// Notifications returns today's notifications sorted newest first, for
// the bell list view.
func (r *Reconciler) Notifications() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.batch == nil {
		return nil
	}
	list := make([]model.Notification, len(r.batch.Notifications))
	copy(list, r.batch.Notifications)
	return list
}

// AcknowledgeList marks the full list as seen: the user opened the bell
// modal. Both watermarks advance to the newest notification, so viewing
// the list also dismisses a pending balloon. The in-memory state is
// cleared optimistically ahead of the next poll confirming it.
func (r *Reconciler) AcknowledgeList() {
	r.mu.Lock()
	if r.batch == nil || len(r.batch.Notifications) == 0 {
		r.mu.Unlock()
		return
	}
	date := r.batch.Date
	latest := r.batch.Notifications[0].CreatedAt.Time
	r.unread = 0
	r.balloon = nil
	r.mu.Unlock()

	r.writeSeenAt(storage.KeyNotifSeenList, date, latest)
	r.writeSeenAt(storage.KeyNotifSeenBalloon, date, latest)
}

// AcknowledgeBalloon marks the balloon's notification as seen on both
// surfaces, clears the in-memory state optimistically, and triggers an
// immediate refetch to resynchronize with the server.
func (r *Reconciler) AcknowledgeBalloon(ctx context.Context) {
	r.mu.Lock()
	if r.balloon == nil || r.batch == nil {
		r.mu.Unlock()
		return
	}
	date := r.batch.Date
	seenAt := r.balloon.CreatedAt.Time
	r.unread = 0
	r.balloon = nil
	r.mu.Unlock()

	r.writeSeenAt(storage.KeyNotifSeenBalloon, date, seenAt)
	r.writeSeenAt(storage.KeyNotifSeenList, date, seenAt)

	r.Refresh(ctx)
}

// readSeenAt loads a watermark and validates it against the server's
// reported day. Missing, malformed, and stale watermarks all read as
// absent.
func (r *Reconciler) readSeenAt(key, serverDate string) *time.Time {
	raw, err := r.store.Get(key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("reading seen state failed",
				zap.String("key", key), zap.Error(err))
		}
		return nil
	}

	var state seenState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		r.logger.Warn("discarding malformed seen state",
			zap.String("key", key), zap.Error(err))
		return nil
	}
	if state.Date == "" || state.LastSeenAt.IsZero() {
		return nil
	}
	if state.Date != serverDate {
		return nil
	}
	return &state.LastSeenAt
}

// writeSeenAt persists a watermark for the given day. Write failures are
// logged; the worst outcome is a re-shown notification.
func (r *Reconciler) writeSeenAt(key, serverDate string, lastSeenAt time.Time) {
	data, err := json.Marshal(seenState{Date: serverDate, LastSeenAt: lastSeenAt})
	if err != nil {
		r.logger.Warn("encoding seen state failed", zap.Error(err))
		return
	}
	if err := r.store.Set(key, string(data)); err != nil {
		r.logger.Warn("persisting seen state failed",
			zap.String("key", key), zap.Error(err))
	}
}
