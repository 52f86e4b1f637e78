package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ssukssuk/planterm/internal/model"
	"github.com/ssukssuk/planterm/internal/notify"
	"github.com/ssukssuk/planterm/internal/storage"
	"github.com/ssukssuk/planterm/tests/testutil"
)

// fakeFetcher serves a scripted sequence of notification batches.
type fakeFetcher struct {
	batches []*model.NotificationBatch
	calls   int
}

func (f *fakeFetcher) TodayNotifications(ctx context.Context) (*model.NotificationBatch, error) {
	f.calls++
	if len(f.batches) == 0 {
		return &model.NotificationBatch{Date: "2026-09-01"}, nil
	}
	if f.calls-1 < len(f.batches) {
		return f.batches[f.calls-1], nil
	}
	return f.batches[len(f.batches)-1], nil
}

func at(t *testing.T, clock string) model.APITime {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, "2026-09-01T"+clock+"Z")
	require.NoError(t, err)
	return model.APITime{Time: parsed}
}

func batchOf(date string, notifications ...model.Notification) *model.NotificationBatch {
	return &model.NotificationBatch{Date: date, Notifications: notifications}
}

func newReconciler(t *testing.T, batches ...*model.NotificationBatch) (*notify.Reconciler, *storage.SQLiteStorage) {
	t.Helper()
	store := testutil.NewTestStorage(t)
	r := notify.New(&fakeFetcher{batches: batches}, store, zap.NewNop())
	return r, store
}

func TestFreshBatchIsAllUnread(t *testing.T) {
	r, _ := newReconciler(t)

	r.Reconcile(batchOf("2026-09-01",
		model.Notification{NotificationID: 1, Message: "water is low", CreatedAt: at(t, "09:00:00")},
		model.Notification{NotificationID: 2, Message: "nutrient is low", CreatedAt: at(t, "10:00:00")},
	))

	assert.Equal(t, 2, r.UnreadCount())
	balloon := r.BalloonCandidate()
	require.NotNil(t, balloon)
	assert.Equal(t, 2, balloon.NotificationID)

	list := r.Notifications()
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].NotificationID, "list is sorted newest first")
}

func TestStaleWatermarkIsIgnoredButKept(t *testing.T) {
	r, store := newReconciler(t)

	// Seen through yesterday evening.
	yesterday := `{"date":"2026-08-31","lastSeenAt":"2026-08-31T22:00:00Z"}`
	require.NoError(t, store.Set(storage.KeyNotifSeenList, yesterday))
	require.NoError(t, store.Set(storage.KeyNotifSeenBalloon, yesterday))

	r.Reconcile(batchOf("2026-09-01",
		model.Notification{NotificationID: 3, Message: "good morning", CreatedAt: at(t, "07:00:00")},
	))

	assert.Equal(t, 1, r.UnreadCount(), "yesterday's watermark must not hide today's items")
	require.NotNil(t, r.BalloonCandidate())

	// The stale watermark survives until the next acknowledge overwrites it.
	raw, err := store.Get(storage.KeyNotifSeenList)
	require.NoError(t, err)
	assert.Equal(t, yesterday, raw)
}

func TestReconcileIsIdempotent(t *testing.T) {
	r, _ := newReconciler(t)

	batch := batchOf("2026-09-01",
		model.Notification{NotificationID: 1, Message: "a", CreatedAt: at(t, "09:00:00")},
		model.Notification{NotificationID: 2, Message: "b", CreatedAt: at(t, "10:00:00")},
	)

	r.Reconcile(batch)
	first := r.UnreadCount()
	firstBalloon := r.BalloonCandidate()

	r.Reconcile(batch)
	assert.Equal(t, first, r.UnreadCount())
	second := r.BalloonCandidate()
	require.NotNil(t, second)
	assert.Equal(t, firstBalloon.NotificationID, second.NotificationID)
}

func TestAcknowledgeListAdvancesBothWatermarks(t *testing.T) {
	r, store := newReconciler(t)

	batch := batchOf("2026-09-01",
		model.Notification{NotificationID: 1, Message: "a", CreatedAt: at(t, "09:00:00")},
		model.Notification{NotificationID: 2, Message: "b", CreatedAt: at(t, "10:00:00")},
	)
	r.Reconcile(batch)
	r.AcknowledgeList()

	assert.Equal(t, 0, r.UnreadCount())
	assert.Nil(t, r.BalloonCandidate(), "opening the list also dismisses the balloon")

	for _, key := range []string{storage.KeyNotifSeenList, storage.KeyNotifSeenBalloon} {
		raw, err := store.Get(key)
		require.NoError(t, err)
		var state struct {
			Date       string    `json:"date"`
			LastSeenAt time.Time `json:"lastSeenAt"`
		}
		require.NoError(t, json.Unmarshal([]byte(raw), &state))
		assert.Equal(t, "2026-09-01", state.Date)
		assert.True(t, state.LastSeenAt.Equal(at(t, "10:00:00").Time), "watermark %s should be the newest item", key)
	}

	// The same batch arriving again stays fully read.
	r.Reconcile(batch)
	assert.Equal(t, 0, r.UnreadCount())
	assert.Nil(t, r.BalloonCandidate())
}

func TestAcknowledgeListOnEmptyBatchWritesNothing(t *testing.T) {
	r, store := newReconciler(t)

	r.Reconcile(batchOf("2026-09-01"))
	assert.Equal(t, 0, r.UnreadCount())
	assert.Nil(t, r.BalloonCandidate())

	r.AcknowledgeList()
	_, err := store.Get(storage.KeyNotifSeenList)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBalloonDismissalFlow(t *testing.T) {
	first := batchOf("2026-09-01",
		model.Notification{NotificationID: 1, Message: "a", CreatedAt: at(t, "09:00:00")},
	)
	both := batchOf("2026-09-01",
		model.Notification{NotificationID: 1, Message: "a", CreatedAt: at(t, "09:00:00")},
		model.Notification{NotificationID: 2, Message: "b", CreatedAt: at(t, "10:00:00")},
	)

	// AcknowledgeBalloon triggers a refetch; script it to return the
	// two-item batch.
	r, _ := newReconciler(t, both)

	r.Reconcile(first)
	require.NotNil(t, r.BalloonCandidate())
	assert.Equal(t, 1, r.UnreadCount())

	r.AcknowledgeBalloon(context.Background())

	// The refetch found a newer notification: it is unread and becomes
	// the next balloon, while the dismissed one stays read.
	assert.Equal(t, 1, r.UnreadCount())
	balloon := r.BalloonCandidate()
	require.NotNil(t, balloon)
	assert.Equal(t, 2, balloon.NotificationID)
}

func TestBalloonDismissalMarksListSurfaceToo(t *testing.T) {
	batch := batchOf("2026-09-01",
		model.Notification{NotificationID: 1, Message: "a", CreatedAt: at(t, "09:00:00")},
	)
	r, _ := newReconciler(t, batch)

	r.Reconcile(batch)
	r.AcknowledgeBalloon(context.Background())

	assert.Equal(t, 0, r.UnreadCount(), "dismissing the balloon also reads the list")
	assert.Nil(t, r.BalloonCandidate())
}

func TestCorruptWatermarkReadsAsAbsent(t *testing.T) {
	r, store := newReconciler(t)
	require.NoError(t, store.Set(storage.KeyNotifSeenList, "{not json"))

	r.Reconcile(batchOf("2026-09-01",
		model.Notification{NotificationID: 1, Message: "a", CreatedAt: at(t, "09:00:00")},
	))

	assert.Equal(t, 1, r.UnreadCount())
}

func TestRefreshSwallowsFetchErrors(t *testing.T) {
	store := testutil.NewTestStorage(t)
	r := notify.New(failingFetcher{}, store, zap.NewNop())

	batch := batchOf("2026-09-01",
		model.Notification{NotificationID: 1, Message: "a", CreatedAt: at(t, "09:00:00")},
	)
	r.Reconcile(batch)

	r.Refresh(context.Background())

	// Previous state survives a failed poll.
	assert.Equal(t, 1, r.UnreadCount())
}

type failingFetcher struct{}

func (failingFetcher) TodayNotifications(ctx context.Context) (*model.NotificationBatch, error) {
	return nil, context.DeadlineExceeded
}
