package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestlist-backend/models"
	"guestlist-backend/notifier"
	"guestlist-backend/store"
)

// memStore is an in-memory EntryStore for exercising the service without a
// database.
type memStore struct {
	entries map[string]models.Entry
}

func newMemStore(entries ...models.Entry) *memStore {
	m := &memStore{entries: make(map[string]models.Entry)}
	for _, e := range entries {
		m.entries[e.ID] = e
	}
	return m
}

func (m *memStore) Find(_ context.Context, id string) (models.Entry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return models.Entry{}, store.ErrNotFound
	}
	return entry, nil
}

func (m *memStore) ReplaceAll(_ context.Context, entries []models.Entry) (int64, error) {
	m.entries = make(map[string]models.Entry)
	for _, e := range entries {
		m.entries[e.ID] = e
	}
	return int64(len(entries)), nil
}

func (m *memStore) ExportAll(_ context.Context) ([]models.Entry, error) {
	var entries []models.Entry
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (m *memStore) SetCheckedIn(_ context.Context, id string, at time.Time) (models.Entry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return models.Entry{}, store.ErrNotFound
	}
	entry.CheckedIn = true
	entry.CheckedInAt = &at
	m.entries[id] = entry
	return entry, nil
}

func (m *memStore) Reset(_ context.Context, id string) (int64, error) {
	entry, ok := m.entries[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	entry.CheckedIn = false
	entry.CheckedInAt = nil
	m.entries[id] = entry
	return 1, nil
}

func (m *memStore) ResetAll(_ context.Context) (int64, error) {
	for id, entry := range m.entries {
		entry.CheckedIn = false
		entry.CheckedInAt = nil
		m.entries[id] = entry
	}
	return int64(len(m.entries)), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCheckin(s EntryStore) (*Checkin, *notifier.Notifier) {
	n := notifier.New(discardLogger())
	return NewCheckin(s, n, discardLogger()), n
}

func TestCheckInRecordsTimestampAndPublishes(t *testing.T) {
	s := newMemStore(models.Entry{ID: "1", Name: "Alice"})
	svc, n := newTestCheckin(s)
	sub := n.Subscribe()
	defer n.Unsubscribe(sub)

	before := time.Now().UTC()
	at, err := svc.CheckIn(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, time.UTC, at.Location())
	assert.False(t, at.Before(before.Truncate(time.Microsecond)))

	entry, err := s.Find(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, entry.CheckedIn)
	require.NotNil(t, entry.CheckedInAt)
	assert.Equal(t, at, *entry.CheckedInAt)

	got := <-sub.C
	assert.Equal(t, "1", got.ID)
	assert.True(t, got.CheckedIn)
}

func TestCheckInUnknownIDFailsWithoutPublishing(t *testing.T) {
	s := newMemStore(models.Entry{ID: "1", Name: "Alice"})
	svc, n := newTestCheckin(s)
	sub := n.Subscribe()
	defer n.Unsubscribe(sub)

	_, err := svc.CheckIn(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	select {
	case got := <-sub.C:
		t.Fatalf("unexpected publish: %+v", got)
	default:
	}
}

func TestRepeatCheckInOverwritesTimestamp(t *testing.T) {
	s := newMemStore(models.Entry{ID: "1", Name: "Alice"})
	svc, _ := newTestCheckin(s)

	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	first, err := svc.CheckIn(context.Background(), "1")
	require.NoError(t, err)
	second, err := svc.CheckIn(context.Background(), "1")
	require.NoError(t, err)

	assert.True(t, second.After(first))

	entry, err := s.Find(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, entry.CheckedIn)
	assert.Equal(t, second, *entry.CheckedInAt)
}

func TestResetSingleEntry(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := newMemStore(models.Entry{ID: "1", Name: "Alice", CheckedIn: true, CheckedInAt: &at})
	svc, _ := newTestCheckin(s)

	rows, err := svc.Reset(context.Background(), "1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	entry, err := s.Find(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, entry.CheckedIn)
	assert.Nil(t, entry.CheckedInAt)
}

func TestResetUnknownID(t *testing.T) {
	svc, _ := newTestCheckin(newMemStore())

	_, err := svc.Reset(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestResetAll(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := newMemStore(
		models.Entry{ID: "1", Name: "Alice", CheckedIn: true, CheckedInAt: &at},
		models.Entry{ID: "2", Name: "Bob", CheckedIn: true, CheckedInAt: &at},
		models.Entry{ID: "3", Name: "Carol"},
	)
	svc, _ := newTestCheckin(s)

	rows, err := svc.Reset(context.Background(), ResetAllTarget)
	require.NoError(t, err)
	assert.EqualValues(t, 3, rows)

	entries, err := s.ExportAll(context.Background())
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, entry.CheckedIn)
		assert.Nil(t, entry.CheckedInAt)
	}
}
