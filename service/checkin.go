// Package service applies the check-in and reset state transitions.
package service

import (
	"context"
	"log/slog"
	"time"

	"guestlist-backend/models"
	"guestlist-backend/notifier"
)

// ResetAllTarget is the literal reset target that clears every entry.
const ResetAllTarget = "all"

// EntryStore is the persistence surface the service depends on.
type EntryStore interface {
	Find(ctx context.Context, id string) (models.Entry, error)
	ReplaceAll(ctx context.Context, entries []models.Entry) (int64, error)
	ExportAll(ctx context.Context) ([]models.Entry, error)
	SetCheckedIn(ctx context.Context, id string, at time.Time) (models.Entry, error)
	Reset(ctx context.Context, id string) (int64, error)
	ResetAll(ctx context.Context) (int64, error)
}

// Checkin marks guests as present and announces each successful check-in to
// the notifier.
type Checkin struct {
	store    EntryStore
	notifier *notifier.Notifier
	now      func() time.Time
	log      *slog.Logger
}

func NewCheckin(store EntryStore, n *notifier.Notifier, log *slog.Logger) *Checkin {
	return &Checkin{
		store:    store,
		notifier: n,
		now:      time.Now,
		log:      log,
	}
}

// Status returns the current entry for id.
func (s *Checkin) Status(ctx context.Context, id string) (models.Entry, error) {
	return s.store.Find(ctx, id)
}

// CheckIn marks id as checked in and returns the timestamp of record. The
// timestamp is server-side wall-clock UTC, truncated to the microsecond
// precision of the storage and CSV formats. Checking in an already-present
// guest overwrites the previous timestamp rather than failing.
func (s *Checkin) CheckIn(ctx context.Context, id string) (time.Time, error) {
	at := s.now().UTC().Truncate(time.Microsecond)
	entry, err := s.store.SetCheckedIn(ctx, id, at)
	if err != nil {
		return time.Time{}, err
	}
	s.log.Info("guest checked in", "id", entry.ID, "at", models.FormatTimestamp(at))
	s.notifier.Publish(entry)
	return at, nil
}

// Reset clears the check-in status of one entry, or of every entry when
// target is the literal "all". It returns the number of rows affected.
func (s *Checkin) Reset(ctx context.Context, target string) (int64, error) {
	if target == ResetAllTarget {
		rows, err := s.store.ResetAll(ctx)
		if err != nil {
			return 0, err
		}
		s.log.Info("reset all entries", "rows", rows)
		return rows, nil
	}

	rows, err := s.store.Reset(ctx, target)
	if err != nil {
		return 0, err
	}
	s.log.Info("reset entry", "id", target)
	return rows, nil
}
