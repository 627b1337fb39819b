package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/models"
	"github.com/noah-isme/gema-progression/internal/repository"
)

// staleStore makes the first stale transactions lose the version race after
// their writes ran, so the real transaction rolls back.
type staleStore struct {
	repository.Store
	stale    int
	attempts int
	onStale  func()
}

func (s *staleStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	s.attempts++
	attempt := s.attempts
	return s.Store.Transaction(ctx, func(tx repository.Store) error {
		if err := fn(tx); err != nil {
			return err
		}
		if attempt <= s.stale {
			if s.onStale != nil {
				s.onStale()
			}
			return fmt.Errorf("save progression: %w", repository.ErrStaleWrite)
		}
		return nil
	})
}

func awardThrough(store repository.Store, fixture progressionFixture, points int64) (dto.AwardResult, error) {
	svc := NewProgressionService(store, fixture.notifier, nil, fixture.validate, time.UTC, zerolog.Nop())
	return svc.AwardPoints(context.Background(), dto.AwardPointsRequest{
		StudentID:    1,
		Points:       points,
		Reason:       "quiz passed",
		ActivityType: models.ActivityQuiz,
	})
}

func historyRows(t *testing.T, fixture progressionFixture) int64 {
	t.Helper()
	var count int64
	require.NoError(t, fixture.db.Model(&models.PointsHistoryEntry{}).Where("student_id = ?", 1).Count(&count).Error)
	return count
}

func TestRunGuardedRetriesStaleWrite(t *testing.T) {
	fixture := newProgressionFixture(t)
	store := &staleStore{Store: fixture.store, stale: 1}

	result, err := awardThrough(store, fixture, 100)
	require.NoError(t, err)
	require.Equal(t, 2, store.attempts)
	require.Equal(t, int64(100), result.TotalPoints)

	progression, err := fixture.store.Progression().GetByStudent(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(100), progression.TotalPoints, "the lost attempt must not be applied")
	require.Equal(t, int64(1), historyRows(t, fixture))
}

func TestRunGuardedGivesUpAfterMaxAttempts(t *testing.T) {
	fixture := newProgressionFixture(t)
	store := &staleStore{Store: fixture.store, stale: maxWriteAttempts}

	_, err := awardThrough(store, fixture, 100)
	require.ErrorIs(t, err, ErrConcurrentModification)
	require.ErrorIs(t, err, repository.ErrStaleWrite)
	require.Equal(t, maxWriteAttempts, store.attempts)

	_, err = fixture.store.Progression().GetByStudent(context.Background(), 1)
	require.True(t, repository.IsNotFound(err))
	require.Zero(t, historyRows(t, fixture))
}

func TestRunGuardedStopsWhenContextEnds(t *testing.T) {
	fixture := newProgressionFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &staleStore{Store: fixture.store, stale: maxWriteAttempts, onStale: cancel}

	err := runGuarded(ctx, store, "award_points", func(repository.Store) error {
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, store.attempts)
}
