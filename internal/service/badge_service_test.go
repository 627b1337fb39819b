package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/models"
)

func TestAwardBadgeIsIdempotent(t *testing.T) {
	fixture := newProgressionFixture(t)
	fixture.seedCatalog(t)
	svc := NewBadgeService(fixture.store, fixture.notifier, fixture.validate, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.AwardBadge(ctx, dto.AwardBadgeRequest{StudentID: 1, BadgeCode: "streak_7"})
	require.NoError(t, err)
	require.True(t, first.Success)
	require.Equal(t, "On Fire", first.Badge.Name)

	second, err := svc.AwardBadge(ctx, dto.AwardBadgeRequest{StudentID: 1, BadgeCode: "STREAK_7"})
	require.NoError(t, err)
	require.False(t, second.Success)
	require.Equal(t, "already awarded", second.Reason)

	badges, err := svc.ListStudentBadges(ctx, 1)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	require.Equal(t, int64(1), fixture.countNotifications(t, 1, models.NotificationBadgeUnlocked))
}

func TestAwardBadgeConcurrentCallsAwardOnce(t *testing.T) {
	fixture := newProgressionFixture(t)
	fixture.seedCatalog(t)
	svc := NewBadgeService(fixture.store, fixture.notifier, fixture.validate, zerolog.Nop())

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.AwardBadge(context.Background(), dto.AwardBadgeRequest{StudentID: 2, BadgeCode: "first_steps"})
			errs <- err
			results <- result.Success
		}()
	}
	wg.Wait()
	close(errs)
	close(results)

	for err := range errs {
		require.NoError(t, err)
	}
	success := 0
	for ok := range results {
		if ok {
			success++
		}
	}
	require.Equal(t, 1, success)
	require.Equal(t, int64(1), fixture.countNotifications(t, 2, models.NotificationBadgeUnlocked))
}

func TestAwardBadgeUnknownCode(t *testing.T) {
	fixture := newProgressionFixture(t)
	fixture.seedCatalog(t)
	svc := NewBadgeService(fixture.store, fixture.notifier, fixture.validate, zerolog.Nop())

	_, err := svc.AwardBadge(context.Background(), dto.AwardBadgeRequest{StudentID: 1, BadgeCode: "nope"})
	require.ErrorIs(t, err, ErrBadgeNotFound)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AwardBadge(context.Background(), dto.AwardBadgeRequest{StudentID: 0, BadgeCode: "first_steps"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAwardBadgeSurvivesNotificationFailure(t *testing.T) {
	fixture := newProgressionFixture(t)
	fixture.seedCatalog(t)
	require.NoError(t, fixture.db.Migrator().DropTable(&models.GamificationNotification{}))
	svc := NewBadgeService(fixture.store, fixture.notifier, fixture.validate, zerolog.Nop())

	result, err := svc.AwardBadge(context.Background(), dto.AwardBadgeRequest{StudentID: 3, BadgeCode: "black_belt"})
	require.NoError(t, err)
	require.True(t, result.Success)

	count, err := fixture.store.Badges().CountByStudent(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
