package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progression/internal/models"
)

func TestRankingServiceCachesLeaderboard(t *testing.T) {
	fixture := newProgressionFixture(t)
	fixture.award(t, 1, 300)
	fixture.award(t, 2, 500)
	fixture.award(t, 3, 300)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := NewRankingService(fixture.store, redisClient, time.Minute, time.UTC, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.GetRanking(ctx, 0, 10)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Len(t, first.Entries, 3)
	require.Equal(t, uint(2), first.Entries[0].StudentID)
	require.Equal(t, uint(1), first.Entries[1].StudentID, "ties break on ascending student id")
	require.Equal(t, 3, first.Entries[2].Position)
	require.True(t, mr.Exists("ranking:0:0:10"))

	cached, err := svc.GetRanking(ctx, 0, 10)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Equal(t, first.Entries, cached.Entries)

	mr.FastForward(2 * time.Minute)
	fixture.award(t, 3, 1)
	fresh, err := svc.GetRanking(ctx, 0, 10)
	require.NoError(t, err)
	require.False(t, fresh.CacheHit)
	require.Equal(t, uint(3), fresh.Entries[1].StudentID)
}

func TestRankingCacheAgreesWithStatsAfterWrites(t *testing.T) {
	fixture := newProgressionFixture(t)
	fixture.seedCatalog(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := NewRankingService(fixture.store, redisClient, time.Minute, time.UTC, zerolog.Nop())
	fixture.rankings = svc
	ctx := context.Background()

	fixture.award(t, 1, 100)
	before, err := svc.GetRanking(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, before.Entries, 1)
	_, err = svc.GetTopPerformers(ctx, 0)
	require.NoError(t, err)

	fixture.award(t, 2, 500)

	ranking, err := svc.GetRanking(ctx, 0, 10)
	require.NoError(t, err)
	require.False(t, ranking.CacheHit)
	require.Len(t, ranking.Entries, 2)
	stats, err := svc.GetRankingStats(ctx, 0)
	require.NoError(t, err)
	top, err := svc.GetTopPerformers(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, stats.MaxPoints, ranking.Entries[0].TotalPoints)
	require.Equal(t, stats.MaxPoints, top[0].TotalPoints)
	require.Equal(t, uint(2), top[0].StudentID)

	shop := NewShopService(fixture.store, svc, fixture.validate, zerolog.Nop())
	classicCap := shopItem(t, fixture, "cap-classic")
	_, err = shop.Purchase(ctx, 2, classicCap.ID)
	require.NoError(t, err)

	afterPurchase, err := svc.GetRanking(ctx, 0, 10)
	require.NoError(t, err)
	require.False(t, afterPurchase.CacheHit)
	stats, err = svc.GetRankingStats(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, stats.MaxPoints, afterPurchase.Entries[0].TotalPoints)
	require.Equal(t, int64(500)-classicCap.Price, afterPurchase.Entries[0].TotalPoints)
}

func TestRankingServiceBypassesBrokenCache(t *testing.T) {
	fixture := newProgressionFixture(t)
	fixture.award(t, 1, 10)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	svc := NewRankingService(fixture.store, redisClient, time.Minute, time.UTC, zerolog.Nop())
	ranking, err := svc.GetRanking(context.Background(), 0, 5)
	require.NoError(t, err)
	require.Len(t, ranking.Entries, 1)
}

func TestRankingServiceTopPerformersAndStats(t *testing.T) {
	fixture := newProgressionFixture(t)
	for studentID, points := range map[uint]int64{1: 100, 2: 400, 3: 250, 4: 50} {
		fixture.award(t, studentID, points)
	}
	svc := NewRankingService(fixture.store, nil, 0, time.UTC, zerolog.Nop())
	ctx := context.Background()

	top, err := svc.GetTopPerformers(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	require.Equal(t, "🥇", top[0].Medal)
	require.Equal(t, "🥈", top[1].Medal)
	require.Equal(t, "🥉", top[2].Medal)
	require.Equal(t, uint(2), top[0].StudentID)

	stats, err := svc.GetRankingStats(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, int64(4), stats.TotalStudents)
	require.Equal(t, int64(400), stats.MaxPoints)
	require.Equal(t, int64(50), stats.MinPoints)
	require.InDelta(t, 200.0, stats.AvgPoints, 1e-9)

	empty, err := svc.GetRankingStats(ctx, 77)
	require.NoError(t, err)
	require.Zero(t, empty.TotalStudents)
	require.Zero(t, empty.AvgPoints)

	emptyTop, err := svc.GetTopPerformers(ctx, 77)
	require.NoError(t, err)
	require.Empty(t, emptyTop)

	position, err := svc.GetStudentPosition(ctx, 3, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), position.Position)
	require.Equal(t, int64(4), position.TotalStudents)
	require.NotNil(t, position.StudentData)

	missing, err := svc.GetStudentPosition(ctx, 42, 0)
	require.NoError(t, err)
	require.Zero(t, missing.Position)
	require.Nil(t, missing.StudentData)
}

func TestRankingServiceSubjectScope(t *testing.T) {
	fixture := newProgressionFixture(t)
	fixture.award(t, 1, 100)
	fixture.award(t, 2, 900)
	fixture.award(t, 3, 300)
	require.NoError(t, fixture.store.Students().Enroll(context.Background(), 5, 1))
	require.NoError(t, fixture.store.Students().Enroll(context.Background(), 5, 3))

	svc := NewRankingService(fixture.store, nil, 0, time.UTC, zerolog.Nop())
	ranking, err := svc.GetRanking(context.Background(), 5, 10)
	require.NoError(t, err)
	require.Len(t, ranking.Entries, 2)
	require.Equal(t, uint(3), ranking.Entries[0].StudentID)

	position, err := svc.GetStudentPosition(context.Background(), 2, 5)
	require.NoError(t, err)
	require.Zero(t, position.Position)
	require.Equal(t, int64(2), position.TotalStudents)
}

func TestRankingServiceRankHistory(t *testing.T) {
	fixture := newProgressionFixture(t)
	now := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)
	entries := []models.PointsHistoryEntry{
		{StudentID: 1, Points: 100, Reason: "old", ActivityType: models.ActivityQuiz, CreatedAt: now.AddDate(0, 0, -40)},
		{StudentID: 1, Points: 20, Reason: "a", ActivityType: models.ActivityQuiz, CreatedAt: now.AddDate(0, 0, -3)},
		{StudentID: 1, Points: 30, Reason: "b", ActivityType: models.ActivityQuiz, CreatedAt: now.AddDate(0, 0, -3).Add(time.Hour)},
		{StudentID: 1, Points: 5, Reason: "c", ActivityType: models.ActivityQuiz, CreatedAt: now.Add(-time.Hour)},
	}
	for i := range entries {
		require.NoError(t, fixture.store.Progression().AppendHistory(context.Background(), &entries[i]))
	}

	svc := NewRankingService(fixture.store, nil, 0, time.UTC, zerolog.Nop()).(*rankingService)
	svc.now = func() time.Time { return now }

	history, err := svc.GetRankHistory(context.Background(), 1, 0, 7)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, time.Date(2026, 6, 17, 0, 0, 0, 0, time.UTC), history[0].Date)
	require.Equal(t, int64(50), history[0].PointsEarned)
	require.Equal(t, int64(150), history[0].CumulativePoints)
	require.Equal(t, int64(155), history[1].CumulativePoints)

	outside, err := svc.GetRankHistory(context.Background(), 1, 9, 7)
	require.NoError(t, err)
	require.Empty(t, outside)
}
