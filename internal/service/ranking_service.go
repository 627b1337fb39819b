package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/gamification"
	"github.com/noah-isme/gema-progression/internal/observability"
	"github.com/noah-isme/gema-progression/internal/repository"
)

const (
	defaultRankingLimit    = 10
	maxRankingLimit        = 100
	topPerformersLimit     = 3
	defaultHistoryWindow   = 30
	maxHistoryWindow       = 365
	rankingCacheKeyPrefix  = "ranking"
	rankingGenerationKey   = "ranking:generation"
	defaultRankingCacheTTL = 30 * time.Second
)

// RankingInvalidator drops cached leaderboards after a committed write that
// moves points or streaks.
type RankingInvalidator interface {
	InvalidateRankings(ctx context.Context)
}

// RankingService exposes leaderboards over the progression snapshot. Ties on
// points are broken by ascending student id.
type RankingService interface {
	GetRanking(ctx context.Context, scope uint, limit int) (dto.RankingResponse, error)
	GetTopPerformers(ctx context.Context, scope uint) ([]dto.RankingEntry, error)
	GetRankingStats(ctx context.Context, scope uint) (dto.RankingStats, error)
	GetStudentPosition(ctx context.Context, studentID, scope uint) (dto.StudentPosition, error)
	GetRankHistory(ctx context.Context, studentID, scope uint, windowDays int) ([]dto.RankHistoryPoint, error)
	// WarmGlobalRanking rebuilds the cached global leaderboard.
	WarmGlobalRanking(ctx context.Context) error
	RankingInvalidator
}

type rankingService struct {
	store    repository.Store
	cache    *redis.Client
	ttl      time.Duration
	location *time.Location
	logger   zerolog.Logger
	now      func() time.Time
}

// NewRankingService constructs the ranking service. The Redis cache is optional.
func NewRankingService(store repository.Store, cache *redis.Client, ttl time.Duration, location *time.Location, logger zerolog.Logger) RankingService {
	if ttl <= 0 {
		ttl = defaultRankingCacheTTL
	}
	if location == nil {
		location = time.UTC
	}
	return &rankingService{
		store:    store,
		cache:    cache,
		ttl:      ttl,
		location: location,
		logger:   logger.With().Str("component", "ranking_service").Logger(),
		now:      time.Now,
	}
}

func (s *rankingService) GetRanking(ctx context.Context, scope uint, limit int) (dto.RankingResponse, error) {
	limit = clampRankingLimit(limit)

	// The generation is read before loading so a write that commits
	// mid-load leaves this entry under a retired key.
	generation, cached := s.generation(ctx)
	if cached {
		if entries, ok := s.fetchCache(ctx, generation, scope, limit); ok {
			observability.RankingCacheLookups().WithLabelValues("hit").Inc()
			return dto.RankingResponse{Scope: scope, Entries: entries, CacheHit: true}, nil
		}
	}
	observability.RankingCacheLookups().WithLabelValues("miss").Inc()

	entries, err := s.load(ctx, scope, limit)
	if err != nil {
		return dto.RankingResponse{}, err
	}
	if cached {
		s.writeCache(ctx, generation, scope, limit, entries)
	}

	return dto.RankingResponse{Scope: scope, Entries: entries}, nil
}

func (s *rankingService) GetTopPerformers(ctx context.Context, scope uint) ([]dto.RankingEntry, error) {
	ranking, err := s.GetRanking(ctx, scope, topPerformersLimit)
	if err != nil {
		return nil, err
	}

	entries := ranking.Entries
	if len(entries) > topPerformersLimit {
		entries = entries[:topPerformersLimit]
	}
	for i := range entries {
		entries[i].Medal = gamification.Medal(entries[i].Position)
	}
	return entries, nil
}

func (s *rankingService) GetRankingStats(ctx context.Context, scope uint) (dto.RankingStats, error) {
	aggregate, err := s.store.Rankings().Aggregate(ctx, scope)
	if err != nil {
		return dto.RankingStats{}, err
	}
	return dto.RankingStats{
		TotalStudents: aggregate.TotalStudents,
		AvgPoints:     aggregate.AvgPoints,
		MaxPoints:     aggregate.MaxPoints,
		MinPoints:     aggregate.MinPoints,
	}, nil
}

func (s *rankingService) GetStudentPosition(ctx context.Context, studentID, scope uint) (dto.StudentPosition, error) {
	if studentID == 0 {
		return dto.StudentPosition{}, invalidInput("ranking.Position", "student id is required")
	}

	aggregate, err := s.store.Rankings().Aggregate(ctx, scope)
	if err != nil {
		return dto.StudentPosition{}, err
	}
	position, row, err := s.store.Rankings().Position(ctx, studentID, scope)
	if err != nil {
		return dto.StudentPosition{}, err
	}

	result := dto.StudentPosition{Position: position, TotalStudents: aggregate.TotalStudents}
	if row != nil {
		entry := toRankingEntry(*row, int(position))
		result.StudentData = &entry
	}
	return result, nil
}

// GetRankHistory returns one point per day with activity inside the window.
// Cumulative totals include everything earned before the window opened.
func (s *rankingService) GetRankHistory(ctx context.Context, studentID, scope uint, windowDays int) ([]dto.RankHistoryPoint, error) {
	if studentID == 0 {
		return nil, invalidInput("ranking.History", "student id is required")
	}
	if windowDays <= 0 {
		windowDays = defaultHistoryWindow
	}
	if windowDays > maxHistoryWindow {
		windowDays = maxHistoryWindow
	}

	inScope, err := s.store.Rankings().InScope(ctx, studentID, scope)
	if err != nil {
		return nil, err
	}
	if !inScope {
		return []dto.RankHistoryPoint{}, nil
	}

	today := s.now().In(s.location)
	y, m, d := today.AddDate(0, 0, -(windowDays - 1)).Date()
	since := time.Date(y, m, d, 0, 0, 0, 0, s.location)

	cumulative, err := s.store.Rankings().PointsBefore(ctx, studentID, since)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.Rankings().EntriesSince(ctx, studentID, since)
	if err != nil {
		return nil, err
	}

	points := make([]dto.RankHistoryPoint, 0)
	for _, entry := range entries {
		day := gamification.CalendarDay(entry.CreatedAt, s.location)
		cumulative += entry.Points
		if n := len(points); n > 0 && points[n-1].Date.Equal(day) {
			points[n-1].PointsEarned += entry.Points
			points[n-1].CumulativePoints = cumulative
			continue
		}
		points = append(points, dto.RankHistoryPoint{Date: day, PointsEarned: entry.Points, CumulativePoints: cumulative})
	}
	return points, nil
}

func (s *rankingService) WarmGlobalRanking(ctx context.Context) error {
	start := time.Now()
	generation, cached := s.generation(ctx)
	entries, err := s.load(ctx, 0, defaultRankingLimit)
	if err != nil {
		return err
	}
	if cached {
		s.writeCache(ctx, generation, 0, defaultRankingLimit, entries)
	}
	observability.RankingRefreshDuration().Set(time.Since(start).Seconds())
	return nil
}

func (s *rankingService) load(ctx context.Context, scope uint, limit int) ([]dto.RankingEntry, error) {
	rows, err := s.store.Rankings().List(ctx, scope, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.RankingEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, toRankingEntry(row, i+1))
	}
	return entries, nil
}

// InvalidateRankings retires every cached leaderboard by bumping the cache
// generation. Retired entries age out on their TTL.
func (s *rankingService) InvalidateRankings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, rankingGenerationKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate ranking cache")
	}
}

func (s *rankingService) generation(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	generation, err := s.cache.Get(ctx, rankingGenerationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, true
		}
		s.logger.Warn().Err(err).Msg("failed to read ranking cache generation")
		return 0, false
	}
	return generation, true
}

func (s *rankingService) fetchCache(ctx context.Context, generation int64, scope uint, limit int) ([]dto.RankingEntry, bool) {
	payload, err := s.cache.Get(ctx, rankingCacheKey(generation, scope, limit)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read ranking cache")
		}
		return nil, false
	}

	var entries []dto.RankingEntry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode ranking cache")
		return nil, false
	}
	return entries, true
}

func (s *rankingService) writeCache(ctx context.Context, generation int64, scope uint, limit int, entries []dto.RankingEntry) {
	payload, err := json.Marshal(entries)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode ranking cache")
		return
	}
	if err := s.cache.Set(ctx, rankingCacheKey(generation, scope, limit), payload, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store ranking cache")
	}
}

func rankingCacheKey(generation int64, scope uint, limit int) string {
	return fmt.Sprintf("%s:%d:%d:%d", rankingCacheKeyPrefix, generation, scope, limit)
}

func clampRankingLimit(limit int) int {
	if limit <= 0 {
		return defaultRankingLimit
	}
	if limit > maxRankingLimit {
		return maxRankingLimit
	}
	return limit
}

func toRankingEntry(row repository.RankingRow, position int) dto.RankingEntry {
	return dto.RankingEntry{
		Position:    position,
		StudentID:   row.StudentID,
		Name:        row.Name,
		TotalPoints: row.TotalPoints,
		CurrentBelt: row.CurrentBelt,
		BeltLevel:   row.BeltLevel,
		StreakDays:  row.StreakDays,
	}
}
