package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progression/internal/config"
	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/models"
	"github.com/noah-isme/gema-progression/internal/repository"
)

type progressionFixture struct {
	db       *gorm.DB
	store    repository.Store
	notifier NotificationService
	rankings RankingInvalidator
	validate *validator.Validate
	policy   config.Policy
}

func newProgressionFixture(t *testing.T) progressionFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	policy, err := config.LoadPolicy("")
	require.NoError(t, err)

	store := repository.NewStore(db)
	return progressionFixture{
		db:       db,
		store:    store,
		notifier: NewNotificationService(store, nil, "", nil, zerolog.Nop()),
		validate: validator.New(),
		policy:   policy,
	}
}

func (f progressionFixture) seedCatalog(t *testing.T) {
	t.Helper()
	_, err := NewCatalogService(f.store, zerolog.Nop()).Seed(context.Background(), f.policy)
	require.NoError(t, err)
}

func (f progressionFixture) progressionService() ProgressionService {
	return NewProgressionService(f.store, f.notifier, f.rankings, f.validate, time.UTC, zerolog.Nop())
}

func (f progressionFixture) award(t *testing.T, studentID uint, points int64) dto.AwardResult {
	t.Helper()
	result, err := f.progressionService().AwardPoints(context.Background(), dto.AwardPointsRequest{
		StudentID:    studentID,
		Points:       points,
		Reason:       "exercise completed",
		ActivityType: models.ActivityExercise,
	})
	require.NoError(t, err)
	return result
}

func (f progressionFixture) countNotifications(t *testing.T, studentID uint, notificationType string) int64 {
	t.Helper()
	count, err := f.store.Notifications().CountByStudent(context.Background(), studentID, notificationType)
	require.NoError(t, err)
	return count
}
