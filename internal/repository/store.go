package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrStaleWrite is returned when a guarded update matched no row because the
// row changed after it was read.
var ErrStaleWrite = errors.New("row modified concurrently")

// Store groups the progression repositories behind one database handle so a
// service can run several of them inside a single transaction.
type Store interface {
	Students() StudentRepository
	Progression() ProgressionRepository
	Badges() BadgeRepository
	Specializations() SpecializationRepository
	Shop() ShopRepository
	Rankings() RankingRepository
	Notifications() NotificationRepository
	Catalog() CatalogRepository

	// Transaction runs fn inside a database transaction. Calling Transaction on
	// a Store that is already transactional opens a savepoint.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type store struct {
	db *gorm.DB
}

// NewStore constructs a Store backed by GORM.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Students() StudentRepository {
	return NewStudentRepository(s.db)
}

func (s *store) Progression() ProgressionRepository {
	return NewProgressionRepository(s.db)
}

func (s *store) Badges() BadgeRepository {
	return NewBadgeRepository(s.db)
}

func (s *store) Specializations() SpecializationRepository {
	return NewSpecializationRepository(s.db)
}

func (s *store) Shop() ShopRepository {
	return NewShopRepository(s.db)
}

func (s *store) Rankings() RankingRepository {
	return NewRankingRepository(s.db)
}

func (s *store) Notifications() NotificationRepository {
	return NewNotificationRepository(s.db)
}

func (s *store) Catalog() CatalogRepository {
	return NewCatalogRepository(s.db)
}

func (s *store) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}

// IsDuplicate reports whether err is a unique constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
