package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/gamification"
	"github.com/noah-isme/gema-progression/internal/models"
	"github.com/noah-isme/gema-progression/internal/observability"
	"github.com/noah-isme/gema-progression/internal/repository"
)

// ShopService runs the point-denominated cosmetics shop.
type ShopService interface {
	Purchase(ctx context.Context, studentID, itemID uint) (dto.PurchaseResult, error)
	Equip(ctx context.Context, studentID, itemID uint) (dto.EquippedItemResponse, error)
	// Unequip empties a slot. Emptying an empty slot is not an error.
	Unequip(ctx context.Context, studentID uint, slot string) (bool, error)
	ListCatalog(ctx context.Context, req dto.ShopCatalogRequest) ([]dto.ShopItemResponse, error)
	GetOwnedItems(ctx context.Context, studentID uint) ([]dto.OwnedItemResponse, error)
	GetEquippedItems(ctx context.Context, studentID uint) ([]dto.EquippedItemResponse, error)
}

type shopService struct {
	store     repository.Store
	rankings  RankingInvalidator
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewShopService constructs the shop service. Purchases debit points, so
// rankings is told after each one; it may be nil.
func NewShopService(store repository.Store, rankings RankingInvalidator, validate *validator.Validate, logger zerolog.Logger) ShopService {
	return &shopService{
		store:     store,
		rankings:  rankings,
		validator: validate,
		logger:    logger.With().Str("component", "shop_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-progression/internal/service/shop"),
	}
}

func (s *shopService) Purchase(ctx context.Context, studentID, itemID uint) (dto.PurchaseResult, error) {
	if studentID == 0 || itemID == 0 {
		return dto.PurchaseResult{}, invalidInput("shop.Purchase", "student id and item id are required")
	}

	attrs := []attribute.KeyValue{
		attribute.Int64("shop.student_id", int64(studentID)),
		attribute.Int64("shop.item_id", int64(itemID)),
	}
	spanCtx, span := s.tracer.Start(ctx, "shop.purchase", trace.WithAttributes(attrs...))
	defer span.End()

	var result dto.PurchaseResult
	err := runGuarded(spanCtx, s.store, "purchase", func(tx repository.Store) error {
		item, err := tx.Shop().GetItem(spanCtx, itemID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrShopItemNotFound
			}
			return fmt.Errorf("load shop item: %w", err)
		}
		if !item.IsActive {
			return ErrItemInactive
		}

		progression, err := tx.Progression().LockOrCreate(spanCtx, studentID)
		if err != nil {
			return fmt.Errorf("lock progression: %w", err)
		}

		required, err := gamification.ParseBelt(item.RequiredBelt)
		if err != nil {
			return fmt.Errorf("shop item %d: %w", item.ID, err)
		}
		if !storedBelt(progression).AtLeast(required) {
			return ErrBeltTooLow
		}
		if progression.TotalPoints < item.Price {
			return ErrInsufficientPoints
		}

		owned, err := tx.Shop().IsOwned(spanCtx, studentID, item.ID)
		if err != nil {
			return fmt.Errorf("check ownership: %w", err)
		}
		if owned {
			return ErrAlreadyOwned
		}
		if !item.HasStock() {
			return ErrOutOfStock
		}

		taken, err := tx.Shop().DecrementStock(spanCtx, item)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if !taken {
			return ErrOutOfStock
		}

		remaining := progression.TotalPoints - item.Price
		belt := gamification.BeltOf(remaining)
		progression.CurrentBelt = belt.String()
		progression.BeltLevel = belt.Level()
		if err := tx.Progression().Debit(spanCtx, &progression, item.Price); err != nil {
			return err
		}

		purchase := models.StudentPurchase{
			PurchaseID:  uuid.NewString(),
			StudentID:   studentID,
			ItemID:      item.ID,
			PricePaid:   item.Price,
			PurchasedAt: time.Now().UTC(),
		}
		if err := tx.Shop().CreatePurchase(spanCtx, &purchase); err != nil {
			if repository.IsDuplicate(err) {
				return ErrAlreadyOwned
			}
			return fmt.Errorf("create purchase: %w", err)
		}

		if item.Stock != nil {
			left := *item.Stock - 1
			item.Stock = &left
		}
		result = dto.PurchaseResult{
			PurchaseID:      purchase.PurchaseID,
			Item:            dto.NewShopItemResponse(item),
			PricePaid:       purchase.PricePaid,
			RemainingPoints: remaining,
			CurrentBelt:     belt.String(),
		}
		return nil
	})
	observability.Purchases().WithLabelValues(purchaseOutcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
		return dto.PurchaseResult{}, err
	}
	if s.rankings != nil {
		s.rankings.InvalidateRankings(spanCtx)
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("item_id", itemID).
		Str("purchase_id", result.PurchaseID).
		Int64("remaining_points", result.RemainingPoints).
		Msg("shop purchase completed")
	return result, nil
}

func (s *shopService) Equip(ctx context.Context, studentID, itemID uint) (dto.EquippedItemResponse, error) {
	if studentID == 0 || itemID == 0 {
		return dto.EquippedItemResponse{}, invalidInput("shop.Equip", "student id and item id are required")
	}

	var equipment models.StudentEquipment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		item, err := tx.Shop().GetItem(ctx, itemID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrShopItemNotFound
			}
			return fmt.Errorf("load shop item: %w", err)
		}

		owned, err := tx.Shop().IsOwned(ctx, studentID, item.ID)
		if err != nil {
			return fmt.Errorf("check ownership: %w", err)
		}
		if !owned {
			return ErrNotOwned
		}

		equipment = models.StudentEquipment{StudentID: studentID, Slot: item.Category, ItemID: item.ID, EquippedAt: time.Now().UTC()}
		if err := tx.Shop().UpsertEquipment(ctx, &equipment); err != nil {
			return fmt.Errorf("equip item: %w", err)
		}
		equipment.Item = item
		return nil
	})
	if err != nil {
		return dto.EquippedItemResponse{}, err
	}

	return dto.EquippedItemResponse{Slot: equipment.Slot, Item: dto.NewShopItemResponse(equipment.Item), EquippedAt: equipment.EquippedAt}, nil
}

func (s *shopService) Unequip(ctx context.Context, studentID uint, slot string) (bool, error) {
	slot = strings.ToLower(strings.TrimSpace(slot))
	if studentID == 0 || !models.IsSlot(slot) {
		return false, invalidInput("shop.Unequip", "unknown equipment slot")
	}

	removed, err := s.store.Shop().DeleteEquipment(ctx, studentID, slot)
	if err != nil {
		return false, fmt.Errorf("unequip slot: %w", err)
	}
	return removed, nil
}

func (s *shopService) ListCatalog(ctx context.Context, req dto.ShopCatalogRequest) ([]dto.ShopItemResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, &DomainError{Op: "shop.ListCatalog", Kind: ErrInvalidInput, Message: "invalid catalog filter", Err: err}
	}

	items, err := s.store.Shop().ListItems(ctx, repository.ShopItemFilter{
		Category:   req.Category,
		Rarity:     req.Rarity,
		ActiveOnly: !req.IncludeInactive,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewShopItemResponseSlice(items), nil
}

func (s *shopService) GetOwnedItems(ctx context.Context, studentID uint) ([]dto.OwnedItemResponse, error) {
	purchases, err := s.store.Shop().ListPurchases(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewOwnedItemResponseSlice(purchases), nil
}

func (s *shopService) GetEquippedItems(ctx context.Context, studentID uint) ([]dto.EquippedItemResponse, error) {
	equipment, err := s.store.Shop().ListEquipment(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewEquippedItemResponseSlice(equipment), nil
}

func purchaseOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrItemInactive):
		return "inactive"
	case errors.Is(err, ErrBeltTooLow):
		return "belt_too_low"
	case errors.Is(err, ErrInsufficientPoints):
		return "insufficient_points"
	case errors.Is(err, ErrAlreadyOwned):
		return "already_owned"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrShopItemNotFound):
		return "not_found"
	case errors.Is(err, ErrConcurrentModification):
		return "conflict"
	default:
		return "error"
	}
}
