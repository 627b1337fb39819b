package dto

import (
	"time"

	"github.com/noah-isme/gema-progression/internal/models"
)

// ShopCatalogRequest filters the shop listing.
type ShopCatalogRequest struct {
	Category        string `query:"category" validate:"omitempty,oneof=hat glasses accessory background special"`
	Rarity          string `query:"rarity" validate:"omitempty,max=16"`
	IncludeInactive bool   `query:"include_inactive"`
}

// ShopItemResponse describes a catalog item.
type ShopItemResponse struct {
	ID           uint   `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category"`
	Price        int64  `json:"price"`
	RequiredBelt string `json:"required_belt"`
	Rarity       string `json:"rarity"`
	Stock        *int   `json:"stock"`
	IsActive     bool   `json:"is_active"`
}

// NewShopItemResponse converts a shop item to DTO.
func NewShopItemResponse(model models.ShopItem) ShopItemResponse {
	return ShopItemResponse{
		ID:           model.ID,
		Code:         model.Code,
		Name:         model.Name,
		Description:  model.Description,
		Category:     model.Category,
		Price:        model.Price,
		RequiredBelt: model.RequiredBelt,
		Rarity:       model.Rarity,
		Stock:        model.Stock,
		IsActive:     model.IsActive,
	}
}

// NewShopItemResponseSlice converts shop items to DTOs.
func NewShopItemResponseSlice(items []models.ShopItem) []ShopItemResponse {
	out := make([]ShopItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewShopItemResponse(item))
	}
	return out
}

// PurchaseResult reports a completed purchase.
type PurchaseResult struct {
	PurchaseID      string           `json:"purchase_id"`
	Item            ShopItemResponse `json:"item"`
	PricePaid       int64            `json:"price_paid"`
	RemainingPoints int64            `json:"remaining_points"`
	CurrentBelt     string           `json:"current_belt"`
}

// OwnedItemResponse is an item owned by a student.
type OwnedItemResponse struct {
	PurchaseID  string           `json:"purchase_id"`
	Item        ShopItemResponse `json:"item"`
	PricePaid   int64            `json:"price_paid"`
	PurchasedAt time.Time        `json:"purchased_at"`
}

// NewOwnedItemResponseSlice converts purchases to DTOs.
func NewOwnedItemResponseSlice(purchases []models.StudentPurchase) []OwnedItemResponse {
	out := make([]OwnedItemResponse, 0, len(purchases))
	for _, purchase := range purchases {
		out = append(out, OwnedItemResponse{
			PurchaseID:  purchase.PurchaseID,
			Item:        NewShopItemResponse(purchase.Item),
			PricePaid:   purchase.PricePaid,
			PurchasedAt: purchase.PurchasedAt,
		})
	}
	return out
}

// EquippedItemResponse is the item worn in one slot.
type EquippedItemResponse struct {
	Slot       string           `json:"slot"`
	Item       ShopItemResponse `json:"item"`
	EquippedAt time.Time        `json:"equipped_at"`
}

// NewEquippedItemResponseSlice converts equipment rows to DTOs.
func NewEquippedItemResponseSlice(equipment []models.StudentEquipment) []EquippedItemResponse {
	out := make([]EquippedItemResponse, 0, len(equipment))
	for _, row := range equipment {
		out = append(out, EquippedItemResponse{
			Slot:       row.Slot,
			Item:       NewShopItemResponse(row.Item),
			EquippedAt: row.EquippedAt,
		})
	}
	return out
}
