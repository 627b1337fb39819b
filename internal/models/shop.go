package models

import "time"

// Equipment slots. A shop item's category is the slot it occupies.
const (
	SlotHat        = "hat"
	SlotGlasses    = "glasses"
	SlotAccessory  = "accessory"
	SlotBackground = "background"
	SlotSpecial    = "special"
)

// Slots lists every equipment slot.
var Slots = []string{SlotHat, SlotGlasses, SlotAccessory, SlotBackground, SlotSpecial}

// IsSlot reports whether value names an equipment slot.
func IsSlot(value string) bool {
	for _, slot := range Slots {
		if slot == value {
			return true
		}
	}
	return false
}

// ShopItem is a purchasable cosmetic.
type ShopItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Code         string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Category     string    `gorm:"size:32;not null;index" json:"category"`
	Price        int64     `gorm:"not null" json:"price"`
	RequiredBelt string    `gorm:"size:16;not null" json:"required_belt"`
	Rarity       string    `gorm:"size:16;not null" json:"rarity"`
	Stock        *int      `json:"stock"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasStock reports whether the item can still be sold. Nil stock is unlimited.
func (i ShopItem) HasStock() bool {
	return i.Stock == nil || *i.Stock > 0
}

// StudentPurchase is an ownership record.
type StudentPurchase struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PurchaseID  string    `gorm:"size:36;uniqueIndex;not null" json:"purchase_id"`
	StudentID   uint      `gorm:"not null;uniqueIndex:idx_student_item,priority:1" json:"student_id"`
	ItemID      uint      `gorm:"not null;uniqueIndex:idx_student_item,priority:2" json:"item_id"`
	PricePaid   int64     `gorm:"not null" json:"price_paid"`
	PurchasedAt time.Time `gorm:"not null" json:"purchased_at"`
	Item        ShopItem  `gorm:"foreignKey:ItemID" json:"item"`
}

// StudentEquipment holds the item equipped in one slot.
type StudentEquipment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StudentID  uint      `gorm:"not null;uniqueIndex:idx_student_slot,priority:1" json:"student_id"`
	Slot       string    `gorm:"size:32;not null;uniqueIndex:idx_student_slot,priority:2" json:"slot"`
	ItemID     uint      `gorm:"not null" json:"item_id"`
	EquippedAt time.Time `gorm:"not null" json:"equipped_at"`
	Item       ShopItem  `gorm:"foreignKey:ItemID" json:"item"`
}
