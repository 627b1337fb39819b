package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the progression services matches one
// of these with errors.Is, so transports can map them without knowing each
// sentinel.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("not found")
	ErrRuleViolation          = errors.New("rule violation")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// DomainError carries the failed operation and a caller-facing message.
type DomainError struct {
	Op      string
	Kind    error
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches the error kind as well as the wrapped cause.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// NewDomainError creates a domain error of the given kind.
func NewDomainError(op string, kind error, message string) *DomainError {
	return &DomainError{Op: op, Kind: kind, Message: message}
}

func invalidInput(op, message string) error {
	return NewDomainError(op, ErrInvalidInput, message)
}

// Not found.
var (
	ErrStudentNotFound        = NewDomainError("progression.Find", ErrNotFound, "student progression not found")
	ErrBadgeNotFound          = NewDomainError("badge.Find", ErrNotFound, "badge not found")
	ErrSpecializationNotFound = NewDomainError("specialization.Find", ErrNotFound, "specialization not found")
	ErrSkillNotFound          = NewDomainError("skill.Find", ErrNotFound, "skill not found")
	ErrShopItemNotFound       = NewDomainError("shop.Find", ErrNotFound, "shop item not found")
	ErrNotificationNotFound   = NewDomainError("notification.Find", ErrNotFound, "notification not found")
)

// Business rule violations.
var (
	ErrBeltTooLow          = NewDomainError("shop.Purchase", ErrRuleViolation, "belt too low for this item")
	ErrInsufficientPoints  = NewDomainError("shop.Purchase", ErrRuleViolation, "insufficient points")
	ErrAlreadyOwned        = NewDomainError("shop.Purchase", ErrRuleViolation, "item already owned")
	ErrOutOfStock          = NewDomainError("shop.Purchase", ErrRuleViolation, "item out of stock")
	ErrItemInactive        = NewDomainError("shop.Purchase", ErrRuleViolation, "item is not available")
	ErrNotOwned            = NewDomainError("shop.Equip", ErrRuleViolation, "item not owned")
	ErrAlreadyChosen       = NewDomainError("specialization.Choose", ErrRuleViolation, "specialization already chosen")
	ErrNoSpecialization    = NewDomainError("specialization.Check", ErrRuleViolation, "no matching specialization chosen")
	ErrPrerequisiteMissing = NewDomainError("skill.Unlock", ErrRuleViolation, "prerequisite skill not unlocked")
	ErrSkillTierLocked     = NewDomainError("skill.Unlock", ErrRuleViolation, "specialization level too low for this tier")
)
