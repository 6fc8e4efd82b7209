package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Expense EntryKind = "expense"
	Income  EntryKind = "income"
)

type (
	// EntryKind discriminates the two ledger entry flavours. Both share one contract.
	EntryKind string

	LedgerEntry struct {
		ID          string          `json:"id"`
		Kind        EntryKind       `json:"kind"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		OccurredAt  time.Time       `json:"occurredAt"`
		CategoryID  string          `json:"categoryId"`
		UserID      string          `json:"userId"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	Category struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Color  string `json:"color,omitempty"`
		Icon   string `json:"icon,omitempty"`
		UserID string `json:"userId"`
	}

	// Budget is a spending cap over [StartDate, EndDate].
	// CurrentSpending is a snapshot taken at creation time (or on explicit refresh).
	// RolledOverAt is set once, when the successor is created, and survives
	// deletion of that successor.
	Budget struct {
		ID              string          `json:"id"`
		Amount          decimal.Decimal `json:"amount"`
		StartDate       time.Time       `json:"startDate"`
		EndDate         time.Time       `json:"endDate"`
		IsRecurring     bool            `json:"isRecurring"`
		IsActive        bool            `json:"isActive"`
		CurrentSpending decimal.Decimal `json:"currentSpending"`
		CategoryID      string          `json:"categoryId"`
		UserID          string          `json:"userId"`
		PredecessorID   string          `json:"predecessorId,omitempty"`
		RolledOverAt    *time.Time      `json:"rolledOverAt,omitempty"`
		CreatedAt       time.Time       `json:"createdAt"`
		UpdatedAt       time.Time       `json:"updatedAt"`
	}

	User struct {
		ID               string    `json:"id"`
		Username         string    `json:"username"`
		PasswordHash     string    `json:"-"`
		RefreshTokenHash string    `json:"-"`
		CreatedAt        time.Time `json:"createdAt"`
	}

	// Interval is a closed time range: both bounds are inclusive.
	Interval struct {
		From time.Time
		To   time.Time
	}

	// BudgetPatch names every field a caller may change on an existing budget.
	// Nil fields are left untouched.
	BudgetPatch struct {
		Amount      *decimal.Decimal `json:"amount,omitempty"`
		CategoryID  *string          `json:"categoryId,omitempty"`
		StartDate   *time.Time       `json:"startDate,omitempty"`
		EndDate     *time.Time       `json:"endDate,omitempty"`
		IsRecurring *bool            `json:"isRecurring,omitempty"`
		IsActive    *bool            `json:"isActive,omitempty"`
	}

	EntryPatch struct {
		Amount      *decimal.Decimal `json:"amount,omitempty"`
		Description *string          `json:"description,omitempty"`
		OccurredAt  *time.Time       `json:"occurredAt,omitempty"`
		CategoryID  *string          `json:"categoryId,omitempty"`
	}

	CategoryPatch struct {
		Name  *string `json:"name,omitempty"`
		Color *string `json:"color,omitempty"`
		Icon  *string `json:"icon,omitempty"`
	}
)

var (
	ErrInvalidKind       = errors.New("invalid entry kind")
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrAmountTooLarge    = errors.New("amount must not exceed " + MaxAmount.String())
	ErrEmptyAmount       = errors.New("amount is empty")
	ErrEmptyName         = errors.New("empty name")
	ErrInvertedInterval  = errors.New("start date must not be after end date")
	ErrMissingReference  = errors.New("missing user or category reference")
	ErrDescriptionLength = errors.New("description too long (max 200 characters)")
)

// ParseEntryKind accepts the singular and plural spellings used by the API.
func ParseEntryKind(s string) (EntryKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense", "expenses":
		return Expense, nil
	case "income", "incomes":
		return Income, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k EntryKind) Valid() bool {
	return k == Expense || k == Income
}

// Contains reports whether t lies within the interval, bounds included.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.From) && !t.After(i.To)
}

func (e LedgerEntry) Validate() error {
	if !e.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := checkAmount(e.Amount); err != nil {
		return err
	}
	if len(e.Description) > 200 {
		return ErrDescriptionLength
	}
	if e.OccurredAt.IsZero() {
		return errors.New("occurred at cannot be zero")
	}
	if e.UserID == "" || e.CategoryID == "" {
		return ErrMissingReference
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.UserID == "" {
		return ErrMissingReference
	}
	return nil
}

func (b Budget) Validate() error {
	if err := checkAmount(b.Amount); err != nil {
		return err
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return errors.New("budget dates cannot be zero")
	}
	if b.StartDate.After(b.EndDate) {
		return ErrInvertedInterval
	}
	if b.UserID == "" || b.CategoryID == "" {
		return ErrMissingReference
	}
	return nil
}

// Apply merges the patch into a copy of b. System-owned fields never change here.
func (b Budget) Apply(p BudgetPatch) Budget {
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.CategoryID != nil {
		b.CategoryID = *p.CategoryID
	}
	if p.StartDate != nil {
		b.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		b.EndDate = *p.EndDate
	}
	if p.IsRecurring != nil {
		b.IsRecurring = *p.IsRecurring
	}
	if p.IsActive != nil {
		b.IsActive = *p.IsActive
	}
	return b
}

func (e LedgerEntry) Apply(p EntryPatch) LedgerEntry {
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.OccurredAt != nil {
		e.OccurredAt = *p.OccurredAt
	}
	if p.CategoryID != nil {
		e.CategoryID = *p.CategoryID
	}
	return e
}

func (c Category) Apply(p CategoryPatch) Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	return c
}
