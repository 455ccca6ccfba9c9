package treasury

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no account or entry matches the ID.
	ErrNotFound = errors.New("treasury: not found")
	// ErrInvalidAmount rejects zero or negative movement amounts.
	ErrInvalidAmount = errors.New("treasury: amount must be positive")
	// ErrDuplicateIBAN marks a bank account IBAN collision.
	ErrDuplicateIBAN = errors.New("treasury: duplicate IBAN")
)

// EntryDirection indicates which way cash moved.
type EntryDirection string

const (
	DirectionIn  EntryDirection = "in"
	DirectionOut EntryDirection = "out"
)

// BankAccount represents one bank account of the company.
type BankAccount struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	Bank      string    `json:"bank"`
	IBAN      string    `json:"iban"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CashEntry is one line of the cash journal. Entries are append-only;
// corrections are made with an opposite movement.
type CashEntry struct {
	ID        int64          `json:"id"`
	Label     string         `json:"label"`
	Direction EntryDirection `json:"direction"`
	Amount    int64          `json:"amount"`
	Reference string         `json:"reference"`
	EntryDate time.Time      `json:"entry_date"`
	CreatedAt time.Time      `json:"created_at"`
}

// EntryFilters narrows cash journal listings.
type EntryFilters struct {
	From      time.Time
	To        time.Time
	Direction EntryDirection
	Limit     int
}
