package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OperationType string

const (
	Credit OperationType = "credit"
	Debit  OperationType = "debit"
)

type Operation struct {
	Type        OperationType   `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Clock is the time source used to stamp operations.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock stamps operations with the wall clock.
var SystemClock Clock = ClockFunc(time.Now)
