package service

import (
	"github.com/shopspring/decimal"

	"bank-statement/internal/domain"
)

// GetBalance reduces a statement to credits minus debits, in statement order.
// An empty statement has a zero balance.
func GetBalance(statement []domain.Operation) decimal.Decimal {
	balance := decimal.Zero
	for _, op := range statement {
		switch op.Type {
		case domain.Credit:
			balance = balance.Add(op.Amount)
		case domain.Debit:
			balance = balance.Sub(op.Amount)
		}
	}
	return balance
}
