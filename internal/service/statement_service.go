package service

import (
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"bank-statement/internal/domain"
	"bank-statement/internal/errors"
	"bank-statement/internal/metrics"
	"bank-statement/internal/repository"
)

// DateLayout is the calendar-day format accepted by StatementByDate.
const DateLayout = "2006-01-02"

const (
	// MaxAmountScale is the number of decimal places an amount may carry.
	MaxAmountScale = 8
	// maxAmountExponent keeps the coefficient rescale in MaxAmount comparisons small.
	maxAmountExponent = 10
)

// MaxAmount caps a single deposit or withdrawal.
var MaxAmount = decimal.NewFromInt(10_000_000_000)

// validateAmount checks the exponent before any arithmetic, since decimal
// rescales by 10^|exponent| when comparing or adding.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.ErrInvalidAmount
	}
	if exp := amount.Exponent(); exp < -MaxAmountScale || exp > maxAmountExponent {
		return errors.ErrInvalidAmount.WithDetails("amount has too many digits")
	}
	if amount.GreaterThan(MaxAmount) {
		return errors.ErrInvalidAmount.WithDetails("amount exceeds maximum limit")
	}
	return nil
}

type StatementService struct {
	store    *repository.Store
	clock    domain.Clock
	location *time.Location
	logger   *slog.Logger
}

// NewStatementService builds the service. Calendar days are evaluated in
// location; a nil location means the server's local time zone.
func NewStatementService(
	store *repository.Store,
	clock domain.Clock,
	location *time.Location,
	logger *slog.Logger,
) *StatementService {
	if clock == nil {
		clock = domain.SystemClock
	}
	if location == nil {
		location = time.Local
	}
	return &StatementService{
		store:    store,
		clock:    clock,
		location: location,
		logger:   logger,
	}
}

func (s *StatementService) Deposit(customer *domain.Customer, amount decimal.Decimal, description string) (*domain.Operation, error) {
	s.logger.Info("Processing deposit", "customer_id", customer.ID, "amount", amount)

	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	op := domain.Operation{
		Type:        domain.Credit,
		Amount:      amount,
		Description: description,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.store.Customer().AppendOperation(customer.ID, op); err != nil {
		return nil, err
	}

	metrics.RecordOperation(string(op.Type), amount.InexactFloat64())
	s.logger.Info("Deposit completed successfully", "customer_id", customer.ID)
	return &op, nil
}

func (s *StatementService) Withdraw(customer *domain.Customer, amount decimal.Decimal, description string) (*domain.Operation, error) {
	s.logger.Info("Processing withdrawal", "customer_id", customer.ID, "amount", amount)

	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var op domain.Operation
	err := s.store.WithTransaction(func(tx *repository.Store) error {
		// Balance is computed under the same lock that guards the append
		statement, err := tx.Customer().ListOperations(customer.ID)
		if err != nil {
			return err
		}

		if balance := GetBalance(statement); balance.LessThan(amount) {
			s.logger.Warn("Withdrawal rejected",
				"customer_id", customer.ID,
				"balance", balance,
				"amount", amount)
			return errors.ErrInsufficientFunds
		}

		op = domain.Operation{
			Type:        domain.Debit,
			Amount:      amount,
			Description: description,
			CreatedAt:   s.clock.Now(),
		}
		return tx.Customer().AppendOperation(customer.ID, op)
	})
	if err != nil {
		if stderrors.Is(err, errors.ErrInsufficientFunds) {
			metrics.RecordRejectedWithdrawal()
		}
		return nil, err
	}

	metrics.RecordOperation(string(op.Type), amount.InexactFloat64())
	s.logger.Info("Withdrawal completed successfully", "customer_id", customer.ID)
	return &op, nil
}

func (s *StatementService) Statement(customer *domain.Customer) ([]domain.Operation, error) {
	return s.store.Customer().ListOperations(customer.ID)
}

// StatementByDate returns the operations recorded on the calendar day date
// (YYYY-MM-DD), in statement order.
func (s *StatementService) StatementByDate(customer *domain.Customer, date string) ([]domain.Operation, error) {
	day, err := time.ParseInLocation(DateLayout, date, s.location)
	if err != nil {
		return nil, errors.ErrInvalidDate.WithDetails(err.Error())
	}

	statement, err := s.store.Customer().ListOperations(customer.ID)
	if err != nil {
		return nil, err
	}

	year, month, dd := day.Date()
	filtered := make([]domain.Operation, 0)
	for _, op := range statement {
		y, m, d := op.CreatedAt.In(s.location).Date()
		if y == year && m == month && d == dd {
			filtered = append(filtered, op)
		}
	}
	return filtered, nil
}

func (s *StatementService) Balance(customer *domain.Customer) (decimal.Decimal, error) {
	statement, err := s.store.Customer().ListOperations(customer.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return GetBalance(statement), nil
}
