package service

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"bank-statement/internal/domain"
	"bank-statement/internal/errors"
	"bank-statement/internal/metrics"
	"bank-statement/internal/repository"
)

type AccountService struct {
	store  *repository.Store
	logger *slog.Logger
}

func NewAccountService(store *repository.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

func (s *AccountService) CreateAccount(cpf, name string) (*domain.Customer, error) {
	cpf = strings.TrimSpace(cpf)
	name = strings.TrimSpace(name)
	s.logger.Info("Creating account", "cpf", cpf)

	if cpf == "" {
		return nil, errors.NewAppErrorf(errors.InvalidInput, "%s is required", "cpf")
	}
	if name == "" {
		return nil, errors.NewAppErrorf(errors.InvalidInput, "%s is required", "name")
	}

	customer := &domain.Customer{
		ID:        uuid.New(),
		CPF:       cpf,
		Name:      name,
		Statement: []domain.Operation{},
	}

	// The uniqueness check and the insert share one critical section
	if err := s.store.Customer().CreateCustomer(customer); err != nil {
		return nil, err
	}

	metrics.RecordCustomerCreated()
	s.logger.Info("Account created successfully", "customer_id", customer.ID)
	return customer, nil
}

// ResolveCustomer looks up the customer owning cpf. A blank cpf never matches.
func (s *AccountService) ResolveCustomer(cpf string) (*domain.Customer, error) {
	cpf = strings.TrimSpace(cpf)
	if cpf == "" {
		return nil, errors.ErrCustomerNotFound
	}
	return s.store.Customer().GetCustomerByCPF(cpf)
}

func (s *AccountService) UpdateName(customer *domain.Customer, name string) error {
	name = strings.TrimSpace(name)
	s.logger.Info("Updating account name", "customer_id", customer.ID)

	if name == "" {
		return errors.NewAppErrorf(errors.InvalidInput, "%s is required", "name")
	}

	if err := s.store.Customer().UpdateCustomerName(customer.ID, name); err != nil {
		return err
	}

	customer.Name = name
	return nil
}
