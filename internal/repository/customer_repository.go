package repository

import (
	"log/slog"

	"github.com/google/uuid"

	"bank-statement/internal/domain"
	"bank-statement/internal/errors"
)

type customerRepository struct {
	db     executor
	logger *slog.Logger
}

func newCustomerRepository(db executor, logger *slog.Logger) domain.CustomerRepository {
	return &customerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *customerRepository) CreateCustomer(customer *domain.Customer) error {
	return r.db.write(func(db *DB) error {
		if _, taken := db.byCPF[customer.CPF]; taken {
			r.logger.Warn("Duplicate customer creation attempt", "cpf", customer.CPF)
			return errors.ErrDuplicateCustomer
		}
		if _, taken := db.customers[customer.ID]; taken || customer.ID == uuid.Nil {
			return errors.NewAppError(errors.InternalError, "failed to create customer").
				WithDetails("customer id is empty or already in use")
		}

		db.customers[customer.ID] = customer.Clone()
		db.byCPF[customer.CPF] = customer.ID
		r.db.journal(func() {
			delete(db.customers, customer.ID)
			delete(db.byCPF, customer.CPF)
		})

		r.logger.Debug("Customer stored", "customer_id", customer.ID)
		return nil
	})
}

func (r *customerRepository) GetCustomerByCPF(cpf string) (*domain.Customer, error) {
	var customer *domain.Customer
	err := r.db.read(func(db *DB) error {
		id, ok := db.byCPF[cpf]
		if !ok {
			r.logger.Warn("Customer not found", "cpf", cpf)
			return errors.ErrCustomerNotFound
		}
		customer = db.customers[id].Clone()
		return nil
	})
	return customer, err
}

func (r *customerRepository) GetCustomer(id uuid.UUID) (*domain.Customer, error) {
	var customer *domain.Customer
	err := r.db.read(func(db *DB) error {
		c, err := lookup(db, id)
		if err != nil {
			r.logger.Warn("Customer not found", "customer_id", id)
			return err
		}
		customer = c.Clone()
		return nil
	})
	return customer, err
}

func (r *customerRepository) ExistsByCPF(cpf string) bool {
	var exists bool
	_ = r.db.read(func(db *DB) error {
		_, exists = db.byCPF[cpf]
		return nil
	})
	return exists
}

func (r *customerRepository) UpdateCustomerName(id uuid.UUID, name string) error {
	return r.db.write(func(db *DB) error {
		c, err := lookup(db, id)
		if err != nil {
			r.logger.Warn("No customer found to update", "customer_id", id)
			return err
		}

		previous := c.Name
		c.Name = name
		r.db.journal(func() { c.Name = previous })

		r.logger.Debug("Customer name updated", "customer_id", id)
		return nil
	})
}

func (r *customerRepository) AppendOperation(id uuid.UUID, op domain.Operation) error {
	return r.db.write(func(db *DB) error {
		c, err := lookup(db, id)
		if err != nil {
			r.logger.Warn("No customer found to append operation", "customer_id", id)
			return err
		}

		n := len(c.Statement)
		c.Statement = append(c.Statement, op)
		r.db.journal(func() { c.Statement = c.Statement[:n] })

		r.logger.Debug("Operation appended", "customer_id", id, "type", op.Type, "amount", op.Amount)
		return nil
	})
}

func (r *customerRepository) ListOperations(id uuid.UUID) ([]domain.Operation, error) {
	var ops []domain.Operation
	err := r.db.read(func(db *DB) error {
		c, err := lookup(db, id)
		if err != nil {
			return err
		}
		ops = append(make([]domain.Operation, 0, len(c.Statement)), c.Statement...)
		return nil
	})
	return ops, err
}

// lookup must be called with the DB lock held.
func lookup(db *DB, id uuid.UUID) (*domain.Customer, error) {
	c, ok := db.customers[id]
	if !ok {
		return nil, errors.ErrCustomerNotFound
	}
	return c, nil
}
