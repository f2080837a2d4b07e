package domain

import (
	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID   `json:"id"`
	CPF       string      `json:"cpf"`
	Name      string      `json:"name"`
	Statement []Operation `json:"statement"`
}

// Clone returns a copy whose statement does not alias the receiver's.
func (c *Customer) Clone() *Customer {
	cp := *c
	cp.Statement = append([]Operation(nil), c.Statement...)
	return &cp
}

type CustomerRepository interface {
	CreateCustomer(customer *Customer) error
	GetCustomerByCPF(cpf string) (*Customer, error)
	GetCustomer(id uuid.UUID) (*Customer, error)
	ExistsByCPF(cpf string) bool
	UpdateCustomerName(id uuid.UUID, name string) error
	AppendOperation(id uuid.UUID, op Operation) error
	ListOperations(id uuid.UUID) ([]Operation, error)
}
