package handler

import (
	"net/http"

	"bank-statement/internal/domain"
	"bank-statement/internal/service"
)

// CPFHeader carries the caller's identifier on every endpoint except account creation.
const CPFHeader = "cpf"

// CustomerHandlerFunc is an endpoint that runs on behalf of a resolved customer.
type CustomerHandlerFunc func(w http.ResponseWriter, r *http.Request, customer *domain.Customer)

type IdentityResolver struct {
	accountService *service.AccountService
}

func NewIdentityResolver(accountService *service.AccountService) *IdentityResolver {
	return &IdentityResolver{
		accountService: accountService,
	}
}

// Resolve looks up the customer named by the cpf header and hands it to
// next. Unknown or missing identifiers get a 404 and next never runs.
func (ir *IdentityResolver) Resolve(next CustomerHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, err := ir.accountService.ResolveCustomer(r.Header.Get(CPFHeader))
		if err != nil {
			handleError(w, err)
			return
		}
		next(w, r, customer)
	}
}
