package handler

import (
	"net/http"

	"bank-statement/internal/domain"
	"bank-statement/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type CreateAccountRequest struct {
	CPF  string `json:"cpf"`
	Name string `json:"name"`
}

type UpdateAccountRequest struct {
	Name string `json:"name"`
}

type AccountResponse struct {
	ID   string `json:"id"`
	CPF  string `json:"cpf"`
	Name string `json:"name"`
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if appErr := decodeJSON(w, r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	if _, err := h.accountService.CreateAccount(req.CPF, req.Name); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request, customer *domain.Customer) {
	writeJSON(w, http.StatusOK, AccountResponse{
		ID:   customer.ID.String(),
		CPF:  customer.CPF,
		Name: customer.Name,
	})
}

// UpdateAccount answers 201 on success, matching the other mutations.
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request, customer *domain.Customer) {
	var req UpdateAccountRequest
	if appErr := decodeJSON(w, r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	if err := h.accountService.UpdateName(customer, req.Name); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
