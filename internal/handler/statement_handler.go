package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"bank-statement/internal/domain"
	"bank-statement/internal/errors"
	"bank-statement/internal/service"
)

type StatementHandler struct {
	statementService *service.StatementService
}

func NewStatementHandler(statementService *service.StatementService) *StatementHandler {
	return &StatementHandler{
		statementService: statementService,
	}
}

// OperationRequest is the body of both deposit and withdraw. Amount accepts a
// JSON number or a decimal string.
type OperationRequest struct {
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
}

type BalanceResponse struct {
	Balance json.Number `json:"balance"`
}

func (req *OperationRequest) amount() (decimal.Decimal, *errors.AppError) {
	if req.Amount == nil {
		return decimal.Zero, errors.ErrInvalidAmount.WithDetails("amount is required")
	}
	return *req.Amount, nil
}

func (h *StatementHandler) Deposit(w http.ResponseWriter, r *http.Request, customer *domain.Customer) {
	var req OperationRequest
	if appErr := decodeJSON(w, r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	amount, appErr := req.amount()
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	if _, err := h.statementService.Deposit(customer, amount, req.Description); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *StatementHandler) Withdraw(w http.ResponseWriter, r *http.Request, customer *domain.Customer) {
	var req OperationRequest
	if appErr := decodeJSON(w, r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	amount, appErr := req.amount()
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	if _, err := h.statementService.Withdraw(customer, amount, req.Description); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *StatementHandler) GetStatement(w http.ResponseWriter, r *http.Request, customer *domain.Customer) {
	statement, err := h.statementService.Statement(customer)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newOperationResponses(statement))
}

func (h *StatementHandler) GetStatementByDate(w http.ResponseWriter, r *http.Request, customer *domain.Customer) {
	statement, err := h.statementService.StatementByDate(customer, r.URL.Query().Get("date"))
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newOperationResponses(statement))
}

func (h *StatementHandler) GetBalance(w http.ResponseWriter, r *http.Request, customer *domain.Customer) {
	balance, err := h.statementService.Balance(customer)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{Balance: json.Number(balance.String())})
}
