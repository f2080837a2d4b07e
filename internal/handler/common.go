package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"bank-statement/internal/domain"
	"bank-statement/internal/errors"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
}

type OperationResponse struct {
	Description string      `json:"description,omitempty"`
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	CreatedAt   time.Time   `json:"created_at"`
}

func newOperationResponses(ops []domain.Operation) []OperationResponse {
	out := make([]OperationResponse, 0, len(ops))
	for _, op := range ops {
		out = append(out, OperationResponse{
			Description: op.Description,
			Amount:      json.Number(op.Amount.String()),
			Type:        string(op.Type),
			CreatedAt:   op.CreatedAt,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, appErr *errors.AppError) {
	writeJSON(w, appErr.HTTPStatus(), ErrorResponse{Error: appErr.Message})
}

// handleError writes err, hiding anything that is not an AppError behind a 500.
func handleError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		writeError(w, appErr)
		return
	}
	writeError(w, errors.NewAppError(errors.InternalError, "an unexpected error occurred"))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) *errors.AppError {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error())
	}
	return nil
}
