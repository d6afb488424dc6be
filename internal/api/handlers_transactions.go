package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/portfolio-tracker/internal/types"
)

// TransactionsResponse is the body of GET /api/transactions/{address}
type TransactionsResponse struct {
	Transactions []types.TransactionRecord `json:"transactions"`
}

// NewTransactionsResponse wraps records for the wire
func NewTransactionsResponse(records []types.TransactionRecord) *TransactionsResponse {
	if records == nil {
		records = []types.TransactionRecord{}
	}
	return &TransactionsResponse{Transactions: records}
}

// handleGetTransactions handles GET /api/transactions/{address}.
// The address is echoed into the records without validation.
func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	records := s.transactionService.FetchTransactions(r.Context(), address)
	respondJSON(w, http.StatusOK, NewTransactionsResponse(records))
}
