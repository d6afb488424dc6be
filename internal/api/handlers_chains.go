package api

import (
	"net/http"

	"github.com/portfolio-tracker/internal/service"
)

// ChainsResponse is the body of GET /api/chains
type ChainsResponse struct {
	Chains []service.ChainStatus `json:"chains"`
}

// handleGetChains handles GET /api/chains
func (s *Server) handleGetChains(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ChainsResponse{Chains: s.portfolioService.ChainStatuses()})
}
