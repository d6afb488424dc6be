package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/portfolio-tracker/internal/types"
)

// PortfolioResponse is the body of GET /api/portfolio/{address}.
// Amounts are JSON numbers; the dashboard formats them with toFixed.
type PortfolioResponse struct {
	Address             string                   `json:"address"`
	Portfolio           []ChainPortfolioResponse `json:"portfolio"`
	TotalPortfolioValue float64                  `json:"totalPortfolioValue"`
	UnavailableChains   []types.ChainFailure     `json:"unavailableChains"`
}

// ChainPortfolioResponse is one entry of PortfolioResponse.Portfolio
type ChainPortfolioResponse struct {
	Chain         types.ChainID          `json:"chain"`
	NativeBalance NativeBalanceResponse  `json:"nativeBalance"`
	NativeValue   float64                `json:"nativeValue"`
	Tokens        []TokenHoldingResponse `json:"tokens"`
	TotalValue    float64                `json:"totalValue"`
}

// NativeBalanceResponse mirrors types.NativeBalance
type NativeBalanceResponse struct {
	Chain         types.ChainID `json:"chain"`
	NativeBalance float64       `json:"nativeBalance"`
	NativeSymbol  string        `json:"nativeSymbol"`
}

// TokenHoldingResponse mirrors types.TokenHolding
type TokenHoldingResponse struct {
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
	Price   float64 `json:"price"`
	Value   float64 `json:"value"`
}

// NewPortfolioResponse renders a portfolio for the wire
func NewPortfolioResponse(p *types.Portfolio) *PortfolioResponse {
	resp := &PortfolioResponse{
		Address:             p.Address,
		Portfolio:           make([]ChainPortfolioResponse, 0, len(p.Chains)),
		TotalPortfolioValue: p.TotalValue.InexactFloat64(),
		UnavailableChains:   p.Failures,
	}
	if resp.UnavailableChains == nil {
		resp.UnavailableChains = []types.ChainFailure{}
	}

	for _, chain := range p.Chains {
		tokens := make([]TokenHoldingResponse, 0, len(chain.Tokens))
		for _, token := range chain.Tokens {
			tokens = append(tokens, TokenHoldingResponse{
				Name:    token.Name,
				Balance: token.Balance.InexactFloat64(),
				Price:   token.UnitPrice.InexactFloat64(),
				Value:   token.Value.InexactFloat64(),
			})
		}

		resp.Portfolio = append(resp.Portfolio, ChainPortfolioResponse{
			Chain: chain.Chain,
			NativeBalance: NativeBalanceResponse{
				Chain:         chain.NativeBalance.Chain,
				NativeBalance: chain.NativeBalance.Amount.InexactFloat64(),
				NativeSymbol:  chain.NativeBalance.Symbol,
			},
			NativeValue: chain.NativeValue.InexactFloat64(),
			Tokens:      tokens,
			TotalValue:  chain.TotalValue.InexactFloat64(),
		})
	}

	return resp
}

// handleGetPortfolio handles GET /api/portfolio/{address}
func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	portfolio, err := s.portfolioService.BuildPortfolio(r.Context(), address)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, NewPortfolioResponse(portfolio))
}
