package http

import (
	"context"
	"net/http"

	"github.com/Strob0t/powerscrape/internal/domain"
	"github.com/Strob0t/powerscrape/internal/domain/lottery"
)

// LotteryReader serves the cached lottery results.
type LotteryReader interface {
	Jackpot(ctx context.Context) (*lottery.Jackpot, error)
	WinningNumbers(ctx context.Context) (*lottery.WinningNumbers, error)
}

// BreakerState reports the upstream circuit breaker state.
type BreakerState interface {
	State() string
}

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Lottery LotteryReader
	Breaker BreakerState // optional
	L2      bool         // shared NATS KV store in use
}

type healthResponse struct {
	Status  string `json:"status"`
	Breaker string `json:"breaker,omitempty"`
	L2      bool   `json:"l2"`
}

// GetJackpot handles GET /jackpot
func (h *Handlers) GetJackpot(w http.ResponseWriter, r *http.Request) {
	j, err := h.Lottery.Jackpot(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// GetWinningNumbers handles GET /winning-numbers
func (h *Handlers) GetWinningNumbers(w http.ResponseWriter, r *http.Request) {
	wn, err := h.Lottery.WinningNumbers(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	numbers := wn.Numbers
	if numbers == nil {
		numbers = []string{}
	}
	writeJSON(w, http.StatusOK, numbers)
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", L2: h.L2}
	if h.Breaker != nil {
		resp.Breaker = h.Breaker.State()
	}
	writeJSON(w, http.StatusOK, resp)
}

// NotFound answers every unknown route, and unsupported methods on known
// routes, with a fixed JSON body.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeDomainError(w, r, domain.ErrNotFound)
}
