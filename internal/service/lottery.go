package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Strob0t/powerscrape/internal/config"
	"github.com/Strob0t/powerscrape/internal/domain/lottery"
	"github.com/Strob0t/powerscrape/internal/port/fetcher"
)

// Cache keys, one entry per upstream document.
const (
	KeyJackpot        = "jackpot"
	KeyWinningNumbers = "winnums"
)

type jackpotValue struct {
	AmountCents int64 `json:"amount_cents"`
}

type winningNumbersValue struct {
	Numbers []string `json:"numbers"`
}

// LotteryService serves the jackpot and winning numbers through the refresh cache.
type LotteryService struct {
	fetcher           fetcher.Fetcher
	cache             *RefreshCache
	jackpotURL        string
	winningNumbersURL string
}

// NewLotteryService creates a LotteryService reading the upstream URLs from cfg.
func NewLotteryService(f fetcher.Fetcher, c *RefreshCache, cfg config.Upstream) *LotteryService {
	return &LotteryService{
		fetcher:           f,
		cache:             c,
		jackpotURL:        cfg.JackpotURL,
		winningNumbersURL: cfg.WinningNumbersURL,
	}
}

// Jackpot returns the current jackpot, refreshing it from the home page when stale.
func (s *LotteryService) Jackpot(ctx context.Context) (*lottery.Jackpot, error) {
	e, err := s.cache.Get(ctx, KeyJackpot, s.refreshJackpot)
	if err != nil {
		return nil, err
	}

	var v jackpotValue
	if err := json.Unmarshal(e.Value, &v); err != nil {
		return nil, fmt.Errorf("decode jackpot entry: %w", err)
	}
	return &lottery.Jackpot{AmountCents: v.AmountCents, LastUpdate: e.LastUpdate}, nil
}

// WinningNumbers returns the latest draw, refreshing it from the text feed when stale.
func (s *LotteryService) WinningNumbers(ctx context.Context) (*lottery.WinningNumbers, error) {
	e, err := s.cache.Get(ctx, KeyWinningNumbers, s.refreshWinningNumbers)
	if err != nil {
		return nil, err
	}

	var v winningNumbersValue
	if err := json.Unmarshal(e.Value, &v); err != nil {
		return nil, fmt.Errorf("decode winning numbers entry: %w", err)
	}
	if v.Numbers == nil {
		v.Numbers = []string{}
	}
	return &lottery.WinningNumbers{Numbers: v.Numbers, LastUpdate: e.LastUpdate}, nil
}

func (s *LotteryService) refreshJackpot(ctx context.Context) ([]byte, error) {
	body, err := s.fetcher.Fetch(ctx, s.jackpotURL)
	if err != nil {
		return nil, fmt.Errorf("jackpot: %w", err)
	}
	cents, err := lottery.ParseJackpot(body)
	if err != nil {
		return nil, fmt.Errorf("jackpot: %w", err)
	}
	return json.Marshal(jackpotValue{AmountCents: cents})
}

func (s *LotteryService) refreshWinningNumbers(ctx context.Context) ([]byte, error) {
	body, err := s.fetcher.Fetch(ctx, s.winningNumbersURL)
	if err != nil {
		return nil, fmt.Errorf("winning numbers: %w", err)
	}
	return json.Marshal(winningNumbersValue{Numbers: lottery.ParseWinningNumbers(body)})
}
