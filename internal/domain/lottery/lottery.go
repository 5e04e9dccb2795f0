// Package lottery defines the Powerball result types and the extractors that
// turn raw upstream pages into them.
package lottery

import (
	"time"

	"github.com/Strob0t/powerscrape/internal/domain"
)

// Jackpot is the advertised jackpot amount.
type Jackpot struct {
	AmountCents int64     `json:"amountCents"`
	LastUpdate  time.Time `json:"lastUpdate"`
}

// WinningNumbers holds the fields of the most recent draw record.
type WinningNumbers struct {
	Numbers    []string  `json:"numbers"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// ParseError reports an extraction failure. It matches domain.ErrParse.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return "parse " + e.Source + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is domain.ErrParse.
func (e *ParseError) Is(target error) bool { return target == domain.ErrParse }
