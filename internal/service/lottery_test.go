package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/powerscrape/internal/config"
	"github.com/Strob0t/powerscrape/internal/domain"
	"github.com/Strob0t/powerscrape/internal/domain/lottery"
)

const (
	testJackpotURL = "http://upstream.test/home"
	testWinnumsURL = "http://upstream.test/winnums.txt"
)

// fakeFetcher serves canned bodies by URL and counts requests.
type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	errs   map[string]error
	calls  map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		bodies: make(map[string]string),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, fmt.Errorf("no body for %s: %w", url, domain.ErrFetch)
	}
	return []byte(body), nil
}

func (f *fakeFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func jackpotPage(cell string) string {
	return `<html><body><div class="content"><table>
<tr><td>Next Drawing</td><td>Wed</td></tr>
<tr><td>Jackpot</td><td>` + cell + `</td></tr>
</table></div></body></html>`
}

func newTestService(f *fakeFetcher) (*LotteryService, *clock) {
	clk := newClock()
	c := newTestCache(newMemStore(), clk)
	svc := NewLotteryService(f, c, config.Upstream{
		JackpotURL:        testJackpotURL,
		WinningNumbersURL: testWinnumsURL,
	})
	return svc, clk
}

func TestLotteryService_Jackpot(t *testing.T) {
	f := newFakeFetcher()
	f.bodies[testJackpotURL] = jackpotPage(`<strong>$1,234 Million</strong>`)
	svc, clk := newTestService(f)

	j, err := svc.Jackpot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if j.AmountCents != 123_400_000_000 {
		t.Fatalf("expected 123400000000 cents, got %d", j.AmountCents)
	}
	if !j.LastUpdate.Equal(clk.Now()) {
		t.Fatalf("expected LastUpdate %v, got %v", clk.Now(), j.LastUpdate)
	}
}

func TestLotteryService_JackpotCachedWithinPeriod(t *testing.T) {
	f := newFakeFetcher()
	f.bodies[testJackpotURL] = jackpotPage(`<b>$500</b>`)
	svc, clk := newTestService(f)
	ctx := context.Background()

	first, err := svc.Jackpot(ctx)
	if err != nil {
		t.Fatal(err)
	}

	f.bodies[testJackpotURL] = jackpotPage(`<b>$700</b>`)
	clk.Advance(59 * time.Second)

	second, err := svc.Jackpot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if f.count(testJackpotURL) != 1 {
		t.Fatalf("expected one fetch, got %d", f.count(testJackpotURL))
	}
	if second.AmountCents != 50000 || !second.LastUpdate.Equal(first.LastUpdate) {
		t.Fatalf("expected cached jackpot, got %+v", second)
	}

	clk.Advance(2 * time.Second)

	third, err := svc.Jackpot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if f.count(testJackpotURL) != 2 {
		t.Fatalf("expected refetch after period, got %d fetches", f.count(testJackpotURL))
	}
	if third.AmountCents != 70000 || !third.LastUpdate.After(first.LastUpdate) {
		t.Fatalf("expected refreshed jackpot, got %+v", third)
	}
}

func TestLotteryService_JackpotParseError(t *testing.T) {
	f := newFakeFetcher()
	f.bodies[testJackpotURL] = `<html><body><p>site redesign</p></body></html>`
	svc, _ := newTestService(f)

	_, err := svc.Jackpot(context.Background())
	if !errors.Is(err, domain.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	var pe *lottery.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *lottery.ParseError in chain, got %T", err)
	}
}

func TestLotteryService_FetchError(t *testing.T) {
	f := newFakeFetcher()
	f.errs[testJackpotURL] = fmt.Errorf("dial: %w", domain.ErrFetch)
	f.errs[testWinnumsURL] = fmt.Errorf("dial: %w", domain.ErrFetch)
	svc, _ := newTestService(f)
	ctx := context.Background()

	if _, err := svc.Jackpot(ctx); !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("jackpot: expected ErrFetch, got %v", err)
	}
	if _, err := svc.WinningNumbers(ctx); !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("winning numbers: expected ErrFetch, got %v", err)
	}
}

func TestLotteryService_FailedRefreshKeepsServingError(t *testing.T) {
	f := newFakeFetcher()
	f.bodies[testJackpotURL] = jackpotPage(`<b>$5 Million</b>`)
	svc, clk := newTestService(f)
	ctx := context.Background()

	if _, err := svc.Jackpot(ctx); err != nil {
		t.Fatal(err)
	}

	clk.Advance(2 * time.Minute)
	f.errs[testJackpotURL] = fmt.Errorf("timeout: %w", domain.ErrFetch)
	if _, err := svc.Jackpot(ctx); err == nil {
		t.Fatal("expected stale refresh failure to surface")
	}

	delete(f.errs, testJackpotURL)
	j, err := svc.Jackpot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if j.AmountCents != 500_000_000 {
		t.Fatalf("expected recovered jackpot, got %d", j.AmountCents)
	}
}

func TestLotteryService_WinningNumbers(t *testing.T) {
	f := newFakeFetcher()
	f.bodies[testWinnumsURL] = "Draw Date   WB1 WB2 WB3 WB4 WB5 PB  PP\n" +
		"10/14/2026  05  12  23  34  45  06  2\n" +
		"10/11/2026  01  02  03  04  05  06  3\n"
	svc, _ := newTestService(f)

	w, err := svc.WinningNumbers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"10/14/2026", "05", "12", "23", "34", "45", "06", "2"}
	if len(w.Numbers) != len(want) {
		t.Fatalf("expected %v, got %v", want, w.Numbers)
	}
	for i := range want {
		if w.Numbers[i] != want[i] {
			t.Fatalf("field %d: expected %q, got %q", i, want[i], w.Numbers[i])
		}
	}
}

func TestLotteryService_WinningNumbersSingleLine(t *testing.T) {
	f := newFakeFetcher()
	f.bodies[testWinnumsURL] = "Draw Date   WB1 WB2 WB3 WB4 WB5 PB  PP"
	svc, _ := newTestService(f)
	ctx := context.Background()

	w, err := svc.WinningNumbers(ctx)
	if err != nil {
		t.Fatalf("expected no error for single-line feed, got %v", err)
	}
	if w.Numbers == nil || len(w.Numbers) != 0 {
		t.Fatalf("expected empty non-nil numbers, got %#v", w.Numbers)
	}

	if _, err := svc.WinningNumbers(ctx); err != nil {
		t.Fatal(err)
	}
	if f.count(testWinnumsURL) != 1 {
		t.Fatalf("expected empty result to be cached, got %d fetches", f.count(testWinnumsURL))
	}
}

func TestLotteryService_KeysDoNotShareEntries(t *testing.T) {
	f := newFakeFetcher()
	f.bodies[testJackpotURL] = jackpotPage(`<b>$10</b>`)
	f.bodies[testWinnumsURL] = "header\n01  02\n"
	svc, _ := newTestService(f)
	ctx := context.Background()

	if _, err := svc.Jackpot(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.WinningNumbers(ctx); err != nil {
		t.Fatal(err)
	}
	if f.count(testJackpotURL) != 1 || f.count(testWinnumsURL) != 1 {
		t.Fatalf("expected one fetch per upstream, got %d and %d",
			f.count(testJackpotURL), f.count(testWinnumsURL))
	}
}
