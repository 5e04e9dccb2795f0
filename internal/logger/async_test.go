package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/powerscrape/internal/config"
)

// captureHandler keeps the records it receives, flattened to attribute maps.
type captureHandler struct {
	mu      sync.Mutex
	records []map[string]string
	delay   time.Duration // per-record write delay
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	attrs := map[string]string{"msg": rec.Message}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})
	h.mu.Lock()
	h.records = append(h.records, attrs)
	h.mu.Unlock()
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) all() []map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]map[string]string(nil), h.records...)
}

func requestCtx(id, route string) context.Context {
	return WithRoute(WithRequestID(context.Background(), id), route)
}

func TestAsyncHandler_CopiesRequestAttrs(t *testing.T) {
	inner := &captureHandler{}
	ah := NewAsyncHandler(inner, 16, 1)

	rec := slog.NewRecord(time.Now(), slog.LevelWarn, "cache refresh failed", 0)
	rec.AddAttrs(slog.String("key", "jackpot"))
	if err := ah.Handle(requestCtx("req-7", "/jackpot"), rec); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	ah.Close()

	got := inner.all()
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	want := map[string]string{
		"msg":         "cache refresh failed",
		"key":         "jackpot",
		AttrRequestID: "req-7",
		AttrRoute:     "/jackpot",
	}
	for k, v := range want {
		if got[0][k] != v {
			t.Errorf("%s: expected %q, got %q", k, v, got[0][k])
		}
	}
}

func TestAsyncHandler_NoRequestAttrsWithoutContextValues(t *testing.T) {
	inner := &captureHandler{}
	ah := NewAsyncHandler(inner, 16, 1)

	_ = ah.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "starting server", 0))
	ah.Close()

	rec := inner.all()[0]
	if _, ok := rec[AttrRequestID]; ok {
		t.Errorf("unexpected request_id on a background record: %v", rec)
	}
}

func TestAsyncHandler_ConcurrentRequests(t *testing.T) {
	const requests = 50
	const perRequest = 20

	inner := &captureHandler{}
	ah := NewAsyncHandler(inner, requests*perRequest, 4)

	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := requestCtx(string(rune('a'+i%26))+"-req", "/winning-numbers")
			for range perRequest {
				_ = ah.Handle(ctx, slog.NewRecord(time.Now(), slog.LevelInfo, "http request", 0))
			}
		}()
	}
	wg.Wait()
	ah.Close()

	got := inner.all()
	if len(got) != requests*perRequest {
		t.Fatalf("expected %d records, got %d", requests*perRequest, len(got))
	}
	for _, rec := range got {
		if rec[AttrRoute] != "/winning-numbers" || rec[AttrRequestID] == "" {
			t.Fatalf("record lost its request attributes: %v", rec)
		}
	}
}

func TestAsyncHandler_ReportsDropsOnClose(t *testing.T) {
	inner := &captureHandler{delay: 10 * time.Millisecond}
	ah := NewAsyncHandler(inner, 1, 1)

	for range 50 {
		_ = ah.Handle(requestCtx("flood", "/jackpot"), slog.NewRecord(time.Now(), slog.LevelInfo, "http request", 0))
	}
	ah.Close()

	dropped := ah.DroppedCount()
	if dropped == 0 {
		t.Fatal("expected some records to be dropped, got 0")
	}

	got := inner.all()
	last := got[len(got)-1]
	if last["msg"] != "async log records dropped" {
		t.Fatalf("expected a final drop report, got %v", last)
	}
	if last["dropped"] == "" {
		t.Fatalf("expected dropped count on the report, got %v", last)
	}
	if int64(len(got)-1)+dropped != 50 {
		t.Fatalf("written %d + dropped %d != 50", len(got)-1, dropped)
	}
}

func TestAsyncLogger_ServiceAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	l, closer := newWithWriter(config.Logging{Level: "info", Service: "powerscrape", Async: true}, &buf)

	l.InfoContext(requestCtx("req-42", "/jackpot"), "http request", "status", 200)
	closer.Close()

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if rec["service"] != "powerscrape" {
		t.Errorf("expected service attribute, got %v", rec["service"])
	}
	if rec[AttrRequestID] != "req-42" || rec[AttrRoute] != "/jackpot" {
		t.Errorf("expected request attributes, got %v", rec)
	}
}
