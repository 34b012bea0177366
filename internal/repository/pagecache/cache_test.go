package pagecache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cityhealth/directory/internal/domain/provider"
	"github.com/cityhealth/directory/internal/domain/search/result"
)

func TestPage_RoundTrip(t *testing.T) {
	s := newMockKVStore()
	c, counter := newTestCache(s)
	ctx := context.Background()

	if _, ok := c.GetPage(ctx, "k"); ok {
		t.Fatal("expected miss on empty cache")
	}

	page := result.Page{
		Providers:  []provider.Provider{{ID: "p1", Rating: 4.5}},
		HasMore:    true,
		NextCursor: "abc",
		Latency:    12 * time.Millisecond,
	}
	c.PutPage(ctx, "k", &page)

	got, ok := c.GetPage(ctx, "k")
	if !ok {
		t.Fatal("expected hit")
	}
	if len(got.Providers) != 1 || got.Providers[0].ID != "p1" || got.NextCursor != "abc" || !got.HasMore {
		t.Errorf("got %+v", got)
	}
	if s.ttls["cityhealth:page:k"] != 5*time.Minute {
		t.Errorf("page ttl = %v", s.ttls["cityhealth:page:k"])
	}

	if v := testutil.ToFloat64(counter.WithLabelValues("hit")); v != 1 {
		t.Errorf("hits = %v, want 1", v)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("miss")); v != 1 {
		t.Errorf("misses = %v, want 1", v)
	}
}

func TestPage_CorruptIsMiss(t *testing.T) {
	s := newMockKVStore()
	s.data["cityhealth:page:k"] = []byte("{not json")
	c, _ := newTestCache(s)
	if _, ok := c.GetPage(context.Background(), "k"); ok {
		t.Fatal("corrupt entry must be a miss")
	}
}

func TestStoreErrors_AreMisses(t *testing.T) {
	s := newMockKVStore()
	s.getErr = errors.New("connection refused")
	s.setErr = errors.New("connection refused")
	c, _ := newTestCache(s)
	ctx := context.Background()

	c.PutPage(ctx, "k", &result.Page{})
	if _, ok := c.GetPage(ctx, "k"); ok {
		t.Fatal("expected miss on store error")
	}
	c.PutCursor(ctx, "base", 2, "cur")
	if _, ok := c.GetCursor(ctx, "base", 2); ok {
		t.Fatal("expected cursor miss on store error")
	}
}

func TestCursor_RoundTrip(t *testing.T) {
	s := newMockKVStore()
	c, _ := newTestCache(s)
	ctx := context.Background()

	c.PutCursor(ctx, "base", 3, "cursor-3")
	c.PutCursor(ctx, "base", 4, "")

	if got, ok := c.GetCursor(ctx, "base", 3); !ok || got != "cursor-3" {
		t.Errorf("GetCursor(3) = %q, %v", got, ok)
	}
	if _, ok := c.GetCursor(ctx, "base", 4); ok {
		t.Error("empty cursor must not be stored")
	}
	if s.ttls["cityhealth:cursor:base:3"] != 30*time.Minute {
		t.Errorf("cursor ttl = %v", s.ttls["cityhealth:cursor:base:3"])
	}
}
