package resolver

import (
	"fmt"
	"testing"
	"time"

	"cascadia-hq/halcyon/pkg/rulelang/ast"
)

func TestParseCache_GetSet(t *testing.T) {
	cache := newParseCache(0, 10)

	node := &ast.Literal{Value: ast.NumberValue(1)}
	cache.Set("1", node)

	got, ok := cache.Get("1")
	if !ok {
		t.Fatal("Get() missed, want hit")
	}
	if got != ast.Node(node) {
		t.Error("Get() returned a different node than Set stored")
	}

	if _, ok := cache.Get("2"); ok {
		t.Error("Get() hit for a key never stored")
	}
}

func TestParseCache_TTLExpiry(t *testing.T) {
	cache := newParseCache(10*time.Millisecond, 10)

	cache.Set("x", &ast.Literal{Value: ast.BoolValue(true)})
	if _, ok := cache.Get("x"); !ok {
		t.Fatal("Get() missed immediately after Set")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := cache.Get("x"); ok {
		t.Error("Get() hit after TTL expiry")
	}
}

func TestParseCache_LRUEviction(t *testing.T) {
	cache := newParseCache(0, 3)

	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("cond-%d", i), &ast.Literal{Value: ast.NumberValue(float64(i))})
		time.Sleep(time.Millisecond) // distinct access times
	}

	// Touch cond-0 so cond-1 becomes the least recently used.
	if _, ok := cache.Get("cond-0"); !ok {
		t.Fatal("Get(cond-0) missed")
	}
	time.Sleep(time.Millisecond)

	cache.Set("cond-3", &ast.Literal{Value: ast.NumberValue(3)})

	if cache.Size() != 3 {
		t.Errorf("Size() = %d, want 3", cache.Size())
	}
	if _, ok := cache.Get("cond-1"); ok {
		t.Error("cond-1 survived eviction, want it evicted as LRU")
	}
	if _, ok := cache.Get("cond-0"); !ok {
		t.Error("cond-0 evicted, want it retained (recently used)")
	}
	if _, ok := cache.Get("cond-3"); !ok {
		t.Error("cond-3 missing, want it stored")
	}
}

func TestParseCache_OverwriteDoesNotEvict(t *testing.T) {
	cache := newParseCache(0, 2)

	cache.Set("a", &ast.Literal{Value: ast.NumberValue(1)})
	cache.Set("b", &ast.Literal{Value: ast.NumberValue(2)})

	// Re-setting an existing key at capacity must not evict another entry.
	cache.Set("a", &ast.Literal{Value: ast.NumberValue(10)})

	if cache.Size() != 2 {
		t.Errorf("Size() = %d, want 2", cache.Size())
	}
	if _, ok := cache.Get("b"); !ok {
		t.Error("b evicted by an overwrite of a")
	}
}
