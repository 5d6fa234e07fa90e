package cache

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/genuinity/internal/model"
)

func TestKey(t *testing.T) {
	a := Key("embedding", "hash:384", "hello")
	b := Key("embedding", "hash:384", "hello")
	c := Key("embedding", "hash:384", "hello!")
	d := Key("embedding", "hash:384hello", "")

	if a != b {
		t.Errorf("expected stable key, got %s and %s", a, b)
	}
	if a == c {
		t.Error("expected different keys for different text")
	}
	if a == d {
		t.Error("expected part boundaries to matter")
	}
	if !strings.HasPrefix(a, "genuinity:v1:embedding:") {
		t.Errorf("unexpected prefix: %s", a)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss")
	}

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Errorf("expected v, got %q (%v)", got, ok)
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key("embedding", "m", "text")

	if err := c.Set(key, []byte{1, 2, 3}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok := c.Get(key)
	if !ok || !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("expected stored bytes, got %v (%v)", got, ok)
	}

	// A fresh instance over the same directory sees the entry
	if _, ok := NewDiskCache(dir, time.Hour).Get(key); !ok {
		t.Error("expected entry to persist across instances")
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("deleting a missing key should not fail: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_ExpiredAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	_ = c.Set("expired", []byte("x"), time.Nanosecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("expired"); ok {
		t.Error("expected expired entry to miss")
	}

	path := c.path("corrupt")
	_ = c.Set("corrupt", []byte("x"), 0)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("corrupt"); ok {
		t.Error("expected corrupt entry to miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected corrupt entry to be removed")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	key := Key("embedding", "m", "promote")

	if err := NewDiskCache(dir, time.Hour).Set(key, []byte("v"), 0); err != nil {
		t.Fatal(err)
	}

	c := NewLayeredCache(time.Minute, dir, time.Hour)
	if _, ok := c.Get(key); !ok {
		t.Fatal("expected disk hit")
	}

	// Once promoted, the entry survives losing the disk copy
	if err := c.disk.Delete(key); err != nil {
		t.Fatal(err)
	}
	if got, ok := c.Get(key); !ok || string(got) != "v" {
		t.Fatalf("expected memory hit, got %q (%v)", got, ok)
	}
	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected miss")
	}
}

func TestLayeredCache_Clear(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)

	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after clear")
	}
	if _, ok := NewDiskCache(dir, time.Hour).Get("b"); ok {
		t.Error("expected disk entries removed")
	}
}

func TestNewFromConfig(t *testing.T) {
	if NewFromConfig(model.CacheConfig{Enabled: false}) != nil {
		t.Error("expected nil cache when disabled")
	}
	if _, ok := NewFromConfig(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute}).(*MemoryCache); !ok {
		t.Error("expected memory cache without disk dir")
	}
	if _, ok := NewFromConfig(model.CacheConfig{Enabled: true, DiskDir: t.TempDir()}).(*LayeredCache); !ok {
		t.Error("expected layered cache with disk dir")
	}
}
