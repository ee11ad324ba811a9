package cache

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/krisis/internal/llm"
)

const (
	testSystem = "You are an analytical reasoning assistant."
	testUser   = "Analyze the following problem context."
)

func sampleResponse(content string) *llm.CompletionResponse {
	return &llm.CompletionResponse{
		Content:    content,
		Model:      "test-model",
		TokensUsed: 128,
	}
}

func TestRequestKey_FieldBoundaries(t *testing.T) {
	// Shifting a character across a field boundary must change the key.
	a := requestKey("openrouter", "gpt-4o-mini", "system", "user")
	b := requestKey("openrouter", "gpt-4o-minis", "ystem", "user")
	if a == b {
		t.Error("Expected distinct keys for distinct field splits")
	}

	if a != requestKey("openrouter", "gpt-4o-mini", "system", "user") {
		t.Error("Expected the key to be deterministic")
	}
}

func TestResponseCache_RoundTrip(t *testing.T) {
	c := New(t.TempDir(), time.Hour)

	want := sampleResponse(`{"SystemOverview": "a queue"}`)
	if err := c.Set("openrouter", "test-model", testSystem, testUser, want); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got, ok := c.Get("openrouter", "test-model", testSystem, testUser)
	if !ok {
		t.Fatal("Expected a cache hit")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Cached response mismatch (-want +got):\n%s", diff)
	}
}

func TestResponseCache_PromptChangeIsAMiss(t *testing.T) {
	c := New(t.TempDir(), time.Hour)

	if err := c.Set("openrouter", "test-model", testSystem, testUser, sampleResponse("cached")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, ok := c.Get("openrouter", "test-model", testSystem, testUser+" with more detail"); ok {
		t.Error("Expected a different user prompt to miss")
	}
	if _, ok := c.Get("openrouter", "other-model", testSystem, testUser); ok {
		t.Error("Expected a different model to miss")
	}
	if _, ok := c.Get("ollama", "test-model", testSystem, testUser); ok {
		t.Error("Expected a different provider to miss")
	}
}

func TestResponseCache_DiskSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	first := New(dir, time.Hour)
	if err := first.Set("openrouter", "test-model", testSystem, testUser, sampleResponse("persisted")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// A fresh instance has an empty memory layer; the hit must come from
	// disk.
	second := New(dir, time.Hour)
	got, ok := second.Get("openrouter", "test-model", testSystem, testUser)
	if !ok {
		t.Fatal("Expected a disk hit after restart")
	}
	if got.Content != "persisted" {
		t.Errorf("Expected persisted content, got %q", got.Content)
	}
}

func TestResponseCache_DiskHitPromotesToMemory(t *testing.T) {
	dir := t.TempDir()

	first := New(dir, time.Hour)
	if err := first.Set("openrouter", "test-model", testSystem, testUser, sampleResponse("promoted")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	second := New(dir, time.Hour)
	if _, ok := second.Get("openrouter", "test-model", testSystem, testUser); !ok {
		t.Fatal("Expected a disk hit")
	}

	// With the disk entry gone, the promoted memory copy must still serve.
	key := requestKey("openrouter", "test-model", testSystem, testUser)
	if err := os.Remove(second.disk.path(key)); err != nil {
		t.Fatalf("Expected no error removing the entry, got %v", err)
	}
	if _, ok := second.Get("openrouter", "test-model", testSystem, testUser); !ok {
		t.Error("Expected the promoted memory entry to serve the repeat")
	}
}

func TestResponseCache_ExpiredDiskEntryIsAMiss(t *testing.T) {
	c := New(t.TempDir(), time.Hour)

	key := requestKey("openrouter", "test-model", testSystem, testUser)
	if err := c.disk.store(key, sampleResponse("stale"), time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, ok := c.Get("openrouter", "test-model", testSystem, testUser); ok {
		t.Error("Expected the expired entry to miss")
	}
	if _, err := os.Stat(c.disk.path(key)); !os.IsNotExist(err) {
		t.Error("Expected the expired entry to be removed")
	}
}

func TestResponseCache_CorruptDiskEntryIsAMiss(t *testing.T) {
	c := New(t.TempDir(), time.Hour)

	key := requestKey("openrouter", "test-model", testSystem, testUser)
	if err := os.WriteFile(c.disk.path(key), []byte("not json"), 0644); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, ok := c.Get("openrouter", "test-model", testSystem, testUser); ok {
		t.Error("Expected the corrupt entry to miss")
	}
	if _, err := os.Stat(c.disk.path(key)); !os.IsNotExist(err) {
		t.Error("Expected the corrupt entry to be removed")
	}
}

func TestResponseCache_MemoryOnlyWithoutDir(t *testing.T) {
	c := New("", time.Hour)

	if err := c.Set("openrouter", "test-model", testSystem, testUser, sampleResponse("in memory")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := c.Get("openrouter", "test-model", testSystem, testUser); !ok {
		t.Error("Expected a memory hit with the disk layer disabled")
	}
}

func TestResponseCache_Clear(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, time.Hour)

	if err := c.Set("openrouter", "test-model", testSystem, testUser, sampleResponse("cleared")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, ok := c.Get("openrouter", "test-model", testSystem, testUser); ok {
		t.Error("Expected a miss after Clear")
	}
	if _, ok := New(dir, time.Hour).Get("openrouter", "test-model", testSystem, testUser); ok {
		t.Error("Expected the disk layer to be empty after Clear")
	}
}
