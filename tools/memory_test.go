package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"aide/storage"
)

const queryPrefix = "Represent this sentence for searching relevant passages: "

// cannedEmbedder returns fixed vectors keyed by exact input text.
type cannedEmbedder struct {
	vectors map[string][]float32
}

func (c *cannedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v, ok := c.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no canned vector for %q", text)
	}
	return v, nil
}

func newTestMemory(t *testing.T, vectors map[string][]float32) *Memory {
	t.Helper()

	store, err := storage.NewMemoryStore(t.TempDir(), &cannedEmbedder{vectors: vectors})
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewMemory(store)
}

func TestMemoryStoreBareText(t *testing.T) {
	mem := newTestMemory(t, map[string][]float32{
		"the user prefers tea": {1, 0, 0},
	})

	got, err := mem.Store(context.Background(), "the user prefers tea", "")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if !strings.HasPrefix(got, "Memory stored successfully. ID: ") {
		t.Errorf("Store() = %q, want success with ID", got)
	}
	if strings.TrimPrefix(got, "Memory stored successfully. ID: ") == "" {
		t.Error("Store() returned empty ID")
	}
}

func TestMemoryStoreContentKey(t *testing.T) {
	mem := newTestMemory(t, map[string][]float32{
		"the user prefers tea":          {1, 0, 0},
		queryPrefix + "tea preference?": {1, 0, 0},
	})
	ctx := context.Background()

	if _, err := mem.Store(ctx, "content:the user prefers tea", ""); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := mem.Query(ctx, "query_text:tea preference?", "")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	want := "Found: \"the user prefers tea\" (Similarity: 1.0000)"
	if got != want {
		t.Errorf("Query() = %q, want %q", got, want)
	}
}

func TestMemoryStoreMissingContent(t *testing.T) {
	mem := newTestMemory(t, nil)

	got, err := mem.Store(context.Background(), "top_k:3", "")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if got != "Error: 'content' is missing for store action." {
		t.Errorf("Store() = %q", got)
	}
}

func TestMemoryQueryBareText(t *testing.T) {
	mem := newTestMemory(t, map[string][]float32{
		"the deploy pipeline uses blue-green": {0, 1, 0},
		queryPrefix + "how do we deploy":      {0, 1, 0},
	})
	ctx := context.Background()

	if _, err := mem.Store(ctx, "the deploy pipeline uses blue-green", ""); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := mem.Query(ctx, "how do we deploy", "")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if !strings.HasPrefix(got, "Found: \"the deploy pipeline uses blue-green\"") {
		t.Errorf("Query() = %q, want found line", got)
	}
}

func TestMemoryQueryBelowThreshold(t *testing.T) {
	mem := newTestMemory(t, map[string][]float32{
		"fact about tea":             {1, 0, 0},
		queryPrefix + "about coffee": {0, 1, 0},
	})
	ctx := context.Background()

	if _, err := mem.Store(ctx, "fact about tea", ""); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := mem.Query(ctx, "about coffee", "")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if got != "No memories found above the similarity threshold of 0.78." {
		t.Errorf("Query() = %q", got)
	}
}

func TestMemoryQueryEmptyStore(t *testing.T) {
	mem := newTestMemory(t, map[string][]float32{
		queryPrefix + "anything": {1, 0, 0},
	})

	got, err := mem.Query(context.Background(), "anything", "")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if got != "No memories found matching your query criteria." {
		t.Errorf("Query() = %q", got)
	}
}

func TestMemoryQueryMissingText(t *testing.T) {
	mem := newTestMemory(t, nil)

	got, err := mem.Query(context.Background(), "top_k:2", "")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if got != "Error: 'query_text' is missing for query action." {
		t.Errorf("Query() = %q", got)
	}
}

func TestMemoryQueryCustomThreshold(t *testing.T) {
	// Vectors at 45 degrees: cosine similarity ~0.7071, below the 0.78
	// default but above an explicit 0.5.
	mem := newTestMemory(t, map[string][]float32{
		"angled fact":            {1, 0},
		queryPrefix + "angled q": {1, 1},
	})
	ctx := context.Background()

	if _, err := mem.Store(ctx, "angled fact", ""); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := mem.Query(ctx, "query_text:angled q; threshold:0.5", "")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if !strings.HasPrefix(got, "Found: \"angled fact\"") {
		t.Errorf("Query() with lowered threshold = %q, want found line", got)
	}

	got, err = mem.Query(ctx, "query_text:angled q; threshold:0.9", "")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if got != "No memories found above the similarity threshold of 0.90." {
		t.Errorf("Query() with raised threshold = %q", got)
	}
}

func TestMemoryNilStore(t *testing.T) {
	mem := NewMemory(nil)
	ctx := context.Background()

	got, _ := mem.Store(ctx, "anything", "")
	if got != "Error: Memory database is not available for storing." {
		t.Errorf("Store() = %q", got)
	}
	got, _ = mem.Query(ctx, "anything", "")
	if got != "Error: Memory database is not available for querying." {
		t.Errorf("Query() = %q", got)
	}
}
