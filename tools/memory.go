package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"aide/storage"
)

// Memory exposes the persistent vector store as the memory_store and
// memory_query tools. Arguments are either bare text or 'key:value;'
// pairs (content, query_text, top_k, threshold).
type Memory struct {
	store *storage.MemoryStore
}

// NewMemory wraps a memory store. A nil store is allowed; the handlers
// then report the capability as unavailable.
func NewMemory(store *storage.MemoryStore) *Memory {
	return &Memory{store: store}
}

// Store embeds the given text and persists it.
func (m *Memory) Store(ctx context.Context, arg, _ string) (string, error) {
	if m == nil || m.store == nil {
		return "Error: Memory database is not available for storing.", nil
	}

	params := parseCommandParams(arg)
	content := params["content"]
	if content == "" && !hasMemoryKeys(params) {
		content = strings.TrimSpace(arg)
	}
	if content == "" {
		return "Error: 'content' is missing for store action.", nil
	}

	id, err := m.store.Store(ctx, content)
	if err != nil {
		return fmt.Sprintf("Error storing memory: %v", err), nil
	}
	return fmt.Sprintf("Memory stored successfully. ID: %s", id), nil
}

// Query embeds the query text and returns the most similar stored
// memories above the similarity threshold.
func (m *Memory) Query(ctx context.Context, arg, _ string) (string, error) {
	if m == nil || m.store == nil {
		return "Error: Memory database is not available for querying.", nil
	}

	params := parseCommandParams(arg)
	query := params["query_text"]
	if query == "" && !hasMemoryKeys(params) {
		query = strings.TrimSpace(arg)
	}
	if query == "" {
		return "Error: 'query_text' is missing for query action.", nil
	}

	topK := storage.DefaultTopK
	if v, ok := params["top_k"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			topK = n
		}
	}
	threshold := storage.DefaultThreshold
	if v, ok := params["threshold"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			threshold = f
		}
	}

	matches, err := m.store.Query(ctx, query, topK, threshold)
	if err != nil {
		return fmt.Sprintf("Error querying memory: %v", err), nil
	}
	if len(matches) == 0 {
		if count, err := m.store.Count(ctx); err == nil && count == 0 {
			return "No memories found matching your query criteria.", nil
		}
		return fmt.Sprintf("No memories found above the similarity threshold of %.2f.", clamp01(threshold)), nil
	}

	lines := make([]string, len(matches))
	for i, match := range matches {
		lines[i] = fmt.Sprintf("Found: \"%s\" (Similarity: %.4f)", match.Text, match.Similarity)
	}
	return strings.Join(lines, "\n"), nil
}

// parseCommandParams splits 'key:value;' pairs; keys are lowercased
// and values trimmed. Parts without a colon are ignored.
func parseCommandParams(s string) map[string]string {
	params := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		params[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return params
}

// hasMemoryKeys reports whether the parsed pairs contain any key of the
// memory command syntax. Arguments without them are treated as bare
// text, so colons inside ordinary sentences do not break storage.
func hasMemoryKeys(params map[string]string) bool {
	for _, key := range []string{"action", "content", "query_text", "top_k", "threshold"} {
		if _, ok := params[key]; ok {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
