// Package storage persists tool-facing data. The single store today is the
// sqlite-backed vector table behind the memory_store and memory_query tools.
package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"aide/ollama"
)

// Query tuning bounds. Callers resolve absent arguments to the defaults;
// Query clamps whatever it receives into these ranges.
const (
	DefaultTopK      = 1
	MaxTopK          = 5
	DefaultThreshold = 0.78
)

// bgeQueryPrefix conditions BGE-family embedding models for retrieval.
// Stored passages are embedded without it; only queries carry the prefix.
const bgeQueryPrefix = "Represent this sentence for searching relevant passages: "

// Embedder produces a vector for one input text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OllamaEmbedder adapts the ollama client to the Embedder interface with a
// fixed embedding model.
type OllamaEmbedder struct {
	client *ollama.Client
	model  string
}

func NewOllamaEmbedder(client *ollama.Client, model string) *OllamaEmbedder {
	return &OllamaEmbedder{client: client, model: model}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, e.model, text)
}

// MemoryMatch is one memory returned by Query, best match first.
type MemoryMatch struct {
	ID         string
	Text       string
	Similarity float64
	CreatedAt  time.Time
}

// MemoryStore persists embedded text snippets and answers similarity
// queries over them. Search is a full cosine scan; memory counts here are
// hundreds, not millions, so an index would be overkill.
type MemoryStore struct {
	db       *sql.DB
	embedder Embedder
}

// NewMemoryStore opens (or creates) <dataDir>/memory.db.
func NewMemoryStore(dataDir string, embedder Embedder) (*MemoryStore, error) {
	dbPath := filepath.Join(dataDir, "memory.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &MemoryStore{db: db, embedder: embedder}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (ms *MemoryStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		embedding BLOB NOT NULL,
		created_at DATETIME NOT NULL
	);
	`

	_, err := ms.db.Exec(schema)
	return err
}

// Store embeds the text and inserts it as a new memory record.
// Returns the record's generated ID.
func (ms *MemoryStore) Store(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("memory text cannot be empty")
	}

	vector, err := ms.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("failed to embed memory text: %w", err)
	}

	id := uuid.New().String()

	_, err = ms.db.ExecContext(ctx,
		`INSERT INTO memories (id, text, embedding, created_at) VALUES (?, ?, ?, ?)`,
		id, text, encodeEmbedding(vector), time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert memory: %w", err)
	}

	return id, nil
}

// Query embeds the query text (with the retrieval prefix), scans all stored
// memories by cosine similarity, and returns at most topK matches at or above
// the threshold, best first.
//
// topK is clamped to [1, MaxTopK] (values below 1 become DefaultTopK) and
// threshold to [0, 1]. Absent-argument defaults (DefaultTopK,
// DefaultThreshold) are the caller's job.
func (ms *MemoryStore) Query(ctx context.Context, text string, topK int, threshold float64) ([]MemoryMatch, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("query text cannot be empty")
	}

	if topK < 1 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}

	queryVector, err := ms.embedder.Embed(ctx, bgeQueryPrefix+text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}

	rows, err := ms.db.QueryContext(ctx, `SELECT id, text, embedding, created_at FROM memories`)
	if err != nil {
		return nil, fmt.Errorf("failed to read memories: %w", err)
	}
	defer rows.Close()

	var matches []MemoryMatch
	for rows.Next() {
		var (
			id        string
			memText   string
			blob      []byte
			createdAt time.Time
		)
		if err := rows.Scan(&id, &memText, &blob, &createdAt); err != nil {
			continue // Skip unreadable rows
		}

		vector, err := decodeEmbedding(blob)
		if err != nil {
			continue
		}

		similarity := cosineSimilarity(queryVector, vector)
		if similarity < threshold {
			continue
		}

		matches = append(matches, MemoryMatch{
			ID:         id,
			Text:       memText,
			Similarity: similarity,
			CreatedAt:  createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read memories: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}

	return matches, nil
}

// Count returns the number of stored memories.
func (ms *MemoryStore) Count(ctx context.Context) (int, error) {
	var n int
	err := ms.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count memories: %w", err)
	}
	return n, nil
}

func (ms *MemoryStore) Close() error {
	if ms.db != nil {
		return ms.db.Close()
	}
	return nil
}

// encodeEmbedding packs a vector as little-endian float32s for BLOB storage.
func encodeEmbedding(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeEmbedding(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector, nil
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Mismatched dimensions and zero vectors yield 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
