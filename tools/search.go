package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"aide/config"
)

const (
	searchEndpoint   = "https://www.googleapis.com/customsearch/v1"
	maxSearchResults = 3
	maxParagraphs    = 10
	maxFetchAttempts = 2
	maxPageBytes     = 2 << 20
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
}

// WebSearch answers search queries with the Google Custom Search JSON
// API and a shallow crawl of the top results.
type WebSearch struct {
	apiKey   string
	engineID string
	endpoint string
	client   *http.Client
}

// NewWebSearch builds a search tool for the given API key and engine
// ID. Empty credentials are allowed; Search then reports the missing
// configuration instead of querying.
func NewWebSearch(apiKey, engineID string) *WebSearch {
	return &WebSearch{
		apiKey:   apiKey,
		engineID: engineID,
		endpoint: searchEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Search runs the query, fetches the top result pages concurrently,
// converts them to markdown and returns per-source sections.
func (s *WebSearch) Search(ctx context.Context, query, _ string) (string, error) {
	if s == nil || s.apiKey == "" || s.engineID == "" {
		return "Error: Web search is not configured. Set the google_search_key and google_search_cx credentials.", nil
	}
	q := strings.TrimSpace(query)

	urls, err := s.searchURLs(ctx, q, maxSearchResults)
	if err != nil {
		if config.Debug && config.DebugLog != nil {
			config.DebugLog.Printf("[WebSearch] Search for %q failed: %v", q, err)
		}
		return fmt.Sprintf("Error processing search: %v", err), nil
	}
	if len(urls) == 0 {
		return fmt.Sprintf("No search results found for '%s'", q), nil
	}

	pages := make([]string, len(urls))
	var wg sync.WaitGroup
	for i, pageURL := range urls {
		wg.Add(1)
		go func(i int, pageURL string) {
			defer wg.Done()
			pages[i] = s.fetchPage(ctx, pageURL)
		}(i, pageURL)
	}
	wg.Wait()

	var sections []string
	for i, pageURL := range urls {
		if pages[i] == "" {
			continue
		}
		text := extractReadableText(pages[i], maxParagraphs)
		if text == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("SOURCE: %s\n\n%s", pageURL, text))
	}
	if len(sections) == 0 {
		return fmt.Sprintf("No usable content found for '%s'", q), nil
	}
	return strings.Join(sections, "\n\n---\n\n"), nil
}

// searchURLs returns the top result links for the query.
func (s *WebSearch) searchURLs(ctx context.Context, query string, max int) ([]string, error) {
	params := url.Values{}
	params.Set("key", s.apiKey)
	params.Set("cx", s.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(max))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var result struct {
		Items []struct {
			Link string `json:"link"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	links := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		if item.Link != "" {
			links = append(links, item.Link)
		}
	}
	return links, nil
}

// fetchPage downloads one result page, retrying with a rotated browser
// User-Agent when the fetch fails or the site blocks the request.
// Returns "" when every attempt fails.
func (s *WebSearch) fetchPage(ctx context.Context, pageURL string) string {
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ""
			case <-time.After(time.Duration(200+rand.Intn(800)) * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return ""
		}
		req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")

		resp, err := s.client.Do(req)
		if err != nil {
			continue
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK && readErr == nil {
			return string(body)
		}
	}
	if config.Debug && config.DebugLog != nil {
		config.DebugLog.Printf("[WebSearch] Gave up fetching %s", pageURL)
	}
	return ""
}

// extractReadableText converts page HTML to markdown and keeps the
// first substantial blocks, dropping nav crumbs and bare link lines.
func extractReadableText(html string, maxBlocks int) string {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return ""
	}
	var blocks []string
	for _, block := range strings.Split(markdown, "\n\n") {
		block = strings.TrimSpace(block)
		if len(block) <= 20 {
			continue
		}
		blocks = append(blocks, block)
		if len(blocks) == maxBlocks {
			break
		}
	}
	return strings.Join(blocks, "\n\n")
}
