package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// DefaultPageSize is the number of hits returned when a query sets none.
const DefaultPageSize = 10

// Query is a fuzzy search on slide content.
type Query struct {
	Text   string
	UserID string // restricts hits to one owner when set
	From   int
	Size   int
}

// Hit is one matching slide.
type Hit struct {
	ID         string
	Score      float64
	Document   Document
	Highlights []string // highlighted content fragments
}

// SearchResult holds one page of hits and the total match count.
type SearchResult struct {
	Total int
	Hits  []Hit
}

func (q Query) body() map[string]any {
	match := map[string]any{
		"match": map[string]any{
			"content": map[string]any{"query": q.Text, "fuzziness": "AUTO"},
		},
	}
	query := match
	if q.UserID != "" {
		query = map[string]any{
			"bool": map[string]any{
				"must":   []any{match},
				"filter": []any{map[string]any{"term": map[string]any{"user_id": q.UserID}}},
			},
		}
	}
	size := q.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	return map[string]any{
		"query":     query,
		"highlight": map[string]any{"fields": map[string]any{"content": map[string]any{}}},
		"from":      max(q.From, 0),
		"size":      size,
	}
}

// Search runs a fuzzy match on slide content with highlighting.
func (c *Client) Search(ctx context.Context, q Query) (SearchResult, error) {
	return c.search(ctx, q.body())
}

// Scan returns one page of every document in the index.
func (c *Client) Scan(ctx context.Context, from, size int) (SearchResult, error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	return c.search(ctx, map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
		"from":  max(from, 0),
		"size":  size,
	})
}

// ScanAll pages through the whole index with pages of pageSize documents.
func (c *Client) ScanAll(ctx context.Context, pageSize int) (SearchResult, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var all SearchResult
	for from := 0; ; from += pageSize {
		page, err := c.Scan(ctx, from, pageSize)
		if err != nil {
			return all, err
		}
		all.Total = page.Total
		all.Hits = append(all.Hits, page.Hits...)
		if len(page.Hits) < pageSize || len(all.Hits) >= page.Total {
			return all, nil
		}
	}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID        string              `json:"_id"`
			Score     float64             `json:"_score"`
			Source    Document            `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *Client) search(ctx context.Context, body map[string]any) (SearchResult, error) {
	c.metrics.IncSearch()
	data, err := json.Marshal(body)
	if err != nil {
		return SearchResult{}, err
	}

	rctx, cancel := c.requestContext(ctx)
	defer cancel()
	res, err := c.es.Search(
		c.es.Search.WithContext(rctx),
		c.es.Search.WithIndex(c.cfg.Index),
		c.es.Search.WithBody(bytes.NewReader(data)),
		c.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return SearchResult{}, &responseError{op: "search", status: res.StatusCode, body: string(msg)}
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return SearchResult{}, fmt.Errorf("decoding search response: %w", err)
	}
	out := SearchResult{Total: sr.Hits.Total.Value, Hits: make([]Hit, 0, len(sr.Hits.Hits))}
	for _, h := range sr.Hits.Hits {
		out.Hits = append(out.Hits, Hit{
			ID:         h.ID,
			Score:      h.Score,
			Document:   h.Source,
			Highlights: h.Highlight["content"],
		})
	}
	return out, nil
}
