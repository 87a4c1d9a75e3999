// Package pinecone provides a vector index backed by a managed Pinecone index.
//
// Only the data plane is used: the index itself (cosine metric, matching
// dimensions) must already exist. Every request passes through a client-side
// token bucket so bulk reindexing stays under the project's request quota.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerSecond = 10.0
	DefaultBurst             = 20

	// apiVersion pins the data-plane request/response format.
	apiVersion = "2024-07"

	// deleteBatchSize is the maximum number of ids per delete request.
	deleteBatchSize = 1000
)

// Config holds configuration for the Pinecone index.
type Config struct {
	// Host is the index host URL (required), e.g. https://kb-abc123.svc.pinecone.io.
	Host string

	// APIKey is the Pinecone API key (required).
	APIKey string

	// Namespace partitions records within the index. Empty is the default namespace.
	Namespace string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond caps the sustained request rate (default: 10).
	// A negative value disables limiting.
	RequestsPerSecond float64

	// Burst is the token bucket size (default: 20).
	Burst int
}

// Index is a Pinecone data-plane client.
type Index struct {
	client    *http.Client
	host      string
	apiKey    string
	namespace string
	limiter   *rate.Limiter
}

// NewIndex creates a new Pinecone index client.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: pinecone host is required", domain.ErrConfiguration)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: pinecone API key is required", domain.ErrConfiguration)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}

	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond < 0 {
		limit = rate.Inf
	}

	host := strings.TrimRight(cfg.Host, "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	return &Index{
		client:    &http.Client{Timeout: cfg.Timeout},
		host:      host,
		apiKey:    cfg.APIKey,
		namespace: cfg.Namespace,
		limiter:   rate.NewLimiter(limit, cfg.Burst),
	}, nil
}

type vector struct {
	ID       string          `json:"id"`
	Values   []float32       `json:"values"`
	Metadata domain.Metadata `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []vector `json:"vectors"`
	Namespace string   `json:"namespace,omitempty"`
}

type queryRequest struct {
	Vector          []float32                    `json:"vector"`
	TopK            int                          `json:"topK"`
	IncludeMetadata bool                         `json:"includeMetadata"`
	IncludeValues   bool                         `json:"includeValues"`
	Namespace       string                       `json:"namespace,omitempty"`
	Filter          map[string]map[string]string `json:"filter,omitempty"`
}

type queryResponse struct {
	Matches []struct {
		ID       string          `json:"id"`
		Score    float64         `json:"score"`
		Metadata domain.Metadata `json:"metadata"`
	} `json:"matches"`
}

type deleteRequest struct {
	IDs       []string `json:"ids,omitempty"`
	DeleteAll bool     `json:"deleteAll,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
}

type statsResponse struct {
	Namespaces map[string]struct {
		VectorCount int `json:"vectorCount"`
	} `json:"namespaces"`
	TotalVectorCount int `json:"totalVectorCount"`
}

// Upsert inserts or replaces the record with the same id.
func (i *Index) Upsert(ctx context.Context, record domain.VectorRecord) error {
	req := upsertRequest{
		Vectors:   []vector{{ID: record.ID, Values: record.Vector, Metadata: record.Metadata}},
		Namespace: i.namespace,
	}
	return i.post(ctx, "/vectors/upsert", req, nil)
}

// Query returns up to topK records most similar to vec, highest score first.
// The filter is translated to Pinecone's {"field": {"$eq": value}} syntax.
func (i *Index) Query(
	ctx context.Context,
	vec []float32,
	topK int,
	filter domain.MetadataFilter,
) ([]domain.VectorMatch, error) {
	if topK <= 0 {
		return []domain.VectorMatch{}, nil
	}

	req := queryRequest{
		Vector:          vec,
		TopK:            topK,
		IncludeMetadata: true,
		Namespace:       i.namespace,
		Filter:          translateFilter(filter),
	}

	var resp queryResponse
	if err := i.post(ctx, "/query", req, &resp); err != nil {
		return nil, err
	}

	matches := make([]domain.VectorMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, domain.VectorMatch{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return matches, nil
}

// Delete removes the records with the given ids, in batches.
func (i *Index) Delete(ctx context.Context, ids ...string) error {
	for start := 0; start < len(ids); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(ids))
		req := deleteRequest{IDs: ids[start:end], Namespace: i.namespace}
		if err := i.post(ctx, "/vectors/delete", req, nil); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAll removes every record in the namespace.
func (i *Index) DeleteAll(ctx context.Context) error {
	return i.post(ctx, "/vectors/delete", deleteRequest{DeleteAll: true, Namespace: i.namespace}, nil)
}

// Count returns the number of records in the namespace.
// Pinecone updates statistics asynchronously, so the count may briefly lag writes.
func (i *Index) Count(ctx context.Context) (int, error) {
	var resp statsResponse
	if err := i.post(ctx, "/describe_index_stats", struct{}{}, &resp); err != nil {
		return 0, err
	}
	ns, ok := resp.Namespaces[i.namespace]
	if !ok {
		if i.namespace == "" {
			return resp.TotalVectorCount, nil
		}
		return 0, nil
	}
	return ns.VectorCount, nil
}

// Close releases resources.
func (i *Index) Close() error {
	i.client.CloseIdleConnections()
	return nil
}

func translateFilter(f domain.MetadataFilter) map[string]map[string]string {
	if len(f) == 0 {
		return nil
	}
	out := make(map[string]map[string]string, len(f))
	for k, v := range f {
		out[k] = map[string]string{"$eq": v}
	}
	return out
}

// post sends a JSON request and decodes the JSON response into out when non-nil.
// All failures wrap domain.ErrRetrieval.
func (i *Index) post(ctx context.Context, path string, body, out any) error {
	if err := i.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: pinecone rate limiter: %w", domain.ErrRetrieval, err)
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: marshal request: %w", domain.ErrRetrieval, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.host+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("%w: create request: %w", domain.ErrRetrieval, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", i.apiKey)
	req.Header.Set("X-Pinecone-API-Version", apiVersion)

	resp, err := i.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: pinecone %s: %w", domain.ErrRetrieval, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			msg = []byte("failed to read body")
		}
		return fmt.Errorf("%w: pinecone %s returned status %d: %s",
			domain.ErrRetrieval, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrRetrieval, path, err)
	}
	return nil
}
