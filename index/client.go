package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"
)

// Defaults for Config.
const (
	DefaultIndex          = "ppt"
	DefaultAddress        = "http://localhost:9200"
	DefaultBatchSize      = 1000
	DefaultMaxRetries     = 10
	DefaultRequestTimeout = 900 * time.Second
)

// Config describes how to reach the cluster. CloudID takes precedence over
// Addresses when set.
type Config struct {
	Addresses      []string
	CloudID        string
	Username       string
	Password       string
	Index          string
	BatchSize      int
	MaxRetries     int
	RequestTimeout time.Duration

	// Transport replaces the HTTP transport, mostly for tests.
	Transport http.RoundTripper
}

// DefaultConfig returns a configuration for a local cluster.
func DefaultConfig() Config {
	return Config{
		Addresses:      []string{DefaultAddress},
		Index:          DefaultIndex,
		BatchSize:      DefaultBatchSize,
		MaxRetries:     DefaultMaxRetries,
		RequestTimeout: DefaultRequestTimeout,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.Addresses) == 0 && c.CloudID == "" {
		c.Addresses = d.Addresses
	}
	if c.CloudID != "" {
		c.Addresses = nil
	}
	if c.Index == "" {
		c.Index = d.Index
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	return c
}

// Client talks to one index. It is safe for concurrent use.
type Client struct {
	es      *elasticsearch.Client
	cfg     Config
	log     logrus.FieldLogger
	metrics *Metrics

	newBackOff func() backoff.BackOff
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger used for batch results.
func WithLogger(l logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a client. It does not contact the cluster; call Ping.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	cfg = cfg.withDefaults()
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  cfg.Addresses,
		CloudID:    cfg.CloudID,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
		Transport:  cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("creating search client: %w", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	c := &Client{
		es:  es,
		cfg: cfg,
		log: log,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Index returns the index name.
func (c *Client) Index() string {
	return c.cfg.Index
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.RequestTimeout)
}

// Ping checks the cluster answers, retrying with exponential backoff up to
// MaxRetries attempts. It returns an error wrapping ErrNotConnected on
// failure.
func (c *Client) Ping(ctx context.Context) error {
	attempt := 0
	op := func() (struct{}, error) {
		attempt++
		rctx, cancel := c.requestContext(ctx)
		defer cancel()
		res, err := c.es.Ping(c.es.Ping.WithContext(rctx))
		if err != nil {
			c.log.WithError(err).WithField("attempt", attempt).Debug("ping failed")
			return struct{}{}, err
		}
		defer res.Body.Close()
		if res.IsError() {
			c.log.WithField("attempt", attempt).WithField("status", res.StatusCode).Debug("ping failed")
			return struct{}{}, fmt.Errorf("ping: %s", res.Status())
		}
		return struct{}{}, nil
	}
	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.cfg.MaxRetries)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return nil
}

// RecreateIndex deletes the index, if present, and creates it with Mapping.
func (c *Client) RecreateIndex(ctx context.Context) error {
	rctx, cancel := c.requestContext(ctx)
	defer cancel()

	res, err := c.es.Indices.Delete([]string{c.cfg.Index}, c.es.Indices.Delete.WithContext(rctx))
	if err != nil {
		return fmt.Errorf("deleting index %s: %w", c.cfg.Index, err)
	}
	if err := checkResponse("delete index", res, http.StatusNotFound); err != nil {
		return err
	}

	body, err := json.Marshal(Mapping)
	if err != nil {
		return err
	}
	res, err = c.es.Indices.Create(c.cfg.Index,
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
		c.es.Indices.Create.WithContext(rctx))
	if err != nil {
		return fmt.Errorf("creating index %s: %w", c.cfg.Index, err)
	}
	if err := checkResponse("create index", res); err != nil {
		return err
	}
	c.log.WithField("index", c.cfg.Index).Info("index created")
	return nil
}

// checkResponse closes res and turns an error status into an error, except
// for the statuses listed in allow.
func checkResponse(op string, res *esapi.Response, allow ...int) error {
	defer res.Body.Close()
	if !res.IsError() {
		return nil
	}
	for _, s := range allow {
		if res.StatusCode == s {
			return nil
		}
	}
	data, _ := io.ReadAll(res.Body)
	return &responseError{op: op, status: res.StatusCode, body: string(data)}
}

// Result summarizes a bulk load.
type Result struct {
	Succeeded int
	Errors    []ItemError
}

// IndexBatch loads docs in bulk requests of BatchSize documents. Documents
// the cluster rejects are collected in Result.Errors; a transport failure
// stops the load and is returned with the counts so far.
func (c *Client) IndexBatch(ctx context.Context, docs []Document) (Result, error) {
	var result Result
	for start := 0; start < len(docs); start += c.cfg.BatchSize {
		end := min(start+c.cfg.BatchSize, len(docs))
		began := time.Now()
		r, err := c.bulk(ctx, docs[start:end])
		if err != nil {
			return result, err
		}
		c.metrics.ObserveBatch(r.Succeeded, len(r.Errors), time.Since(began))
		c.log.WithFields(logrus.Fields{
			"index":     c.cfg.Index,
			"succeeded": r.Succeeded,
			"failed":    len(r.Errors),
		}).Info("batch indexed")
		result.Succeeded += r.Succeeded
		result.Errors = append(result.Errors, r.Errors...)
	}
	return result, nil
}

type bulkItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

type bulkResponse struct {
	Errors bool                  `json:"errors"`
	Items  []map[string]bulkItem `json:"items"`
}

func (c *Client) bulk(ctx context.Context, docs []Document) (Result, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		meta := map[string]any{"index": map[string]any{"_index": c.cfg.Index, "_id": d.ID()}}
		if err := enc.Encode(meta); err != nil {
			return Result{}, err
		}
		if err := enc.Encode(d); err != nil {
			return Result{}, err
		}
	}

	rctx, cancel := c.requestContext(ctx)
	defer cancel()
	res, err := c.es.Bulk(&buf, c.es.Bulk.WithIndex(c.cfg.Index), c.es.Bulk.WithContext(rctx))
	if err != nil {
		return Result{}, fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return Result{}, &responseError{op: "bulk", status: res.StatusCode, body: string(data)}
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return Result{}, fmt.Errorf("decoding bulk response: %w", err)
	}
	var r Result
	for _, entry := range br.Items {
		for _, item := range entry {
			if item.Error != nil || item.Status >= 300 {
				ie := ItemError{DocumentID: item.ID, Status: item.Status}
				if item.Error != nil {
					ie.Type, ie.Reason = item.Error.Type, item.Error.Reason
				}
				r.Errors = append(r.Errors, ie)
				continue
			}
			r.Succeeded++
		}
	}
	return r, nil
}
