package roomhost

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/haxfootball-room/internal/domain/chat"
	"github.com/riskibarqy/haxfootball-room/internal/domain/engine"
	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
	"github.com/riskibarqy/haxfootball-room/internal/platform/resilience"
)

const (
	chatPath   = "/v1/chat"
	enginePath = "/v1/engine/"

	defaultTimeout   = 3 * time.Second
	defaultWorkers   = 1
	defaultQueueSize = 512
)

var (
	ErrClosed    = crerr.New("room host client is closed")
	ErrQueueFull = crerr.New("room host delivery queue is full")

	errHostTransient = crerr.New("room host transient failure")
)

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Workers above one trade delivery order for throughput.
	Workers        int
	QueueSize      int
	CircuitBreaker resilience.CircuitBreakerConfig
}

type request struct {
	ctx     context.Context
	path    string
	payload any
}

// Client delivers chat messages and engine directives to the room host. Sends
// only queue the request, so the session loop never waits on the network;
// delivery runs on an ants pool and failures are logged, not returned.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger

	pool    *ants.Pool
	queue   chan request
	mu      sync.RWMutex
	closed  bool
	drained sync.WaitGroup
}

func NewClient(cfg Config, logger *logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.Default()
	}
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid ROOM_HOST_BASE_URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, crerr.Wrap(err, "create delivery pool")
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		breaker:    resilience.NewFromConfig(cfg.CircuitBreaker.Normalized()),
		logger:     logger.Named("roomhost"),
		pool:       pool,
		queue:      make(chan request, cfg.QueueSize),
	}
	for range cfg.Workers {
		c.drained.Add(1)
		if err := pool.Submit(c.drain); err != nil {
			c.drained.Done()
			pool.Release()
			return nil, crerr.Wrap(err, "start delivery worker")
		}
	}
	return c, nil
}

// Chat is the client as a chat.Sink.
func (c *Client) Chat() chat.Sink {
	return chat.SinkFunc(func(ctx context.Context, msg chat.Message) error {
		return c.enqueue(ctx, chatPath, msg)
	})
}

// Engine is the client as an engine.Port.
func (c *Client) Engine() engine.Port {
	return enginePort{client: c}
}

type enginePort struct {
	client *Client
}

func (p enginePort) Send(ctx context.Context, d engine.Directive) error {
	if strings.TrimSpace(string(d.Name)) == "" {
		return crerr.New("directive name is required")
	}
	return p.client.enqueue(ctx, enginePath+string(d.Name), d)
}

func (c *Client) enqueue(ctx context.Context, path string, payload any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClosed
	}
	select {
	case c.queue <- request{ctx: context.WithoutCancel(ctx), path: path, payload: payload}:
		return nil
	default:
		c.logger.WarnContext(ctx, "room host queue full, dropping request", "path", path)
		return ErrQueueFull
	}
}

func (c *Client) drain() {
	defer c.drained.Done()
	for req := range c.queue {
		if err := c.deliver(req.ctx, req.path, req.payload); err != nil {
			c.logger.WarnContext(req.ctx, "room host delivery failed", "path", req.path, "error", err)
		}
	}
}

// Close stops accepting requests and waits for queued ones to be delivered.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.queue)
	c.mu.Unlock()

	c.drained.Wait()
	c.pool.Release()
}

func (c *Client) deliver(ctx context.Context, path string, payload any) (err error) {
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return crerr.Wrapf(err, "room host unavailable state=%s", c.breaker.State())
		}
		defer func() { c.recordCircuitResult(err) }()
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		return crerr.Wrap(err, "encode room host payload")
	}
	// the transport may still hold the body after Do returns
	body := bytes.Clone(buf.B)

	target := c.baseURL + path
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("roomhost.url", target),
			attribute.Int("roomhost.body_bytes", len(body)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create room host request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Mark(crerr.Wrapf(err, "post %s", path), errHostTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		statusErr := crerr.Newf("post %s status=%d body=%s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
		if isRetryableStatus(resp.StatusCode) {
			return crerr.Mark(statusErr, errHostTransient)
		}
		return statusErr
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.DebugContext(ctx, "room host request delivered", "path", path)
	return nil
}

// recordCircuitResult counts only transient failures against the breaker.
func (c *Client) recordCircuitResult(err error) {
	if err == nil || !isCircuitFailure(err) {
		c.breaker.RecordSuccess()
		return
	}
	c.breaker.RecordFailure()
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errHostTransient)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}
