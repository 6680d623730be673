// Package backend - HTTP-клиент REST-бэкенда карты заведений.
// Клиент прикрепляет bearer-токен, разворачивает конверт {code, message, data}
// и приводит ошибки к классам transport/application.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/metrics"
	"github.com/foodmap-client/internal/notify"
	"github.com/foodmap-client/internal/pkg/errors"
)

// TokenSource отдаёт текущий bearer-токен ("" - токена нет)
type TokenSource interface {
	Token() string
}

// SessionClearer сбрасывает сессию при коде недействительной сессии
type SessionClearer interface {
	ClearSession(reason string)
}

// Request - параметры одного запроса к бэкенду
type Request struct {
	Method      string
	Path        string
	Params      map[string]interface{}
	Body        interface{}
	RequireAuth bool
	// Blob - ответ бинарный (картинка), конверта нет
	Blob bool
}

// Response - результат запроса: конверт или бинарное тело
type Response struct {
	domain.Envelope
	Blob []byte
}

type Client struct {
	httpClient *http.Client
	logger     *zap.Logger

	mu      sync.RWMutex
	baseURL string

	tokens   TokenSource
	session  SessionClearer
	notifier notify.Notifier
	metrics  metrics.Recorder
}

// Option настраивает Client
type Option func(*Client)

func WithTokenSource(ts TokenSource) Option       { return func(c *Client) { c.tokens = ts } }
func WithSessionClearer(sc SessionClearer) Option { return func(c *Client) { c.session = sc } }
func WithNotifier(n notify.Notifier) Option       { return func(c *Client) { c.notifier = n } }
func WithMetrics(m metrics.Recorder) Option       { return func(c *Client) { c.metrics = m } }
func WithHTTPClient(hc *http.Client) Option       { return func(c *Client) { c.httpClient = hc } }

// NewClient создает новый клиент бэкенда
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetBaseURL меняет адрес бэкенда (повторное разрешение конфигурации)
func (c *Client) SetBaseURL(baseURL string) {
	baseURL = strings.TrimRight(baseURL, "/")

	c.mu.Lock()
	old := c.baseURL
	c.baseURL = baseURL
	c.mu.Unlock()

	if old != baseURL {
		c.logger.Info("Backend base URL updated",
			zap.String("old", old),
			zap.String("new", baseURL))
	}
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// Send выполняет запрос и возвращает развёрнутый ответ.
// Для неуспешного кода конверта возвращается и ответ, и ошибка класса application.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Calling backend",
		zap.String("method", httpReq.Method),
		zap.String("url", httpReq.URL.String()),
		zap.Bool("require_auth", req.RequireAuth),
		zap.String("request_id", httpReq.Header.Get("X-Request-ID")))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Failed to execute request",
			zap.String("path", req.Path),
			zap.Error(err))
		c.metrics.RecordBackendRequest(req.Path, metrics.OutcomeTransport, time.Since(start))
		return nil, errors.Transport("Backend request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordBackendRequest(req.Path, metrics.OutcomeTransport, time.Since(start))
		return nil, errors.Transport("Failed to read backend response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Backend returned error status",
			zap.String("path", req.Path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", truncate(body, 512)))
		c.metrics.RecordBackendRequest(req.Path, metrics.OutcomeTransport, time.Since(start))
		return nil, errors.ErrTransport.
			WithMessage(fmt.Sprintf("Backend returned status %d", resp.StatusCode)).
			WithDetails(map[string]interface{}{"status": resp.StatusCode})
	}

	if req.Blob {
		c.metrics.RecordBackendRequest(req.Path, metrics.OutcomeSuccess, time.Since(start))
		return &Response{Blob: body}, nil
	}

	var out Response
	if err := json.Unmarshal(body, &out.Envelope); err != nil {
		c.logger.Error("Failed to decode response",
			zap.String("path", req.Path),
			zap.Error(err))
		c.metrics.RecordBackendRequest(req.Path, metrics.OutcomeTransport, time.Since(start))
		return nil, errors.Transport("Failed to decode backend response", err)
	}

	if string(out.Envelope.Code) != errors.SuccessCode {
		c.metrics.RecordBackendRequest(req.Path, metrics.OutcomeApplication, time.Since(start))
		return &out, c.handleApplicationError(req, &out.Envelope)
	}

	c.metrics.RecordBackendRequest(req.Path, metrics.OutcomeSuccess, time.Since(start))
	return &out, nil
}

// Do - Send с разбором data в out (out может быть nil)
func (c *Client) Do(ctx context.Context, req Request, out interface{}) (*domain.Envelope, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		if resp != nil {
			return &resp.Envelope, err
		}
		return nil, err
	}
	if out != nil && resp.Envelope.HasData() {
		if err := json.Unmarshal(resp.Envelope.Data, out); err != nil {
			return &resp.Envelope, errors.Transport("Failed to decode response data", err)
		}
	}
	return &resp.Envelope, nil
}

func (c *Client) handleApplicationError(req Request, env *domain.Envelope) error {
	code := string(env.Code)
	appErr := errors.Application(code, env.Message)
	if env.Description != "" {
		appErr = appErr.WithDetails(map[string]interface{}{"description": env.Description})
	}

	c.logger.Warn("Backend returned failure code",
		zap.String("path", req.Path),
		zap.String("code", code),
		zap.String("message", env.Message))

	if errors.IsSessionInvalidCode(code) {
		c.metrics.RecordSessionInvalidated(code)
		if c.session != nil {
			c.session.ClearSession("backend code " + code)
		}
	}
	if c.notifier != nil {
		c.notifier.Notify(notify.LevelError, code+" | "+env.Message)
	}

	return appErr
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	u, err := url.Parse(c.BaseURL() + "/" + strings.TrimLeft(req.Path, "/"))
	if err != nil {
		return nil, errors.Transport("Invalid backend URL", err)
	}
	if len(req.Params) > 0 {
		q := u.Query()
		for _, k := range sortedKeys(req.Params) {
			q.Set(k, fmt.Sprint(req.Params[k]))
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.ErrInvalidRequest.Wrap(err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), u.String(), body)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, errors.Transport("Failed to create request", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Blob {
		httpReq.Header.Set("Accept", "image/*")
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	if req.RequireAuth && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return httpReq, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
