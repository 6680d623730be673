// Package amap загружает JS SDK карты AMap.
// Параллельные загрузки объединяются, успешная загрузка запоминается,
// неудачная - нет, следующий вызов пробует заново.
package amap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/foodmap-client/internal/config"
	"github.com/foodmap-client/internal/metrics"
	"github.com/foodmap-client/internal/pkg/errors"
)

const flightKey = "amap-sdk"

// SDK - загруженный скрипт карты
type SDK struct {
	URL      string    `json:"url"`
	Version  string    `json:"version"`
	Plugins  []string  `json:"plugins"`
	Size     int       `json:"size"`
	LoadedAt time.Time `json:"loadedAt"`

	script []byte
}

// Script возвращает тело загруженного скрипта
func (s *SDK) Script() []byte {
	return s.script
}

// Status - состояние загрузчика для /map/status
type Status struct {
	Loaded    bool   `json:"loaded"`
	Loading   bool   `json:"loading"`
	KeySet    bool   `json:"keySet"`
	LastError string `json:"lastError,omitempty"`
	SDK       *SDK   `json:"sdk,omitempty"`
}

type Loader struct {
	httpClient *http.Client
	cfg        config.MapConfig
	logger     *zap.Logger
	metrics    metrics.Recorder

	sf singleflight.Group

	mu      sync.RWMutex
	key     string
	sdk     *SDK
	loading bool
	lastErr string
}

// NewLoader создает загрузчик SDK
func NewLoader(cfg config.MapConfig, timeout time.Duration, logger *zap.Logger, recorder metrics.Recorder) *Loader {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Loader{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
		logger:     logger,
		metrics:    recorder,
	}
}

// SetKey задаёт ключ из runtime-конфигурации
func (l *Loader) SetKey(key string) {
	l.mu.Lock()
	l.key = strings.TrimSpace(key)
	l.mu.Unlock()
}

func (l *Loader) Key() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.key
}

// LoadConfigured загружает SDK с ключом из конфигурации
func (l *Loader) LoadConfigured(ctx context.Context) (*SDK, error) {
	return l.Load(ctx, l.Key())
}

// Load загружает SDK; повторные вызовы после успеха сразу возвращают результат
func (l *Loader) Load(ctx context.Context, apiKey string) (*SDK, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		l.logger.Warn("Map SDK load requested without API key")
		return nil, errors.ErrMapKeyMissing
	}

	if sdk := l.SDK(); sdk != nil {
		return sdk, nil
	}

	// общая загрузка не зависит от отмены первого вызывающего, её ограничивает таймаут http-клиента
	fetchCtx := context.WithoutCancel(ctx)
	ch := l.sf.DoChan(flightKey, func() (interface{}, error) {
		if sdk := l.SDK(); sdk != nil {
			return sdk, nil
		}
		return l.fetch(fetchCtx, apiKey)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			l.logger.Debug("Map SDK load joined in-flight request")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*SDK), nil
	}
}

func (l *Loader) fetch(ctx context.Context, apiKey string) (*SDK, error) {
	l.setLoading(true, "")

	scriptURL := l.ScriptURL(apiKey)
	l.logger.Info("Loading map SDK",
		zap.String("url", l.cfg.ScriptURL),
		zap.String("version", l.cfg.Version))

	script, err := l.download(ctx, scriptURL)
	if err != nil {
		l.logger.Error("Failed to load map SDK", zap.Error(err))
		l.metrics.RecordMapLoad("failure")
		l.setLoading(false, err.Error())
		return nil, errors.ErrMapLoadFailed.Wrap(err)
	}

	sdk := &SDK{
		URL:      l.cfg.ScriptURL,
		Version:  l.cfg.Version,
		Plugins:  append([]string(nil), l.cfg.Plugins...),
		Size:     len(script),
		LoadedAt: time.Now(),
		script:   script,
	}

	l.mu.Lock()
	l.sdk = sdk
	l.loading = false
	l.lastErr = ""
	l.mu.Unlock()

	l.metrics.RecordMapLoad("success")
	l.logger.Info("Map SDK loaded", zap.Int("size", sdk.Size))
	return sdk, nil
}

func (l *Loader) download(ctx context.Context, scriptURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scriptURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("empty script body")
	}
	return body, nil
}

// ScriptURL собирает адрес скрипта: v, key, plugin в этом порядке
func (l *Loader) ScriptURL(apiKey string) string {
	var b strings.Builder
	b.WriteString(l.cfg.ScriptURL)
	b.WriteString("?v=")
	b.WriteString(url.QueryEscape(l.cfg.Version))
	b.WriteString("&key=")
	b.WriteString(url.QueryEscape(apiKey))
	if len(l.cfg.Plugins) > 0 {
		b.WriteString("&plugin=")
		b.WriteString(strings.Join(l.cfg.Plugins, ","))
	}
	return b.String()
}

func (l *Loader) IsLoaded() bool {
	return l.SDK() != nil
}

func (l *Loader) SDK() *SDK {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sdk
}

func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Status{
		Loaded:    l.sdk != nil,
		Loading:   l.loading,
		KeySet:    l.key != "",
		LastError: l.lastErr,
		SDK:       l.sdk,
	}
}

func (l *Loader) setLoading(loading bool, lastErr string) {
	l.mu.Lock()
	l.loading = loading
	l.lastErr = lastErr
	l.mu.Unlock()
}
