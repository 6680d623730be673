package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/pkg/errors"
)

const (
	// DefaultRuntimePath - путь к runtime-документу по умолчанию
	DefaultRuntimePath = "./config.json"
	// DefaultBackendURL используется, если в документе нет APP_BACKEND_URL
	DefaultBackendURL = "http://localhost:8081/delicious-food-map"
)

// RuntimeConfig - настройки, которые не вшиваются в сборку
type RuntimeConfig struct {
	Path       string
	BackendURL string
	MapKey     string
	// BackendURLDefaulted - ключ отсутствовал и был подставлен DefaultBackendURL
	BackendURLDefaulted bool
}

// LoadRuntime читает JSON-документ с адресом бэкенда и ключом карты.
// Отсутствие или нечитаемость документа - ошибка класса config.
func LoadRuntime(path string) (RuntimeConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return RuntimeConfig{}, errors.ErrConfigMissing.
			WithDetails(map[string]interface{}{"path": path}).
			Wrap(err)
	}

	v := newRuntimeViper(path)
	if err := v.ReadInConfig(); err != nil {
		return RuntimeConfig{}, errors.ErrConfigInvalid.
			WithDetails(map[string]interface{}{"path": path}).
			Wrap(err)
	}

	return readRuntime(v, path), nil
}

// WatchRuntime следит за документом и вызывает onChange с новыми значениями.
// Нечитаемая правка логируется и пропускается, прежние значения остаются в силе.
func WatchRuntime(path string, logger *zap.Logger, onChange func(RuntimeConfig)) error {
	v := newRuntimeViper(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.ErrConfigInvalid.Wrap(err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		reloaded := newRuntimeViper(path)
		if err := reloaded.ReadInConfig(); err != nil {
			logger.Warn("Runtime config change ignored",
				zap.String("path", path),
				zap.Error(err))
			return
		}
		rc := readRuntime(reloaded, path)
		logger.Info("Runtime config reloaded",
			zap.String("path", path),
			zap.String("backend_url", rc.BackendURL),
			zap.Bool("map_key_set", rc.MapKey != ""))
		onChange(rc)
	})
	v.WatchConfig()

	return nil
}

func newRuntimeViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	return v
}

func readRuntime(v *viper.Viper, path string) RuntimeConfig {
	rc := RuntimeConfig{
		Path:       path,
		BackendURL: strings.TrimRight(strings.TrimSpace(v.GetString("APP_BACKEND_URL")), "/"),
		MapKey:     strings.TrimSpace(v.GetString("AMAP_KEY")),
	}
	if rc.BackendURL == "" {
		rc.BackendURL = DefaultBackendURL
		rc.BackendURLDefaulted = true
	}
	return rc
}

// String скрывает ключ карты
func (r RuntimeConfig) String() string {
	return fmt.Sprintf("backend=%s map_key_set=%t", r.BackendURL, r.MapKey != "")
}
