// Package config loads heuristics settings from a YAML file layered over the
// built-in defaults, and reloads them when the file changes.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"opsdesk/internal/compliance"
	"opsdesk/internal/heuristics"
	pstrings "opsdesk/pkg/platform/strings"
)

// DefaultDebounce is the quiet period before a change is reloaded.
const DefaultDebounce = 200 * time.Millisecond

// Provider serves the current settings snapshot.
type Provider struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration

	current atomic.Pointer[heuristics.Settings]

	mu        sync.Mutex
	listeners []func(heuristics.Settings)
}

type Option func(*Provider)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithDebounce(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.debounce = d
		}
	}
}

// New loads path once. An empty path serves the defaults and never reloads.
func New(path string, opts ...Option) (*Provider, error) {
	p := &Provider{
		path:     path,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(p)
	}

	settings := heuristics.DefaultSettings()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}
	p.current.Store(&settings)
	return p, nil
}

// Current returns a copy of the settings in force.
func (p *Provider) Current() heuristics.Settings {
	return p.current.Load().Clone()
}

// OnChange registers fn to run after every successful reload.
func (p *Provider) OnChange(fn func(heuristics.Settings)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Reload re-reads the file. On error the previous settings stay in force.
func (p *Provider) Reload() error {
	if p.path == "" {
		return nil
	}
	settings, err := LoadFile(p.path)
	if err != nil {
		return err
	}
	p.current.Store(&settings)

	p.mu.Lock()
	listeners := append([]func(heuristics.Settings){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(settings.Clone())
	}
	return nil
}

// Watch reloads on file changes until ctx is done. The parent directory is
// watched so editors that replace the file on save are picked up.
func (p *Provider) Watch(ctx context.Context) error {
	if p.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(p.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	p.logger.InfoContext(ctx, "heuristics config watcher started",
		"path", target,
		"debounce_ms", p.debounce.Milliseconds(),
	)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "heuristics config watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target || event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			timerMu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(p.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				if err := p.Reload(); err != nil {
					p.logger.ErrorContext(ctx, "heuristics config reload failed, keeping previous settings",
						"path", target,
						"error", err,
					)
					return
				}
				p.logger.InfoContext(ctx, "heuristics config reloaded", "path", target)
			})
			timerMu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			p.logger.ErrorContext(ctx, "heuristics config watcher error", "error", err)
		}
	}
}

// LoadFile reads and parses a settings file.
func LoadFile(path string) (heuristics.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return heuristics.Settings{}, fmt.Errorf("read heuristics config: %w", err)
	}
	return Parse(data)
}

// Parse layers a YAML document over the defaults. Keys that are absent keep
// their default; unknown keys are rejected.
func Parse(data []byte) (heuristics.Settings, error) {
	settings := heuristics.DefaultSettings()
	settings.Compliance = compliance.Watchlists{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
		return heuristics.Settings{}, fmt.Errorf("parse heuristics config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return heuristics.Settings{}, err
	}

	settings.NegativeKeywords = pstrings.DedupeAndTrim(settings.NegativeKeywords)
	settings.Compliance = compliance.DefaultWatchlists().Merge(normalizeWatchlists(settings.Compliance))
	return settings, nil
}

func normalizeWatchlists(w compliance.Watchlists) compliance.Watchlists {
	w.HeavyCargoPorts = pstrings.DedupeAndTrim(w.HeavyCargoPorts)
	w.USPorts = pstrings.DedupeAndTrim(w.USPorts)
	w.RequiredDocuments = pstrings.DedupeAndTrim(w.RequiredDocuments)
	w.GenericHSCodes = pstrings.DedupeAndTrim(w.GenericHSCodes)
	w.HighRiskRegions = pstrings.DedupeAndTrim(w.HighRiskRegions)
	return w
}
