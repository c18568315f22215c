package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"locobot/internal/config"
	"locobot/internal/gateway"
	"locobot/internal/logging"
	"locobot/internal/prompt"
	"locobot/internal/quota"
	"locobot/internal/session"
)

// runtime bundles the wired-up core components behind the CLI surface.
type runtime struct {
	cfg        config.Config
	sess       *session.Session
	gw         *gateway.Gateway
	gate       *quota.Gate
	quotaStore *quota.SQLiteStore
	sessStore  *session.Store
	offline    bool
	workspace  string
}

func quotaDBPath(ws string) string {
	return filepath.Join(config.Dir(ws), "quota.db")
}

func sessionDBPath(ws string) string {
	return filepath.Join(config.Dir(ws), "session.db")
}

func previewPath(ws string) string {
	return filepath.Join(config.Dir(ws), "preview.html")
}

// resolveAPIKey applies the credential precedence: --api-key flag, then
// environment (handled by config), then config file.
func resolveAPIKey(cfg config.Config) string {
	if apiKey != "" {
		return apiKey
	}
	return cfg.LLM.APIKey
}

// buildRuntime wires config, quota, gateway, and session for one workspace.
// With no API key configured the runtime still comes up, in offline mode:
// every submission surfaces the configuration failure message.
func buildRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	quotaStore, err := quota.OpenSQLiteStore(quotaDBPath(workspace))
	if err != nil {
		return nil, fmt.Errorf("failed to open quota store: %w", err)
	}
	gate := quota.NewGate(quotaStore, cfg.Quota.DailyLimit, nil)

	var provider gateway.Provider
	offline := true
	if key := resolveAPIKey(cfg); key != "" {
		p, err := gateway.NewGenAIProvider(ctx, key)
		if err != nil {
			quotaStore.Close()
			return nil, fmt.Errorf("failed to create model provider: %w", err)
		}
		provider = p
		offline = false
	}

	gw := gateway.New(provider, gate, gateway.Options{
		PrimaryModel:   cfg.LLM.PrimaryModel,
		FallbackModel:  cfg.LLM.FallbackModel,
		ThinkingBudget: cfg.LLM.ThinkingBudget,
		CallTimeout:    time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})

	sessStore, err := session.OpenStore(sessionDBPath(workspace))
	if err != nil {
		quotaStore.Close()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	sess, err := session.New(gw, sessStore)
	if err != nil {
		quotaStore.Close()
		sessStore.Close()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	logging.Boot("Runtime ready: workspace=%s offline=%v primary=%s", workspace, offline, cfg.LLM.PrimaryModel)
	return &runtime{
		cfg:        cfg,
		sess:       sess,
		gw:         gw,
		gate:       gate,
		quotaStore: quotaStore,
		sessStore:  sessStore,
		offline:    offline,
		workspace:  workspace,
	}, nil
}

func (r *runtime) close() {
	if r.sessStore != nil {
		_ = r.sessStore.Close()
	}
	if r.quotaStore != nil {
		_ = r.quotaStore.Close()
	}
}

// writePreview persists the current artifact where a browser can open it.
func (r *runtime) writePreview() (string, error) {
	code, ok := r.sess.Artifact()
	if !ok {
		return "", fmt.Errorf("no artifact generated yet")
	}
	path := previewPath(r.workspace)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// applyMode parses and sets the creator mode, defaulting silently for the
// empty string.
func (r *runtime) applyMode(name string) error {
	if name == "" {
		return nil
	}
	m, err := prompt.ParseMode(name)
	if err != nil {
		return err
	}
	r.sess.SetMode(m)
	return nil
}
