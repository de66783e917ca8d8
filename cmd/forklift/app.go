package main

import (
	"context"
	"fmt"

	"github.com/forklift-dev/forklift/internal/api"
	"github.com/forklift-dev/forklift/internal/auth"
	"github.com/forklift-dev/forklift/internal/config"
	"github.com/forklift-dev/forklift/internal/logger"
	"github.com/forklift-dev/forklift/internal/state"
)

// app bundles what every command needs: config, the backend client and the
// local state directory.
type app struct {
	cfg    *config.Config
	client *api.Client
	token  string // Token loaded from state
}

// loadApp reads config, configures logging and restores the stored session.
func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}

	client, err := api.New(cfg.APIURL, api.WithTimeout(cfg.RequestTimeout()))
	if err != nil {
		return nil, err
	}

	st := state.Load(cfg.DataDir)
	client.SetToken(st.Token)
	logger.Debug("Using backend %s, data dir %s", cfg.APIURL, cfg.DataDir)
	return &app{cfg: cfg, client: client, token: st.Token}, nil
}

// guard confirms the session, returning the signed-in user.
func (a *app) guard(ctx context.Context) (*api.User, error) {
	user, err := auth.Guard(ctx, a.client, a.cfg.DataDir, a.client.LoginURL())
	if err != nil {
		return nil, err
	}
	a.persistToken()
	return user, nil
}

// persistToken stores a credential the backend refreshed via Set-Cookie.
func (a *app) persistToken() {
	tok := a.client.Token()
	if tok == "" || tok == a.token {
		return
	}
	if err := state.SaveToken(a.cfg.DataDir, tok); err != nil {
		logger.Warn("Failed to persist refreshed token: %v", err)
		return
	}
	a.token = tok
}
