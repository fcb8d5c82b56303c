package main

import (
	"go.uber.org/zap"

	"github.com/rocks-app/agent/internal/auth"
	"github.com/rocks-app/agent/internal/collector"
	"github.com/rocks-app/agent/internal/config"
	"github.com/rocks-app/agent/internal/handoff"
	"github.com/rocks-app/agent/internal/identity"
	"github.com/rocks-app/agent/internal/platform"
	"github.com/rocks-app/agent/internal/session"
	"github.com/rocks-app/agent/internal/transport"
)

// app holds the agent components shared by all commands. Everything is
// built once per process and passed down explicitly.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	identity *identity.Resolver
	client   *transport.Client
	gateway  *auth.Gateway
	handoff  *handoff.Store
}

func newApp(cfg *config.Config, logger *zap.Logger) *app {
	resolver := identity.NewResolver(platform.New(), logger)
	client := transport.New(cfg.Server.URL,
		transport.WithDefaultTimeout(cfg.Server.Timeout.Duration),
		transport.WithUserAgent(transport.DefaultUserAgent+" ("+version+")"),
		transport.WithLogger(logger))
	store := session.NewStore(cfg.Storage.StateFile, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		identity: resolver,
		client:   client,
		gateway:  auth.New(client, store, resolver, logger),
		handoff:  handoff.NewStore(cfg.Storage.MachineConfigFile, logger),
	}
}

// sampler builds the metric sampler from the collection settings.
func (a *app) sampler() *collector.Sampler {
	registry := collector.NewDefaultRegistry(collector.Options{
		CPUInterval:  a.cfg.Collection.CPUSampleInterval.Duration,
		DiskPath:     a.cfg.Collection.DiskPath,
		TopProcesses: a.cfg.Collection.TopProcesses,
	}, a.logger)
	return collector.NewSampler(registry, a.identity, a.logger)
}
