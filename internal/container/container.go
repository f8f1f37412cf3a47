// Package container wires the application's dependencies from configuration.
package container

import (
	"go.uber.org/zap"

	backend "pricing-detective/adapters/http"
	"pricing-detective/api"
	"pricing-detective/core/engine"
	"pricing-detective/core/identity"
	"pricing-detective/core/store"
	"pricing-detective/internal/config"
	"pricing-detective/internal/logging"
)

// Container holds all application dependencies
type Container struct {
	config   *config.Config
	logger   *zap.Logger
	identity *identity.Provider
	client   *backend.Client
	engine   *engine.Engine
}

// New builds the dependency graph for cfg
func New(cfg *config.Config, logger *zap.Logger) *Container {
	logger = logging.Or(logger)

	var fp identity.Fingerprinter
	if cfg.Identity.DeviceID != "" {
		fp = identity.StaticFingerprinter(cfg.Identity.DeviceID)
	} else {
		fp = identity.NewHostFingerprinter(cfg.Identity.MachineIDPaths)
	}
	ids := identity.NewProvider(fp, logger.Named("identity"))

	client := backend.New(&backend.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout(),
		UserAgent: cfg.Backend.UserAgent,
	}, ids, backend.WithLogger(logger.Named("backend")))

	e := engine.New(store.New(cfg.Session.Language), client, logger.Named("engine"))

	return &Container{
		config:   cfg,
		logger:   logger,
		identity: ids,
		client:   client,
		engine:   e,
	}
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the root logger
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Identity returns the device identity provider
func (c *Container) Identity() *identity.Provider {
	return c.identity
}

// Client returns the backend client
func (c *Container) Client() *backend.Client {
	return c.client
}

// Engine returns the session engine
func (c *Container) Engine() *engine.Engine {
	return c.engine
}

// Server builds the session API over the container's engine
func (c *Container) Server(version string) *api.Server {
	return api.NewServer(c.engine, api.Options{
		Version:        version,
		AllowedOrigins: c.config.Server.AllowedOrigins,
		Logger:         c.logger.Named("api"),
	})
}
