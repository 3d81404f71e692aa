// Package app wires the Hive components together and manages their
// lifecycle: the shared conversation context, the agent team, the tool
// executor, the schedule runner, the message bus, the Telegram channel
// and the metrics listener.
package app

import (
	"context"
	"sync"

	"github.com/aatumaykin/hive/internal/agent"
	"github.com/aatumaykin/hive/internal/bus"
	"github.com/aatumaykin/hive/internal/channels"
	"github.com/aatumaykin/hive/internal/channels/telegram"
	"github.com/aatumaykin/hive/internal/config"
	"github.com/aatumaykin/hive/internal/logger"
	"github.com/aatumaykin/hive/internal/metrics"
	"github.com/aatumaykin/hive/internal/schedule"
	"github.com/aatumaykin/hive/internal/tools"
)

// App holds references to all major components and manages their lifecycle.
type App struct {
	// Configuration and core services
	config *config.Config
	logger *logger.Logger

	// Communication infrastructure
	messageBus *bus.MessageBus

	// Agent team over the shared conversation context
	shared  *agent.Context
	manager *agent.Manager

	// Tool mini-protocol
	registry *tools.Registry
	bridge   *tools.Bridge
	executor *tools.Executor

	// Persistent job scheduling
	store  *schedule.Store
	runner *schedule.Runner

	// Channels
	telegram *telegram.Connector
	sent     *channels.SentLog

	// Observability
	metrics       *metrics.Metrics
	metricsServer *metrics.Server

	// Context management
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
}

// New creates a new App instance with the provided configuration and logger.
// Components are initialized in the Initialize method.
func New(cfg *config.Config, log *logger.Logger) *App {
	return &App{
		config: cfg,
		logger: log,
	}
}

// Run starts the application and blocks until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.Initialize(ctx); err != nil {
		return err
	}

	if err := a.StartMessageProcessing(a.ctx); err != nil {
		return err
	}

	a.logger.Info("Application is running")

	<-ctx.Done()

	return a.Shutdown()
}

// Manager returns the agent manager. Available after Initialize.
func (a *App) Manager() *agent.Manager {
	return a.manager
}

// Store returns the schedule store. Available after Initialize.
func (a *App) Store() *schedule.Store {
	return a.store
}
