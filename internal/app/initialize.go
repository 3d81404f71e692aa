package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aatumaykin/hive/internal/agent"
	"github.com/aatumaykin/hive/internal/bus"
	"github.com/aatumaykin/hive/internal/channels"
	"github.com/aatumaykin/hive/internal/channels/telegram"
	"github.com/aatumaykin/hive/internal/config"
	"github.com/aatumaykin/hive/internal/llm"
	"github.com/aatumaykin/hive/internal/logger"
	"github.com/aatumaykin/hive/internal/metrics"
	"github.com/aatumaykin/hive/internal/retry"
	"github.com/aatumaykin/hive/internal/schedule"
	"github.com/aatumaykin/hive/internal/tools"
)

// Initialize initializes all application components: the message bus, the
// LLM provider, the schedule store and runner, the tool executor, the
// agent team, the Telegram connector and the metrics listener.
func (a *App) Initialize(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)

	// 1. Metrics registry, and the listener if enabled
	a.metrics = metrics.New()
	if a.config.Metrics.Enabled {
		a.metricsServer = metrics.NewServer(a.config.Metrics.Listen, a.metrics, a.logger)
		a.metricsServer.Start()
	}

	// 2. Message bus
	a.messageBus = bus.New(a.config.MessageBus.Capacity, a.logger)
	if err := a.messageBus.Start(a.ctx); err != nil {
		return fmt.Errorf("failed to start message bus: %w", err)
	}

	// 3. LLM provider
	provider, err := a.buildProvider()
	if err != nil {
		return err
	}

	// 4. Schedule store
	a.store = schedule.NewStore(a.config.SchedulesPath(), a.logger)
	if _, err := a.store.Load(); err != nil {
		return fmt.Errorf("failed to load schedule store: %w", err)
	}

	// 5. Agent definitions
	agents, err := config.LoadAgents(a.config.AgentsDir())
	if err != nil {
		return fmt.Errorf("failed to load agents: %w", err)
	}

	// 6. Tool registry, bridge and executor
	a.registry = tools.NewRegistry()
	a.bridge = tools.NewBridge(a.logger)
	for _, ac := range agents {
		for _, tc := range ac.Tools {
			a.registry.Register(tools.Descriptor{
				Name:        tc.Name,
				Enabled:     tc.Enabled,
				Permissions: tc.Permissions,
				Endpoint:    tc.Endpoint,
			})
			if tc.Enabled && tc.Endpoint != "" {
				a.bridge.Connect(tc.Name, tc.Endpoint)
			}
		}
	}
	a.executor = tools.NewExecutor(a.registry, a.bridge, a.store, a.metrics, a.logger)

	// 7. Agent team over the shared context
	a.shared = agent.NewContext()
	a.manager = agent.NewManager(a.shared, a.metrics, a.logger)
	retryCfg := retry.Config{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     10 * time.Second,
	}
	agentNames := make([]string, 0, len(agents))
	for _, ac := range agents {
		a.manager.Add(agent.New(ac, agents, a.shared, provider, a.executor, retryCfg, a.metrics, a.logger))
		agentNames = append(agentNames, ac.Name)
	}

	// 8. Schedule runner
	tick := time.Duration(a.config.Scheduler.TickSeconds) * time.Second
	a.runner = schedule.NewRunner(a.store, a.executeJob, tick, a.logger)
	if err := a.runner.Start(a.ctx); err != nil {
		return fmt.Errorf("failed to start schedule runner: %w", err)
	}

	// 9. Telegram connector if enabled
	a.sent = channels.NewSentLog()
	if a.config.Channels.Telegram.Enabled {
		a.telegram = telegram.New(a.config.Channels.Telegram, agentNames, a.messageBus, a.sent, a.logger)
		if err := a.telegram.Start(a.ctx); err != nil {
			return fmt.Errorf("failed to start telegram connector: %w", err)
		}
	}

	a.mu.Lock()
	a.started = true
	a.mu.Unlock()

	return nil
}

// buildProvider selects the completion provider from configuration.
func (a *App) buildProvider() (llm.Provider, error) {
	switch a.config.LLM.Provider {
	case "openai", "":
		return llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey:         a.config.LLM.OpenAI.APIKey,
			Model:          a.config.LLM.OpenAI.Model,
			Endpoint:       a.config.LLM.OpenAI.Endpoint,
			TimeoutSeconds: a.config.LLM.OpenAI.TimeoutSeconds,
		}, a.logger), nil
	case "mock":
		return llm.NewEchoProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", a.config.LLM.Provider)
	}
}

// executeJob delivers one due job firing to its owning agent. The firing
// identifier doubles as the dedup id so a redelivered firing is ignored.
func (a *App) executeJob(ctx context.Context, job schedule.Job, firingID string) {
	ag, ok := a.manager.Get(job.AgentName)
	if !ok {
		a.logger.WarnCtx(ctx, "Job owner is not on the team",
			logger.Field{Key: "job_id", Value: job.ID},
			logger.Field{Key: "agent", Value: job.AgentName})
		return
	}

	a.metrics.JobsFired.Inc()

	forced := true
	reply := ag.OnMessage(ctx, agent.MessageRequest{
		Content:         job.Task,
		Sender:          "scheduler",
		RespondOverride: &forced,
		RecordIncoming:  true,
		MessageID:       firingID,
		ChannelID:       job.ChannelID,
	})
	if reply == nil || reply.Kind != agent.ReplyKindText || reply.Text == "" {
		return
	}
	if job.ChannelID == "" {
		a.logger.InfoCtx(ctx, "Job produced output but has no delivery channel",
			logger.Field{Key: "job_id", Value: job.ID})
		return
	}

	action := bus.NewSendAction(job.ChannelID, ag.Name(), reply.Text, firingID)
	if err := a.messageBus.PublishOutbound(*action); err != nil {
		a.logger.ErrorCtx(ctx, "Failed to publish job output", err,
			logger.Field{Key: "job_id", Value: job.ID})
	}
}
