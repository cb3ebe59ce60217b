// Package fleetctl holds the command implementations behind the fleetctl
// binary. The cobra layer in cmd/fleetctl stays thin and delegates here so
// the commands can be exercised in tests with fake dependencies.
package fleetctl

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"VCS_FMS_Microservice/internal/events"
	"VCS_FMS_Microservice/internal/inventory"
	"VCS_FMS_Microservice/internal/probe"
	"VCS_FMS_Microservice/internal/remediation"
	"VCS_FMS_Microservice/internal/sweep"
	"VCS_FMS_Microservice/internal/watchdog"
	"VCS_FMS_Microservice/pkg/infra"
	"VCS_FMS_Microservice/pkg/kb"
	"VCS_FMS_Microservice/pkg/notify"
	"VCS_FMS_Microservice/pkg/remote"
)

// App wires the shared dependencies once per process. Commands pull what
// they need from it; connections that a command never touches are still
// cheap because kafka writers and the redis client dial lazily.
type App struct {
	Cfg       AppConfig
	Logger    *zap.Logger
	Fleet     inventory.Fleet
	Transport remote.Transport
	Collector probe.Collector
	Publisher events.Publisher

	redisClient  *redis.Client
	kafkaWriters []*kafka.Writer
}

func NewApp(cfg AppConfig, logger *zap.Logger) (*App, error) {
	fleet, err := inventory.Load(cfg.Server.InventoryPath)
	if err != nil {
		return nil, fmt.Errorf("App: %w", err)
	}

	transport := remote.NewSSHTransport(cfg.Probe.SSHDialTimeout)
	collector := probe.NewCollector(transport, cfg.Target, logger,
		cfg.Probe.ConnectTimeout, cfg.Probe.BatchTimeout)

	app := &App{
		Cfg:       cfg,
		Logger:    logger,
		Fleet:     fleet,
		Transport: transport,
		Collector: collector,
	}

	if cfg.Kafka.Enabled {
		diagnosisWriter := infra.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.DiagnosisTopic)
		fixWriter := infra.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.FixTopic)
		app.kafkaWriters = append(app.kafkaWriters, diagnosisWriter, fixWriter)
		app.Publisher = events.NewPublisher(diagnosisWriter, fixWriter)
	}
	return app, nil
}

// KnowledgeClient builds the knowledge base client, wrapped with the redis
// cache when the cache is enabled.
func (a *App) KnowledgeClient() (kb.Client, error) {
	client := kb.NewClient(a.Cfg.Knowledge.BaseURL, a.Cfg.Knowledge.Token,
		a.Cfg.Knowledge.MaxRetries, a.Cfg.Knowledge.RequestTimeout, a.Cfg.Knowledge.InitialBackoff)
	if !a.Cfg.Knowledge.CacheEnabled {
		return client, nil
	}
	if a.redisClient == nil {
		redisClient, err := infra.NewRedisConnection(a.Cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("App.KnowledgeClient: %w", err)
		}
		a.redisClient = redisClient
	}
	return kb.NewCachedClient(a.redisClient, client, a.Cfg.Knowledge.CacheTTL), nil
}

// Notifier builds the escalation notifier from whichever channels are
// configured. Both may be absent; Notify then simply delivers nothing.
func (a *App) Notifier() notify.Notifier {
	var chat notify.Sink
	if a.Cfg.Notify.WebhookURL != "" {
		chat = notify.NewChatSink(a.Cfg.Notify.WebhookURL, a.Cfg.Notify.WebhookToken,
			a.Cfg.Notify.RequestTimeout)
	}
	var mail notify.MailSender
	if a.Cfg.Mail.Host != "" {
		mail = notify.NewMailSender(a.Cfg.Mail.Email, a.Cfg.Mail.Password,
			a.Cfg.Mail.Host, a.Cfg.Mail.Port)
	}
	return notify.NewNotifier(chat, mail, a.Cfg.Mail.AdminMailAddress, a.Logger)
}

// Orchestrator assembles the fix pipeline: knowledge base first, then the
// static fallback table, then the agent when one is configured.
func (a *App) Orchestrator() (remediation.Orchestrator, error) {
	kbClient, err := a.KnowledgeClient()
	if err != nil {
		return nil, fmt.Errorf("App.Orchestrator: %w", err)
	}
	strategies := []remediation.RemediationStrategy{
		remediation.NewKnowledgeStrategy(kbClient),
		remediation.NewStaticStrategy(a.Cfg.Target),
	}
	if a.Cfg.Remediation.AgentCommand != "" {
		strategies = append(strategies, remediation.NewAgentStrategy(a.Cfg.Remediation.AgentCommand))
	}
	return remediation.NewOrchestrator(a.Collector, a.Transport, kbClient, a.Notifier(),
		strategies, a.Logger, a.Cfg.Remediation.ExecTimeout), nil
}

func (a *App) Sweeper() sweep.Sweeper {
	return sweep.NewSweeper(a.Collector, a.Logger)
}

// Watchdog builds the watchdog over the configured instance.
func (a *App) Watchdog() (watchdog.Watchdog, error) {
	instance, ok := a.Fleet.Resolve(a.Cfg.Watchdog.Instance)
	if !ok {
		return nil, fmt.Errorf("App.Watchdog: unknown instance %q", a.Cfg.Watchdog.Instance)
	}
	host := instance.ResolveHost()
	store := watchdog.NewFileStore(a.Cfg.Watchdog.StatePath, a.Logger)
	channelID := instance.ChannelID
	if channelID == "" {
		channelID = a.Cfg.Notify.DefaultChannel
	}
	return watchdog.NewWatchdog(a.Collector, a.Transport, store, a.Notifier(), watchdog.Config{
		Host:       host,
		ChannelID:  channelID,
		Target:     a.Cfg.Target,
		BackupDir:  a.Cfg.Watchdog.BackupDir,
		SettleTime: a.Cfg.Watchdog.SettleTime,
	}, a.Logger), nil
}

func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.Logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
	for _, writer := range a.kafkaWriters {
		if err := writer.Close(); err != nil {
			a.Logger.Warn("failed to close kafka writer", zap.Error(err))
		}
	}
}
